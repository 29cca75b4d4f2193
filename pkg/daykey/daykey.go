package daykey

import (
	"fmt"
	"time"
)

const (
	// Layout is the canonical day-key layout (device-local date).
	Layout = "2006-01-02"
	// MonthLayout is the canonical month-key layout, used by the
	// monthly learning reset.
	MonthLayout = "2006-01"
)

// Key identifies one calendar day in device-local time. All daily state
// (deck, session signals, completion stamp) is scoped by a Key.
type Key string

// Month identifies one calendar month in device-local time.
type Month string

// FromTime derives the day-key for t in t's location.
func FromTime(t time.Time) Key {
	return Key(t.Format(Layout))
}

// MonthFromTime derives the month-key for t in t's location.
func MonthFromTime(t time.Time) Month {
	return Month(t.Format(MonthLayout))
}

// Parse converts a day-key back to a local-midnight time.
// Returns an error for malformed keys.
func Parse(k Key) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, string(k), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day key %q: %w", k, err)
	}
	return t, nil
}

// DaysBetween returns the whole calendar days from a to b (positive when b
// is later). Malformed keys count as zero distance. The difference is
// taken between UTC dates: keys are calendar labels, and subtracting
// local midnights would come up a day short across a 23-hour DST
// transition day.
func DaysBetween(a, b Key) int {
	ta, err := time.Parse(Layout, string(a))
	if err != nil {
		return 0
	}
	tb, err := time.Parse(Layout, string(b))
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}

// After reports whether k is a later calendar day than other.
// Day-keys sort lexicographically, so string comparison is exact.
func (k Key) After(other Key) bool {
	return string(k) > string(other)
}

// UntilNextRefresh returns the duration from now until the next local
// midnight, when a fresh deck becomes available.
func UntilNextRefresh(now time.Time) time.Duration {
	y, m, d := now.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return midnight.Sub(now)
}

// Countdown renders d as the human-readable refresh countdown shown under
// a completed deck, e.g. "7h 32m". Sub-minute remainders render as "1m"
// so the string never shows zero while today's deck is still current.
func Countdown(d time.Duration) string {
	if d < time.Minute {
		return "1m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
