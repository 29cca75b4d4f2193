package learning

import (
	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/sirupsen/logrus"
)

// RetentionDays is how far back pattern observations are kept. Signatures
// whose most recent occurrence is older are dropped on load.
const RetentionDays = 60

// PatternMemory maps an activity signature to the day-keys it was observed
// on. It is the cross-day recurring-activity detector behind the
// activity_repeat category.
type PatternMemory map[string][]daykey.Key

// RecordPattern returns a copy of memory with today appended to the card's
// signature history. A day already present for the signature is not
// duplicated, so re-accepting within one day is idempotent.
func RecordPattern(memory PatternMemory, c *card.IdeaCard, today daykey.Key) PatternMemory {
	return RecordSignature(memory, c.Signature(), today)
}

// RecordSignature is RecordPattern for a raw signature, used when a build
// observes the user's own recent events.
func RecordSignature(memory PatternMemory, signature string, day daykey.Key) PatternMemory {
	if signature == "" {
		return memory
	}

	out := make(PatternMemory, len(memory)+1)
	for k, v := range memory {
		days := make([]daykey.Key, len(v))
		copy(days, v)
		out[k] = days
	}

	for _, d := range out[signature] {
		if d == day {
			return out
		}
	}
	out[signature] = append(out[signature], day)
	return out
}

// Occurrences returns how many distinct days the signature was observed on.
func (m PatternMemory) Occurrences(signature string) int {
	return len(m[signature])
}

// Prune returns a copy of memory with stale and malformed entries removed:
// signatures whose most recent occurrence is older than the retention
// window, and individual day-keys that lie in the future (a forward clock
// jump must not poison the detector). Called on every load.
func Prune(memory PatternMemory, today daykey.Key) PatternMemory {
	out := make(PatternMemory, len(memory))
	dropped := 0

	for sig, days := range memory {
		var kept []daykey.Key
		fresh := false
		for _, d := range days {
			if d.After(today) {
				continue
			}
			kept = append(kept, d)
			if daykey.DaysBetween(d, today) <= RetentionDays {
				fresh = true
			}
		}
		if !fresh || len(kept) == 0 {
			dropped++
			continue
		}
		out[sig] = kept
	}

	if dropped > 0 {
		logrus.Debugf("pruned %d stale pattern signatures", dropped)
	}
	return out
}
