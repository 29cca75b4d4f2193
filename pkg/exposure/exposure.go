// Package exposure tracks how often and how recently each card has been
// shown. The scorer reads it to decay stale repeats.
package exposure

import (
	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
)

// Map is keyed by card ID. Entries persist indefinitely; TimesShown is
// monotonically non-decreasing per ID.
type Map map[string]card.Exposure

// MarkShown returns a copy of m with every card in today's built deck
// recorded: TimesShown incremented, LastShownDayKey set to today. The
// input is never mutated.
//
// This runs exactly once, right after a deck is built for a day-key,
// never on render, never on swipe. Restoring a persisted deck does not
// call it, which is what keeps TimesShown at one increment per shown day.
func MarkShown(m Map, shownIDs []string, today daykey.Key) Map {
	out := make(Map, len(m)+len(shownIDs))
	for k, v := range m {
		out[k] = v
	}

	for _, id := range shownIDs {
		e := out[id]
		e.TimesShown++
		e.LastShownDayKey = today
		out[id] = e
	}
	return out
}

// Lookup returns the exposure record for a card ID and whether one exists.
func (m Map) Lookup(id string) (card.Exposure, bool) {
	e, ok := m[id]
	return e, ok
}
