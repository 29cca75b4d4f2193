package learning

import "github.com/circleup/ideas-engine/pkg/card"

// SessionSignals tallies swipes per archetype within one calendar day.
// Today's map is written on every swipe; yesterday's map is read once at
// build time as a mild scoring bias and never mutated afterward.
type SessionSignals map[card.Archetype]Tally

// EmptySessionSignals is the explicit starting state for a new calendar
// day.
func EmptySessionSignals() SessionSignals {
	return make(SessionSignals)
}

// RecordSessionSignal returns a copy of signals with the archetype's
// counter incremented.
func RecordSessionSignal(signals SessionSignals, a card.Archetype, action Action) SessionSignals {
	out := make(SessionSignals, len(signals)+1)
	for k, v := range signals {
		out[k] = v
	}

	t := out[a]
	switch action {
	case ActionAccept:
		t.Accepted++
	case ActionDismiss:
		t.Dismissed++
	}
	out[a] = t
	return out
}
