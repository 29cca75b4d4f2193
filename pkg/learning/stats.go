// Package learning holds the persisted structures the engine learns from:
// per-category accept statistics (monthly reset), recurring-activity pattern
// memory (time-pruned), and per-day session signals. Everything is a pure
// function over value types so tests construct and inspect state directly.
package learning

import (
	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/sirupsen/logrus"
)

// Action is a swipe direction on a card.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDismiss Action = "dismiss"
)

// Tally is a pair of accept/dismiss counters.
type Tally struct {
	Accepted  int `json:"accepted"`
	Dismissed int `json:"dismissed"`
}

// Observations returns the total number of swipes behind this tally.
func (t Tally) Observations() int {
	return t.Accepted + t.Dismissed
}

// AcceptStats tracks accept/dismiss tallies per category. Counters are
// zeroed once per calendar-month transition (see MaybeReset).
type AcceptStats struct {
	Categories map[card.Category]Tally `json:"categories"`
	ResetMonth daykey.Month            `json:"resetMonth"`
}

// NewAcceptStats returns empty stats anchored to the given month.
func NewAcceptStats(month daykey.Month) AcceptStats {
	return AcceptStats{
		Categories: make(map[card.Category]Tally),
		ResetMonth: month,
	}
}

// Tally returns the tally for a category, zero if none recorded.
func (s AcceptStats) Tally(c card.Category) Tally {
	return s.Categories[c]
}

// RecordSwipe returns a copy of stats with the relevant counter
// incremented. The input is never mutated.
func RecordSwipe(stats AcceptStats, c card.Category, action Action) AcceptStats {
	out := AcceptStats{
		Categories: make(map[card.Category]Tally, len(stats.Categories)+1),
		ResetMonth: stats.ResetMonth,
	}
	for k, v := range stats.Categories {
		out.Categories[k] = v
	}

	t := out.Categories[c]
	switch action {
	case ActionAccept:
		t.Accepted++
	case ActionDismiss:
		t.Dismissed++
	}
	out.Categories[c] = t
	return out
}

// MaybeReset zeroes all category counters when the stored month marker
// differs from the current month. Within the same month it returns the
// input unchanged, so calling it any number of times is safe.
func MaybeReset(stats AcceptStats, nowMonth daykey.Month) AcceptStats {
	if stats.ResetMonth == nowMonth {
		return stats
	}

	logrus.Debugf("monthly stats reset: %s -> %s", stats.ResetMonth, nowMonth)
	return NewAcceptStats(nowMonth)
}
