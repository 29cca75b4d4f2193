// Package deck owns the daily deck lifecycle: build-once-per-day
// generation, persistence and resume, swipe transitions, and completion.
package deck

import (
	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
)

// State is the machine's lifecycle phase for the current day-key.
type State string

const (
	// StateEmpty: nothing evaluated yet for this day.
	StateEmpty State = "empty"
	// StateBuilding: waiting for snapshot sources to settle.
	StateBuilding State = "building"
	// StateReady: a deck exists and the cursor has cards left.
	StateReady State = "ready"
	// StateCompleted: the cursor reached the end (or the deck was empty).
	StateCompleted State = "completed"
)

// Deck is the ordered card list plus cursor for one day.
type Deck struct {
	Cards []card.IdeaCard
	Index int
}

// Current returns the card under the cursor, or nil when exhausted.
func (d Deck) Current() *card.IdeaCard {
	if d.Index < 0 || d.Index >= len(d.Cards) {
		return nil
	}
	return &d.Cards[d.Index]
}

// Exhausted reports whether the cursor has passed the last card.
func (d Deck) Exhausted() bool {
	return d.Index >= len(d.Cards)
}

// Status is the machine's externally visible state: what the UI consumer
// renders from.
type Status struct {
	State         State           `json:"state"`
	Day           daykey.Key      `json:"day"`
	Cards         []card.IdeaCard `json:"cards"`
	Index         int             `json:"currentIndex"`
	Ready         bool            `json:"ready"`
	Complete      bool            `json:"complete"`
	NextRefreshIn string          `json:"nextRefreshIn"`
}
