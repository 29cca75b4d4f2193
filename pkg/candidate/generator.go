// Package candidate maps a context snapshot into the unordered set of
// typed suggestion cards for one day. Each signal class has its own
// builder file with its threshold/bucketing rule; deduplication across
// categories is deliberately not performed here: the same friend may
// legitimately yield both a reconnect and a birthday card.
package candidate

import (
	"time"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/circleup/ideas-engine/pkg/scoring"
	"github.com/circleup/ideas-engine/pkg/snapshot"
	"github.com/sirupsen/logrus"
)

// Generator builds candidate cards from snapshot signals.
type Generator struct {
	cfg    scoring.Config
	userID string
}

// NewGenerator creates a generator for the acting user.
func NewGenerator(cfg scoring.Config, userID string) *Generator {
	return &Generator{cfg: cfg, userID: userID}
}

// Generate emits zero or one card per eligible source entity. Cards carry
// their base and context score components; habit and decay are filled in
// by the scorer. Entities missing a required identifying field produce no
// card; missing display fields only degrade the card's presentation.
func (g *Generator) Generate(snap snapshot.Snapshot, memory learning.PatternMemory, now time.Time) []card.IdeaCard {
	var cards []card.IdeaCard

	cards = append(cards, g.reconnectCards(snap.Reconnect)...)
	cards = append(cards, g.birthdayCards(snap.Birthdays, now)...)
	cards = append(cards, g.lowRSVPCards(snap.FriendEvents, now)...)
	cards = append(cards, g.repeatCards(snap.OwnRecent, memory)...)

	logrus.Debugf("generated %d candidates for user %s", len(cards), g.userID)
	return cards
}
