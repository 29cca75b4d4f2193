package candidate

import (
	"fmt"
	"math"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/snapshot"
)

// Base scores per dormancy bucket. Longer silence is a stronger signal.
const (
	reconnectBaseShort  = 0.50
	reconnectBaseMedium = 0.65
	reconnectBaseLong   = 0.80
)

// reconnectContextSpanDays normalizes dormancy onto [0,1]; anything past
// four months counts as maximally distant.
const reconnectContextSpanDays = 120

// reconnectCards turns dormant friendships into reconnect cards. Friends
// below the minimum dormancy threshold are not candidates at all.
func (g *Generator) reconnectCards(sigs []snapshot.ReconnectSignal) []card.IdeaCard {
	th := g.cfg.Thresholds
	var out []card.IdeaCard

	for _, sig := range sigs {
		if sig.FriendID == "" {
			continue
		}
		if sig.DaysSinceHangout < th.ReconnectMinDays {
			continue
		}

		var (
			archetype card.Archetype
			base      float64
		)
		switch {
		case sig.DaysSinceHangout >= th.ReconnectLongDays:
			archetype, base = card.ArchetypeReconnectLongGap, reconnectBaseLong
		case sig.DaysSinceHangout >= th.ReconnectMediumDays:
			archetype, base = card.ArchetypeReconnectMediumGap, reconnectBaseMedium
		default:
			archetype, base = card.ArchetypeReconnectShortGap, reconnectBaseShort
		}

		name := sig.Name
		if name == "" {
			name = "a friend"
		}

		out = append(out, card.IdeaCard{
			ID:        card.MakeID(card.CategoryReconnect, sig.FriendID),
			Category:  card.CategoryReconnect,
			Archetype: archetype,
			Title:     fmt.Sprintf("Reconnect with %s", name),
			Subtitle:  fmt.Sprintf("It's been %d days since you hung out", sig.DaysSinceHangout),
			ContextChips: []string{
				fmt.Sprintf("%d days", sig.DaysSinceHangout),
			},
			FriendID:     sig.FriendID,
			AvatarURL:    sig.AvatarURL,
			DraftMessage: fmt.Sprintf("Hey %s! It's been a while. Want to catch up soon?", name),
			DraftVariants: []string{
				fmt.Sprintf("Hey %s! It's been a while. Want to catch up soon?", name),
				fmt.Sprintf("%s! Long time. Free sometime this week?", name),
			},
			Score: card.ScoreBreakdown{
				Base:    base,
				Context: math.Min(float64(sig.DaysSinceHangout)/reconnectContextSpanDays, 1),
			},
		})
	}

	return out
}
