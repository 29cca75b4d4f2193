package candidate

import (
	"fmt"
	"time"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/snapshot"
)

// lowRSVPCards turns friends' under-attended upcoming events into rescue
// cards. The acting user's own events are excluded; an event with no
// capacity signal counts as maximally under-filled.
func (g *Generator) lowRSVPCards(events []snapshot.FriendEvent, now time.Time) []card.IdeaCard {
	th := g.cfg.Thresholds
	var out []card.IdeaCard

	for _, ev := range events {
		if ev.EventID == "" {
			continue
		}
		if ev.HostID == g.userID {
			continue
		}
		if ev.StartsAt.Before(now) {
			continue
		}

		days := int(ev.StartsAt.Sub(now).Hours() / 24)
		if days > th.LowRSVPSoonDays {
			continue
		}

		fill := 0.0
		if ev.Capacity > 0 {
			fill = float64(ev.Attendance) / float64(ev.Capacity)
			if fill >= th.LowRSVPMaxFill {
				continue
			}
		}

		soonness := 1 - float64(days)/float64(th.LowRSVPSoonDays)

		subtitle := fmt.Sprintf("Only %d people going so far", ev.Attendance)
		if ev.HostName != "" {
			subtitle = fmt.Sprintf("%s's event could use a boost, only %d going so far", ev.HostName, ev.Attendance)
		}

		out = append(out, card.IdeaCard{
			ID:        card.MakeID(card.CategoryLowRSVP, ev.EventID),
			Category:  card.CategoryLowRSVP,
			Archetype: card.ArchetypeLowRSVPRescue,
			Title:     ev.Title,
			Subtitle:  subtitle,
			ContextChips: []string{
				fmt.Sprintf("%d going", ev.Attendance),
				ev.StartsAt.Format("Mon Jan 2"),
			},
			EventID:  ev.EventID,
			PhotoURL: ev.PhotoURL,
			Score: card.ScoreBreakdown{
				Base:    0.5 + 0.3*(1-fill),
				Context: ((1 - fill) + soonness) / 2,
			},
		})
	}

	return out
}
