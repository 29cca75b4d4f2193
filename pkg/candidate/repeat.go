package candidate

import (
	"fmt"
	"math"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/circleup/ideas-engine/pkg/snapshot"
)

// repeatCards suggests repeating the user's own recurring activities.
// Recurrence is detected through pattern memory: a title signature must
// have been observed on enough distinct days (memory history plus the
// snapshot's own event days) to qualify. One card per signature.
func (g *Generator) repeatCards(own []snapshot.OwnEvent, memory learning.PatternMemory) []card.IdeaCard {
	th := g.cfg.Thresholds

	type group struct {
		displayTitle string
		days         map[daykey.Key]bool
	}
	groups := make(map[string]*group)
	var order []string

	for _, ev := range own {
		norm := card.NormalizeTitle(ev.Title)
		if norm == "" {
			continue
		}
		sig := fmt.Sprintf("%s|%s", card.CategoryActivityRepeat, norm)

		gr, ok := groups[sig]
		if !ok {
			gr = &group{displayTitle: ev.Title, days: make(map[daykey.Key]bool)}
			groups[sig] = gr
			order = append(order, sig)
		}
		if !ev.StartsAt.IsZero() {
			gr.days[daykey.FromTime(ev.StartsAt)] = true
		}
	}

	var out []card.IdeaCard
	for _, sig := range order {
		gr := groups[sig]

		// Distinct observed days across memory and this snapshot.
		days := make(map[daykey.Key]bool, len(gr.days))
		for d := range gr.days {
			days[d] = true
		}
		for _, d := range memory[sig] {
			days[d] = true
		}

		occ := len(days)
		if occ < th.RepeatMinOccurrences {
			continue
		}

		extra := math.Min(float64(occ-th.RepeatMinOccurrences), 3)
		norm := card.NormalizeTitle(gr.displayTitle)

		// Title stays the plain activity title: Signature() normalizes it
		// back onto the detector's signature, and the creation flow
		// prefills from it.
		out = append(out, card.IdeaCard{
			ID:        card.MakeID(card.CategoryActivityRepeat, norm),
			Category:  card.CategoryActivityRepeat,
			Archetype: card.ArchetypeActivityRepeat,
			Title:     gr.displayTitle,
			Subtitle:  fmt.Sprintf("Another round? You've done this %d times lately", occ),
			ContextChips: []string{
				fmt.Sprintf("%dx recently", occ),
			},
			Score: card.ScoreBreakdown{
				Base:    0.55 + 0.05*extra,
				Context: math.Min(float64(occ)/5, 1),
			},
		})
	}

	return out
}
