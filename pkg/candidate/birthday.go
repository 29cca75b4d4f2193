package candidate

import (
	"fmt"
	"time"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/snapshot"
)

// birthdayCards turns birthdays inside the lookahead window into cards.
// Base score rises as the date approaches.
func (g *Generator) birthdayCards(sigs []snapshot.BirthdaySignal, now time.Time) []card.IdeaCard {
	th := g.cfg.Thresholds
	var out []card.IdeaCard

	for _, sig := range sigs {
		if sig.FriendID == "" || sig.Birthday.IsZero() {
			continue
		}

		days := daysUntilBirthday(sig.Birthday, now)
		if days > th.BirthdayLookaheadDays {
			continue
		}

		closeness := 1 - float64(days)/float64(th.BirthdayLookaheadDays)

		archetype := card.ArchetypeBirthdayUpcoming
		if days <= th.BirthdaySoonDays {
			archetype = card.ArchetypeBirthdaySoon
		}

		name := sig.Name
		if name == "" {
			name = "A friend"
		}

		subtitle := fmt.Sprintf("Birthday in %d days", days)
		chip := fmt.Sprintf("in %d days", days)
		switch days {
		case 0:
			subtitle = "Birthday is today!"
			chip = "today"
		case 1:
			subtitle = "Birthday is tomorrow"
			chip = "tomorrow"
		}

		out = append(out, card.IdeaCard{
			ID:           card.MakeID(card.CategoryBirthday, sig.FriendID),
			Category:     card.CategoryBirthday,
			Archetype:    archetype,
			Title:        fmt.Sprintf("%s's birthday is coming up", name),
			Subtitle:     subtitle,
			ContextChips: []string{chip},
			FriendID:     sig.FriendID,
			AvatarURL:    sig.AvatarURL,
			DraftMessage: fmt.Sprintf("Happy early birthday, %s! Want to celebrate together?", name),
			DraftVariants: []string{
				fmt.Sprintf("Happy early birthday, %s! Want to celebrate together?", name),
				fmt.Sprintf("%s! Birthday plans yet? Let's do something!", name),
			},
			Score: card.ScoreBreakdown{
				Base:    0.5 + 0.4*closeness,
				Context: closeness,
			},
		})
	}

	return out
}

// daysUntilBirthday returns whole days from now to the next occurrence of
// the birthday's month/day, in now's location. A birthday earlier this
// year rolls over to next year.
func daysUntilBirthday(birthday, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	next := time.Date(now.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, now.Location())
	if next.Before(today) {
		next = time.Date(now.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, now.Location())
	}

	return int(next.Sub(today).Hours() / 24)
}
