// Package scoring combines base signal strength, context proximity, habit
// bias, and exposure decay into the final score and confidence per card.
package scoring

import (
	"math"
	"sort"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/circleup/ideas-engine/pkg/exposure"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/sirupsen/logrus"
)

// Inputs is the learning state a scoring pass reads. All fields are
// read-only to the scorer.
type Inputs struct {
	Stats     learning.AcceptStats
	Exposure  exposure.Map
	Yesterday learning.SessionSignals
	Today     daykey.Key
}

// Scorer scores candidates against learning state.
type Scorer struct {
	cfg Config
}

// NewScorer creates a scorer with the given tuning.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score fills in the habit, decay, final, and confidence components of a
// candidate whose base and context components were set by the generator.
func (s *Scorer) Score(c *card.IdeaCard, in Inputs) card.ScoreBreakdown {
	b := c.Score
	tally := in.Stats.Tally(c.Category)

	b.Habit = s.habitRatio(tally)
	b.Decay = s.decayFor(c.ID, in.Exposure, in.Today)
	bias := s.sessionBias(in.Yesterday, c.Archetype)

	raw := s.cfg.Weights.Base*b.Base +
		s.cfg.Weights.Context*b.Context +
		s.cfg.Weights.Habit*(b.Habit-0.5) +
		bias -
		b.Decay
	b.Final = clamp(raw, 0, 1)
	b.Confidence = clamp(float64(tally.Observations())/float64(s.cfg.Habit.ConfidenceObservations), 0, 1)

	logrus.Debugf("scored %s: base=%.2f ctx=%.2f habit=%.2f decay=%.2f bias=%.2f final=%.3f",
		c.ID, b.Base, b.Context, b.Habit, b.Decay, bias, b.Final)

	return b
}

// ScoreAll scores every candidate and returns them ordered by descending
// final score, ties broken by card ID so identical inputs always produce
// an identical ordering.
func (s *Scorer) ScoreAll(cards []card.IdeaCard, in Inputs) []card.IdeaCard {
	out := make([]card.IdeaCard, len(cards))
	copy(out, cards)

	for i := range out {
		out[i].Score = s.Score(&out[i], in)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score.Final != out[j].Score.Final {
			return out[i].Score.Final > out[j].Score.Final
		}
		return out[i].ID < out[j].ID
	})

	return out
}

// habitRatio maps the category's accept/dismiss history onto [0,1] with
// add-k smoothing, so zero data lands exactly on the 0.5 neutral point
// instead of an extreme.
func (s *Scorer) habitRatio(t learning.Tally) float64 {
	k := s.cfg.Habit.Smoothing
	return (float64(t.Accepted) + k) / (float64(t.Observations()) + 2*k)
}

// decayFor penalizes cards shown within the rolling window. The penalty
// is strongest the day after a showing, fades linearly to zero at the
// window edge, and scales up with how often the card has been shown.
// Cards never shown decay by zero.
func (s *Scorer) decayFor(id string, m exposure.Map, today daykey.Key) float64 {
	e, ok := m.Lookup(id)
	if !ok {
		return 0
	}

	days := daykey.DaysBetween(e.LastShownDayKey, today)
	if days < 0 {
		// Last-shown in the future means the device clock moved back.
		// Treat as shown today: full recency penalty.
		days = 0
	}
	window := s.cfg.Decay.WindowDays
	if days >= window {
		return 0
	}

	recency := 1 - float64(days)/float64(window)
	repeat := 0.5 + 0.5*math.Min(float64(e.TimesShown), 4)/4
	return s.cfg.Decay.MaxPenalty * recency * repeat
}

// sessionBias reads yesterday's per-archetype swipe tally: archetypes the
// user accepted get a mild boost, repeatedly dismissed ones a mild
// penalty. Counts are capped so one enthusiastic day cannot dominate.
func (s *Scorer) sessionBias(yesterday learning.SessionSignals, a card.Archetype) float64 {
	t, ok := yesterday[a]
	if !ok {
		return 0
	}

	maxN := float64(s.cfg.Session.MaxCounted)
	boost := s.cfg.Session.AcceptBoost * math.Min(float64(t.Accepted), maxN)
	penalty := s.cfg.Session.DismissPenalty * math.Min(float64(t.Dismissed), maxN)
	return boost - penalty
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
