package scoring

import (
	"testing"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/circleup/ideas-engine/pkg/exposure"
	"github.com/circleup/ideas-engine/pkg/learning"
)

func neutralInputs() Inputs {
	return Inputs{
		Stats:     learning.NewAcceptStats("2026-03"),
		Exposure:  make(exposure.Map),
		Yesterday: learning.EmptySessionSignals(),
		Today:     "2026-03-14",
	}
}

func TestScore_NeutralHabitWithNoData(t *testing.T) {
	s := NewScorer(Default())
	c := &card.IdeaCard{
		ID:       card.MakeID(card.CategoryReconnect, "f1"),
		Category: card.CategoryReconnect,
		Score:    card.ScoreBreakdown{Base: 0.65, Context: 0.4},
	}

	b := s.Score(c, neutralInputs())

	if b.Habit != 0.5 {
		t.Errorf("habit with no data = %f, expected neutral 0.5", b.Habit)
	}
	if b.Decay != 0 {
		t.Errorf("decay for never-shown card = %f, expected 0", b.Decay)
	}
	if b.Confidence != 0 {
		t.Errorf("confidence with no observations = %f, expected 0", b.Confidence)
	}

	want := 0.45*0.65 + 0.30*0.4
	if diff := b.Final - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("final = %f, expected %f", b.Final, want)
	}
}

func TestScore_HabitBias(t *testing.T) {
	s := NewScorer(Default())
	in := neutralInputs()
	for i := 0; i < 8; i++ {
		in.Stats = learning.RecordSwipe(in.Stats, card.CategoryBirthday, learning.ActionAccept)
	}
	in.Stats = learning.RecordSwipe(in.Stats, card.CategoryBirthday, learning.ActionDismiss)

	c := &card.IdeaCard{
		ID:       card.MakeID(card.CategoryBirthday, "f1"),
		Category: card.CategoryBirthday,
		Score:    card.ScoreBreakdown{Base: 0.6, Context: 0.5},
	}

	b := s.Score(c, in)

	// (8+1)/(9+2) with add-one smoothing.
	want := 9.0 / 11.0
	if diff := b.Habit - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("habit = %f, expected %f", b.Habit, want)
	}
	if b.Confidence != 9.0/20.0 {
		t.Errorf("confidence = %f, expected 0.45", b.Confidence)
	}
}

func TestScore_DecayFadesWithElapsedDays(t *testing.T) {
	s := NewScorer(Default())
	id := card.MakeID(card.CategoryLowRSVP, "e1")

	mk := func(lastShown daykey.Key, times int) Inputs {
		in := neutralInputs()
		in.Exposure = exposure.Map{id: card.Exposure{LastShownDayKey: lastShown, TimesShown: times}}
		return in
	}

	c := &card.IdeaCard{ID: id, Category: card.CategoryLowRSVP, Score: card.ScoreBreakdown{Base: 0.6, Context: 0.5}}

	recent := s.Score(c, mk("2026-03-13", 1)).Decay
	older := s.Score(c, mk("2026-03-10", 1)).Decay
	outside := s.Score(c, mk("2026-03-01", 1)).Decay

	if !(recent > older) {
		t.Errorf("decay should shrink with elapsed days: recent=%f older=%f", recent, older)
	}
	if outside != 0 {
		t.Errorf("decay outside the window = %f, expected 0", outside)
	}

	once := s.Score(c, mk("2026-03-13", 1)).Decay
	often := s.Score(c, mk("2026-03-13", 4)).Decay
	if !(often > once) {
		t.Errorf("decay should grow with times shown: once=%f often=%f", once, often)
	}
}

func TestScore_SessionBias(t *testing.T) {
	s := NewScorer(Default())

	boosted := neutralInputs()
	boosted.Yesterday = learning.RecordSessionSignal(boosted.Yesterday, card.ArchetypeBirthdaySoon, learning.ActionAccept)

	punished := neutralInputs()
	for i := 0; i < 3; i++ {
		punished.Yesterday = learning.RecordSessionSignal(punished.Yesterday, card.ArchetypeBirthdaySoon, learning.ActionDismiss)
	}

	c := &card.IdeaCard{
		ID:        card.MakeID(card.CategoryBirthday, "f1"),
		Category:  card.CategoryBirthday,
		Archetype: card.ArchetypeBirthdaySoon,
		Score:     card.ScoreBreakdown{Base: 0.6, Context: 0.5},
	}

	neutral := s.Score(c, neutralInputs()).Final
	up := s.Score(c, boosted).Final
	down := s.Score(c, punished).Final

	if !(up > neutral) {
		t.Errorf("accepted-yesterday archetype should score higher: %f vs %f", up, neutral)
	}
	if !(down < neutral) {
		t.Errorf("dismissed-yesterday archetype should score lower: %f vs %f", down, neutral)
	}
}

func TestScoreAll_DeterministicOrdering(t *testing.T) {
	s := NewScorer(Default())
	cards := []card.IdeaCard{
		{ID: "reconnect:f2", Category: card.CategoryReconnect, Score: card.ScoreBreakdown{Base: 0.5, Context: 0.2}},
		{ID: "reconnect:f1", Category: card.CategoryReconnect, Score: card.ScoreBreakdown{Base: 0.5, Context: 0.2}},
		{ID: "birthday:f3", Category: card.CategoryBirthday, Score: card.ScoreBreakdown{Base: 0.9, Context: 0.8}},
	}

	first := s.ScoreAll(cards, neutralInputs())
	second := s.ScoreAll(cards, neutralInputs())

	if len(first) != 3 {
		t.Fatalf("ScoreAll() returned %d cards, expected 3", len(first))
	}
	if first[0].ID != "birthday:f3" {
		t.Errorf("highest scorer should lead, got %s", first[0].ID)
	}
	// Equal finals break ties by ID ascending.
	if first[1].ID != "reconnect:f1" || first[2].ID != "reconnect:f2" {
		t.Errorf("tie-break order wrong: %s, %s", first[1].ID, first[2].ID)
	}
	for i := range first {
		if first[i].ID != second[i].ID || first[i].Score != second[i].Score {
			t.Errorf("two passes over identical inputs diverged at %d", i)
		}
	}
}

func TestScore_FinalClamped(t *testing.T) {
	s := NewScorer(Default())
	in := neutralInputs()
	id := card.MakeID(card.CategoryTiming, "x")
	in.Exposure = exposure.Map{id: card.Exposure{LastShownDayKey: "2026-03-14", TimesShown: 10}}

	c := &card.IdeaCard{ID: id, Category: card.CategoryTiming, Score: card.ScoreBreakdown{Base: 0, Context: 0}}
	b := s.Score(c, in)
	if b.Final < 0 || b.Final > 1 {
		t.Errorf("final out of range: %f", b.Final)
	}
	if b.Confidence < 0 || b.Confidence > 1 {
		t.Errorf("confidence out of range: %f", b.Confidence)
	}
}
