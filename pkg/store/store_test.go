package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/exposure"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/go-redis/redis/v8"
)

// setupTestRedis creates a miniredis instance for testing.
func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return New(client), mr
}

func TestDeckRoundTrip(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	deck := PersistedDeck{
		Cards: []card.IdeaCard{
			{
				ID:           "birthday:f1",
				Category:     card.CategoryBirthday,
				Archetype:    card.ArchetypeBirthdaySoon,
				Title:        "Ana's birthday is coming up",
				Subtitle:     "Birthday in 5 days",
				ContextChips: []string{"in 5 days"},
				FriendID:     "f1",
				DraftMessage: "Happy early birthday, Ana!",
				Score:        card.ScoreBreakdown{Base: 0.9, Context: 0.8, Habit: 0.5, Final: 0.7, Confidence: 0.2},
			},
			{
				ID:       "low_rsvp:e1",
				Category: card.CategoryLowRSVP,
				Title:    "Trivia",
				EventID:  "e1",
				Score:    card.ScoreBreakdown{Base: 0.8, Context: 0.6, Habit: 0.5, Final: 0.65},
			},
		},
		Index: 1,
	}

	if err := s.SaveDeck(ctx, "u1", "2026-03-14", deck); err != nil {
		t.Fatalf("SaveDeck() error = %v", err)
	}

	got, ok := s.LoadDeck(ctx, "u1", "2026-03-14")
	if !ok {
		t.Fatal("LoadDeck() should find the saved deck")
	}
	if got.Index != 1 {
		t.Errorf("Index = %d, expected 1", got.Index)
	}
	if len(got.Cards) != 2 {
		t.Fatalf("len(Cards) = %d, expected 2", len(got.Cards))
	}
	for i := range deck.Cards {
		if got.Cards[i].ID != deck.Cards[i].ID || got.Cards[i].Score != deck.Cards[i].Score {
			t.Errorf("card %d did not round-trip: %+v", i, got.Cards[i])
		}
	}
	if got.Cards[0].ContextChips[0] != "in 5 days" {
		t.Errorf("chips did not round-trip: %v", got.Cards[0].ContextChips)
	}
}

func TestLoadDeck_AbsentAndCorrupt(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	if _, ok := s.LoadDeck(ctx, "u1", "2026-03-14"); ok {
		t.Error("absent deck should load as missing")
	}

	mr.Set("ideas:u1:deck:2026-03-14", "{not json")
	if _, ok := s.LoadDeck(ctx, "u1", "2026-03-14"); ok {
		t.Error("corrupt deck should load as missing, not fail")
	}

	mr.Set("ideas:u1:deck:2026-03-14", `{"cards":[],"index":5}`)
	if _, ok := s.LoadDeck(ctx, "u1", "2026-03-14"); ok {
		t.Error("deck with out-of-range index should load as missing")
	}
}

func TestExposureRoundTrip(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	m := exposure.Map{
		"reconnect:f1": {LastShownDayKey: "2026-03-13", TimesShown: 3},
	}
	if err := s.SaveExposure(ctx, "u1", m); err != nil {
		t.Fatalf("SaveExposure() error = %v", err)
	}

	got := s.LoadExposure(ctx, "u1")
	if e, ok := got.Lookup("reconnect:f1"); !ok || e.TimesShown != 3 {
		t.Errorf("exposure did not round-trip: %+v", e)
	}

	// Absent map loads empty, never nil.
	empty := s.LoadExposure(ctx, "nobody")
	if empty == nil {
		t.Fatal("LoadExposure() must not return nil")
	}
}

func TestAcceptStatsRoundTrip(t *testing.T) {
	s, mr := setupTestRedis(t)
	ctx := context.Background()

	stats := learning.NewAcceptStats("2026-03")
	stats = learning.RecordSwipe(stats, card.CategoryReconnect, learning.ActionAccept)
	if err := s.SaveAcceptStats(ctx, "u1", stats); err != nil {
		t.Fatalf("SaveAcceptStats() error = %v", err)
	}

	got := s.LoadAcceptStats(ctx, "u1", "2026-03")
	if got.ResetMonth != "2026-03" {
		t.Errorf("ResetMonth = %s, expected 2026-03", got.ResetMonth)
	}
	if got.Tally(card.CategoryReconnect).Accepted != 1 {
		t.Errorf("tally did not round-trip: %+v", got.Tally(card.CategoryReconnect))
	}

	// Corrupt stats fall back to empty stats anchored to the current month.
	mr.Set("ideas:u2:accept_stats", "junk")
	fallback := s.LoadAcceptStats(ctx, "u2", "2026-04")
	if fallback.ResetMonth != "2026-04" || len(fallback.Categories) != 0 {
		t.Errorf("corrupt stats should fall back to empty: %+v", fallback)
	}
}

func TestPatternsPrunedOnLoad(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	m := learning.PatternMemory{
		"activity_repeat|tuesday climbing": {"2026-03-03", "2026-03-10"},
		"activity_repeat|ancient":          {"2025-01-01"},
	}
	if err := s.SavePatterns(ctx, "u1", m); err != nil {
		t.Fatalf("SavePatterns() error = %v", err)
	}

	got := s.LoadPatterns(ctx, "u1", "2026-03-14")
	if got.Occurrences("activity_repeat|tuesday climbing") != 2 {
		t.Errorf("fresh pattern should survive load: %+v", got)
	}
	if got.Occurrences("activity_repeat|ancient") != 0 {
		t.Error("stale pattern should be pruned on load")
	}
}

func TestSessionSignalsPerDay(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	today := learning.EmptySessionSignals()
	today = learning.RecordSessionSignal(today, card.ArchetypeBirthdaySoon, learning.ActionAccept)
	if err := s.SaveSessionSignals(ctx, "u1", "2026-03-14", today); err != nil {
		t.Fatalf("SaveSessionSignals() error = %v", err)
	}

	got := s.LoadSessionSignals(ctx, "u1", "2026-03-14")
	if got[card.ArchetypeBirthdaySoon].Accepted != 1 {
		t.Errorf("session signals did not round-trip: %+v", got)
	}

	// A different day-key starts empty.
	fresh := s.LoadSessionSignals(ctx, "u1", "2026-03-15")
	if len(fresh) != 0 {
		t.Errorf("new day should start with empty signals: %+v", fresh)
	}
}

func TestMarkCompleted_WriteOnce(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	first := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	wrote, err := s.MarkCompleted(ctx, "u1", "2026-03-14", first)
	if err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if !wrote {
		t.Error("first completion should write the stamp")
	}

	wrote, err = s.MarkCompleted(ctx, "u1", "2026-03-14", first.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}
	if wrote {
		t.Error("second completion must not rewrite the stamp")
	}

	at, ok := s.CompletedAt(ctx, "u1", "2026-03-14")
	if !ok {
		t.Fatal("CompletedAt() should find the stamp")
	}
	if !at.Equal(first) {
		t.Errorf("CompletedAt = %v, expected the first write %v", at, first)
	}
}

func TestKeysAreUserNamespaced(t *testing.T) {
	s, _ := setupTestRedis(t)
	ctx := context.Background()

	a := learning.NewAcceptStats("2026-03")
	a = learning.RecordSwipe(a, card.CategoryBirthday, learning.ActionAccept)
	if err := s.SaveAcceptStats(ctx, "alice", a); err != nil {
		t.Fatalf("SaveAcceptStats() error = %v", err)
	}

	b := s.LoadAcceptStats(ctx, "bob", "2026-03")
	if b.Tally(card.CategoryBirthday).Accepted != 0 {
		t.Error("one user's learning state leaked into another's")
	}
}
