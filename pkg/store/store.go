// Package store persists all engine state as JSON values in redis, one
// logical key per concept, namespaced by user ID. Corrupt or absent
// values are never an error to callers: loads fall back to the empty
// default so the engine degrades to "rebuild from nothing" instead of
// failing.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/circleup/ideas-engine/pkg/exposure"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

const (
	// KeyPrefix is the prefix for all engine keys.
	KeyPrefix = "ideas:"

	// DayScopedTTL bounds day-keyed entries (deck, session signals,
	// completion stamps). Old days are superseded, not deleted; the TTL
	// just keeps them from accumulating forever.
	DayScopedTTL = 30 * 24 * time.Hour
)

// Store reads and writes engine state for any user.
type Store struct {
	client *redis.Client
}

// New creates a store over an established redis client.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// PersistedDeck is the serialized daily deck plus cursor.
type PersistedDeck struct {
	Cards []card.IdeaCard `json:"cards"`
	Index int             `json:"index"`
}

// Completion records when a day's deck was first swiped through.
type Completion struct {
	CompletedAt time.Time `json:"completedAt"`
}

func deckKey(userID string, day daykey.Key) string {
	return fmt.Sprintf("%s%s:deck:%s", KeyPrefix, userID, day)
}

func exposureKey(userID string) string {
	return fmt.Sprintf("%s%s:exposure", KeyPrefix, userID)
}

func statsKey(userID string) string {
	return fmt.Sprintf("%s%s:accept_stats", KeyPrefix, userID)
}

func patternsKey(userID string) string {
	return fmt.Sprintf("%s%s:patterns", KeyPrefix, userID)
}

func sessionKey(userID string, day daykey.Key) string {
	return fmt.Sprintf("%s%s:session:%s", KeyPrefix, userID, day)
}

func completedKey(userID string, day daykey.Key) string {
	return fmt.Sprintf("%s%s:completed:%s", KeyPrefix, userID, day)
}

// loadJSON unmarshals the value at key into out. Returns false, without
// an error, when the key is absent or the value is unreadable.
func (s *Store) loadJSON(ctx context.Context, key string, out interface{}) bool {
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logrus.Warnf("failed to read %s, treating as absent: %v", key, err)
		return false
	}

	if err := json.Unmarshal([]byte(data), out); err != nil {
		logrus.Warnf("corrupt value at %s, treating as absent: %v", key, err)
		return false
	}
	return true
}

func (s *Store) saveJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ping verifies the storage connection, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// LoadDeck returns the persisted deck for a day-key, or false when none
// (or an unreadable one) exists.
func (s *Store) LoadDeck(ctx context.Context, userID string, day daykey.Key) (PersistedDeck, bool) {
	var d PersistedDeck
	if !s.loadJSON(ctx, deckKey(userID, day), &d) {
		return PersistedDeck{}, false
	}
	if d.Index < 0 || d.Index > len(d.Cards) {
		logrus.Warnf("persisted deck for %s/%s has invalid index %d, treating as absent", userID, day, d.Index)
		return PersistedDeck{}, false
	}
	return d, true
}

// SaveDeck persists the deck and cursor for a day-key.
func (s *Store) SaveDeck(ctx context.Context, userID string, day daykey.Key, d PersistedDeck) error {
	return s.saveJSON(ctx, deckKey(userID, day), d, DayScopedTTL)
}

// LoadExposure returns the durable exposure map, empty when absent.
func (s *Store) LoadExposure(ctx context.Context, userID string) exposure.Map {
	m := make(exposure.Map)
	s.loadJSON(ctx, exposureKey(userID), &m)
	if m == nil {
		m = make(exposure.Map)
	}
	return m
}

// SaveExposure persists the exposure map.
func (s *Store) SaveExposure(ctx context.Context, userID string, m exposure.Map) error {
	return s.saveJSON(ctx, exposureKey(userID), m, 0)
}

// LoadAcceptStats returns the durable accept statistics. Absent or
// corrupt stats come back empty, anchored to the given month.
func (s *Store) LoadAcceptStats(ctx context.Context, userID string, nowMonth daykey.Month) learning.AcceptStats {
	stats := learning.NewAcceptStats(nowMonth)
	s.loadJSON(ctx, statsKey(userID), &stats)
	if stats.Categories == nil {
		stats = learning.NewAcceptStats(nowMonth)
	}
	return stats
}

// SaveAcceptStats persists the accept statistics and reset marker.
func (s *Store) SaveAcceptStats(ctx context.Context, userID string, stats learning.AcceptStats) error {
	return s.saveJSON(ctx, statsKey(userID), stats, 0)
}

// LoadPatterns returns pattern memory pruned to the retention window.
func (s *Store) LoadPatterns(ctx context.Context, userID string, today daykey.Key) learning.PatternMemory {
	m := make(learning.PatternMemory)
	s.loadJSON(ctx, patternsKey(userID), &m)
	return learning.Prune(m, today)
}

// SavePatterns persists pattern memory.
func (s *Store) SavePatterns(ctx context.Context, userID string, m learning.PatternMemory) error {
	return s.saveJSON(ctx, patternsKey(userID), m, 0)
}

// LoadSessionSignals returns the per-archetype swipe tally stored under a
// day-key, empty when absent. Loading yesterday's key is how the scorer
// gets its bias; that map is read once and never written back.
func (s *Store) LoadSessionSignals(ctx context.Context, userID string, day daykey.Key) learning.SessionSignals {
	m := learning.EmptySessionSignals()
	s.loadJSON(ctx, sessionKey(userID, day), &m)
	if m == nil {
		m = learning.EmptySessionSignals()
	}
	return m
}

// SaveSessionSignals persists today's session signals.
func (s *Store) SaveSessionSignals(ctx context.Context, userID string, day daykey.Key, m learning.SessionSignals) error {
	return s.saveJSON(ctx, sessionKey(userID, day), m, DayScopedTTL)
}

// MarkCompleted writes the day's completion stamp exactly once. SETNX
// guarantees the first writer wins; later calls within the day leave the
// original timestamp untouched. Returns whether this call wrote it.
func (s *Store) MarkCompleted(ctx context.Context, userID string, day daykey.Key, at time.Time) (bool, error) {
	data, err := json.Marshal(Completion{CompletedAt: at})
	if err != nil {
		return false, fmt.Errorf("failed to marshal completion: %w", err)
	}

	ok, err := s.client.SetNX(ctx, completedKey(userID, day), data, DayScopedTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to write completion for %s/%s: %w", userID, day, err)
	}
	return ok, nil
}

// CompletedAt returns the day's completion stamp, if one was written.
func (s *Store) CompletedAt(ctx context.Context, userID string, day daykey.Key) (time.Time, bool) {
	var c Completion
	if !s.loadJSON(ctx, completedKey(userID, day), &c) {
		return time.Time{}, false
	}
	return c.CompletedAt, true
}
