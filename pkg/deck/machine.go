package deck

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/circleup/ideas-engine/pkg/candidate"
	"github.com/circleup/ideas-engine/pkg/card"
	"github.com/circleup/ideas-engine/pkg/daykey"
	"github.com/circleup/ideas-engine/pkg/exposure"
	"github.com/circleup/ideas-engine/pkg/learning"
	"github.com/circleup/ideas-engine/pkg/metrics"
	"github.com/circleup/ideas-engine/pkg/scoring"
	"github.com/circleup/ideas-engine/pkg/sequence"
	"github.com/circleup/ideas-engine/pkg/snapshot"
	"github.com/circleup/ideas-engine/pkg/store"
	"github.com/sirupsen/logrus"
)

// ErrNoActiveCard is returned by Swipe when the machine has no card under
// the cursor (not ready yet, or already completed).
var ErrNoActiveCard = errors.New("no active card to swipe")

// persistMaxElapsed bounds the background retry of a fire-and-forget
// write. After this, the write is dropped with an error log; in-memory
// state has already advanced and the next write supersedes the lost one.
const persistMaxElapsed = 15 * time.Second

// persistQueueDepth sizes the per-user write queue. Writes arrive at
// swipe pace (a handful per card), so the queue never fills in practice;
// the buffer only keeps a slow retry from blocking the swipe path.
const persistQueueDepth = 256

// Machine drives one user's daily deck through
// Empty → Building → Ready → Completed.
//
// All transitions happen in memory under the machine's lock and never
// wait on storage: persistence is fire-and-forget with retry, so the
// UI-visible state advances immediately regardless of storage latency.
// Writes drain through a single ordered queue per machine, so a retried
// older write can never land after (and clobber) a newer one.
type Machine struct {
	// mu serializes Evaluate/Swipe; each user's flow is user-paced but
	// the hosting process is concurrent.
	mu sync.Mutex

	userID  string
	st      *store.Store
	gen     *candidate.Generator
	scorer  *scoring.Scorer
	sources *snapshot.Sources

	now        func() time.Time
	syncWrites bool
	persistCh  chan persistOp

	day       daykey.Key
	state     State
	deck      Deck
	stats     learning.AcceptStats
	patterns  learning.PatternMemory
	session   learning.SessionSignals
	yesterday learning.SessionSignals
	stamped   bool
}

// Option adjusts machine construction.
type Option func(*Machine)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithSynchronousWrites makes persistence block the transition instead of
// running in the background, for tests that assert on stored state.
func WithSynchronousWrites() Option {
	return func(m *Machine) { m.syncWrites = true }
}

// NewMachine creates the state machine for one user.
func NewMachine(userID string, st *store.Store, cfg scoring.Config, opts ...Option) *Machine {
	m := &Machine{
		userID:  userID,
		st:      st,
		gen:     candidate.NewGenerator(cfg, userID),
		scorer:  scoring.NewScorer(cfg),
		sources: snapshot.NewSources(),
		now:     time.Now,
		state:   StateEmpty,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.syncWrites {
		m.persistCh = make(chan persistOp, persistQueueDepth)
		go m.persistLoop()
	}
	return m
}

// Sources returns the snapshot join barrier the host feeds resolved
// collections into.
func (m *Machine) Sources() *snapshot.Sources {
	return m.sources
}

// Evaluate advances the machine for the current day and returns its
// status. On a new day-key it loads persisted state (restoring an
// existing deck verbatim); while sources are outstanding it stays in
// Building; once all four have settled it builds the deck exactly once.
func (m *Machine) Evaluate(ctx context.Context) Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	today := daykey.FromTime(now)

	if m.day != today {
		m.beginDay(ctx, now, today)
	}

	if m.state == StateBuilding && m.sources.Ready() {
		m.build(ctx, now)
	}

	return m.status(now)
}

// SwipeResult is the outcome of one swipe transition.
type SwipeResult struct {
	Index      int         `json:"currentIndex"`
	State      State       `json:"state"`
	Navigation *Navigation `json:"navigation,omitempty"`
}

// Swipe applies an accept/dismiss to the card under the cursor: updates
// accept statistics, session signals, and (on accept) pattern memory,
// advances the cursor, and kicks off persistence. The in-memory
// transition is synchronous and never fails for storage reasons.
//
// Swiping does not re-derive the day-key: crossing midnight mid-session
// finishes the in-progress deck under its original day.
func (m *Machine) Swipe(ctx context.Context, action learning.Action) (*SwipeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady {
		return nil, ErrNoActiveCard
	}
	cur := m.deck.Current()
	if cur == nil {
		return nil, ErrNoActiveCard
	}

	m.stats = learning.RecordSwipe(m.stats, cur.Category, action)
	m.session = learning.RecordSessionSignal(m.session, cur.Archetype, action)

	var nav *Navigation
	if action == learning.ActionAccept {
		m.patterns = learning.RecordPattern(m.patterns, cur, m.day)
		nav = navigationFor(cur)
	}

	m.deck.Index++
	metrics.SwipesTotal.WithLabelValues(string(action), string(cur.Category)).Inc()

	m.persistAfterSwipe(action)

	if m.deck.Exhausted() {
		m.state = StateCompleted
		m.ensureStamp(ctx, m.now())
	}

	return &SwipeResult{Index: m.deck.Index, State: m.state, Navigation: nav}, nil
}

// beginDay loads the persisted state for a fresh day-key. The previous
// day's deck and completion record stay in storage, superseded rather
// than deleted.
func (m *Machine) beginDay(ctx context.Context, now time.Time, today daykey.Key) {
	logrus.Debugf("user %s: starting day %s", m.userID, today)

	m.day = today
	m.stamped = false

	month := daykey.MonthFromTime(now)
	loaded := m.st.LoadAcceptStats(ctx, m.userID, month)
	m.stats = learning.MaybeReset(loaded, month)
	if m.stats.ResetMonth != loaded.ResetMonth {
		stats := m.stats
		m.persist("accept stats", func() error {
			return m.st.SaveAcceptStats(context.Background(), m.userID, stats)
		})
	}

	m.patterns = m.st.LoadPatterns(ctx, m.userID, today)

	// Yesterday's signals are read once here as today's scoring bias and
	// never written back.
	yesterdayKey := daykey.FromTime(now.AddDate(0, 0, -1))
	m.yesterday = m.st.LoadSessionSignals(ctx, m.userID, yesterdayKey)
	m.session = m.st.LoadSessionSignals(ctx, m.userID, today)

	if _, ok := m.st.CompletedAt(ctx, m.userID, today); ok {
		m.stamped = true
	}

	if d, ok := m.st.LoadDeck(ctx, m.userID, today); ok {
		m.deck = Deck{Cards: d.Cards, Index: d.Index}
		if m.deck.Exhausted() {
			m.state = StateCompleted
			m.ensureStamp(ctx, now)
		} else {
			m.state = StateReady
		}
		logrus.Debugf("user %s: restored deck for %s at index %d", m.userID, today, d.Index)
		return
	}

	m.deck = Deck{}
	m.state = StateBuilding
}

// build runs one generation pass: candidates → scoring → anti-repeat,
// persists the deck, and applies the once-per-build side effects
// (exposure update, own-event pattern observations). It runs at most
// once per day-key: afterwards the state leaves Building and a persisted
// deck guards against rebuilds across restarts.
func (m *Machine) build(ctx context.Context, now time.Time) {
	start := time.Now()
	snap := m.sources.Snapshot()

	cards := m.gen.Generate(snap, m.patterns, now)
	exp := m.st.LoadExposure(ctx, m.userID)
	scored := m.scorer.ScoreAll(cards, scoring.Inputs{
		Stats:     m.stats,
		Exposure:  exp,
		Yesterday: m.yesterday,
		Today:     m.day,
	})
	ordered := sequence.AntiRepeat(scored)

	m.deck = Deck{Cards: ordered, Index: 0}

	if err := m.st.SaveDeck(ctx, m.userID, m.day, store.PersistedDeck{Cards: ordered, Index: 0}); err != nil {
		logrus.Errorf("user %s: failed to persist built deck: %v", m.userID, err)
	}

	// Exposure is updated exactly once, right after the build: never on
	// render or swipe, and never when a persisted deck is restored.
	if len(ordered) > 0 {
		ids := make([]string, len(ordered))
		for i := range ordered {
			ids[i] = ordered[i].ID
		}
		if err := m.st.SaveExposure(ctx, m.userID, exposure.MarkShown(exp, ids, m.day)); err != nil {
			logrus.Errorf("user %s: failed to persist exposure: %v", m.userID, err)
		}
	}

	m.observeOwnEvents(ctx, snap.OwnRecent)

	metrics.DecksBuiltTotal.Inc()
	metrics.DeckCardsDealt.Observe(float64(len(ordered)))
	metrics.BuildDuration.Observe(time.Since(start).Seconds())
	logrus.Infof("user %s: built deck for %s with %d cards", m.userID, m.day, len(ordered))

	if m.deck.Exhausted() {
		m.state = StateCompleted
		m.ensureStamp(ctx, now)
	} else {
		m.state = StateReady
	}
}

// observeOwnEvents feeds the user's own recent events into pattern
// memory so the recurring-activity detector accumulates across days.
func (m *Machine) observeOwnEvents(ctx context.Context, own []snapshot.OwnEvent) {
	recorded := 0
	pm := m.patterns
	for _, ev := range own {
		norm := card.NormalizeTitle(ev.Title)
		if norm == "" || ev.StartsAt.IsZero() {
			continue
		}
		day := daykey.FromTime(ev.StartsAt)
		if day.After(m.day) {
			continue
		}
		sig := string(card.CategoryActivityRepeat) + "|" + norm
		pm = learning.RecordSignature(pm, sig, day)
		recorded++
	}
	if recorded == 0 {
		return
	}

	m.patterns = pm
	if err := m.st.SavePatterns(ctx, m.userID, pm); err != nil {
		logrus.Errorf("user %s: failed to persist pattern memory: %v", m.userID, err)
	}
}

// ensureStamp records the first completion of the day. The SETNX in the
// store keeps the timestamp from ever being rewritten, even if two
// processes race.
func (m *Machine) ensureStamp(ctx context.Context, at time.Time) {
	if m.stamped {
		return
	}
	m.stamped = true

	wrote, err := m.st.MarkCompleted(ctx, m.userID, m.day, at)
	if err != nil {
		logrus.Errorf("user %s: failed to persist completion for %s: %v", m.userID, m.day, err)
		return
	}
	if wrote {
		metrics.DecksCompletedTotal.Inc()
		logrus.Infof("user %s: completed deck for %s", m.userID, m.day)
	}
}

// persistAfterSwipe snapshots the post-swipe state and writes it in the
// background.
func (m *Machine) persistAfterSwipe(action learning.Action) {
	day := m.day
	deck := store.PersistedDeck{Cards: m.deck.Cards, Index: m.deck.Index}
	stats := m.stats
	session := m.session
	patterns := m.patterns

	m.persist("deck", func() error {
		return m.st.SaveDeck(context.Background(), m.userID, day, deck)
	})
	m.persist("accept stats", func() error {
		return m.st.SaveAcceptStats(context.Background(), m.userID, stats)
	})
	m.persist("session signals", func() error {
		return m.st.SaveSessionSignals(context.Background(), m.userID, day, session)
	})
	if action == learning.ActionAccept {
		m.persist("pattern memory", func() error {
			return m.st.SavePatterns(context.Background(), m.userID, patterns)
		})
	}
}

// persistOp is one queued storage write.
type persistOp struct {
	what string
	fn   func() error
}

// persist hands a storage write to the machine's ordered writer without
// gating the in-memory transition. All of a user's writes go through one
// queue: a retried write from an earlier swipe finishing after a later
// swipe's write would otherwise roll the persisted cursor back.
func (m *Machine) persist(what string, fn func() error) {
	if m.syncWrites {
		if err := fn(); err != nil {
			logrus.Errorf("user %s: failed to persist %s: %v", m.userID, what, err)
		}
		return
	}
	m.persistCh <- persistOp{what: what, fn: fn}
}

// persistLoop drains the write queue one op at a time, retrying each
// with backoff before moving to the next. A write that exhausts its
// retries is dropped with an error log; the next write for the same key
// supersedes it.
func (m *Machine) persistLoop() {
	for op := range m.persistCh {
		b := backoff.NewExponentialBackOff()
		b.MaxElapsedTime = persistMaxElapsed
		if err := backoff.Retry(op.fn, b); err != nil {
			logrus.Errorf("user %s: failed to persist %s: %v", m.userID, op.what, err)
		}
	}
}

func (m *Machine) status(now time.Time) Status {
	return Status{
		State:         m.state,
		Day:           m.day,
		Cards:         m.deck.Cards,
		Index:         m.deck.Index,
		Ready:         m.state == StateReady,
		Complete:      m.state == StateCompleted,
		NextRefreshIn: daykey.Countdown(daykey.UntilNextRefresh(now)),
	}
}
