package deck

import (
	"sync"

	"github.com/circleup/ideas-engine/pkg/scoring"
	"github.com/circleup/ideas-engine/pkg/store"
)

// Manager hands out one Machine per user, creating it on first use. All
// machines share the store and scoring config; per-user state lives in
// the machine (and under the user's keys in storage).
type Manager struct {
	mu       sync.Mutex
	st       *store.Store
	cfg      scoring.Config
	opts     []Option
	machines map[string]*Machine
}

// NewManager creates a manager over an established store.
func NewManager(st *store.Store, cfg scoring.Config, opts ...Option) *Manager {
	return &Manager{
		st:       st,
		cfg:      cfg,
		opts:     opts,
		machines: make(map[string]*Machine),
	}
}

// Machine returns the user's state machine, creating it lazily. A machine
// created fresh (after a restart, or on another instance) recovers the
// day's deck from storage on its first Evaluate.
func (m *Manager) Machine(userID string) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	mach, ok := m.machines[userID]
	if !ok {
		mach = NewMachine(userID, m.st, m.cfg, m.opts...)
		m.machines[userID] = mach
	}
	return mach
}
