package snapshot

import "sync"

// Sources is the join barrier over the four independently-resolved
// collections. Deck generation proceeds only once every source has settled
// at least once; settling with an empty slice is a normal resolution, not
// an error. Each Set replaces the previous value, so late re-deliveries
// before the day's build simply refresh the pending snapshot.
type Sources struct {
	mu sync.Mutex

	snap    Snapshot
	settled [4]bool
}

// NewSources returns a barrier with no sources settled.
func NewSources() *Sources {
	return &Sources{}
}

const (
	srcReconnect = iota
	srcBirthdays
	srcFriendEvents
	srcOwnRecent
)

// SetReconnect settles the reconnect-candidate source.
func (s *Sources) SetReconnect(v []ReconnectSignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Reconnect = v
	s.settled[srcReconnect] = true
}

// SetBirthdays settles the birthday source.
func (s *Sources) SetBirthdays(v []BirthdaySignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Birthdays = v
	s.settled[srcBirthdays] = true
}

// SetFriendEvents settles the friends'-upcoming-events source.
func (s *Sources) SetFriendEvents(v []FriendEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.FriendEvents = v
	s.settled[srcFriendEvents] = true
}

// SetOwnRecent settles the own-recent-events source.
func (s *Sources) SetOwnRecent(v []OwnEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.OwnRecent = v
	s.settled[srcOwnRecent] = true
}

// Ready reports whether every source has settled at least once.
func (s *Sources) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ok := range s.settled {
		if !ok {
			return false
		}
	}
	return true
}

// Snapshot returns a copy of the current bundle. Callers get value
// semantics; later Sets do not mutate a snapshot already handed out.
func (s *Sources) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Snapshot{
		Reconnect:    make([]ReconnectSignal, len(s.snap.Reconnect)),
		Birthdays:    make([]BirthdaySignal, len(s.snap.Birthdays)),
		FriendEvents: make([]FriendEvent, len(s.snap.FriendEvents)),
		OwnRecent:    make([]OwnEvent, len(s.snap.OwnRecent)),
	}
	copy(out.Reconnect, s.snap.Reconnect)
	copy(out.Birthdays, s.snap.Birthdays)
	copy(out.FriendEvents, s.snap.FriendEvents)
	copy(out.OwnRecent, s.snap.OwnRecent)
	return out
}
