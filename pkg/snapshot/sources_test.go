package snapshot

import "testing"

func TestSourcesReady(t *testing.T) {
	s := NewSources()

	if s.Ready() {
		t.Error("fresh barrier should not be ready")
	}

	s.SetReconnect([]ReconnectSignal{{FriendID: "f1", Name: "Dana", DaysSinceHangout: 20}})
	s.SetBirthdays(nil)
	s.SetFriendEvents(nil)

	if s.Ready() {
		t.Error("barrier should not be ready with one source outstanding")
	}

	// Empty resolution still counts as settled.
	s.SetOwnRecent([]OwnEvent{})

	if !s.Ready() {
		t.Error("barrier should be ready once all four sources settled")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewSources()
	s.SetReconnect([]ReconnectSignal{{FriendID: "f1", Name: "Dana", DaysSinceHangout: 20}})

	snap := s.Snapshot()

	s.SetReconnect([]ReconnectSignal{{FriendID: "f2", Name: "Sam", DaysSinceHangout: 40}})

	if len(snap.Reconnect) != 1 || snap.Reconnect[0].FriendID != "f1" {
		t.Errorf("snapshot mutated by later Set: %+v", snap.Reconnect)
	}
}

func TestSetReplacesPreviousValue(t *testing.T) {
	s := NewSources()
	s.SetBirthdays([]BirthdaySignal{{FriendID: "f1", Name: "Dana"}})
	s.SetBirthdays([]BirthdaySignal{{FriendID: "f2", Name: "Sam"}})

	snap := s.Snapshot()
	if len(snap.Birthdays) != 1 || snap.Birthdays[0].FriendID != "f2" {
		t.Errorf("re-delivery should replace the source value, got %+v", snap.Birthdays)
	}
}
