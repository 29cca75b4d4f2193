// Package snapshot holds the read-only context bundle the engine generates
// candidates from. The four collections are resolved independently by the
// host (backend fetches, device calendar, ...); the engine never fails on a
// missing collection; absent means empty.
package snapshot

import "time"

// ReconnectSignal describes a friendship that has gone quiet.
type ReconnectSignal struct {
	FriendID         string `json:"friendId"`
	Name             string `json:"name"`
	AvatarURL        string `json:"avatarUrl,omitempty"`
	DaysSinceHangout int    `json:"daysSinceHangout"`
}

// BirthdaySignal describes a friend's upcoming birthday.
type BirthdaySignal struct {
	FriendID  string    `json:"friendId"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Birthday  time.Time `json:"birthday"`
}

// FriendEvent is another user's upcoming event that may need a boost.
type FriendEvent struct {
	EventID    string    `json:"eventId"`
	Title      string    `json:"title"`
	HostID     string    `json:"hostId"`
	HostName   string    `json:"hostName,omitempty"`
	StartsAt   time.Time `json:"startsAt"`
	Attendance int       `json:"attendance"`
	Capacity   int       `json:"capacity"` // 0 means no capacity signal
	PhotoURL   string    `json:"photoUrl,omitempty"`
}

// OwnEvent is one of the acting user's own recent events, used by the
// recurring-activity detector.
type OwnEvent struct {
	Title    string    `json:"title"`
	StartsAt time.Time `json:"startsAt"`
}

// Snapshot is the full context bundle for one generation pass.
type Snapshot struct {
	Reconnect    []ReconnectSignal `json:"reconnect"`
	Birthdays    []BirthdaySignal  `json:"birthdays"`
	FriendEvents []FriendEvent     `json:"friendEvents"`
	OwnRecent    []OwnEvent        `json:"ownRecent"`
}
