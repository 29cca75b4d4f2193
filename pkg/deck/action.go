package deck

import "github.com/circleup/ideas-engine/pkg/card"

// NavigationType identifies the outbound action an accepted card asks the
// host to perform. Navigation is invoked by, but not part of, the swipe
// transition's correctness; a host that ignores it leaves the machine
// consistent.
type NavigationType string

const (
	// NavigateOpenEvent opens an existing event.
	NavigateOpenEvent NavigationType = "open_event"
	// NavigateOpenConversation opens (or creates) a two-person
	// conversation, optionally prefilled with a draft message.
	NavigateOpenConversation NavigationType = "open_conversation"
	// NavigateCreateCircle opens the circle-creation flow prefilled with
	// a title.
	NavigateCreateCircle NavigationType = "create_circle"
)

// Navigation is the request handed to the host when a card is accepted.
type Navigation struct {
	Type         NavigationType `json:"type"`
	FriendID     string         `json:"friendId,omitempty"`
	EventID      string         `json:"eventId,omitempty"`
	PrefillTitle string         `json:"prefillTitle,omitempty"`
	DraftMessage string         `json:"draftMessage,omitempty"`
}

// navigationFor maps an accepted card to its outbound request. The switch
// is exhaustive over the category enum.
func navigationFor(c *card.IdeaCard) *Navigation {
	switch c.Category {
	case card.CategoryReconnect, card.CategoryBirthday:
		if c.FriendID == "" {
			return nil
		}
		return &Navigation{
			Type:         NavigateOpenConversation,
			FriendID:     c.FriendID,
			DraftMessage: c.DraftMessage,
		}
	case card.CategoryLowRSVP:
		if c.EventID == "" {
			return nil
		}
		return &Navigation{
			Type:    NavigateOpenEvent,
			EventID: c.EventID,
		}
	case card.CategoryActivityRepeat:
		return &Navigation{
			Type:         NavigateCreateCircle,
			PrefillTitle: c.Title,
		}
	case card.CategoryTiming:
		// Reserved category, no navigation yet.
		return nil
	}
	return nil
}
