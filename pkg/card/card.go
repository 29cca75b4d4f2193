package card

import (
	"fmt"

	"github.com/circleup/ideas-engine/pkg/daykey"
)

// Category is the coarse suggestion type. The set is closed: every
// consumption site (scoring weights, anti-repeat bucketing, navigation)
// switches exhaustively over it, so adding a category is a compile-checked
// change.
type Category string

const (
	CategoryReconnect      Category = "reconnect"
	CategoryLowRSVP        Category = "low_rsvp"
	CategoryBirthday       Category = "birthday"
	CategoryActivityRepeat Category = "activity_repeat"
	// CategoryTiming is reserved for time-of-day suggestions. No generator
	// emits it yet, but it participates in every exhaustive switch.
	CategoryTiming Category = "timing"
)

// All lists every category in fixed order. Iteration order matters for
// deterministic tie-breaks in the anti-repeat sequencer.
func All() []Category {
	return []Category{
		CategoryReconnect,
		CategoryLowRSVP,
		CategoryBirthday,
		CategoryActivityRepeat,
		CategoryTiming,
	}
}

// Valid reports whether c is a known category. Persisted decks from older
// builds may carry categories this binary no longer knows.
func (c Category) Valid() bool {
	switch c {
	case CategoryReconnect, CategoryLowRSVP, CategoryBirthday, CategoryActivityRepeat, CategoryTiming:
		return true
	}
	return false
}

// Archetype is the finer-grained sub-classification used for learning
// granularity (session signals key on it).
type Archetype string

const (
	ArchetypeReconnectShortGap  Archetype = "reconnect_short_gap"
	ArchetypeReconnectMediumGap Archetype = "reconnect_medium_gap"
	ArchetypeReconnectLongGap   Archetype = "reconnect_long_gap"
	ArchetypeBirthdaySoon       Archetype = "birthday_soon"
	ArchetypeBirthdayUpcoming   Archetype = "birthday_upcoming"
	ArchetypeLowRSVPRescue      Archetype = "low_rsvp_rescue"
	ArchetypeActivityRepeat     Archetype = "activity_repeat_habit"
)

// ScoreBreakdown carries the component scores next to the derived final
// score so the deck can be inspected and replayed in tests.
type ScoreBreakdown struct {
	Base       float64 `json:"base"`
	Context    float64 `json:"context"`
	Habit      float64 `json:"habit"`
	Decay      float64 `json:"decay"`
	Final      float64 `json:"final"`
	Confidence float64 `json:"confidence"`
}

// IdeaCard is a single suggestion in the daily deck.
//
// Exactly one of FriendID / EventID is the primary navigation target per
// category: reconnect and birthday point at a friend, low_rsvp at an event,
// activity_repeat at neither (it opens a prefilled creation flow).
type IdeaCard struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Archetype Archetype `json:"archetype"`

	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`

	ContextChips []string `json:"contextChips,omitempty"`

	FriendID string `json:"friendId,omitempty"`
	EventID  string `json:"eventId,omitempty"`

	DraftMessage  string   `json:"draftMessage,omitempty"`
	DraftVariants []string `json:"draftVariants,omitempty"`

	AvatarURL string `json:"avatarUrl,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`

	Score ScoreBreakdown `json:"scoreBreakdown"`
}

// MakeID derives the stable card ID from the source entity and category.
// The same entity stays under the same ID across days, which is what lets
// the exposure tracker recognize repeats.
func MakeID(c Category, entityID string) string {
	return fmt.Sprintf("%s:%s", c, entityID)
}

// Signature returns the card's activity signature for pattern memory.
// Friend-anchored cards key on friend+category; event-anchored and
// creation cards key on their normalized title.
func (c *IdeaCard) Signature() string {
	if c.FriendID != "" {
		return fmt.Sprintf("%s|%s", c.Category, c.FriendID)
	}
	return fmt.Sprintf("%s|%s", c.Category, NormalizeTitle(c.Title))
}

// Exposure records how often and how recently one card has been shown.
type Exposure struct {
	LastShownDayKey daykey.Key `json:"lastShownDayKey"`
	TimesShown      int        `json:"timesShown"`
}
