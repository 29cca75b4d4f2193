package card

import "testing"

func TestMakeID(t *testing.T) {
	id := MakeID(CategoryReconnect, "friend-42")
	if id != "reconnect:friend-42" {
		t.Errorf("MakeID() = %q, expected reconnect:friend-42", id)
	}

	// Same entity, different category must produce a distinct ID so a
	// friend eligible for both reconnect and birthday yields two cards.
	other := MakeID(CategoryBirthday, "friend-42")
	if other == id {
		t.Error("card IDs must differ across categories for the same entity")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range All() {
		if !c.Valid() {
			t.Errorf("category %s should be valid", c)
		}
	}
	if Category("mystery").Valid() {
		t.Error("unknown category should not be valid")
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tuesday Climbing ", "tuesday climbing"},
		{"tuesday  climbing", "tuesday climbing"},
		{"  BOARD game NIGHT", "board game night"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestSignature(t *testing.T) {
	friendCard := &IdeaCard{Category: CategoryReconnect, FriendID: "f1", Title: "Reconnect with Dana"}
	if friendCard.Signature() != "reconnect|f1" {
		t.Errorf("Signature() = %q, expected reconnect|f1", friendCard.Signature())
	}

	repeatCard := &IdeaCard{Category: CategoryActivityRepeat, Title: "Tuesday  Climbing"}
	if repeatCard.Signature() != "activity_repeat|tuesday climbing" {
		t.Errorf("Signature() = %q, expected activity_repeat|tuesday climbing", repeatCard.Signature())
	}
}
