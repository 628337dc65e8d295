package model

import "testing"

func TestValidItemType(t *testing.T) {
	tests := []struct {
		typ      string
		expected bool
	}{
		{ItemTypeFound, true},
		{ItemTypeLost, true},
		{"", false},
		{"Found", false},
		{"stolen", false},
	}

	for _, tt := range tests {
		got := ValidItemType(tt.typ)
		if got != tt.expected {
			t.Errorf("ValidItemType(%q) = %v, want %v", tt.typ, got, tt.expected)
		}
	}
}

func TestApplyKeepsServerFields(t *testing.T) {
	it := Item{ID: 7, Image: "/uploads/a.jpg", Returned: true}
	it.Apply(ItemFields{
		ItemName:    "Umbrella",
		Description: "Black",
		Location:    "Lobby",
		Name:        "Ana",
		Email:       "ana@example.com",
		Type:        ItemTypeLost,
	})

	if it.ID != 7 || it.Image != "/uploads/a.jpg" || !it.Returned {
		t.Errorf("server-assigned fields changed: %+v", it)
	}
	if it.ItemName != "Umbrella" || it.Type != ItemTypeLost {
		t.Errorf("fields not applied: %+v", it)
	}
}
