package domain

import "testing"

func TestInventoryUnit_Accommodates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		maxOccupancy  int
		guests, rooms int
		want          bool
	}{
		{"fits one room", 2, 2, 1, true},
		{"too many for one room", 2, 3, 1, false},
		{"spread over rooms", 2, 3, 2, true},
		{"no guest count", 2, 0, 1, true},
		{"unset occupancy is unlimited", 0, 6, 1, true},
	}
	for _, tt := range tests {
		u := InventoryUnit{MaxOccupancy: tt.maxOccupancy}
		if got := u.Accommodates(tt.guests, tt.rooms); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
