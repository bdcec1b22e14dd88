package domain

import (
	"errors"
	"testing"
)

func TestCheckTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to ReservationStatus
		want     error
	}{
		{ReservationStatusPending, ReservationStatusConfirmed, nil},
		{ReservationStatusConfirmed, ReservationStatusCompleted, nil},
		{ReservationStatusPending, ReservationStatusCancelled, nil},
		{ReservationStatusConfirmed, ReservationStatusCancelled, nil},
		{ReservationStatusPending, ReservationStatusCompleted, ErrInvalidTransition},
		{ReservationStatusConfirmed, ReservationStatusConfirmed, ErrInvalidTransition},
		{ReservationStatusCancelled, ReservationStatusCancelled, ErrAlreadyCancelled},
		{ReservationStatusCancelled, ReservationStatusConfirmed, ErrAlreadyCancelled},
		{ReservationStatusCompleted, ReservationStatusCancelled, ErrAlreadyCompleted},
	}

	for _, tt := range tests {
		err := CheckTransition(tt.from, tt.to)
		if tt.want == nil && err != nil {
			t.Fatalf("%s -> %s: expected no error, got %v", tt.from, tt.to, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Fatalf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.want, err)
		}
	}
}

func TestAmenitySet(t *testing.T) {
	t.Parallel()

	set, err := ParseAmenitySet([]string{"wifi", "pool", "spa"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	required := NewAmenitySet(AmenityWiFi, AmenityPool)
	if !set.HasAll(required) {
		t.Fatalf("expected %v to contain %v", set.Names(), required.Names())
	}
	if set.HasAll(required.With(AmenityGym)) {
		t.Fatalf("gym is not in the set")
	}
	if _, err := ParseAmenitySet([]string{"helipad"}); !errors.Is(err, ErrUnknownAmenity) {
		t.Fatalf("expected ErrUnknownAmenity, got %v", err)
	}
}

func TestReservationStatus_HoldsCapacity(t *testing.T) {
	t.Parallel()

	want := map[ReservationStatus]bool{
		ReservationStatusPending:   true,
		ReservationStatusConfirmed: true,
		ReservationStatusCancelled: false,
		ReservationStatusCompleted: false,
	}
	for status, holds := range want {
		if got := status.HoldsCapacity(); got != holds {
			t.Fatalf("%s: expected HoldsCapacity %v, got %v", status, holds, got)
		}
	}
}
