package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

// CapacityHoldingStatuses lists the statuses summed by availability queries.
var CapacityHoldingStatuses = []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed}

// HoldsCapacity reports whether reservations in this status count against unit capacity.
func (s ReservationStatus) HoldsCapacity() bool {
	for _, held := range CapacityHoldingStatuses {
		if s == held {
			return true
		}
	}
	return false
}

// CheckTransition validates a status change:
// pending -> confirmed -> completed, and pending|confirmed -> cancelled.
func CheckTransition(from, to ReservationStatus) error {
	switch from {
	case ReservationStatusCancelled:
		return ErrAlreadyCancelled
	case ReservationStatusCompleted:
		return ErrAlreadyCompleted
	}
	switch {
	case from == ReservationStatusPending && to == ReservationStatusConfirmed,
		from == ReservationStatusConfirmed && to == ReservationStatusCompleted,
		to == ReservationStatusCancelled:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Reservation commits Quantity rooms of one unit for Range. Quantity and Range never change once stored;
// only Status moves, and records are never deleted.
type Reservation struct {
	ID                 string
	Reference          string
	UnitID             string
	PropertyID         string
	Range              DateRange
	Quantity           int
	Guests             int
	Status             ReservationStatus
	TotalPrice         decimal.Decimal
	Currency           string
	IdempotencyKey     string
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	CancelledAt        *time.Time
}

// StatusChange is the mutable part of a reservation written on a transition.
type StatusChange struct {
	Status ReservationStatus
	Reason string
	At     time.Time
}

// Apply writes the change onto r, stamping CancelledAt for cancellations.
func (c StatusChange) Apply(r *Reservation) {
	r.Status = c.Status
	r.UpdatedAt = c.At
	if c.Status == ReservationStatusCancelled {
		at := c.At
		r.CancelledAt = &at
		r.CancellationReason = c.Reason
	}
}
