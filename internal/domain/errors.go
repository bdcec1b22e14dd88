package domain

import "errors"

var (
	ErrInvalidRange           = errors.New("invalid date range")
	ErrInsufficientCapacity   = errors.New("insufficient capacity")
	ErrUnknownUnit            = errors.New("unknown inventory unit")
	ErrPersistenceUnavailable = errors.New("persistence unavailable")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInvalidPrice           = errors.New("invalid price")
	ErrInvalidCapacity        = errors.New("invalid capacity")
	ErrInvalidID              = errors.New("invalid id")
	ErrNameRequired           = errors.New("name required")
	ErrUnknownAmenity         = errors.New("unknown amenity")
	ErrPropertyNotFound       = errors.New("property not found")
	ErrReservationNotFound    = errors.New("reservation not found")
	ErrAlreadyCancelled       = errors.New("reservation already cancelled")
	ErrAlreadyCompleted       = errors.New("reservation already completed")
	ErrInvalidTransition      = errors.New("invalid reservation status transition")
	ErrIdempotencyConflict    = errors.New("idempotency conflict")
	ErrInvalidPropertyType    = errors.New("invalid property type")
	ErrInvalidRating          = errors.New("invalid rating")
	ErrInvalidQuery           = errors.New("invalid search query")
)
