package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/cimillas/ultimate-stay/internal/clock"
	"github.com/cimillas/ultimate-stay/internal/domain"
	"github.com/cimillas/ultimate-stay/internal/overlap"
	"github.com/cimillas/ultimate-stay/internal/pricing"
)

type InventoryReader interface {
	GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error)
	GetProperty(ctx context.Context, propertyID string) (domain.Property, error)
	ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error)
	ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error)
}

type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetUnitForUpdate loads the unit and holds its exclusion until the surrounding tx ends.
	GetUnitForUpdate(ctx context.Context, unitID string) (domain.InventoryUnit, error)
	// ListOverlapping returns the capacity-holding reservations of unitID overlapping rng.
	ListOverlapping(ctx context.Context, unitID string, rng domain.DateRange) ([]domain.Reservation, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error)
	CreateReservation(ctx context.Context, res domain.Reservation) error
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, change domain.StatusChange) error
}

const (
	defaultMaxNights   = 30
	defaultHorizonDays = 365
)

type AvailabilityService struct {
	inventory   InventoryReader
	repo        ReservationRepository
	pricing     *pricing.Calculator
	clock       clock.Clock
	maxNights   int
	horizonDays int
	log         logrus.FieldLogger
	tracer      trace.Tracer
}

func NewAvailabilityService(inventory InventoryReader, repo ReservationRepository, calc *pricing.Calculator, clk clock.Clock, opts ...AvailabilityOption) *AvailabilityService {
	svc := &AvailabilityService{
		inventory:   inventory,
		repo:        repo,
		pricing:     calc,
		clock:       clk,
		maxNights:   defaultMaxNights,
		horizonDays: defaultHorizonDays,
		log:         logrus.StandardLogger(),
		tracer:      defaultTracer(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type AvailabilityOption func(*AvailabilityService)

// WithMaxNights caps the length of a single stay.
func WithMaxNights(n int) AvailabilityOption {
	return func(s *AvailabilityService) {
		if n > 0 {
			s.maxNights = n
		}
	}
}

// WithHorizonDays caps how far ahead of today a stay may start.
func WithHorizonDays(n int) AvailabilityOption {
	return func(s *AvailabilityService) {
		if n > 0 {
			s.horizonDays = n
		}
	}
}

func WithLogger(l logrus.FieldLogger) AvailabilityOption {
	return func(s *AvailabilityService) {
		if l != nil {
			s.log = l
		}
	}
}

func WithTracer(t trace.Tracer) AvailabilityOption {
	return func(s *AvailabilityService) {
		if t != nil {
			s.tracer = t
		}
	}
}

// ValidateStay checks rng is a well-formed stay inside the booking horizon as seen from today.
func (s *AvailabilityService) ValidateStay(rng domain.DateRange, today domain.Date) error {
	if err := rng.Validate(); err != nil {
		return err
	}
	if rng.CheckIn.Before(today) {
		return fmt.Errorf("%w: check_in %s is in the past", domain.ErrInvalidRange, rng.CheckIn)
	}
	if rng.Nights() > s.maxNights {
		return fmt.Errorf("%w: stay of %d nights exceeds maximum of %d", domain.ErrInvalidRange, rng.Nights(), s.maxNights)
	}
	if today.DaysUntil(rng.CheckIn) > s.horizonDays {
		return fmt.Errorf("%w: check_in %s is more than %d days ahead", domain.ErrInvalidRange, rng.CheckIn, s.horizonDays)
	}
	return nil
}

// CheckAvailable reports free rooms per night for unitID over rng. It never mutates state and the
// answer may be stale by the time a commit runs; Commit rechecks under exclusion.
func (s *AvailabilityService) CheckAvailable(ctx context.Context, unitID string, rng domain.DateRange, quantity int) (_ domain.Availability, err error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.CheckAvailable", trace.WithAttributes(
		attribute.String("unit.id", unitID),
		attribute.Int("quantity", quantity),
	))
	defer func() { endSpan(span, err) }()

	if quantity <= 0 {
		return domain.Availability{}, domain.ErrInvalidQuantity
	}
	if err := s.ValidateStay(rng, clock.Today(s.clock)); err != nil {
		return domain.Availability{}, err
	}

	unit, err := s.inventory.GetUnit(ctx, unitID)
	if err != nil {
		return domain.Availability{}, err
	}
	reservations, err := s.repo.ListOverlapping(ctx, unit.ID, rng)
	if err != nil {
		return domain.Availability{}, err
	}
	return availabilityOf(unit, rng, quantity, reservations), nil
}

// Quote prices a stay in unitID without reserving anything.
func (s *AvailabilityService) Quote(ctx context.Context, unitID string, rng domain.DateRange) (_ domain.Quote, err error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.Quote", trace.WithAttributes(attribute.String("unit.id", unitID)))
	defer func() { endSpan(span, err) }()

	today := clock.Today(s.clock)
	if err := s.ValidateStay(rng, today); err != nil {
		return domain.Quote{}, err
	}
	unit, err := s.inventory.GetUnit(ctx, unitID)
	if err != nil {
		return domain.Quote{}, err
	}
	return s.pricing.Price(unit, rng, domain.PricingContext{Today: today})
}

// UnitOffer is one room type of a property with enough free rooms for the stay.
type UnitOffer struct {
	Unit         domain.InventoryUnit
	Availability domain.Availability
	Quote        domain.Quote
}

type PropertyAvailability struct {
	Property domain.Property
	Range    domain.DateRange
	Units    []UnitOffer
}

// PropertyAvailability lists every unit of propertyID with at least quantity rooms free on each night of
// rng, priced per room. Units without room are left out; an empty list is not an error.
func (s *AvailabilityService) PropertyAvailability(ctx context.Context, propertyID string, rng domain.DateRange, quantity int) (_ PropertyAvailability, err error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.PropertyAvailability", trace.WithAttributes(
		attribute.String("property.id", propertyID),
		attribute.Int("quantity", quantity),
	))
	defer func() { endSpan(span, err) }()

	if propertyID == "" {
		return PropertyAvailability{}, domain.ErrInvalidID
	}
	if quantity <= 0 {
		return PropertyAvailability{}, domain.ErrInvalidQuantity
	}
	today := clock.Today(s.clock)
	if err := s.ValidateStay(rng, today); err != nil {
		return PropertyAvailability{}, err
	}

	property, err := s.inventory.GetProperty(ctx, propertyID)
	if err != nil {
		return PropertyAvailability{}, err
	}
	units, err := s.inventory.ListUnitsByProperty(ctx, property.ID)
	if err != nil {
		return PropertyAvailability{}, err
	}

	out := PropertyAvailability{Property: property, Range: rng, Units: []UnitOffer{}}
	for _, unit := range units {
		reservations, err := s.repo.ListOverlapping(ctx, unit.ID, rng)
		if err != nil {
			return PropertyAvailability{}, err
		}
		avail := availabilityOf(unit, rng, quantity, reservations)
		if !avail.Bookable {
			continue
		}
		quote, err := s.pricing.Price(unit, rng, domain.PricingContext{Today: today})
		if err != nil {
			return PropertyAvailability{}, fmt.Errorf("price unit %s: %w", unit.ID, err)
		}
		out.Units = append(out.Units, UnitOffer{Unit: unit, Availability: avail, Quote: quote})
	}
	span.SetAttributes(attribute.Int("units.available", len(out.Units)))
	return out, nil
}

type CommitInput struct {
	UnitID   string
	Range    domain.DateRange
	Quantity int
	Guests   int
	// IdempotencyKey is optional; a retry with the same key returns the original reservation.
	IdempotencyKey string
	// Pending creates a reservation awaiting confirmation. It holds capacity like a confirmed one.
	Pending bool
}

func (in CommitInput) matches(res domain.Reservation) bool {
	return res.UnitID == in.UnitID &&
		res.Range.CheckIn.Equal(in.Range.CheckIn) &&
		res.Range.CheckOut.Equal(in.Range.CheckOut) &&
		res.Quantity == in.Quantity
}

// Commit atomically rechecks availability under per-unit exclusion and records the reservation, or
// rejects with ErrInsufficientCapacity leaving every stored reservation untouched.
func (s *AvailabilityService) Commit(ctx context.Context, in CommitInput) (_ domain.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.Commit", trace.WithAttributes(
		attribute.String("unit.id", in.UnitID),
		attribute.Int("quantity", in.Quantity),
		attribute.String("range", in.Range.String()),
	))
	defer func() { endSpan(span, err) }()

	if in.Quantity <= 0 {
		return domain.Reservation{}, domain.ErrInvalidQuantity
	}
	if in.Guests < 0 {
		return domain.Reservation{}, fmt.Errorf("%w: guests must not be negative", domain.ErrInvalidQuantity)
	}
	today := clock.Today(s.clock)
	if err := s.ValidateStay(in.Range, today); err != nil {
		return domain.Reservation{}, err
	}

	var result domain.Reservation
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		unit, err := s.repo.GetUnitForUpdate(txCtx, in.UnitID)
		if err != nil {
			return err
		}

		if in.IdempotencyKey != "" {
			existing, err := s.repo.FindByIdempotencyKey(txCtx, in.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				if !in.matches(*existing) {
					return domain.ErrIdempotencyConflict
				}
				result = *existing
				return nil
			}
		}

		if !unit.Accommodates(in.Guests, in.Quantity) {
			return fmt.Errorf("%w: %d guests exceed occupancy of %d x %d rooms", domain.ErrInvalidQuantity, in.Guests, unit.MaxOccupancy, in.Quantity)
		}

		reservations, err := s.repo.ListOverlapping(txCtx, unit.ID, in.Range)
		if err != nil {
			return err
		}
		avail := availabilityOf(unit, in.Range, in.Quantity, reservations)
		if !avail.Bookable {
			s.log.WithFields(logrus.Fields{
				"unit_id":   unit.ID,
				"range":     in.Range.String(),
				"requested": in.Quantity,
				"min_free":  avail.MinFree,
			}).Debug("commit rejected: insufficient capacity")
			return fmt.Errorf("%w: %d rooms free, %d requested", domain.ErrInsufficientCapacity, avail.MinFree, in.Quantity)
		}

		// The quote is per room; the reservation pays for every room it holds.
		quote, err := s.pricing.Price(unit, in.Range, domain.PricingContext{Today: today})
		if err != nil {
			return err
		}

		now := s.clock.Now()
		status := domain.ReservationStatusConfirmed
		if in.Pending {
			status = domain.ReservationStatusPending
		}
		res := domain.Reservation{
			ID:             newUUID(),
			Reference:      newReference(),
			UnitID:         unit.ID,
			PropertyID:     unit.PropertyID,
			Range:          in.Range,
			Quantity:       in.Quantity,
			Guests:         in.Guests,
			Status:         status,
			TotalPrice:     quote.TotalPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
			Currency:       quote.Currency,
			IdempotencyKey: in.IdempotencyKey,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := s.repo.CreateReservation(txCtx, res); err != nil {
			// Same key used concurrently against another unit: report the stored one if it matches.
			if errors.Is(err, domain.ErrIdempotencyConflict) && in.IdempotencyKey != "" {
				existing, findErr := s.repo.FindByIdempotencyKey(txCtx, in.IdempotencyKey)
				if findErr != nil {
					return findErr
				}
				if existing != nil && in.matches(*existing) {
					result = *existing
					return nil
				}
			}
			return err
		}

		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": result.ID,
		"unit_id":        result.UnitID,
		"status":         result.Status,
	}).Info("reservation committed")
	return result, nil
}

func (s *AvailabilityService) Get(ctx context.Context, id string) (domain.Reservation, error) {
	if id == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}
	return s.repo.GetReservation(ctx, id)
}

// Cancel releases the reservation's capacity. Cancelling twice fails with ErrAlreadyCancelled.
func (s *AvailabilityService) Cancel(ctx context.Context, id, reason string) (domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusCancelled, reason)
}

func (s *AvailabilityService) Confirm(ctx context.Context, id string) (domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusConfirmed, "")
}

func (s *AvailabilityService) Complete(ctx context.Context, id string) (domain.Reservation, error) {
	return s.transition(ctx, id, domain.ReservationStatusCompleted, "")
}

func (s *AvailabilityService) transition(ctx context.Context, id string, to domain.ReservationStatus, reason string) (_ domain.Reservation, err error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.transition", trace.WithAttributes(
		attribute.String("reservation.id", id),
		attribute.String("status.to", string(to)),
	))
	defer func() { endSpan(span, err) }()

	if id == "" {
		return domain.Reservation{}, domain.ErrInvalidID
	}

	var result domain.Reservation
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetReservationForUpdate(txCtx, id)
		if err != nil {
			return err
		}
		if err := domain.CheckTransition(res.Status, to); err != nil {
			return err
		}

		change := domain.StatusChange{Status: to, Reason: reason, At: s.clock.Now()}
		if err := s.repo.UpdateReservationStatus(txCtx, id, change); err != nil {
			return err
		}
		change.Apply(&res)
		result = res
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.log.WithFields(logrus.Fields{
		"reservation_id": result.ID,
		"status":         result.Status,
	}).Info("reservation status changed")
	return result, nil
}

func availabilityOf(unit domain.InventoryUnit, rng domain.DateRange, quantity int, reservations []domain.Reservation) domain.Availability {
	out := domain.Availability{
		UnitID:    unit.ID,
		Range:     rng,
		Capacity:  unit.TotalCapacity,
		Requested: quantity,
		MinFree:   unit.TotalCapacity,
		Nights:    make([]domain.NightAvailability, 0, rng.Nights()),
	}

	overlap.Committed(unit.ID, rng, reservations).Each(func(night domain.Date, committed int) {
		free := unit.TotalCapacity - committed
		if free < 0 {
			free = 0
		}
		if free < out.MinFree {
			out.MinFree = free
		}
		out.Nights = append(out.Nights, domain.NightAvailability{Night: night, Committed: committed, Free: free})
	})
	if out.MinFree < 0 {
		out.MinFree = 0
	}
	out.Bookable = quantity > 0 && out.MinFree >= quantity
	return out
}
