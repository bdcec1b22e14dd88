package resilient

import (
	"context"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

type Inventory interface {
	GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error)
	GetProperty(ctx context.Context, propertyID string) (domain.Property, error)
	ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error)
	CreateProperty(ctx context.Context, property domain.Property) error
	ListProperties(ctx context.Context) ([]domain.Property, error)
	CreateUnit(ctx context.Context, unit domain.InventoryUnit) error
	ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error)
}

type Reservations interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	GetUnitForUpdate(ctx context.Context, unitID string) (domain.InventoryUnit, error)
	ListOverlapping(ctx context.Context, unitID string, rng domain.DateRange) ([]domain.Reservation, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error)
	CreateReservation(ctx context.Context, res domain.Reservation) error
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, change domain.StatusChange) error
}

type InventoryStore struct {
	next Inventory
	b    *Breaker
}

func NewInventoryStore(next Inventory, b *Breaker) *InventoryStore {
	return &InventoryStore{next: next, b: b}
}

func (s *InventoryStore) GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	return call(ctx, s.b, func() (domain.InventoryUnit, error) { return s.next.GetUnit(ctx, unitID) })
}

func (s *InventoryStore) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	return call(ctx, s.b, func() (domain.Property, error) { return s.next.GetProperty(ctx, propertyID) })
}

func (s *InventoryStore) ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error) {
	return call(ctx, s.b, func() ([]domain.Listing, error) { return s.next.ListUnitsByDestination(ctx, destinationID) })
}

func (s *InventoryStore) CreateProperty(ctx context.Context, property domain.Property) error {
	return s.b.do(ctx, func() error { return s.next.CreateProperty(ctx, property) })
}

func (s *InventoryStore) ListProperties(ctx context.Context) ([]domain.Property, error) {
	return call(ctx, s.b, func() ([]domain.Property, error) { return s.next.ListProperties(ctx) })
}

func (s *InventoryStore) CreateUnit(ctx context.Context, unit domain.InventoryUnit) error {
	return s.b.do(ctx, func() error { return s.next.CreateUnit(ctx, unit) })
}

func (s *InventoryStore) ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error) {
	return call(ctx, s.b, func() ([]domain.InventoryUnit, error) { return s.next.ListUnitsByProperty(ctx, propertyID) })
}

// ReservationStore guards a whole transaction as one breaker call; statements inside it run directly.
type ReservationStore struct {
	next Reservations
	b    *Breaker
}

func NewReservationStore(next Reservations, b *Breaker) *ReservationStore {
	return &ReservationStore{next: next, b: b}
}

func (s *ReservationStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.b.do(ctx, func() error {
		return s.next.WithTx(context.WithValue(ctx, inTxKey{}, true), fn)
	})
}

func (s *ReservationStore) GetUnitForUpdate(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	return call(ctx, s.b, func() (domain.InventoryUnit, error) { return s.next.GetUnitForUpdate(ctx, unitID) })
}

func (s *ReservationStore) ListOverlapping(ctx context.Context, unitID string, rng domain.DateRange) ([]domain.Reservation, error) {
	return call(ctx, s.b, func() ([]domain.Reservation, error) { return s.next.ListOverlapping(ctx, unitID, rng) })
}

func (s *ReservationStore) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	return call(ctx, s.b, func() (*domain.Reservation, error) { return s.next.FindByIdempotencyKey(ctx, key) })
}

func (s *ReservationStore) CreateReservation(ctx context.Context, res domain.Reservation) error {
	return s.b.do(ctx, func() error { return s.next.CreateReservation(ctx, res) })
}

func (s *ReservationStore) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	return call(ctx, s.b, func() (domain.Reservation, error) { return s.next.GetReservation(ctx, id) })
}

func (s *ReservationStore) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	return call(ctx, s.b, func() (domain.Reservation, error) { return s.next.GetReservationForUpdate(ctx, id) })
}

func (s *ReservationStore) UpdateReservationStatus(ctx context.Context, id string, change domain.StatusChange) error {
	return s.b.do(ctx, func() error { return s.next.UpdateReservationStatus(ctx, id, change) })
}
