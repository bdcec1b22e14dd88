// Package memory is an in-process store for inventory and reservations. Commits against the same unit
// are serialized by a per-unit lock; different units proceed in parallel.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cimillas/ultimate-stay/internal/domain"
	"github.com/cimillas/ultimate-stay/internal/overlap"
)

type Store struct {
	mu            sync.RWMutex
	properties    map[string]domain.Property
	propertyOrder []string
	units         map[string]domain.InventoryUnit
	// reservationUnit maps reservation id to unit id.
	reservationUnit map[string]string
	byUnit          map[string]*overlap.Index
	byKey           map[string]string
	pendingKeys     map[string]bool

	locks *unitLocks
}

func NewStore() *Store {
	return &Store{
		properties:      make(map[string]domain.Property),
		units:           make(map[string]domain.InventoryUnit),
		reservationUnit: make(map[string]string),
		byUnit:          make(map[string]*overlap.Index),
		byKey:           make(map[string]string),
		pendingKeys:     make(map[string]bool),
		locks:           newUnitLocks(),
	}
}

func (s *Store) CreateProperty(_ context.Context, property domain.Property) error {
	if property.ID == "" {
		return domain.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[property.ID]; !ok {
		s.propertyOrder = append(s.propertyOrder, property.ID)
	}
	s.properties[property.ID] = property
	return nil
}

func (s *Store) ListProperties(_ context.Context) ([]domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Property, 0, len(s.propertyOrder))
	for _, id := range s.propertyOrder {
		out = append(out, s.properties[id])
	}
	return out, nil
}

func (s *Store) GetProperty(_ context.Context, propertyID string) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.properties[propertyID]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (s *Store) CreateUnit(_ context.Context, unit domain.InventoryUnit) error {
	if unit.ID == "" {
		return domain.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.properties[unit.PropertyID]; !ok {
		return domain.ErrPropertyNotFound
	}
	s.units[unit.ID] = unit
	return nil
}

func (s *Store) GetUnit(_ context.Context, unitID string) (domain.InventoryUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.units[unitID]
	if !ok {
		return domain.InventoryUnit{}, domain.ErrUnknownUnit
	}
	return u, nil
}

func (s *Store) ListUnitsByProperty(_ context.Context, propertyID string) ([]domain.InventoryUnit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.properties[propertyID]; !ok {
		return nil, domain.ErrPropertyNotFound
	}
	out := []domain.InventoryUnit{}
	for _, u := range s.units {
		if u.PropertyID == propertyID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListUnitsByDestination(_ context.Context, destinationID string) ([]domain.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Listing{}
	for _, u := range s.units {
		p := s.properties[u.PropertyID]
		if p.DestinationID == destinationID {
			out = append(out, domain.Listing{Unit: u, Property: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit.ID < out[j].Unit.ID })
	return out, nil
}

// GetUnitForUpdate takes the unit's lock for the rest of the surrounding tx.
func (s *Store) GetUnitForUpdate(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	if _, err := s.GetUnit(ctx, unitID); err != nil {
		return domain.InventoryUnit{}, err
	}
	if t := txFromContext(ctx); t != nil {
		if err := s.lockUnit(ctx, t, unitID); err != nil {
			return domain.InventoryUnit{}, err
		}
	}
	return s.GetUnit(ctx, unitID)
}

func (s *Store) ListOverlapping(ctx context.Context, unitID string, rng domain.DateRange) ([]domain.Reservation, error) {
	s.mu.RLock()
	var found []domain.Reservation
	if idx, ok := s.byUnit[unitID]; ok {
		found = idx.Overlapping(rng)
	}
	s.mu.RUnlock()

	if t := txFromContext(ctx); t != nil {
		for _, res := range t.creates {
			if res.UnitID == unitID && res.Range.Overlaps(rng) {
				found = append(found, res)
			}
		}
	}

	out := found[:0]
	for _, res := range found {
		if res.Status.HoldsCapacity() {
			out = append(out, res)
		}
	}
	return out, nil
}

func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Reservation, error) {
	if key == "" {
		return nil, nil
	}
	if t := txFromContext(ctx); t != nil {
		for _, res := range t.creates {
			if res.IdempotencyKey == key {
				r := res
				return &r, nil
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, nil
	}
	res, _ := s.byUnit[s.reservationUnit[id]].Get(id)
	return &res, nil
}

// CreateReservation stages res in the surrounding tx, or stores it directly without one. A key already
// used by a stored or in-flight reservation fails with ErrIdempotencyConflict.
func (s *Store) CreateReservation(ctx context.Context, res domain.Reservation) error {
	if res.ID == "" {
		return domain.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.units[res.UnitID]; !ok {
		return domain.ErrUnknownUnit
	}
	if res.IdempotencyKey != "" {
		if _, ok := s.byKey[res.IdempotencyKey]; ok || s.pendingKeys[res.IdempotencyKey] {
			return domain.ErrIdempotencyConflict
		}
	}

	t := txFromContext(ctx)
	if t == nil {
		s.insertLocked(res)
		return nil
	}
	if res.IdempotencyKey != "" {
		s.pendingKeys[res.IdempotencyKey] = true
		t.keys = append(t.keys, res.IdempotencyKey)
	}
	t.creates = append(t.creates, res)
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	if t := txFromContext(ctx); t != nil {
		for _, res := range t.creates {
			if res.ID == id {
				return res, nil
			}
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	unitID, ok := s.reservationUnit[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	res, _ := s.byUnit[unitID].Get(id)
	return res, nil
}

// GetReservationForUpdate locks the reservation's unit, so transitions serialize with commits on it.
func (s *Store) GetReservationForUpdate(ctx context.Context, id string) (domain.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	t := txFromContext(ctx)
	if t == nil {
		return res, nil
	}
	if err := s.lockUnit(ctx, t, res.UnitID); err != nil {
		return domain.Reservation{}, err
	}
	return s.GetReservation(ctx, id)
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id string, change domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservationUnit[id]; !ok {
		return domain.ErrReservationNotFound
	}
	if t := txFromContext(ctx); t != nil {
		t.updates = append(t.updates, statusUpdate{id: id, change: change})
		return nil
	}
	s.updateLocked(id, change)
	return nil
}

func (s *Store) insertLocked(res domain.Reservation) {
	idx, ok := s.byUnit[res.UnitID]
	if !ok {
		idx = overlap.NewIndex()
		s.byUnit[res.UnitID] = idx
	}
	idx.Insert(res)
	s.reservationUnit[res.ID] = res.UnitID
	if res.IdempotencyKey != "" {
		s.byKey[res.IdempotencyKey] = res.ID
	}
}

func (s *Store) updateLocked(id string, change domain.StatusChange) {
	idx := s.byUnit[s.reservationUnit[id]]
	res, ok := idx.Get(id)
	if !ok {
		return
	}
	change.Apply(&res)
	idx.Replace(res)

	if change.Status == domain.ReservationStatusCompleted {
		if p, ok := s.properties[res.PropertyID]; ok {
			p.Popularity++
			s.properties[res.PropertyID] = p
		}
	}
}
