package memory

import (
	"context"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

type txKey struct{}

type statusUpdate struct {
	id     string
	change domain.StatusChange
}

// tx stages writes until commit. Unit locks taken through it are held until the tx ends.
type tx struct {
	locked   map[string]bool
	releases []func()
	keys     []string
	creates  []domain.Reservation
	updates  []statusUpdate
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// WithTx runs fn with a tx in its context. Staged writes are applied together only when fn returns
// nil and ctx is still live; otherwise they are discarded.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	t := &tx{locked: make(map[string]bool)}
	defer s.finish(t)

	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.apply(t)
	return nil
}

func (s *Store) lockUnit(ctx context.Context, t *tx, unitID string) error {
	if t.locked[unitID] {
		return nil
	}
	release, err := s.locks.acquire(ctx, unitID)
	if err != nil {
		return err
	}
	t.locked[unitID] = true
	t.releases = append(t.releases, release)
	return nil
}

func (s *Store) apply(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, res := range t.creates {
		s.insertLocked(res)
	}
	for _, u := range t.updates {
		s.updateLocked(u.id, u.change)
	}
}

// finish drops idempotency keys reserved by t and releases its unit locks.
func (s *Store) finish(t *tx) {
	s.mu.Lock()
	for _, key := range t.keys {
		delete(s.pendingKeys, key)
	}
	s.mu.Unlock()

	for i := len(t.releases) - 1; i >= 0; i-- {
		t.releases[i]()
	}
}
