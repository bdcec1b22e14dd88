package resilient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/cimillas/ultimate-stay/internal/domain"
	"github.com/cimillas/ultimate-stay/internal/storage/memory"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type flakyReservations struct {
	*memory.Store
	err   error
	calls int
}

func (f *flakyReservations) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	f.calls++
	if f.err != nil {
		return domain.Reservation{}, f.err
	}
	return f.Store.GetReservation(ctx, id)
}

func unavailable() error {
	return fmt.Errorf("get reservation: %w: connection refused", domain.ErrPersistenceUnavailable)
}

func TestReservationStore(t *testing.T) {
	t.Run("opens after consecutive persistence failures", func(t *testing.T) {
		next := &flakyReservations{Store: memory.NewStore(), err: unavailable()}
		b := NewBreaker(Settings{MaxFailures: 3, OpenTimeout: time.Hour}, quietLogger())
		store := NewReservationStore(next, b)

		for i := 0; i < 3; i++ {
			if _, err := store.GetReservation(context.Background(), "r1"); !errors.Is(err, domain.ErrPersistenceUnavailable) {
				t.Fatalf("expected ErrPersistenceUnavailable, got %v", err)
			}
		}
		if b.State() != gobreaker.StateOpen || b.StorageState() != "open" {
			t.Fatalf("expected open breaker, got %s", b.State())
		}

		_, err := store.GetReservation(context.Background(), "r1")
		if !errors.Is(err, domain.ErrPersistenceUnavailable) {
			t.Fatalf("expected ErrPersistenceUnavailable while open, got %v", err)
		}
		if next.calls != 3 {
			t.Fatalf("expected the open breaker to short-circuit, got %d calls", next.calls)
		}
	})

	t.Run("business errors do not trip the breaker", func(t *testing.T) {
		next := &flakyReservations{Store: memory.NewStore()}
		b := NewBreaker(Settings{MaxFailures: 2, OpenTimeout: time.Hour}, quietLogger())
		store := NewReservationStore(next, b)

		for i := 0; i < 5; i++ {
			if _, err := store.GetReservation(context.Background(), "missing"); !errors.Is(err, domain.ErrReservationNotFound) {
				t.Fatalf("expected ErrReservationNotFound, got %v", err)
			}
		}
		if b.State() != gobreaker.StateClosed {
			t.Fatalf("expected closed breaker, got %s", b.State())
		}
	})

	t.Run("closes again after a successful trial call", func(t *testing.T) {
		next := &flakyReservations{Store: memory.NewStore(), err: unavailable()}
		b := NewBreaker(Settings{MaxFailures: 1, OpenTimeout: 20 * time.Millisecond}, quietLogger())
		store := NewReservationStore(next, b)

		_, _ = store.GetReservation(context.Background(), "r1")
		if b.State() != gobreaker.StateOpen {
			t.Fatalf("expected open breaker, got %s", b.State())
		}
		next.err = nil
		time.Sleep(40 * time.Millisecond)

		if _, err := store.GetReservation(context.Background(), "missing"); !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected the trial call to reach the store, got %v", err)
		}
		if b.State() != gobreaker.StateClosed {
			t.Fatalf("expected closed breaker after the trial call, got %s", b.State())
		}
	})

	t.Run("statements inside a transaction bypass the breaker", func(t *testing.T) {
		next := &flakyReservations{Store: memory.NewStore(), err: unavailable()}
		b := NewBreaker(Settings{MaxFailures: 2, OpenTimeout: time.Hour}, quietLogger())
		store := NewReservationStore(next, b)

		err := store.WithTx(context.Background(), func(txCtx context.Context) error {
			for i := 0; i < 3; i++ {
				_, _ = store.GetReservation(txCtx, "r1")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("expected tx to succeed, got %v", err)
		}
		if b.State() != gobreaker.StateClosed {
			t.Fatalf("expected closed breaker, got %s", b.State())
		}
	})
}

func TestInventoryStore_PassesThrough(t *testing.T) {
	b := NewBreaker(Settings{}, quietLogger())
	store := NewInventoryStore(memory.NewStore(), b)
	ctx := context.Background()

	if err := store.CreateProperty(ctx, domain.Property{ID: "p1", DestinationID: "goa", Name: "Sea View"}); err != nil {
		t.Fatalf("create property: %v", err)
	}
	p, err := store.GetProperty(ctx, "p1")
	if err != nil || p.Name != "Sea View" {
		t.Fatalf("unexpected property %+v (%v)", p, err)
	}
	if _, err := store.GetUnit(ctx, "nope"); !errors.Is(err, domain.ErrUnknownUnit) {
		t.Fatalf("expected ErrUnknownUnit, got %v", err)
	}
}
