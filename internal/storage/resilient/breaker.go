// Package resilient wraps a store in a circuit breaker so a failing database is reported as
// domain.ErrPersistenceUnavailable quickly instead of tying up every request until it times out.
package resilient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

type Settings struct {
	Name string
	// MaxFailures is the number of consecutive persistence failures that opens the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before letting a trial call through.
	OpenTimeout time.Duration
}

// Breaker is shared by every store wrapper backed by the same database.
type Breaker struct {
	name string
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(s Settings, log logrus.FieldLogger) *Breaker {
	if s.Name == "" {
		s.Name = "persistence"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// Business outcomes (not found, capacity, conflicts) say nothing about database health.
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrPersistenceUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return &Breaker{name: s.Name, cb: cb}
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// StorageState names the breaker state for health reporting: "closed", "half-open" or "open".
func (b *Breaker) StorageState() string {
	return b.cb.State().String()
}

type inTxKey struct{}

// do runs fn through the breaker unless ctx already belongs to a guarded transaction.
func (b *Breaker) do(ctx context.Context, fn func() error) error {
	if ctx.Value(inTxKey{}) != nil {
		return fn()
	}
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return b.translate(err)
}

func (b *Breaker) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %v", b.name, domain.ErrPersistenceUnavailable, err)
	}
	return err
}

func call[T any](ctx context.Context, b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.do(ctx, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}
