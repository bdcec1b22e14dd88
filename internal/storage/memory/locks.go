package memory

import (
	"context"
	"sync"
)

// unitLocks is a keyed mutex whose acquisition honours context cancellation.
type unitLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newUnitLocks() *unitLocks {
	return &unitLocks{slots: make(map[string]chan struct{})}
}

func (l *unitLocks) acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
