// Package lock serializes payroll processing per period.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotObtained is returned when the lock is still held after waiting.
var ErrNotObtained = errors.New("lock not obtained")

// PeriodLocker grants exclusive access to a key. The returned release func
// must be called exactly once.
type PeriodLocker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

// PeriodKey is the lock key for a payroll period.
func PeriodKey(month, year int) string {
	return fmt.Sprintf("payroll:period:%04d-%02d", year, month)
}

// MemoryLocker is an in-process PeriodLocker. Waiters block until the holder
// releases or their context ends.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Lock implements PeriodLocker.
func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", ErrNotObtained, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
