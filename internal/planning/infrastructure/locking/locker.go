// Package locking serialises planning runs that mutate the same timelines.
package locking

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotAcquired is returned when the wait for a lock ends without it.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker grants exclusive, expiring locks on string keys.
type Locker interface {
	// Acquire waits until key is free or ctx is done.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

type Lock interface {
	Release(ctx context.Context) error
}

// LocalLocker locks within one process. ttl is ignored because the holder
// always releases on return.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]chan struct{})}
}

func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		return &localLock{ch: ch}, nil
	case <-ctx.Done():
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}
}

type localLock struct {
	once sync.Once
	ch   chan struct{}
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}

// WithLock runs fn while holding key.
func WithLock(ctx context.Context, locker Locker, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	return WithLockWait(ctx, locker, key, ttl, 0, fn)
}

// WithLockWait is WithLock with the wait for key bounded by wait. A zero
// wait lasts as long as ctx.
func WithLockWait(ctx context.Context, locker Locker, key string, ttl, wait time.Duration, fn func(ctx context.Context) error) (err error) {
	acquireCtx, cancel := ctx, context.CancelFunc(func() {})
	if wait > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, wait)
	}
	lock, err := locker.Acquire(acquireCtx, key, ttl)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if relErr := lock.Release(context.WithoutCancel(ctx)); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn(ctx)
}
