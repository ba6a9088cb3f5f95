package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
)

// Locker serializes seat mutations of a single flight.
type Locker interface {
	Lock(ctx context.Context, flightID int64) (unlock func(), err error)
}

// KeyedLocker is an in-process mutex per flight id.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[int64]*keyedLock
}

type keyedLock struct {
	ch   chan struct{}
	refs int
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[int64]*keyedLock)}
}

func (l *KeyedLocker) Lock(ctx context.Context, flightID int64) (func(), error) {
	l.mu.Lock()
	lk, ok := l.locks[flightID]
	if !ok {
		lk = &keyedLock{ch: make(chan struct{}, 1)}
		l.locks[flightID] = lk
	}
	lk.refs++
	l.mu.Unlock()

	select {
	case lk.ch <- struct{}{}:
		return func() {
			<-lk.ch
			l.done(flightID, lk)
		}, nil
	case <-ctx.Done():
		l.done(flightID, lk)
		return nil, ctx.Err()
	}
}

func (l *KeyedLocker) done(flightID int64, lk *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, flightID)
	}
}

type FlightLockStore interface {
	AcquireFlightLock(ctx context.Context, flightID int64, ttl time.Duration) (func(context.Context) error, error)
}

// DistributedLocker takes a lock shared by every API process. A lock held
// elsewhere is reported as domain.ErrConflict rather than waited for.
type DistributedLocker struct {
	store FlightLockStore
	ttl   time.Duration
}

func NewDistributedLocker(store FlightLockStore, ttl time.Duration) *DistributedLocker {
	return &DistributedLocker{store: store, ttl: ttl}
}

func (l *DistributedLocker) Lock(ctx context.Context, flightID int64) (func(), error) {
	release, err := l.store.AcquireFlightLock(ctx, flightID, l.ttl)
	if err != nil {
		return nil, err
	}
	if release == nil {
		return nil, fmt.Errorf("%w: seats of flight %d are being updated by another request", domain.ErrConflict, flightID)
	}
	return func() {
		// The lock expires on its own if this fails.
		_ = release(context.WithoutCancel(ctx))
	}, nil
}

// ChainLocker takes each locker in order and releases them in reverse.
type ChainLocker []Locker

func (c ChainLocker) Lock(ctx context.Context, flightID int64) (func(), error) {
	unlocks := make([]func(), 0, len(c))
	unlockAll := func() {
		for i := len(unlocks) - 1; i >= 0; i-- {
			unlocks[i]()
		}
	}
	for _, l := range c {
		unlock, err := l.Lock(ctx, flightID)
		if err != nil {
			unlockAll()
			return nil, err
		}
		unlocks = append(unlocks, unlock)
	}
	return unlockAll, nil
}
