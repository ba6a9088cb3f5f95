package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLockStore struct {
	held     map[int64]bool
	released []int64
	err      error
}

func (s *fakeLockStore) AcquireFlightLock(_ context.Context, flightID int64, _ time.Duration) (func(context.Context) error, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.held[flightID] {
		return nil, nil
	}
	s.held[flightID] = true
	return func(context.Context) error {
		delete(s.held, flightID)
		s.released = append(s.released, flightID)
		return nil
	}, nil
}

func TestKeyedLocker_SerializesSameFlight(t *testing.T) {
	l := NewKeyedLocker()
	ctx := context.Background()

	unlock, err := l.Lock(ctx, 1)
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(waitCtx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := l.Lock(ctx, 2)
	require.NoError(t, err)
	other()

	unlock()
	again, err := l.Lock(ctx, 1)
	require.NoError(t, err)
	again()

	assert.Empty(t, l.locks)
}

func TestDistributedLocker_BusyIsConflict(t *testing.T) {
	store := &fakeLockStore{held: map[int64]bool{}}
	l := NewDistributedLocker(store, time.Second)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, 3)
	require.NoError(t, err)

	_, err = l.Lock(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrConflict)

	unlock()
	assert.Equal(t, []int64{3}, store.released)
}

func TestChainLocker_ReleasesTakenLocksOnFailure(t *testing.T) {
	store := &fakeLockStore{held: map[int64]bool{}, err: errors.New("redis down")}
	local := NewKeyedLocker()
	chain := ChainLocker{local, NewDistributedLocker(store, time.Second)}

	_, err := chain.Lock(context.Background(), 5)
	assert.EqualError(t, err, "redis down")

	unlock, err := local.Lock(context.Background(), 5)
	require.NoError(t, err)
	unlock()
}
