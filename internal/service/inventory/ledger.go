// Package inventory owns the seat counters of flights. Nothing else writes
// available_seats.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
)

type InventoryLedger interface {
	Reserve(ctx context.Context, flightID int64, count int) (int, error)
	Release(ctx context.Context, flightID int64, count int) (int, error)
}

type FlightsCacheInvalidator interface {
	InvalidateFlights(ctx context.Context) error
}

type Ledger struct {
	flights repository.FlightRepository
	locker  Locker
	cache   FlightsCacheInvalidator
	log     *slog.Logger
}

type LedgerOption func(*Ledger)

func WithLocker(locker Locker) LedgerOption {
	return func(l *Ledger) {
		l.locker = locker
	}
}

func WithCacheInvalidator(cache FlightsCacheInvalidator) LedgerOption {
	return func(l *Ledger) {
		l.cache = cache
	}
}

func WithLogger(log *slog.Logger) LedgerOption {
	return func(l *Ledger) {
		l.log = log
	}
}

func NewLedger(flights repository.FlightRepository, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		flights: flights,
		locker:  NewKeyedLocker(),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reserve takes count seats off the flight and returns how many remain. A
// flight whose last seat is taken is marked COMPLETED.
func (l *Ledger) Reserve(ctx context.Context, flightID int64, count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: seat count must be at least 1, got %d", domain.ErrInvalidArgument, count)
	}

	unlock, err := l.locker.Lock(ctx, flightID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	flight, err := l.flights.GetByID(ctx, flightID)
	if err != nil {
		return 0, err
	}
	if !flight.HasAvailableSeats(count) {
		return 0, fmt.Errorf("%w: flight %s has %d seats available, %d requested",
			domain.ErrInsufficientInventory, flight.FlightNumber, flight.AvailableSeats, count)
	}

	remaining := flight.AvailableSeats - count
	if err := l.flights.UpdateAvailableSeats(ctx, flightID, flight.AvailableSeats, remaining); err != nil {
		return 0, err
	}
	l.log.Info("seats reserved", "flight_id", flightID, "count", count, "available", remaining)

	if remaining == 0 {
		if err := l.flights.UpdateStatus(ctx, flightID, domain.FlightStatusCompleted); err != nil {
			l.log.Error("failed to mark fully booked flight completed", "flight_id", flightID, "error", err)
		} else {
			l.log.Info("flight fully booked, marked completed", "flight_id", flightID)
		}
	}

	l.invalidate(ctx)
	return remaining, nil
}

// Release returns count seats to the flight, never above its capacity, and
// reports how many were actually returned. A missing flight releases nothing
// and is not an error.
func (l *Ledger) Release(ctx context.Context, flightID int64, count int) (int, error) {
	if count < 1 {
		return 0, fmt.Errorf("%w: seat count must be at least 1, got %d", domain.ErrInvalidArgument, count)
	}

	unlock, err := l.locker.Lock(ctx, flightID)
	if err != nil {
		return 0, err
	}
	defer unlock()

	flight, err := l.flights.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.log.Warn("release on missing flight ignored", "flight_id", flightID, "count", count)
			return 0, nil
		}
		return 0, err
	}

	available := min(flight.TotalSeats, flight.AvailableSeats+count)
	released := available - flight.AvailableSeats
	if released > 0 {
		if err := l.flights.UpdateAvailableSeats(ctx, flightID, flight.AvailableSeats, available); err != nil {
			return 0, err
		}
	}
	if released < count {
		l.log.Warn("release clamped to flight capacity", "flight_id", flightID, "count", count, "released", released, "total_seats", flight.TotalSeats)
	}
	l.log.Info("seats released", "flight_id", flightID, "count", released, "available", available)

	l.invalidate(ctx)
	return released, nil
}

func (l *Ledger) invalidate(ctx context.Context) {
	if l.cache == nil {
		return
	}
	if err := l.cache.InvalidateFlights(ctx); err != nil {
		l.log.Warn("failed to invalidate flights cache", "error", err)
	}
}

var _ InventoryLedger = (*Ledger)(nil)
