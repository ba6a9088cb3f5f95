package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FlightFilter narrows a flight search. Empty fields match every flight;
// airports and airline compare case-insensitively and Date matches the UTC
// calendar day of departure.
type FlightFilter struct {
	Origin      string
	Destination string
	Airline     string
	Date        time.Time
}

func (f FlightFilter) IsEmpty() bool {
	return f.Origin == "" && f.Destination == "" && f.Airline == "" && f.Date.IsZero()
}

// DayRange returns the UTC bounds [from, to) of the filter's date.
func (f FlightFilter) DayRange() (time.Time, time.Time) {
	d := f.Date.UTC()
	from := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, filter FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
	// Save inserts a new flight; a taken flight number is domain.ErrConflict.
	Save(ctx context.Context, flight *domain.Flight) error
	// UpdateDetails stores schedule, route, airline and price. Seat counters
	// and status are left alone.
	UpdateDetails(ctx context.Context, flight *domain.Flight) error
	Delete(ctx context.Context, id int64) error
	// UpdateAvailableSeats stores next only if the flight still has expected
	// seats available, otherwise it returns domain.ErrConflict.
	UpdateAvailableSeats(ctx context.Context, id int64, expected, next int) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) error
}

type BookingRepository interface {
	// Create stores the booking and its passengers atomically, filling in ids.
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context) ([]domain.Booking, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error)
	ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
	Cancel(ctx context.Context, id int64) error
	// RemovePassenger deletes the passenger and stores the booking's new
	// passenger count and amount in one step.
	RemovePassenger(ctx context.Context, booking *domain.Booking, passengerID int64) error
}

type PassengerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Passenger, error)
	Update(ctx context.Context, passenger *domain.Passenger) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetLatestByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
}

type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	ListPromotionSubscribers(ctx context.Context) ([]domain.Customer, error)
}

func notFound(err error, entity string, key any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s %v", domain.ErrNotFound, entity, key)
	}
	return fmt.Errorf("failed to load %s %v: %w", entity, key, err)
}

func missing(entity string, key any) error {
	return fmt.Errorf("%w: %s %v", domain.ErrNotFound, entity, key)
}

// conflict reports unique and foreign key violations as domain.ErrConflict.
func conflict(err error, format string, args ...any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23503") {
		return fmt.Errorf("%w: "+format, append([]any{domain.ErrConflict}, args...)...)
	}
	return nil
}
