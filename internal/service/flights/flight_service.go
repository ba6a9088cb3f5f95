package flights

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	Search(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input ScheduleInput) (*domain.Flight, error)
	Delete(ctx context.Context, id int64) error
	UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error)
}

// ScheduleInput holds the flight fields an operator may change after creation.
type ScheduleInput struct {
	Airline       string
	FromAirport   string
	ToAirport     string
	DepartureTime time.Time
	ArrivalTime   time.Time
	PriceCents    int64
}

func (in *ScheduleInput) normalize() error {
	in.Airline = strings.TrimSpace(in.Airline)
	in.FromAirport = strings.ToUpper(strings.TrimSpace(in.FromAirport))
	in.ToAirport = strings.ToUpper(strings.TrimSpace(in.ToAirport))
	switch {
	case in.FromAirport == "" || in.ToAirport == "":
		return fmt.Errorf("%w: origin and destination are required", domain.ErrInvalidArgument)
	case in.FromAirport == in.ToAirport:
		return fmt.Errorf("%w: origin and destination must differ", domain.ErrInvalidArgument)
	case in.DepartureTime.IsZero() || !in.ArrivalTime.After(in.DepartureTime):
		return fmt.Errorf("%w: arrival must be after departure", domain.ErrInvalidArgument)
	case in.PriceCents < 0:
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}

func (in ScheduleInput) apply(f *domain.Flight) {
	f.Airline = in.Airline
	f.FromAirport = in.FromAirport
	f.ToAirport = in.ToAirport
	f.DepartureTime = in.DepartureTime
	f.ArrivalTime = in.ArrivalTime
	f.PriceCents = in.PriceCents
}

type CreateFlightInput struct {
	FlightNumber string
	TotalSeats   int
	ScheduleInput
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	log   *slog.Logger
}

// NewFlightService accepts a nil cache; List then always reads storage.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, log *slog.Logger) *FlightService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &FlightService{repo: repo, cache: cache, log: log}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		cached, err := s.cache.GetFlights(ctx)
		if err != nil {
			s.log.Warn("flights cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flights cache write failed", "error", err)
		}
	}
	return flights, nil
}

// Search lists flights matching filter. An empty filter is the cached List.
func (s *FlightService) Search(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	filter.Origin = strings.TrimSpace(filter.Origin)
	filter.Destination = strings.TrimSpace(filter.Destination)
	filter.Airline = strings.TrimSpace(filter.Airline)
	if filter.IsEmpty() {
		return s.List(ctx)
	}
	return s.repo.Search(ctx, filter)
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, fmt.Errorf("%w: flight number is required", domain.ErrInvalidArgument)
	}
	return s.repo.GetByNumber(ctx, number)
}

// Create adds a SCHEDULED flight with every seat available.
func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	number := strings.ToUpper(strings.TrimSpace(input.FlightNumber))
	if number == "" {
		return nil, fmt.Errorf("%w: flight number is required", domain.ErrInvalidArgument)
	}
	if input.TotalSeats < 1 {
		return nil, fmt.Errorf("%w: a flight needs at least one seat", domain.ErrInvalidArgument)
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}

	flight := &domain.Flight{
		FlightNumber:   number,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.TotalSeats,
		Status:         domain.FlightStatusScheduled,
	}
	input.apply(flight)
	if err := s.repo.Save(ctx, flight); err != nil {
		return nil, err
	}
	s.log.Info("flight created", "flight", flight.FlightNumber, "route", flight.Route(), "seats", flight.TotalSeats)
	s.invalidate(ctx)
	return flight, nil
}

// Update replaces the schedule, route, airline and price. Seats and status
// are managed by the inventory ledger and UpdateStatus.
func (s *FlightService) Update(ctx context.Context, id int64, input ScheduleInput) (*domain.Flight, error) {
	if err := input.normalize(); err != nil {
		return nil, err
	}
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(flight)
	if err := s.repo.UpdateDetails(ctx, flight); err != nil {
		return nil, err
	}
	s.log.Info("flight updated", "flight", flight.FlightNumber, "route", flight.Route())
	s.invalidate(ctx)
	return flight, nil
}

// Delete removes a flight nobody has booked. Flights with bookings, even
// cancelled ones, are kept and fail with domain.ErrConflict.
func (s *FlightService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("flight deleted", "flight_id", id)
	s.invalidate(ctx)
	return nil
}

// UpdateStatus is the operator override. It is the only way a flight
// completed by selling out returns to SCHEDULED.
func (s *FlightService) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown flight status %q", domain.ErrInvalidArgument, status)
	}
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if flight.Status == status {
		return flight, nil
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.log.Info("flight status changed", "flight", flight.FlightNumber, "from", flight.Status, "to", status)
	flight.Status = status
	s.invalidate(ctx)
	return flight, nil
}

func (s *FlightService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		s.log.Warn("flights cache invalidation failed", "error", err)
	}
}

var _ FlightUseCase = (*FlightService)(nil)
