// Package memory keeps every record in process memory. It backs the
// "memory" storage driver and the scenario tests.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
)

type Store struct {
	mu         sync.Mutex
	seq        int64
	flights    map[int64]domain.Flight
	bookings   map[int64]domain.Booking
	passengers map[int64]domain.Passenger
	payments   map[int64]domain.Payment
	customers  map[int64]domain.Customer
	now        func() time.Time
}

func New() *Store {
	return &Store{
		flights:    make(map[int64]domain.Flight),
		bookings:   make(map[int64]domain.Booking),
		passengers: make(map[int64]domain.Passenger),
		payments:   make(map[int64]domain.Payment),
		customers:  make(map[int64]domain.Customer),
		now:        time.Now,
	}
}

func (s *Store) Flights() repository.FlightRepository       { return flightRepo{s} }
func (s *Store) Bookings() repository.BookingRepository     { return bookingRepo{s} }
func (s *Store) Passengers() repository.PassengerRepository { return passengerRepo{s} }
func (s *Store) Payments() repository.PaymentRepository     { return paymentRepo{s} }
func (s *Store) Customers() repository.CustomerRepository   { return customerRepo{s} }

// AddCustomer seeds a customer, assigning an id when it has none.
func (s *Store) AddCustomer(c domain.Customer) domain.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.nextID()
	}
	s.customers[c.ID] = c
	return c
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

type flightRepo struct{ s *Store }

func (r flightRepo) List(ctx context.Context) ([]domain.Flight, error) {
	return r.Search(ctx, repository.FlightFilter{})
}

func (r flightRepo) Search(_ context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	flights := make([]domain.Flight, 0, len(r.s.flights))
	for _, f := range r.s.flights {
		if matches(f, filter) {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].ID < flights[j].ID
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func matches(f domain.Flight, filter repository.FlightFilter) bool {
	if filter.Origin != "" && !strings.EqualFold(f.FromAirport, filter.Origin) {
		return false
	}
	if filter.Destination != "" && !strings.EqualFold(f.ToAirport, filter.Destination) {
		return false
	}
	if filter.Airline != "" && !strings.EqualFold(f.Airline, filter.Airline) {
		return false
	}
	if !filter.Date.IsZero() {
		from, to := filter.DayRange()
		if f.DepartureTime.Before(from) || !f.DepartureTime.Before(to) {
			return false
		}
	}
	return true
}

func (r flightRepo) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return nil, fmt.Errorf("%w: flight %d", domain.ErrNotFound, id)
	}
	return &f, nil
}

func (r flightRepo) GetByNumber(_ context.Context, number string) (*domain.Flight, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.flights {
		if f.FlightNumber == number {
			return &f, nil
		}
	}
	return nil, fmt.Errorf("%w: flight %s", domain.ErrNotFound, number)
}

func (r flightRepo) Save(_ context.Context, f *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.flights {
		if existing.FlightNumber == f.FlightNumber && existing.ID != f.ID {
			return fmt.Errorf("%w: flight number %s already exists", domain.ErrConflict, f.FlightNumber)
		}
	}
	if f.ID == 0 {
		f.ID = r.s.nextID()
		f.CreatedAt = r.s.now()
	}
	if f.Status == "" {
		f.Status = domain.FlightStatusScheduled
	}
	f.UpdatedAt = r.s.now()
	r.s.flights[f.ID] = *f
	return nil
}

func (r flightRepo) UpdateDetails(_ context.Context, f *domain.Flight) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.flights[f.ID]
	if !ok {
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, f.ID)
	}
	existing.Airline = f.Airline
	existing.FromAirport = f.FromAirport
	existing.ToAirport = f.ToAirport
	existing.DepartureTime = f.DepartureTime
	existing.ArrivalTime = f.ArrivalTime
	existing.PriceCents = f.PriceCents
	existing.UpdatedAt = r.s.now()
	f.UpdatedAt = existing.UpdatedAt
	r.s.flights[f.ID] = existing
	return nil
}

func (r flightRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.flights[id]; !ok {
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, id)
	}
	for _, b := range r.s.bookings {
		if b.FlightID == id {
			return fmt.Errorf("%w: flight %d still has bookings", domain.ErrConflict, id)
		}
	}
	delete(r.s.flights, id)
	return nil
}

func (r flightRepo) UpdateAvailableSeats(_ context.Context, id int64, expected, next int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, id)
	}
	if f.AvailableSeats != expected || next < 0 || next > f.TotalSeats {
		return fmt.Errorf("%w: seats of flight %d changed concurrently", domain.ErrConflict, id)
	}
	f.AvailableSeats = next
	f.UpdatedAt = r.s.now()
	r.s.flights[id] = f
	return nil
}

func (r flightRepo) UpdateStatus(_ context.Context, id int64, status domain.FlightStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f, ok := r.s.flights[id]
	if !ok {
		return fmt.Errorf("%w: flight %d", domain.ErrNotFound, id)
	}
	f.Status = status
	f.UpdatedAt = r.s.now()
	r.s.flights[id] = f
	return nil
}

type bookingRepo struct{ s *Store }

func (r bookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b.ID = r.s.nextID()
	b.CreatedAt = r.s.now()
	b.UpdatedAt = b.CreatedAt
	for i := range b.Passengers {
		b.Passengers[i].ID = r.s.nextID()
		b.Passengers[i].BookingID = b.ID
		r.s.passengers[b.Passengers[i].ID] = b.Passengers[i]
	}
	stored := *b
	stored.Passengers = nil
	stored.Flight = nil
	r.s.bookings[b.ID] = stored
	return nil
}

func (r bookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return &b, nil
}

func (r bookingRepo) List(_ context.Context) ([]domain.Booking, error) {
	return r.filter(func(domain.Booking) bool { return true }), nil
}

func (r bookingRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool { return b.CustomerID == customerID }), nil
}

func (r bookingRepo) ListByFlight(_ context.Context, flightID int64) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool { return b.FlightID == flightID }), nil
}

func (r bookingRepo) filter(keep func(domain.Booking) bool) []domain.Booking {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bookings := make([]domain.Booking, 0)
	for _, b := range r.s.bookings {
		if keep(b) {
			bookings = append(bookings, b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings
}

func (r bookingRepo) Update(_ context.Context, b *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bookings[b.ID]; !ok {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, b.ID)
	}
	b.UpdatedAt = r.s.now()
	stored := *b
	stored.Passengers = nil
	stored.Flight = nil
	r.s.bookings[b.ID] = stored
	return nil
}

func (r bookingRepo) Cancel(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	b.Status = domain.BookingStatusCancelled
	b.UpdatedAt = r.s.now()
	r.s.bookings[id] = b
	return nil
}

func (r bookingRepo) RemovePassenger(_ context.Context, b *domain.Booking, passengerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.passengers[passengerID]
	if !ok || p.BookingID != b.ID {
		return fmt.Errorf("%w: passenger %d", domain.ErrNotFound, passengerID)
	}
	stored, ok := r.s.bookings[b.ID]
	if !ok {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, b.ID)
	}
	delete(r.s.passengers, passengerID)
	stored.NumPassengers = b.NumPassengers
	stored.TotalAmountCents = b.TotalAmountCents
	stored.UpdatedAt = r.s.now()
	b.UpdatedAt = stored.UpdatedAt
	r.s.bookings[b.ID] = stored
	return nil
}

type passengerRepo struct{ s *Store }

func (r passengerRepo) GetByID(_ context.Context, id int64) (*domain.Passenger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.passengers[id]
	if !ok {
		return nil, fmt.Errorf("%w: passenger %d", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r passengerRepo) Update(_ context.Context, p *domain.Passenger) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.passengers[p.ID]
	if !ok {
		return fmt.Errorf("%w: passenger %d", domain.ErrNotFound, p.ID)
	}
	existing.FirstName = p.FirstName
	existing.LastName = p.LastName
	existing.DocumentNumber = p.DocumentNumber
	r.s.passengers[p.ID] = existing
	return nil
}

func (r passengerRepo) ListByBooking(_ context.Context, bookingID int64) ([]domain.Passenger, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	passengers := make([]domain.Passenger, 0)
	for _, p := range r.s.passengers {
		if p.BookingID == bookingID {
			passengers = append(passengers, p)
		}
	}
	slices.SortFunc(passengers, func(a, b domain.Passenger) int { return cmp.Compare(a.ID, b.ID) })
	return passengers, nil
}

type paymentRepo struct{ s *Store }

func (r paymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.payments {
		if existing.TransactionID == p.TransactionID {
			return fmt.Errorf("%w: transaction %s already recorded", domain.ErrConflict, p.TransactionID)
		}
	}
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	r.s.payments[p.ID] = *p
	return nil
}

func (r paymentRepo) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r paymentRepo) GetLatestByBooking(_ context.Context, bookingID int64) (*domain.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *domain.Payment
	for _, p := range r.s.payments {
		if p.BookingID != bookingID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			latest = &p
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: payment for booking %d", domain.ErrNotFound, bookingID)
	}
	return latest, nil
}

func (r paymentRepo) UpdateStatus(_ context.Context, id int64, status domain.PaymentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
	}
	p.Status = status
	r.s.payments[id] = p
	return nil
}

type customerRepo struct{ s *Store }

func (r customerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", domain.ErrNotFound, id)
	}
	return &c, nil
}

func (r customerRepo) ListPromotionSubscribers(_ context.Context) ([]domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customers := make([]domain.Customer, 0)
	for _, c := range r.s.customers {
		if c.ReceivePromotions {
			customers = append(customers, c)
		}
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers, nil
}
