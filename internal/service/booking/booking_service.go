package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/kafka"
	"github.com/Domenick1991/flightreservation/internal/repository"
	"github.com/Domenick1991/flightreservation/internal/service/inventory"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ConfirmBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ModifyBookingFlight(ctx context.Context, bookingID, newFlightID int64) (*FlightChange, error)
	RemovePassenger(ctx context.Context, bookingID, passengerID int64) (*domain.Booking, error)
	UpdatePassengerDetails(ctx context.Context, bookingID, passengerID int64, input PassengerInput) (*domain.Passenger, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	CustomerBookings(ctx context.Context, customerID int64) ([]domain.Booking, error)
	FlightBookings(ctx context.Context, flightID int64) ([]domain.Booking, error)
	Passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error)
	Confirmation(ctx context.Context, bookingID int64) (string, error)
	BroadcastPromotion(ctx context.Context, message string) (int, error)
}

type Notifier interface {
	Notify(ctx context.Context, message string, customer *domain.Customer) error
	NotifyMany(ctx context.Context, message string, customers []domain.Customer) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings     repository.BookingRepository
	passengers   repository.PassengerRepository
	flights      repository.FlightRepository
	customers    repository.CustomerRepository
	ledger       inventory.InventoryLedger
	notifier     Notifier
	producer     Producer
	bookingTopic string
	log          *slog.Logger
}

type CreateBookingInput struct {
	CustomerID int64            `json:"customer_id"`
	FlightID   int64            `json:"flight_id"`
	Passengers []PassengerInput `json:"passengers"`
}

type PassengerInput struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
}

func (p PassengerInput) validate() error {
	if strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("%w: passenger first and last name are required", domain.ErrInvalidArgument)
	}
	return nil
}

type BookingServiceOption func(*BookingService)

func WithNotifier(notifier Notifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = notifier
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithLogger(log *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	passengers repository.PassengerRepository,
	flights repository.FlightRepository,
	customers repository.CustomerRepository,
	ledger inventory.InventoryLedger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:   bookings,
		passengers: passengers,
		flights:    flights,
		customers:  customers,
		ledger:     ledger,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking reserves the seats first and only then stores the booking
// with its passengers. If storing fails the seats are given back.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if len(input.Passengers) == 0 {
		return nil, fmt.Errorf("%w: a booking needs at least one passenger", domain.ErrInvalidArgument)
	}
	for _, p := range input.Passengers {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}
	if _, err := s.customers.GetByID(ctx, input.CustomerID); err != nil {
		return nil, err
	}

	flight, err := s.flights.GetByID(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	count := len(input.Passengers)
	if !flight.HasAvailableSeats(count) {
		return nil, fmt.Errorf("%w: flight %s has %d seats left, %d requested", domain.ErrInsufficientInventory, flight.FlightNumber, flight.AvailableSeats, count)
	}

	tx := newSaga(s.log)
	remaining, err := s.ledger.Reserve(ctx, flight.ID, count)
	if err != nil {
		return nil, err
	}
	tx.add("release seats on new booking", s.releaseStep(flight.ID, count))

	booking := &domain.Booking{
		CustomerID:       input.CustomerID,
		FlightID:         flight.ID,
		Status:           domain.BookingStatusPending,
		TotalAmountCents: flight.PriceCents * int64(count),
		NumPassengers:    count,
		Passengers:       make([]domain.Passenger, 0, count),
	}
	for _, p := range input.Passengers {
		booking.Passengers = append(booking.Passengers, domain.Passenger{
			FirstName:      strings.TrimSpace(p.FirstName),
			LastName:       strings.TrimSpace(p.LastName),
			DocumentNumber: strings.TrimSpace(p.DocumentNumber),
		})
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		s.log.Error("failed to store booking", "flight_id", flight.ID, "customer_id", input.CustomerID, "error", err)
		return nil, errors.Join(err, tx.rollback(ctx))
	}

	flight.AvailableSeats = remaining
	booking.Flight = flight
	s.log.Info("booking created", "reference", booking.Reference(), "flight", flight.FlightNumber, "passengers", count)
	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED. Seats were taken at
// creation, so inventory is not checked again.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking %s is %s, only pending bookings can be confirmed", domain.ErrInvalidState, booking.Reference(), booking.Status)
	}

	booking.Status = domain.BookingStatusConfirmed
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}
	s.log.Info("booking confirmed", "reference", booking.Reference())

	flight := s.lookupFlight(ctx, booking.FlightID)
	booking.Flight = flight
	msg := fmt.Sprintf("Your booking %s is confirmed.", booking.Reference())
	if flight != nil {
		msg = fmt.Sprintf("Your booking %s for flight %s (%s) departing %s is confirmed.",
			booking.Reference(), flight.FlightNumber, flight.Route(), flight.DepartureTime.Format(time.RFC1123))
	}
	s.notify(ctx, booking.CustomerID, msg)
	s.publish(ctx, kafka.EventBookingConfirmed, booking)
	return booking, nil
}

// CancelBooking gives the seats back and marks the booking CANCELLED. A seat
// release that finds no flight is logged and does not fail the cancellation;
// any other release error, such as a busy flight lock, leaves the booking as
// it was and is returned.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyCancelled, booking.Reference())
	}

	tx := newSaga(s.log)
	released, err := s.ledger.Release(ctx, booking.FlightID, booking.NumPassengers)
	if err != nil {
		s.log.Warn("seat release failed, booking left unchanged", "reference", booking.Reference(), "flight_id", booking.FlightID, "seats", booking.NumPassengers, "error", err)
		return nil, err
	}
	if released == 0 {
		s.log.Warn("no seats released during cancellation", "reference", booking.Reference(), "flight_id", booking.FlightID, "seats", booking.NumPassengers)
	} else {
		tx.add("re-reserve seats of cancelled booking", s.reserveStep(booking.FlightID, released))
	}

	if err := s.bookings.Cancel(ctx, booking.ID); err != nil {
		s.log.Error("failed to cancel booking", "reference", booking.Reference(), "error", err)
		return nil, errors.Join(err, tx.rollback(ctx))
	}
	booking.Status = domain.BookingStatusCancelled
	s.log.Info("booking cancelled", "reference", booking.Reference())

	s.notify(ctx, booking.CustomerID, fmt.Sprintf("Your booking %s has been cancelled.", booking.Reference()))
	s.publish(ctx, kafka.EventBookingCancelled, booking)
	return booking, nil
}

type PriceAdjustment string

const (
	AdjustmentNone             PriceAdjustment = "none"
	AdjustmentAdditionalCharge PriceAdjustment = "additional_charge"
	AdjustmentRefund           PriceAdjustment = "refund"
)

type FlightChange struct {
	Booking             *domain.Booking `json:"booking"`
	PreviousFlightID    int64           `json:"previous_flight_id"`
	PreviousAmountCents int64           `json:"previous_amount_cents"`
	NewAmountCents      int64           `json:"new_amount_cents"`
	DeltaCents          int64           `json:"delta_cents"`
	Adjustment          PriceAdjustment `json:"adjustment"`
}

func newFlightChange(booking *domain.Booking, previousFlightID, previousAmount int64) *FlightChange {
	change := &FlightChange{
		Booking:             booking,
		PreviousFlightID:    previousFlightID,
		PreviousAmountCents: previousAmount,
		NewAmountCents:      booking.TotalAmountCents,
		DeltaCents:          booking.TotalAmountCents - previousAmount,
		Adjustment:          AdjustmentNone,
	}
	switch {
	case change.DeltaCents > 0:
		change.Adjustment = AdjustmentAdditionalCharge
	case change.DeltaCents < 0:
		change.Adjustment = AdjustmentRefund
	}
	return change
}

// ModifyBookingFlight moves every passenger of the booking to newFlightID.
// Either the old seats are released, the new ones reserved and the booking
// stored, or nothing observable changes.
func (s *BookingService) ModifyBookingFlight(ctx context.Context, bookingID, newFlightID int64) (*FlightChange, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", domain.ErrInvalidState, booking.Reference())
	}
	if booking.FlightID == newFlightID {
		return nil, fmt.Errorf("%w: booking %s is already on flight %d", domain.ErrInvalidArgument, booking.Reference(), newFlightID)
	}

	oldFlight := s.lookupFlight(ctx, booking.FlightID)
	newFlight, err := s.flights.GetByID(ctx, newFlightID)
	if err != nil {
		return nil, err
	}
	seats := booking.NumPassengers
	if !newFlight.HasAvailableSeats(seats) {
		return nil, fmt.Errorf("%w: flight %s has %d seats left, %d needed", domain.ErrInsufficientInventory, newFlight.FlightNumber, newFlight.AvailableSeats, seats)
	}

	oldFlightID := booking.FlightID
	oldAmount := booking.TotalAmountCents
	tx := newSaga(s.log)

	released, err := s.ledger.Release(ctx, oldFlightID, seats)
	if err != nil {
		return nil, err
	}
	if released > 0 {
		tx.add("re-reserve seats on previous flight", s.reserveStep(oldFlightID, released))
	}

	if _, err := s.ledger.Reserve(ctx, newFlight.ID, seats); err != nil {
		s.log.Warn("flight change rejected", "reference", booking.Reference(), "new_flight_id", newFlight.ID, "error", err)
		return nil, errors.Join(err, tx.rollback(ctx))
	}
	tx.add("release seats on new flight", s.releaseStep(newFlight.ID, seats))

	booking.FlightID = newFlight.ID
	booking.TotalAmountCents = newFlight.PriceCents * int64(seats)
	if err := s.bookings.Update(ctx, booking); err != nil {
		booking.FlightID = oldFlightID
		booking.TotalAmountCents = oldAmount
		s.log.Error("failed to store flight change", "reference", booking.Reference(), "error", err)
		return nil, errors.Join(err, tx.rollback(ctx))
	}
	booking.Flight = newFlight

	change := newFlightChange(booking, oldFlightID, oldAmount)
	s.log.Info("booking moved to another flight", "reference", booking.Reference(), "from_flight_id", oldFlightID, "to_flight_id", newFlight.ID, "delta_cents", change.DeltaCents)

	from := fmt.Sprintf("flight %d", oldFlightID)
	if oldFlight != nil {
		from = oldFlight.FlightNumber
	}
	s.notify(ctx, booking.CustomerID, fmt.Sprintf("Your booking %s has been moved from %s to %s. %s",
		booking.Reference(), from, newFlight.FlightNumber, change.describe()))
	s.publish(ctx, kafka.EventBookingFlightChanged, booking)
	return change, nil
}

func (c *FlightChange) describe() string {
	switch c.Adjustment {
	case AdjustmentAdditionalCharge:
		return "Additional charge: " + formatCents(c.DeltaCents) + "."
	case AdjustmentRefund:
		return "Refund due: " + formatCents(-c.DeltaCents) + "."
	default:
		return "The price is unchanged."
	}
}

// RemovePassenger drops one passenger from a booking and frees that seat.
// The last passenger cannot be removed; cancel the booking instead.
func (s *BookingService) RemovePassenger(ctx context.Context, bookingID, passengerID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", domain.ErrInvalidState, booking.Reference())
	}
	if booking.NumPassengers <= 1 {
		return nil, fmt.Errorf("%w: booking %s has a single passenger, cancel the booking instead", domain.ErrInvalidState, booking.Reference())
	}
	if _, err := s.passengerOf(ctx, booking, passengerID); err != nil {
		return nil, err
	}
	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}

	tx := newSaga(s.log)
	released, err := s.ledger.Release(ctx, flight.ID, 1)
	if err != nil {
		return nil, err
	}
	if released > 0 {
		tx.add("re-reserve seat of removed passenger", s.reserveStep(flight.ID, released))
	}

	prevCount, prevAmount := booking.NumPassengers, booking.TotalAmountCents
	booking.NumPassengers--
	booking.TotalAmountCents = flight.PriceCents * int64(booking.NumPassengers)
	if err := s.bookings.RemovePassenger(ctx, booking, passengerID); err != nil {
		booking.NumPassengers, booking.TotalAmountCents = prevCount, prevAmount
		s.log.Error("failed to remove passenger", "reference", booking.Reference(), "passenger_id", passengerID, "error", err)
		return nil, errors.Join(err, tx.rollback(ctx))
	}

	s.log.Info("passenger removed", "reference", booking.Reference(), "passenger_id", passengerID, "passengers", booking.NumPassengers)
	s.publish(ctx, kafka.EventBookingPassengerRemoved, booking)
	return booking, nil
}

func (s *BookingService) UpdatePassengerDetails(ctx context.Context, bookingID, passengerID int64, input PassengerInput) (*domain.Passenger, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, fmt.Errorf("%w: booking %s is cancelled", domain.ErrInvalidState, booking.Reference())
	}
	passenger, err := s.passengerOf(ctx, booking, passengerID)
	if err != nil {
		return nil, err
	}

	passenger.FirstName = strings.TrimSpace(input.FirstName)
	passenger.LastName = strings.TrimSpace(input.LastName)
	passenger.DocumentNumber = strings.TrimSpace(input.DocumentNumber)
	if err := s.passengers.Update(ctx, passenger); err != nil {
		return nil, err
	}
	return passenger, nil
}

func (s *BookingService) passengerOf(ctx context.Context, booking *domain.Booking, passengerID int64) (*domain.Passenger, error) {
	passenger, err := s.passengers.GetByID(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if passenger.BookingID != booking.ID {
		return nil, fmt.Errorf("%w: passenger %d on booking %s", domain.ErrNotFound, passengerID, booking.Reference())
	}
	return passenger, nil
}

// GetBooking returns the booking with its flight and passengers attached.
func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	passengers, err := s.passengers.ListByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	booking.Passengers = passengers
	booking.Flight = s.lookupFlight(ctx, booking.FlightID)
	return booking, nil
}

// ListBookings returns every booking with its flight attached.
func (s *BookingService) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	flights := make(map[int64]*domain.Flight)
	for i := range bookings {
		id := bookings[i].FlightID
		flight, ok := flights[id]
		if !ok {
			flight = s.lookupFlight(ctx, id)
			flights[id] = flight
		}
		bookings[i].Flight = flight
	}
	return bookings, nil
}

func (s *BookingService) CustomerBookings(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, err
	}
	return s.bookings.ListByCustomer(ctx, customerID)
}

func (s *BookingService) FlightBookings(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		return nil, err
	}
	return s.bookings.ListByFlight(ctx, flightID)
}

func (s *BookingService) Passengers(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	if _, err := s.bookings.GetByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.passengers.ListByBooking(ctx, bookingID)
}

// BroadcastPromotion sends message to every customer who opted into
// promotions and returns how many were addressed.
func (s *BookingService) BroadcastPromotion(ctx context.Context, message string) (int, error) {
	if strings.TrimSpace(message) == "" {
		return 0, fmt.Errorf("%w: promotion message is empty", domain.ErrInvalidArgument)
	}
	customers, err := s.customers.ListPromotionSubscribers(ctx)
	if err != nil {
		return 0, err
	}
	if len(customers) == 0 || s.notifier == nil {
		return 0, nil
	}
	if err := s.notifier.NotifyMany(ctx, message, customers); err != nil {
		s.log.Warn("promotion broadcast failed", "error", err)
		return 0, nil
	}
	return len(customers), nil
}

func (s *BookingService) reserveStep(flightID int64, seats int) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.ledger.Reserve(ctx, flightID, seats)
		return err
	}
}

func (s *BookingService) releaseStep(flightID int64, seats int) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := s.ledger.Release(ctx, flightID, seats)
		return err
	}
}

func (s *BookingService) lookupFlight(ctx context.Context, flightID int64) *domain.Flight {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		s.log.Warn("flight lookup failed", "flight_id", flightID, "error", err)
		return nil
	}
	return flight
}

// notify never fails the caller: the booking state is already stored.
func (s *BookingService) notify(ctx context.Context, customerID int64, message string) {
	if s.notifier == nil {
		return
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		s.log.Warn("notification skipped", "customer_id", customerID, "error", err)
		return
	}
	if err := s.notifier.Notify(ctx, message, customer); err != nil {
		s.log.Warn("notification failed", "customer_id", customerID, "error", err)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		BookingID:        booking.ID,
		Reference:        booking.Reference(),
		CustomerID:       booking.CustomerID,
		FlightID:         booking.FlightID,
		NumPassengers:    booking.NumPassengers,
		TotalAmountCents: booking.TotalAmountCents,
		Status:           string(booking.Status),
		OccurredAt:       time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.Reference(), event); err != nil {
		s.log.Warn("failed to publish booking event", "type", eventType, "reference", booking.Reference(), "error", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
