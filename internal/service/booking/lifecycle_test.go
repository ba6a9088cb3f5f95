package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/notification"
	"github.com/Domenick1991/flightreservation/internal/repository/memory"
	"github.com/Domenick1991/flightreservation/internal/service/booking"
	"github.com/Domenick1991/flightreservation/internal/service/inventory"
	"github.com/Domenick1991/flightreservation/internal/service/payment"
	"github.com/stretchr/testify/suite"
)

type inbox struct {
	messages map[int64][]string
}

func (i *inbox) Kind() notification.Kind { return notification.KindEmail }

func (i *inbox) Deliver(_ context.Context, message string, recipient domain.Customer) error {
	i.messages[recipient.ID] = append(i.messages[recipient.ID], message)
	return nil
}

type BookingLifecycleTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	inbox    *inbox
	bookings *booking.BookingService
	payments *payment.PaymentService
	customer domain.Customer
	morning  *domain.Flight
	evening  *domain.Flight
}

func TestBookingLifecycleTestSuite(t *testing.T) {
	suite.Run(t, new(BookingLifecycleTestSuite))
}

func (s *BookingLifecycleTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.New()
	s.inbox = &inbox{messages: map[int64][]string{}}
	s.customer = s.store.AddCustomer(domain.Customer{
		Email: "grace@example.com", Phone: "+15550101", FirstName: "Grace", LastName: "Hopper", ReceivePromotions: true,
	})
	s.morning = s.addFlight("SU10", 10, 15000)
	s.evening = s.addFlight("SU12", 6, 18000)

	hub := notification.NewHub(nil, s.inbox)
	s.bookings = booking.NewBookingService(
		s.store.Bookings(), s.store.Passengers(), s.store.Flights(), s.store.Customers(),
		inventory.NewLedger(s.store.Flights()),
		booking.WithNotifier(hub),
	)
	s.payments = payment.NewPaymentService(s.store.Payments(), s.store.Bookings())
}

func (s *BookingLifecycleTestSuite) addFlight(number string, seats int, priceCents int64) *domain.Flight {
	f := &domain.Flight{
		FlightNumber:   number,
		Airline:        "Aeroflot",
		FromAirport:    "SVO",
		ToAirport:      "LED",
		DepartureTime:  time.Date(2026, 12, 3, 8, 0, 0, 0, time.UTC),
		ArrivalTime:    time.Date(2026, 12, 3, 9, 30, 0, 0, time.UTC),
		TotalSeats:     seats,
		AvailableSeats: seats,
		PriceCents:     priceCents,
	}
	s.Require().NoError(s.store.Flights().Save(s.ctx, f))
	return f
}

func (s *BookingLifecycleTestSuite) seatsLeft(flightID int64) int {
	f, err := s.store.Flights().GetByID(s.ctx, flightID)
	s.Require().NoError(err)
	return f.AvailableSeats
}

func (s *BookingLifecycleTestSuite) book(passengers ...string) *domain.Booking {
	input := booking.CreateBookingInput{CustomerID: s.customer.ID, FlightID: s.morning.ID}
	for _, name := range passengers {
		input.Passengers = append(input.Passengers, booking.PassengerInput{FirstName: name, LastName: "Hopper"})
	}
	b, err := s.bookings.CreateBooking(s.ctx, input)
	s.Require().NoError(err)
	return b
}

func (s *BookingLifecycleTestSuite) TestPayConfirmMoveShrinkCancel() {
	b := s.book("Grace", "Walter")
	s.Equal(8, s.seatsLeft(s.morning.ID))
	s.Equal(int64(30000), b.TotalAmountCents)

	paid, err := s.payments.ProcessPayment(s.ctx, payment.ProcessPaymentInput{
		BookingID:   b.ID,
		AmountCents: b.TotalAmountCents,
		Method:      "Credit Card",
		Card:        &payment.CardDetails{Number: "4111111111111111", Holder: "Grace Hopper", Expiry: "12/28", CVV: "123"},
	})
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusCompleted, paid.Status)

	confirmed, err := s.bookings.ConfirmBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusConfirmed, confirmed.Status)

	change, err := s.bookings.ModifyBookingFlight(s.ctx, b.ID, s.evening.ID)
	s.Require().NoError(err)
	s.Equal(booking.AdjustmentAdditionalCharge, change.Adjustment)
	s.Equal(int64(6000), change.DeltaCents)
	s.Equal(10, s.seatsLeft(s.morning.ID))
	s.Equal(4, s.seatsLeft(s.evening.ID))

	shrunk, err := s.bookings.RemovePassenger(s.ctx, b.ID, b.Passengers[1].ID)
	s.Require().NoError(err)
	s.Equal(1, shrunk.NumPassengers)
	s.Equal(int64(18000), shrunk.TotalAmountCents)
	s.Equal(5, s.seatsLeft(s.evening.ID))

	cancelled, err := s.bookings.CancelBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusCancelled, cancelled.Status)
	s.Equal(6, s.seatsLeft(s.evening.ID))

	refunded, err := s.payments.Refund(s.ctx, paid.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusRefunded, refunded.Status)

	s.Len(s.inbox.messages[s.customer.ID], 3)
}

func (s *BookingLifecycleTestSuite) TestFailedPaymentLeavesBookingPending() {
	b := s.book("Grace")

	_, err := s.payments.ProcessPayment(s.ctx, payment.ProcessPaymentInput{
		BookingID:   b.ID,
		AmountCents: b.TotalAmountCents,
		Method:      "Bitcoin",
	})
	s.ErrorIs(err, domain.ErrUnsupportedMethod)

	latest, err := s.payments.PaymentForBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentStatusFailed, latest.Status)

	got, err := s.bookings.GetBooking(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Equal(domain.BookingStatusPending, got.Status)
	s.Equal(9, s.seatsLeft(s.morning.ID))
}

func (s *BookingLifecycleTestSuite) TestSoldOutFlightRejectsBookingWithoutSideEffects() {
	for i := 0; i < 5; i++ {
		s.book("Grace", "Walter")
	}
	s.Equal(0, s.seatsLeft(s.morning.ID))

	_, err := s.bookings.CreateBooking(s.ctx, booking.CreateBookingInput{
		CustomerID: s.customer.ID,
		FlightID:   s.morning.ID,
		Passengers: []booking.PassengerInput{{FirstName: "Late", LastName: "Comer"}},
	})
	s.ErrorIs(err, domain.ErrInsufficientInventory)

	all, err := s.bookings.FlightBookings(s.ctx, s.morning.ID)
	s.Require().NoError(err)
	s.Len(all, 5)

	flight, err := s.store.Flights().GetByID(s.ctx, s.morning.ID)
	s.Require().NoError(err)
	s.Equal(domain.FlightStatusCompleted, flight.Status)
}

func (s *BookingLifecycleTestSuite) TestPromotionReachesOptedInCustomers() {
	s.store.AddCustomer(domain.Customer{Email: "quiet@example.com", FirstName: "Quiet", LastName: "Customer"})

	n, err := s.bookings.BroadcastPromotion(s.ctx, "Winter sale: 20% off")
	s.Require().NoError(err)
	s.Equal(1, n)
	s.Equal([]string{"Winter sale: 20% off"}, s.inbox.messages[s.customer.ID])
}
