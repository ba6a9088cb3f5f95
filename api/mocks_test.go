package api

import (
	"context"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
	"github.com/Domenick1991/flightreservation/internal/service/booking"
	"github.com/Domenick1991/flightreservation/internal/service/flights"
	"github.com/Domenick1991/flightreservation/internal/service/payment"
	"github.com/stretchr/testify/mock"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, filter repository.FlightFilter) ([]domain.Flight, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) flight(args mock.Arguments) (*domain.Flight, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Create(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, input))
}

func (m *MockFlightUseCase) Update(ctx context.Context, id int64, input flights.ScheduleInput) (*domain.Flight, error) {
	return m.flight(m.Called(ctx, id, input))
}

func (m *MockFlightUseCase) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) (*domain.Flight, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, input))
}

func (m *MockBookingUseCase) ConfirmBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) ModifyBookingFlight(ctx context.Context, id, flightID int64) (*booking.FlightChange, error) {
	args := m.Called(ctx, id, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.FlightChange), args.Error(1)
}

func (m *MockBookingUseCase) RemovePassenger(ctx context.Context, id, passengerID int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, passengerID))
}

func (m *MockBookingUseCase) UpdatePassengerDetails(ctx context.Context, id, passengerID int64, input booking.PassengerInput) (*domain.Passenger, error) {
	args := m.Called(ctx, id, passengerID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CustomerBookings(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) FlightBookings(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Passengers(ctx context.Context, id int64) ([]domain.Passenger, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]domain.Passenger), args.Error(1)
}

func (m *MockBookingUseCase) Confirmation(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockBookingUseCase) BroadcastPromotion(ctx context.Context, message string) (int, error) {
	args := m.Called(ctx, message)
	return args.Int(0), args.Error(1)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) payment(args mock.Arguments) (*domain.Payment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentUseCase) ProcessPayment(ctx context.Context, input payment.ProcessPaymentInput) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, input))
}

func (m *MockPaymentUseCase) Refund(ctx context.Context, id int64) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, id))
}

func (m *MockPaymentUseCase) PaymentForBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return m.payment(m.Called(ctx, bookingID))
}
