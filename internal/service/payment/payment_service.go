package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
	"github.com/google/uuid"
)

type PaymentUseCase interface {
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID int64) (*domain.Payment, error)
	PaymentForBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
}

type ProcessPaymentInput struct {
	BookingID   int64
	AmountCents int64
	Method      string
	Card        *CardDetails
	PayPalEmail string
}

// BookingLookup resolves the booking a payment is made for.
type BookingLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

type PaymentService struct {
	payments   repository.PaymentRepository
	bookings   BookingLookup
	strategies map[Method]Strategy
	newTxnID   func() string
	log        *slog.Logger
}

type PaymentServiceOption func(*PaymentService)

func WithStrategies(strategies ...Strategy) PaymentServiceOption {
	return func(s *PaymentService) {
		for _, st := range strategies {
			s.strategies[st.Method()] = st
		}
	}
}

func WithLogger(log *slog.Logger) PaymentServiceOption {
	return func(s *PaymentService) {
		s.log = log
	}
}

func NewPaymentService(payments repository.PaymentRepository, bookings BookingLookup, opts ...PaymentServiceOption) *PaymentService {
	s := &PaymentService{
		payments:   payments,
		bookings:   bookings,
		strategies: make(map[Method]Strategy),
		newTxnID:   newTransactionID,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.strategies) == 0 {
		WithStrategies(DefaultStrategies(0, 0, s.log)...)(s)
	}
	return s
}

func newTransactionID() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

// ProcessPayment records a PENDING payment, charges it through the strategy
// for input.Method and stores the outcome. Only a COMPLETED payment is
// returned; FAILED attempts stay on record and yield an error. Nothing is
// recorded for an unknown booking.
func (s *PaymentService) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*domain.Payment, error) {
	if input.AmountCents <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrInvalidArgument)
	}
	if _, err := s.bookings.GetByID(ctx, input.BookingID); err != nil {
		return nil, err
	}

	p := &domain.Payment{
		BookingID:     input.BookingID,
		AmountCents:   input.AmountCents,
		Method:        input.Method,
		TransactionID: s.newTxnID(),
		Status:        domain.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}

	method, err := ParseMethod(input.Method)
	if err != nil {
		s.log.Warn("invalid payment method", "booking_id", input.BookingID, "method", input.Method)
		return nil, s.fail(ctx, p, err)
	}
	strategy, ok := s.strategies[method]
	if !ok {
		return nil, s.fail(ctx, p, fmt.Errorf("%w: %s is not enabled", domain.ErrUnsupportedMethod, method))
	}

	if err := strategy.Process(ctx, Charge{
		AmountCents:   p.AmountCents,
		TransactionID: p.TransactionID,
		Card:          input.Card,
		PayPalEmail:   input.PayPalEmail,
	}); err != nil {
		s.log.Warn("payment failed", "booking_id", p.BookingID, "transaction_id", p.TransactionID, "error", err)
		return nil, s.fail(ctx, p, err)
	}

	if err := s.payments.UpdateStatus(ctx, p.ID, domain.PaymentStatusCompleted); err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatusCompleted
	s.log.Info("payment completed", "booking_id", p.BookingID, "transaction_id", p.TransactionID, "method", method.String())
	return p, nil
}

// fail stores FAILED even when ctx was the reason the charge stopped.
func (s *PaymentService) fail(ctx context.Context, p *domain.Payment, cause error) error {
	if err := s.payments.UpdateStatus(context.WithoutCancel(ctx), p.ID, domain.PaymentStatusFailed); err != nil {
		return errors.Join(cause, err)
	}
	p.Status = domain.PaymentStatusFailed
	return cause
}

// Refund moves a COMPLETED payment to REFUNDED. No money is moved.
func (s *PaymentService) Refund(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	p, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment %d is %s, only completed payments can be refunded", domain.ErrInvalidState, p.ID, p.Status)
	}
	if err := s.payments.UpdateStatus(ctx, p.ID, domain.PaymentStatusRefunded); err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatusRefunded
	s.log.Info("payment refunded", "payment_id", p.ID, "booking_id", p.BookingID)
	return p, nil
}

func (s *PaymentService) PaymentForBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return s.payments.GetLatestByBooking(ctx, bookingID)
}

var _ PaymentUseCase = (*PaymentService)(nil)
