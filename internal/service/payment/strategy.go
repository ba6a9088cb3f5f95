package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
)

type Method int

const (
	MethodUnknown Method = iota
	MethodCreditCard
	MethodDebitCard
	MethodPayPal
)

func (m Method) String() string {
	switch m {
	case MethodCreditCard:
		return "Credit Card"
	case MethodDebitCard:
		return "Debit Card"
	case MethodPayPal:
		return "PayPal"
	default:
		return "Unknown"
	}
}

// ParseMethod accepts free-text labels such as "Credit Card" or "  paypal ".
// Matching is by substring, checked in the order credit, debit, paypal.
func ParseMethod(label string) (Method, error) {
	normalized := strings.ToLower(strings.TrimSpace(label))
	switch {
	case normalized == "":
	case strings.Contains(normalized, "credit"):
		return MethodCreditCard, nil
	case strings.Contains(normalized, "debit"):
		return MethodDebitCard, nil
	case strings.Contains(normalized, "paypal"):
		return MethodPayPal, nil
	}
	return MethodUnknown, fmt.Errorf("%w: %q", domain.ErrUnsupportedMethod, label)
}

type CardDetails struct {
	Number string
	Holder string
	Expiry string
	CVV    string
}

// Masked keeps only the last four digits.
func (c CardDetails) Masked() string {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

type Charge struct {
	AmountCents   int64
	TransactionID string
	Card          *CardDetails
	PayPalEmail   string
}

type Strategy interface {
	Method() Method
	Process(ctx context.Context, charge Charge) error
}

// SimulatedStrategy stands in for a gateway: it waits through a validation
// and an authorization step and then approves. Cancelling ctx while it waits
// interrupts the charge.
type SimulatedStrategy struct {
	method             Method
	validationDelay    time.Duration
	authorizationDelay time.Duration
	log                *slog.Logger
}

func NewSimulatedStrategy(method Method, validationDelay, authorizationDelay time.Duration, log *slog.Logger) *SimulatedStrategy {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SimulatedStrategy{
		method:             method,
		validationDelay:    validationDelay,
		authorizationDelay: authorizationDelay,
		log:                log,
	}
}

// DefaultStrategies returns one simulated strategy per supported method.
func DefaultStrategies(validationDelay, authorizationDelay time.Duration, log *slog.Logger) []Strategy {
	return []Strategy{
		NewSimulatedStrategy(MethodCreditCard, validationDelay, authorizationDelay, log),
		NewSimulatedStrategy(MethodDebitCard, validationDelay, authorizationDelay, log),
		NewSimulatedStrategy(MethodPayPal, validationDelay, authorizationDelay, log),
	}
}

func (s *SimulatedStrategy) Method() Method { return s.method }

func (s *SimulatedStrategy) Process(ctx context.Context, charge Charge) error {
	attrs := []any{"method", s.method.String(), "transaction_id", charge.TransactionID, "amount_cents", charge.AmountCents}
	if charge.Card != nil {
		attrs = append(attrs, "card", charge.Card.Masked())
	}
	if charge.PayPalEmail != "" {
		attrs = append(attrs, "paypal_account", charge.PayPalEmail)
	}
	s.log.Info("processing payment", attrs...)

	if err := wait(ctx, s.validationDelay); err != nil {
		return fmt.Errorf("%w: during validation of %s", domain.ErrProcessingInterrupted, charge.TransactionID)
	}
	if err := wait(ctx, s.authorizationDelay); err != nil {
		return fmt.Errorf("%w: during authorization of %s", domain.ErrProcessingInterrupted, charge.TransactionID)
	}

	s.log.Info("payment authorized", "method", s.method.String(), "transaction_id", charge.TransactionID)
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
