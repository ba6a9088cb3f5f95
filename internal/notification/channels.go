package notification

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/kafka"
	"github.com/google/uuid"
)

// DefaultChannels is the SMS, Email and Newsletter set.
func DefaultChannels(log *slog.Logger) []Channel {
	return []Channel{NewSMSChannel(log), NewEmailChannel(log), NewNewsletterChannel(log)}
}

type SMSChannel struct{ log *slog.Logger }

func NewSMSChannel(log *slog.Logger) *SMSChannel { return &SMSChannel{log: orDiscard(log)} }

func (c *SMSChannel) Kind() Kind { return KindSMS }

func (c *SMSChannel) Deliver(_ context.Context, message string, recipient domain.Customer) error {
	c.log.Info("sms sent", "to", recipient.Phone, "message", message)
	return nil
}

type EmailChannel struct{ log *slog.Logger }

func NewEmailChannel(log *slog.Logger) *EmailChannel { return &EmailChannel{log: orDiscard(log)} }

func (c *EmailChannel) Kind() Kind { return KindEmail }

func (c *EmailChannel) Deliver(_ context.Context, message string, recipient domain.Customer) error {
	c.log.Info("email sent", "to", recipient.Email, "subject", "Flight Reservation Update", "message", message)
	return nil
}

// NewsletterChannel only writes to customers who opted into promotions.
type NewsletterChannel struct{ log *slog.Logger }

func NewNewsletterChannel(log *slog.Logger) *NewsletterChannel {
	return &NewsletterChannel{log: orDiscard(log)}
}

func (c *NewsletterChannel) Kind() Kind { return KindNewsletter }

func (c *NewsletterChannel) Deliver(_ context.Context, message string, recipient domain.Customer) error {
	if !recipient.ReceivePromotions {
		return nil
	}
	c.log.Info("newsletter sent", "to", recipient.Email, "recipient", recipient.FullName(), "content", message)
	return nil
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// RelayChannel hands every message to the notification worker over kafka.
type RelayChannel struct {
	producer Publisher
	topic    string
	now      func() time.Time
}

func NewRelayChannel(producer Publisher, topic string) *RelayChannel {
	return &RelayChannel{producer: producer, topic: topic, now: time.Now}
}

func (c *RelayChannel) Kind() Kind { return KindRelay }

func (c *RelayChannel) Deliver(ctx context.Context, message string, recipient domain.Customer) error {
	event := kafka.NotificationEvent{
		ID:                uuid.NewString(),
		Message:           message,
		CustomerID:        recipient.ID,
		Email:             recipient.Email,
		Phone:             recipient.Phone,
		FirstName:         recipient.FirstName,
		LastName:          recipient.LastName,
		ReceivePromotions: recipient.ReceivePromotions,
		CreatedAt:         c.now(),
	}
	return c.producer.Publish(ctx, c.topic, strconv.FormatInt(recipient.ID, 10), event)
}

// CustomerFromEvent rebuilds the recipient carried by a relayed message.
func CustomerFromEvent(e kafka.NotificationEvent) domain.Customer {
	return domain.Customer{
		ID:                e.CustomerID,
		Email:             e.Email,
		Phone:             e.Phone,
		FirstName:         e.FirstName,
		LastName:          e.LastName,
		ReceivePromotions: e.ReceivePromotions,
	}
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return log
}
