// Package notification fans booking messages out to every registered
// delivery channel. Delivery is best-effort: channel failures are logged and
// never reported to the caller.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Domenick1991/flightreservation/internal/domain"
)

var ErrNoRecipient = errors.New("notification has no recipient")

type Kind string

const (
	KindSMS        Kind = "SMS"
	KindEmail      Kind = "Email"
	KindNewsletter Kind = "Newsletter"
	KindRelay      Kind = "Relay"
)

type Channel interface {
	Kind() Kind
	Deliver(ctx context.Context, message string, recipient domain.Customer) error
}

// Hub holds at most one channel per Kind. The default channels are attached
// on first use.
type Hub struct {
	mu       sync.RWMutex
	once     sync.Once
	defaults []Channel
	channels []Channel
	log      *slog.Logger
}

func NewHub(log *slog.Logger, defaults ...Channel) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Hub{defaults: defaults, log: log}
}

func (h *Hub) init() {
	h.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for _, ch := range h.defaults {
			h.attachLocked(ch)
		}
	})
}

// Attach registers ch unless a channel of the same kind is already present.
func (h *Hub) Attach(ch Channel) bool {
	h.init()
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.attachLocked(ch) {
		return false
	}
	h.log.Info("notification channel registered", "channel", ch.Kind())
	return true
}

func (h *Hub) attachLocked(ch Channel) bool {
	for _, existing := range h.channels {
		if existing.Kind() == ch.Kind() {
			return false
		}
	}
	h.channels = append(h.channels, ch)
	return true
}

// Detach removes the channel of the given kind.
func (h *Hub) Detach(kind Kind) bool {
	h.init()
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.channels {
		if existing.Kind() == kind {
			h.channels = append(h.channels[:i:i], h.channels[i+1:]...)
			h.log.Info("notification channel unregistered", "channel", kind)
			return true
		}
	}
	return false
}

// Channels lists the registered kinds in registration order.
func (h *Hub) Channels() []Kind {
	h.init()
	h.mu.RLock()
	defer h.mu.RUnlock()
	kinds := make([]Kind, 0, len(h.channels))
	for _, ch := range h.channels {
		kinds = append(kinds, ch.Kind())
	}
	return kinds
}

func (h *Hub) snapshot() []Channel {
	h.init()
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Channel(nil), h.channels...)
}

// Notify delivers message to customer on every channel in registration order.
func (h *Hub) Notify(ctx context.Context, message string, customer *domain.Customer) error {
	if customer == nil {
		h.log.Warn("cannot send notification: customer is nil")
		return ErrNoRecipient
	}
	h.deliver(ctx, h.snapshot(), message, *customer)
	return nil
}

// NotifyMany delivers message to each customer in turn.
func (h *Hub) NotifyMany(ctx context.Context, message string, customers []domain.Customer) error {
	if len(customers) == 0 {
		h.log.Warn("cannot send notification: no customers provided")
		return ErrNoRecipient
	}
	channels := h.snapshot()
	for _, c := range customers {
		h.deliver(ctx, channels, message, c)
	}
	h.log.Info("broadcast complete", "customers", len(customers))
	return nil
}

func (h *Hub) deliver(ctx context.Context, channels []Channel, message string, c domain.Customer) {
	for _, ch := range channels {
		if err := ch.Deliver(ctx, message, c); err != nil {
			h.log.Warn("notification delivery failed", "channel", ch.Kind(), "customer_id", c.ID, "error", err)
		}
	}
}
