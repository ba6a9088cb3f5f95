package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightreservation/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

// RelayHandler decodes messages written by RelayChannel and delivers them
// through the hub's channels. It is the notification worker's consumer loop body.
func RelayHandler(h *Hub) func(context.Context, kafkago.Message) error {
	return func(ctx context.Context, msg kafkago.Message) error {
		var event kafka.NotificationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return fmt.Errorf("decode notification event: %w", err)
		}
		customer := CustomerFromEvent(event)
		return h.Notify(ctx, event.Message, &customer)
	}
}
