package kafka

import "time"

const (
	EventBookingCreated          = "booking_created"
	EventBookingConfirmed        = "booking_confirmed"
	EventBookingCancelled        = "booking_cancelled"
	EventBookingFlightChanged    = "booking_flight_changed"
	EventBookingPassengerRemoved = "booking_passenger_removed"
)

type BookingEvent struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	BookingID        int64     `json:"booking_id"`
	Reference        string    `json:"reference"`
	CustomerID       int64     `json:"customer_id"`
	FlightID         int64     `json:"flight_id"`
	NumPassengers    int       `json:"num_passengers"`
	TotalAmountCents int64     `json:"total_amount_cents"`
	Status           string    `json:"status"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// NotificationEvent carries one fan-out message to the worker.
type NotificationEvent struct {
	ID                string    `json:"id"`
	Message           string    `json:"message"`
	CustomerID        int64     `json:"customer_id"`
	Email             string    `json:"email"`
	Phone             string    `json:"phone"`
	FirstName         string    `json:"first_name"`
	LastName          string    `json:"last_name"`
	ReceivePromotions bool      `json:"receive_promotions"`
	CreatedAt         time.Time `json:"created_at"`
}
