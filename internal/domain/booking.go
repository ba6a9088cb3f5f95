package domain

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID               int64         `json:"id"`
	CustomerID       int64         `json:"customer_id"`
	FlightID         int64         `json:"flight_id"`
	Status           BookingStatus `json:"status"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	NumPassengers    int           `json:"num_passengers"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Passengers       []Passenger   `json:"passengers,omitempty"`
	Flight           *Flight       `json:"flight,omitempty"`
}

// Reference is the human-readable booking code, e.g. BK000042.
func (b *Booking) Reference() string {
	return fmt.Sprintf("BK%06d", b.ID)
}

type Passenger struct {
	ID             int64  `json:"id"`
	BookingID      int64  `json:"booking_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DocumentNumber string `json:"document_number"`
}

func (p Passenger) FullName() string {
	return p.FirstName + " " + p.LastName
}
