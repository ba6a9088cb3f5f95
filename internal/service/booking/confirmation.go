package booking

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const receiptTimeLayout = "2006-01-02 15:04 MST"

// Confirmation renders a plain-text receipt of the booking.
func (s *BookingService) Confirmation(ctx context.Context, bookingID int64) (string, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("BOOKING CONFIRMATION\n")
	fmt.Fprintf(&b, "Reference: %s\n", booking.Reference())
	fmt.Fprintf(&b, "Status: %s\n", booking.Status)
	if f := booking.Flight; f != nil {
		fmt.Fprintf(&b, "Flight: %s", f.FlightNumber)
		if f.Airline != "" {
			fmt.Fprintf(&b, " (%s)", f.Airline)
		}
		fmt.Fprintf(&b, "\nRoute: %s\n", f.Route())
		fmt.Fprintf(&b, "Departure: %s\n", f.DepartureTime.Format(receiptTimeLayout))
		fmt.Fprintf(&b, "Arrival: %s\n", f.ArrivalTime.Format(receiptTimeLayout))
	} else {
		fmt.Fprintf(&b, "Flight: %d\n", booking.FlightID)
	}
	fmt.Fprintf(&b, "Passengers (%d):\n", booking.NumPassengers)
	for i, p := range booking.Passengers {
		fmt.Fprintf(&b, "  %d. %s", i+1, p.FullName())
		if p.DocumentNumber != "" {
			fmt.Fprintf(&b, " [%s]", p.DocumentNumber)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Total: %s\n", formatCents(booking.TotalAmountCents))
	fmt.Fprintf(&b, "Booked: %s\n", booking.CreatedAt.Format(time.RFC3339))
	return b.String(), nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
