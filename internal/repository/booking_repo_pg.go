package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, customer_id, flight_id, status, total_amount_cents, num_passengers, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.CustomerID, &b.FlightID, &b.Status, &b.TotalAmountCents, &b.NumPassengers, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx, `INSERT INTO bookings (customer_id, flight_id, status, total_amount_cents, num_passengers)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`, booking.CustomerID, booking.FlightID, booking.Status, booking.TotalAmountCents, booking.NumPassengers).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	for i := range booking.Passengers {
		p := &booking.Passengers[i]
		p.BookingID = booking.ID
		if err := tx.QueryRow(ctx, `INSERT INTO passengers (booking_id, first_name, last_name, document_number)
			VALUES ($1, $2, $3, $4) RETURNING id`, p.BookingID, p.FirstName, p.LastName, p.DocumentNumber).Scan(&p.ID); err != nil {
			return fmt.Errorf("failed to insert passenger: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return b, nil
}

func (r *PGBookingRepository) List(ctx context.Context) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at DESC`)
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
}

func (r *PGBookingRepository) ListByFlight(ctx context.Context, flightID int64) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE flight_id=$1 ORDER BY created_at`, flightID)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	err := r.db.QueryRow(ctx, `UPDATE bookings SET flight_id=$2, status=$3, total_amount_cents=$4, num_passengers=$5, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, b.ID, b.FlightID, b.Status, b.TotalAmountCents, b.NumPassengers).Scan(&b.UpdatedAt)
	if err != nil {
		return notFound(err, "booking", b.ID)
	}
	return nil
}

func (r *PGBookingRepository) Cancel(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1`, id, domain.BookingStatusCancelled)
	if err != nil {
		return fmt.Errorf("failed to cancel booking %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return missing("booking", id)
	}
	return nil
}

func (r *PGBookingRepository) RemovePassenger(ctx context.Context, b *domain.Booking, passengerID int64) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx, `DELETE FROM passengers WHERE id=$1 AND booking_id=$2`, passengerID, b.ID)
	if err != nil {
		return fmt.Errorf("failed to delete passenger %d: %w", passengerID, err)
	}
	if res.RowsAffected() == 0 {
		return missing("passenger", passengerID)
	}

	if err := tx.QueryRow(ctx, `UPDATE bookings SET total_amount_cents=$2, num_passengers=$3, updated_at=now()
		WHERE id=$1 RETURNING updated_at`, b.ID, b.TotalAmountCents, b.NumPassengers).Scan(&b.UpdatedAt); err != nil {
		return notFound(err, "booking", b.ID)
	}

	return tx.Commit(ctx)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
