package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGPassengerRepository struct {
	db *pgxpool.Pool
}

func NewPassengerRepository(db *pgxpool.Pool) PassengerRepository {
	return &PGPassengerRepository{db: db}
}

func (r *PGPassengerRepository) GetByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	var p domain.Passenger
	err := r.db.QueryRow(ctx, `SELECT id, booking_id, first_name, last_name, document_number FROM passengers WHERE id=$1`, id).
		Scan(&p.ID, &p.BookingID, &p.FirstName, &p.LastName, &p.DocumentNumber)
	if err != nil {
		return nil, notFound(err, "passenger", id)
	}
	return &p, nil
}

func (r *PGPassengerRepository) Update(ctx context.Context, p *domain.Passenger) error {
	res, err := r.db.Exec(ctx, `UPDATE passengers SET first_name=$2, last_name=$3, document_number=$4 WHERE id=$1`,
		p.ID, p.FirstName, p.LastName, p.DocumentNumber)
	if err != nil {
		return fmt.Errorf("failed to update passenger %d: %w", p.ID, err)
	}
	if res.RowsAffected() == 0 {
		return missing("passenger", p.ID)
	}
	return nil
}

func (r *PGPassengerRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, first_name, last_name, document_number FROM passengers WHERE booking_id=$1 ORDER BY id`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passengers of booking %d: %w", bookingID, err)
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FirstName, &p.LastName, &p.DocumentNumber); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

var _ PassengerRepository = (*PGPassengerRepository)(nil)
