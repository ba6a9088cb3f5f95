package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, booking_id, amount_cents, method, transaction_id, status, created_at`

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Method, &p.TransactionID, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if err := r.db.QueryRow(ctx, `INSERT INTO payments (booking_id, amount_cents, method, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`, p.BookingID, p.AmountCents, p.Method, p.TransactionID, p.Status).
		Scan(&p.ID, &p.CreatedAt); err != nil {
		return fmt.Errorf("failed to create payment for booking %d: %w", p.BookingID, err)
	}
	return nil
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "payment", id)
	}
	return p, nil
}

func (r *PGPaymentRepository) GetLatestByBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, bookingID))
	if err != nil {
		return nil, notFound(err, "payment for booking", bookingID)
	}
	return p, nil
}

func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE payments SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update payment %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return missing("payment", id)
	}
	return nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
