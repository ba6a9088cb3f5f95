package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGCustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) CustomerRepository {
	return &PGCustomerRepository{db: db}
}

func (r *PGCustomerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.QueryRow(ctx, `SELECT id, email, phone, first_name, last_name, receive_promotions FROM customers WHERE id=$1`, id).
		Scan(&c.ID, &c.Email, &c.Phone, &c.FirstName, &c.LastName, &c.ReceivePromotions)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

func (r *PGCustomerRepository) ListPromotionSubscribers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT id, email, phone, first_name, last_name, receive_promotions FROM customers WHERE receive_promotions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotion subscribers: %w", err)
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Email, &c.Phone, &c.FirstName, &c.LastName, &c.ReceivePromotions); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

var _ CustomerRepository = (*PGCustomerRepository)(nil)
