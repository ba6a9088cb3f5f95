package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const flightColumns = `id, flight_number, airline, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, price_cents, status, created_at, updated_at`

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.Airline, &f.FromAirport, &f.ToAirport, &f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.PriceCents, &f.Status, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	return r.query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time`)
}

func (r *PGFlightRepository) Search(ctx context.Context, filter FlightFilter) ([]domain.Flight, error) {
	query, args := searchQuery(filter)
	return r.query(ctx, query, args...)
}

func searchQuery(filter FlightFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Origin != "" {
		add("upper(from_airport) = upper($%d)", filter.Origin)
	}
	if filter.Destination != "" {
		add("upper(to_airport) = upper($%d)", filter.Destination)
	}
	if filter.Airline != "" {
		add("upper(airline) = upper($%d)", filter.Airline)
	}
	if !filter.Date.IsZero() {
		from, to := filter.DayRange()
		add("departure_time >= $%d", from)
		add("departure_time < $%d", to)
	}

	query := `SELECT ` + flightColumns + ` FROM flights`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return query + ` ORDER BY departure_time`, args
}

func (r *PGFlightRepository) query(ctx context.Context, query string, args ...any) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "flight", id)
	}
	return f, nil
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE flight_number=$1`, number))
	if err != nil {
		return nil, notFound(err, "flight", number)
	}
	return f, nil
}

func (r *PGFlightRepository) Save(ctx context.Context, f *domain.Flight) error {
	if f.Status == "" {
		f.Status = domain.FlightStatusScheduled
	}
	err := r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline, from_airport, to_airport, departure_time, arrival_time, total_seats, available_seats, price_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`,
		f.FlightNumber, f.Airline, f.FromAirport, f.ToAirport, f.DepartureTime, f.ArrivalTime, f.TotalSeats, f.AvailableSeats, f.PriceCents, f.Status).
		Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if c := conflict(err, "flight number %s already exists", f.FlightNumber); c != nil {
			return c
		}
		return fmt.Errorf("failed to save flight %s: %w", f.FlightNumber, err)
	}
	return nil
}

func (r *PGFlightRepository) UpdateDetails(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `UPDATE flights SET airline=$2, from_airport=$3, to_airport=$4, departure_time=$5, arrival_time=$6, price_cents=$7, updated_at=now()
		WHERE id=$1 RETURNING updated_at`,
		f.ID, f.Airline, f.FromAirport, f.ToAirport, f.DepartureTime, f.ArrivalTime, f.PriceCents).Scan(&f.UpdatedAt)
	if err != nil {
		return notFound(err, "flight", f.ID)
	}
	return nil
}

func (r *PGFlightRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM flights WHERE id=$1`, id)
	if err != nil {
		if c := conflict(err, "flight %d still has bookings", id); c != nil {
			return c
		}
		return fmt.Errorf("failed to delete flight %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return missing("flight", id)
	}
	return nil
}

func (r *PGFlightRepository) UpdateAvailableSeats(ctx context.Context, id int64, expected, next int) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET available_seats = $3, updated_at = now()
		WHERE id = $1 AND available_seats = $2 AND $3 BETWEEN 0 AND total_seats`, id, expected, next)
	if err != nil {
		return fmt.Errorf("failed to update seats of flight %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: seats of flight %d changed concurrently", domain.ErrConflict, id)
	}
	return nil
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, id int64, status domain.FlightStatus) error {
	res, err := r.db.Exec(ctx, `UPDATE flights SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update status of flight %d: %w", id, err)
	}
	if res.RowsAffected() == 0 {
		return missing("flight", id)
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
