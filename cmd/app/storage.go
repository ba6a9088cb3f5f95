package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/flightreservation/config"
	"github.com/Domenick1991/flightreservation/internal/domain"
	"github.com/Domenick1991/flightreservation/internal/repository"
	"github.com/Domenick1991/flightreservation/internal/repository/memory"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repositories struct {
	flights    repository.FlightRepository
	bookings   repository.BookingRepository
	passengers repository.PassengerRepository
	payments   repository.PaymentRepository
	customers  repository.CustomerRepository
}

func openStorage(ctx context.Context, cfg config.DatabaseConfig, logg *slog.Logger) (repositories, func(), error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.New()
		seedDemo(ctx, store)
		logg.Info("using in-memory storage with demo data")
		return repositories{
			flights:    store.Flights(),
			bookings:   store.Bookings(),
			passengers: store.Passengers(),
			payments:   store.Payments(),
			customers:  store.Customers(),
		}, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		return repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return repositories{}, nil, fmt.Errorf("ping postgres: %w", err)
	}
	if cfg.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			pool.Close()
			return repositories{}, nil, err
		}
		logg.Info("database schema applied")
	}

	return repositories{
		flights:    repository.NewFlightRepository(pool),
		bookings:   repository.NewBookingRepository(pool),
		passengers: repository.NewPassengerRepository(pool),
		payments:   repository.NewPaymentRepository(pool),
		customers:  repository.NewCustomerRepository(pool),
	}, pool.Close, nil
}

func seedDemo(ctx context.Context, store *memory.Store) {
	store.AddCustomer(domain.Customer{Email: "ada@example.com", Phone: "+15550100", FirstName: "Ada", LastName: "Lovelace", ReceivePromotions: true})
	store.AddCustomer(domain.Customer{Email: "alan@example.com", Phone: "+15550101", FirstName: "Alan", LastName: "Turing"})

	base := time.Now().Truncate(time.Hour).Add(24 * time.Hour)
	for i, f := range []domain.Flight{
		{FlightNumber: "SU1234", Airline: "Aeroflot", FromAirport: "SVO", ToAirport: "LED", TotalSeats: 150, PriceCents: 500000},
		{FlightNumber: "SU1236", Airline: "Aeroflot", FromAirport: "SVO", ToAirport: "LED", TotalSeats: 150, PriceCents: 550000},
		{FlightNumber: "S7 2011", Airline: "S7", FromAirport: "DME", ToAirport: "KZN", TotalSeats: 90, PriceCents: 420000},
	} {
		f.DepartureTime = base.Add(time.Duration(i*3) * time.Hour)
		f.ArrivalTime = f.DepartureTime.Add(90 * time.Minute)
		f.AvailableSeats = f.TotalSeats
		_ = store.Flights().Save(ctx, &f)
	}
}
