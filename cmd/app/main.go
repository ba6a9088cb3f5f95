package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightreservation/api"
	"github.com/Domenick1991/flightreservation/config"
	"github.com/Domenick1991/flightreservation/internal/bootstrap"
	"github.com/Domenick1991/flightreservation/internal/cache"
	"github.com/Domenick1991/flightreservation/internal/kafka"
	"github.com/Domenick1991/flightreservation/internal/logger"
	"github.com/Domenick1991/flightreservation/internal/notification"
	"github.com/Domenick1991/flightreservation/internal/service/booking"
	"github.com/Domenick1991/flightreservation/internal/service/flights"
	"github.com/Domenick1991/flightreservation/internal/service/inventory"
	"github.com/Domenick1991/flightreservation/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logg := logger.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error("app stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *slog.Logger) error {
	repos, closeStorage, err := openStorage(ctx, cfg.Database, logg)
	if err != nil {
		return err
	}
	defer closeStorage()

	ledgerOpts := []inventory.LedgerOption{inventory.WithLogger(logg)}
	var flightCache flights.FlightCache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			return err
		}
		flightCache = redisCache
		ledgerOpts = append(ledgerOpts,
			inventory.WithCacheInvalidator(redisCache),
			inventory.WithLocker(inventory.ChainLocker{
				inventory.NewKeyedLocker(),
				inventory.NewDistributedLocker(redisCache, time.Duration(cfg.Booking.FlightLockTTL)*time.Second),
			}),
		)
		logg.Info("redis enabled", "addr", cfg.Redis.Addr)
	}
	ledger := inventory.NewLedger(repos.flights, ledgerOpts...)

	bookingOpts := []booking.BookingServiceOption{booking.WithLogger(logg)}
	var producer *kafka.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, logg)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logg.Warn("kafka is not reachable yet", "error", err)
		}
		bookingOpts = append(bookingOpts, booking.WithProducer(producer, cfg.Kafka.BookingTopic))
	}

	var hub *notification.Hub
	switch cfg.Notifications.Dispatch {
	case config.DispatchKafka:
		hub = notification.NewHub(logg, notification.NewRelayChannel(producer.Retrying(3), cfg.Kafka.NotificationsTopic))
	default:
		hub = notification.NewHub(logg, notification.DefaultChannels(logg)...)
	}
	bookingOpts = append(bookingOpts, booking.WithNotifier(hub))

	flightService := flights.NewFlightService(repos.flights, flightCache, logg)
	bookingService := booking.NewBookingService(repos.bookings, repos.passengers, repos.flights, repos.customers, ledger, bookingOpts...)
	paymentService := payment.NewPaymentService(repos.payments, repos.bookings,
		payment.WithLogger(logg),
		payment.WithStrategies(payment.DefaultStrategies(
			time.Duration(cfg.Payment.ValidationDelayMS)*time.Millisecond,
			time.Duration(cfg.Payment.AuthorizationDelayMS)*time.Millisecond,
			logg,
		)...),
	)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(logg, flightService, bookingService, paymentService)
	return bootstrap.Run(ctx, cfg, logg, router)
}
