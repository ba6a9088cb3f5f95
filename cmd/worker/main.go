package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightreservation/config"
	"github.com/Domenick1991/flightreservation/internal/kafka"
	"github.com/Domenick1991/flightreservation/internal/logger"
	"github.com/Domenick1991/flightreservation/internal/notification"
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
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatalf("worker needs kafka brokers")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logg)
	defer consumer.Close()

	hub := notification.NewHub(logg, notification.DefaultChannels(logg)...)

	logg.Info("notification worker started", "topic", cfg.Kafka.NotificationsTopic, "channels", hub.Channels())
	if err := consumer.Consume(ctx, notification.RelayHandler(hub)); err != nil {
		logg.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logg.Info("notification worker stopped")
}
