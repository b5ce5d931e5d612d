package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightinfo/config"
	"github.com/Domenick1991/flightinfo/internal/kafka"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/Domenick1991/flightinfo/internal/notify"
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
	if !cfg.Kafka.Enabled() {
		log.Fatalf("kafka brokers and flight_events_topic must be configured")
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.FlightEventsTopic, logger.WithName("kafka"))
	defer consumer.Close()

	notifier, err := notify.NewNotifier(logger.WithName("audit"))
	if err != nil {
		log.Fatalf("init notifier: %v", err)
	}

	logger.Info("Consuming flight events", "topic", cfg.Kafka.FlightEventsTopic, "group", cfg.Kafka.GroupID)
	if err := consumer.ConsumeEvents(ctx, notifier.Send); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(err, "Consumer stopped")
		os.Exit(1)
	}
	logger.Info("Shutting down")
}
