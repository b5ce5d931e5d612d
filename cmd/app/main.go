package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightinfo/config"
	"github.com/Domenick1991/flightinfo/internal/bootstrap"
	"github.com/Domenick1991/flightinfo/internal/datetime"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/kafka"
	"github.com/Domenick1991/flightinfo/internal/logging"
	"github.com/Domenick1991/flightinfo/internal/metrics"
	"github.com/Domenick1991/flightinfo/internal/registry"
	"github.com/Domenick1991/flightinfo/internal/repository"
	"github.com/Domenick1991/flightinfo/internal/service/flights"
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

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Registry.TimeLocation()
	if err != nil {
		log.Fatalf("registry location: %v", err)
	}
	reg := registry.New(
		registry.WithParser(datetime.NewParser(loc)),
		registry.WithLogger(logger.WithName("registry")),
	)

	codec := flightjson.NewCodec(loc)

	repo, closeRepo, err := bootstrap.NewRepository(ctx, cfg, codec)
	if err != nil {
		log.Fatalf("init flight repository: %v", err)
	}
	defer closeRepo()

	opts := []flights.FlightServiceOption{
		flights.WithAutoSave(cfg.Registry.AutoSave),
		flights.WithLogger(logger.WithName("flights")),
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger.WithName("kafka"))
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Error(err, "Kafka is unreachable, flight events may be lost")
		}
		opts = append(opts, flights.WithEvents(producer, cfg.Kafka.FlightEventsTopic))
	}
	flightService := flights.NewFlightService(reg, repo, opts...)

	if cfg.Registry.LoadOnStart {
		if _, err := flightService.Load(ctx); err != nil {
			if !errors.Is(err, repository.ErrSnapshotNotFound) {
				log.Fatalf("load flights: %v", err)
			}
			logger.Info("No flight snapshot yet, starting empty")
		}
	}

	if err := bootstrap.Run(ctx, cfg, flightService, codec, logger); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
