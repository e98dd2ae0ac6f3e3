package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"exchangecore/internal/config"
	"exchangecore/internal/engine"
	"exchangecore/internal/kafkaadapter"
	"exchangecore/internal/redisadapter"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the engine config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	snapshotStore := redisadapter.New(cfg.Redis.Addr, cfg.Product.ID)
	defer snapshotStore.Close()

	orderReader := kafkaadapter.NewOrderReader(cfg.Kafka.Brokers, cfg.Product.ID, cfg.Kafka.SessionTimeout)
	defer orderReader.Close()

	eventWriter := kafkaadapter.NewEventWriter(cfg.Kafka.Brokers, cfg.Product.ID, cfg.Kafka.MessageTimeout)
	defer eventWriter.Close()

	eng := engine.New(cfg.Product, orderReader, eventWriter, snapshotStore)

	if err := eng.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("bootstrap engine")
	}

	// runID is a per-process correlation id, stamped on every log line from
	// here on (the pipeline's lines included) so operators can separate
	// overlapping restarts in the same product's log stream.
	runID := uuid.New().String()
	log.Logger = log.With().Str("run_id", runID).Logger()

	log.Info().
		Str("product_id", cfg.Product.ID).
		Uint64("order_offset", eng.OrderOffset).
		Msg("matching engine starting")

	if err := eng.Start(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("matching engine stopped")
	}

	os.Exit(0)
}
