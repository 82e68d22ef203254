package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

	"github.com/ichor-news/backend/internal/activity"
	"github.com/ichor-news/backend/internal/config"
	"github.com/ichor-news/backend/internal/elasticsearch"
	"github.com/ichor-news/backend/internal/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("eventsink")
	cfg, err := config.LoadEventSink()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	esClient, err := elasticsearch.New(cfg.Addr, cfg.Index, log)
	if err != nil {
		log.Error("init elasticsearch", slog.Any("err", err))
		os.Exit(1)
	}

	seen := activity.NewSeenSet(cfg.SeenCapacity, cfg.SeenTTL)
	sink := activity.NewSink(esClient, seen, log, cfg.TermLimit, cfg.TermMinLength)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.ActivityTopic,
		GroupID: cfg.ConsumerGroup,
	})
	defer reader.Close()

	log.Info("eventsink started",
		slog.String("topic", cfg.ActivityTopic),
		slog.String("group", cfg.ConsumerGroup),
		slog.String("index", cfg.Index),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		// Activity events are telemetry: a payload that cannot be indexed
		// is logged and skipped rather than blocking the partition.
		if err := sink.Process(ctx, msg.Value); err != nil {
			log.Warn("skip event",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}
