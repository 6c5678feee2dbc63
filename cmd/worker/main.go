package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/xyence/internal/config"
	"github.com/xyence/internal/logging"
	"github.com/xyence/internal/worker"
)

func main() {
	_ = godotenv.Load()

	log := logging.New("worker")
	cfg := config.Load()

	opts, err := redis.ParseURL(cfg.JobsRedisURL)
	if err != nil {
		log.Fatal().Err(err).Str("url", cfg.JobsRedisURL).Msg("invalid jobs redis url")
	}
	client := redis.NewClient(opts)
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := worker.New(client, worker.DefaultQueue, log)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("worker exited")
	}
}
