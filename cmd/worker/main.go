// cmd/worker/main.go
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/unclebandit/wealthyelephant-backend/internal/app"
	"github.com/unclebandit/wealthyelephant-backend/internal/config"
	"github.com/unclebandit/wealthyelephant-backend/internal/logger"
	"github.com/unclebandit/wealthyelephant-backend/internal/queue"
)

// The worker consumes campaign_sends from RabbitMQ. It shares the send guard
// with the API through Redis.
func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogLevel).With().Str("component", "worker").Logger()
	if envErr != nil {
		log.Info().Msg("⚠️ No .env file found, relying on OS environment variables")
	}

	if err := validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("❌ Invalid configuration")
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Worker stopped with error")
	}
}

func validate(cfg config.Config) error {
	switch {
	case cfg.DatabaseURL == "":
		return errors.New("DATABASE_URL or DB_* variables are required")
	case cfg.AMQPURL == "":
		return errors.New("AMQP_URL is required")
	case cfg.RedisURL == "":
		return errors.New("REDIS_URL is required")
	}
	return nil
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	infra, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer infra.Close()

	q, err := queue.NewAMQPQueue(cfg.AMQPURL, log)
	if err != nil {
		return err
	}
	defer q.Close()

	sub := queue.NewCampaignSendSubscriber(q, infra.Guard(), infra.Campaigns, infra.Sender(), infra.Events, log)
	if err := sub.Start(ctx); err != nil {
		return err
	}

	log.Info().Msg("Worker running, waiting for campaign sends...")
	app.LogReports(ctx, sub, log)

	log.Info().Msg("🛑 Worker shutting down")
	return nil
}
