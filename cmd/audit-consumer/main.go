// Command audit-consumer drains account.events into the audit log.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/postboard-api/internal/config"
	"github.com/iliyamo/postboard-api/internal/logger"
	"github.com/iliyamo/postboard-api/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", true)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.Env == "dev")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", queue.AccountQueue).Str("dir", cfg.AuditLogDir).Msg("audit consumer starting")
	if err := queue.StartAccountConsumer(ctx, cfg.RabbitMQURL, cfg.AuditLogDir); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("audit consumer stopped")
	}
	log.Info().Msg("audit consumer exited")
}
