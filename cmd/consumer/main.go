// Command consumer records lesson change events in logs/lessons.log.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/lesson-scheduler/internal/config"
	"github.com/iliyamo/lesson-scheduler/internal/logger"
	"github.com/iliyamo/lesson-scheduler/internal/queue"
)

func main() {
	_ = godotenv.Load()
	log := logger.New(os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := queue.NewConsumer(config.AMQPURL(), os.Getenv("LESSONS_LOG"), log)
	log.Info("lesson consumer started", zap.String("log_path", c.LogPath))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("consumer stopped", zap.Error(err))
	}
}
