// Package main is a queue maintenance tool. Transcription jobs are processed
// inside the server process (the recording store is in-memory there); this
// binary inspects the dead-letter queue and moves its jobs back for another
// pass.
package main

import (
	"context"
	"flag"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/purrscribe/backend/config"
	"github.com/purrscribe/backend/pkg/queue"
	"github.com/purrscribe/backend/pkg/redis"
)

func main() {
	requeue := flag.Bool("requeue", false, "move dead-lettered jobs back onto the main queue")
	flag.Parse()

	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)

	n, err := jobQueue.DLQLen(ctx)
	if err != nil {
		logger.Fatal("dlq length", zap.Error(err))
	}
	logger.Info("dead-letter queue", zap.Int64("jobs", n))

	if *requeue && n > 0 {
		moved, err := jobQueue.RequeueDLQ(ctx)
		if err != nil {
			logger.Fatal("requeue", zap.Error(err), zap.Int("moved", moved))
		}
		logger.Info("dead-lettered jobs requeued", zap.Int("moved", moved))
	}
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
