package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"order_backend/internal/application/audit"
	"order_backend/internal/config"
	kafkainfra "order_backend/internal/infrastructure/messaging/kafka"
	"order_backend/internal/infrastructure/persistence/postgres"
	"order_backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	appLog, err := logger.NewZapLogger(cfg.App.Env)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer appLog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		appLog.Fatal("postgres connection failed", logger.Error(err))
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		appLog.Fatal("postgres migration failed", logger.Error(err))
	}

	svc := audit.NewService(postgres.NewAuditRepository(pool), appLog)

	consumer, err := kafkainfra.NewOrderEventConsumer(cfg.Kafka, svc, appLog)
	if err != nil {
		appLog.Fatal("kafka consumer init failed", logger.Error(err))
	}
	defer consumer.Close()

	appLog.Info("order audit consumer started",
		logger.String("topic", cfg.Kafka.OrderTopic),
		logger.String("group", cfg.Kafka.ConsumerGroup),
	)
	if err := consumer.Start(ctx); err != nil {
		appLog.Error("kafka consumer stopped", logger.Error(err))
	}
}
