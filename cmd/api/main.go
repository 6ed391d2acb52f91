package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"order_backend/internal/application/admin"
	"order_backend/internal/application/order"
	"order_backend/internal/config"
	"order_backend/internal/domain/repository"
	rediscache "order_backend/internal/infrastructure/cache/redis"
	ginserver "order_backend/internal/infrastructure/http/gin"
	kafkainfra "order_backend/internal/infrastructure/messaging/kafka"
	"order_backend/internal/infrastructure/persistence/memory"
	"order_backend/internal/infrastructure/persistence/postgres"
	"order_backend/internal/interfaces/http/handler"
	"order_backend/internal/interfaces/http/router"
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

	var uow repository.UnitOfWork
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		appLog.Warn("using in-memory store, data is lost on restart")
		uow = memory.NewStore()
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			appLog.Fatal("postgres connection failed", logger.Error(err))
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			appLog.Fatal("postgres migration failed", logger.Error(err))
		}
		uow = postgres.NewUnitOfWork(pool)
	}

	var publisher order.Publisher
	if cfg.Kafka.Enabled {
		producer, err := kafkainfra.NewOrderEventProducer(cfg.Kafka, appLog)
		if err != nil {
			appLog.Fatal("kafka producer init failed", logger.Error(err))
		}
		defer producer.Close(context.Background())
		publisher = producer
	}

	customers := uow.Repositories().Customers
	if cfg.Redis.Enabled {
		client, err := rediscache.NewClient(ctx, cfg.Redis)
		if err != nil {
			appLog.Fatal("redis connection failed", logger.Error(err))
		}
		defer client.Close()
		customers = rediscache.NewCustomerCache(client, customers, cfg.Redis.CustomerTTL, appLog)
	}

	if cfg.Admin.APIKey == "" {
		appLog.Warn("API_KEY is empty, /api is not protected")
	}

	orderService := order.NewService(uow, publisher, appLog, order.Options{StrictStatus: cfg.Orders.StrictStatus})
	gate := admin.NewGate(customers, cfg.Admin.PanelSecret, appLog)

	engine := ginserver.NewEngine(appLog)
	router.RegisterRoutes(engine, router.Handlers{
		Orders: handler.NewOrderHandler(orderService, handler.PageLimits{
			Default: cfg.Orders.DefaultPageSize,
			Max:     cfg.Orders.MaxPageSize,
		}, appLog),
		Admin: handler.NewAdminHandler(gate, appLog),
	}, cfg.Admin.APIKey)

	server := ginserver.NewServer(cfg.Server, engine, appLog)
	if err := server.Run(ctx); err != nil {
		appLog.Error("server run failed", logger.Error(err))
	}
}
