package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	handler "sales-inventory/app/handler/api"
	"sales-inventory/app/handler/consumer"
	"sales-inventory/app/repository/broker"
	"sales-inventory/app/repository/cache"
	"sales-inventory/app/repository/db"
	"sales-inventory/app/server"
	"sales-inventory/app/usecase"
	"sales-inventory/app/worker"
	"sales-inventory/config"
	"sales-inventory/pkg/logger"
	"sales-inventory/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const serviceName = "inventory"

func main() {
	logger.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.InitConfig(ctx)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	dbConn, err := db.NewPostgres(cfg.Db)
	if err != nil {
		slog.Error("DB connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if err := db.MigrateInventory(ctx, dbConn); err != nil {
		slog.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	productRepo := db.NewProductRepository(dbConn)
	if cfg.Redis.Addr != "" {
		rdb, err := cache.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			slog.Warn("Redis unavailable, product cache disabled", "error", err)
		} else {
			defer rdb.Close()
			productRepo = cache.NewProductRepository(productRepo, rdb, cfg.Redis.TTL)
		}
	}

	stockPublisher := broker.NewNoopStockPublisher()
	if cfg.Nats.Url != "" {
		nc, js, err := connectJetStream(ctx, cfg.Nats)
		if err != nil {
			slog.Error("Error connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		stockPublisher = broker.NewStockBrokerPublisher(js, cfg.Nats.StreamName)
	}

	productUsecase := usecase.NewProductUsecase(productRepo, stockPublisher)
	productHandler := handler.NewProductHandler(productUsecase, validator.New())

	manager := rabbitmq.NewManager("orderConfirmedConsumer",
		cfg.RabbitMQ.Connection(), cfg.RabbitMQ.QueueSpec(), cfg.RabbitMQ.ConsumePolicy(), nil)
	orderConsumer := worker.NewOrderConfirmedConsumer(manager,
		consumer.NewOrderConfirmedHandler(productUsecase), serviceName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = orderConsumer.Run(ctx)
	}()

	app := server.New(serviceName, func() bool {
		return orderConsumer.State() == worker.StateConsuming
	})
	handler.SetupInventoryRouter(app, productHandler, cfg)

	server.Serve(ctx, app, cfg.Port)
	wg.Wait()
}

func connectJetStream(ctx context.Context, cfg config.NatsConfig) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(cfg.Url)
	if err != nil {
		return nil, nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     strings.ToUpper(cfg.StreamName),
		Subjects: []string{fmt.Sprintf("%s.*", strings.ToLower(cfg.StreamName))},
		Storage:  jetstream.FileStorage,
	})
	if err != nil && !errors.Is(err, jetstream.ErrStreamNameAlreadyInUse) {
		nc.Close()
		return nil, nil, fmt.Errorf("create %s stream: %w", cfg.StreamName, err)
	}

	return nc, js, nil
}
