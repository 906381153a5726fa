package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	handler "sales-inventory/app/handler/api"
	"sales-inventory/app/repository/broker"
	"sales-inventory/app/repository/client"
	"sales-inventory/app/repository/db"
	"sales-inventory/app/server"
	"sales-inventory/app/usecase"
	"sales-inventory/config"
	"sales-inventory/pkg/logger"
	"sales-inventory/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
)

const serviceName = "sales"

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

	if err := db.MigrateSales(ctx, dbConn); err != nil {
		slog.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Publishing is fail-open; the first publish opens the connection.
	manager := rabbitmq.NewManager("orderEventBroker",
		cfg.RabbitMQ.Connection(), cfg.RabbitMQ.QueueSpec(), cfg.RabbitMQ.PublishPolicy(), nil)
	defer manager.Close()

	orderUsecase := usecase.NewOrderUsecase(
		db.NewOrderRepository(dbConn),
		client.NewInventoryClient(cfg.Inventory.Url, cfg.Inventory.Timeout),
		broker.NewOrderEventPublisher(manager),
	)
	orderHandler := handler.NewOrderHandler(orderUsecase, validator.New())

	app := server.New(serviceName, func() bool {
		return dbConn.PingContext(ctx) == nil
	})
	handler.SetupSalesRouter(app, orderHandler, cfg)

	server.Serve(ctx, app, cfg.Port)
}
