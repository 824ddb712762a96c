package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/joao-fontenele/mercosys/internal/api"
	"github.com/joao-fontenele/mercosys/internal/config"
	"github.com/joao-fontenele/mercosys/internal/customers"
	"github.com/joao-fontenele/mercosys/internal/dashboard"
	"github.com/joao-fontenele/mercosys/internal/httpx"
	"github.com/joao-fontenele/mercosys/internal/orders"
	"github.com/joao-fontenele/mercosys/internal/products"
	"github.com/joao-fontenele/mercosys/internal/storage"
	"github.com/joao-fontenele/mercosys/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadAPI()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tel, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    "api",
		ServiceVersion: cfg.ServiceVersion,
		Tracing:        cfg.TracingEnabled,
		RuntimeMetrics: true,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	db, err := storage.Open(ctx, cfg.Database.Options())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	ordersHandler, err := orders.NewHandler(orders.NewOrderRepository(db), logger)
	if err != nil {
		logger.Error("failed to create orders handler", "error", err)
		os.Exit(1)
	}

	cors := httpx.DefaultCORSOptions()
	cors.AllowedOrigins = cfg.AllowedOrigins

	router := api.NewRouter(api.Handlers{
		Customers: customers.NewHandler(customers.NewCustomerRepository(db), logger),
		Products:  products.NewHandler(products.NewProductRepository(db), logger),
		Orders:    ordersHandler,
		Dashboard: dashboard.NewHandler(dashboard.NewRepository(db), logger),
	}, api.Options{
		Logger:  logger,
		DB:      db,
		Metrics: tel.MetricsHandler,
		CORS:    cors,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelhttp.NewHandler(router, "api", otelhttp.WithSpanNameFormatter(telemetry.SpanName)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting api service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
