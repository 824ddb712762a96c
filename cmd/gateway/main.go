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

	"github.com/joao-fontenele/mercosys/internal/auth"
	"github.com/joao-fontenele/mercosys/internal/config"
	"github.com/joao-fontenele/mercosys/internal/gateway"
	"github.com/joao-fontenele/mercosys/internal/httpx"
	"github.com/joao-fontenele/mercosys/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadGateway()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tel, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    "gateway",
		ServiceVersion: cfg.ServiceVersion,
		Tracing:        cfg.TracingEnabled,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	handler := gateway.NewHandler(gateway.NewServiceProxy(cfg.APIServiceURL, httpClient), logger)
	mux := handler.Routes(auth.Require(auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer), logger))
	mux.Handle("GET /metrics", tel.MetricsHandler)

	cors := httpx.DefaultCORSOptions()
	cors.AllowedOrigins = cfg.AllowedOrigins

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: otelhttp.NewHandler(
			httpx.Chain(mux,
				httpx.RequestID(),
				httpx.Logger(logger),
				httpx.Recover(logger),
				httpx.CORS(cors),
			),
			"gateway",
			otelhttp.WithSpanNameFormatter(telemetry.SpanName),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting gateway service", "port", cfg.Port, "api_url", cfg.APIServiceURL)
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
