// Package api maps the HTTP surface of the API binary onto the resource
// handlers.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/mercosys/internal/customers"
	"github.com/joao-fontenele/mercosys/internal/dashboard"
	"github.com/joao-fontenele/mercosys/internal/httpx"
	"github.com/joao-fontenele/mercosys/internal/orders"
	"github.com/joao-fontenele/mercosys/internal/products"
	"github.com/joao-fontenele/mercosys/internal/telemetry"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Customers *customers.Handler
	Products  *products.Handler
	Orders    *orders.Handler
	Dashboard *dashboard.Handler
}

type Options struct {
	Logger  *slog.Logger
	DB      Pinger
	Metrics http.Handler
	CORS    httpx.CORSOptions
}

func NewRouter(h Handlers, opts Options) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/customers", telemetry.WithHTTPRoute(h.Customers.HandleList))
	mux.HandleFunc("POST /api/customers", telemetry.WithHTTPRoute(h.Customers.HandleCreate))
	mux.HandleFunc("GET /api/customers/{id}", telemetry.WithHTTPRoute(h.Customers.HandleGet))
	mux.HandleFunc("PUT /api/customers/{id}", telemetry.WithHTTPRoute(h.Customers.HandleUpdate))
	mux.HandleFunc("DELETE /api/customers/{id}", telemetry.WithHTTPRoute(h.Customers.HandleDelete))

	mux.HandleFunc("GET /api/products", telemetry.WithHTTPRoute(h.Products.HandleList))
	mux.HandleFunc("POST /api/products", telemetry.WithHTTPRoute(h.Products.HandleCreate))
	mux.HandleFunc("GET /api/products/{id}", telemetry.WithHTTPRoute(h.Products.HandleGet))
	mux.HandleFunc("PUT /api/products/{id}", telemetry.WithHTTPRoute(h.Products.HandleUpdate))
	mux.HandleFunc("DELETE /api/products/{id}", telemetry.WithHTTPRoute(h.Products.HandleDelete))

	mux.HandleFunc("GET /api/orders", telemetry.WithHTTPRoute(h.Orders.HandleList))
	mux.HandleFunc("POST /api/orders", telemetry.WithHTTPRoute(h.Orders.HandleCreate))
	mux.HandleFunc("GET /api/orders/{id}", telemetry.WithHTTPRoute(h.Orders.HandleGet))
	mux.HandleFunc("PUT /api/orders/{id}", telemetry.WithHTTPRoute(h.Orders.HandleReplace))
	mux.HandleFunc("DELETE /api/orders/{id}", telemetry.WithHTTPRoute(h.Orders.HandleDelete))

	mux.HandleFunc("GET /api/dashboard", telemetry.WithHTTPRoute(h.Dashboard.HandleGet))

	mux.HandleFunc("GET /healthz", healthz(opts.DB, opts.Logger))
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return httpx.Chain(mux,
		httpx.RequestID(),
		httpx.Logger(opts.Logger),
		httpx.Recover(opts.Logger),
		httpx.CORS(opts.CORS),
	)
}

func healthz(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				logger.Error("health check failed", "error", err)
				httpx.WriteError(w, logger, http.StatusServiceUnavailable, "database unavailable")
				return
			}
		}
		httpx.WriteJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	}
}
