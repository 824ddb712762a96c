// Package gateway is the authenticated front door of the API. It checks the
// bearer token and relays the request unchanged.
package gateway

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/mercosys/internal/httpx"
	"github.com/joao-fontenele/mercosys/internal/telemetry"
)

type Handler struct {
	apiProxy *ServiceProxy
	logger   *slog.Logger
}

func NewHandler(apiProxy *ServiceProxy, logger *slog.Logger) *Handler {
	return &Handler{
		apiProxy: apiProxy,
		logger:   logger,
	}
}

func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, h.apiProxy, r.URL.Path)
}

func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, proxy *ServiceProxy, path string) {
	resp, err := proxy.ForwardRequest(r.Context(), r, path)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "path", path)
		httpx.WriteError(w, h.logger, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}

	w.WriteHeader(resp.StatusCode)

	h.logger.Info("request proxied", "method", r.Method, "path", path, "status", resp.StatusCode,
		"request_id", httpx.RequestIDFromContext(r.Context()))

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err)
	}
}

// Routes registers the proxied API behind auth and an open health check.
func (h *Handler) Routes(require httpx.Middleware) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/", require(telemetry.WithHTTPRoute(h.HandleAPI)))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}
