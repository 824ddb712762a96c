package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/httpx"
)

type Store interface {
	Summary(ctx context.Context, year int) (*domain.Dashboard, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	year := h.now().UTC().Year()

	dashboard, err := h.store.Summary(r.Context(), year)
	if err != nil {
		h.logger.Error("failed to build dashboard", "error", err, "year", year)
		httpx.WriteError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("dashboard built", "year", year, "sales", dashboard.SalesCount)
	httpx.WriteJSON(w, h.logger, http.StatusOK, dashboard)
}
