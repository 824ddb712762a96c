package orders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/httpx"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

type Store interface {
	Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error)
	Replace(ctx context.Context, id uuid.UUID, in domain.OrderInput) (*domain.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListHydrated(ctx context.Context) ([]domain.OrderDetail, error)
	GetHydrated(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger

	writes metric.Int64Counter
	items  metric.Int64Histogram
}

func NewHandler(store Store, logger *slog.Logger) (*Handler, error) {
	meter := otel.Meter("github.com/joao-fontenele/mercosys/internal/orders")

	writes, err := meter.Int64Counter("orders.writes",
		metric.WithDescription("Order writes by operation and outcome"),
	)
	if err != nil {
		return nil, err
	}

	items, err := meter.Int64Histogram("orders.items",
		metric.WithDescription("Line items per written order"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 25, 50),
	)
	if err != nil {
		return nil, err
	}

	return &Handler{
		store:  store,
		logger: logger,
		writes: writes,
		items:  items,
	}, nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListHydrated(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		httpx.WriteError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	httpx.WriteJSON(w, h.logger, http.StatusOK, orders)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.writeNotFound(w)
		return
	}

	order, err := h.store.GetHydrated(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "failed to get order", id, err)
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	order, err := h.store.Create(ctx, in)
	h.record(ctx, "create", len(in.Items), err)
	if err != nil {
		h.writeFailure(w, "failed to create order", uuid.Nil, err)
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID, "items", len(in.Items))
	httpx.WriteJSON(w, h.logger, http.StatusCreated, order)
}

func (h *Handler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.writeNotFound(w)
		return
	}

	var in domain.OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	order, err := h.store.Replace(ctx, id, in)
	h.record(ctx, "replace", len(in.Items), err)
	if err != nil {
		h.writeFailure(w, "failed to replace order", id, err)
		return
	}

	h.logger.Info("order replaced", "order_id", order.ID, "status", order.Status, "items", len(in.Items))
	httpx.WriteJSON(w, h.logger, http.StatusOK, order)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.writeNotFound(w)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	err := h.store.Delete(ctx, id)
	h.record(ctx, "delete", -1, err)
	if err != nil {
		h.writeFailure(w, "failed to delete order", id, err)
		return
	}

	h.logger.Info("order deleted", "order_id", id)
	httpx.WriteMessage(w, h.logger, "Order deleted successfully")
}

// record counts a write by outcome. items < 0 skips the histogram.
func (h *Handler) record(ctx context.Context, op string, items int, err error) {
	h.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("outcome", outcome(err)),
	))
	if err == nil && items >= 0 {
		h.items.Record(ctx, int64(items), metric.WithAttributes(attribute.String("operation", op)))
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrConstraint):
		return "constraint"
	default:
		return "error"
	}
}

func (h *Handler) writeNotFound(w http.ResponseWriter) {
	httpx.WriteError(w, h.logger, http.StatusNotFound, "Order not found")
}

func (h *Handler) writeFailure(w http.ResponseWriter, msg string, id uuid.UUID, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.writeNotFound(w)
		return
	}

	h.logger.Error(msg, "error", err, "order_id", id, "constraint", storage.ConstraintName(err))
	httpx.WriteError(w, h.logger, http.StatusInternalServerError, err.Error())
}
