package products

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/httpx"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

type Store interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		httpx.WriteError(w, h.logger, http.StatusInternalServerError, err.Error())
		return
	}

	h.logger.Info("products listed", "count", len(products))
	httpx.WriteJSON(w, h.logger, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.writeNotFound(w)
		return
	}

	product, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeFailure(w, "failed to get product", id, err)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.Create(context.WithoutCancel(r.Context()), in)
	if err != nil {
		h.writeFailure(w, "failed to create product", uuid.Nil, err)
		return
	}

	h.logger.Info("product created", "product_id", product.ID, "sku", product.SKU)
	httpx.WriteJSON(w, h.logger, http.StatusCreated, product)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.writeNotFound(w)
		return
	}

	var in domain.ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.store.Update(context.WithoutCancel(r.Context()), id, in)
	if err != nil {
		h.writeFailure(w, "failed to update product", id, err)
		return
	}

	h.logger.Info("product updated", "product_id", product.ID, "price", product.Price)
	httpx.WriteJSON(w, h.logger, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.writeNotFound(w)
		return
	}

	if err := h.store.Delete(context.WithoutCancel(r.Context()), id); err != nil {
		h.writeFailure(w, "failed to delete product", id, err)
		return
	}

	h.logger.Info("product deleted", "product_id", id)
	httpx.WriteMessage(w, h.logger, "Product deleted successfully")
}

func (h *Handler) writeNotFound(w http.ResponseWriter) {
	httpx.WriteError(w, h.logger, http.StatusNotFound, "Product not found")
}

func (h *Handler) writeFailure(w http.ResponseWriter, msg string, id uuid.UUID, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		h.writeNotFound(w)
		return
	}

	h.logger.Error(msg, "error", err, "product_id", id, "constraint", storage.ConstraintName(err))
	httpx.WriteError(w, h.logger, http.StatusInternalServerError, err.Error())
}
