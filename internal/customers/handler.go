package customers

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
	List(ctx context.Context) ([]domain.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
	Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error)
	Update(ctx context.Context, id uuid.UUID, in domain.CustomerInput) (*domain.Customer, error)
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
	customers, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, "failed to list customers", err)
		return
	}

	h.logger.Info("customers listed", "count", len(customers))
	httpx.WriteJSON(w, h.logger, http.StatusOK, customers)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.notFound(w)
		return
	}

	customer, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "failed to get customer", err, "customer_id", id)
		return
	}

	httpx.WriteJSON(w, h.logger, http.StatusOK, customer)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := h.store.Create(context.WithoutCancel(r.Context()), in)
	if err != nil {
		h.fail(w, "failed to create customer", err, "email", in.Email)
		return
	}

	h.logger.Info("customer created", "customer_id", customer.ID, "email", customer.Email)
	httpx.WriteJSON(w, h.logger, http.StatusCreated, customer)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.notFound(w)
		return
	}

	var in domain.CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	customer, err := h.store.Update(context.WithoutCancel(r.Context()), id, in)
	if err != nil {
		h.fail(w, "failed to update customer", err, "customer_id", id)
		return
	}

	h.logger.Info("customer updated", "customer_id", customer.ID)
	httpx.WriteJSON(w, h.logger, http.StatusOK, customer)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathUUID(r, "id")
	if !ok {
		h.notFound(w)
		return
	}

	if err := h.store.Delete(context.WithoutCancel(r.Context()), id); err != nil {
		h.fail(w, "failed to delete customer", err, "customer_id", id)
		return
	}

	h.logger.Info("customer deleted", "customer_id", id)
	httpx.WriteMessage(w, h.logger, "Customer deleted successfully")
}

func (h *Handler) notFound(w http.ResponseWriter) {
	httpx.WriteError(w, h.logger, http.StatusNotFound, "Customer not found")
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error, args ...any) {
	if errors.Is(err, storage.ErrNotFound) {
		h.notFound(w)
		return
	}

	h.logger.Error(msg, append(args, "error", err, "constraint", storage.ConstraintName(err))...)
	httpx.WriteError(w, h.logger, http.StatusInternalServerError, err.Error())
}
