package orders

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

type fakeStore struct {
	created   domain.OrderInput
	replaced  domain.OrderInput
	replaceID uuid.UUID
	deleted   uuid.UUID
	ctxErr    error
	err       error
	orders    []domain.OrderDetail
}

func (s *fakeStore) Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	s.ctxErr = ctx.Err()
	s.created = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{
		ID:         uuid.New(),
		CustomerID: in.CustomerID,
		TotalPrice: in.TotalPrice,
		Status:     domain.OrderStatusPending,
		PlacedAt:   time.Now().UTC(),
	}, nil
}

func (s *fakeStore) Replace(ctx context.Context, id uuid.UUID, in domain.OrderInput) (*domain.Order, error) {
	s.replaceID = id
	s.replaced = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: id, CustomerID: in.CustomerID, TotalPrice: in.TotalPrice, Status: in.Status}, nil
}

func (s *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = id
	return s.err
}

func (s *fakeStore) ListHydrated(ctx context.Context) ([]domain.OrderDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.orders, nil
}

func (s *fakeStore) GetHydrated(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.orders {
		if s.orders[i].ID == id {
			return &s.orders[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func newTestHandler(t *testing.T, store Store) *Handler {
	t.Helper()

	h, err := NewHandler(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return h
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandler_HandleList(t *testing.T) {
	t.Run("returns hydrated orders with items array", func(t *testing.T) {
		id := uuid.New()
		store := &fakeStore{orders: []domain.OrderDetail{{
			Order:        domain.Order{ID: id, TotalPrice: decimal.RequireFromString("12.50"), Status: domain.OrderStatusPending},
			CustomerName: "Ada Lovelace",
			Items:        []domain.OrderItem{},
		}}}
		h := newTestHandler(t, store)

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[{
			"id": "`+id.String()+`",
			"customerId": "00000000-0000-0000-0000-000000000000",
			"totalPrice": 12.5,
			"status": "pending",
			"placedAt": "0001-01-01T00:00:00Z",
			"customerName": "Ada Lovelace",
			"items": []
		}]`, rec.Body.String())
	})

	t.Run("store failure is a 500 with the message", func(t *testing.T) {
		h := newTestHandler(t, &fakeStore{err: errors.New("connection refused")})

		rec := httptest.NewRecorder()
		h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "connection refused", decodeBody(t, rec)["error"])
	})
}

func TestHandler_HandleGet(t *testing.T) {
	id := uuid.New()
	store := &fakeStore{orders: []domain.OrderDetail{{Order: domain.Order{ID: id}, Items: []domain.OrderItem{}}}}
	h := newTestHandler(t, store)

	t.Run("known id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id.String(), decodeBody(t, rec)["id"])
	})

	t.Run("unknown id", func(t *testing.T) {
		other := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/orders/"+other, nil)
		req.SetPathValue("id", other)
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decodeBody(t, rec)["error"])
	})

	t.Run("malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/abc", nil)
		req.SetPathValue("id", "abc")
		rec := httptest.NewRecorder()

		h.HandleGet(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandler_HandleCreate(t *testing.T) {
	t.Run("decodes body and returns created order", func(t *testing.T) {
		store := &fakeStore{}
		h := newTestHandler(t, store)
		customerID, productID := uuid.New(), uuid.New()

		body := `{
			"customerId": "` + customerID.String() + `",
			"totalPrice": 20,
			"items": [{"productId": "` + productID.String() + `", "quantity": 2, "unitPrice": 10}]
		}`
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, customerID, store.created.CustomerID)
		require.Len(t, store.created.Items, 1)
		assert.Equal(t, productID, store.created.Items[0].ProductID)
		assert.Equal(t, 2, store.created.Items[0].Quantity)
		assert.True(t, store.created.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))

		resp := decodeBody(t, rec)
		assert.Equal(t, "pending", resp["status"])
		assert.Equal(t, float64(20), resp["totalPrice"])
	})

	t.Run("write survives a cancelled request", func(t *testing.T) {
		store := &fakeStore{}
		h := newTestHandler(t, store)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`)).WithContext(ctx)
		rec := httptest.NewRecorder()

		h.HandleCreate(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NoError(t, store.ctxErr)
	})

	t.Run("bad json is a 400", func(t *testing.T) {
		h := newTestHandler(t, &fakeStore{})

		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid request body", decodeBody(t, rec)["error"])
	})

	t.Run("constraint violation is a 500 with the store message", func(t *testing.T) {
		pqErr := &pq.Error{Code: "23503", Message: "violates foreign key constraint", Constraint: "orders_customer_id_fkey"}
		h := newTestHandler(t, &fakeStore{err: storage.Classify(pqErr)})

		rec := httptest.NewRecorder()
		h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{"items":[]}`)))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "pq: violates foreign key constraint", decodeBody(t, rec)["error"])
	})
}

func TestHandler_HandleReplace(t *testing.T) {
	t.Run("passes id and body to the store", func(t *testing.T) {
		store := &fakeStore{}
		h := newTestHandler(t, store)
		id := uuid.New()

		req := httptest.NewRequest(http.MethodPut, "/api/orders/"+id.String(),
			strings.NewReader(`{"totalPrice": 5, "status": "completed", "items": []}`))
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.HandleReplace(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id, store.replaceID)
		assert.Equal(t, domain.OrderStatusCompleted, store.replaced.Status)
		assert.Empty(t, store.replaced.Items)
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		h := newTestHandler(t, &fakeStore{err: storage.ErrNotFound})
		id := uuid.NewString()

		req := httptest.NewRequest(http.MethodPut, "/api/orders/"+id, strings.NewReader(`{"items": []}`))
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()

		h.HandleReplace(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", decodeBody(t, rec)["error"])
	})
}

func TestHandler_HandleDelete(t *testing.T) {
	t.Run("returns confirmation message", func(t *testing.T) {
		store := &fakeStore{}
		h := newTestHandler(t, store)
		id := uuid.New()

		req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+id.String(), nil)
		req.SetPathValue("id", id.String())
		rec := httptest.NewRecorder()

		h.HandleDelete(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, id, store.deleted)
		assert.JSONEq(t, `{"message":"Order deleted successfully"}`, rec.Body.String())
	})

	t.Run("unknown id is a 404", func(t *testing.T) {
		h := newTestHandler(t, &fakeStore{err: storage.ErrNotFound})
		id := uuid.NewString()

		req := httptest.NewRequest(http.MethodDelete, "/api/orders/"+id, nil)
		req.SetPathValue("id", id)
		rec := httptest.NewRecorder()

		h.HandleDelete(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "not_found", outcome(storage.ErrNotFound))
	assert.Equal(t, "constraint", outcome(storage.Classify(&pq.Error{Code: "23505"})))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
