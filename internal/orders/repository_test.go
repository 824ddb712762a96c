package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

var (
	orderColumns  = []string{"id", "customer_id", "total_price", "status", "placed_at", "expires_at"}
	detailColumns = []string{"id", "customer_id", "total_price", "status", "placed_at", "expires_at", "customer_name"}
	itemColumns   = []string{"id", "order_id", "product_id", "product_name", "quantity", "unit_price"}
)

func newMockRepository(t *testing.T) (*OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewOrderRepository(sqlx.NewDb(db, "postgres")), mock
}

func sampleInput() domain.OrderInput {
	return domain.OrderInput{
		CustomerID: uuid.New(),
		TotalPrice: decimal.RequireFromString("35.00"),
		Items: []domain.LineItem{
			{ProductID: uuid.New(), Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: uuid.New(), Quantity: 1, UnitPrice: decimal.RequireFromString("15.00")},
		},
	}
}

func TestOrderRepository_Create(t *testing.T) {
	t.Run("inserts order then items in one transaction", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		in := sampleInput()
		placedAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(sqlmock.AnyArg(), in.CustomerID, in.TotalPrice, domain.OrderStatusPending, nil).
			WillReturnRows(sqlmock.NewRows([]string{"placed_at"}).AddRow(placedAt))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), in.Items[0].ProductID, 0, 2, in.Items[0].UnitPrice).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), in.Items[1].ProductID, 1, 1, in.Items[1].UnitPrice).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		order, err := repo.Create(context.Background(), in)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, order.ID)
		assert.Equal(t, in.CustomerID, order.CustomerID)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
		assert.True(t, order.TotalPrice.Equal(in.TotalPrice))
		assert.Equal(t, placedAt, order.PlacedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("keeps supplied status", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		in := sampleInput()
		in.Status = domain.OrderStatusCompleted
		in.Items = nil

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WithArgs(sqlmock.AnyArg(), in.CustomerID, in.TotalPrice, domain.OrderStatusCompleted, nil).
			WillReturnRows(sqlmock.NewRows([]string{"placed_at"}).AddRow(time.Now()))
		mock.ExpectCommit()

		order, err := repo.Create(context.Background(), in)

		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusCompleted, order.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back everything when an item is rejected", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		in := sampleInput()

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnRows(sqlmock.NewRows([]string{"placed_at"}).AddRow(time.Now()))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnError(&pq.Error{
				Code:       "23503",
				Message:    `insert or update on table "order_items" violates foreign key constraint "order_items_product_id_fkey"`,
				Constraint: "order_items_product_id_fkey",
			})
		mock.ExpectRollback()

		order, err := repo.Create(context.Background(), in)

		require.ErrorIs(t, err, storage.ErrConstraint)
		assert.Nil(t, order)
		assert.Equal(t, "order_items_product_id_fkey", storage.ConstraintName(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the customer is unknown", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO orders").
			WillReturnError(&pq.Error{Code: "23503", Constraint: "orders_customer_id_fkey"})
		mock.ExpectRollback()

		_, err := repo.Create(context.Background(), sampleInput())

		require.ErrorIs(t, err, storage.ErrConstraint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_Replace(t *testing.T) {
	t.Run("updates row then swaps the whole item set", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()
		in := sampleInput()
		placedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders").
			WithArgs(id, in.CustomerID, in.TotalPrice, domain.OrderStatus(""), nil).
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(id.String(), in.CustomerID.String(), "35.00", "completed", placedAt, nil))
		mock.ExpectExec("DELETE FROM order_items").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(sqlmock.AnyArg(), id, in.Items[0].ProductID, 0, 2, in.Items[0].UnitPrice).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WithArgs(sqlmock.AnyArg(), id, in.Items[1].ProductID, 1, 1, in.Items[1].UnitPrice).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		order, err := repo.Replace(context.Background(), id, in)

		require.NoError(t, err)
		assert.Equal(t, id, order.ID)
		assert.Equal(t, domain.OrderStatusCompleted, order.Status)
		assert.Equal(t, placedAt, order.PlacedAt)
		assert.Nil(t, order.ExpiresAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty item list clears items", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()
		in := sampleInput()
		in.Items = []domain.LineItem{}

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders").
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(id.String(), in.CustomerID.String(), "35.00", "pending", time.Now(), nil))
		mock.ExpectExec("DELETE FROM order_items").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		_, err := repo.Replace(context.Background(), id, in)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id touches no items", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders").
			WillReturnRows(sqlmock.NewRows(orderColumns))
		mock.ExpectRollback()

		order, err := repo.Replace(context.Background(), uuid.New(), sampleInput())

		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back update and delete when an insert fails", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()
		in := sampleInput()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE orders").
			WillReturnRows(sqlmock.NewRows(orderColumns).
				AddRow(id.String(), in.CustomerID.String(), "35.00", "pending", time.Now(), nil))
		mock.ExpectExec("DELETE FROM order_items").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO order_items").
			WillReturnError(&pq.Error{Code: "23514", Constraint: "order_items_quantity_check"})
		mock.ExpectRollback()

		_, err := repo.Replace(context.Background(), id, in)

		require.ErrorIs(t, err, storage.ErrConstraint)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns transport failure unchanged", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		boom := errors.New("connection refused")

		mock.ExpectBegin().WillReturnError(boom)

		_, err := repo.Replace(context.Background(), uuid.New(), sampleInput())

		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_Delete(t *testing.T) {
	t.Run("deletes order row", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM orders").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Delete(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		mock.ExpectExec("DELETE FROM orders").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), uuid.New())

		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_ListHydrated(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	customerID, productA, productB := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	expectRead := func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery("FROM orders o").
			WillReturnRows(sqlmock.NewRows(detailColumns).
				AddRow(first.String(), customerID.String(), "20.00", "pending", now, nil, "Ada Lovelace").
				AddRow(second.String(), customerID.String(), "0.00", "cancelled", now.Add(-time.Hour), nil, "Ada Lovelace"))
		mock.ExpectQuery("FROM order_items oi").
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow(uuid.NewString(), first.String(), productB.String(), "Widget B", int64(1), "15.00").
				AddRow(uuid.NewString(), first.String(), productA.String(), "Widget A", int64(1), "5.00"))
	}

	t.Run("groups items and leaves empty orders with empty items", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		expectRead(mock)

		orders, err := repo.ListHydrated(context.Background())

		require.NoError(t, err)
		require.Len(t, orders, 2)

		assert.Equal(t, first, orders[0].ID)
		assert.Equal(t, "Ada Lovelace", orders[0].CustomerName)
		require.Len(t, orders[0].Items, 2)
		assert.Equal(t, "Widget B", orders[0].Items[0].ProductName)
		assert.Equal(t, "Widget A", orders[0].Items[1].ProductName)

		assert.Equal(t, second, orders[1].ID)
		assert.NotNil(t, orders[1].Items)
		assert.Empty(t, orders[1].Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reading twice yields the same result", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		expectRead(mock)
		expectRead(mock)

		a, err := repo.ListHydrated(context.Background())
		require.NoError(t, err)
		b, err := repo.ListHydrated(context.Background())
		require.NoError(t, err)

		require.Len(t, b, len(a))
		for i := range a {
			assert.Equal(t, a[i].ID, b[i].ID)
			assert.Len(t, b[i].Items, len(a[i].Items))
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no orders skips the item query", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("FROM orders o").
			WillReturnRows(sqlmock.NewRows(detailColumns))

		orders, err := repo.ListHydrated(context.Background())

		require.NoError(t, err)
		assert.NotNil(t, orders)
		assert.Empty(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("item query failure fails the read", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("FROM orders o").
			WillReturnRows(sqlmock.NewRows(detailColumns).
				AddRow(first.String(), customerID.String(), "20.00", "pending", now, nil, "Ada Lovelace"))
		mock.ExpectQuery("FROM order_items oi").
			WillReturnError(errors.New("connection reset"))

		orders, err := repo.ListHydrated(context.Background())

		require.EqualError(t, err, "connection reset")
		assert.Nil(t, orders)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_GetHydrated(t *testing.T) {
	t.Run("returns one hydrated order", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id, customerID := uuid.New(), uuid.New()
		expiresAt := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("FROM orders o").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(detailColumns).
				AddRow(id.String(), customerID.String(), "9.99", "pending", time.Now(), expiresAt, "Grace Hopper"))
		mock.ExpectQuery("FROM order_items oi").
			WillReturnRows(sqlmock.NewRows(itemColumns).
				AddRow(uuid.NewString(), id.String(), uuid.NewString(), "Cable", int64(3), "3.33"))

		order, err := repo.GetHydrated(context.Background(), id)

		require.NoError(t, err)
		assert.Equal(t, "Grace Hopper", order.CustomerName)
		require.NotNil(t, order.ExpiresAt)
		assert.Equal(t, expiresAt, *order.ExpiresAt)
		require.Len(t, order.Items, 1)
		assert.Equal(t, 3, order.Items[0].Quantity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery("FROM orders o").
			WillReturnRows(sqlmock.NewRows(detailColumns))

		order, err := repo.GetHydrated(context.Background(), uuid.New())

		require.ErrorIs(t, err, storage.ErrNotFound)
		assert.Nil(t, order)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
