package orders

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

var tracer = otel.Tracer("github.com/joao-fontenele/mercosys/internal/orders")

const selectOrderDetail = `
	SELECT o.id, o.customer_id, o.total_price, o.status, o.placed_at, o.expires_at,
		c.full_name AS customer_name
	FROM orders o
	JOIN customers c ON c.id = o.customer_id
`

// OrderRepository writes an order and its whole item set as one unit.
// Readers never observe an order with a partial item set.
type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order row and then each item in one transaction. Any
// failure, such as an unknown customer or product, leaves no rows behind.
// The returned order is not hydrated.
func (r *OrderRepository) Create(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Create", trace.WithAttributes(
		attribute.Int("order.items", len(in.Items)),
	))
	defer span.End()

	order := &domain.Order{
		ID:         uuid.New(),
		CustomerID: in.CustomerID,
		TotalPrice: in.TotalPrice,
		Status:     in.Status,
		ExpiresAt:  in.ExpiresAt,
	}
	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}

	err := storage.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO orders (id, customer_id, total_price, status, expires_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING placed_at
		`, order.ID, order.CustomerID, order.TotalPrice, order.Status, order.ExpiresAt).Scan(&order.PlacedAt)
		if err != nil {
			return err
		}

		return insertItems(ctx, tx, order.ID, in.Items)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	span.SetAttributes(attribute.String("order.id", order.ID.String()))
	return order, nil
}

// Replace updates the order row, deletes every existing item and inserts
// in.Items, all in one transaction. The update doubles as the existence
// check: when no row matches, ErrNotFound is returned before any item is
// touched. An empty status keeps the current one.
func (r *OrderRepository) Replace(ctx context.Context, id uuid.UUID, in domain.OrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "orders.Replace", trace.WithAttributes(
		attribute.String("order.id", id.String()),
		attribute.Int("order.items", len(in.Items)),
	))
	defer span.End()

	order := &domain.Order{}
	err := storage.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, order, `
			UPDATE orders
			SET customer_id = $2,
				total_price = $3,
				status = COALESCE(NULLIF($4, ''), status),
				expires_at = $5
			WHERE id = $1
			RETURNING id, customer_id, total_price, status, placed_at, expires_at
		`, id, in.CustomerID, in.TotalPrice, in.Status, in.ExpiresAt)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return err
		}

		return insertItems(ctx, tx, id, in.Items)
	})
	if err != nil {
		return nil, fail(span, err)
	}

	return order, nil
}

// Delete removes the order row; the foreign key cascade removes its items.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "orders.Delete", trace.WithAttributes(
		attribute.String("order.id", id.String()),
	))
	defer span.End()

	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fail(span, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fail(span, err)
	}

	if rowsAffected == 0 {
		return fail(span, storage.ErrNotFound)
	}

	return nil
}

// ListHydrated returns every order, newest first, with its customer's name
// and its items. Items come from a second query and are grouped by order in
// memory.
func (r *OrderRepository) ListHydrated(ctx context.Context) ([]domain.OrderDetail, error) {
	orders := []domain.OrderDetail{}
	if err := r.db.SelectContext(ctx, &orders, selectOrderDetail+`
		ORDER BY o.placed_at DESC, o.id
	`); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *OrderRepository) GetHydrated(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	orders := make([]domain.OrderDetail, 1)
	err := r.db.GetContext(ctx, &orders[0], selectOrderDetail+`
		WHERE o.id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// attachItems fills Items on every order. Orders without items get an empty
// slice, never nil. Items keep the order in which they were supplied.
func (r *OrderRepository) attachItems(ctx context.Context, orders []domain.OrderDetail) error {
	if len(orders) == 0 {
		return nil
	}

	orderIDs := make([]string, len(orders))
	byID := make(map[uuid.UUID]*domain.OrderDetail, len(orders))
	for i := range orders {
		orders[i].Items = []domain.OrderItem{}
		orderIDs[i] = orders[i].ID.String()
		byID[orders[i].ID] = &orders[i]
	}

	var items []domain.OrderItem
	if err := r.db.SelectContext(ctx, &items, `
		SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name, oi.quantity, oi.unit_price
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.position
	`, pq.Array(orderIDs)); err != nil {
		return err
	}

	for _, item := range items {
		order, ok := byID[item.OrderID]
		if !ok {
			continue
		}
		order.Items = append(order.Items, item)
	}

	return nil
}

func insertItems(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, items []domain.LineItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, position, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New(), orderID, item.ProductID, i, item.Quantity, item.UnitPrice)
		if err != nil {
			return err
		}
	}
	return nil
}

func fail(span trace.Span, err error) error {
	err = storage.Classify(err)
	if !errors.Is(err, storage.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
