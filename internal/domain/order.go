package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is the order row as written. TotalPrice is whatever the caller
// supplied; it is never recomputed from the line items.
type Order struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	CustomerID uuid.UUID       `json:"customerId" db:"customer_id"`
	TotalPrice decimal.Decimal `json:"totalPrice" db:"total_price"`
	Status     OrderStatus     `json:"status" db:"status"`
	PlacedAt   time.Time       `json:"placedAt" db:"placed_at"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty" db:"expires_at"`
}

type OrderItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	OrderID     uuid.UUID       `json:"orderId" db:"order_id"`
	ProductID   uuid.UUID       `json:"productId" db:"product_id"`
	ProductName string          `json:"productName" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
}

// OrderDetail is an order hydrated with its customer's name and its items.
// Items is never nil once hydrated.
type OrderDetail struct {
	Order
	CustomerName string      `json:"customerName" db:"customer_name"`
	Items        []OrderItem `json:"items" db:"-"`
}

type LineItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// OrderInput is the body of both order create and order replace.
type OrderInput struct {
	CustomerID uuid.UUID       `json:"customerId"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     OrderStatus     `json:"status,omitempty"`
	ExpiresAt  *time.Time      `json:"expiresAt,omitempty"`
	Items      []LineItem      `json:"items"`
}
