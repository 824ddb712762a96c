package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Dashboard summarizes sales. Revenue and sales only count completed orders.
type Dashboard struct {
	TotalRevenue       decimal.Decimal  `json:"totalRevenue" db:"total_revenue"`
	CustomersCount     int              `json:"customersCount" db:"customers_count"`
	SalesCount         int              `json:"salesCount" db:"sales_count"`
	PendingOrdersCount int              `json:"pendingOrdersCount" db:"pending_orders_count"`
	MonthlyRevenue     []MonthlyRevenue `json:"monthlyRevenue" db:"-"`
	RecentSales        []RecentSale     `json:"recentSales" db:"-"`
}

type MonthlyRevenue struct {
	Month int             `json:"month" db:"month"`
	Value decimal.Decimal `json:"value" db:"value"`
}

type RecentSale struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	CustomerName string          `json:"customerName" db:"customer_name"`
	Email        string          `json:"email" db:"email"`
	TotalPrice   decimal.Decimal `json:"totalPrice" db:"total_price"`
	Status       OrderStatus     `json:"status" db:"status"`
	PlacedAt     time.Time       `json:"placedAt" db:"placed_at"`
}
