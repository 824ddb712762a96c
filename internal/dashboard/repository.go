// Package dashboard aggregates order and customer figures for the sales
// overview.
package dashboard

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

const recentSalesLimit = 5

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Summary reads every figure from one snapshot so the totals, the chart and
// the recent sales agree with each other. Monthly revenue covers year and
// always has twelve entries.
func (r *Repository) Summary(ctx context.Context, year int) (*domain.Dashboard, error) {
	dashboard := &domain.Dashboard{}
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

	err := storage.WithTx(ctx, r.db, opts, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, dashboard, `
			SELECT
				COALESCE(SUM(total_price) FILTER (WHERE status = 'completed'), 0) AS total_revenue,
				COUNT(*) FILTER (WHERE status = 'completed') AS sales_count,
				COUNT(*) FILTER (WHERE status = 'pending') AS pending_orders_count,
				(SELECT COUNT(*) FROM customers) AS customers_count
			FROM orders
		`); err != nil {
			return err
		}

		var months []domain.MonthlyRevenue
		if err := tx.SelectContext(ctx, &months, `
			SELECT EXTRACT(MONTH FROM placed_at AT TIME ZONE 'UTC')::int AS month,
				SUM(total_price) AS value
			FROM orders
			WHERE status = 'completed'
				AND EXTRACT(YEAR FROM placed_at AT TIME ZONE 'UTC') = $1
			GROUP BY 1
			ORDER BY 1
		`, year); err != nil {
			return err
		}
		dashboard.MonthlyRevenue = fillMonths(months)

		dashboard.RecentSales = []domain.RecentSale{}
		return tx.SelectContext(ctx, &dashboard.RecentSales, `
			SELECT o.id, c.full_name AS customer_name, c.email, o.total_price, o.status, o.placed_at
			FROM orders o
			JOIN customers c ON c.id = o.customer_id
			ORDER BY o.placed_at DESC, o.id
			LIMIT $1
		`, recentSalesLimit)
	})
	if err != nil {
		return nil, err
	}

	return dashboard, nil
}

// fillMonths expands sparse per-month sums to January through December.
func fillMonths(sums []domain.MonthlyRevenue) []domain.MonthlyRevenue {
	months := make([]domain.MonthlyRevenue, 12)
	for i := range months {
		months[i] = domain.MonthlyRevenue{Month: i + 1, Value: decimal.Zero}
	}
	for _, m := range sums {
		if m.Month >= 1 && m.Month <= 12 {
			months[m.Month-1].Value = m.Value
		}
	}
	return months
}
