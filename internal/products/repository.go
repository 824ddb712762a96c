package products

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

type ProductRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := r.db.SelectContext(ctx, &products, `
		SELECT id, sku, name, price, created_at
		FROM products
		ORDER BY created_at DESC
	`); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.db.GetContext(ctx, product, `
		SELECT id, sku, name, price, created_at
		FROM products
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{
		ID:    uuid.New(),
		SKU:   in.SKU,
		Name:  in.Name,
		Price: in.Price,
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO products (id, sku, name, price)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, product.ID, product.SKU, product.Name, product.Price).Scan(&product.CreatedAt)
	if err != nil {
		return nil, storage.Classify(err)
	}
	return product, nil
}

// Update changes the catalog price only; line items keep the unit price
// captured when their order was written.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.db.GetContext(ctx, product, `
		UPDATE products SET sku = $2, name = $3, price = $4
		WHERE id = $1
		RETURNING id, sku, name, price, created_at
	`, id, in.SKU, in.Name, in.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, storage.Classify(err)
	}
	return product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return storage.Classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return storage.ErrNotFound
	}

	return nil
}
