package customers

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/joao-fontenele/mercosys/internal/domain"
	"github.com/joao-fontenele/mercosys/internal/storage"
)

type CustomerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	err := r.db.SelectContext(ctx, &customers, `
		SELECT id, email, full_name, created_at
		FROM customers
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := r.db.GetContext(ctx, customer, `
		SELECT id, email, full_name, created_at
		FROM customers
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *CustomerRepository) Create(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		ID:       uuid.New(),
		Email:    in.Email,
		FullName: in.FullName,
	}

	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO customers (id, email, full_name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, customer.ID, customer.Email, customer.FullName).Scan(&customer.CreatedAt)
	if err != nil {
		return nil, storage.Classify(err)
	}
	return customer, nil
}

func (r *CustomerRepository) Update(ctx context.Context, id uuid.UUID, in domain.CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{}
	err := r.db.GetContext(ctx, customer, `
		UPDATE customers SET email = $2, full_name = $3
		WHERE id = $1
		RETURNING id, email, full_name, created_at
	`, id, in.Email, in.FullName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, storage.Classify(err)
	}
	return customer, nil
}

// Delete fails with a constraint violation while orders still reference the
// customer; orders are never removed implicitly.
func (r *CustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
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
