package client

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/mercosys/internal/domain"
)

// ErrStaleOrders is returned together with a successful order write when
// the follow-up reload failed. The write happened; the cached orders are
// out of date until the next ReloadOrders.
var ErrStaleOrders = errors.New("order cache is stale")

// ItemRequest is a line item before pricing.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
}

// Session caches customers, products and orders for one user. Customer and
// product writes patch the cache with the server's response. Order writes
// always reload the whole order list, since only the server can produce the
// hydrated view.
type Session struct {
	client *Client

	mu        sync.RWMutex
	customers []domain.Customer
	products  []domain.Product
	orders    []domain.OrderDetail
}

func NewSession(c *Client) *Session {
	return &Session{client: c}
}

// Load fetches the three collections in parallel and replaces the cache only
// when all of them succeed.
func (s *Session) Load(ctx context.Context) error {
	var (
		customers []domain.Customer
		products  []domain.Product
		orders    []domain.OrderDetail
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.client.ListCustomers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.client.ListProducts(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.client.ListOrders(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.customers, s.products, s.orders = customers, products, orders
	return nil
}

func (s *Session) Customers() []domain.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.customers)
}

func (s *Session) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

func (s *Session) Orders() []domain.OrderDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

func (s *Session) Product(id uuid.UUID) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id })
	if i < 0 {
		return domain.Product{}, false
	}
	return s.products[i], true
}

func (s *Session) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	customer, err := s.client.CreateCustomer(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.customers = slices.Insert(s.customers, 0, *customer)
	s.mu.Unlock()
	return customer, nil
}

func (s *Session) UpdateCustomer(ctx context.Context, id uuid.UUID, in domain.CustomerInput) (*domain.Customer, error) {
	customer, err := s.client.UpdateCustomer(ctx, id, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if i := slices.IndexFunc(s.customers, func(c domain.Customer) bool { return c.ID == id }); i >= 0 {
		s.customers[i] = *customer
	}
	s.mu.Unlock()
	return customer, nil
}

func (s *Session) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.client.DeleteCustomer(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.customers = slices.DeleteFunc(s.customers, func(c domain.Customer) bool { return c.ID == id })
	s.mu.Unlock()
	return nil
}

func (s *Session) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	product, err := s.client.CreateProduct(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.products = slices.Insert(s.products, 0, *product)
	s.mu.Unlock()
	return product, nil
}

func (s *Session) UpdateProduct(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	product, err := s.client.UpdateProduct(ctx, id, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if i := slices.IndexFunc(s.products, func(p domain.Product) bool { return p.ID == id }); i >= 0 {
		s.products[i] = *product
	}
	s.mu.Unlock()
	return product, nil
}

func (s *Session) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.client.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.products = slices.DeleteFunc(s.products, func(p domain.Product) bool { return p.ID == id })
	s.mu.Unlock()
	return nil
}

func (s *Session) CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	order, err := s.client.CreateOrder(ctx, in)
	if err != nil {
		return nil, err
	}
	return order, s.reloadAfterWrite(ctx)
}

func (s *Session) ReplaceOrder(ctx context.Context, id uuid.UUID, in domain.OrderInput) (*domain.Order, error) {
	order, err := s.client.ReplaceOrder(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return order, s.reloadAfterWrite(ctx)
}

func (s *Session) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if err := s.client.DeleteOrder(ctx, id); err != nil {
		return err
	}
	return s.reloadAfterWrite(ctx)
}

func (s *Session) ReloadOrders(ctx context.Context) error {
	orders, err := s.client.ListOrders(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return nil
}

func (s *Session) reloadAfterWrite(ctx context.Context) error {
	if err := s.ReloadOrders(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStaleOrders, err)
	}
	return nil
}

// PriceItems captures the cached catalog price of each product as its unit
// price and sums the order total, the way the order form does.
func (s *Session) PriceItems(reqs []ItemRequest) ([]domain.LineItem, decimal.Decimal, error) {
	items := make([]domain.LineItem, 0, len(reqs))
	total := decimal.Zero

	for _, r := range reqs {
		if r.Quantity <= 0 {
			return nil, decimal.Zero, fmt.Errorf("product %s: quantity must be positive, got %d", r.ProductID, r.Quantity)
		}
		product, ok := s.Product(r.ProductID)
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("product %s is not in the catalog", r.ProductID)
		}

		items = append(items, domain.LineItem{
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
			UnitPrice: product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(r.Quantity))))
	}

	return items, total, nil
}
