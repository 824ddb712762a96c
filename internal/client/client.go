// Package client is a typed HTTP client for the mercosys API, plus a
// caching Session for interactive front ends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/joao-fontenele/mercosys/internal/domain"
)

// APIError is a non-2xx response. Message is the server's "error" field, or
// the raw body when there is none.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Option func(*Client)

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	return customers, c.do(ctx, http.MethodGet, "/api/customers", nil, &customers)
}

func (c *Client) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer := &domain.Customer{}
	if err := c.do(ctx, http.MethodGet, "/api/customers/"+id.String(), nil, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (c *Client) CreateCustomer(ctx context.Context, in domain.CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{}
	if err := c.do(ctx, http.MethodPost, "/api/customers", in, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id uuid.UUID, in domain.CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{}
	if err := c.do(ctx, http.MethodPut, "/api/customers/"+id.String(), in, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/customers/"+id.String(), nil, nil)
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	return products, c.do(ctx, http.MethodGet, "/api/products", nil, &products)
}

func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product := &domain.Product{}
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id.String(), nil, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *Client) CreateProduct(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	if err := c.do(ctx, http.MethodPost, "/api/products", in, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, in domain.ProductInput) (*domain.Product, error) {
	product := &domain.Product{}
	if err := c.do(ctx, http.MethodPut, "/api/products/"+id.String(), in, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/products/"+id.String(), nil, nil)
}

func (c *Client) ListOrders(ctx context.Context) ([]domain.OrderDetail, error) {
	var orders []domain.OrderDetail
	return orders, c.do(ctx, http.MethodGet, "/api/orders", nil, &orders)
}

func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	order := &domain.OrderDetail{}
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+id.String(), nil, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) CreateOrder(ctx context.Context, in domain.OrderInput) (*domain.Order, error) {
	order := &domain.Order{}
	if err := c.do(ctx, http.MethodPost, "/api/orders", in, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) ReplaceOrder(ctx context.Context, id uuid.UUID, in domain.OrderInput) (*domain.Order, error) {
	order := &domain.Order{}
	if err := c.do(ctx, http.MethodPut, "/api/orders/"+id.String(), in, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/orders/"+id.String(), nil, nil)
}

func (c *Client) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	dashboard := &domain.Dashboard{}
	if err := c.do(ctx, http.MethodGet, "/api/dashboard", nil, dashboard); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		msg = body.Error
	}

	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
