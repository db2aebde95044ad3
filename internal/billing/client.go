// Package billing provides the client side of the billing API: a local
// view of the product list with one entry point per action, a
// client-side aggregate total and PDF invoice export.
package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Itstouseef/billing-system/internal/invoice"
	"github.com/Itstouseef/billing-system/internal/models"
)

// Client talks to the billing API and keeps an in-memory copy of the
// product list. Every successful mutation re-fetches the full list
// rather than patching locally, so the view never drifts from the
// server. Client is not safe for concurrent use; it models a single
// user session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	invoices   *invoice.Generator
	products   []models.Product
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithInvoiceHeader sets the shop header used on exported invoices.
func WithInvoiceHeader(h invoice.Header) Option {
	return func(c *Client) {
		c.invoices = invoice.NewGenerator(h)
	}
}

// NewClient creates a Client for the API mounted at baseURL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		invoices:   invoice.NewGenerator(invoice.Header{ShopName: "Billing System"}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the local view with the full list from the server.
func (c *Client) Refresh(ctx context.Context) error {
	var products []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &products); err != nil {
		return err
	}
	c.products = products
	return nil
}

// Products returns a copy of the local product view.
func (c *Client) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Total computes the aggregate bill from the local view. It is always a
// fresh reduction over price and quantity; the server-provided
// totalPrice field is treated as a convenience cache and ignored.
func (c *Client) Total() float64 {
	var total float64
	for _, p := range c.products {
		total += p.Price * float64(p.Quantity)
	}
	return total
}

// Add creates a product and refreshes the local view.
func (c *Client) Add(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	var created models.Product
	if err := c.do(ctx, http.MethodPost, "/products", req, &created); err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update to a product and refreshes the local
// view.
func (c *Client) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	var updated models.Product
	if err := c.do(ctx, http.MethodPut, "/products/"+id, req, &updated); err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Remove deletes a product and refreshes the local view.
func (c *Client) Remove(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/products/"+id, nil, nil); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// ExportInvoice renders a PDF invoice from the local view at this
// moment, without a server round-trip.
func (c *Client) ExportInvoice(w io.Writer) error {
	return c.invoices.Render(c.products, w)
}

// apiError mirrors the server's uniform failure envelope.
type apiError struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}

// do issues one request and decodes the response into out when non-nil.
// Every non-2xx response collapses into a single "operation failed"
// error carrying the server's message; callers do not distinguish
// validation from not-found from server errors.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("operation failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("operation failed: %s", apiErr.Message)
		}
		return fmt.Errorf("operation failed: unexpected status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
