// Package sourceapi implements the rate-limited, cursor-paginated
// client for the source storefront platform's admin API.
package sourceapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/storekit/backend/internal/domain/integration"
	"github.com/storekit/backend/internal/infrastructure/ratelimit"
)

// maxResponseSize is the maximum allowed response size from the source
// platform API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// authHeader carries the static API credential on every request
const authHeader = "X-Access-Token"

// Client talks to the source platform. All requests flow through a
// single rate-limit scheduler, so at most one call is in flight and
// consecutive call starts are separated by the configured interval.
type Client struct {
	config    *Config
	httpCli   *http.Client
	scheduler *ratelimit.Scheduler
	logger    *zap.Logger
}

// Ensure Client implements the SourceClient contract
var _ integration.SourceClient = (*Client)(nil)

// ClientOption is a functional option for Client configuration
type ClientOption func(*Client)

// WithLogger sets a custom logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient replaces the underlying HTTP client, used by tests
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.httpCli = h
	}
}

// NewClient creates a source platform client from configuration
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	c := &Client{
		config:  cfg,
		httpCli: &http.Client{Timeout: cfg.Timeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scheduler = ratelimit.NewScheduler(cfg.MinInterval)

	return c, nil
}

// Close stops the rate-limit scheduler
func (c *Client) Close() {
	c.scheduler.Close()
}

// page envelopes returned by the list endpoints. The continuation
// cursor arrives either in the body or in a Link header.
type productsPage struct {
	Products   []integration.ExternalProduct `json:"products"`
	NextCursor string                        `json:"next_cursor"`
}

type collectionsPage struct {
	Collections []integration.ExternalCollection `json:"collections"`
	NextCursor  string                           `json:"next_cursor"`
}

type customersPage struct {
	Customers  []integration.ExternalCustomer `json:"customers"`
	NextCursor string                         `json:"next_cursor"`
}

type ordersPage struct {
	Orders     []integration.ExternalOrder `json:"orders"`
	NextCursor string                      `json:"next_cursor"`
}

// ListProducts fetches one page of products
func (c *Client) ListProducts(ctx context.Context, cursor string) ([]integration.ExternalProduct, string, error) {
	var page productsPage
	next, err := c.listPage(ctx, "products", cursor, &page)
	if err != nil {
		return nil, "", err
	}
	if page.NextCursor != "" {
		next = page.NextCursor
	}
	return page.Products, next, nil
}

// ListCollections fetches one page of collections
func (c *Client) ListCollections(ctx context.Context, cursor string) ([]integration.ExternalCollection, string, error) {
	var page collectionsPage
	next, err := c.listPage(ctx, "collections", cursor, &page)
	if err != nil {
		return nil, "", err
	}
	if page.NextCursor != "" {
		next = page.NextCursor
	}
	return page.Collections, next, nil
}

// ListCustomers fetches one page of customers
func (c *Client) ListCustomers(ctx context.Context, cursor string) ([]integration.ExternalCustomer, string, error) {
	var page customersPage
	next, err := c.listPage(ctx, "customers", cursor, &page)
	if err != nil {
		return nil, "", err
	}
	if page.NextCursor != "" {
		next = page.NextCursor
	}
	return page.Customers, next, nil
}

// ListOrders fetches one page of orders
func (c *Client) ListOrders(ctx context.Context, cursor string) ([]integration.ExternalOrder, string, error) {
	var page ordersPage
	next, err := c.listPage(ctx, "orders", cursor, &page)
	if err != nil {
		return nil, "", err
	}
	if page.NextCursor != "" {
		next = page.NextCursor
	}
	return page.Orders, next, nil
}

// listPage performs one rate-limited list call and decodes the body
// into out. It returns the continuation cursor from the Link header;
// body-level cursors take precedence in the callers.
func (c *Client) listPage(ctx context.Context, entity, cursor string, out any) (string, error) {
	endpoint := c.listURL(entity, cursor)

	var next string
	err := c.scheduler.Schedule(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		req.Header.Set(authHeader, c.config.AccessToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpCli.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", integration.ErrPlatformRequestFailed, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return integration.ErrPlatformAuthFailed
		case resp.StatusCode == http.StatusTooManyRequests:
			return integration.ErrPlatformRateLimited
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return fmt.Errorf("%w: %s returned status %d", integration.ErrPlatformRequestFailed, entity, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %v", integration.ErrPlatformInvalidResponse, err)
		}

		next = nextCursorFromLink(resp.Header.Get("Link"))
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Debug("fetched page",
		zap.String("entity", entity),
		zap.Bool("has_next", next != ""),
	)

	return next, nil
}

// listURL builds the list endpoint URL for an entity type
func (c *Client) listURL(entity, cursor string) string {
	u := url.URL{
		Scheme: "https",
		Host:   c.config.ShopDomain,
		Path:   fmt.Sprintf("/admin/api/%s/%s.json", c.config.APIVersion, entity),
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.config.PageSize))
	if cursor != "" {
		q.Set("page_info", cursor)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// nextCursorFromLink extracts the page_info cursor from a Link header
// of the form `<https://host/path?page_info=abc&limit=50>; rel="next"`.
// It returns "" when the header carries no next relation.
func nextCursorFromLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}

// ProductPager returns a lazy pager over all products
func (c *Client) ProductPager() *integration.Pager[integration.ExternalProduct] {
	return integration.NewPager(c.ListProducts)
}

// CollectionPager returns a lazy pager over all collections
func (c *Client) CollectionPager() *integration.Pager[integration.ExternalCollection] {
	return integration.NewPager(c.ListCollections)
}

// CustomerPager returns a lazy pager over all customers
func (c *Client) CustomerPager() *integration.Pager[integration.ExternalCustomer] {
	return integration.NewPager(c.ListCustomers)
}

// OrderPager returns a lazy pager over all orders
func (c *Client) OrderPager() *integration.Pager[integration.ExternalOrder] {
	return integration.NewPager(c.ListOrders)
}
