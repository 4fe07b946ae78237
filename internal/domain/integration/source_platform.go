package integration

import (
	"context"
	"errors"
)

var (
	ErrPlatformNotConfigured   = errors.New("integration: source platform not configured")
	ErrPlatformRequestFailed   = errors.New("integration: source platform request failed")
	ErrPlatformInvalidResponse = errors.New("integration: invalid source platform response")
	ErrPlatformAuthFailed      = errors.New("integration: source platform authentication failed")
	ErrPlatformRateLimited     = errors.New("integration: source platform rate limited")
)

// SourceClient lists external records a page at a time. Each call
// accepts the opaque continuation cursor from the previous page (empty
// for the first page) and returns the next cursor, empty when the
// collection is exhausted.
type SourceClient interface {
	ListProducts(ctx context.Context, cursor string) ([]ExternalProduct, string, error)
	ListCollections(ctx context.Context, cursor string) ([]ExternalCollection, string, error)
	ListCustomers(ctx context.Context, cursor string) ([]ExternalCustomer, string, error)
	ListOrders(ctx context.Context, cursor string) ([]ExternalOrder, string, error)
}

// PageFunc fetches one page of items for the given cursor
type PageFunc[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// Pager lazily pulls cursor pages from a PageFunc. It is finite,
// one-way and non-restartable: once exhausted or failed it stays that
// way. Each Next call performs exactly one fetch.
type Pager[T any] struct {
	fetch   PageFunc[T]
	cursor  string
	page    []T
	err     error
	started bool
	done    bool
}

// NewPager creates a pager over the given fetch function
func NewPager[T any](fetch PageFunc[T]) *Pager[T] {
	return &Pager[T]{fetch: fetch}
}

// Next pulls the next page. It returns false when the collection is
// exhausted or a fetch failed; check Err afterwards.
func (p *Pager[T]) Next(ctx context.Context) bool {
	if p.done || p.err != nil {
		return false
	}
	if p.started && p.cursor == "" {
		p.done = true
		return false
	}
	items, next, err := p.fetch(ctx, p.cursor)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}
	p.started = true
	p.page = items
	p.cursor = next
	if len(items) == 0 && next == "" {
		p.done = true
		return false
	}
	return true
}

// Page returns the most recently pulled page
func (p *Pager[T]) Page() []T {
	return p.page
}

// Err returns the fetch error that terminated the pager, if any
func (p *Pager[T]) Err() error {
	return p.err
}
