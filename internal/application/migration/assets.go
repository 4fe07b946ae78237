package migrationapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storekit/backend/internal/domain/catalog"
	"github.com/storekit/backend/internal/domain/content"
	"github.com/storekit/backend/internal/domain/shared"
	"github.com/storekit/backend/internal/infrastructure/progress"
)

// AssetStore defines the interface for durable asset storage.
// This interface is implemented by the infrastructure layer (S3 or
// compatible object stores).
type AssetStore interface {
	// Put stores an object under the given key
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// PublicURL returns the publicly reachable URL for a stored key
	PublicURL(key string) string
}

// maxAssetSize caps a single downloaded asset
const maxAssetSize = 25 * 1024 * 1024

// RelocationResult summarizes one asset relocation run
type RelocationResult struct {
	RunID           uuid.UUID         `json:"run_id"`
	TotalAssets     int               `json:"total_assets"`
	RelocatedAssets int               `json:"relocated_assets"`
	FailedAssets    int               `json:"failed_assets"`
	UpdatedProducts int               `json:"updated_products"`
	UpdatedPages    int               `json:"updated_pages"`
	Errors          []AssetError      `json:"errors,omitempty"`
	Rewrites        map[string]string `json:"-"`
}

// AssetError records a single asset that could not be relocated
type AssetError struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// AssetRelocator copies externally hosted product and page images into
// owned object storage and rewrites the stored records to point at the
// new locations. A failed asset leaves its old URL in place; the run
// carries on.
type AssetRelocator struct {
	products catalog.ProductRepository
	pages    content.PageRepository
	store    AssetStore
	httpCli  *http.Client
	sink     progress.Sink
	logger   *zap.Logger
}

// RelocatorOption configures an AssetRelocator
type RelocatorOption func(*AssetRelocator)

// WithRelocatorHTTPClient overrides the download client
func WithRelocatorHTTPClient(cli *http.Client) RelocatorOption {
	return func(r *AssetRelocator) {
		r.httpCli = cli
	}
}

// WithRelocatorProgress sets the progress sink
func WithRelocatorProgress(sink progress.Sink) RelocatorOption {
	return func(r *AssetRelocator) {
		r.sink = sink
	}
}

// NewAssetRelocator creates an AssetRelocator
func NewAssetRelocator(
	products catalog.ProductRepository,
	pages content.PageRepository,
	store AssetStore,
	logger *zap.Logger,
	opts ...RelocatorOption,
) *AssetRelocator {
	r := &AssetRelocator{
		products: products,
		pages:    pages,
		store:    store,
		httpCli:  &http.Client{Timeout: 60 * time.Second},
		sink:     progress.NopSink{},
		logger:   logger.Named("assets"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Relocate downloads every distinct externally hosted image referenced
// by the store's products and pages, uploads each into object storage
// under the run's key prefix and rewrites the referencing records.
func (r *AssetRelocator) Relocate(ctx context.Context, storeID, runID uuid.UUID) (*RelocationResult, error) {
	result := &RelocationResult{RunID: runID, Rewrites: make(map[string]string)}

	products, err := r.products.FindAllForStore(ctx, storeID, shared.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	pages, err := r.pages.FindAllForStore(ctx, storeID, shared.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}

	urls := collectAssetURLs(products, pages)
	result.TotalAssets = len(urls)

	for i, assetURL := range urls {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		newURL, err := r.relocateOne(ctx, storeID, runID, assetURL)
		if err != nil {
			result.FailedAssets++
			result.Errors = append(result.Errors, AssetError{URL: assetURL, Message: err.Error()})
			r.logger.Warn("asset relocation failed",
				zap.String("url", assetURL),
				zap.Error(err),
			)
		} else {
			result.RelocatedAssets++
			result.Rewrites[assetURL] = newURL
		}

		r.sink.Publish(ctx, progress.Snapshot{
			StoreID: storeID,
			Phase:   "assets",
			Current: i + 1,
			Total:   len(urls),
			Percent: float64(i+1) / float64(len(urls)) * 100,
		})
	}

	if len(result.Rewrites) == 0 {
		return result, nil
	}

	for i := range products {
		if !products[i].ReplaceImageURLs(result.Rewrites) {
			continue
		}
		if err := r.products.Save(ctx, &products[i]); err != nil {
			r.logger.Warn("failed to save rewritten product",
				zap.String("product_id", products[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.UpdatedProducts++
	}

	for i := range pages {
		if !pages[i].RewriteAssetURLs(result.Rewrites) {
			continue
		}
		if err := r.pages.Save(ctx, &pages[i]); err != nil {
			r.logger.Warn("failed to save rewritten page",
				zap.String("page_id", pages[i].ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.UpdatedPages++
	}

	return result, nil
}

// relocateOne downloads one asset and stores it under the run's prefix
func (r *AssetRelocator) relocateOne(ctx context.Context, storeID, runID uuid.UUID, assetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := r.httpCli.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxAssetSize {
		return "", fmt.Errorf("asset exceeds %d bytes", maxAssetSize)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := assetKey(storeID, runID, assetURL)
	if err := r.store.Put(ctx, key, body, contentType); err != nil {
		return "", fmt.Errorf("store: %w", err)
	}
	return r.store.PublicURL(key), nil
}

// assetKey builds the object key for a relocated asset. The filename
// keeps the original basename for readability, prefixed with a short
// hash of the full URL so same-named assets from different hosts get
// distinct keys. A URL without a usable basename falls back to the
// full hash alone.
func assetKey(storeID, runID uuid.UUID, assetURL string) string {
	hash := uuid.NewSHA1(uuid.NameSpaceURL, []byte(assetURL)).String()
	filename := ""
	if u, err := url.Parse(assetURL); err == nil {
		filename = path.Base(u.Path)
	}
	if filename == "" || filename == "." || filename == "/" {
		filename = hash
	} else {
		filename = hash[:8] + "_" + filename
	}
	return fmt.Sprintf("stores/%s/migrations/%s/images/%s", storeID, runID, filename)
}

// collectAssetURLs gathers the distinct external image URLs referenced
// by products and pages, in first-seen order
func collectAssetURLs(products []catalog.Product, pages []content.Page) []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}

	for i := range products {
		for _, u := range products[i].Images {
			add(u)
		}
	}
	for i := range pages {
		for _, u := range pages[i].CollectAssetURLs(func(s string) bool {
			return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
		}) {
			add(u)
		}
	}
	return urls
}
