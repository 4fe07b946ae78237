package content

import (
	"context"

	"github.com/google/uuid"

	"github.com/storekit/backend/internal/domain/shared"
)

// Block is one node of a page's content tree. Blocks nest arbitrarily;
// string values inside Settings are the leaves that may reference
// externally hosted assets.
type Block struct {
	Type     string         `json:"type"`
	Settings map[string]any `json:"settings,omitempty"`
	Children []Block        `json:"children,omitempty"`
}

// Page is a storefront page built from a tree of content blocks.
type Page struct {
	shared.StoreEntity
	Title     string  `gorm:"type:varchar(500);not null"`
	Slug      string  `gorm:"type:varchar(500);index"`
	Blocks    []Block `gorm:"serializer:json"`
	Published bool    `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Page) TableName() string {
	return "pages"
}

// RewriteAssetURLs walks the page's block tree and replaces every string
// leaf that exactly equals a key of rewrites with the mapped value.
// Setting values nest after a JSON round trip ([]any, map[string]any),
// so the walk descends into them. Only whole-string matches are
// replaced; URLs embedded inside longer text are left alone. It returns
// true if anything changed.
func (p *Page) RewriteAssetURLs(rewrites map[string]string) bool {
	if len(rewrites) == 0 {
		return false
	}
	changed := false
	for i := range p.Blocks {
		if rewriteBlock(&p.Blocks[i], rewrites) {
			changed = true
		}
	}
	return changed
}

func rewriteBlock(b *Block, rewrites map[string]string) bool {
	changed := false
	for key, val := range b.Settings {
		if nu, ok := rewriteValue(val, rewrites); ok {
			b.Settings[key] = nu
			changed = true
		}
	}
	for i := range b.Children {
		if rewriteBlock(&b.Children[i], rewrites) {
			changed = true
		}
	}
	return changed
}

func rewriteValue(val any, rewrites map[string]string) (any, bool) {
	switch v := val.(type) {
	case string:
		if nu, ok := rewrites[v]; ok && nu != v {
			return nu, true
		}
	case []any:
		changed := false
		for i, item := range v {
			if nu, ok := rewriteValue(item, rewrites); ok {
				v[i] = nu
				changed = true
			}
		}
		return v, changed
	case map[string]any:
		changed := false
		for k, item := range v {
			if nu, ok := rewriteValue(item, rewrites); ok {
				v[k] = nu
				changed = true
			}
		}
		return v, changed
	}
	return val, false
}

// CollectAssetURLs walks the block tree, descending into nested list
// and map settings, and appends every string leaf for which match
// returns true.
func (p *Page) CollectAssetURLs(match func(string) bool) []string {
	var urls []string
	for i := range p.Blocks {
		urls = collectBlockURLs(&p.Blocks[i], match, urls)
	}
	return urls
}

func collectBlockURLs(b *Block, match func(string) bool, urls []string) []string {
	for _, val := range b.Settings {
		urls = collectValue(val, match, urls)
	}
	for i := range b.Children {
		urls = collectBlockURLs(&b.Children[i], match, urls)
	}
	return urls
}

func collectValue(val any, match func(string) bool, urls []string) []string {
	switch v := val.(type) {
	case string:
		if match(v) {
			urls = append(urls, v)
		}
	case []any:
		for _, item := range v {
			urls = collectValue(item, match, urls)
		}
	case map[string]any:
		for _, item := range v {
			urls = collectValue(item, match, urls)
		}
	}
	return urls
}

// PageRepository defines the interface for page persistence
type PageRepository interface {
	// FindByID finds a page by its ID within a store
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*Page, error)

	// FindAllForStore finds all pages for a store
	FindAllForStore(ctx context.Context, storeID uuid.UUID, filter shared.Filter) ([]Page, error)

	// Save creates or updates a page
	Save(ctx context.Context, page *Page) error
}
