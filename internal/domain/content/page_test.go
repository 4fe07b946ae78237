package content

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func TestPageRewriteAssetURLs(t *testing.T) {
	t.Run("Rewrites string settings", func(t *testing.T) {
		p := &Page{Blocks: []Block{
			{Type: "hero", Settings: map[string]any{"image": "https://old.example.com/hero.jpg"}},
		}}

		changed := p.RewriteAssetURLs(map[string]string{
			"https://old.example.com/hero.jpg": "https://cdn.example.com/hero.jpg",
		})

		assert.True(t, changed)
		assert.Equal(t, "https://cdn.example.com/hero.jpg", p.Blocks[0].Settings["image"])
	})

	t.Run("Rewrites URLs nested in lists and maps", func(t *testing.T) {
		p := &Page{Blocks: []Block{
			{
				Type: "gallery",
				Settings: map[string]any{
					"images": []any{
						"https://old.example.com/a.png",
						"https://old.example.com/b.png",
					},
					"cover": "https://old.example.com/cover.png",
					"style": map[string]any{
						"background": "https://old.example.com/bg.png",
					},
				},
			},
		}}

		changed := p.RewriteAssetURLs(map[string]string{
			"https://old.example.com/a.png":     "https://cdn.example.com/a.png",
			"https://old.example.com/b.png":     "https://cdn.example.com/b.png",
			"https://old.example.com/cover.png": "https://cdn.example.com/cover.png",
			"https://old.example.com/bg.png":    "https://cdn.example.com/bg.png",
		})

		assert.True(t, changed)
		images := p.Blocks[0].Settings["images"].([]any)
		assert.Equal(t, "https://cdn.example.com/a.png", images[0])
		assert.Equal(t, "https://cdn.example.com/b.png", images[1])
		assert.Equal(t, "https://cdn.example.com/cover.png", p.Blocks[0].Settings["cover"])
		style := p.Blocks[0].Settings["style"].(map[string]any)
		assert.Equal(t, "https://cdn.example.com/bg.png", style["background"])
	})

	t.Run("Rewrites nested children", func(t *testing.T) {
		p := &Page{Blocks: []Block{
			{Type: "section", Children: []Block{
				{Type: "image", Settings: map[string]any{"src": "https://old.example.com/deep.jpg"}},
			}},
		}}

		changed := p.RewriteAssetURLs(map[string]string{
			"https://old.example.com/deep.jpg": "https://cdn.example.com/deep.jpg",
		})

		assert.True(t, changed)
		assert.Equal(t, "https://cdn.example.com/deep.jpg", p.Blocks[0].Children[0].Settings["src"])
	})

	t.Run("Partial URL matches are left alone", func(t *testing.T) {
		p := &Page{Blocks: []Block{
			{Type: "text", Settings: map[string]any{
				"body": "see https://old.example.com/a.png for details",
			}},
		}}

		changed := p.RewriteAssetURLs(map[string]string{
			"https://old.example.com/a.png": "https://cdn.example.com/a.png",
		})

		assert.False(t, changed)
	})

	t.Run("Empty rewrite map is a no-op", func(t *testing.T) {
		p := &Page{Blocks: []Block{
			{Type: "hero", Settings: map[string]any{"image": "https://old.example.com/hero.jpg"}},
		}}
		assert.False(t, p.RewriteAssetURLs(nil))
	})
}

func TestPageCollectAssetURLs(t *testing.T) {
	t.Run("Collects from nested lists, maps and children", func(t *testing.T) {
		p := &Page{Blocks: []Block{
			{
				Type: "gallery",
				Settings: map[string]any{
					"images": []any{"https://old.example.com/a.png", "not a url"},
					"style":  map[string]any{"background": "https://old.example.com/bg.png"},
				},
				Children: []Block{
					{Type: "image", Settings: map[string]any{"src": "https://old.example.com/c.png"}},
				},
			},
		}}

		urls := p.CollectAssetURLs(isHTTP)

		require.Len(t, urls, 3)
		assert.Contains(t, urls, "https://old.example.com/a.png")
		assert.Contains(t, urls, "https://old.example.com/bg.png")
		assert.Contains(t, urls, "https://old.example.com/c.png")
	})
}
