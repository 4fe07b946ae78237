package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	migrationapp "github.com/storekit/backend/internal/application/migration"
)

// Ensure StubAssetStore implements the AssetStore contract
var _ migrationapp.AssetStore = (*StubAssetStore)(nil)

// StubAssetStore is an in-memory AssetStore for development and tests.
type StubAssetStore struct {
	// BaseURL is the base URL used for public links.
	// Defaults to "https://assets.example.com" if not set.
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubAssetStore creates a new StubAssetStore
func NewStubAssetStore() *StubAssetStore {
	return &StubAssetStore{
		BaseURL: "https://assets.example.com",
		objects: make(map[string][]byte),
	}
}

// Put stores a blob in memory
func (s *StubAssetStore) Put(ctx context.Context, key string, body []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(body))
	copy(buf, body)
	s.objects[key] = buf
	return nil
}

// PublicURL returns the public URL for a stored key
func (s *StubAssetStore) PublicURL(key string) string {
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + strings.TrimPrefix(key, "/")
}

// Get returns a stored blob, used by tests
func (s *StubAssetStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}

// Len returns the number of stored blobs
func (s *StubAssetStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
