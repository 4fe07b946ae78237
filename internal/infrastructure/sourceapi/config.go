package sourceapi

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the credentials and tuning knobs for the source
// platform API
type Config struct {
	// ShopDomain is the source shop, e.g. "example.myshop.com"
	ShopDomain string
	// AccessToken is the static credential attached to every call
	AccessToken string
	// APIVersion selects the dated API version path segment
	APIVersion string
	// PageSize bounds the number of items requested per page (max 250)
	PageSize int
	// Timeout bounds each HTTP request
	Timeout time.Duration
	// MinInterval is the minimum delay between consecutive call starts
	MinInterval time.Duration
}

// Validate checks that the configuration is complete
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("sourceapi: configuration is required")
	}
	if c.ShopDomain == "" {
		return errors.New("sourceapi: shop domain is required")
	}
	if strings.Contains(c.ShopDomain, "/") {
		return fmt.Errorf("sourceapi: shop domain must be a bare host, got %q", c.ShopDomain)
	}
	if c.AccessToken == "" {
		return errors.New("sourceapi: access token is required")
	}
	if c.PageSize < 1 || c.PageSize > 250 {
		return fmt.Errorf("sourceapi: page size must be between 1 and 250, got %d", c.PageSize)
	}
	return nil
}

// applyDefaults fills in defaults for optional settings
func (c *Config) applyDefaults() {
	if c.APIVersion == "" {
		c.APIVersion = "2024-07"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MinInterval == 0 {
		c.MinInterval = 500 * time.Millisecond
	}
}
