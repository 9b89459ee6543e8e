package backend

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// maxResponseSize is the maximum allowed response size from the storefront backend (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Errors for backend configuration
var (
	ErrConfigMissingBaseURL = errors.New("backend: base URL is required")
	ErrConfigInvalidBaseURL = errors.New("backend: base URL must be an absolute http(s) URL")
)

// Config holds configuration for the storefront REST backend
type Config struct {
	// BaseURL is the API root, e.g. https://shop.example.com/api
	BaseURL string
	// ServiceToken is sent when the request carries no staff token
	ServiceToken string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// MaxResponseSize caps the bytes read from one response
	MaxResponseSize int64
}

// Validate validates the configuration and fills defaults
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = maxResponseSize
	}
	return nil
}
