// Package fetch is the download pipeline: an HTTP client plus a worker
// pool that fetches the segments the index layer describes. The byte
// ranges and URL templates come from segment descriptors; nothing here
// inspects segment contents.
package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"streamplane/internal/logger"
)

// Client wraps the HTTP client shared by the download workers.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	userAgent  string
}

// NewClient creates a client with a response-header timeout tuned for
// segment origins.
func NewClient(log logger.Logger, userAgent string) *Client {
	transport := &http.Transport{
		ResponseHeaderTimeout: 3 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{Transport: transport},
		logger:     log,
		userAgent:  userAgent,
	}
}

// HTTPClient returns the underlying http.Client instance.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// UserAgent returns the configured user agent string.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// ResolveURL resolves an expanded media path against a base URL.
func ResolveURL(base, mediaPath string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL %q: %w", base, err)
	}
	ref, err := url.Parse(mediaPath)
	if err != nil {
		return "", fmt.Errorf("failed to parse media path %q: %w", mediaPath, err)
	}
	return baseURL.ResolveReference(ref).String(), nil
}
