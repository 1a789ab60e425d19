package depth

import (
	"net/http"
	"time"

	"github.com/okian/draftboard/pkg/logger"
)

// Cache stores raw player bodies between runs.
type Cache interface {
	Read(name string) ([]byte, bool, error)
	Write(name string, body []byte) error
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the API root, e.g. https://api.sportsdata.io.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithAPIKey sets the subscription key sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithCache reads the player list from cache unless refresh is set.
func WithCache(cache Cache, refresh bool) Option {
	return func(c *Client) {
		c.cache = cache
		c.refresh = refresh
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
