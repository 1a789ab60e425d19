package adp

import (
	"net/http"
	"time"

	"github.com/okian/draftboard/pkg/logger"
)

// Mode selects how the feed body is decoded.
type Mode string

const (
	ModeJSON Mode = "json"
	ModeHTML Mode = "html"
)

// Cache stores raw feed bodies between runs.
type Cache interface {
	Read(name string) ([]byte, bool, error)
	Write(name string, body []byte) error
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the feed root, e.g. https://fantasyfootballcalculator.com/api/v1/adp.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
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

// WithMode selects JSON or HTML decoding.
func WithMode(m Mode) Option {
	return func(c *Client) {
		if m == ModeJSON || m == ModeHTML {
			c.mode = m
		}
	}
}

// WithYear sets the season requested from the feed.
func WithYear(year int) Option {
	return func(c *Client) {
		if year > 0 {
			c.year = year
		}
	}
}

// WithCache reads bodies from cache unless refresh is set, and writes every
// successfully parsed body back.
func WithCache(cache Cache, refresh bool) Option {
	return func(c *Client) {
		c.cache = cache
		c.refresh = refresh
	}
}

// WithMaxBodyBytes caps the feed body. A larger body is an error rather than
// a silently truncated feed.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
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
