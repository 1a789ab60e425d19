// Package depth fetches NFL depth charts from SportsData.io and indexes them
// by player identity.
package depth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/draftboard/pkg/logger"
	"github.com/okian/draftboard/pkg/metrics"
)

// Default client configuration constants.
const (
	DefaultBaseURL   = "https://api.sportsdata.io"
	CacheName        = "sportsdata_players.json"
	playersPath      = "/v3/nfl/scores/json/Players"
	keyHeader        = "Ocp-Apim-Subscription-Key"
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "draftboard/1.0"
	maxBody          = 32 << 20
)

// Player is the subset of a SportsData.io player record the board uses.
type Player struct {
	Name              string `json:"Name"`
	Position          string `json:"Position"`
	Team              string `json:"Team"`
	DepthOrder        *int   `json:"DepthOrder"`
	DepthDisplayOrder *int   `json:"DepthDisplayOrder"`
}

// Client fetches the league-wide player list.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	baseURL   string
	apiKey    string
	userAgent string
	cache     Cache
	refresh   bool
	logger    logger.Logger
}

// NewClient creates a client. Without an API key only a cached list can be
// served.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   defaultTimeout,
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	if c.logger == nil {
		c.logger = logger.Get()
	}
	return c
}

// URL returns the player list address.
func (c *Client) URL() string {
	return strings.TrimRight(c.baseURL, "/") + playersPath
}

// Fetch returns every player SportsData.io lists. It fails with ErrNoAPIKey
// when nothing is cached and no key is configured, without touching the
// network.
func (c *Client) Fetch(ctx context.Context) ([]Player, error) {
	if c.cache != nil && !c.refresh {
		body, ok, err := c.cache.Read(CacheName)
		if err != nil {
			c.logger.Warn(ctx, "ignoring unreadable depth chart cache", logger.Error(err))
		}
		if ok {
			players, err := decode(body, "cache:"+CacheName)
			if err == nil {
				metrics.RecordCacheHit("depth")
				c.logger.Info(ctx, "loaded depth charts from cache", logger.Int("players", len(players)))
				return players, nil
			}
			c.logger.Warn(ctx, "discarding invalid depth chart cache entry", logger.Error(err))
		}
	}
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	metrics.RecordCacheMiss("depth")

	u := c.URL()
	start := time.Now()
	body, err := c.get(ctx, u)
	metrics.ObserveFetchLatency("depth", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordError("depth", "fetch")
		return nil, err
	}
	players, err := decode(body, u)
	if err != nil {
		metrics.RecordError("depth", "parse")
		return nil, err
	}
	c.logger.Info(ctx, "fetched depth charts", logger.String("url", u), logger.Int("players", len(players)))

	if c.cache != nil {
		if err := c.cache.Write(CacheName, body); err != nil {
			c.logger.Warn(ctx, "could not write depth chart cache", logger.Error(err))
		}
	}
	return players, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(keyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrFetch, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFetch, u, err)
	}
	if len(body) > maxBody {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrFetch, u, maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// The key travels in a header, so the URL is safe to report.
		return nil, fmt.Errorf("%w: GET %s: %d", ErrFetch, u, resp.StatusCode)
	}
	return body, nil
}

func decode(body []byte, origin string) ([]Player, error) {
	var players []Player
	if err := json.Unmarshal(body, &players); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, origin, err)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: %s: no players", ErrParse, origin)
	}
	return players, nil
}
