// Package adp fetches the Average Draft Position feed and adapts it into
// ranking records.
package adp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/pkg/logger"
	"github.com/okian/draftboard/pkg/metrics"
)

// Default client configuration constants.
const (
	DefaultBaseURL   = "https://fantasyfootballcalculator.com/api/v1/adp"
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "draftboard/1.0"
	defaultMaxBody   = 8 << 20
	statusSuccess    = "Success"
)

// Client fetches one ADP feed per run.
type Client struct {
	http      *http.Client
	timeout   time.Duration
	baseURL   string
	userAgent string
	mode      Mode
	year      int
	cache     Cache
	refresh   bool
	maxBody   int64
	logger    logger.Logger
}

// NewClient creates a client with defaults for the current season.
func NewClient(opts ...Option) *Client {
	c := &Client{
		timeout:   defaultTimeout,
		baseURL:   DefaultBaseURL,
		userAgent: defaultUserAgent,
		mode:      ModeJSON,
		year:      time.Now().Year(),
		maxBody:   defaultMaxBody,
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

// URL returns the feed address for the run settings.
func (c *Client) URL(s model.Settings) string {
	q := url.Values{}
	q.Set("position", "all")
	q.Set("teams", strconv.Itoa(s.PlayerCount))
	q.Set("year", strconv.Itoa(c.year))
	return fmt.Sprintf("%s/%s?%s", strings.TrimRight(c.baseURL, "/"), s.ScoringFormat, q.Encode())
}

// CacheName is the cache entry name for the run settings.
func (c *Client) CacheName(s model.Settings) string {
	return fmt.Sprintf("adp_%s_%d_%d.%s", s.ScoringFormat, s.PlayerCount, c.year, c.mode)
}

// Fetch returns the ADP records for the run. The result is never empty: an
// empty feed is an error so the board cannot be built from partial data.
func (c *Client) Fetch(ctx context.Context, s model.Settings) ([]model.RawRecord, error) {
	name := c.CacheName(s)
	if c.cache != nil && !c.refresh {
		body, ok, err := c.cache.Read(name)
		if err != nil {
			c.logger.Warn(ctx, "ignoring unreadable ADP cache", logger.String("name", name), logger.Error(err))
		}
		if ok {
			recs, err := c.decode(body, s, "cache:"+name)
			if err == nil {
				metrics.RecordCacheHit("adp")
				c.logger.Info(ctx, "loaded ADP feed from cache", logger.String("name", name), logger.Int("players", len(recs)))
				return recs, nil
			}
			c.logger.Warn(ctx, "discarding invalid ADP cache entry", logger.String("name", name), logger.Error(err))
		}
	}
	metrics.RecordCacheMiss("adp")

	u := c.URL(s)
	start := time.Now()
	body, err := c.get(ctx, u)
	metrics.ObserveFetchLatency("adp", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordError("adp", "fetch")
		return nil, err
	}

	recs, err := c.decode(body, s, u)
	if err != nil {
		metrics.RecordError("adp", "parse")
		return nil, err
	}
	c.logger.Info(ctx, "fetched ADP feed", logger.String("url", u), logger.Int("players", len(recs)))

	if c.cache != nil {
		if err := c.cache.Write(name, body); err != nil {
			c.logger.Warn(ctx, "could not write ADP cache", logger.String("name", name), logger.Error(err))
		}
	}
	return recs, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.mode == ModeJSON {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", ErrFetch, u, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrFetch, u, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %w: %s is larger than %d bytes", ErrFetch, ErrBodyTooLarge, u, c.maxBody)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w: GET %s: %d %s", ErrFetch, ErrFeedStatus, u, resp.StatusCode, snippet(body))
	}
	return body, nil
}

func (c *Client) decode(body []byte, s model.Settings, origin string) ([]model.RawRecord, error) {
	var (
		recs []model.RawRecord
		err  error
	)
	switch c.mode {
	case ModeHTML:
		recs, err = decodeHTML(body, s, origin)
	default:
		recs, err = decodeJSON(body, s, origin)
	}
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFeed, origin)
	}
	return recs, nil
}

type feed struct {
	Status  string       `json:"status"`
	Players []feedPlayer `json:"players"`
}

type feedPlayer struct {
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Team     string  `json:"team"`
	ADP      float64 `json:"adp"`
	Bye      int     `json:"bye"`
}

func decodeJSON(body []byte, s model.Settings, origin string) ([]model.RawRecord, error) {
	var f feed
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, origin, err)
	}
	if f.Status != statusSuccess {
		return nil, fmt.Errorf("%w: %s: status %q", ErrFeedStatus, origin, f.Status)
	}
	recs := make([]model.RawRecord, 0, len(f.Players))
	for i, p := range f.Players {
		recs = append(recs, model.RawRecord{
			Source:      model.SourceADP,
			RawName:     p.Name,
			Position:    model.ParsePosition(p.Position),
			Team:        p.Team,
			RankValue:   p.ADP,
			PlayerCount: s.PlayerCount,
			Bye:         p.Bye,
			Origin:      fmt.Sprintf("%s#%d", origin, i+1),
		})
	}
	return recs, nil
}

// decodeHTML reads the first table whose header has a name and an ADP column.
func decodeHTML(body []byte, s model.Settings, origin string) ([]model.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, origin, err)
	}

	var (
		recs   []model.RawRecord
		found  bool
		rowErr error
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols := map[string]int{}
		table.Find("tr").First().Find("th, td").Each(func(j int, cell *goquery.Selection) {
			if col := headerColumn(cell.Text()); col != "" {
				if _, dup := cols[col]; !dup {
					cols[col] = j
				}
			}
		})
		nameCol, hasName := cols["name"]
		adpCol, hasADP := cols["adp"]
		if !hasName || !hasADP {
			return true
		}
		found = true

		table.Find("tr").Slice(1, goquery.ToEnd).EachWithBreak(func(rowIdx int, row *goquery.Selection) bool {
			cells := row.Find("td")
			text := func(col string) string {
				j, ok := cols[col]
				if !ok || j >= cells.Length() {
					return ""
				}
				return strings.TrimSpace(cells.Eq(j).Text())
			}
			// Banner and spacer rows span the table and carry no player.
			if nameCol >= cells.Length() || adpCol >= cells.Length() || text("name") == "" {
				return true
			}
			v, err := strconv.ParseFloat(text("adp"), 64)
			if err != nil {
				rowErr = fmt.Errorf("%w: %s#row%d: %q has ADP %q", ErrParse, origin, rowIdx+1, text("name"), text("adp"))
				return false
			}
			bye, _ := strconv.Atoi(text("bye"))
			recs = append(recs, model.RawRecord{
				Source:      model.SourceADP,
				RawName:     text("name"),
				Position:    model.ParsePosition(text("position")),
				Team:        text("team"),
				RankValue:   v,
				PlayerCount: s.PlayerCount,
				Bye:         bye,
				Origin:      fmt.Sprintf("%s#row%d", origin, rowIdx+1),
			})
			return true
		})
		return false
	})
	if rowErr != nil {
		return nil, rowErr
	}
	if !found {
		return nil, fmt.Errorf("%w: %s: no table with Name and ADP columns", ErrParse, origin)
	}
	return recs, nil
}

func headerColumn(text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "name", "player":
		return "name"
	case "adp", "avg", "avg pick", "overall":
		return "adp"
	case "pos", "position":
		return "position"
	case "team", "tm":
		return "team"
	case "bye", "bye week":
		return "bye"
	}
	return ""
}

func snippet(b []byte) string {
	const n = 200
	s := strings.TrimSpace(string(b))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}
