package adp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/okian/draftboard/internal/adapters/adp"
	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const feedJSON = `{
  "status": "Success",
  "meta": {"type": "PPR", "teams": 10},
  "players": [
    {"player_id": 2749, "name": "Christian McCaffrey", "position": "RB", "team": "SF", "adp": 1.3, "bye": 9},
    {"player_id": 5011, "name": "Ja'Marr Chase", "position": "WR", "team": "CIN", "adp": 3.1, "bye": 12},
    {"player_id": 120, "name": "San Francisco Defense", "position": "DEF", "team": "SF", "adp": 140.2, "bye": 9},
    {"player_id": 121, "name": "Justin Tucker", "position": "PK", "team": "BAL", "adp": 150.8, "bye": 14}
  ]
}`

const feedHTML = `<html><body>
<table id="nav"><tr><td>Home</td></tr></table>
<table class="adp">
  <thead><tr><th>#</th><th>Pick</th><th>Name</th><th>Pos</th><th>Team</th><th>Bye</th><th>ADP</th></tr></thead>
  <tbody>
    <tr><td>1</td><td>1.01</td><td>Christian McCaffrey</td><td>RB</td><td>SF</td><td>9</td><td>1.3</td></tr>
    <tr><td>2</td><td>1.02</td><td>Ja'Marr Chase</td><td>WR</td><td>CIN</td><td>12</td><td>3.1</td></tr>
    <tr><td colspan="7">Advertisement</td></tr>
  </tbody>
</table>
</body></html>`

type memCache struct {
	data   map[string][]byte
	writes int
}

func (m *memCache) Read(name string) ([]byte, bool, error) {
	b, ok := m.data[name]
	return b, ok, nil
}

func (m *memCache) Write(name string, body []byte) error {
	m.data[name] = body
	m.writes++
	return nil
}

var settings = model.Settings{ScoringFormat: model.FormatPPR, PlayerCount: 10}

func TestClient_URL(t *testing.T) {
	Convey("Given a client", t, func() {
		c := adp.NewClient(adp.WithBaseURL("https://example.test/api/v1/adp/"), adp.WithYear(2025))

		Convey("Then the URL carries format, teams and year", func() {
			So(c.URL(settings), ShouldEqual, "https://example.test/api/v1/adp/ppr?position=all&teams=10&year=2025")
			So(c.CacheName(settings), ShouldEqual, "adp_ppr_10_2025.json")
		})
	})
}

func TestClient_FetchJSON(t *testing.T) {
	Convey("Given a JSON ADP feed", t, func() {
		var hits atomic.Int32
		var gotUA, gotPath, gotTeams string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			gotUA = r.Header.Get("User-Agent")
			gotPath = r.URL.Path
			gotTeams = r.URL.Query().Get("teams")
			_, _ = w.Write([]byte(feedJSON))
		}))
		defer srv.Close()

		c := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithUserAgent("test-agent"))

		Convey("When fetching", func() {
			recs, err := c.Fetch(context.Background(), settings)

			Convey("Then every player becomes an ADP record for the run", func() {
				So(err, ShouldBeNil)
				So(len(recs), ShouldEqual, 4)
				So(recs[0].Source, ShouldEqual, model.SourceADP)
				So(recs[0].RawName, ShouldEqual, "Christian McCaffrey")
				So(recs[0].Position, ShouldEqual, model.PositionRB)
				So(recs[0].RankValue, ShouldEqual, 1.3)
				So(recs[0].Bye, ShouldEqual, 9)
				So(recs[0].PlayerCount, ShouldEqual, 10)
				So(recs[0].ScoringFormat, ShouldEqual, model.FormatNone)
				So(recs[2].Position, ShouldEqual, model.PositionDEF)
				So(recs[3].Position, ShouldEqual, model.PositionK)
			})

			Convey("Then the request was built from the settings", func() {
				So(gotUA, ShouldEqual, "test-agent")
				So(gotPath, ShouldEqual, "/ppr")
				So(gotTeams, ShouldEqual, "10")
			})
		})

		Convey("When a cache is attached", func() {
			cache := &memCache{data: map[string][]byte{}}
			cached := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithCache(cache, false))

			first, err1 := cached.Fetch(context.Background(), settings)
			second, err2 := cached.Fetch(context.Background(), settings)

			Convey("Then the second fetch is served from cache", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(len(second), ShouldEqual, len(first))
				So(second[1].RawName, ShouldEqual, first[1].RawName)
				So(second[1].Origin, ShouldStartWith, "cache:")
				So(hits.Load(), ShouldEqual, 1)
				So(cache.writes, ShouldEqual, 1)
			})

			Convey("And refresh bypasses the cache", func() {
				refreshing := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithCache(cache, true))
				_, err := refreshing.Fetch(context.Background(), settings)
				So(err, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 2)
			})
		})
	})
}

func TestClient_FetchErrors(t *testing.T) {
	Convey("Given a failing feed", t, func() {
		body, code := "", http.StatusOK
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(body))
		}))
		defer srv.Close()
		c := adp.NewClient(adp.WithBaseURL(srv.URL))

		Convey("When the server errors", func() {
			body, code = "boom", http.StatusBadGateway
			_, err := c.Fetch(context.Background(), settings)

			Convey("Then a fetch error is returned", func() {
				So(errors.Is(err, adp.ErrFetch), ShouldBeTrue)
				So(errors.Is(err, adp.ErrFeedStatus), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "502")
			})
		})

		Convey("When the status is not Success", func() {
			body = `{"status":"Error","players":[]}`
			_, err := c.Fetch(context.Background(), settings)

			Convey("Then a status error is returned", func() {
				So(errors.Is(err, adp.ErrFeedStatus), ShouldBeTrue)
			})
		})

		Convey("When the feed has no players", func() {
			body = `{"status":"Success","players":[]}`
			_, err := c.Fetch(context.Background(), settings)

			Convey("Then the empty feed is rejected", func() {
				So(errors.Is(err, adp.ErrEmptyFeed), ShouldBeTrue)
			})
		})

		Convey("When the body is not JSON", func() {
			body = `<html></html>`
			_, err := c.Fetch(context.Background(), settings)

			Convey("Then a parse error is returned", func() {
				So(errors.Is(err, adp.ErrParse), ShouldBeTrue)
			})
		})

		Convey("When the body is larger than the cap", func() {
			body = feedJSON
			_, err := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithMaxBodyBytes(64)).Fetch(context.Background(), settings)

			Convey("Then it is rejected instead of parsed truncated", func() {
				So(errors.Is(err, adp.ErrFetch), ShouldBeTrue)
				So(errors.Is(err, adp.ErrBodyTooLarge), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			body = feedJSON
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := c.Fetch(ctx, settings)

			Convey("Then the fetch fails", func() {
				So(errors.Is(err, adp.ErrFetch), ShouldBeTrue)
			})
		})
	})
}

func TestClient_FetchHTML(t *testing.T) {
	Convey("Given an HTML ADP page", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(feedHTML))
		}))
		defer srv.Close()

		c := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithMode(adp.ModeHTML))
		recs, err := c.Fetch(context.Background(), settings)

		Convey("Then rows of the ADP table become records", func() {
			So(err, ShouldBeNil)
			So(len(recs), ShouldEqual, 2)
			So(recs[1].RawName, ShouldEqual, "Ja'Marr Chase")
			So(recs[1].Position, ShouldEqual, model.PositionWR)
			So(recs[1].Team, ShouldEqual, "CIN")
			So(recs[1].RankValue, ShouldEqual, 3.1)
			So(recs[1].Bye, ShouldEqual, 12)
		})
	})

	Convey("Given an HTML ADP row whose ADP is not a number", t, func() {
		page := `<table>
  <tr><th>Name</th><th>ADP</th></tr>
  <tr><td>Christian McCaffrey</td><td>1.3</td></tr>
  <tr><td>Ja'Marr Chase</td><td>N/A</td></tr>
</table>`
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(page))
		}))
		defer srv.Close()

		_, err := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithMode(adp.ModeHTML)).Fetch(context.Background(), settings)

		Convey("Then the row is reported instead of dropped", func() {
			So(errors.Is(err, adp.ErrParse), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Ja'Marr Chase")
			So(err.Error(), ShouldContainSubstring, "row2")
		})
	})

	Convey("Given an HTML page without an ADP table", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<table><tr><th>Team</th></tr></table>`))
		}))
		defer srv.Close()

		_, err := adp.NewClient(adp.WithBaseURL(srv.URL), adp.WithMode(adp.ModeHTML)).Fetch(context.Background(), settings)

		Convey("Then a parse error is returned", func() {
			So(errors.Is(err, adp.ErrParse), ShouldBeTrue)
		})
	})
}
