package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/okian/draftboard/internal/adapters/depth"
	"github.com/okian/draftboard/internal/adapters/expert"
	service "github.com/okian/draftboard/internal/app"
	"github.com/okian/draftboard/internal/domain/identity"
	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/internal/domain/reconcile"
	"github.com/okian/draftboard/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeADP struct {
	recs  []model.RawRecord
	err   error
	block bool
	calls atomic.Int32
}

func (f *fakeADP) Fetch(ctx context.Context, _ model.Settings) ([]model.RawRecord, error) {
	f.calls.Add(1)
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.recs, f.err
}

type fakeExperts struct {
	res expert.Result
	err error
}

func (f *fakeExperts) Load(context.Context, model.Settings) (expert.Result, error) {
	return f.res, f.err
}

type fakeDepth struct {
	players []depth.Player
	err     error
	calls   atomic.Int32
}

func (f *fakeDepth) Fetch(context.Context) ([]depth.Player, error) {
	f.calls.Add(1)
	return f.players, f.err
}

func slot(order int) *int { return &order }

var settings = model.Settings{ScoringFormat: model.FormatPPR, PlayerCount: 10}

func adpFeed(n int) []model.RawRecord {
	named := []struct {
		name string
		pos  model.Position
		team string
	}{
		{"Christian McCaffrey", model.PositionRB, "SF"},
		{"Ja'Marr Chase", model.PositionWR, "CIN"},
		{"CeeDee Lamb", model.PositionWR, "DAL"},
		{"Breece Hall", model.PositionRB, "NYJ"},
	}
	out := make([]model.RawRecord, 0, n)
	for i := 0; i < n; i++ {
		r := model.RawRecord{
			Source:      model.SourceADP,
			RawName:     fmt.Sprintf("Depth Player %d", i),
			Position:    model.PositionTE,
			RankValue:   float64(i + 1),
			PlayerCount: 10,
		}
		if i < len(named) {
			r.RawName, r.Position, r.Team = named[i].name, named[i].pos, named[i].team
		}
		out = append(out, r)
	}
	return out
}

func expertRec(name string, pos model.Position, rank float64) model.RawRecord {
	return model.RawRecord{
		Source:        model.SourceExpert,
		RawName:       name,
		Position:      pos,
		RankValue:     rank,
		ScoringFormat: model.FormatPPR,
	}
}

func TestService_Settings(t *testing.T) {
	Convey("Given a service with an ADP source", t, func() {
		adp := &fakeADP{recs: adpFeed(5)}
		svc := service.New(service.WithADPSource(adp))

		Convey("When the player count is unsupported", func() {
			_, err := svc.Build(context.Background(), model.Settings{ScoringFormat: model.FormatPPR, PlayerCount: 9})

			Convey("Then it fails before any source is read", func() {
				var pcErr *model.UnsupportedPlayerCountError
				So(errors.As(err, &pcErr), ShouldBeTrue)
				So(pcErr.Value, ShouldEqual, 9)
				So(adp.calls.Load(), ShouldEqual, 0)
			})
		})

		Convey("When the scoring format is unknown", func() {
			_, err := svc.Build(context.Background(), model.Settings{ScoringFormat: "superflex", PlayerCount: 10})

			Convey("Then it fails before any source is read", func() {
				So(errors.Is(err, model.ErrUnsupportedScoringFormat), ShouldBeTrue)
				So(adp.calls.Load(), ShouldEqual, 0)
			})
		})
	})

	Convey("Given a service without an ADP source", t, func() {
		_, err := service.New().Build(context.Background(), settings)

		Convey("Then Build refuses to run", func() {
			So(errors.Is(err, service.ErrNoADPSource), ShouldBeTrue)
		})
	})
}

func TestService_Build(t *testing.T) {
	Convey("Given ADP and expert sources", t, func() {
		adp := &fakeADP{recs: adpFeed(23)}
		experts := &fakeExperts{res: expert.Result{Records: []model.RawRecord{
			expertRec("Ja'Marr Chase", model.PositionWR, 1),
			expertRec("CeeDee Lamb", model.PositionWR, 2),
			expertRec("Rookie Sleeper", model.PositionRB, 40),
		}}}
		svc := service.New(
			service.WithADPSource(adp),
			service.WithExpertSource(experts),
			service.WithTargets([]string{"Ja'Marr Chase", "", "Rookie Sleeper Jr.|rb", "CeeDee Lamb|WR"}),
			service.WithRunIDGenerator(func() string { return "run-42" }),
		)

		res, err := svc.Build(context.Background(), settings)

		Convey("Then a complete board is built", func() {
			So(err, ShouldBeNil)
			So(res.RunID, ShouldEqual, "run-42")
			So(res.Settings, ShouldResemble, settings)
			So(res.Missing, ShouldBeNil)
			So(res.Board.Len(), ShouldEqual, 24)
			So(res.Board.RoundCount(), ShouldEqual, 3)
			So(res.Summary, ShouldResemble, reconcile.Summary{Total: 24, Matched: 2, ADPOnly: 21, ExpertOnly: 1})
		})

		Convey("Then expert-only players come last", func() {
			last := res.Board.Slots[res.Board.Len()-1]
			So(last.Entry.Name, ShouldEqual, "Rookie Sleeper")
			So(last.Entry.Backing, ShouldEqual, model.BackingExpertOnly)
		})

		Convey("Then targets are flagged by name and by normalized key", func() {
			flagged := []string{}
			for _, s := range res.Board.Slots {
				if s.Target {
					flagged = append(flagged, s.Entry.Name)
				}
			}
			So(flagged, ShouldResemble, []string{"Ja'Marr Chase", "CeeDee Lamb", "Rookie Sleeper"})
		})

		Convey("Then building again gives the same board", func() {
			again, err := svc.Build(context.Background(), settings)
			So(err, ShouldBeNil)
			first, _ := json.Marshal(res.Board)
			second, _ := json.Marshal(again.Board)
			So(string(second), ShouldEqual, string(first))
		})
	})

	Convey("Given expert files are missing", t, func() {
		missing := &model.MissingOptionalSourceError{Paths: []string{"ffrd/ppr/qb.csv"}}
		svc := service.New(
			service.WithADPSource(&fakeADP{recs: adpFeed(4)}),
			service.WithExpertSource(&fakeExperts{res: expert.Result{Missing: missing}}),
		)

		res, err := svc.Build(context.Background(), settings)

		Convey("Then the board falls back to ADP order", func() {
			So(err, ShouldBeNil)
			So(res.Missing, ShouldEqual, missing)
			So(res.RunID, ShouldNotBeEmpty)
			names := []string{}
			for _, s := range res.Board.Slots {
				names = append(names, s.Entry.Name)
				So(s.Entry.Backing, ShouldEqual, model.BackingADPOnly)
			}
			So(names, ShouldResemble, []string{"Christian McCaffrey", "Ja'Marr Chase", "CeeDee Lamb", "Breece Hall"})
		})
	})

	Convey("Given a custom normalizer with aliases", t, func() {
		n := identity.New(identity.WithAliases(map[string]string{"Hollywood Chase": "Ja'Marr Chase"}))
		svc := service.New(
			service.WithADPSource(&fakeADP{recs: adpFeed(4)}),
			service.WithExpertSource(&fakeExperts{res: expert.Result{Records: []model.RawRecord{
				expertRec("Hollywood Chase", model.PositionWR, 1),
			}}}),
			service.WithNormalizer(n),
		)

		res, err := svc.Build(context.Background(), settings)

		Convey("Then aliased names merge", func() {
			So(err, ShouldBeNil)
			So(res.Summary.Matched, ShouldEqual, 1)
			So(res.Summary.ExpertOnly, ShouldEqual, 0)
		})
	})

	Convey("Given depth charts", t, func() {
		players := []depth.Player{
			{Name: "Christian McCaffrey", Position: "RB", Team: "SF", DepthOrder: slot(1), DepthDisplayOrder: slot(1)},
			{Name: "CeeDee Lamb", Position: "WR", Team: "DAL", DepthOrder: slot(1), DepthDisplayOrder: slot(2)},
			{Name: "Breece Hall", Position: "RB", Team: "NYJ", DepthOrder: slot(2), DepthDisplayOrder: slot(2)},
		}

		Convey("When the source answers", func() {
			src := &fakeDepth{players: players}
			res, err := service.New(
				service.WithADPSource(&fakeADP{recs: adpFeed(4)}),
				service.WithDepthSource(src),
			).Build(context.Background(), settings)

			Convey("Then known players carry their slot", func() {
				So(err, ShouldBeNil)
				So(src.calls.Load(), ShouldEqual, 1)
				So(res.Summary.WithDepth, ShouldEqual, 3)
				byName := map[string]*model.Depth{}
				for _, s := range res.Board.Slots {
					byName[s.Entry.Name] = s.Entry.Depth
				}
				So(byName["Christian McCaffrey"], ShouldResemble, &model.Depth{Order: 1, DisplayOrder: 1})
				So(byName["Breece Hall"], ShouldResemble, &model.Depth{Order: 2, DisplayOrder: 2})
				So(byName["Ja'Marr Chase"], ShouldBeNil)
			})
		})

		for name, fetchErr := range map[string]error{
			"has no key": depth.ErrNoAPIKey,
			"is down":    fmt.Errorf("%w: GET players: 503", depth.ErrFetch),
		} {
			Convey("When the source "+name, func() {
				res, err := service.New(
					service.WithADPSource(&fakeADP{recs: adpFeed(4)}),
					service.WithDepthSource(&fakeDepth{err: fetchErr}),
				).Build(context.Background(), settings)

				Convey("Then the board is built without depth", func() {
					So(err, ShouldBeNil)
					So(res.Board.Len(), ShouldEqual, 4)
					So(res.Summary.WithDepth, ShouldEqual, 0)
				})
			})
		}
	})

	Convey("Given a proximity band", t, func() {
		svc := service.New(
			service.WithADPSource(&fakeADP{recs: adpFeed(4)}),
			service.WithExpertSource(&fakeExperts{res: expert.Result{Records: []model.RawRecord{
				expertRec("Christian McCaffrey", model.PositionRB, 5),
				expertRec("Ja'Marr Chase", model.PositionWR, 1),
			}}}),
			service.WithProximityBand(1),
		)

		res, err := svc.Build(context.Background(), settings)

		Convey("Then expert rank reorders players within the band", func() {
			So(err, ShouldBeNil)
			So(res.Board.Slots[0].Entry.Name, ShouldEqual, "Ja'Marr Chase")
			So(res.Board.Slots[1].Entry.Name, ShouldEqual, "Christian McCaffrey")
		})
	})
}

func TestService_Errors(t *testing.T) {
	Convey("Given a failing ADP source", t, func() {
		feedErr := errors.New("feed down")
		svc := service.New(service.WithADPSource(&fakeADP{err: feedErr}))

		_, err := svc.Build(context.Background(), settings)

		Convey("Then the error is returned wrapped", func() {
			So(errors.Is(err, feedErr), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "adp source")
		})
	})

	Convey("Given a failing expert source", t, func() {
		badRow := errors.New("bad row")
		adp := &fakeADP{block: true}
		svc := service.New(
			service.WithADPSource(adp),
			service.WithExpertSource(&fakeExperts{err: badRow}),
		)

		_, err := svc.Build(context.Background(), settings)

		Convey("Then the ADP fetch is cancelled and the expert error wins", func() {
			So(errors.Is(err, badRow), ShouldBeTrue)
			So(adp.calls.Load(), ShouldEqual, 1)
		})
	})

	Convey("Given ADP records for another league size", t, func() {
		recs := adpFeed(3)
		recs[1].PlayerCount = 12
		svc := service.New(service.WithADPSource(&fakeADP{recs: recs}))

		_, err := svc.Build(context.Background(), settings)

		Convey("Then a source mismatch is reported", func() {
			var mm *model.SourceMismatchError
			So(errors.As(err, &mm), ShouldBeTrue)
			So(mm.Record.RawName, ShouldEqual, "Ja'Marr Chase")
		})
	})

	Convey("Given two indistinguishable ADP players", t, func() {
		recs := adpFeed(3)
		recs[2].RawName, recs[2].Position, recs[2].Team = "Ja'Marr Chase", model.PositionWR, "CIN"
		svc := service.New(service.WithADPSource(&fakeADP{recs: recs}))

		_, err := svc.Build(context.Background(), settings)

		Convey("Then the ambiguity is surfaced", func() {
			So(errors.Is(err, model.ErrAmbiguousIdentity), ShouldBeTrue)
		})
	})

	Convey("Given an empty ADP feed", t, func() {
		svc := service.New(service.WithADPSource(&fakeADP{}))

		_, err := svc.Build(context.Background(), settings)

		Convey("Then the build fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
