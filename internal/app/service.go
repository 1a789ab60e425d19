// Package service builds draft boards: it loads both sources, reconciles
// them and assembles the board for one set of run settings.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/draftboard/internal/adapters/depth"
	"github.com/okian/draftboard/internal/adapters/expert"
	"github.com/okian/draftboard/internal/domain/board"
	"github.com/okian/draftboard/internal/domain/identity"
	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/internal/domain/reconcile"
	"github.com/okian/draftboard/pkg/logger"
	"github.com/okian/draftboard/pkg/metrics"
)

// ADPSource yields the ADP records for a run.
type ADPSource interface {
	Fetch(ctx context.Context, s model.Settings) ([]model.RawRecord, error)
}

// ExpertSource yields the expert records for a run.
type ExpertSource interface {
	Load(ctx context.Context, s model.Settings) (expert.Result, error)
}

// DepthSource yields league depth charts. It is optional and never fails a
// build.
type DepthSource interface {
	Fetch(ctx context.Context) ([]depth.Player, error)
}

// Result is one built board together with what went into it.
type Result struct {
	RunID    string
	Settings model.Settings
	Board    *model.Board
	Summary  reconcile.Summary
	Duration time.Duration

	// Missing lists expert files that were not found. The board is still
	// complete; those positions are ordered by ADP alone.
	Missing *model.MissingOptionalSourceError
}

// Service builds boards from its configured sources.
type Service struct {
	adp        ADPSource
	experts    ExpertSource
	depth      DepthSource
	normalizer *identity.Normalizer
	band       float64
	targets    []string
	newRunID   func() string
	logger     logger.Logger
}

// New constructs a Service. An ADP source is required; without an expert
// source every board is ADP only.
func New(opts ...Option) *Service {
	s := &Service{
		normalizer: identity.New(),
		newRunID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Build produces the board for settings. Settings are checked before any
// source is read.
func (s *Service) Build(ctx context.Context, settings model.Settings) (*Result, error) {
	start := time.Now()
	if err := validateSettings(settings); err != nil {
		metrics.RecordError("build", "settings")
		return nil, err
	}
	if s.adp == nil {
		return nil, ErrNoADPSource
	}

	runID := s.newRunID()
	log := s.logger.With(logger.String("run_id", runID))
	log.Info(ctx, "building draft board",
		logger.String("scoring_format", settings.ScoringFormat.String()),
		logger.Int("player_count", settings.PlayerCount))

	adpRecs, expertRes, players, err := s.load(ctx, settings, log)
	if err != nil {
		log.Error(ctx, "loading sources failed", logger.Error(err))
		return nil, err
	}
	metrics.RecordRecordsLoaded(model.SourceADP.String(), len(adpRecs))
	metrics.RecordRecordsLoaded(model.SourceExpert.String(), len(expertRes.Records))
	if expertRes.Missing != nil {
		log.Warn(ctx, "expert rankings missing, affected positions use ADP order only",
			logger.Any("paths", expertRes.Missing.Paths))
	}

	recOpts := []reconcile.Option{
		reconcile.WithNormalizer(s.normalizer),
		reconcile.WithProximityBand(s.band),
	}
	if len(players) > 0 {
		metrics.RecordRecordsLoaded("depth", len(players))
		recOpts = append(recOpts, reconcile.WithDepthChart(depth.NewTable(players, s.normalizer)))
	}
	entries, err := reconcile.New(settings, recOpts...).Reconcile(adpRecs, expertRes.Records)
	if err != nil {
		metrics.RecordError("reconcile", errorKind(err))
		log.Error(ctx, "reconciling sources failed", logger.Error(err))
		return nil, err
	}
	summary := reconcile.Summarize(entries)
	metrics.UpdateEntries(model.BackingADPAndExpert.String(), summary.Matched)
	metrics.UpdateEntries(model.BackingADPOnly.String(), summary.ADPOnly)
	metrics.UpdateEntries(model.BackingExpertOnly.String(), summary.ExpertOnly)
	metrics.UpdateUnmatchedExpert(summary.ExpertOnly)

	b, err := board.Assemble(entries, settings.PlayerCount, board.WithTargets(s.targetKeys()))
	if err != nil {
		metrics.RecordError("board", errorKind(err))
		log.Error(ctx, "assembling board failed", logger.Error(err))
		return nil, err
	}

	took := time.Since(start)
	metrics.UpdateBoardSize(b.Len(), b.RoundCount())
	metrics.ObserveBuildDuration(float64(took.Milliseconds()))
	metrics.RecordBuild(settings.ScoringFormat.String(), settings.PlayerCount)
	log.Info(ctx, "draft board built",
		logger.Int("players", b.Len()),
		logger.Int("rounds", b.RoundCount()),
		logger.Int("matched", summary.Matched),
		logger.Int("adp_only", summary.ADPOnly),
		logger.Int("expert_only", summary.ExpertOnly),
		logger.Int("with_depth", summary.WithDepth),
		logger.Duration("took", took))

	return &Result{
		RunID:    runID,
		Settings: settings,
		Board:    b,
		Summary:  summary,
		Missing:  expertRes.Missing,
		Duration: took,
	}, nil
}

// load reads all sources concurrently. Every result is complete before load
// returns. A depth chart failure leaves players nil and is only logged.
func (s *Service) load(ctx context.Context, settings model.Settings, log logger.Logger) ([]model.RawRecord, expert.Result, []depth.Player, error) {
	var (
		adpRecs   []model.RawRecord
		expertRes expert.Result
		players   []depth.Player
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, err := s.adp.Fetch(gctx, settings)
		if err != nil {
			return fmt.Errorf("adp source: %w", err)
		}
		adpRecs = recs
		return nil
	})
	if s.experts != nil {
		g.Go(func() error {
			res, err := s.experts.Load(gctx, settings)
			if err != nil {
				return fmt.Errorf("expert source: %w", err)
			}
			expertRes = res
			return nil
		})
	}
	if s.depth != nil {
		g.Go(func() error {
			ps, err := s.depth.Fetch(gctx)
			switch {
			case errors.Is(err, depth.ErrNoAPIKey):
				log.Debug(gctx, "no SportsData.io key, depth charts skipped")
			case err != nil:
				log.Warn(gctx, "depth charts unavailable, board built without them", logger.Error(err))
			default:
				players = ps
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, expert.Result{}, nil, err
	}
	return adpRecs, expertRes, players, nil
}

// targetKeys turns configured player names into keys the assembler matches.
func (s *Service) targetKeys() []string {
	out := make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		t = strings.TrimSpace(t)
		switch {
		case t == "":
		case strings.Contains(t, "|"):
			out = append(out, s.fullKey(t))
		default:
			out = append(out, s.normalizer.NormalizeName(t))
		}
	}
	return out
}

// fullKey normalizes a name|POS[|TEAM] target the way record keys are built.
func (s *Service) fullKey(t string) string {
	name, rest, _ := strings.Cut(t, "|")
	pos, team, _ := strings.Cut(rest, "|")
	key := identity.Key{Name: s.normalizer.NormalizeName(name), Position: model.ParsePosition(pos)}
	if strings.TrimSpace(team) != "" {
		key = key.WithTeam(team)
	}
	return key.String()
}

func validateSettings(s model.Settings) error {
	_, err := model.NewSettings(string(s.ScoringFormat), s.PlayerCount)
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrSourceMismatch):
		return "source_mismatch"
	case errors.Is(err, model.ErrAmbiguousIdentity):
		return "ambiguous_identity"
	case errors.Is(err, model.ErrUnsupportedPlayerCount):
		return "player_count"
	case errors.Is(err, reconcile.ErrEmptyPrimarySource):
		return "empty_adp"
	case errors.Is(err, board.ErrOrderViolation):
		return "order"
	default:
		return "other"
	}
}
