package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/draftboard/internal/adapters/adp"
	"github.com/okian/draftboard/internal/adapters/cache"
	"github.com/okian/draftboard/internal/adapters/depth"
	"github.com/okian/draftboard/internal/adapters/expert"
	"github.com/okian/draftboard/internal/adapters/render"
	service "github.com/okian/draftboard/internal/app"
	"github.com/okian/draftboard/internal/config"
	"github.com/okian/draftboard/internal/domain/identity"
	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/pkg/logger"
	"github.com/okian/draftboard/pkg/metrics"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// Cache name prefixes, one per source.
const (
	adpCachePrefix   = "adp_"
	depthCachePrefix = "sportsdata_"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	settings        model.Settings
	clearCache      bool
	clearDepthCache bool
	format          render.Format
	out             string
	targets         []string
	color           bool
	runID           string
}

// parseFlags validates everything the run needs from the command line.
// Nothing is read from disk or network here.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("draftboard", flag.ContinueOnError)
	fs.SetOutput(stderr)

	scoring := fs.String("scoring-format", "", "scoring format: ppr, half-ppr or standard (required)")
	players := fs.String("player-count", "", "teams in the league: 8, 10, 12 or 14 (required)")
	clearCache := fs.Bool("clear-cache", false, "drop cached ADP feeds and fetch again")
	clearDepthCache := fs.Bool("clear-depth-cache", false, "drop cached SportsData.io depth charts and fetch again")
	output := fs.String("output", string(render.FormatTable), "output format: table, text, json or positions")
	out := fs.String("out", "", "write the board to this file instead of stdout")
	targets := fs.String("targets", "", "comma-separated players to highlight, added to configured targets")
	color := fs.Bool("color", false, "colorize table output")
	runID := fs.String("run-id", "", "use this run id instead of a random one, for byte-identical JSON output")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if *scoring == "" || *players == "" {
		return options{}, errors.New("-scoring-format and -player-count are required")
	}

	n, err := model.ParsePlayerCount(*players)
	if err != nil {
		return options{}, err
	}
	settings, err := model.NewSettings(*scoring, n)
	if err != nil {
		return options{}, err
	}
	f, err := render.ParseFormat(*output)
	if err != nil {
		return options{}, err
	}

	return options{
		settings:        settings,
		clearCache:      *clearCache,
		clearDepthCache: *clearDepthCache,
		format:          f,
		out:             *out,
		targets:         config.SplitList(*targets),
		color:           *color,
		runID:           strings.TrimSpace(*runID),
	}, nil
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, "draftboard:", err)
		return exitUsage
	}

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitUsage
	}

	if err := logger.InitWithWriter(stderr, cfg.LogFormat == "json"); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailure
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Named("cli")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := wire(ctx, cfg, opts, log)
	if err != nil {
		log.Error(ctx, "setup failed", logger.Error(err))
		return exitFailure
	}

	res, err := svc.Build(ctx, opts.settings)
	if err != nil {
		log.Error(ctx, "build failed", logger.Error(err))
		fmt.Fprintln(stderr, "draftboard:", err)
		writeMetrics(ctx, cfg, log)
		return exitFailure
	}

	if err := emit(res, opts, stdout); err != nil {
		log.Error(ctx, "writing board failed", logger.Error(err))
		return exitFailure
	}
	writeMetrics(ctx, cfg, log)
	return exitOK
}

// wire builds the service from configuration and flags.
func wire(ctx context.Context, cfg *config.Config, opts options, log logger.Logger) (*service.Service, error) {
	var normOpts []identity.Option
	if cfg.AliasFile != "" {
		aliases, err := identity.LoadAliasFile(cfg.AliasFile)
		if err != nil {
			return nil, err
		}
		normOpts = append(normOpts, identity.WithAliases(aliases))
		log.Debug(ctx, "aliases loaded", logger.String("file", cfg.AliasFile), logger.Int("count", len(aliases)))
	}
	normalizer := identity.New(normOpts...)

	adpOpts := []adp.Option{
		adp.WithBaseURL(cfg.ADPBaseURL),
		adp.WithMode(adp.Mode(cfg.ADPMode)),
		adp.WithYear(cfg.Year),
		adp.WithTimeout(cfg.HTTPTimeout()),
		adp.WithUserAgent(cfg.UserAgent),
		adp.WithLogger(logger.Named("adp")),
	}
	depthOpts := []depth.Option{
		depth.WithBaseURL(cfg.SportsDataBaseURL),
		depth.WithAPIKey(cfg.SportsDataKey),
		depth.WithTimeout(cfg.HTTPTimeout()),
		depth.WithUserAgent(cfg.UserAgent),
		depth.WithLogger(logger.Named("depth")),
	}
	if cfg.UseCache {
		store := cache.NewStore(cfg.CacheDir, cache.WithMaxAge(cfg.CacheMaxAge()), cache.WithPretty(true))
		if err := clearCache(ctx, store, opts.clearCache, adpCachePrefix, log); err != nil {
			return nil, err
		}
		if err := clearCache(ctx, store, opts.clearDepthCache, depthCachePrefix, log); err != nil {
			return nil, err
		}
		adpOpts = append(adpOpts, adp.WithCache(store, opts.clearCache))
		depthOpts = append(depthOpts, depth.WithCache(store, opts.clearDepthCache))
	}

	experts := expert.NewLoader(cfg.RankingsDir, expert.WithLogger(logger.Named("expert")))

	svcOpts := []service.Option{
		service.WithADPSource(adp.NewClient(adpOpts...)),
		service.WithExpertSource(experts),
		service.WithDepthSource(depth.NewClient(depthOpts...)),
		service.WithNormalizer(normalizer),
		service.WithProximityBand(cfg.ProximityBand),
		service.WithTargets(append(append([]string{}, cfg.Targets...), opts.targets...)),
		service.WithLogger(logger.Named("service")),
	}
	if opts.runID != "" {
		runID := opts.runID
		svcOpts = append(svcOpts, service.WithRunIDGenerator(func() string { return runID }))
	}
	return service.New(svcOpts...), nil
}

func clearCache(ctx context.Context, store *cache.Store, enabled bool, prefix string, log logger.Logger) error {
	if !enabled {
		return nil
	}
	n, err := store.Clear(prefix)
	if err != nil {
		return err
	}
	log.Info(ctx, "cache cleared", logger.String("prefix", prefix), logger.Int("files", n))
	return nil
}

// emit renders the board to stdout or to the -out file.
func emit(res *service.Result, opts options, stdout io.Writer) (err error) {
	w := stdout
	if opts.out != "" {
		f, cerr := os.Create(opts.out)
		if cerr != nil {
			return fmt.Errorf("create %s: %w", opts.out, cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}
	r := render.New(render.WithColor(opts.color))
	return r.Render(w, opts.format, res.Board, render.Meta{RunID: res.RunID, Settings: res.Settings})
}

func writeMetrics(ctx context.Context, cfg *config.Config, log logger.Logger) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		log.Warn(ctx, "writing metrics failed", logger.Error(err))
	}
}
