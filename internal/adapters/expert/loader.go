// Package expert reads per-position expert ranking files.
//
// Files live at {dir}/{format}/{qb,rb,wr,te}.csv. The header must contain Name
// and Rank; Team is optional and any other numeric column is kept as an
// individual analyst rank.
package expert

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/pkg/logger"
	"github.com/okian/draftboard/pkg/metrics"
)

// DefaultPositions are the positions with expert ranking files.
var DefaultPositions = []model.Position{ //nolint:gochecknoglobals // read-only default
	model.PositionQB, model.PositionRB, model.PositionWR, model.PositionTE,
}

// Result is the outcome of one load. Missing is set when some files did not
// exist; it never stops the build.
type Result struct {
	Records []model.RawRecord
	Missing *model.MissingOptionalSourceError
}

// Loader reads expert ranking files from a directory.
type Loader struct {
	dir       string
	positions []model.Position
	logger    logger.Logger
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, opts ...Option) *Loader {
	l := &Loader{dir: dir, positions: DefaultPositions}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Get()
	}
	return l
}

// Path returns the file for one position under the run's scoring format.
func (l *Loader) Path(format model.ScoringFormat, pos model.Position) string {
	return filepath.Join(l.dir, format.String(), strings.ToLower(string(pos))+".csv")
}

// Load reads every position file for the run settings.
func (l *Loader) Load(ctx context.Context, s model.Settings) (Result, error) {
	var (
		res     Result
		missing []string
	)
	for _, pos := range l.positions {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		path := l.Path(s.ScoringFormat, pos)
		recs, err := readFile(path, pos, s.ScoringFormat)
		if errors.Is(err, fs.ErrNotExist) {
			missing = append(missing, path)
			continue
		}
		if err != nil {
			metrics.RecordError("expert", "read")
			return Result{}, err
		}
		l.logger.Debug(ctx, "loaded expert rankings", logger.String("path", path), logger.Int("records", len(recs)))
		res.Records = append(res.Records, recs...)
	}
	if len(missing) > 0 {
		res.Missing = &model.MissingOptionalSourceError{Paths: missing}
		metrics.RecordMissingOptional(len(missing))
	}
	return res, nil
}

type columns struct {
	name     int
	rank     int
	team     int
	analysts map[string]int
}

func readFile(path string, pos model.Position, format model.ScoringFormat) ([]model.RawRecord, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from configured dir and fixed file names
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer func() { _ = f.Close() }()
	return parse(f, path, pos, format)
}

func parse(r io.Reader, path string, pos model.Position, format model.ScoringFormat) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadHeader, path, err)
	}
	cols, err := headerColumns(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBadHeader, path, err)
	}

	var recs []model.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return recs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrBadRow, path, err)
		}
		line, _ := cr.FieldPos(0)
		at := fmt.Sprintf("%s:%d", path, line)

		name := field(row, cols.name)
		if name == "" {
			return nil, fmt.Errorf("%w: %s: empty Name", ErrBadRow, at)
		}
		rank, err := strconv.ParseFloat(field(row, cols.rank), 64)
		if err != nil || rank <= 0 {
			return nil, fmt.Errorf("%w: %s: Rank %q for %q is not a positive number", ErrBadRow, at, field(row, cols.rank), name)
		}

		var analysts map[string]float64
		for label, j := range cols.analysts {
			v, err := strconv.ParseFloat(field(row, j), 64)
			if err != nil {
				continue
			}
			if analysts == nil {
				analysts = make(map[string]float64, len(cols.analysts))
			}
			analysts[label] = v
		}

		recs = append(recs, model.RawRecord{
			Source:        model.SourceExpert,
			RawName:       name,
			Position:      pos,
			Team:          field(row, cols.team),
			RankValue:     rank,
			ScoringFormat: format,
			Analysts:      analysts,
			Origin:        at,
		})
	}
}

func headerColumns(header []string) (columns, error) {
	cols := columns{name: -1, rank: -1, team: -1, analysts: map[string]int{}}
	for j, h := range header {
		label := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch strings.ToLower(label) {
		case "name", "player":
			cols.name = j
		case "rank", "rk":
			cols.rank = j
		case "team", "tm":
			cols.team = j
		case "", "pos", "position", "bye":
		default:
			cols.analysts[label] = j
		}
	}
	if cols.name < 0 || cols.rank < 0 {
		return cols, fmt.Errorf("need Name and Rank columns, got %v", header)
	}
	return cols, nil
}

func field(row []string, j int) string {
	if j < 0 || j >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[j])
}
