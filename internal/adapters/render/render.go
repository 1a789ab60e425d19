// Package render writes a draft board in pick order.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"

	"github.com/okian/draftboard/internal/domain/model"
)

// Format selects the output layout.
type Format string

const (
	FormatTable     Format = "table"
	FormatText      Format = "text"
	FormatJSON      Format = "json"
	FormatPositions Format = "positions"
)

// Formats lists the accepted output formats.
var Formats = []Format{FormatTable, FormatText, FormatJSON, FormatPositions} //nolint:gochecknoglobals // read-only list

// ParseFormat accepts a format name (case-insensitive).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q, must be one of %v", ErrUnknownFormat, s, Formats)
}

// Meta describes the run that produced a board.
type Meta struct {
	RunID    string
	Settings model.Settings
}

// Renderer writes boards in one of the supported formats.
type Renderer struct {
	color  bool
	indent string
}

// New creates a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{color: true, indent: "  "}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render writes b to w. Slots are written exactly in board order.
func (r *Renderer) Render(w io.Writer, f Format, b *model.Board, meta Meta) error {
	if b == nil {
		return ErrNilBoard
	}
	switch f {
	case FormatTable, "":
		return r.table(w, b, meta)
	case FormatText:
		return r.text(w, b, meta)
	case FormatJSON:
		return r.json(w, b, meta)
	case FormatPositions:
		return r.positions(w, b, meta)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	target lipgloss.Style
	mark   lipgloss.Style
	border lipgloss.Style
	column lipgloss.Style
}

func (r *Renderer) styles(w io.Writer) styles {
	re := lipgloss.NewRenderer(w)
	if !r.color {
		re.SetColorProfile(termenv.Ascii)
	}
	return styles{
		title:  re.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		header: re.NewStyle().Foreground(lipgloss.Color("#CCCCCC")).Bold(true).Padding(0, 1),
		cell:   re.NewStyle().Padding(0, 1),
		target: re.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true).Padding(0, 1),
		mark:   re.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
		border: re.NewStyle().Foreground(lipgloss.Color("#999999")),
		column: re.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#999999")).Padding(0, 1),
	}
}

var tableHeaders = []string{"Pick", "#", "Player", "Pos", "Team", "Bye", "Depth", "ADP", "Expert", "Source"} //nolint:gochecknoglobals // column layout

func (r *Renderer) table(w io.Writer, b *model.Board, meta Meta) error {
	st := r.styles(w)
	blocks := []string{st.title.Render(title(b, meta))}

	for i, round := range b.Rounds() {
		rows := make([][]string, 0, len(round))
		for _, s := range round {
			cells := row(s)
			if s.Target {
				for j := range cells {
					cells[j] = st.mark.Render(cells[j])
				}
			}
			rows = append(rows, cells)
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(st.border).
			Headers(tableHeaders...).
			Rows(rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return st.header
				}
				return st.cell
			})
		blocks = append(blocks, st.title.Render(fmt.Sprintf("Round %d", i+1)), t.String())
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}

func (r *Renderer) text(w io.Writer, b *model.Board, meta Meta) error {
	var sb strings.Builder
	sb.WriteString(title(b, meta))
	sb.WriteByte('\n')
	for i, round := range b.Rounds() {
		fmt.Fprintf(&sb, "\nRound %d\n", i+1)
		for _, s := range round {
			mark := " "
			if s.Target {
				mark = "*"
			}
			e := s.Entry
			fmt.Fprintf(&sb, "%s %-6s %4d  %-28s %-3s %-4s %-4s adp %-6s expert %-5s %s\n",
				mark, pickLabel(s), s.Overall, e.Name, e.Position, dash(e.Team), e.Depth.Label(e.Position), e.ADP, e.Expert, e.Backing)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

type jsonBoard struct {
	RunID         string         `json:"run_id,omitempty"`
	ScoringFormat string         `json:"scoring_format"`
	PlayerCount   int            `json:"player_count"`
	Players       int            `json:"players"`
	Rounds        [][]model.Slot `json:"rounds"`
}

func (r *Renderer) json(w io.Writer, b *model.Board, meta Meta) error {
	out := jsonBoard{
		RunID:         meta.RunID,
		ScoringFormat: meta.Settings.ScoringFormat.String(),
		PlayerCount:   b.PlayerCount,
		Players:       b.Len(),
		Rounds:        b.Rounds(),
	}
	if out.Rounds == nil {
		out.Rounds = [][]model.Slot{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", r.indent)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// positions lays the skill positions out side by side, one column each.
func (r *Renderer) positions(w io.Writer, b *model.Board, meta Meta) error {
	st := r.styles(w)
	cols := b.ByPosition()
	order := []model.Position{model.PositionQB, model.PositionRB, model.PositionWR, model.PositionTE}

	rendered := make([]string, 0, len(order))
	for _, pos := range order {
		lines := []string{st.header.Render(string(pos))}
		for _, s := range cols[pos] {
			line := fmt.Sprintf("%-6s %s", pickLabel(s), s.Entry.Name)
			if s.Target {
				lines = append(lines, st.target.Render(line))
				continue
			}
			lines = append(lines, st.cell.Render(line))
		}
		rendered = append(rendered, st.column.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render(title(b, meta)),
		lipgloss.JoinHorizontal(lipgloss.Top, rendered...),
	))
	return err
}

func row(s model.Slot) []string {
	e := s.Entry
	bye := "-"
	if e.Bye > 0 {
		bye = strconv.Itoa(e.Bye)
	}
	name := e.Name
	if s.Target {
		name = "* " + name
	}
	return []string{
		pickLabel(s),
		strconv.Itoa(s.Overall),
		name,
		string(e.Position),
		dash(e.Team),
		bye,
		e.Depth.Label(e.Position),
		e.ADP.String(),
		e.Expert.String(),
		e.Backing.String(),
	}
}

// pickLabel renders round and pick as 3.07.
func pickLabel(s model.Slot) string {
	return fmt.Sprintf("%d.%02d", s.Round, s.Pick)
}

func title(b *model.Board, meta Meta) string {
	return fmt.Sprintf("Draft board: %s, %d teams, %d players in %d rounds",
		meta.Settings.ScoringFormat, b.PlayerCount, b.Len(), b.RoundCount())
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
