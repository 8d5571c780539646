// Package tui is a thin interactive front end over the search engine: a
// text input drives re-searches against a fixed set of candidate lines,
// with matches rendered in a scrollable viewport.
package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/time/rate"

	"github.com/subseqio/lz/internal/logging"
	"github.com/subseqio/lz/internal/search"
)

var tuiLog = logging.ForComponent(logging.CompTUI)

// debounceDelay is how long the model waits after the last keystroke
// before actually re-running the search.
const debounceDelay = 80 * time.Millisecond

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("79"))
	plainStyle  = lipgloss.NewStyle()
)

type searchTickMsg struct{ gen int }

// LinesUpdatedMsg tells the model its candidate lines changed on disk
// (sent by internal/watch's change callback via Program.Send) and a
// re-search is due.
type LinesUpdatedMsg struct{ Lines []string }

// Model is a bubbletea program driving one live-filter session over a
// fixed slice of candidate lines.
type Model struct {
	input    textinput.Model
	view     viewport.Model
	limiter  *rate.Limiter
	baseCfg  search.Config
	lines    []string
	profile  termenv.Profile
	width    int
	height   int
	queryGen int
	results  []search.Result
	err      error
	elapsed  time.Duration
}

// New constructs a Model that searches lines using baseCfg as the
// template (TopK, BatchSize, GapPenalty, ...); baseCfg.Query is replaced
// on every keystroke.
func New(baseCfg search.Config, lines []string) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 50

	vp := viewport.New(80, 20)

	return Model{
		input:   ti,
		view:    vp,
		limiter: rate.NewLimiter(rate.Every(30*time.Millisecond), 1),
		baseCfg: baseCfg,
		lines:   lines,
		profile: termenv.ColorProfile(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.scheduleSearch()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = msg.Width - 4
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 4
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "ctrl+k":
			m.view.LineUp(1)
			return m, nil
		case "down", "ctrl+j":
			m.view.LineDown(1)
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, tea.Batch(cmd, m.scheduleSearch())
		}

	case searchTickMsg:
		if msg.gen != m.queryGen {
			return m, nil
		}
		if !m.limiter.Allow() {
			return m, tea.Tick(10*time.Millisecond, func(time.Time) tea.Msg { return msg })
		}
		m.runSearch()
		return m, nil

	case LinesUpdatedMsg:
		m.lines = msg.Lines
		return m, m.scheduleSearch()
	}

	return m, nil
}

func (m Model) View() string {
	header := m.input.View()
	var body string
	if m.err != nil {
		body = errorStyle.Render(m.err.Error())
	} else {
		m.view.SetContent(renderResults(m.results, m.width))
		body = m.view.View()
	}
	status := statusStyle.Render(fmt.Sprintf("%d matches · %s", len(m.results), m.elapsed.Round(time.Microsecond)))
	return header + "\n" + body + "\n" + status
}

// scheduleSearch bumps the query generation and schedules a debounced
// re-search; a later keystroke that bumps the generation again makes this
// tick a no-op.
func (m *Model) scheduleSearch() tea.Cmd {
	m.queryGen++
	gen := m.queryGen
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return searchTickMsg{gen: gen}
	})
}

func (m *Model) runSearch() {
	cfg := m.baseCfg
	cfg.Query = m.input.Value()
	if cfg.Query == "" {
		m.results = nil
		m.err = nil
		m.elapsed = 0
		return
	}

	start := time.Now()
	driver, err := search.NewDriver(cfg)
	if err != nil {
		m.err = err
		m.results = nil
		tuiLog.Debug("query_rejected", slog.String("query", cfg.Query), slog.String("error", err.Error()))
		return
	}

	m.err = nil
	m.results = driver.SearchLines(m.lines)
	m.elapsed = time.Since(start)

	logging.Aggregate(logging.CompTUI, "search_executed",
		slog.Int("results", len(m.results)),
		slog.Duration("elapsed", m.elapsed))
}

// renderResults lays out scored lines with runewidth-aware column
// alignment so the score column stays fixed even with wide runes.
func renderResults(results []search.Result, width int) string {
	var out string
	for i, r := range results {
		score := fmt.Sprintf("%7.2f  ", r.Score)
		line := r.Text
		if width > 0 {
			avail := width - runewidth.StringWidth(score)
			if avail > 0 {
				line = runewidth.Truncate(line, avail, "…")
			}
		}
		style := plainStyle
		if i == 0 {
			style = matchStyle
		}
		out += statusStyle.Render(score) + style.Render(line) + "\n"
	}
	return out
}
