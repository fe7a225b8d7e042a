// Package tui provides the interactive Bubble Tea workbench for pnlcast.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/tui/components"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 160
	minContentHeight = 5
)

const (
	tabChart = iota
	tabData
	tabFit
)

// editTarget says what the text input is currently bound to.
type editTarget int

const (
	editNone editTarget = iota
	editCell
	editPeriod
)

// columns of the editor grid, in display order.
var columns = []workbench.Field{workbench.FieldLabel, workbench.FieldRevenue, workbench.FieldExpenses}

// Options tune an App.
type Options struct {
	// SaveTheme persists a theme picked with the cycle key. Nil skips saving.
	SaveTheme func(name string) error
	// Status is shown on the right of the status bar, e.g. the API address.
	Status string
}

// App is the root Bubble Tea model.
type App struct {
	sess *workbench.Session
	sink *Sink
	snap workbench.Snapshot
	opts Options
	keys keyMap

	width     int
	height    int
	activeTab int
	showHelp  bool

	// Editor cursor: period index and column.
	row int
	col int

	editing editTarget
	input   textinput.Model
	message string
}

// NewApp creates the model and attaches its sink to sess, so edits made
// elsewhere (the HTTP API) show up live.
func NewApp(sess *workbench.Session, opts Options) App {
	sink := NewSink()
	sess.Attach(sink)
	return App{
		sess: sess,
		sink: sink,
		snap: sess.Snapshot(),
		opts: opts,
		keys: defaultKeyMap(),
		col:  1,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(tea.EnableMouseCellMotion, a.sink.wait())
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case PayloadMsg:
		if msg.Payload.Seq > a.snap.Seq {
			a.sync(a.sess.Snapshot())
		}
		return a, a.sink.wait()

	case tea.MouseMsg:
		if a.showHelp || a.editing != editNone {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := components.TabAtX(msg.X, a.activeTab); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.editing != editNone {
			return a.updateInput(msg)
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}
		return a.updateKeys(msg)
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.message = ""
	k := a.keys

	if len(msg.Runes) == 1 {
		if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
			a.activeTab = tab
			return a, nil
		}
	}

	switch {
	case key.Matches(msg, k.Quit):
		return a, tea.Quit
	case key.Matches(msg, k.Help):
		a.showHelp = true
	case key.Matches(msg, k.NextTab):
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	case key.Matches(msg, k.PrevTab):
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)

	// The chart tab lays periods out left to right, the data tab top to
	// bottom, so the arrows swap meaning between them.
	case key.Matches(msg, k.Up):
		if a.activeTab == tabChart {
			a.moveCol(-1)
		} else {
			a.moveRow(-1)
		}
	case key.Matches(msg, k.Down):
		if a.activeTab == tabChart {
			a.moveCol(1)
		} else {
			a.moveRow(1)
		}
	case key.Matches(msg, k.Left):
		if a.activeTab == tabChart {
			a.moveRow(-1)
		} else {
			a.moveCol(-1)
		}
	case key.Matches(msg, k.Right):
		if a.activeTab == tabChart {
			a.moveRow(1)
		} else {
			a.moveCol(1)
		}
	case key.Matches(msg, k.First):
		a.row = 0
	case key.Matches(msg, k.Last):
		a.row = max(a.snap.State.Len()-1, 0)

	case key.Matches(msg, k.Edit):
		return a.startEdit(editCell)
	case key.Matches(msg, k.Period):
		return a.startEdit(editPeriod)
	case key.Matches(msg, k.Strategy):
		next := forecast.StrategyLinear
		if a.snap.State.Strategy == forecast.StrategyLinear {
			next = forecast.StrategyPolynomial
		}
		a.apply(a.sess.SetStrategy(next, -1))
	case key.Matches(msg, k.DegUp):
		a.changeDegree(1)
	case key.Matches(msg, k.DegDown):
		a.changeDegree(-1)
	case key.Matches(msg, k.Append):
		a.apply(a.sess.Append("", 0, 0))
		a.row = max(a.snap.State.Len()-1, 0)
	case key.Matches(msg, k.Drop):
		a.apply(a.sess.Drop())
	case key.Matches(msg, k.Theme):
		a.cycleTheme()
	}
	return a, nil
}

func (a *App) moveRow(d int) {
	a.row = min(max(a.row+d, 0), max(a.snap.State.Len()-1, 0))
}

func (a *App) moveCol(d int) {
	a.col = min(max(a.col+d, 0), len(columns)-1)
}

func (a *App) changeDegree(d int) {
	st := a.snap.State
	if st.Strategy != forecast.StrategyPolynomial {
		a.message = "degree only applies to the polynomial strategy"
		return
	}
	deg := st.Degree + d
	if deg < 1 || deg > forecast.MaxDegree {
		a.message = fmt.Sprintf("degree must stay between 1 and %d", forecast.MaxDegree)
		return
	}
	a.apply(a.sess.SetStrategy(st.Strategy, deg))
}

func (a *App) cycleTheme() {
	next := theme.Next(theme.Active.Name)
	theme.Active = next
	a.message = "theme: " + next.Name
	if a.opts.SaveTheme != nil {
		if err := a.opts.SaveTheme(next.Name); err != nil {
			a.message = "theme not saved: " + err.Error()
		}
	}
}

// apply takes the outcome of a session edit. Rejected edits leave the view
// unchanged and show the reason.
func (a *App) apply(snap workbench.Snapshot, err error) {
	if err != nil {
		a.message = err.Error()
		return
	}
	a.sync(snap)
}

func (a *App) sync(snap workbench.Snapshot) {
	if snap.Seq < a.snap.Seq {
		return
	}
	a.snap = snap
	a.row = min(a.row, max(snap.State.Len()-1, 0))
}

func (a App) startEdit(target editTarget) (tea.Model, tea.Cmd) {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 20

	st := a.snap.State
	switch target {
	case editPeriod:
		ti.Prompt = "horizon: "
		ti.Placeholder = "periods to forecast"
		ti.SetValue(fmt.Sprintf("%d", st.Period))
	case editCell:
		if st.Len() == 0 {
			return a, nil
		}
		field := columns[a.col]
		ti.Prompt = fmt.Sprintf("%s %s: ", field, st.Label(a.row))
		ti.SetValue(cellValue(st, field, a.row))
	}

	ti.Focus()
	ti.CursorEnd()
	a.input = ti
	a.editing = target
	a.message = ""
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.editing = editNone
		return a, nil
	case "enter":
		raw := strings.TrimSpace(a.input.Value())
		switch a.editing {
		case editPeriod:
			a.apply(a.sess.SetPeriod(raw))
		case editCell:
			a.apply(a.sess.SetValue(columns[a.col], a.row, raw))
		}
		a.editing = editNone
		return a, nil
	case "tab":
		// Commit and move to the next cell, like a spreadsheet.
		if a.editing == editCell {
			a.apply(a.sess.SetValue(columns[a.col], a.row, strings.TrimSpace(a.input.Value())))
			a.editing = editNone
			if a.col < len(columns)-1 {
				a.col++
			} else if a.row < a.snap.State.Len()-1 {
				a.col = 1
				a.row++
			}
			return a.startEdit(editCell)
		}
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// cellValue is the raw text a cell is edited as.
func cellValue(st workbench.State, f workbench.Field, i int) string {
	if f == workbench.FieldLabel {
		return st.Label(i)
	}
	if v, ok := cellNumber(st, f, i); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

func cellNumber(st workbench.State, f workbench.Field, i int) (float64, bool) {
	var v []float64
	switch f {
	case workbench.FieldRevenue:
		v = st.Revenue
	case workbench.FieldExpenses:
		v = st.Expenses
	}
	if i < 0 || i >= len(v) {
		return 0, false
	}
	return v[i], true
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, minContentHeight)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  pnlcast needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")

	for _, sec := range a.keys.helpSections() {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			h := bind.Help()
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", h.Key)),
				descStyle.Render(h.Desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("1 2 3 jump to a tab · press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)

	var bottom string
	if a.editing != editNone {
		inputStyle := lipgloss.NewStyle().Background(t.SurfaceHover).Width(w)
		bottom = inputStyle.Render(" " + a.input.View())
	} else {
		bottom = components.RenderStatusBar(w, "[?]help  [enter]edit  [p]horizon  [s]trategy  [q]uit", a.message, a.statusText())
	}

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(bottom), minContentHeight)

	var content string
	switch a.activeTab {
	case tabChart:
		content = a.renderChartTab(cw, contentH)
	case tabData:
		content = a.renderDataTab(cw, contentH)
	case tabFit:
		content = a.renderFitTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, bottom)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusText() string {
	st := a.snap.State
	s := st.Strategy
	if s == forecast.StrategyPolynomial {
		s = fmt.Sprintf("%s(%d)", s, st.Degree)
	}
	parts := []string{s, fmt.Sprintf("h=%d", st.Period), fmt.Sprintf("#%d", a.snap.Seq)}
	if a.opts.Status != "" {
		parts = append(parts, a.opts.Status)
	}
	return strings.Join(parts, " · ")
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
