package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"

	"github.com/theirongolddev/pnlcast/internal/chart"
	"github.com/theirongolddev/pnlcast/internal/forecast"
	"github.com/theirongolddev/pnlcast/internal/tui/theme"
	"github.com/theirongolddev/pnlcast/internal/workbench"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func newTestApp(t *testing.T) (App, *workbench.Session) {
	t.Helper()
	sess := workbench.NewSession(workbench.DefaultState(), nil, zap.NewNop())
	a := NewApp(sess, Options{})
	return update(t, a, tea.WindowSizeMsg{Width: 120, Height: 40}), sess
}

func update(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T", m)
	}
	return next
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a = update(t, a, msg)
	}
	return a
}

func TestEditCellRecomputes(t *testing.T) {
	a, sess := newTestApp(t)
	a = press(t, a, "2", "enter")
	if a.editing != editCell {
		t.Fatal("enter should open the cell editor")
	}
	if got := a.input.Value(); got != "100" {
		t.Fatalf("editor prefill = %q, want 100", got)
	}

	a.input.SetValue("1000")
	a = press(t, a, "enter")

	if a.editing != editNone {
		t.Fatal("enter should close the editor")
	}
	if got := sess.State().Revenue[0]; got != 1000 {
		t.Fatalf("revenue[0] = %v, want 1000", got)
	}
	if a.snap.Seq != 1 {
		t.Fatalf("snapshot seq = %d, want 1", a.snap.Seq)
	}
}

func TestEditCell_NonNumericBecomesZero(t *testing.T) {
	a, sess := newTestApp(t)
	a = press(t, a, "2", "l", "enter") // expenses column
	a.input.SetValue("abc")
	a = press(t, a, "enter")

	if got := sess.State().Expenses[0]; got != 0 {
		t.Fatalf("expenses[0] = %v, want 0", got)
	}
	if a.message != "" {
		t.Fatalf("coerced input should not report an error, got %q", a.message)
	}
}

func TestEditCell_EscCancels(t *testing.T) {
	a, sess := newTestApp(t)
	a = press(t, a, "enter")
	a.input.SetValue("999")
	a = press(t, a, "esc")

	if sess.State().Revenue[0] != 100 {
		t.Fatal("esc should discard the edit")
	}
	if a.snap.Seq != 0 {
		t.Fatalf("seq = %d, want 0", a.snap.Seq)
	}
}

func TestTabCommitsAndAdvances(t *testing.T) {
	a, sess := newTestApp(t)
	a = press(t, a, "enter")
	a.input.SetValue("150")
	a = press(t, a, "tab")

	if sess.State().Revenue[0] != 150 {
		t.Fatalf("revenue[0] = %v, want 150", sess.State().Revenue[0])
	}
	if a.editing != editCell || a.col != 2 {
		t.Fatalf("tab should move to the expenses cell, editing=%v col=%d", a.editing, a.col)
	}
}

func TestPeriodEdit(t *testing.T) {
	a, sess := newTestApp(t)

	a = press(t, a, "p")
	a.input.SetValue("3")
	a = press(t, a, "enter")
	if got := len(a.snap.Result.Values); got != 3 {
		t.Fatalf("forecast length = %d, want 3", got)
	}

	a = press(t, a, "p")
	a.input.SetValue("0")
	a = press(t, a, "enter")
	if sess.State().Period != 3 {
		t.Fatalf("invalid horizon changed the period to %d", sess.State().Period)
	}
	if !strings.Contains(a.message, "positive") {
		t.Fatalf("message = %q, want a horizon error", a.message)
	}
}

func TestStrategyAndDegree(t *testing.T) {
	a, _ := newTestApp(t)

	a = press(t, a, "+")
	if a.snap.State.Degree != 3 {
		t.Fatalf("degree = %d, want 3", a.snap.State.Degree)
	}

	a = press(t, a, "s")
	if a.snap.State.Strategy != forecast.StrategyLinear {
		t.Fatalf("strategy = %q, want linear", a.snap.State.Strategy)
	}
	a = press(t, a, "+")
	if !strings.Contains(a.message, "polynomial") {
		t.Fatalf("message = %q", a.message)
	}

	a = press(t, a, "s")
	if a.snap.State.Strategy != forecast.StrategyPolynomial || a.snap.State.Degree != 3 {
		t.Fatalf("state = %+v, want polynomial degree 3", a.snap.State)
	}
}

func TestAppendAndDrop(t *testing.T) {
	a, sess := newTestApp(t)

	a = press(t, a, "a")
	st := sess.State()
	if st.Len() != 8 || st.Labels[7] != "August" {
		t.Fatalf("after append: len=%d labels=%v", st.Len(), st.Labels)
	}
	if a.row != 7 {
		t.Fatalf("cursor row = %d, want 7", a.row)
	}

	a = press(t, a, "d")
	if sess.State().Len() != 7 || a.row != 6 {
		t.Fatalf("after drop: len=%d row=%d", sess.State().Len(), a.row)
	}
}

func TestExternalEditArrivesAsPayload(t *testing.T) {
	a, sess := newTestApp(t)

	snap, err := sess.SetPeriod(4)
	if err != nil {
		t.Fatalf("SetPeriod: %v", err)
	}
	a = update(t, a, PayloadMsg{Payload: snap.Payload})

	if a.snap.Seq != snap.Seq || a.snap.State.Period != 4 {
		t.Fatalf("app snapshot = seq %d period %d", a.snap.Seq, a.snap.State.Period)
	}

	// A stale payload does not roll the view back.
	a = update(t, a, PayloadMsg{Payload: chart.Payload{Seq: 0}})
	if a.snap.Seq != snap.Seq {
		t.Fatalf("stale payload moved seq to %d", a.snap.Seq)
	}
}

func TestSinkKeepsLatest(t *testing.T) {
	s := NewSink()
	for seq := uint64(1); seq <= 3; seq++ {
		if err := s.Render(chart.Payload{Seq: seq}); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	msg := s.wait()()
	if got := msg.(PayloadMsg).Payload.Seq; got != 3 {
		t.Fatalf("sink delivered seq %d, want 3", got)
	}
}

func TestNavigationClamps(t *testing.T) {
	a, _ := newTestApp(t)
	a = press(t, a, "2", "G")
	if a.row != 6 {
		t.Fatalf("G -> row %d, want 6", a.row)
	}
	a = press(t, a, "down", "down")
	if a.row != 6 {
		t.Fatalf("row moved past the end: %d", a.row)
	}
	a = press(t, a, "l", "l", "l")
	if a.col != len(columns)-1 {
		t.Fatalf("col = %d", a.col)
	}
}

func TestThemeCycle(t *testing.T) {
	defer theme.SetActive(theme.FlexokiDark.Name)

	var saved string
	sess := workbench.NewSession(workbench.DefaultState(), nil, zap.NewNop())
	a := NewApp(sess, Options{SaveTheme: func(name string) error {
		saved = name
		return nil
	}})
	a = press(t, a, "t")

	if theme.Active.Name != theme.CatppuccinMocha.Name || saved != theme.CatppuccinMocha.Name {
		t.Fatalf("active=%q saved=%q", theme.Active.Name, saved)
	}
}

func TestViewTabs(t *testing.T) {
	a, _ := newTestApp(t)

	for _, tc := range []struct {
		key  string
		want []string
	}{
		{"1", []string{"Last profit", "Next forecast", "Revenue", "Forecast"}},
		{"2", []string{"Period", "Profit", "August"}},
		{"3", []string{"Strategy", "polynomial", "R²", "y = "}},
	} {
		a = press(t, a, tc.key)
		view := a.View()
		for _, want := range tc.want {
			if !strings.Contains(view, want) {
				t.Fatalf("tab %s view missing %q:\n%s", tc.key, want, view)
			}
		}
	}

	a = press(t, a, "?")
	if !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help overlay not shown")
	}
	a = press(t, a, "x")
	if a.showHelp {
		t.Fatal("any key should close help")
	}
}

func TestViewTooNarrow(t *testing.T) {
	a, _ := newTestApp(t)
	a = update(t, a, tea.WindowSizeMsg{Width: 40, Height: 20})
	if !strings.Contains(a.View(), "too narrow") {
		t.Fatal("narrow terminal should show a warning")
	}
}
