package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the workbench reacts to outside of text input.
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	First    key.Binding
	Last     key.Binding
	Edit     key.Binding
	Period   key.Binding
	Strategy key.Binding
	DegUp    key.Binding
	DegDown  key.Binding
	Append   key.Binding
	Drop     key.Binding
	NextTab  key.Binding
	PrevTab  key.Binding
	Theme    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k ↑", "previous row")),
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j ↓", "next row")),
		Left:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h ←", "previous column")),
		Right:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l →", "next column")),
		First:    key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first period")),
		Last:     key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last period")),
		Edit:     key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "edit cell")),
		Period:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "set horizon")),
		Strategy: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "switch strategy")),
		DegUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+ -", "polynomial degree")),
		DegDown:  key.NewBinding(key.WithKeys("-", "_")),
		Append:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "append period")),
		Drop:     key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "drop last period")),
		NextTab:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		PrevTab:  key.NewBinding(key.WithKeys("shift+tab")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "cycle theme")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpSections groups bindings for the help overlay.
func (k keyMap) helpSections() []struct {
	title    string
	bindings []key.Binding
} {
	return []struct {
		title    string
		bindings []key.Binding
	}{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Left, k.Right, k.First, k.Last, k.NextTab}},
		{"Editing", []key.Binding{k.Edit, k.Period, k.Append, k.Drop}},
		{"Forecast", []key.Binding{k.Strategy, k.DegUp}},
		{"General", []key.Binding{k.Theme, k.Help, k.Quit}},
	}
}
