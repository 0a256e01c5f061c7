package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Prev        key.Binding
	Next        key.Binding
	LaneUp      key.Binding
	LaneDown    key.Binding
	Rename      key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ZoomReset   key.Binding
	PresetIn    key.Binding
	PresetOut   key.Binding
	ScrollLeft  key.Binding
	ScrollRight key.Binding
	Strict      key.Binding
	Refresh     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev:        key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "prev item")),
		Next:        key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next item")),
		LaneUp:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "lane up")),
		LaneDown:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "lane down")),
		Rename:      key.NewBinding(key.WithKeys("enter", "e"), key.WithHelp("enter", "rename")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		ZoomReset:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),
		PresetIn:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next preset")),
		PresetOut:   key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev preset")),
		ScrollLeft:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "scroll back")),
		ScrollRight: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "scroll forward")),
		Strict:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "strict lanes")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Rename, k.ZoomIn, k.ZoomOut, k.ZoomReset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.LaneUp, k.LaneDown},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset, k.PresetIn, k.PresetOut},
		{k.ScrollLeft, k.ScrollRight, k.Rename, k.Strict},
		{k.Refresh, k.Help, k.Quit},
	}
}
