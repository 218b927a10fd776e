package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Reload  key.Binding
	Save    key.Binding
	Wider   key.Binding
	Narrow  key.Binding
	Taller  key.Binding
	Shorter key.Binding
	Help    key.Binding
}

var keys = keyMap{
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	Reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Save:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Wider:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "wider cells")),
	Narrow:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "narrower cells")),
	Taller:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "taller cells")),
	Shorter: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "shorter cells")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Reload, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Reload, k.Save, k.Quit},
		{k.Wider, k.Narrow},
		{k.Taller, k.Shorter},
		{k.Help},
	}
}
