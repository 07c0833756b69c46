package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	RefreshPrice key.Binding
	RefreshChain key.Binding
	Hours24      key.Binding
	Week         key.Binding
	Month        key.Binding
	Year         key.Binding
	Settings     key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		RefreshPrice: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh price"),
		),
		RefreshChain: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "refresh blocks/fees"),
		),
		Hours24: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "24h chart"),
		),
		Week: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "1w chart"),
		),
		Month: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "1m chart"),
		),
		Year: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "1y chart"),
		),
		Settings: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "settings"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.RefreshPrice, k.RefreshChain, k.Settings, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.RefreshPrice, k.RefreshChain, k.Settings},
		{k.Hours24, k.Week, k.Month, k.Year},
		{k.Help, k.Quit},
	}
}
