package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines key bindings for the dashboard
type keyMap struct {
	Refresh    key.Binding
	ToggleSlot key.Binding
	StopAssist key.Binding
	Unload     key.Binding
	Quit       key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.ToggleSlot, k.StopAssist, k.Unload, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.ToggleSlot},
		{k.StopAssist, k.Unload, k.Quit},
	}
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		ToggleSlot: key.NewBinding(
			key.WithKeys("1", "2", "3", "4"),
			key.WithHelp("1-4", "toggle feed assist"),
		),
		StopAssist: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop assist"),
		),
		Unload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "unload"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
