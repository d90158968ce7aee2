package window

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play   key.Binding
	Update key.Binding
	Check  key.Binding
	Help   key.Binding
	Quit   key.Binding
	Yes    key.Binding
	No     key.Binding
}

// ShortHelp implements help.KeyMap for inline help
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Update, k.Quit, k.Help}
}

// FullHelp implements help.KeyMap for the expanded view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Update, k.Check},
		{k.Yes, k.No},
		{k.Help, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p/enter", "play"),
		),
		Update: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "update"),
		),
		Check: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "re-check version"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "close"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y/enter", "yes / ok"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n/esc", "no"),
		),
	}
}
