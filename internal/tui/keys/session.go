package keys

import "github.com/charmbracelet/bubbles/key"

// SessionKeys maps operator events onto keys
type SessionKeys struct {
	TerminalKeys
	Connect    key.Binding
	Disconnect key.Binding
	NextPort   key.Binding
	Send       key.Binding
	Read       key.Binding
	Unpause    key.Binding
	Pause      key.Binding
	Reload     key.Binding
	Enter      key.Binding
	Up         key.Binding
	Down       key.Binding
}

func NewSessionKeys() SessionKeys {
	return SessionKeys{
		TerminalKeys: NewTerminalKeys(),
		Connect: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "connect"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "disconnect"),
		),
		NextPort: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next port"),
		),
		Send: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "send next"),
		),
		Read: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read"),
		),
		Unpause: key.NewBinding(
			key.WithKeys("u", " "),
			key.WithHelp("u/space", "unpause"),
		),
		Pause: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "pause"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload config"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send line"),
		),
		Up: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous"),
		),
		Down: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next"),
		),
	}
}

func (k SessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Connect, k.Send, k.Unpause, k.Pause, k.InsertMode, k.Help, k.Quit}
}

func (k SessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Connect, k.Disconnect, k.NextPort, k.Reload},
		{k.Send, k.Read, k.Unpause, k.Pause},
		{k.InsertMode, k.Escape, k.Enter, k.Up, k.Down},
		{k.Clear, k.ToggleHex, k.ToggleASCII, k.Help, k.Quit},
	}
}
