package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-serialcomm/internal/session"
	"github.com/allbin/go-serialcomm/internal/tui/colors"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	StatusConnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusDisconnectedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusIdleStyle = lipgloss.NewStyle().
			Foreground(colors.Yellow).
			Bold(true)

	// Content area styles
	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface1).
			Padding(0, 1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	MessageStyle = lipgloss.NewStyle().
			Foreground(colors.Text).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	MutedStyle = lipgloss.NewStyle().
			Foreground(colors.Overlay0)
)

// StatusStyle colors the connection status text
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case session.StatusConnected:
		return StatusConnectedStyle
	case session.StatusConnectFailed:
		return StatusDisconnectedStyle
	default:
		return StatusIdleStyle
	}
}

// StateStyle renders a sequencer state as a badge
func StateStyle(state session.State) lipgloss.Style {
	bg := colors.Idle
	switch state {
	case session.Armed:
		bg = colors.Armed
	case session.Exhausted:
		bg = colors.Exhausted
	}
	return lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(bg).
		Bold(true).
		Padding(0, 1)
}
