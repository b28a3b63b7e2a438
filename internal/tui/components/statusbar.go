package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	serial "github.com/allbin/go-serialcomm"
	"github.com/allbin/go-serialcomm/internal/session"
	"github.com/allbin/go-serialcomm/internal/tui/colors"
	"github.com/allbin/go-serialcomm/internal/tui/styles"
)

// SequenceDoneText is shown next to the status once the list auto-pauses
const SequenceDoneText = "Sequence complete."

// Framing describes the line settings shown in the status bar
type Framing struct {
	DataBits    int
	StopBits    int
	Parity      serial.Parity
	FlowControl serial.FlowControl
}

// FramingFromConfig copies the line settings out of a driver config
func FramingFromConfig(c serial.Config) Framing {
	return Framing{
		DataBits:    c.DataBits,
		StopBits:    c.StopBits,
		Parity:      c.Parity,
		FlowControl: c.FlowControl,
	}
}

func (f Framing) String() string {
	s := fmt.Sprintf("%d%s%d", f.DataBits, parityToString(f.Parity), f.StopBits)
	if f.FlowControl == serial.FlowControlRTSCTS {
		s += " RTS/CTS"
	}
	return s
}

type StatusBar struct {
	width   int
	framing Framing
	snap    session.Snapshot
}

func NewStatusBar(framing Framing) *StatusBar {
	return &StatusBar{
		framing: framing,
		snap:    session.Snapshot{Status: session.StatusNotConnected},
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetSnapshot(s session.Snapshot) {
	sb.snap = s
}

// StatusText is the connection status, extended once the sequence finished
func (sb *StatusBar) StatusText() string {
	if sb.snap.SequenceDone {
		return sb.snap.Status + " " + SequenceDoneText
	}
	return sb.snap.Status
}

// MessageLine renders the second status string: the last response or error
func (sb *StatusBar) MessageLine() string {
	msg := sb.snap.Message
	if msg == "" {
		msg = styles.MutedStyle.Render("(no response)")
	} else {
		msg = Printable([]byte(msg))
	}
	line := styles.StatusStyle(sb.snap.Status).Render(sb.StatusText()) + "  " + styles.MessageStyle.Render(msg)
	if sb.snap.LastError != "" {
		line += "  " + styles.ErrorStyle.Render(sb.snap.LastError)
	}
	return line
}

func parityToString(p serial.Parity) string {
	switch p {
	case serial.ParityEven:
		return "E"
	case serial.ParityOdd:
		return "O"
	default:
		return "N"
	}
}

// View renders the bottom bar: mode, port, connection, sequence state, line settings, clock
func (sb *StatusBar) View(inputMode string, timestamp string) string {
	width := sb.width
	if width <= 0 {
		width = 80
	}

	modeBg := colors.Blue
	if inputMode == "INSERT" {
		modeBg = colors.Green
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBg).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	portPath := sb.snap.Port
	if portPath == "" {
		portPath = "no port"
	}
	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(portPath)

	var dot lipgloss.Style
	indicator := "○"
	switch {
	case sb.snap.Connected:
		dot = lipgloss.NewStyle().Foreground(colors.Green)
		indicator = "●"
	case sb.snap.Status == session.StatusConnectFailed:
		dot = lipgloss.NewStyle().Foreground(colors.Red)
		indicator = "✗"
	default:
		dot = lipgloss.NewStyle().Foreground(colors.Yellow)
	}

	state := styles.StateStyle(sb.snap.State).Render(
		fmt.Sprintf("%s %d/%d", sb.snap.State, sb.snap.Index, sb.snap.Total))

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	p := sb.snap.Params
	details := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1).
		Render(fmt.Sprintf("⚡ %d baud %s  ⏱ %dms  ↻ %gs", p.BaudRate, sb.framing, p.TimeoutMillis, p.IntervalSeconds))

	clock := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1).
		Render(timestamp)

	left := lipgloss.JoinHorizontal(lipgloss.Left, mode, port, dot.Render(indicator), " ", state, divider)
	right := lipgloss.JoinHorizontal(lipgloss.Left, details, divider, clock)

	spacerWidth := width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(width).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, left, spacer, right))
}
