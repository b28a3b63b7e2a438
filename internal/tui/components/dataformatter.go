package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/allbin/go-serialcomm/internal/tui/colors"
)

// Entry statuses
const (
	StatusWritten   = "WRITTEN"
	StatusComplete  = "OK"
	StatusTruncated = "TRUNCATED"
	StatusError     = "ERROR"
	StatusInfo      = "INFO"
)

// Entry is one line of the session log
type Entry struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    string
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) FormatEntry(e Entry) string {
	timestamp := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", e.Timestamp.Format("15:04:05.000")))

	if e.Status == StatusInfo || e.Status == StatusError {
		color := colors.Overlay0
		if e.Status == StatusError {
			color = colors.Failure
		}
		text := lipgloss.NewStyle().Foreground(color).Render("-- " + string(e.Data))
		return fmt.Sprintf("%s %s", timestamp, text)
	}

	return fmt.Sprintf("%s %s: %s", timestamp, indicator(e), strings.Join(df.parts(e.Data), "  "))
}

func (df *DataFormatter) FormatEntries(entries []Entry) []string {
	formatted := make([]string, len(entries))
	for i, e := range entries {
		formatted[i] = df.FormatEntry(e)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func (df *DataFormatter) parts(data []byte) []string {
	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+Printable(data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(data)))
	}
	return parts
}

func indicator(e Entry) string {
	if e.IsTX {
		return lipgloss.NewStyle().
			Foreground(colors.TX).
			Bold(true).
			Render("↗ TX")
	}

	color := colors.RX
	text := "↙ RX"
	if e.Status == StatusTruncated {
		color = colors.Yellow
		text = "↙ RX …"
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(text)
}

// Printable replaces bytes outside printable ASCII with dots
func Printable(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}
