package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/allbin/go-serialcomm/internal/session"
	"github.com/allbin/go-serialcomm/internal/tui/colors"
)

const (
	columnKeyMarker  = "marker"
	columnKeyIndex   = "index"
	columnKeyCommand = "command"
)

// SequenceTable shows the command list with the next command highlighted
type SequenceTable struct {
	width    int
	height   int
	commands []string
	index    int
	state    session.State
}

func NewSequenceTable(width, height int) *SequenceTable {
	return &SequenceTable{width: width, height: height}
}

func (st *SequenceTable) SetSize(width, height int) {
	st.width = width
	st.height = height
}

func (st *SequenceTable) SetSnapshot(s session.Snapshot) {
	st.commands = s.Params.Commands
	st.index = s.Index
	st.state = s.State
}

func (st *SequenceTable) Rows() []table.Row {
	next := lipgloss.NewStyle().Foreground(colors.Green).Bold(true)
	sent := lipgloss.NewStyle().Foreground(colors.Overlay0)

	rows := make([]table.Row, len(st.commands))
	for i, cmd := range st.commands {
		marker := ""
		if cmd == "" || cmd == session.DefaultCommand {
			cmd = "(none)"
		}

		row := table.NewRow(table.RowData{
			columnKeyMarker:  marker,
			columnKeyIndex:   fmt.Sprintf("%d", i+1),
			columnKeyCommand: cmd,
		})
		switch {
		case i < st.index:
			row = row.WithStyle(sent)
		case i == st.index && st.state != session.Exhausted:
			row.Data[columnKeyMarker] = "▶"
			row = row.WithStyle(next)
		}
		rows[i] = row
	}
	return rows
}

func (st *SequenceTable) View() string {
	commandWidth := st.width - 12
	if commandWidth < 10 {
		commandWidth = 10
	}
	pageSize := st.height - 4
	if pageSize < 1 {
		pageSize = 1
	}

	return table.New([]table.Column{
		table.NewColumn(columnKeyMarker, "", 2),
		table.NewColumn(columnKeyIndex, "#", 3),
		table.NewColumn(columnKeyCommand, "Command", commandWidth),
	}).
		WithRows(st.Rows()).
		WithPageSize(pageSize).
		BorderRounded().
		WithBaseStyle(lipgloss.NewStyle().
			BorderForeground(colors.Surface1).
			Foreground(colors.Text).
			Align(lipgloss.Left)).
		View()
}
