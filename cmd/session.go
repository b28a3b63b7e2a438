/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	serial "github.com/allbin/go-serialcomm"
	"github.com/allbin/go-serialcomm/internal/session"
	"github.com/allbin/go-serialcomm/internal/tui/components"
	"github.com/allbin/go-serialcomm/internal/tui/keys"
	"github.com/allbin/go-serialcomm/internal/tui/models"
	"github.com/allbin/go-serialcomm/internal/tui/styles"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:     "session",
	Aliases: []string{"connect"},
	Short:   "Interactive session with a timed command sequence",
	Long: `Open an interactive terminal interface for one instrument session.

The screen shows a TX/RX log, the command list with the next command marked,
the connection status and the last response. Everything happens through keys:

  c  connect (to the picked port, or the configured one)   tab  pick next port
  s  send the next command    r  read once    u/space  unpause    p  pause
  R  reload the config file   i  type a one-off command   ?  help   q  quit

Unpause sends the current command at once and the rest on the configured
interval; after the last command the sequence pauses by itself. Pause resets
the sequence to the first command.

Example usage:
  serialcomm session
  serialcomm session -p /dev/ttyUSB0 -b 115200 -c '*IDN?' -c 'MEAS?' -i 2`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, c, err := setup(true)
		if err != nil {
			return err
		}
		defer log.Sync()

		opts, err := cfg.SerialOptions()
		if err != nil {
			return err
		}
		lineConfig := serial.DefaultConfig()
		for _, opt := range opts {
			if err := opt(&lineConfig); err != nil {
				return err
			}
		}

		return runSessionTUI(cmd.Context(), c, components.FramingFromConfig(lineConfig))
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

// sessionModel represents the Bubble Tea model for the session command
type sessionModel struct {
	*models.SessionModel
	loop      *session.Loop
	ports     func() []string
	terminal  *components.Terminal
	sequence  *components.SequenceTable
	statusBar *components.StatusBar
	input     *components.Input
	help      help.Model
	keys      keys.SessionKeys
	sidePanel bool
}

const sequencePanelWidth = 32

func runSessionTUI(ctx context.Context, c *session.Controller, framing components.Framing) error {
	m := &sessionModel{
		SessionModel: models.NewSessionModel(),
		ports:        c.Ports,
		terminal:     components.NewTerminal(0, 0),
		sequence:     components.NewSequenceTable(sequencePanelWidth, 0),
		statusBar:    components.NewStatusBar(framing),
		input:        components.NewInput("Command to send, Enter to dispatch..."),
		help:         help.New(),
		keys:         keys.NewSessionKeys(),
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	loopCtx, cancel := context.WithCancel(ctx)

	// Snapshots are relayed through a buffer so the loop never waits on Update.
	updates := make(chan session.Snapshot, 256)
	m.loop = session.NewLoop(c, func(s session.Snapshot) {
		select {
		case updates <- s:
		case <-loopCtx.Done():
		}
	})
	go func() {
		for {
			select {
			case s := <-updates:
				p.Send(models.SnapshotMsg(s))
			case <-loopCtx.Done():
				return
			}
		}
	}()

	done := make(chan error, 1)
	go func() { done <- m.loop.Run(loopCtx) }()

	_, err := p.Run()
	cancel()
	<-done
	return err
}

// reloadConfig re-reads the config file and environment
func reloadConfig() tea.Msg {
	cfg, err := loadConfig()
	if err != nil {
		return models.ReloadMsg{Err: err}
	}
	params, err := cfg.Params()
	return models.ReloadMsg{Params: params, Err: err}
}

func (m *sessionModel) Init() tea.Cmd {
	return nil
}

func (m *sessionModel) note(text string, status string) {
	m.terminal.Add(components.Entry{Timestamp: time.Now(), Data: []byte(text), Status: status})
}

func (m *sessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.SetReady(true)

	case models.SnapshotMsg:
		s := session.Snapshot(msg)
		for _, e := range m.Apply(s) {
			m.terminal.Add(e)
		}
		m.statusBar.SetSnapshot(s)
		m.sequence.SetSnapshot(s)

	case models.ReloadMsg:
		if msg.Err != nil {
			m.note(fmt.Sprintf("Reload failed: %v", msg.Err), components.StatusError)
			break
		}
		m.loop.Reconfigure(msg.Params)
		m.note("Configuration reloaded, sequence reset", components.StatusInfo)

	case tea.KeyMsg:
		if m.IsInInsertMode() {
			switch {
			case key.Matches(msg, m.keys.Escape):
				m.SetInputMode(models.InputModeNormal)
				m.input.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Enter):
				if line := m.input.Submit(); line != "" {
					m.loop.SendRaw(line)
				}
				return m, nil
			case key.Matches(msg, m.keys.Up):
				m.input.NavigateHistoryUp()
				return m, nil
			case key.Matches(msg, m.keys.Down):
				m.input.NavigateHistoryDown()
				return m, nil
			}

			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.InsertMode):
			m.SetInputMode(models.InputModeInsert)
			return m, m.input.Focus()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Clear):
			m.terminal.Clear()
		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()
		case key.Matches(msg, m.keys.NextPort):
			if port := m.NextPort(m.ports()); port != "" {
				m.note("Selected "+port+", press c to connect", components.StatusInfo)
			} else {
				m.note("No candidate ports found", components.StatusInfo)
			}
		case key.Matches(msg, m.keys.Connect):
			m.loop.Connect(m.SelectedPort())
		case key.Matches(msg, m.keys.Disconnect):
			m.loop.Disconnect()
		case key.Matches(msg, m.keys.Send):
			m.loop.Send()
		case key.Matches(msg, m.keys.Read):
			m.loop.Read()
		case key.Matches(msg, m.keys.Unpause):
			m.loop.Unpause()
		case key.Matches(msg, m.keys.Pause):
			m.loop.Pause()
		case key.Matches(msg, m.keys.Reload):
			cmds = append(cmds, reloadConfig)
		}

	case tea.MouseMsg:
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *sessionModel) resize(width, height int) {
	// input (3, with border) + message line + status bar + help line
	reserved := 3 + 1 + 1 + 1
	contentHeight := height - reserved - 1 // content top border
	if contentHeight < 3 {
		contentHeight = 3
	}

	logWidth := width - sequencePanelWidth
	m.sidePanel = logWidth >= 20
	if !m.sidePanel {
		logWidth = width
	}

	m.terminal.SetSize(logWidth, contentHeight)
	m.sequence.SetSize(sequencePanelWidth, contentHeight)
	m.input.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.help.Width = width
}

func (m *sessionModel) View() string {
	if !m.IsReady() {
		return "Initializing..."
	}

	content := m.terminal.View()
	if m.sidePanel {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, m.sequence.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ContentBorderStyle.Render(content),
		m.statusBar.MessageLine(),
		m.input.ViewWithMode(m.IsInInsertMode()),
		m.statusBar.View(m.GetInputMode().String(), time.Now().Format("15:04:05")),
		m.help.View(m.keys),
	)
}
