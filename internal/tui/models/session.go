package models

import (
	"time"

	"github.com/allbin/go-serialcomm/internal/session"
	"github.com/allbin/go-serialcomm/internal/tui/components"
)

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	default:
		return "NORMAL"
	}
}

// SnapshotMsg carries a session snapshot from the loop into the program
type SnapshotMsg session.Snapshot

// ReloadMsg reports the outcome of re-reading the configuration
type ReloadMsg struct {
	Params session.Params
	Err    error
}

// SessionModel holds the front-end view of one session: the latest snapshot,
// the port picker and the input mode. It is only touched from Update.
type SessionModel struct {
	snap      session.Snapshot
	have      bool
	ports     []string
	portIndex int
	inputMode InputMode
	ready     bool
	now       func() time.Time
}

func NewSessionModel() *SessionModel {
	return &SessionModel{
		snap:      session.Snapshot{Status: session.StatusNotConnected},
		portIndex: -1,
		now:       time.Now,
	}
}

// Apply stores s and returns the log entries for what changed since the
// previous snapshot: a dispatched command, a response, a new status.
func (m *SessionModel) Apply(s session.Snapshot) []components.Entry {
	prev := m.snap
	first := !m.have
	m.snap = s
	m.have = true

	now := m.now()
	var entries []components.Entry

	if !first && s.Status != prev.Status {
		entries = append(entries, components.Entry{Timestamp: now, Data: []byte(s.Status), Status: components.StatusInfo})
	}
	if s.Dispatches > prev.Dispatches {
		entries = append(entries, components.Entry{Timestamp: now, Data: []byte(s.LastCommand), IsTX: true, Status: components.StatusWritten})
	}
	if s.Reads > prev.Reads {
		status := components.StatusComplete
		if s.Truncated {
			status = components.StatusTruncated
		}
		entries = append(entries, components.Entry{Timestamp: now, Data: s.LastRead, Status: status})
	}
	if s.LastError != "" && s.LastError != prev.LastError {
		entries = append(entries, components.Entry{Timestamp: now, Data: []byte(s.LastError), Status: components.StatusError})
	}
	if s.SequenceDone && !prev.SequenceDone {
		entries = append(entries, components.Entry{Timestamp: now, Data: []byte(components.SequenceDoneText), Status: components.StatusInfo})
	}
	return entries
}

func (m *SessionModel) Snapshot() session.Snapshot {
	return m.snap
}

func (m *SessionModel) IsConnected() bool {
	return m.snap.Connected
}

// NextPort moves the selection to the candidate after the current one in
// ports, which replaces the previous list. It returns "" when ports is empty.
func (m *SessionModel) NextPort(ports []string) string {
	current := m.SelectedPort()
	m.ports = ports
	m.portIndex = -1
	if len(ports) == 0 {
		return ""
	}

	next := 0
	for i, p := range ports {
		if p == current {
			next = (i + 1) % len(ports)
			break
		}
	}
	m.portIndex = next
	return ports[next]
}

// SelectedPort is the picked candidate, or "" to use the configured port
func (m *SessionModel) SelectedPort() string {
	if m.portIndex < 0 || m.portIndex >= len(m.ports) {
		return ""
	}
	return m.ports[m.portIndex]
}

func (m *SessionModel) IsReady() bool {
	return m.ready
}

func (m *SessionModel) SetReady(ready bool) {
	m.ready = ready
}

func (m *SessionModel) GetInputMode() InputMode {
	return m.inputMode
}

func (m *SessionModel) SetInputMode(mode InputMode) {
	m.inputMode = mode
}

func (m *SessionModel) IsInInsertMode() bool {
	return m.inputMode == InputModeInsert
}
