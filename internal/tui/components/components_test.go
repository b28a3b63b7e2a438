package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	serial "github.com/allbin/go-serialcomm"
	"github.com/allbin/go-serialcomm/internal/session"
)

func TestPrintable(t *testing.T) {
	require.Equal(t, "OK..", Printable([]byte("OK\r\n")))
	require.Equal(t, "", Printable(nil))
}

func TestFormatEntry(t *testing.T) {
	require := require.New(t)

	df := NewDataFormatter(true, true)
	line := df.FormatEntry(Entry{Timestamp: time.Now(), Data: []byte("Hi"), IsTX: true})
	require.Contains(line, "HEX: 48 69")
	require.Contains(line, "ASCII: Hi")
	require.Contains(line, "TX")

	df.ToggleHex()
	df.ToggleASCII()
	line = df.FormatEntry(Entry{Timestamp: time.Now(), Data: []byte("Hi")})
	require.Contains(line, "BYTES: 2")
	require.Contains(line, "RX")
}

func TestTerminalBoundsEntries(t *testing.T) {
	term := NewTerminal(80, 10)
	for rep := 0; rep < maxEntries+5; rep++ {
		term.Add(Entry{Timestamp: time.Now(), Data: []byte("x")})
	}
	require.Len(t, term.Entries(), maxEntries)

	term.Clear()
	require.Empty(t, term.Entries())
}

func TestInputHistory(t *testing.T) {
	require := require.New(t)

	in := NewInput("")
	in.SetValue("*IDN?")
	require.Equal("*IDN?", in.Submit())
	require.Empty(in.Value())

	in.AddToHistory("*IDN?")
	in.AddToHistory("  ")
	in.AddToHistory("MEAS?")
	require.Equal([]string{"*IDN?", "MEAS?"}, in.History())

	in.SetValue("draft")
	in.NavigateHistoryUp()
	require.Equal("MEAS?", in.Value())
	in.NavigateHistoryUp()
	require.Equal("*IDN?", in.Value())
	in.NavigateHistoryDown()
	require.Equal("MEAS?", in.Value())
	in.NavigateHistoryDown()
	require.Equal("draft", in.Value())
}

func TestStatusBarTexts(t *testing.T) {
	require := require.New(t)

	sb := NewStatusBar(FramingFromConfig(serial.DefaultConfig()))
	require.Equal(session.StatusNotConnected, sb.StatusText())

	sb.SetSnapshot(session.Snapshot{Status: session.StatusConnected, SequenceDone: true})
	require.Equal("Connected. Sequence complete.", sb.StatusText())

	require.Equal("8N1", sb.framing.String())
	require.Equal("7E2 RTS/CTS", Framing{DataBits: 7, StopBits: 2, Parity: serial.ParityEven, FlowControl: serial.FlowControlRTSCTS}.String())

	sb.SetWidth(120)
	view := sb.View("NORMAL", "12:00:00")
	require.Contains(view, "NORMAL")
	require.Contains(view, "no port")
}

func TestSequenceTableMarksNext(t *testing.T) {
	require := require.New(t)

	st := NewSequenceTable(40, 10)
	st.SetSnapshot(session.Snapshot{
		Params: session.Params{Commands: []string{"A", session.DefaultCommand, "C"}},
		Index:  1,
		State:  session.Armed,
	})

	rows := st.Rows()
	require.Len(rows, 3)
	require.Equal("", rows[0].Data[columnKeyMarker])
	require.Equal("▶", rows[1].Data[columnKeyMarker])
	require.Equal("(none)", rows[1].Data[columnKeyCommand])
	require.True(strings.Contains(st.View(), "Command"))
}
