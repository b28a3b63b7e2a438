package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	serial "github.com/allbin/go-serialcomm"
	"github.com/allbin/go-serialcomm/internal/session"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "serialcomm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	require := require.New(t)
	wd, err := os.Getwd()
	require.NoError(err)
	require.NoError(os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load(New(), "")
	require.NoError(err)

	p, err := cfg.Params()
	require.NoError(err)
	require.Equal(session.DefaultParams(), p)

	require.Equal(8, cfg.Serial.DataBits)
	require.Equal(1, cfg.Serial.StopBits)
	require.Equal("none", cfg.Serial.Parity)
	require.Equal("info", cfg.Logging.Level)
	require.Equal("stderr", cfg.Logging.Output)
}

func TestLoadFile(t *testing.T) {
	require := require.New(t)

	path := writeConfig(t, `
session:
  port: /dev/ttyUSB3
  baud_rate: 115200
  timeout_ms: 250
  command_interval: 1.5
  commands: ["*IDN?", "MEAS?", "SYST:ERR?"]
  greeting: "*RST"
  delimiter: '\r'
serial:
  parity: even
  stop_bits: 2
logging:
  level: debug
  format: json
`)

	cfg, err := Load(New(), path)
	require.NoError(err)

	p, err := cfg.Params()
	require.NoError(err)
	require.Equal("/dev/ttyUSB3", p.Port)
	require.Equal(115200, p.BaudRate)
	require.Equal(250, p.TimeoutMillis)
	require.Equal(1.5, p.IntervalSeconds)
	require.Equal([]string{"*IDN?", "MEAS?", "SYST:ERR?"}, p.Commands)
	require.Equal("*RST", p.Greeting)
	require.Equal(byte('\r'), p.Delimiter)

	opts, err := cfg.SerialOptions()
	require.NoError(err)
	sc := serial.DefaultConfig()
	for _, opt := range opts {
		require.NoError(opt(&sc))
	}
	require.Equal(serial.ParityEven, sc.Parity)
	require.Equal(2, sc.StopBits)
	require.Equal(8, sc.DataBits)
}

func TestLoadEnvOverrides(t *testing.T) {
	require := require.New(t)

	path := writeConfig(t, "session:\n  baud_rate: 19200\n")
	t.Setenv("SERIALCOMM_SESSION_BAUD_RATE", "57600")
	t.Setenv("SERIALCOMM_SESSION_COMMANDS", "A,B,C")

	cfg, err := Load(New(), path)
	require.NoError(err)
	require.Equal(57600, cfg.Session.BaudRate)
	require.Equal([]string{"A", "B", "C"}, cfg.Session.Commands)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero baud", "session:\n  baud_rate: 0\n"},
		{"negative timeout", "session:\n  timeout_ms: -5\n"},
		{"negative interval", "session:\n  command_interval: -1\n"},
		{"empty commands", "session:\n  commands: []\n"},
		{"long delimiter", "session:\n  delimiter: abc\n"},
		{"data bits", "serial:\n  data_bits: 9\n"},
		{"parity", "serial:\n  parity: mark\n"},
		{"flow control", "serial:\n  flow_control: xonxoff\n"},
		{"log level", "logging:\n  level: loud\n"},
		{"log format", "logging:\n  format: xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(New(), writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	require := require.New(t)

	for in, want := range map[string]byte{
		"":     '\n',
		"\n":   '\n',
		`\n`:   '\n',
		`\r`:   '\r',
		`\x03`: 0x03,
		">":    '>',
	} {
		got, err := ParseDelimiter(in)
		require.NoError(err, in)
		require.Equal(want, got, in)
	}

	_, err := ParseDelimiter("ab")
	require.ErrorIs(err, session.ErrInvalidParams)
}
