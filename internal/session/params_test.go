package session

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultParams(t *testing.T) {
	require := require.New(t)

	p := DefaultParams()
	require.Equal(9600, p.BaudRate)
	require.Equal(5000, p.TimeoutMillis)
	require.Equal(10.0, p.SamplingRate)
	require.Zero(p.IntervalSeconds)
	require.Equal([]string{"No Command", "No Command"}, p.Commands)
	require.NoError(p.Validate())

	conn := p.Connection()
	require.Equal(5*time.Second, conn.Timeout)
	require.Equal(byte('\n'), conn.Delimiter)
}

func TestParamsConnectionDefaultsDelimiter(t *testing.T) {
	p := DefaultParams()
	p.Delimiter = 0
	require.Equal(t, byte(Delimiter), p.Connection().Delimiter)

	p.Delimiter = '>'
	require.Equal(t, byte('>'), p.Connection().Delimiter)
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr bool
	}{
		{"defaults", func(*Params) {}, false},
		{"fractional interval", func(p *Params) { p.IntervalSeconds = 0.25 }, false},
		{"single command", func(p *Params) { p.Commands = []string{"X"} }, false},
		{"zero baud", func(p *Params) { p.BaudRate = 0 }, true},
		{"zero timeout", func(p *Params) { p.TimeoutMillis = 0 }, true},
		{"negative interval", func(p *Params) { p.IntervalSeconds = -1 }, true},
		{"nan interval", func(p *Params) { p.IntervalSeconds = math.NaN() }, true},
		{"inf interval", func(p *Params) { p.IntervalSeconds = math.Inf(1) }, true},
		{"empty commands", func(p *Params) { p.Commands = []string{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParams)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestIntervalFromSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want time.Duration
	}{
		{0, 0},
		{-1, 0},
		{math.NaN(), 0},
		{0.3, 300 * time.Millisecond},
		{0.1, 100 * time.Millisecond},
		{1.5, 1500 * time.Millisecond},
		{3, 3 * time.Second},
		{0.000000001, time.Nanosecond},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, IntervalFromSeconds(tt.in), "seconds=%v", tt.in)
	}
}

func TestEnumeratorListsTTYs(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	for _, name := range []string{"ttyUSB0", "ttyACM1", "null", "random"} {
		require.NoError(os.WriteFile(filepath.Join(dir, name), nil, 0o600))
	}

	ports := NewEnumeratorIn(dir, nil).ListCandidatePorts()
	require.ElementsMatch([]string{
		filepath.Join(dir, "ttyUSB0"),
		filepath.Join(dir, "ttyACM1"),
	}, ports)
}

func TestEnumeratorMissingDir(t *testing.T) {
	ports := NewEnumeratorIn(filepath.Join(t.TempDir(), "missing"), nil).ListCandidatePorts()
	require.NotNil(t, ports)
	require.Empty(t, ports)
}
