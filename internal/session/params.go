package session

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultBaudRate     = 9600
	DefaultTimeoutMs    = 5000
	DefaultSamplingRate = 10.0

	// DefaultCommand is the placeholder shown for an unset command field.
	// It is treated as an empty (no-op) command.
	DefaultCommand = "No Command"

	// Terminator is appended to every dispatched command
	Terminator = '\r'
	// Delimiter frames device responses
	Delimiter = '\n'
	// BufMax is the capacity of the response buffer; longer responses are truncated
	BufMax = 256
)

var (
	ErrNotConnected  = errors.New("not connected to device")
	ErrInvalidParams = errors.New("invalid session parameters")
	ErrShortWrite    = errors.New("short write")
)

// Params is the full set of operator-editable session parameters
type Params struct {
	Port            string
	BaudRate        int
	TimeoutMillis   int
	SamplingRate    float64 // stored, not used by the session logic
	IntervalSeconds float64
	Commands        []string
	Greeting        string
	Delimiter       byte
}

// ConnectionConfig is the subset of Params that governs the link
type ConnectionConfig struct {
	Port      string
	BaudRate  int
	Timeout   time.Duration
	Delimiter byte
}

// DefaultParams mirrors the defaults of the parameter panel
func DefaultParams() Params {
	return Params{
		BaudRate:      DefaultBaudRate,
		TimeoutMillis: DefaultTimeoutMs,
		SamplingRate:  DefaultSamplingRate,
		Commands:      []string{DefaultCommand, DefaultCommand},
		Delimiter:     Delimiter,
	}
}

// Validate checks the numeric parameters and the command list
func (p Params) Validate() error {
	if p.BaudRate <= 0 {
		return fmt.Errorf("%w: baud rate must be a positive integer, got %d", ErrInvalidParams, p.BaudRate)
	}
	if p.TimeoutMillis <= 0 {
		return fmt.Errorf("%w: timeout must be a positive integer, got %d", ErrInvalidParams, p.TimeoutMillis)
	}
	if math.IsNaN(p.IntervalSeconds) || math.IsInf(p.IntervalSeconds, 0) || p.IntervalSeconds < 0 {
		return fmt.Errorf("%w: command interval must be non-negative, got %v", ErrInvalidParams, p.IntervalSeconds)
	}
	if len(p.Commands) == 0 {
		return fmt.Errorf("%w: at least one command is required", ErrInvalidParams)
	}
	return nil
}

// Connection derives the link configuration
func (p Params) Connection() ConnectionConfig {
	delim := p.Delimiter
	if delim == 0 {
		delim = Delimiter
	}
	return ConnectionConfig{
		Port:      p.Port,
		BaudRate:  p.BaudRate,
		Timeout:   time.Duration(p.TimeoutMillis) * time.Millisecond,
		Delimiter: delim,
	}
}

// Interval returns the command interval as a duration
func (p Params) Interval() time.Duration {
	return IntervalFromSeconds(p.IntervalSeconds)
}

// clone copies the command slice so callers cannot mutate a live session
func (p Params) clone() Params {
	p.Commands = append([]string(nil), p.Commands...)
	return p
}

// IntervalFromSeconds converts fractional seconds to a duration without
// binary floating point drift (0.3s is exactly 300ms).
func IntervalFromSeconds(s float64) time.Duration {
	if math.IsNaN(s) || math.IsInf(s, 0) || s <= 0 {
		return 0
	}
	ns := decimal.NewFromFloat(s).Shift(9).Round(0)
	if ns.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns.IntPart())
}
