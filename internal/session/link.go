package session

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	serial "github.com/allbin/go-serialcomm"
)

// OpenFunc opens a serial device; serial.Open in production
type OpenFunc func(path string, opts ...serial.Option) (serial.Port, error)

// Link owns the single connection of a session.
// It is not safe for concurrent use; the session loop serializes access.
type Link struct {
	open OpenFunc
	opts []serial.Option
	log  *zap.Logger

	port serial.Port
	path string
	buf  [BufMax]byte
}

// NewLink creates a disconnected link. opts are applied on every Open before the baud rate.
func NewLink(log *zap.Logger, open OpenFunc, opts ...serial.Option) *Link {
	if open == nil {
		open = serial.Open
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Link{
		open: open,
		opts: opts,
		log:  log,
	}
}

// Connected reports whether the link holds an open port
func (l *Link) Connected() bool {
	return l.port != nil
}

// Path returns the device path of the open port, or "" when not connected
func (l *Link) Path() string {
	return l.path
}

// Open connects to path at baud. Any existing connection is released first,
// so a failed reopen leaves the link not connected.
func (l *Link) Open(path string, baud int) error {
	_ = l.Close()

	opts := make([]serial.Option, 0, len(l.opts)+1)
	opts = append(opts, l.opts...)
	opts = append(opts, serial.WithBaudRate(baud))

	p, err := l.open(path, opts...)
	if err != nil {
		l.log.Warn("Failed to open serial port",
			zap.String("port", path),
			zap.Int("baud_rate", baud),
			zap.Error(err),
		)
		return fmt.Errorf("open %s at %d baud: %w", path, baud, err)
	}

	// Stale bytes from before the open are never part of a response.
	if err := p.FlushInput(); err != nil {
		l.log.Debug("Input flush failed", zap.String("port", path), zap.Error(err))
	}
	if err := p.FlushOutput(); err != nil {
		l.log.Debug("Output flush failed", zap.String("port", path), zap.Error(err))
	}

	l.port = p
	l.path = path

	l.log.Info("Serial port opened",
		zap.String("port", path),
		zap.Int("baud_rate", baud),
	)
	return nil
}

// Close releases the port. Closing a disconnected link is a no-op.
func (l *Link) Close() error {
	if l.port == nil {
		return nil
	}

	err := l.port.Close()
	l.log.Info("Serial port closed", zap.String("port", l.path))
	l.port = nil
	l.path = ""
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

// Write sends data exactly as given
func (l *Link) Write(data []byte) error {
	if l.port == nil {
		return ErrNotConnected
	}

	n, err := l.port.Write(data)
	if err != nil {
		l.log.Error("Failed to write to serial port",
			zap.String("port", l.path),
			zap.Int("bytes_to_write", len(data)),
			zap.Error(err),
		)
		return fmt.Errorf("write: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrShortWrite, n, len(data))
	}

	l.log.Debug("Data written to serial port",
		zap.Int("bytes_written", n),
		zap.ByteString("data", data),
	)
	return nil
}

// ReadUntil reads into the link's buffer until delim is seen, maxBytes bytes
// have been collected, or timeout passes without a new byte. maxBytes <= 0 or
// larger than BufMax means BufMax.
//
// The delimiter is not included in data. truncated is false only when the
// delimiter ended the read. A timeout is not an error. data aliases the
// internal buffer and is overwritten by the next read.
func (l *Link) ReadUntil(delim byte, maxBytes int, timeout time.Duration) (data []byte, truncated bool, err error) {
	if l.port == nil {
		return nil, true, ErrNotConnected
	}
	if maxBytes <= 0 || maxBytes > len(l.buf) {
		maxBytes = len(l.buf)
	}

	start := time.Now()
	n := 0
	for n < maxBytes {
		// One byte at a time so nothing past the delimiter is consumed.
		k, err := l.port.ReadTimeout(l.buf[n:n+1], timeout)
		if err != nil {
			l.log.Error("Failed to read from serial port", zap.String("port", l.path), zap.Error(err))
			return l.buf[:n], true, fmt.Errorf("read: %w", err)
		}
		if k == 0 {
			l.log.Debug("Read timed out",
				zap.Int("bytes_read", n),
				zap.Duration("elapsed", time.Since(start)),
			)
			return l.buf[:n], true, nil
		}
		if l.buf[n] == delim {
			l.log.Debug("Data read from serial port", zap.ByteString("data", l.buf[:n]))
			return l.buf[:n], false, nil
		}
		n++
	}

	l.log.Debug("Read buffer full", zap.Int("bytes_read", n))
	return l.buf[:n], true, nil
}
