package session

import (
	"go.uber.org/zap"

	serial "github.com/allbin/go-serialcomm"
)

// Enumerator lists candidate serial ports for display
type Enumerator struct {
	dir string
	log *zap.Logger
}

// NewEnumerator scans /dev
func NewEnumerator(log *zap.Logger) *Enumerator {
	return NewEnumeratorIn(serial.DeviceDir, log)
}

// NewEnumeratorIn scans dir instead of /dev
func NewEnumeratorIn(dir string, log *zap.Logger) *Enumerator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Enumerator{dir: dir, log: log}
}

// ListCandidatePorts never fails: an unreadable directory is logged and
// reported as an empty list. Order is not stable across calls.
func (e *Enumerator) ListCandidatePorts() []string {
	ports, err := serial.ScanPorts(e.dir)
	if err != nil {
		e.log.Warn("Port scan failed", zap.String("dir", e.dir), zap.Error(err))
		return []string{}
	}
	return ports
}
