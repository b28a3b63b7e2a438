package session

import (
	"bytes"
	"errors"
	"sync"
	"time"

	serial "github.com/allbin/go-serialcomm"
)

// fakePort answers each write with the next queued response
type fakePort struct {
	mu         sync.Mutex
	written    bytes.Buffer
	writes     []string
	responses  [][]byte
	rx         []byte
	writeErr   error
	readErr    error
	closed     bool
	closeCount int
	flushes    int
}

var _ serial.Port = (*fakePort)(nil)

func newFakePort(responses ...string) *fakePort {
	f := &fakePort{}
	for _, r := range responses {
		f.responses = append(f.responses, []byte(r))
	}
	return f
}

func (f *fakePort) Write(data []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, serial.ErrPortClosed
	}
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written.Write(data)
	f.writes = append(f.writes, string(data))
	if len(f.responses) > 0 {
		f.rx = append(f.rx, f.responses[0]...)
		f.responses = f.responses[1:]
	}
	return len(data), nil
}

// feed makes bytes available without a preceding write
func (f *fakePort) feed(data string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx = append(f.rx, data...)
}

func (f *fakePort) ReadTimeout(buf []byte, timeout time.Duration) (int, error) {
	f.mu.Lock()
	if f.readErr != nil {
		f.mu.Unlock()
		return 0, f.readErr
	}
	if len(f.rx) == 0 {
		f.mu.Unlock()
		time.Sleep(timeout)
		return 0, nil
	}
	n := copy(buf, f.rx)
	f.rx = f.rx[n:]
	f.mu.Unlock()
	return n, nil
}

func (f *fakePort) Drain() error { return nil }

func (f *fakePort) FlushInput() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	f.rx = nil
	return nil
}

func (f *fakePort) FlushOutput() error { return nil }

func (f *fakePort) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCount++
	if f.closed {
		return serial.ErrPortClosed
	}
	f.closed = true
	return nil
}

func (f *fakePort) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.writes...)
}

// fakeOpener hands out ports by path; unknown paths fail like a missing device
type fakeOpener struct {
	mu     sync.Mutex
	ports  map[string]*fakePort
	opened []string
	bauds  []int
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{ports: map[string]*fakePort{}}
}

func (o *fakeOpener) add(path string, p *fakePort) *fakePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ports[path] = p
	return p
}

func (o *fakeOpener) open(path string, opts ...serial.Option) (serial.Port, error) {
	cfg := serial.DefaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.opened = append(o.opened, path)
	o.bauds = append(o.bauds, cfg.BaudRate)
	p, ok := o.ports[path]
	if !ok {
		return nil, serial.ErrDeviceNotFound
	}
	return p, nil
}

// fakeScheduler records schedules so tests can fire them by hand
type fakeScheduler struct {
	pending   bool
	token     uint64
	interval  time.Duration
	schedules int
	cancels   int
}

func (s *fakeScheduler) Schedule(d time.Duration, token uint64) {
	s.pending = true
	s.token = token
	s.interval = d
	s.schedules++
}

func (s *fakeScheduler) Cancel() {
	s.pending = false
	s.cancels++
}

var errBoom = errors.New("boom")
