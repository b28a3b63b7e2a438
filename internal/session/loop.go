package session

import (
	"context"
	"sync"
	"time"
)

// Loop owns a Controller and services its events one at a time on a single
// goroutine, in arrival order. A dispatch (write plus bounded read) always runs
// to completion before the next event, timer firings included.
type Loop struct {
	c        *Controller
	events   chan func()
	observer func(Snapshot)

	// timer is only touched from the loop goroutine
	timer *time.Timer

	stopOnce sync.Once
	stopped  chan struct{}
}

// NewLoop installs itself as c's scheduler. observer, if set, receives a
// snapshot after every event; it runs on the loop goroutine and must not block.
func NewLoop(c *Controller, observer func(Snapshot)) *Loop {
	l := &Loop{
		c:        c,
		events:   make(chan func(), 64),
		observer: observer,
		stopped:  make(chan struct{}),
	}
	c.SetScheduler(l)
	return l
}

// Run services events until ctx is done, then cancels the schedule and
// closes the link.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.stopped) })
	defer l.c.Close()

	l.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			ev()
			l.publish()
		}
	}
}

// Schedule implements Scheduler
func (l *Loop) Schedule(d time.Duration, token uint64) {
	l.Cancel()
	l.timer = time.AfterFunc(d, func() {
		l.post(func() { _ = l.c.IntervalElapsed(token) })
	})
}

// Cancel implements Scheduler. A tick that already fired is dropped by the
// controller's token check.
func (l *Loop) Cancel() {
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
}

func (l *Loop) Connect(port string) bool { return l.post(func() { _ = l.c.Connect(port) }) }
func (l *Loop) Disconnect() bool         { return l.post(func() { _ = l.c.Disconnect() }) }
func (l *Loop) Send() bool               { return l.post(func() { _ = l.c.Send() }) }
func (l *Loop) Read() bool               { return l.post(func() { _ = l.c.Read() }) }
func (l *Loop) Pause() bool              { return l.post(l.c.Pause) }
func (l *Loop) Unpause() bool            { return l.post(func() { _ = l.c.Unpause() }) }

func (l *Loop) SendRaw(command string) bool {
	return l.post(func() { _ = l.c.SendRaw(command) })
}

func (l *Loop) Reconfigure(p Params) bool {
	p = p.clone()
	return l.post(func() { _ = l.c.Reconfigure(p) })
}

// Refresh publishes a fresh snapshot without changing anything
func (l *Loop) Refresh() bool { return l.post(func() {}) }

// post queues ev; it reports false once the loop has stopped
func (l *Loop) post(ev func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.events <- ev:
		return true
	case <-l.stopped:
		return false
	}
}

func (l *Loop) publish() {
	if l.observer != nil {
		l.observer(l.c.Snapshot())
	}
}
