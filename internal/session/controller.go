package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Status texts shown by front ends
const (
	StatusNotConnected  = "Not connected to device."
	StatusConnected     = "Connected."
	StatusConnectFailed = "Connection failed. Check port configuration."
)

// Scheduler delivers IntervalElapsed(token) back to the controller after d,
// on the same goroutine that drives the controller.
type Scheduler interface {
	Schedule(d time.Duration, token uint64)
	Cancel()
}

type noopScheduler struct{}

func (noopScheduler) Schedule(time.Duration, uint64) {}
func (noopScheduler) Cancel()                        {}

// Snapshot is a copy of everything a front end displays
type Snapshot struct {
	SessionID    string
	Status       string
	Message      string
	LastCommand  string
	Dispatches   int
	LastRead     []byte
	Truncated    bool
	Reads        int
	LastError    string
	Connected    bool
	Port         string
	State        State
	Index        int
	Total        int
	SequenceDone bool
	Params       Params
}

// Controller turns operator events into link and sequencer calls.
// It is not safe for concurrent use: every method must be called from the
// one goroutine that owns the session (see Loop).
type Controller struct {
	id        string
	log       *zap.Logger
	link      *Link
	ports     *Enumerator
	seq       *Sequencer
	params    Params
	scheduler Scheduler

	status       string
	message      string
	lastCommand  string
	dispatches   int
	lastRead     []byte
	truncated    bool
	reads        int
	lastErr      error
	sequenceDone bool
}

// NewController validates params and starts in the not connected, Idle state
func NewController(link *Link, ports *Enumerator, params Params, log *zap.Logger) (*Controller, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if ports == nil {
		ports = NewEnumerator(log)
	}

	id := uuid.NewString()
	params = params.clone()
	seq := NewSequencer(params.Commands, params.Interval())
	seq.SetReady(link.Connected)
	return &Controller{
		id:        id,
		log:       log.With(zap.String("session_id", id)),
		link:      link,
		ports:     ports,
		seq:       seq,
		params:    params,
		scheduler: noopScheduler{},
		status:    StatusNotConnected,
	}, nil
}

// SetScheduler installs the timer source used for interval dispatches
func (c *Controller) SetScheduler(s Scheduler) {
	if s == nil {
		s = noopScheduler{}
	}
	c.scheduler = s
}

func (c *Controller) ID() string      { return c.id }
func (c *Controller) Status() string  { return c.status }
func (c *Controller) Message() string { return c.message }

// LastRead returns a copy of the bytes of the last read
func (c *Controller) LastRead() []byte {
	return append([]byte(nil), c.lastRead...)
}

// Sequencer exposes the state machine for inspection
func (c *Controller) Sequencer() *Sequencer { return c.seq }

// Ports lists candidate ports; recomputed on every call
func (c *Controller) Ports() []string {
	return c.ports.ListCandidatePorts()
}

// Connect opens port (or the configured one when port is empty) at the
// configured baud rate and sends the greeting command if one is set.
// The sequencer is not touched.
func (c *Controller) Connect(port string) error {
	if port != "" {
		c.params.Port = port
	}
	if c.params.Port == "" {
		if candidates := c.Ports(); len(candidates) > 0 {
			c.params.Port = candidates[0]
		}
	}

	conn := c.params.Connection()
	if err := c.link.Open(conn.Port, conn.BaudRate); err != nil {
		c.status = StatusConnectFailed
		return c.fail("connect", err)
	}

	c.status = StatusConnected
	c.lastErr = nil
	c.log.Info("Connected", zap.String("port", conn.Port), zap.Int("baud_rate", conn.BaudRate))

	if c.params.Greeting != "" {
		if err := c.dispatch(c.params.Greeting); err != nil {
			return c.fail("greeting", err)
		}
	}
	return nil
}

// Disconnect closes the link
func (c *Controller) Disconnect() error {
	err := c.link.Close()
	c.status = StatusNotConnected
	if err != nil {
		return c.fail("disconnect", err)
	}
	return nil
}

// Send dispatches the current command of the list and advances the index
func (c *Controller) Send() error {
	step, err := c.seq.ManualSend(c.dispatch)
	c.apply(step)
	if err != nil {
		return c.fail("send", err)
	}
	c.lastErr = nil
	return nil
}

// SendRaw dispatches command outside the command list
func (c *Controller) SendRaw(command string) error {
	if command == "" {
		return nil
	}
	if err := c.dispatch(command); err != nil {
		return c.fail("send raw", err)
	}
	c.lastErr = nil
	return nil
}

// Read performs one bounded read independent of the sequencer
func (c *Controller) Read() error {
	if err := c.read(); err != nil {
		return c.fail("read", err)
	}
	c.lastErr = nil
	return nil
}

// Unpause starts the timed sequence from the current index
func (c *Controller) Unpause() error {
	c.sequenceDone = false
	step, err := c.seq.Unpause(c.dispatch)
	c.apply(step)
	if err != nil {
		return c.fail("unpause", err)
	}
	c.lastErr = nil
	return nil
}

// Pause cancels any pending dispatch and resets the sequence
func (c *Controller) Pause() {
	c.scheduler.Cancel()
	c.seq.Reset()
	c.sequenceDone = false
	c.log.Info("Paused")
}

// IntervalElapsed is delivered by the Scheduler; stale tokens are ignored
func (c *Controller) IntervalElapsed(token uint64) error {
	step, err := c.seq.IntervalElapsed(token, c.dispatch)
	if err != nil {
		c.scheduler.Cancel()
		return c.fail("interval dispatch", err)
	}
	c.apply(step)
	return nil
}

// Reconfigure validates and applies params as a whole, then resets the sequence.
// Invalid params leave the session unchanged. The open connection is kept;
// a new baud rate takes effect on the next Connect.
func (c *Controller) Reconfigure(params Params) error {
	if err := params.Validate(); err != nil {
		return c.fail("reconfigure", err)
	}

	c.scheduler.Cancel()
	c.params = params.clone()
	c.seq.Replace(c.params.Commands, c.params.Interval())
	c.sequenceDone = false
	c.lastErr = nil

	c.log.Info("Reconfigured",
		zap.Int("baud_rate", c.params.BaudRate),
		zap.Int("timeout_ms", c.params.TimeoutMillis),
		zap.Float64("interval_s", c.params.IntervalSeconds),
		zap.Int("commands", len(c.params.Commands)),
	)
	return nil
}

// Close releases the link and any pending schedule
func (c *Controller) Close() error {
	c.scheduler.Cancel()
	return c.link.Close()
}

// Snapshot copies the current outputs and state
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:    c.id,
		Status:       c.status,
		Message:      c.message,
		LastCommand:  c.lastCommand,
		Dispatches:   c.dispatches,
		LastRead:     c.LastRead(),
		Truncated:    c.truncated,
		Reads:        c.reads,
		Connected:    c.link.Connected(),
		Port:         c.params.Port,
		State:        c.seq.State(),
		Index:        c.seq.Index(),
		Total:        c.seq.Len(),
		SequenceDone: c.sequenceDone,
		Params:       c.params.clone(),
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

func (c *Controller) apply(step Step) {
	if step.Dispatched {
		c.log.Info("Command dispatched",
			zap.String("command", step.Command),
			zap.Int("index", c.seq.Index()),
			zap.Int("total", c.seq.Len()),
		)
	}
	if step.Schedule {
		c.scheduler.Schedule(step.Interval, step.Token)
	}
	if step.AutoPause {
		c.scheduler.Cancel()
		c.sequenceDone = true
		c.log.Info("Sequence complete, auto-paused")
	}
}

// dispatch writes command plus terminator and reads one response
func (c *Controller) dispatch(command string) error {
	if !c.link.Connected() {
		return ErrNotConnected
	}
	if err := c.link.Write([]byte(command + string(Terminator))); err != nil {
		c.message = fmt.Sprintf("Write failed: %v", err)
		return err
	}
	c.lastCommand = command
	c.dispatches++
	return c.read()
}

func (c *Controller) read() error {
	conn := c.params.Connection()
	data, truncated, err := c.link.ReadUntil(conn.Delimiter, BufMax, conn.Timeout)
	if errors.Is(err, ErrNotConnected) {
		return err
	}

	c.reads++
	c.lastRead = append(c.lastRead[:0], data...)
	c.truncated = truncated
	c.message = string(data)
	if err != nil {
		c.message = fmt.Sprintf("Read failed: %v", err)
		return err
	}
	return nil
}

func (c *Controller) fail(op string, err error) error {
	c.lastErr = err
	if errors.Is(err, ErrNotConnected) {
		c.log.Debug("Event ignored while not connected", zap.String("event", op))
	} else {
		c.log.Warn("Session event failed", zap.String("event", op), zap.Error(err))
	}
	return err
}
