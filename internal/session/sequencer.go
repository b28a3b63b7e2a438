package session

import "time"

// State is the sequencer state derived from the index and the armed flag
type State int

const (
	Idle State = iota
	Armed
	Exhausted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Armed:
		return "ARMED"
	case Exhausted:
		return "EXHAUSTED"
	default:
		return "UNKNOWN"
	}
}

// DispatchFunc writes one command and reads its response.
// A non-nil error aborts the dispatch and leaves the index where it was.
type DispatchFunc func(command string) error

// Step tells the controller what a transition did and what to do next
type Step struct {
	Dispatched bool
	Command    string
	// Schedule asks for IntervalElapsed(Token) after Interval
	Schedule bool
	Interval time.Duration
	Token    uint64
	// AutoPause means the last command went out and the schedule must stop
	AutoPause bool
}

// Sequencer walks an ordered command list, one command per dispatch.
// The index only moves forward, is capped at len(commands), and returns to 0
// only through Reset.
type Sequencer struct {
	commands []string
	interval time.Duration

	index int
	armed bool
	// token identifies the one schedule that may still fire
	token uint64
	// ready gates every dispatch, placeholders included
	ready func() bool
}

// NewSequencer copies commands; the DefaultCommand placeholder becomes a no-op entry
func NewSequencer(commands []string, interval time.Duration) *Sequencer {
	cmds := make([]string, len(commands))
	for i, c := range commands {
		if c != DefaultCommand {
			cmds[i] = c
		}
	}
	if interval < 0 {
		interval = 0
	}
	return &Sequencer{
		commands: cmds,
		interval: interval,
	}
}

func (s *Sequencer) State() State {
	if s.index >= len(s.commands) {
		return Exhausted
	}
	if s.armed {
		return Armed
	}
	return Idle
}

func (s *Sequencer) Index() int { return s.index }

func (s *Sequencer) Len() int { return len(s.commands) }

func (s *Sequencer) Interval() time.Duration { return s.interval }

// Current returns the command at the index, or "" once exhausted
func (s *Sequencer) Current() string {
	if s.index >= len(s.commands) {
		return ""
	}
	return s.commands[s.index]
}

// SetReady installs the check run before every dispatch. While it reports
// false nothing is dispatched, the index stays put and ErrNotConnected is returned.
func (s *Sequencer) SetReady(ready func() bool) {
	s.ready = ready
}

// Reset returns to Idle at index 0 and invalidates any pending schedule
func (s *Sequencer) Reset() {
	s.index = 0
	s.armed = false
	s.token++
}

// Replace swaps in a new command list and interval, then resets. The token
// counter carries over so ticks scheduled for the old list stay stale.
func (s *Sequencer) Replace(commands []string, interval time.Duration) {
	next := NewSequencer(commands, interval)
	s.commands = next.commands
	s.interval = next.interval
	s.Reset()
}

// Unpause dispatches the current command immediately and arms the interval
// schedule for the next one. Once exhausted it dispatches nothing and asks
// for the auto-pause again; while Armed it does nothing.
func (s *Sequencer) Unpause(dispatch DispatchFunc) (Step, error) {
	switch s.State() {
	case Exhausted:
		return Step{AutoPause: true}, nil
	case Armed:
		return Step{}, nil
	}

	step, err := s.dispatchCurrent(dispatch)
	if err != nil {
		return step, err
	}
	if s.index >= len(s.commands) {
		step.AutoPause = true
		return step, nil
	}

	s.armed = true
	return s.schedule(step), nil
}

// IntervalElapsed handles a timer firing. Tokens from cancelled or superseded
// schedules are ignored, as is any firing outside Armed.
func (s *Sequencer) IntervalElapsed(token uint64, dispatch DispatchFunc) (Step, error) {
	if token != s.token || s.State() != Armed {
		return Step{}, nil
	}

	step, err := s.dispatchCurrent(dispatch)
	if err != nil {
		// No automatic retry: disarm and keep the index for a manual resend.
		s.disarm()
		return step, err
	}
	if s.index >= len(s.commands) {
		s.disarm()
		step.AutoPause = true
		return step, nil
	}

	return s.schedule(step), nil
}

// ManualSend dispatches the current command regardless of Idle/Armed.
// Once exhausted it dispatches the empty command, so the device still gets a
// bare terminator and one read, and the index stays capped.
func (s *Sequencer) ManualSend(dispatch DispatchFunc) (Step, error) {
	step, err := s.dispatchCurrent(dispatch)
	if err != nil {
		return step, err
	}
	if s.armed && s.index >= len(s.commands) {
		s.disarm()
		step.AutoPause = true
	}
	return step, nil
}

func (s *Sequencer) dispatchCurrent(dispatch DispatchFunc) (Step, error) {
	if s.ready != nil && !s.ready() {
		return Step{}, ErrNotConnected
	}

	step := Step{Command: s.Current()}
	if step.Command != "" || s.index >= len(s.commands) {
		if err := dispatch(step.Command); err != nil {
			return step, err
		}
		step.Dispatched = true
	}
	if s.index < len(s.commands) {
		s.index++
	}
	return step, nil
}

func (s *Sequencer) schedule(step Step) Step {
	s.token++
	step.Schedule = true
	step.Interval = s.interval
	step.Token = s.token
	return step
}

func (s *Sequencer) disarm() {
	s.armed = false
	s.token++
}
