package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type snapshotSink struct {
	mu   sync.Mutex
	last Snapshot
	all  []Snapshot
}

func (s *snapshotSink) observe(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = snap
	s.all = append(s.all, snap)
}

func (s *snapshotSink) latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func startLoop(t *testing.T, params Params, opener *fakeOpener) (*Loop, *snapshotSink, context.CancelFunc, chan error) {
	t.Helper()

	c, err := NewController(NewLink(nil, opener.open), NewEnumeratorIn(t.TempDir(), nil), params, nil)
	require.NoError(t, err)

	sink := &snapshotSink{}
	loop := NewLoop(c, sink.observe)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop, sink, cancel, done
}

func TestLoopRunsTimedSequence(t *testing.T) {
	require := require.New(t)

	opener := newFakeOpener()
	port := opener.add("/dev/ttyUSB0", newFakePort("a\n", "b\n", "c\n"))
	params := testParams("A", "B", "C")
	params.IntervalSeconds = 0.02

	loop, sink, _, _ := startLoop(t, params, opener)
	require.True(loop.Connect(""))
	require.True(loop.Unpause())

	require.Eventually(func() bool {
		return sink.latest().SequenceDone
	}, 2*time.Second, 5*time.Millisecond)

	snap := sink.latest()
	require.Equal(Exhausted, snap.State)
	require.Equal(3, snap.Index)
	require.Equal("c", snap.Message)
	require.Equal([]string{"A\r", "B\r", "C\r"}, port.Writes())
}

func TestLoopPauseDropsPendingTick(t *testing.T) {
	require := require.New(t)

	opener := newFakeOpener()
	port := opener.add("/dev/ttyUSB0", newFakePort())
	params := testParams("A", "B")
	params.IntervalSeconds = 0.05

	loop, sink, _, _ := startLoop(t, params, opener)
	require.True(loop.Connect(""))
	require.True(loop.Unpause())
	require.True(loop.Pause())

	time.Sleep(150 * time.Millisecond)
	require.True(loop.Refresh())
	require.Eventually(func() bool {
		snap := sink.latest()
		return snap.State == Idle && snap.Index == 0
	}, time.Second, 5*time.Millisecond)
	require.Equal([]string{"A\r"}, port.Writes())
}

func TestLoopProcessesEventsInOrder(t *testing.T) {
	require := require.New(t)

	opener := newFakeOpener()
	opener.add("/dev/ttyUSB0", newFakePort("1\n", "2\n"))

	loop, sink, _, _ := startLoop(t, testParams("A", "B"), opener)
	require.True(loop.Connect(""))
	require.True(loop.Send())
	require.True(loop.Send())
	require.True(loop.Refresh())

	require.Eventually(func() bool {
		return sink.latest().Index == 2
	}, time.Second, 5*time.Millisecond)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	var messages []string
	for _, s := range sink.all {
		if len(messages) == 0 || messages[len(messages)-1] != s.Message {
			messages = append(messages, s.Message)
		}
	}
	require.Equal([]string{"", "1", "2"}, messages)
}

func TestLoopReconfigureCopiesParams(t *testing.T) {
	require := require.New(t)

	loop, sink, _, _ := startLoop(t, testParams("A"), newFakeOpener())

	next := testParams("X", "Y")
	require.True(loop.Reconfigure(next))
	next.Commands[0] = "mutated"
	require.True(loop.Refresh())

	require.Eventually(func() bool {
		return sink.latest().Total == 2
	}, time.Second, 5*time.Millisecond)
	require.Equal([]string{"X", "Y"}, sink.latest().Params.Commands)
}

func TestLoopStop(t *testing.T) {
	require := require.New(t)

	opener := newFakeOpener()
	port := opener.add("/dev/ttyUSB0", newFakePort())

	loop, sink, cancel, done := startLoop(t, testParams("A"), opener)
	require.True(loop.Connect(""))
	require.Eventually(func() bool {
		return sink.latest().Connected
	}, time.Second, 5*time.Millisecond)

	cancel()
	require.ErrorIs(<-done, context.Canceled)
	done <- nil // let cleanup drain

	require.False(loop.Send())
	require.True(port.closed)
}
