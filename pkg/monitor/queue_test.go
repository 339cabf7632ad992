package monitor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueuePreservesOrder(t *testing.T) {
	q := NewStatusQueue(0)
	q.Push("run", StageDispatch, "first")
	q.Push("run", StageDispatch, "second")
	q.Push("run", StageFinal, "third")

	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"first", "second", "third"} {
		msg, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, msg.Content)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
}

func TestQueueBoundDropsOldest(t *testing.T) {
	q := NewStatusQueue(2)
	q.Push("run", StageDispatch, "first")
	q.Push("run", StageDispatch, "second")
	q.Push("run", StageDispatch, "third")

	require.Equal(t, 2, q.Len())
	msg, _ := q.Pop()
	assert.Equal(t, "second", msg.Content)
	msg, _ = q.Pop()
	assert.Equal(t, "third", msg.Content)
}

func TestQueuePushAfterCloseIsNoop(t *testing.T) {
	q := NewStatusQueue(0)
	q.Close()
	q.Push("run", StageDispatch, "late")
	assert.Zero(t, q.Len())
}

// collectMonitor gathers forwarded messages for assertions.
type collectMonitor struct {
	mu   sync.Mutex
	msgs []StatusMessage
}

func (c *collectMonitor) Start() error { return nil }
func (c *collectMonitor) Stop() error  { return nil }

func (c *collectMonitor) OnMessage(msg StatusMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
}

func (c *collectMonitor) contents() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, m := range c.msgs {
		out = append(out, m.Content)
	}
	return out
}

func TestForwardDeliversAndDrainsOnDone(t *testing.T) {
	q := NewStatusQueue(0)
	sink := &collectMonitor{}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		q.Forward(done, sink)
		close(finished)
	}()

	for i := 0; i < 5; i++ {
		q.Push("run", StageDispatch, fmt.Sprintf("msg-%d", i))
	}
	close(done)

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Forward did not return after done")
	}

	assert.Equal(t, []string{"msg-0", "msg-1", "msg-2", "msg-3", "msg-4"}, sink.contents())
}

func TestForwardStopsWhenQueueCloses(t *testing.T) {
	q := NewStatusQueue(0)
	sink := &collectMonitor{}

	q.Push("run", StageDispatch, "only")
	q.Close()

	finished := make(chan struct{})
	go func() {
		q.Forward(make(chan struct{}), sink)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("Forward did not return after Close")
	}

	assert.Equal(t, []string{"only"}, sink.contents())
}
