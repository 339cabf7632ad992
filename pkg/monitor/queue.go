package monitor

import (
	"sync"
	"time"
)

// StatusQueue is the one-directional progress queue between the dispatcher
// and observers. It is best effort: pushes never block, a slow or absent
// reader costs the oldest messages once the bound is reached, and messages
// still queued when the queue closes are dropped.
type StatusQueue struct {
	mu     sync.Mutex
	items  []StatusMessage
	limit  int
	wake   chan struct{}
	closed bool
}

// NewStatusQueue creates an empty status queue holding at most limit
// messages. A limit of zero or less means unbounded.
func NewStatusQueue(limit int) *StatusQueue {
	return &StatusQueue{
		limit: limit,
		wake:  make(chan struct{}, 1),
	}
}

// Push enqueues one message. It never blocks and is safe to call after
// Close, where it becomes a no-op.
func (q *StatusQueue) Push(runID, stage, content string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		q.items = q.items[1:]
	}
	q.items = append(q.items, StatusMessage{
		Timestamp: time.Now(),
		RunID:     runID,
		Stage:     stage,
		Content:   content,
	})
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Pop removes and returns the oldest queued message without blocking.
func (q *StatusQueue) Pop() (StatusMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return StatusMessage{}, false
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return msg, true
}

// Len reports the number of queued messages.
func (q *StatusQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close marks the queue closed and wakes any blocked reader. Further
// pushes are dropped.
func (q *StatusQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Forward pumps messages to the given monitors until the queue is closed
// and drained, or the done channel fires. It is meant to run on its own
// goroutine; the writer side never waits for it.
func (q *StatusQueue) Forward(done <-chan struct{}, monitors ...Monitor) {
	for {
		for {
			msg, ok := q.Pop()
			if !ok {
				break
			}
			for _, m := range monitors {
				m.OnMessage(msg)
			}
		}

		q.mu.Lock()
		closed := q.closed
		remaining := len(q.items)
		q.mu.Unlock()
		if closed && remaining == 0 {
			return
		}

		select {
		case <-done:
			// Final drain so messages pushed just before done are not lost.
			for {
				msg, ok := q.Pop()
				if !ok {
					return
				}
				for _, m := range monitors {
					m.OnMessage(msg)
				}
			}
		case <-q.wake:
		}
	}
}
