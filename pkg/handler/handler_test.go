package handler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"deskpilot/pkg/agent"
	"deskpilot/pkg/api"
	"deskpilot/pkg/config"
	"deskpilot/pkg/monitor"
	"deskpilot/pkg/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordResponder struct {
	mu      sync.Mutex
	replies []string
	signals []string
}

func (r *recordResponder) SendReply(session api.SessionContext, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, content)
	return nil
}

func (r *recordResponder) SendSignal(session api.SessionContext, signal string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signals = append(r.signals, signal)
	return nil
}

func (r *recordResponder) lastReply() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.replies) == 0 {
		return ""
	}
	return r.replies[len(r.replies)-1]
}

func (r *recordResponder) hasReplyContaining(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reply := range r.replies {
		if strings.Contains(reply, substr) {
			return true
		}
	}
	return false
}

type donePlanner struct {
	block chan struct{} // optional; Plan waits on it when non-nil
}

func (p *donePlanner) Plan(ctx context.Context, req planner.Request) (*api.Plan, error) {
	if p.block != nil {
		<-p.block
	}
	return &api.Plan{Done: "Objective achieved"}, nil
}

func (p *donePlanner) IsTransientError(err error) bool { return false }

type nopController struct{}

func (nopController) Click(x, y, clicks int) error { return nil }

func (nopController) TypeText(text string, interval float64) error { return nil }

func (nopController) PressKey(key string, p int, interval float64) error { return nil }

func (nopController) Hotkey(keys ...string) error { return nil }

func (nopController) Sleep(seconds float64) error { return nil }

func (nopController) CaptureScreen() (string, error) { return "c2NyZWVu", nil }

func newTestHandler(p planner.Client) (*RunHandler, *recordResponder) {
	sys := config.DefaultSystemConfig()
	sys.WarmupEnabled = false
	status := monitor.NewStatusQueue(0)
	engine := agent.New(p, nopController{}, status, sys)
	h := NewRunHandler(engine, status)
	r := &recordResponder{}
	h.SetResponder(r)
	return h, r
}

func session() api.SessionContext {
	return api.SessionContext{ChannelID: "web", UserID: "u1", ChatID: "c1", Username: "op"}
}

func TestStopWithoutRun(t *testing.T) {
	h, r := newTestHandler(&donePlanner{})

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "/stop"})

	assert.Equal(t, "No run in progress.", r.lastReply())
}

func TestStatusAndHelpCommands(t *testing.T) {
	h, r := newTestHandler(&donePlanner{})

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "/status"})
	assert.True(t, r.hasReplyContaining("Idle"))

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "/help"})
	assert.True(t, r.hasReplyContaining("/stop"))

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "/banana"})
	assert.True(t, r.hasReplyContaining("Unknown command"))
}

func TestEmptyMessageIsIgnored(t *testing.T) {
	h, r := newTestHandler(&donePlanner{})

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "   "})

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.replies)
}

func TestObjectiveRunsToOutcome(t *testing.T) {
	h, r := newTestHandler(&donePlanner{})

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "do nothing"})

	// The idle signal is the last thing the run goroutine emits.
	require.Eventually(t, func() bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		return len(r.signals) == 2
	}, 5*time.Second, 10*time.Millisecond)

	assert.True(t, r.hasReplyContaining("Objective achieved"))

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []string{api.SignalRunning, api.SignalIdle}, r.signals)
}

func TestConcurrentObjectiveRejected(t *testing.T) {
	p := &donePlanner{block: make(chan struct{})}
	h, r := newTestHandler(p)

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "first objective"})

	require.Eventually(t, func() bool {
		return h.engine.Running()
	}, 5*time.Second, 10*time.Millisecond)

	h.OnMessage(&api.UnifiedMessage{Session: session(), Content: "second objective"})
	assert.True(t, r.hasReplyContaining("already in progress"))

	close(p.block)
	require.Eventually(t, func() bool {
		return r.hasReplyContaining("Objective achieved")
	}, 5*time.Second, 10*time.Millisecond)
}
