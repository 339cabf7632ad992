package gateway

import (
	"testing"

	"deskpilot/pkg/api"
	"deskpilot/pkg/monitor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	id      string
	started bool
	stopped bool
	sent    []string
	signals []string
}

func (c *fakeChannel) ID() string { return c.id }

func (c *fakeChannel) Start(ctx api.ChannelContext) error { c.started = true; return nil }

func (c *fakeChannel) Stop() error { c.stopped = true; return nil }

func (c *fakeChannel) Send(session api.SessionContext, message string) error {
	c.sent = append(c.sent, message)
	return nil
}

// signalingChannel additionally records control signals.
type signalingChannel struct {
	fakeChannel
}

func (c *signalingChannel) SendSignal(session api.SessionContext, signal string) error {
	c.signals = append(c.signals, signal)
	return nil
}

func TestManagerRoutesReplies(t *testing.T) {
	gw := NewGatewayManager()
	ch := &fakeChannel{id: "web"}
	gw.Register(ch)

	session := api.SessionContext{ChannelID: "web", UserID: "u1"}
	require.NoError(t, gw.SendReply(session, "hello"))
	assert.Equal(t, []string{"hello"}, ch.sent)

	err := gw.SendReply(api.SessionContext{ChannelID: "missing"}, "x")
	assert.Error(t, err)
}

func TestManagerSignals(t *testing.T) {
	gw := NewGatewayManager()
	plain := &fakeChannel{id: "plain"}
	signaling := &signalingChannel{fakeChannel{id: "web"}}
	gw.Register(plain)
	gw.Register(signaling)

	// Channels without signal support swallow signals without error.
	require.NoError(t, gw.SendSignal(api.SessionContext{ChannelID: "plain"}, api.SignalRunning))
	assert.Empty(t, plain.signals)

	require.NoError(t, gw.SendSignal(api.SessionContext{ChannelID: "web"}, api.SignalRunning))
	assert.Equal(t, []string{api.SignalRunning}, signaling.signals)
}

func TestManagerDispatchesIncomingMessages(t *testing.T) {
	gw := NewGatewayManager()

	var received *api.UnifiedMessage
	gw.SetMessageHandler(func(msg *api.UnifiedMessage) { received = msg })

	msg := &api.UnifiedMessage{
		Session: api.SessionContext{ChannelID: "web", UserID: "u1"},
		Content: "open the browser",
	}
	gw.OnMessage("web", msg)

	require.NotNil(t, received)
	assert.Equal(t, "open the browser", received.Content)
}

// collectMonitor records every broadcast status message.
type collectMonitor struct {
	messages []monitor.StatusMessage
}

func (m *collectMonitor) Start() error { return nil }

func (m *collectMonitor) Stop() error { return nil }

func (m *collectMonitor) OnMessage(msg monitor.StatusMessage) {
	m.messages = append(m.messages, msg)
}

func TestManagerBroadcastStages(t *testing.T) {
	gw := NewGatewayManager()
	ch := &fakeChannel{id: "web"}
	gw.Register(ch)
	cm := &collectMonitor{}
	gw.AddMonitor(cm)
	gw.SetMessageHandler(func(msg *api.UnifiedMessage) {})

	session := api.SessionContext{ChannelID: "web"}
	gw.OnMessage("web", &api.UnifiedMessage{Session: session, Content: "open a browser"})
	require.NoError(t, gw.SendReply(session, "Clicked the icon"))

	require.Len(t, cm.messages, 2)
	assert.Equal(t, monitor.StageRound, cm.messages[0].Stage)
	// Outbound replies are not terminal; mid-run progress flows through
	// SendReply as well.
	assert.Equal(t, monitor.StageReply, cm.messages[1].Stage)
	assert.False(t, cm.messages[1].Timestamp.IsZero())
}

func TestBuilderWiresEverything(t *testing.T) {
	ch := &fakeChannel{id: "web"}

	gw, err := NewGatewayBuilder().
		WithChannel(ch).
		Build()

	require.NoError(t, err)
	assert.True(t, ch.started)

	registered, ok := gw.GetChannel("web")
	require.True(t, ok)
	assert.Equal(t, "web", registered.ID())

	gw.StopAll()
	assert.True(t, ch.stopped)
}
