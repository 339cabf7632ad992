// Package handler bridges operator channels and the agent engine. It
// accepts objectives, rejects concurrent runs, relays interrupt commands
// and streams run progress back to the requesting session.
package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"deskpilot/pkg/agent"
	"deskpilot/pkg/api"
	"deskpilot/pkg/monitor"
)

// RunHandler turns incoming unified messages into agent runs. The desktop
// is a single exclusive resource, so at most one run is active at a time;
// objectives arriving mid-run are rejected with an explanation instead of
// queued.
type RunHandler struct {
	engine    *agent.Engine
	status    *monitor.StatusQueue
	monitors  []monitor.Monitor
	responder api.MessageResponder
}

// NewRunHandler creates a handler around the engine. The status queue is
// shared with the engine; the handler is its only consumer and forwards
// progress to the requesting session plus any extra monitors.
func NewRunHandler(engine *agent.Engine, status *monitor.StatusQueue, monitors ...monitor.Monitor) *RunHandler {
	return &RunHandler{
		engine:   engine,
		status:   status,
		monitors: monitors,
	}
}

// SetResponder implements gateway.ResponderAware.
func (h *RunHandler) SetResponder(r api.MessageResponder) {
	h.responder = r
}

// OnMessage is the entry point for every inbound channel message.
func (h *RunHandler) OnMessage(msg *api.UnifiedMessage) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return
	}

	if strings.HasPrefix(content, "/") {
		h.handleCommand(msg.Session, content)
		return
	}

	if h.engine.Running() {
		h.reply(msg.Session, "⚠️ A run is already in progress. Send /stop to interrupt it first.")
		return
	}

	go h.run(msg.Session, content)
}

// handleCommand executes slash commands. Commands never start a run and
// are not forwarded to the planner.
func (h *RunHandler) handleCommand(session api.SessionContext, content string) {
	cmd := strings.Fields(content)[0]

	switch cmd {
	case "/stop":
		if !h.engine.Running() {
			h.reply(session, "No run in progress.")
			return
		}
		h.engine.RequestInterrupt()
		h.reply(session, "Interrupt requested. The run stops after the current action.")
	case "/status":
		if h.engine.Running() {
			h.reply(session, "🟢 A run is in progress.")
		} else {
			h.reply(session, "⚪ Idle. Send an objective to start.")
		}
	case "/help":
		h.reply(session, "Send an objective in plain language to drive the desktop.\n/stop interrupts the current run\n/status shows whether a run is active")
	default:
		h.reply(session, fmt.Sprintf("Unknown command %s. Try /help.", cmd))
	}
}

// run executes one objective and streams its progress back to the
// session until the terminal outcome is delivered.
func (h *RunHandler) run(session api.SessionContext, objective string) {
	h.signal(session, api.SignalRunning)
	defer h.signal(session, api.SignalIdle)

	done := make(chan struct{})
	observers := append([]monitor.Monitor{&sessionMonitor{handler: h, session: session}}, h.monitors...)
	go h.status.Forward(done, observers...)

	outcome := h.engine.Run(context.Background(), objective)
	close(done)

	h.reply(session, formatOutcome(outcome))
}

func formatOutcome(o *agent.Outcome) string {
	switch o.Status {
	case agent.StatusSuccess:
		return fmt.Sprintf("✅ %s (%d rounds, %d actions)", o.Message, o.Rounds, len(o.Results))
	case agent.StatusInterrupted:
		return fmt.Sprintf("⏹️ %s (%d actions executed)", o.Message, len(o.Results))
	default:
		return fmt.Sprintf("❌ %s [%s]", o.Message, o.Kind)
	}
}

func (h *RunHandler) reply(session api.SessionContext, content string) {
	if h.responder == nil {
		slog.Warn("No responder set, dropping reply", "content", content)
		return
	}
	if err := h.responder.SendReply(session, content); err != nil {
		slog.Error("Failed to send reply", "channel", session.ChannelID, "error", err)
	}
}

func (h *RunHandler) signal(session api.SessionContext, signal string) {
	if h.responder == nil {
		return
	}
	if err := h.responder.SendSignal(session, signal); err != nil {
		slog.Debug("Failed to send signal", "channel", session.ChannelID, "error", err)
	}
}

// sessionMonitor forwards queued status messages to the session that
// started the run. The terminal message is skipped here; the handler
// sends the formatted outcome itself.
type sessionMonitor struct {
	handler *RunHandler
	session api.SessionContext
}

func (m *sessionMonitor) Start() error { return nil }
func (m *sessionMonitor) Stop() error  { return nil }

func (m *sessionMonitor) OnMessage(msg monitor.StatusMessage) {
	if msg.Stage == monitor.StageFinal {
		return
	}
	m.handler.reply(m.session, msg.Content)
}
