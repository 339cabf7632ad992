// Package gateway routes messages between operator channels and the run
// handler. Channels register themselves with the manager, the manager
// fans incoming messages into the handler and delivers replies and
// signals back out through the owning channel.
package gateway

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"deskpilot/pkg/api"
	"deskpilot/pkg/monitor"
)

// GatewayManager owns all registered channels and routes unified
// messages between them and the handler. It implements api.ChannelContext
// so channels can call back into it.
type GatewayManager struct {
	channels   map[string]api.Channel
	msgHandler api.MessageHandler
	monitors   []monitor.Monitor
	mu         sync.RWMutex
}

// NewGatewayManager creates an empty manager.
func NewGatewayManager() *GatewayManager {
	return &GatewayManager{
		channels: make(map[string]api.Channel),
	}
}

// SetMessageHandler sets the core logic every incoming message is routed to.
func (g *GatewayManager) SetMessageHandler(handler api.MessageHandler) {
	g.msgHandler = handler
}

// AddMonitor attaches an observer that sees the gateway's inbound and
// outbound traffic.
func (g *GatewayManager) AddMonitor(m monitor.Monitor) {
	g.monitors = append(g.monitors, m)
}

// Register adds a channel under its ID. A later registration with the
// same ID replaces the earlier one.
func (g *GatewayManager) Register(c api.Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
}

// GetChannel returns the channel registered under id.
func (g *GatewayManager) GetChannel(id string) (api.Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.channels[id]
	return c, ok
}

// StartAll starts every registered channel, passing the manager as the
// channel context. The first failure aborts the startup.
func (g *GatewayManager) StartAll() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, c := range g.channels {
		slog.Info("Starting channel", "channel", id)
		if err := c.Start(g); err != nil {
			return fmt.Errorf("failed to start channel %s: %w", id, err)
		}
	}
	return nil
}

// StopAll stops every registered channel. Stop errors are logged, not
// propagated, so one misbehaving channel cannot block shutdown.
func (g *GatewayManager) StopAll() {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, c := range g.channels {
		slog.Info("Stopping channel", "channel", id)
		if err := c.Stop(); err != nil {
			slog.Error("Error stopping channel", "channel", id, "error", err)
		}
	}
}

// SendReply delivers content back to the session's originating channel.
func (g *GatewayManager) SendReply(session api.SessionContext, content string) error {
	slog.Info("Gateway reply", "channel", session.ChannelID, "user", session.Username)

	// Replies carry both mid-run progress and terminal outcomes, so the
	// broadcast uses a stage that does not imply either.
	g.broadcast(session.ChannelID, monitor.StageReply, content)

	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.Send(session, content)
}

// SendSignal forwards a control signal (e.g. "state:running") to the
// session's channel. Channels without signal support ignore it silently.
func (g *GatewayManager) SendSignal(session api.SessionContext, signal string) error {
	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	if sc, ok := c.(api.SignalingChannel); ok {
		return sc.SendSignal(session, signal)
	}
	return nil
}

// OnMessage implements api.ChannelContext and receives every inbound
// channel message.
func (g *GatewayManager) OnMessage(channelID string, msg *api.UnifiedMessage) {
	slog.Info("Gateway received",
		"channel", channelID,
		"user", msg.Session.Username,
		"userID", msg.Session.UserID,
		"content", msg.Content,
	)

	g.broadcast(channelID, monitor.StageRound, msg.Content)

	if g.msgHandler == nil {
		slog.Warn("No message handler set, dropping message", "channel", channelID)
		return
	}
	g.msgHandler(msg)
}

func (g *GatewayManager) broadcast(channelID, stage, content string) {
	for _, m := range g.monitors {
		m.OnMessage(monitor.StatusMessage{
			Timestamp: time.Now(),
			RunID:     channelID,
			Stage:     stage,
			Content:   content,
		})
	}
}
