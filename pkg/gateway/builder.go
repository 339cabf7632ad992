package gateway

import (
	"fmt"

	"deskpilot/pkg/api"
	"deskpilot/pkg/monitor"
)

// ResponderAware is implemented by handlers that need a way to send
// replies back through the gateway.
type ResponderAware interface {
	SetResponder(r api.MessageResponder)
}

// MessageProcessor is the handler contract the builder wires into the
// manager.
type MessageProcessor interface {
	OnMessage(msg *api.UnifiedMessage)
}

// GatewayBuilder assembles a GatewayManager from pre-built parts:
// channels, monitors and the message handler are constructed by the
// caller and injected, the builder only wires and starts them.
type GatewayBuilder struct {
	gw       *GatewayManager
	monitors []monitor.Monitor
	channels []api.Channel
	loader   func(*GatewayManager)
	handler  MessageProcessor
}

// NewGatewayBuilder allocates a builder with a fresh manager.
func NewGatewayBuilder() *GatewayBuilder {
	return &GatewayBuilder{
		gw: NewGatewayManager(),
	}
}

// WithMonitor attaches observers that will be started during Build.
func (b *GatewayBuilder) WithMonitor(monitors ...monitor.Monitor) *GatewayBuilder {
	b.monitors = append(b.monitors, monitors...)
	return b
}

// WithChannel adds pre-built channel instances to register.
func (b *GatewayBuilder) WithChannel(channels ...api.Channel) *GatewayBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithChannelLoader registers a callback that builds channels from
// configuration and registers them with the manager during Build. It
// complements WithChannel for channels that come from config sections.
func (b *GatewayBuilder) WithChannelLoader(loader func(*GatewayManager)) *GatewayBuilder {
	b.loader = loader
	return b
}

// WithHandler injects the message handler. If it implements
// ResponderAware it receives the manager as its responder during Build.
func (b *GatewayBuilder) WithHandler(h MessageProcessor) *GatewayBuilder {
	b.handler = h
	return b
}

// Build wires everything together, starts the monitors and channels, and
// returns the operational manager.
func (b *GatewayBuilder) Build() (*GatewayManager, error) {
	for _, m := range b.monitors {
		if err := m.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
		b.gw.AddMonitor(m)
	}

	for _, c := range b.channels {
		b.gw.Register(c)
	}
	if b.loader != nil {
		b.loader(b.gw)
	}

	if b.handler != nil {
		if aware, ok := b.handler.(ResponderAware); ok {
			aware.SetResponder(b.gw)
		}
		b.gw.SetMessageHandler(b.handler.OnMessage)
	}

	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.gw, nil
}
