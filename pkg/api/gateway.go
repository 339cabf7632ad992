package api

// Channel defines the standardized lifecycle interface for operator
// surfaces (web UI, Telegram, ...). A channel delivers objectives and
// control commands into the gateway and carries progress and outcomes back.
type Channel interface {
	ID() string
	Start(ctx ChannelContext) error
	Stop() error
	Send(session SessionContext, message string) error
}

// SignalingChannel is an optional extension for platforms that can render
// control signals (e.g. "state:running", "state:idle") as UI state.
type SignalingChannel interface {
	Channel
	SendSignal(session SessionContext, signal string) error
}

// Control signals channels may render as UI state.
const (
	SignalRunning = "state:running"
	SignalIdle    = "state:idle"
)

// ChannelContext provides the interface for a Channel implementation to
// communicate back with the gateway core.
type ChannelContext interface {
	MessageResponder
	OnMessage(channelID string, msg *UnifiedMessage)
}

// MessageResponder defines the capabilities for sending responses back to
// a channel session.
type MessageResponder interface {
	SendReply(session SessionContext, content string) error
	SendSignal(session SessionContext, signal string) error
}

// UnifiedMessage is the standardized internal form of an incoming channel
// message: either a natural-language objective or a control command such
// as "/stop".
type UnifiedMessage struct {
	Session SessionContext // Routing information for replies
	Content string         // Objective text or slash command
	Raw     any            // Optional original platform payload
}

// SessionContext identifies one conversation unit on one channel.
type SessionContext struct {
	ChannelID string
	UserID    string
	ChatID    string
	Username  string
}

// MessageHandler is the function signature for processing incoming
// unified messages.
type MessageHandler func(msg *UnifiedMessage)
