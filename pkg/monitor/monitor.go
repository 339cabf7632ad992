package monitor

import "time"

// Stage labels where in the run lifecycle a status message originated.
const (
	StageDispatch = "DISPATCH" // emitted just before an action dispatch
	StageRound    = "ROUND"    // round boundaries (planning started, ...)
	StageFinal    = "FINAL"    // terminal outcome of a run
	StageReply    = "REPLY"    // outbound traffic relayed to a channel
)

// StatusMessage is one human-readable progress justification flowing from
// the dispatcher (or the loop) to observers. Delivery is best effort and
// never feeds back into control decisions.
type StatusMessage struct {
	Timestamp time.Time
	RunID     string
	Stage     string
	Content   string
}

// Monitor defines the behavior of a status observer.
type Monitor interface {
	// Start activates the monitor.
	Start() error

	// Stop deactivates the monitor.
	Stop() error

	// OnMessage receives one status message. Implementations must not
	// block; slow observers lose messages rather than stalling the run.
	OnMessage(msg StatusMessage)
}
