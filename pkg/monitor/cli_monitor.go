package monitor

import (
	"fmt"
	"io"
	"os"
)

// CLIMonitor implements the Monitor interface, printing every status
// message the run emits directly to the terminal.
type CLIMonitor struct {
	writer io.Writer // The output destination, typically os.Stdout.
}

// NewCLIMonitor creates a new CLI monitor
func NewCLIMonitor() *CLIMonitor {
	return &CLIMonitor{
		writer: os.Stdout,
	}
}

// Start starts the CLI monitor
func (m *CLIMonitor) Start() error {
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	fmt.Fprintln(m.writer, "🖥️  CLI Monitor Active - run progress will appear here")
	fmt.Fprintln(m.writer, "----------------------------------------------------------------")
	return nil
}

// Stop stops the CLI monitor
func (m *CLIMonitor) Stop() error {
	return nil
}

// OnMessage receives and displays a status message
func (m *CLIMonitor) OnMessage(msg StatusMessage) {
	timestamp := msg.Timestamp.Format("2006-01-02 15:04:05")

	label := msg.Stage
	if msg.RunID != "" {
		label = fmt.Sprintf("%s/%s", msg.RunID, msg.Stage)
	}

	// Use gray color for timestamp
	fmt.Fprintf(m.writer, "\033[90m[%s]\033[0m [%s] %s\n", timestamp, label, msg.Content)
}
