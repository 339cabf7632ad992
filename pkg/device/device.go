// Package device implements the action-primitive port against the real
// desktop. Each platform gets its own worker behind a build tag; all of
// them shell out to the platform's native input and capture tools, so no
// cgo is involved and tests can swap in a recording fake instead.
package device

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// commandTimeout bounds one input-tool invocation. Input injection is
// near-instant; anything longer means the backend is wedged.
const commandTimeout = 30 * time.Second

// run executes one external command and returns its combined output.
func run(name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %w (%s)", name, err, string(out))
	}
	return string(out), nil
}

// runWithTimeout is run with an explicit deadline, used for screen capture
// where the platform tool may block on compositor round-trips.
func runWithTimeout(timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s: %w (%s)", name, err, string(out))
	}
	return string(out), nil
}

// encodeFileBase64 reads a captured image file and returns it base64 encoded.
func encodeFileBase64(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read screenshot file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// tempShotPath returns a unique temp file path for one capture.
func tempShotPath() string {
	return fmt.Sprintf("%s/deskpilot_shot_%d.png", os.TempDir(), time.Now().UnixNano())
}

// toDelay converts a seconds interval from the wire format into a Duration.
func toDelay(seconds float64) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}
