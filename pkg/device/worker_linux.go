//go:build linux

package device

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"deskpilot/pkg/api"
)

// LinuxWorker implements api.Controller for Linux via xdotool, with
// gnome-screenshot and scrot as capture backends.
type LinuxWorker struct {
	captureTimeout time.Duration
}

func NewController(captureTimeout time.Duration) api.Controller {
	return &LinuxWorker{captureTimeout: captureTimeout}
}

var _ api.Controller = (*LinuxWorker)(nil)

// keysyms maps planner key names to X11 keysyms. Names not listed here are
// passed to xdotool verbatim (single characters map onto themselves).
var keysyms = map[string]string{
	"enter":     "Return",
	"return":    "Return",
	"esc":       "Escape",
	"escape":    "Escape",
	"tab":       "Tab",
	"space":     "space",
	"backspace": "BackSpace",
	"delete":    "Delete",
	"up":        "Up",
	"down":      "Down",
	"left":      "Left",
	"right":     "Right",
	"home":      "Home",
	"end":       "End",
	"pageup":    "Page_Up",
	"pagedown":  "Page_Down",
	"ctrl":      "ctrl",
	"alt":       "alt",
	"shift":     "shift",
	// "command"/"win" both land on Super; planners trained on macOS
	// vocabularies emit "command" regardless of the actual platform.
	"command": "super",
	"cmd":     "super",
	"win":     "super",
	"option":  "alt",
	"f1":      "F1", "f2": "F2", "f3": "F3", "f4": "F4",
	"f5": "F5", "f6": "F6", "f7": "F7", "f8": "F8",
	"f9": "F9", "f10": "F10", "f11": "F11", "f12": "F12",
}

func keysym(key string) string {
	if sym, ok := keysyms[strings.ToLower(key)]; ok {
		return sym
	}
	return key
}

func (w *LinuxWorker) Click(x, y, clicks int) error {
	if clicks < 1 {
		clicks = 1
	}
	if _, err := run("xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y)); err != nil {
		return err
	}
	_, err := run("xdotool", "click", "--repeat", strconv.Itoa(clicks), "1")
	return err
}

func (w *LinuxWorker) TypeText(text string, interval float64) error {
	delayMs := int(toDelay(interval) / time.Millisecond)
	if delayMs <= 0 {
		delayMs = 12 // xdotool's own default
	}
	_, err := run("xdotool", "type", "--delay", strconv.Itoa(delayMs), "--", text)
	return err
}

func (w *LinuxWorker) PressKey(key string, presses int, interval float64) error {
	if presses < 1 {
		presses = 1
	}
	delayMs := int(toDelay(interval) / time.Millisecond)
	_, err := run("xdotool", "key",
		"--repeat", strconv.Itoa(presses),
		"--repeat-delay", strconv.Itoa(delayMs),
		keysym(key))
	return err
}

func (w *LinuxWorker) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("hotkey requires at least one key")
	}
	syms := make([]string, len(keys))
	for i, k := range keys {
		syms[i] = keysym(k)
	}
	_, err := run("xdotool", "key", strings.Join(syms, "+"))
	return err
}

func (w *LinuxWorker) Sleep(seconds float64) error {
	time.Sleep(toDelay(seconds))
	return nil
}

func (w *LinuxWorker) CaptureScreen() (string, error) {
	tempFile := tempShotPath()
	defer os.Remove(tempFile)

	// Try gnome-screenshot first, fall back to scrot.
	if _, err := runWithTimeout(w.captureTimeout, "gnome-screenshot", "-f", tempFile); err != nil {
		slog.Warn("gnome-screenshot failed, trying scrot", "error", err)
		if _, err := runWithTimeout(w.captureTimeout, "scrot", tempFile); err != nil {
			return "", fmt.Errorf("screenshot failed (tried gnome-screenshot and scrot): %w", err)
		}
	}

	return encodeFileBase64(tempFile)
}
