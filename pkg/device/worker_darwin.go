//go:build darwin

package device

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"deskpilot/pkg/api"
)

// DarwinWorker implements api.Controller for macOS via cliclick for the
// mouse and osascript (System Events) for the keyboard, with screencapture
// as the capture backend.
type DarwinWorker struct {
	captureTimeout time.Duration
}

func NewController(captureTimeout time.Duration) api.Controller {
	return &DarwinWorker{captureTimeout: captureTimeout}
}

var _ api.Controller = (*DarwinWorker)(nil)

// keyCodes maps planner key names to macOS virtual key codes for keys that
// "keystroke" cannot express.
var keyCodes = map[string]int{
	"enter":     36,
	"return":    36,
	"tab":       48,
	"space":     49,
	"delete":    51,
	"backspace": 51,
	"esc":       53,
	"escape":    53,
	"left":      123,
	"right":     124,
	"down":      125,
	"up":        126,
	"home":      115,
	"end":       119,
	"pageup":    116,
	"pagedown":  121,
	"f1":        122, "f2": 120, "f3": 99, "f4": 118,
	"f5": 96, "f6": 97, "f7": 98, "f8": 100,
	"f9": 101, "f10": 109, "f11": 103, "f12": 111,
}

// modifiers maps planner modifier names to System Events "using" clauses.
var modifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"ctrl":    "control down",
	"control": "control down",
	"alt":     "option down",
	"option":  "option down",
	"shift":   "shift down",
}

func osascript(script string) error {
	_, err := run("osascript", "-e", script)
	return err
}

func (w *DarwinWorker) Click(x, y, clicks int) error {
	if clicks < 1 {
		clicks = 1
	}
	point := fmt.Sprintf("%d,%d", x, y)
	switch clicks {
	case 1:
		_, err := run("cliclick", "c:"+point)
		return err
	case 2:
		_, err := run("cliclick", "dc:"+point)
		return err
	default:
		for i := 0; i < clicks; i++ {
			if _, err := run("cliclick", "c:"+point); err != nil {
				return err
			}
		}
		return nil
	}
}

func (w *DarwinWorker) TypeText(text string, interval float64) error {
	delay := toDelay(interval)
	if delay == 0 {
		return osascript(fmt.Sprintf("tell application %q to keystroke %s",
			"System Events", appleStringLiteral(text)))
	}
	// Per-character typing so the interval between keystrokes is honored.
	for _, r := range text {
		if err := osascript(fmt.Sprintf("tell application %q to keystroke %s",
			"System Events", appleStringLiteral(string(r)))); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	return nil
}

func (w *DarwinWorker) PressKey(key string, presses int, interval float64) error {
	if presses < 1 {
		presses = 1
	}
	name := strings.ToLower(key)
	for i := 0; i < presses; i++ {
		var err error
		if code, ok := keyCodes[name]; ok {
			err = osascript(fmt.Sprintf("tell application %q to key code %d",
				"System Events", code))
		} else {
			err = osascript(fmt.Sprintf("tell application %q to keystroke %s",
				"System Events", appleStringLiteral(key)))
		}
		if err != nil {
			return err
		}
		if i < presses-1 {
			time.Sleep(toDelay(interval))
		}
	}
	return nil
}

func (w *DarwinWorker) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("hotkey requires at least one key")
	}

	var using []string
	main := keys[len(keys)-1]
	for _, k := range keys[:len(keys)-1] {
		if mod, ok := modifiers[strings.ToLower(k)]; ok {
			using = append(using, mod)
		} else {
			return fmt.Errorf("unsupported hotkey modifier %q", k)
		}
	}

	var stroke string
	if code, ok := keyCodes[strings.ToLower(main)]; ok {
		stroke = fmt.Sprintf("key code %d", code)
	} else {
		stroke = fmt.Sprintf("keystroke %s", appleStringLiteral(main))
	}
	if len(using) > 0 {
		stroke = fmt.Sprintf("%s using {%s}", stroke, strings.Join(using, ", "))
	}
	return osascript(fmt.Sprintf("tell application %q to %s", "System Events", stroke))
}

func (w *DarwinWorker) Sleep(seconds float64) error {
	time.Sleep(toDelay(seconds))
	return nil
}

func (w *DarwinWorker) CaptureScreen() (string, error) {
	tempFile := tempShotPath()
	defer os.Remove(tempFile)

	// -x suppresses the shutter sound.
	if _, err := runWithTimeout(w.captureTimeout, "screencapture", "-x", tempFile); err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	return encodeFileBase64(tempFile)
}

// appleStringLiteral quotes a string for embedding in an osascript -e body.
func appleStringLiteral(s string) string {
	return strconv.Quote(s)
}
