//go:build windows

package device

import (
	"fmt"
	"os"
	"strings"
	"time"

	"deskpilot/pkg/api"
)

// WindowsWorker implements api.Controller for Windows via PowerShell:
// mouse input through user32 SendInput-style P/Invoke, keyboard input
// through System.Windows.Forms.SendKeys, capture through System.Drawing.
type WindowsWorker struct {
	captureTimeout time.Duration
}

func NewController(captureTimeout time.Duration) api.Controller {
	return &WindowsWorker{captureTimeout: captureTimeout}
}

var _ api.Controller = (*WindowsWorker)(nil)

// sendKeysNames maps planner key names to SendKeys tokens.
var sendKeysNames = map[string]string{
	"enter":     "{ENTER}",
	"return":    "{ENTER}",
	"esc":       "{ESC}",
	"escape":    "{ESC}",
	"tab":       "{TAB}",
	"space":     " ",
	"backspace": "{BACKSPACE}",
	"delete":    "{DELETE}",
	"up":        "{UP}",
	"down":      "{DOWN}",
	"left":      "{LEFT}",
	"right":     "{RIGHT}",
	"home":      "{HOME}",
	"end":       "{END}",
	"pageup":    "{PGUP}",
	"pagedown":  "{PGDN}",
	"f1":        "{F1}", "f2": "{F2}", "f3": "{F3}", "f4": "{F4}",
	"f5": "{F5}", "f6": "{F6}", "f7": "{F7}", "f8": "{F8}",
	"f9": "{F9}", "f10": "{F10}", "f11": "{F11}", "f12": "{F12}",
}

// sendKeysModifiers maps modifier names to SendKeys prefixes. SendKeys has
// no Win-key prefix; "command"/"win" hotkeys are rejected on this platform.
var sendKeysModifiers = map[string]string{
	"ctrl":    "^",
	"control": "^",
	"alt":     "%",
	"shift":   "+",
}

const clickDefinition = `
Add-Type -AssemblyName System.Windows.Forms;
Add-Type -AssemblyName System.Drawing;
Add-Type @"
using System;
using System.Runtime.InteropServices;
public class DeskpilotMouse {
    [DllImport("user32.dll")]
    public static extern void mouse_event(uint dwFlags, uint dx, uint dy, uint dwData, int dwExtraInfo);
}
"@;
`

func powershell(script string) error {
	_, err := run("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return err
}

func sendKeysToken(key string) string {
	if tok, ok := sendKeysNames[strings.ToLower(key)]; ok {
		return tok
	}
	return escapeSendKeys(key)
}

// escapeSendKeys escapes characters that SendKeys treats as syntax.
func escapeSendKeys(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '+', '^', '%', '~', '(', ')', '{', '}', '[', ']':
			fmt.Fprintf(&b, "{%c}", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// psStringLiteral produces a single-quoted PowerShell string literal.
func psStringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (w *WindowsWorker) Click(x, y, clicks int) error {
	if clicks < 1 {
		clicks = 1
	}
	script := clickDefinition +
		fmt.Sprintf("[System.Windows.Forms.Cursor]::Position = New-Object System.Drawing.Point(%d, %d);", x, y)
	for i := 0; i < clicks; i++ {
		// 0x02 = LEFTDOWN, 0x04 = LEFTUP
		script += "[DeskpilotMouse]::mouse_event(0x02, 0, 0, 0, 0); [DeskpilotMouse]::mouse_event(0x04, 0, 0, 0, 0);"
	}
	return powershell(script)
}

func (w *WindowsWorker) TypeText(text string, interval float64) error {
	delay := toDelay(interval)
	if delay == 0 {
		return powershell(fmt.Sprintf(
			"Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)",
			psStringLiteral(escapeSendKeys(text))))
	}
	for _, r := range text {
		if err := powershell(fmt.Sprintf(
			"Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)",
			psStringLiteral(escapeSendKeys(string(r))))); err != nil {
			return err
		}
		time.Sleep(delay)
	}
	return nil
}

func (w *WindowsWorker) PressKey(key string, presses int, interval float64) error {
	if presses < 1 {
		presses = 1
	}
	token := sendKeysToken(key)
	for i := 0; i < presses; i++ {
		if err := powershell(fmt.Sprintf(
			"Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)",
			psStringLiteral(token))); err != nil {
			return err
		}
		if i < presses-1 {
			time.Sleep(toDelay(interval))
		}
	}
	return nil
}

func (w *WindowsWorker) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return fmt.Errorf("hotkey requires at least one key")
	}

	var prefix string
	for _, k := range keys[:len(keys)-1] {
		mod, ok := sendKeysModifiers[strings.ToLower(k)]
		if !ok {
			return fmt.Errorf("unsupported hotkey modifier %q", k)
		}
		prefix += mod
	}

	combo := prefix + sendKeysToken(keys[len(keys)-1])
	return powershell(fmt.Sprintf(
		"Add-Type -AssemblyName System.Windows.Forms; [System.Windows.Forms.SendKeys]::SendWait(%s)",
		psStringLiteral(combo)))
}

func (w *WindowsWorker) Sleep(seconds float64) error {
	time.Sleep(toDelay(seconds))
	return nil
}

func (w *WindowsWorker) CaptureScreen() (string, error) {
	tempFile := tempShotPath()
	defer os.Remove(tempFile)

	script := fmt.Sprintf(`
Add-Type -AssemblyName System.Windows.Forms;
Add-Type -AssemblyName System.Drawing;
$bounds = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds;
$bmp = New-Object System.Drawing.Bitmap $bounds.Width, $bounds.Height;
$g = [System.Drawing.Graphics]::FromImage($bmp);
$g.CopyFromScreen($bounds.Location, [System.Drawing.Point]::Empty, $bounds.Size);
$bmp.Save(%s, [System.Drawing.Imaging.ImageFormat]::Png);
$g.Dispose(); $bmp.Dispose();`, psStringLiteral(tempFile))

	if _, err := runWithTimeout(w.captureTimeout, "powershell", "-NoProfile", "-NonInteractive", "-Command", script); err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	return encodeFileBase64(tempFile)
}
