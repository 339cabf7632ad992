package api

// ScreenCapturer is the screen-capture port. Capture returns the current
// screen as a base64 encoded PNG.
type ScreenCapturer interface {
	CaptureScreen() (string, error)
}

// Controller is the injectable device-automation port consumed by the
// interpreter. Implementations drive the real mouse and keyboard; tests
// substitute a recording fake. Intervals and durations are in seconds,
// matching the planner wire format.
//
// Primitive calls carry no side-channel state: each returns only a
// success/failure outcome. Dispatch is strictly sequential because cursor
// position and window focus are a single shared, ordered resource.
type Controller interface {
	ScreenCapturer

	// Click presses the primary mouse button at screen position (x, y)
	// the given number of times.
	Click(x, y int, clicks int) error

	// TypeText types the text character by character, pausing interval
	// seconds between characters.
	TypeText(text string, interval float64) error

	// PressKey taps one named key the given number of times, pausing
	// interval seconds between presses.
	PressKey(key string, presses int, interval float64) error

	// Hotkey holds all keys down together and releases them, i.e. one
	// simultaneous combination such as ("ctrl", "c").
	Hotkey(keys ...string) error

	// Sleep blocks for the given number of seconds.
	Sleep(seconds float64) error
}
