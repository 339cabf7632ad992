package interpreter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Canonical action names the dispatcher understands. "write"/"type_text"
// and "press"/"press_key" are planner-visible synonyms for the same
// primitive.
const (
	actionClick    = "click"
	actionWrite    = "write"
	actionTypeText = "type_text"
	actionPress    = "press"
	actionPressKey = "press_key"
	actionHotkey   = "hotkey"
	actionSleep    = "sleep"
)

// knownPrefixes are the provider qualifiers planners sometimes attach to
// action names. They are stripped before matching.
var knownPrefixes = []string{"pyautogui.", "time."}

func canonicalName(function string) string {
	name := strings.TrimSpace(function)
	for _, prefix := range knownPrefixes {
		if strings.HasPrefix(name, prefix) {
			name = strings.TrimPrefix(name, prefix)
			break
		}
	}
	return name
}

// parseError marks a failure to extract required, well-typed parameters
// from a descriptor. It is classified separately from primitive failures.
type parseError struct {
	msg string
}

func (e *parseError) Error() string {
	return e.msg
}

func parseErrorf(format string, args ...any) error {
	return &parseError{msg: fmt.Sprintf(format, args...)}
}

// Typed descriptors, one per canonical action, produced at the dispatcher
// boundary so missing or renamed fields fail here instead of deep inside a
// primitive call.

type clickAction struct {
	X, Y   int
	Clicks int
}

type typeAction struct {
	Text     string
	Interval float64
}

type pressAction struct {
	Keys     []string
	Presses  int
	Interval float64
}

type hotkeyAction struct {
	Keys []string
}

type sleepAction struct {
	Seconds float64
}

func parseClick(params map[string]any) (clickAction, error) {
	x, okX := intParam(params, "x")
	y, okY := intParam(params, "y")
	if !okX || !okY {
		return clickAction{}, parseErrorf("click requires both 'x' and 'y', got %v", params)
	}
	clicks, ok := intParam(params, "clicks")
	if !ok || clicks < 1 {
		clicks = 1
	}
	return clickAction{X: x, Y: y, Clicks: clicks}, nil
}

func parseType(params map[string]any) (typeAction, error) {
	text, ok := stringParam(params, "string", "text", "message")
	if !ok {
		return typeAction{}, parseErrorf("write requires 'string', 'text' or 'message', got %v", params)
	}
	interval, ok := floatParam(params, "interval")
	if !ok {
		interval = 0.1
	}
	return typeAction{Text: text, Interval: interval}, nil
}

func parsePress(params map[string]any) (pressAction, error) {
	raw, ok := anyParam(params, "keys", "key")
	if !ok {
		return pressAction{}, parseErrorf("press requires 'keys' or 'key', got %v", params)
	}
	keys := coerceKeyList(raw)
	if len(keys) == 0 {
		return pressAction{}, parseErrorf("press got an empty key list: %v", params)
	}
	presses, ok := intParam(params, "presses")
	if !ok || presses < 1 {
		presses = 1
	}
	interval, ok := floatParam(params, "interval")
	if !ok {
		interval = 0.2
	}
	return pressAction{Keys: keys, Presses: presses, Interval: interval}, nil
}

func parseHotkey(params map[string]any) (hotkeyAction, error) {
	if raw, ok := params["keys"]; ok {
		keys := coerceKeyList(raw)
		if len(keys) == 0 {
			return hotkeyAction{}, parseErrorf("hotkey got an empty key list: %v", params)
		}
		return hotkeyAction{Keys: keys}, nil
	}

	// No 'keys' parameter: fall back to using every supplied parameter
	// value as a combo member. JSON objects decode into unordered maps,
	// so the values are taken in key-name order ("key1", "key2", ...),
	// which is how planners emitting this shape number them.
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var keys []string
	for _, name := range names {
		keys = append(keys, coerceKeyList(params[name])...)
	}
	if len(keys) == 0 {
		return hotkeyAction{}, parseErrorf("hotkey requires 'keys' or individual key parameters, got %v", params)
	}
	return hotkeyAction{Keys: keys}, nil
}

func parseSleep(params map[string]any) (sleepAction, error) {
	secs, ok := floatParam(params, "secs", "seconds")
	if !ok {
		return sleepAction{}, parseErrorf("sleep requires 'secs' or 'seconds', got %v", params)
	}
	if secs < 0 {
		return sleepAction{}, parseErrorf("sleep got a negative duration: %v", secs)
	}
	return sleepAction{Seconds: secs}, nil
}

// Parameter coercion helpers. Planner JSON is loosely typed: numbers come
// through as float64, but some models emit them as strings or ints.

func anyParam(params map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := params[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func floatParam(params map[string]any, keys ...string) (float64, bool) {
	v, ok := anyParam(params, keys...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func intParam(params map[string]any, keys ...string) (int, bool) {
	f, ok := floatParam(params, keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func stringParam(params map[string]any, keys ...string) (string, bool) {
	v, ok := anyParam(params, keys...)
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}

// coerceKeyList turns a scalar or list parameter into a flat string slice.
func coerceKeyList(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []string:
		return val
	case []any:
		var keys []string
		for _, item := range val {
			keys = append(keys, coerceKeyList(item)...)
		}
		return keys
	default:
		return []string{fmt.Sprintf("%v", val)}
	}
}
