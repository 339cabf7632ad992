package interpreter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalName(t *testing.T) {
	assert.Equal(t, "click", canonicalName("click"))
	assert.Equal(t, "click", canonicalName("pyautogui.click"))
	assert.Equal(t, "sleep", canonicalName("time.sleep"))
	assert.Equal(t, "hotkey", canonicalName("  pyautogui.hotkey "))
	assert.Equal(t, "teleport", canonicalName("pyautogui.teleport"))
}

func TestParseClick(t *testing.T) {
	a, err := parseClick(map[string]any{"x": float64(100), "y": float64(200)})
	require.NoError(t, err)
	assert.Equal(t, clickAction{X: 100, Y: 200, Clicks: 1}, a)

	a, err = parseClick(map[string]any{"x": float64(5), "y": float64(6), "clicks": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, 2, a.Clicks)

	// String coordinates still resolve.
	a, err = parseClick(map[string]any{"x": "10", "y": "20"})
	require.NoError(t, err)
	assert.Equal(t, 10, a.X)
	assert.Equal(t, 20, a.Y)

	// Missing coordinates are a parse failure, not a zero-coordinate click.
	_, err = parseClick(map[string]any{"x": float64(100)})
	require.Error(t, err)
	var pe *parseError
	assert.True(t, errors.As(err, &pe))

	_, err = parseClick(map[string]any{})
	assert.Error(t, err)
}

func TestParseType(t *testing.T) {
	for _, field := range []string{"string", "text", "message"} {
		a, err := parseType(map[string]any{field: "hello"})
		require.NoError(t, err, field)
		assert.Equal(t, "hello", a.Text)
		assert.Equal(t, 0.1, a.Interval)
	}

	a, err := parseType(map[string]any{"text": "hi", "interval": float64(0.5)})
	require.NoError(t, err)
	assert.Equal(t, 0.5, a.Interval)

	_, err = parseType(map[string]any{"interval": float64(1)})
	assert.Error(t, err)
}

func TestParsePress(t *testing.T) {
	a, err := parsePress(map[string]any{"keys": "enter"})
	require.NoError(t, err)
	assert.Equal(t, []string{"enter"}, a.Keys)
	assert.Equal(t, 1, a.Presses)
	assert.Equal(t, 0.2, a.Interval)

	a, err = parsePress(map[string]any{"key": []any{"tab", "enter"}, "presses": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, []string{"tab", "enter"}, a.Keys)
	assert.Equal(t, 3, a.Presses)

	_, err = parsePress(map[string]any{})
	assert.Error(t, err)

	_, err = parsePress(map[string]any{"keys": []any{}})
	assert.Error(t, err)
}

func TestParseHotkey(t *testing.T) {
	a, err := parseHotkey(map[string]any{"keys": []any{"ctrl", "c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl", "c"}, a.Keys)

	// Positional fallback: values are combined in parameter-name order.
	a, err = parseHotkey(map[string]any{"key2": "t", "key1": "ctrl"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl", "t"}, a.Keys)

	_, err = parseHotkey(map[string]any{})
	assert.Error(t, err)
}

func TestParseSleep(t *testing.T) {
	a, err := parseSleep(map[string]any{"secs": float64(1.5)})
	require.NoError(t, err)
	assert.Equal(t, 1.5, a.Seconds)

	a, err = parseSleep(map[string]any{"seconds": float64(2)})
	require.NoError(t, err)
	assert.Equal(t, 2.0, a.Seconds)

	_, err = parseSleep(map[string]any{})
	assert.Error(t, err)

	_, err = parseSleep(map[string]any{"secs": float64(-1)})
	assert.Error(t, err)
}

func TestCoerceKeyList(t *testing.T) {
	assert.Equal(t, []string{"a"}, coerceKeyList("a"))
	assert.Equal(t, []string{"a", "b"}, coerceKeyList([]any{"a", "b"}))
	assert.Nil(t, coerceKeyList(""))
	assert.Nil(t, coerceKeyList(nil))
	assert.Equal(t, []string{"5"}, coerceKeyList(float64(5)))
}
