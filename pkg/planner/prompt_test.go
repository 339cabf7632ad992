package planner

import (
	"strings"
	"testing"
	"unicode/utf8"

	"deskpilot/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlanPlainJSON(t *testing.T) {
	plan, err := ParsePlan(`{"steps":[{"function":"click","parameters":{"x":10,"y":20},"human_readable_justification":"open menu"}],"done":null}`)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "click", plan.Steps[0].Function)
	assert.Equal(t, "open menu", plan.Steps[0].Justification)
	assert.Empty(t, plan.Done)
}

func TestParsePlanStripsMarkdownFences(t *testing.T) {
	raw := "```json\n{\"steps\":[],\"done\":\"All set\"}\n```"
	plan, err := ParsePlan(raw)
	require.NoError(t, err)
	assert.Equal(t, "All set", plan.Done)

	raw = "```\n{\"steps\":[{\"function\":\"sleep\",\"parameters\":{\"secs\":2}}]}\n```"
	plan, err = ParsePlan(raw)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "sleep", plan.Steps[0].Function)
}

func TestParsePlanRejectsGarbage(t *testing.T) {
	_, err := ParsePlan("")
	assert.Error(t, err)

	_, err = ParsePlan("I will now click the button for you.")
	assert.Error(t, err)
}

func TestBuildSystemPrompt(t *testing.T) {
	base := BuildSystemPrompt("")
	assert.Contains(t, base, "human_readable_justification")

	custom := BuildSystemPrompt("Always use the dark theme")
	assert.Contains(t, custom, "Always use the dark theme")
	assert.True(t, strings.HasPrefix(custom, base))
}

func TestBuildUserPrompt(t *testing.T) {
	req := Request{
		Objective: "open a text editor",
		StepIndex: 2,
		History: []api.ExecutionResult{
			{
				Descriptor: api.ActionDescriptor{Function: "click", Parameters: map[string]any{"x": float64(1), "y": float64(2)}},
				Output:     "Clicked at (1, 2) with 1 clicks",
				Success:    true,
			},
		},
		Screenshot: "c2NyZWVu",
	}

	prompt := BuildUserPrompt(req)
	assert.Contains(t, prompt, "Objective: open a text editor")
	assert.Contains(t, prompt, "Completed rounds so far: 2")
	assert.Contains(t, prompt, `"function":"click"`)
	assert.Contains(t, prompt, "current state of the screen")
}

func TestBuildUserPromptTruncatesHistoryOutput(t *testing.T) {
	long := strings.Repeat("x", maxHistoryOutput+50)
	req := Request{
		Objective: "anything",
		History: []api.ExecutionResult{
			{Descriptor: api.ActionDescriptor{Function: "write"}, Output: long, Success: false},
		},
	}

	prompt := BuildUserPrompt(req)
	assert.Contains(t, prompt, strings.Repeat("x", maxHistoryOutput)+"...")
	assert.NotContains(t, prompt, long)
	assert.Contains(t, prompt, "No screenshot is available")
}

func TestTruncateOutputKeepsRunesIntact(t *testing.T) {
	// The limit falls inside the first multi-byte rune after the ASCII
	// prefix; the cut must back off to the rune boundary.
	long := strings.Repeat("a", maxHistoryOutput-1) + strings.Repeat("日", 20)

	got := truncateOutput(long)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, strings.Repeat("a", maxHistoryOutput-1)+"...", got)

	short := "short 日本語 output"
	assert.Equal(t, short, truncateOutput(short))
}
