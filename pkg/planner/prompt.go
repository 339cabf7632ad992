package planner

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"deskpilot/pkg/api"
)

// systemPromptBase instructs the model to act as a step-wise desktop
// planner and pins down the exact JSON wire format the interpreter expects.
const systemPromptBase = `You are an agent controlling a computer through its mouse and keyboard.
Given an objective, the current screenshot, and the results of previous steps, reply with the next batch of actions to perform.

You can only use these functions:
- "click": parameters {"x": int, "y": int, "clicks": int (optional, default 1)} - click at screen coordinates.
- "write": parameters {"text": string, "interval": float (optional, default 0.1)} - type text character by character.
- "press": parameters {"keys": string or list of strings, "presses": int (optional, default 1), "interval": float (optional, default 0.2)} - tap one or more keys in order.
- "hotkey": parameters {"keys": list of strings} - press all keys together as one combination, e.g. ["command", "space"].
- "sleep": parameters {"secs": float} - wait for applications or pages to load.

Reply with ONLY a JSON object in exactly this shape and nothing else:
{
  "steps": [
    {
      "function": "...",
      "parameters": {...},
      "human_readable_justification": "..."
    }
  ],
  "done": null
}

Set "done" to a short completion message for the user once the objective is fully achieved, and leave "steps" empty in that case. Keep each batch small (at most five steps) so you can verify progress from the next screenshot. Never guess coordinates you cannot see.`

// BuildSystemPrompt returns the planner system prompt, with the operator's
// custom instructions appended when present.
func BuildSystemPrompt(customInstructions string) string {
	if customInstructions == "" {
		return systemPromptBase
	}
	return fmt.Sprintf("%s\n\nCustom instructions from the user:\n%s", systemPromptBase, customInstructions)
}

// historyEntry is the compact execution-result shape sent back to the
// planner. Output is truncated so one failed OCR dump cannot blow the
// context window.
type historyEntry struct {
	Function   string         `json:"function"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Success    bool           `json:"success"`
	Output     string         `json:"output,omitempty"`
}

const maxHistoryOutput = 200

// truncateOutput bounds one history output without splitting a multi-byte
// rune at the cut point.
func truncateOutput(s string) string {
	if len(s) <= maxHistoryOutput {
		return s
	}
	cut := maxHistoryOutput
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// BuildUserPrompt serializes one planning request into the user message.
func BuildUserPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Objective: %s\n", req.Objective)
	fmt.Fprintf(&sb, "Completed rounds so far: %d\n", req.StepIndex)

	if len(req.History) > 0 {
		entries := make([]historyEntry, 0, len(req.History))
		for _, r := range req.History {
			entries = append(entries, historyEntry{
				Function:   r.Descriptor.Function,
				Parameters: r.Descriptor.Parameters,
				Success:    r.Success,
				Output:     truncateOutput(r.Output),
			})
		}
		if encoded, err := json.Marshal(entries); err == nil {
			fmt.Fprintf(&sb, "Results of previous steps: %s\n", encoded)
		}
	}

	if req.Screenshot != "" {
		sb.WriteString("The attached image is the current state of the screen.\n")
	} else {
		sb.WriteString("No screenshot is available for this round.\n")
	}

	return sb.String()
}

// ParsePlan extracts a Plan from the raw model reply. Models wrap JSON in
// markdown fences often enough that the fences are stripped first.
func ParsePlan(raw string) (*api.Plan, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("planner returned an empty reply")
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var plan api.Plan
	if err := json.Unmarshal([]byte(text), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan JSON: %w", err)
	}

	return &plan, nil
}
