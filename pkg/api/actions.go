package api

// ActionDescriptor is one planner-emitted instruction naming a primitive
// device action and its parameters. The field names form the wire contract
// with every planner backend and must not change.
type ActionDescriptor struct {
	// Function is the action name. It may carry a provider prefix such as
	// "pyautogui." or "time." which the interpreter strips before matching.
	Function string `json:"function"`
	// Parameters is a loosely typed mapping; planners vary the shape and
	// naming, so alias resolution happens at the interpreter boundary.
	// A nil map is equivalent to an empty one.
	Parameters map[string]any `json:"parameters,omitempty"`
	// Justification is the planner's human-readable reason for this step.
	Justification string `json:"human_readable_justification,omitempty"`
}

// ErrorKind classifies a failure for both per-descriptor results and
// run-terminal outcomes.
type ErrorKind string

const (
	ErrorNone            ErrorKind = ""
	ErrorParse           ErrorKind = "parse_error"
	ErrorUnknownAction   ErrorKind = "unknown_action"
	ErrorActionExecution ErrorKind = "action_execution_error"
	ErrorPlanning        ErrorKind = "planning_error"
	ErrorScreenCapture   ErrorKind = "screen_capture_error"
	ErrorMaxSteps        ErrorKind = "max_steps_exceeded"
	ErrorInterrupted     ErrorKind = "interrupted"
)

// ExecutionResult records the outcome of dispatching one descriptor.
// It is produced exactly once per dispatch and never mutated afterwards.
type ExecutionResult struct {
	Descriptor ActionDescriptor `json:"descriptor"`
	Output     string           `json:"output"`
	Success    bool             `json:"success"`
	// Kind is ErrorNone on success, otherwise one of the per-descriptor
	// failure kinds (parse_error, unknown_action, action_execution_error).
	Kind ErrorKind `json:"kind,omitempty"`
}

// Plan is one planning round's output: an ordered list of descriptors plus
// an optional completion message. A non-empty Done terminates the run after
// the steps have been processed, even when Steps is empty.
type Plan struct {
	Steps []ActionDescriptor `json:"steps"`
	Done  string             `json:"done,omitempty"`
}
