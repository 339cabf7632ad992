package agent

import "deskpilot/pkg/api"

// runState enumerates the control loop's states. The loop always starts in
// statePlanning and only leaves through one of the terminal outcomes.
type runState int

const (
	statePlanning runState = iota
	stateExecuting
	stateValidating
	stateCapturing
	stateResponding
)

// Status is the terminal outcome class of one run.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusInterrupted Status = "interrupted"
)

// LoopState is the mutable state of one run. It is owned exclusively by
// the control loop for the run's duration and discarded afterwards.
//
// Invariants: StepCount never exceeds MaxSteps while Complete is false;
// once Complete or Interrupted is set no further actions are dispatched;
// a non-empty ErrorMessage implies Complete. Results are appended, never
// mutated or removed.
type LoopState struct {
	StepCount    int
	MaxSteps     int
	Results      []api.ExecutionResult
	Screenshot   string
	Complete     bool
	ErrorMessage string
	ErrorKind    api.ErrorKind
	Interrupted  bool
}

// Outcome is the single terminal result of a run. Every run ends with
// exactly one Outcome, never a silent no-op.
type Outcome struct {
	Status  Status
	Message string
	Kind    api.ErrorKind
	Results []api.ExecutionResult
	Rounds  int
}
