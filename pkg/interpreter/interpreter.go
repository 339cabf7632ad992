// Package interpreter normalizes loosely structured planner action
// descriptors into primitive device operations and executes them through
// the injected controller port. Dispatch never returns an error: every
// failure is captured into the ExecutionResult so the control loop can log
// it, feed it back to the planner, and continue.
package interpreter

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"deskpilot/pkg/api"
	"deskpilot/pkg/monitor"
)

// WarmupSettings controls the harmless key tap issued before every
// dispatch. Some input backends drop the first injected event after a
// period of inactivity; the tap forces them awake before the real action.
type WarmupSettings struct {
	Enabled bool
	Key     string
	Settle  time.Duration
}

// warmupInterval is the tap interval of the warm-up press.
const warmupInterval = 0.2

// handlerFunc executes one canonical action against the controller and
// returns a human-readable outcome description.
type handlerFunc func(c api.Controller, params map[string]any) (string, error)

// handlers is the explicit registry from canonical (and synonym) action
// names to their typed handlers. Anything absent here is an unknown action.
var handlers = map[string]handlerFunc{
	actionClick:    execClick,
	actionWrite:    execType,
	actionTypeText: execType,
	actionPress:    execPress,
	actionPressKey: execPress,
	actionHotkey:   execHotkey,
	actionSleep:    execSleep,
}

// Interpreter is the action dispatcher for one run.
type Interpreter struct {
	controller api.Controller
	status     *monitor.StatusQueue
	warmup     WarmupSettings
	runID      string
}

// New creates a dispatcher bound to one run. status may be nil when no
// observer is attached.
func New(controller api.Controller, status *monitor.StatusQueue, warmup WarmupSettings, runID string) *Interpreter {
	return &Interpreter{
		controller: controller,
		status:     status,
		warmup:     warmup,
		runID:      runID,
	}
}

// Dispatch maps one descriptor onto exactly one primitive call (or one
// primitive call per key, for press with a key list) and returns its
// result. It never panics and never returns an error; the result's Success
// and Kind fields carry the outcome.
func (i *Interpreter) Dispatch(desc api.ActionDescriptor) (result api.ExecutionResult) {
	i.emitStatus(desc)

	slog.Info("Now performing",
		"function", desc.Function,
		"parameters", desc.Parameters,
		"justification", desc.Justification,
	)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Dispatch panicked", "function", desc.Function, "error", r)
			result = i.failure(desc, api.ErrorActionExecution, fmt.Errorf("internal panic: %v", r))
		}
	}()

	if strings.TrimSpace(desc.Function) == "" {
		return i.failure(desc, api.ErrorParse, errors.New("descriptor is missing the 'function' field"))
	}

	i.warmUp()

	name := canonicalName(desc.Function)
	handler, ok := handlers[name]
	if !ok {
		return i.failure(desc, api.ErrorUnknownAction,
			fmt.Errorf("no such function %q in the action table", name))
	}

	params := desc.Parameters
	if params == nil {
		params = map[string]any{}
	}

	output, err := handler(i.controller, params)
	if err != nil {
		kind := api.ErrorActionExecution
		var pe *parseError
		if errors.As(err, &pe) {
			kind = api.ErrorParse
		}
		return i.failure(desc, kind, err)
	}

	return api.ExecutionResult{
		Descriptor: desc,
		Output:     output,
		Success:    true,
	}
}

// emitStatus enqueues the step's justification before the dispatch
// attempt, independent of the action's eventual success.
func (i *Interpreter) emitStatus(desc api.ActionDescriptor) {
	if i.status == nil {
		return
	}
	content := desc.Justification
	if content == "" {
		content = fmt.Sprintf("Performing %s", desc.Function)
	}
	i.status.Push(i.runID, monitor.StageDispatch, content)
}

// warmUp taps a harmless key and settles briefly. A warm-up failure is
// logged and swallowed: it must never fail the real action.
func (i *Interpreter) warmUp() {
	if !i.warmup.Enabled {
		return
	}
	if err := i.controller.PressKey(i.warmup.Key, 1, warmupInterval); err != nil {
		slog.Warn("Warm-up key tap failed", "key", i.warmup.Key, "error", err)
	}
	time.Sleep(i.warmup.Settle)
}

func (i *Interpreter) failure(desc api.ActionDescriptor, kind api.ErrorKind, cause error) api.ExecutionResult {
	output := fmt.Sprintf("Error executing %s with parameters %v: %v",
		desc.Function, desc.Parameters, cause)
	slog.Error("Action failed",
		"function", desc.Function,
		"parameters", desc.Parameters,
		"kind", string(kind),
		"error", cause,
	)
	return api.ExecutionResult{
		Descriptor: desc,
		Output:     output,
		Success:    false,
		Kind:       kind,
	}
}

func execClick(c api.Controller, params map[string]any) (string, error) {
	a, err := parseClick(params)
	if err != nil {
		return "", err
	}
	if err := c.Click(a.X, a.Y, a.Clicks); err != nil {
		return "", err
	}
	return fmt.Sprintf("Clicked at (%d, %d) with %d clicks", a.X, a.Y, a.Clicks), nil
}

func execType(c api.Controller, params map[string]any) (string, error) {
	a, err := parseType(params)
	if err != nil {
		return "", err
	}
	if err := c.TypeText(a.Text, a.Interval); err != nil {
		return "", err
	}
	return fmt.Sprintf("Typed: %s", a.Text), nil
}

// execPress issues one primitive press per key, in list order, each with
// the same presses/interval.
func execPress(c api.Controller, params map[string]any) (string, error) {
	a, err := parsePress(params)
	if err != nil {
		return "", err
	}
	for _, key := range a.Keys {
		if err := c.PressKey(key, a.Presses, a.Interval); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Pressed key: %s (%d times)", strings.Join(a.Keys, ", "), a.Presses), nil
}

// execHotkey issues one combined press with all keys held simultaneously.
func execHotkey(c api.Controller, params map[string]any) (string, error) {
	a, err := parseHotkey(params)
	if err != nil {
		return "", err
	}
	if err := c.Hotkey(a.Keys...); err != nil {
		return "", err
	}
	return fmt.Sprintf("Pressed hotkey: %s", strings.Join(a.Keys, "+")), nil
}

func execSleep(c api.Controller, params map[string]any) (string, error) {
	a, err := parseSleep(params)
	if err != nil {
		return "", err
	}
	if err := c.Sleep(a.Seconds); err != nil {
		return "", err
	}
	return fmt.Sprintf("Slept for %v seconds", a.Seconds), nil
}
