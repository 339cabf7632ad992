// Package agent drives one objective to a terminal outcome. The engine is
// a small state machine over Planning, Executing, Validating, Capturing
// and Responding, looping planner rounds until the planner declares the
// objective done, an error ends the run, the round budget runs out, or an
// interrupt is requested.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"deskpilot/pkg/api"
	"deskpilot/pkg/config"
	"deskpilot/pkg/interpreter"
	"deskpilot/pkg/monitor"
	"deskpilot/pkg/planner"
	"deskpilot/pkg/utils"
)

const interruptedMessage = "Run interrupted before completion"

// Engine runs objectives against a device controller using a planner.
// One Engine accepts at most one run at a time; a second Run call while
// another is in flight fails immediately instead of queueing.
type Engine struct {
	planner    planner.Client
	controller api.Controller
	status     *monitor.StatusQueue
	system     *config.SystemConfig

	running     atomic.Bool
	interrupted atomic.Bool
}

// New creates an engine. status may be nil when no observer is attached.
func New(client planner.Client, controller api.Controller, status *monitor.StatusQueue, system *config.SystemConfig) *Engine {
	return &Engine{
		planner:    client,
		controller: controller,
		status:     status,
		system:     system,
	}
}

// RequestInterrupt asks the current run to stop. The request is
// cooperative: it takes effect between action dispatches and at round
// boundaries, never mid-primitive. Safe to call from any goroutine and
// harmless when no run is active.
func (e *Engine) RequestInterrupt() {
	e.interrupted.Store(true)
}

// Running reports whether a run is currently in flight.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// InterruptAndWait requests an interrupt and blocks until the active run
// has released the engine, or until timeout elapses. It reports whether
// the engine is idle on return. Harmless when no run is active.
func (e *Engine) InterruptAndWait(timeout time.Duration) bool {
	e.RequestInterrupt()
	deadline := time.Now().Add(timeout)
	for e.running.Load() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
	return true
}

// Run drives one objective to completion and returns its terminal
// outcome. It never returns nil and never panics on planner or device
// failures; every failure mode maps to an Outcome.
func (e *Engine) Run(ctx context.Context, objective string) *Outcome {
	if !e.running.CompareAndSwap(false, true) {
		return &Outcome{
			Status:  StatusError,
			Kind:    api.ErrorActionExecution,
			Message: "another run is already in progress",
		}
	}
	defer e.running.Store(false)
	e.interrupted.Store(false)

	runID := utils.GenerateRunID()
	st := &LoopState{MaxSteps: max(e.system.MaxSteps, 1)}
	interp := interpreter.New(e.controller, e.status, interpreter.WarmupSettings{
		Enabled: e.system.WarmupEnabled,
		Key:     e.system.WarmupKey,
		Settle:  time.Duration(e.system.WarmupSettleMs) * time.Millisecond,
	}, runID)

	slog.Info("Run started", "runID", runID, "objective", objective, "maxSteps", st.MaxSteps)
	e.push(runID, monitor.StageRound, fmt.Sprintf("Objective received: %s", objective))

	// A screenshot before the first planning round gives the planner the
	// current screen. Failing here is not fatal; the planner simply plans
	// blind for round one.
	if shot, err := e.controller.CaptureScreen(); err != nil {
		slog.Warn("Initial screen capture failed", "runID", runID, "error", err)
	} else {
		st.Screenshot = shot
	}

	var plan *api.Plan
	state := statePlanning

	for {
		switch state {

		case statePlanning:
			e.push(runID, monitor.StageRound, fmt.Sprintf("Planning round %d of %d", st.StepCount+1, st.MaxSteps))
			p, err := e.plan(ctx, objective, st)
			if err != nil {
				slog.Error("Planning failed", "runID", runID, "round", st.StepCount+1, "error", err)
				return e.finish(runID, st, StatusError, api.ErrorPlanning, fmt.Sprintf("Planning failed: %v", err))
			}
			plan = p
			state = stateExecuting

		case stateExecuting:
			abort := false
			for _, step := range plan.Steps {
				if e.stopRequested(ctx) {
					st.Interrupted = true
					return e.finish(runID, st, StatusInterrupted, api.ErrorInterrupted, interruptedMessage)
				}
				res := interp.Dispatch(step)
				st.Results = append(st.Results, res)
				if !res.Success && e.system.FailFast {
					st.ErrorMessage = res.Output
					st.ErrorKind = res.Kind
					abort = true
					break
				}
			}
			if !abort {
				st.StepCount++
			}
			state = stateValidating

		case stateValidating:
			if e.stopRequested(ctx) {
				st.Interrupted = true
			}
			switch {
			case st.Interrupted:
				return e.finish(runID, st, StatusInterrupted, api.ErrorInterrupted, interruptedMessage)
			case st.ErrorMessage != "":
				st.Complete = true
				state = stateResponding
			case plan.Done != "":
				st.Complete = true
				state = stateResponding
			case st.StepCount >= st.MaxSteps:
				st.ErrorMessage = fmt.Sprintf("Maximum steps exceeded: objective not achieved within %d rounds", st.MaxSteps)
				st.ErrorKind = api.ErrorMaxSteps
				st.Complete = true
				state = stateResponding
			default:
				state = stateCapturing
			}

		case stateCapturing:
			shot, err := e.controller.CaptureScreen()
			if err != nil {
				// Without a fresh screenshot the next round would plan
				// against a stale screen, so the run ends here instead.
				st.ErrorMessage = fmt.Sprintf("Screen capture failed: %v", err)
				st.ErrorKind = api.ErrorScreenCapture
				state = stateValidating
				continue
			}
			st.Screenshot = shot
			state = statePlanning

		case stateResponding:
			if st.ErrorKind != api.ErrorNone {
				return e.finish(runID, st, StatusError, st.ErrorKind, st.ErrorMessage)
			}
			msg := plan.Done
			if msg == "" {
				msg = "Objective completed"
			}
			return e.finish(runID, st, StatusSuccess, api.ErrorNone, msg)
		}
	}
}

// plan asks the planner for the next round of actions under the per-round
// deadline.
func (e *Engine) plan(ctx context.Context, objective string, st *LoopState) (*api.Plan, error) {
	pctx := ctx
	if e.system.PlannerTimeoutMs > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, time.Duration(e.system.PlannerTimeoutMs)*time.Millisecond)
		defer cancel()
	}
	return e.planner.Plan(pctx, planner.Request{
		Objective:  objective,
		StepIndex:  st.StepCount,
		History:    st.Results,
		Screenshot: st.Screenshot,
	})
}

// stopRequested reports whether the run should stop cooperatively, either
// by an explicit interrupt or by context cancellation.
func (e *Engine) stopRequested(ctx context.Context) bool {
	return e.interrupted.Load() || ctx.Err() != nil
}

func (e *Engine) finish(runID string, st *LoopState, status Status, kind api.ErrorKind, message string) *Outcome {
	st.Complete = true
	e.push(runID, monitor.StageFinal, message)
	slog.Info("Run finished",
		"runID", runID,
		"status", string(status),
		"rounds", st.StepCount,
		"actions", len(st.Results),
		"message", message,
	)
	return &Outcome{
		Status:  status,
		Message: message,
		Kind:    kind,
		Results: st.Results,
		Rounds:  st.StepCount,
	}
}

func (e *Engine) push(runID, stage, content string) {
	if e.status != nil {
		e.status.Push(runID, stage, content)
	}
}
