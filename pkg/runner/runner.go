// Package runner executes one workflow as a single sequential job:
// provision declared runtimes, then run the workflow's steps in declared
// order, stopping on the first non-zero exit.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Promptonauts/conveyor/pkg/models"
	"github.com/Promptonauts/conveyor/pkg/observability"
	"github.com/Promptonauts/conveyor/pkg/store"
)

// Cap on per-step output kept in the run record. Full output still goes to
// the run log.
const outputTailLimit = 64 * 1024

type Runner struct {
	store   store.Store
	exec    *Executor
	logger  *zap.Logger
	metrics *observability.MetricsRegistry
}

func New(st store.Store, exec *Executor, logger *zap.Logger, metrics *observability.MetricsRegistry) *Runner {
	if exec == nil {
		exec = NewExecutor("")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetricsRegistry()
	}
	return &Runner{store: st, exec: exec, logger: logger, metrics: metrics}
}

// Run executes the workflow for the given event and returns the completed
// run record. A step failure is not an error: it is captured in the record
// as a Failed state. The returned error is reserved for infrastructure
// problems (bad runtime declaration, store failures).
func (r *Runner) Run(ctx context.Context, wf *models.WorkflowSpec, ev models.Event) (*models.RunRecord, error) {
	provSteps, runtimeEnv, err := ProvisionSteps(wf)
	if err != nil {
		return nil, err
	}
	steps := make([]models.StepSpec, 0, len(provSteps)+len(wf.Steps))
	steps = append(steps, provSteps...)
	steps = append(steps, wf.Steps...)

	env := make(map[string]string)
	for k, v := range wf.Env {
		env[k] = v
	}
	for k, v := range runtimeEnv {
		env[k] = v
	}

	rec := &models.RunRecord{
		WorkflowName: wf.Name,
		Event:        ev,
		State:        models.RunPending,
		TotalSteps:   len(steps),
	}
	if err := r.store.CreateRun(rec); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	now := time.Now().UTC()
	rec.State = models.RunRunning
	rec.StartedAt = &now
	if err := r.store.UpdateRun(rec); err != nil {
		return nil, fmt.Errorf("update run: %w", err)
	}

	r.metrics.Counter("runs_started").Inc()
	r.metrics.Gauge("runs_active").Inc()
	defer r.metrics.Gauge("runs_active").Dec()

	r.logger.Info("run started",
		zap.String("run", rec.ID),
		zap.String("workflow", wf.Name),
		zap.String("event", string(ev.Kind)),
		zap.String("branch", ev.Branch),
		zap.Int("steps", len(steps)))

	failed := -1
	canceled := false
	for i, step := range steps {
		if failed >= 0 || canceled {
			rec.Steps = append(rec.Steps, models.StepResult{
				Index:   i,
				Name:    step.Name,
				Command: step.Run,
				Status:  models.StepSkipped,
			})
			continue
		}

		rec.CurrentStep = i
		if err := r.store.UpdateRun(rec); err != nil {
			return nil, fmt.Errorf("update run: %w", err)
		}
		r.logger.Info("step started",
			zap.String("run", rec.ID),
			zap.Int("step", i),
			zap.String("name", step.Name))
		r.appendLog(rec.ID, i, "info", "step started: "+step.Name)

		out, runErr := r.exec.RunStep(ctx, step, env)
		result := models.StepResult{
			Index:      i,
			Name:       step.Name,
			Command:    step.Run,
			ExitCode:   out.ExitCode,
			Output:     tail(out.Output),
			DurationMs: out.Duration.Milliseconds(),
		}

		r.metrics.Counter("steps_executed").Inc()
		r.metrics.Histogram("step_duration_ms").Observe(float64(out.Duration.Milliseconds()))

		if out.Output != "" {
			r.appendLog(rec.ID, i, "info", out.Output)
		}

		switch {
		case runErr != nil && errors.Is(runErr, context.Canceled):
			canceled = true
			result.Status = models.StepFailed
			result.Error = "canceled"
			r.logger.Warn("step canceled", zap.String("run", rec.ID), zap.Int("step", i))
		case runErr != nil:
			failed = i
			result.Status = models.StepFailed
			result.Error = runErr.Error()
		case out.ExitCode != 0:
			failed = i
			result.Status = models.StepFailed
		default:
			result.Status = models.StepPassed
		}
		rec.Steps = append(rec.Steps, result)

		if result.Status == models.StepFailed && !canceled {
			r.metrics.Counter("steps_failed").Inc()
			r.logger.Error("step failed",
				zap.String("run", rec.ID),
				zap.Int("step", i),
				zap.String("name", step.Name),
				zap.Int("exit", out.ExitCode))
			r.appendLog(rec.ID, i, "error", fmt.Sprintf("step failed: %s (exit %d)", step.Name, out.ExitCode))
		}
	}

	done := time.Now().UTC()
	rec.CompletedAt = &done
	switch {
	case canceled:
		rec.State = models.RunCanceled
		rec.Error = "run canceled"
		r.metrics.Counter("runs_canceled").Inc()
	case failed >= 0:
		rec.State = models.RunFailed
		rec.Error = fmt.Sprintf("step %d (%s) failed", failed, steps[failed].Name)
		r.metrics.Counter("runs_failed").Inc()
	default:
		rec.State = models.RunPassed
		r.metrics.Counter("runs_passed").Inc()
	}
	if err := r.store.UpdateRun(rec); err != nil {
		return nil, fmt.Errorf("update run: %w", err)
	}

	r.logger.Info("run finished",
		zap.String("run", rec.ID),
		zap.String("state", string(rec.State)))
	return rec, nil
}

func (r *Runner) appendLog(runID string, step int, level, msg string) {
	err := r.store.AppendRunLog(runID, models.RunLog{
		Timestamp: time.Now().UTC(),
		Level:     level,
		Message:   msg,
		Step:      step,
	})
	if err != nil {
		r.logger.Warn("append run log", zap.String("run", runID), zap.Error(err))
	}
}

func tail(s string) string {
	if len(s) <= outputTailLimit {
		return s
	}
	return s[len(s)-outputTailLimit:]
}
