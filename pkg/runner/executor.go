package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/Promptonauts/conveyor/pkg/models"
)

// Executor runs a single step as one blocking shell process.
type Executor struct {
	// Shell is the interpreter for step commands, "sh" when empty.
	Shell string
	// Dir is the working directory for every step, inherited when empty.
	Dir string
}

func NewExecutor(dir string) *Executor {
	return &Executor{Dir: dir}
}

// StepOutput is what a finished (or killed) step process left behind.
type StepOutput struct {
	Output   string
	ExitCode int
	Duration time.Duration
}

// RunStep executes the step command under `sh -c` with env merged over the
// parent process environment, step env winning over job env. It returns a
// nil error for any process that ran to completion, even with a non-zero
// exit code; the error path is reserved for processes that could not start
// or were killed by the context.
func (e *Executor) RunStep(ctx context.Context, step models.StepSpec, env map[string]string) (StepOutput, error) {
	if step.Timeout != "" {
		d, err := time.ParseDuration(step.Timeout)
		if err != nil {
			return StepOutput{ExitCode: -1}, fmt.Errorf("step %s: invalid timeout: %w", step.Name, err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	shell := e.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", step.Run)
	cmd.Dir = e.Dir
	cmd.Env = os.Environ()
	for k, v := range env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	for k, v := range step.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	result := StepOutput{
		Output:   out.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	exited := errors.As(err, &exitErr)
	if exited {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = -1
	}
	if ctx.Err() != nil {
		// Killed by timeout or cancellation, not a normal exit.
		return result, ctx.Err()
	}
	if !exited {
		return result, fmt.Errorf("step %s: %w", step.Name, err)
	}
	return result, nil
}
