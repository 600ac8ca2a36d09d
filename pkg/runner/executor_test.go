package runner

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Promptonauts/conveyor/pkg/models"
)

func TestRunStep(t *testing.T) {
	e := NewExecutor("")

	out, err := e.RunStep(context.Background(), models.StepSpec{Name: "echo", Run: "echo hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "hello\n", out.Output)
}

func TestRunStepNonZeroExit(t *testing.T) {
	e := NewExecutor("")

	out, err := e.RunStep(context.Background(), models.StepSpec{Name: "fail", Run: "echo boom; exit 3"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "boom\n", out.Output)
}

func TestRunStepCapturesStderr(t *testing.T) {
	e := NewExecutor("")

	out, err := e.RunStep(context.Background(), models.StepSpec{Name: "warn", Run: "echo oops >&2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "oops\n", out.Output)
}

func TestRunStepEnvOverride(t *testing.T) {
	e := NewExecutor("")

	step := models.StepSpec{
		Name: "env",
		Run:  `echo "$GREETING"`,
		Env:  map[string]string{"GREETING": "from-step"},
	}
	out, err := e.RunStep(context.Background(), step, map[string]string{"GREETING": "from-job"})
	require.NoError(t, err)
	assert.Equal(t, "from-step\n", out.Output)

	out, err = e.RunStep(context.Background(), models.StepSpec{Name: "env", Run: `echo "$GREETING"`}, map[string]string{"GREETING": "from-job"})
	require.NoError(t, err)
	assert.Equal(t, "from-job\n", out.Output)
}

func TestRunStepWorkdir(t *testing.T) {
	dir := t.TempDir()
	e := NewExecutor(dir)

	out, err := e.RunStep(context.Background(), models.StepSpec{Name: "pwd", Run: "pwd"}, nil)
	require.NoError(t, err)
	assert.Contains(t, strings.TrimSpace(out.Output), dir)
}

func TestRunStepTimeout(t *testing.T) {
	e := NewExecutor("")

	step := models.StepSpec{Name: "slow", Run: "sleep 5", Timeout: "100ms"}
	out, err := e.RunStep(context.Background(), step, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEqual(t, 0, out.ExitCode)
}

func TestRunStepCanceled(t *testing.T) {
	e := NewExecutor("")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := e.RunStep(ctx, models.StepSpec{Name: "slow", Run: "sleep 5"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRunStepInvalidTimeout(t *testing.T) {
	e := NewExecutor("")

	_, err := e.RunStep(context.Background(), models.StepSpec{Name: "bad", Run: "true", Timeout: "soon"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid timeout")
}
