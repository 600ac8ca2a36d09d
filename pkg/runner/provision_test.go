package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Promptonauts/conveyor/pkg/models"
)

func TestProvisionStepsPip(t *testing.T) {
	wf := &models.WorkflowSpec{
		Name: "x",
		Runtimes: []models.RuntimeSpec{
			{Name: "cython", Manager: "pip", Package: "cython", Version: "0.29.36"},
		},
	}

	steps, env, err := ProvisionSteps(wf)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "upgrade pip", steps[0].Name)
	assert.Equal(t, "python -m pip install --upgrade pip", steps[0].Run)
	assert.Equal(t, "install cython", steps[1].Name)
	assert.Equal(t, "python -m pip install --no-cache-dir cython==0.29.36", steps[1].Run)
	assert.Empty(t, env)
}

func TestProvisionStepsPipUpgradeOnce(t *testing.T) {
	wf := &models.WorkflowSpec{
		Name: "x",
		Runtimes: []models.RuntimeSpec{
			{Name: "a", Manager: "pip", Package: "a"},
			{Name: "b", Manager: "pip", Package: "b"},
		},
	}

	steps, _, err := ProvisionSteps(wf)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "upgrade pip", steps[0].Name)
	assert.Equal(t, "python -m pip install --no-cache-dir a", steps[1].Run)
	assert.Equal(t, "python -m pip install --no-cache-dir b", steps[2].Run)
}

func TestProvisionStepsChoco(t *testing.T) {
	wf := &models.WorkflowSpec{
		Name: "x",
		Runtimes: []models.RuntimeSpec{
			{
				Name:    "ironpython",
				Manager: "choco",
				Package: "ipy",
				Version: "2.7.12",
				Setup: []string{
					"ipy -X:Frames -m ensurepip",
					"ipy -X:Frames -m pip install ironpython-pytest",
				},
				Env: map[string]string{"IRONPYTHONPATH": "./src"},
			},
		},
	}

	steps, env, err := ProvisionSteps(wf)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, "install ironpython", steps[0].Name)
	assert.Equal(t, "choco install ipy --yes --version=2.7.12", steps[0].Run)
	assert.Equal(t, "ironpython setup 1", steps[1].Name)
	assert.Equal(t, "ipy -X:Frames -m ensurepip", steps[1].Run)
	assert.Equal(t, "ipy -X:Frames -m pip install ironpython-pytest", steps[2].Run)
	assert.Equal(t, "./src", env["IRONPYTHONPATH"])
}

func TestProvisionStepsSetupOnly(t *testing.T) {
	wf := &models.WorkflowSpec{
		Name: "x",
		Runtimes: []models.RuntimeSpec{
			{Name: "local", Setup: []string{"echo ready"}, Env: map[string]string{"MARK": "1"}},
		},
	}

	steps, env, err := ProvisionSteps(wf)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "local setup 1", steps[0].Name)
	assert.Equal(t, "1", env["MARK"])
}

func TestProvisionStepsUnknownManager(t *testing.T) {
	wf := &models.WorkflowSpec{
		Name: "x",
		Runtimes: []models.RuntimeSpec{
			{Name: "py", Manager: "apt", Package: "python3"},
		},
	}

	_, _, err := ProvisionSteps(wf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown package manager "apt"`)
}

func TestProvisionStepsNoRuntimes(t *testing.T) {
	steps, env, err := ProvisionSteps(&models.WorkflowSpec{Name: "x"})
	require.NoError(t, err)
	assert.Empty(t, steps)
	assert.Empty(t, env)
}
