package runner

import (
	"fmt"

	"github.com/Promptonauts/conveyor/pkg/models"
)

// Package manager invocations. The upgrade command runs once per manager
// kind before its first install; managers without one install directly.
var managerUpgrade = map[string]string{
	"pip":   "python -m pip install --upgrade pip",
	"choco": "",
}

// ProvisionSteps expands a workflow's declared runtimes into the install
// steps that run ahead of the workflow's own steps, in declaration order.
// It also returns the merged runtime environment (search paths and the
// like) that applies to every subsequent step of the job.
func ProvisionSteps(wf *models.WorkflowSpec) ([]models.StepSpec, map[string]string, error) {
	var steps []models.StepSpec
	env := make(map[string]string)
	upgraded := make(map[string]bool)

	for _, rt := range wf.Runtimes {
		if rt.Manager != "" {
			upgrade, ok := managerUpgrade[rt.Manager]
			if !ok {
				return nil, nil, fmt.Errorf("runtime %s: unknown package manager %q", rt.Name, rt.Manager)
			}
			if upgrade != "" && !upgraded[rt.Manager] {
				steps = append(steps, models.StepSpec{
					Name: "upgrade " + rt.Manager,
					Run:  upgrade,
				})
				upgraded[rt.Manager] = true
			}
			install, err := installCommand(rt)
			if err != nil {
				return nil, nil, err
			}
			steps = append(steps, models.StepSpec{
				Name: "install " + rt.Name,
				Run:  install,
			})
		}
		for i, setup := range rt.Setup {
			steps = append(steps, models.StepSpec{
				Name: fmt.Sprintf("%s setup %d", rt.Name, i+1),
				Run:  setup,
			})
		}
		for k, v := range rt.Env {
			env[k] = v
		}
	}
	return steps, env, nil
}

func installCommand(rt models.RuntimeSpec) (string, error) {
	switch rt.Manager {
	case "pip":
		spec := rt.Package
		if rt.Version != "" {
			spec = rt.Package + "==" + rt.Version
		}
		return "python -m pip install --no-cache-dir " + spec, nil
	case "choco":
		cmd := "choco install " + rt.Package + " --yes"
		if rt.Version != "" {
			cmd += " --version=" + rt.Version
		}
		return cmd, nil
	default:
		return "", fmt.Errorf("runtime %s: unknown package manager %q", rt.Name, rt.Manager)
	}
}
