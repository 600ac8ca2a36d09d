// Package workflow loads and validates workflow definition files.
package workflow

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Promptonauts/conveyor/pkg/models"
)

// Parse parses YAML content into a WorkflowSpec and validates it.
func Parse(data []byte) (*models.WorkflowSpec, error) {
	var wf models.WorkflowSpec
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	if err := Validate(&wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// Load reads a workflow file and returns the validated spec.
func Load(path string) (*models.WorkflowSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	return Parse(data)
}

// Validate checks the structural invariants a run depends on: a name, at
// least one trigger, at least one step, and a runnable command per step.
// A malformed workflow is rejected here, before any provisioning happens.
func Validate(wf *models.WorkflowSpec) error {
	if wf.Name == "" {
		return fmt.Errorf("workflow: name is required")
	}
	if wf.On.Push == nil && wf.On.PullRequest == nil {
		return fmt.Errorf("workflow %s: at least one trigger is required", wf.Name)
	}
	if wf.On.Push != nil && wf.On.Push.Branch == "" {
		return fmt.Errorf("workflow %s: push trigger needs a branch", wf.Name)
	}
	if wf.On.PullRequest != nil && wf.On.PullRequest.Branch == "" {
		return fmt.Errorf("workflow %s: pull_request trigger needs a branch", wf.Name)
	}
	if len(wf.Steps) == 0 {
		return fmt.Errorf("workflow %s: at least one step is required", wf.Name)
	}
	for i, step := range wf.Steps {
		if step.Run == "" {
			return fmt.Errorf("workflow %s: step %d (%s) has no run command", wf.Name, i, step.Name)
		}
		if step.Timeout != "" {
			if _, err := time.ParseDuration(step.Timeout); err != nil {
				return fmt.Errorf("workflow %s: step %d (%s): invalid timeout: %w", wf.Name, i, step.Name, err)
			}
		}
	}
	for i, rt := range wf.Runtimes {
		if rt.Name == "" {
			return fmt.Errorf("workflow %s: runtime %d has no name", wf.Name, i)
		}
		if rt.Manager == "" && len(rt.Setup) == 0 {
			return fmt.Errorf("workflow %s: runtime %s declares nothing to install", wf.Name, rt.Name)
		}
		if rt.Manager != "" && rt.Package == "" {
			return fmt.Errorf("workflow %s: runtime %s: manager %s needs a package", wf.Name, rt.Name, rt.Manager)
		}
	}
	return nil
}
