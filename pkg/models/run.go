package models

import "time"

type EventKind string

const (
	EventPush        EventKind = "push"
	EventPullRequest EventKind = "pull_request"
)

// Event is a repository event delivered to the trigger evaluator. For a
// push, Branch is the branch pushed to; for a pull request, the target
// branch of the merge.
type Event struct {
	Kind   EventKind `yaml:"kind" json:"kind"`
	Branch string    `yaml:"branch" json:"branch"`
	Commit string    `yaml:"commit,omitempty" json:"commit,omitempty"`
}

type RunState string

const (
	RunPending  RunState = "Pending"
	RunRunning  RunState = "Running"
	RunPassed   RunState = "Passed"
	RunFailed   RunState = "Failed"
	RunCanceled RunState = "Canceled"
)

type StepStatus string

const (
	StepPassed  StepStatus = "Passed"
	StepFailed  StepStatus = "Failed"
	StepSkipped StepStatus = "Skipped"
)

// StepResult records the outcome of one sequenced step. Skipped steps carry
// no exit code or output; they were never started.
type StepResult struct {
	Index      int        `json:"index"`
	Name       string     `json:"name"`
	Command    string     `json:"command"`
	Status     StepStatus `json:"status"`
	ExitCode   int        `json:"exitCode"`
	Output     string     `json:"output,omitempty"`
	DurationMs int64      `json:"durationMs"`
	Error      string     `json:"error,omitempty"`
}

type RunRecord struct {
	ID           string       `json:"id"`
	WorkflowName string       `json:"workflowName"`
	Event        Event        `json:"event"`
	State        RunState     `json:"state"`
	Steps        []StepResult `json:"steps,omitempty"`
	CurrentStep  int          `json:"currentStep"`
	TotalSteps   int          `json:"totalSteps"`
	Error        string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	StartedAt    *time.Time   `json:"startedAt,omitempty"`
	CompletedAt  *time.Time   `json:"completedAt,omitempty"`
}

// FailedStep returns the first failed step, or nil for runs that passed.
func (r *RunRecord) FailedStep() *StepResult {
	for i := range r.Steps {
		if r.Steps[i].Status == StepFailed {
			return &r.Steps[i]
		}
	}
	return nil
}

type RunLog struct {
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Step      int       `json:"step"`
}
