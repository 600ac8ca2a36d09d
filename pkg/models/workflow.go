package models

type WorkflowSpec struct {
	Name     string            `yaml:"name" json:"name"`
	On       TriggerSpec       `yaml:"on" json:"on"`
	Env      map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Runtimes []RuntimeSpec     `yaml:"runtimes,omitempty" json:"runtimes,omitempty"`
	Steps    []StepSpec        `yaml:"steps" json:"steps"`
}

// TriggerSpec declares which repository events start a run. A nil filter
// means the event kind never triggers.
type TriggerSpec struct {
	Push        *BranchFilter `yaml:"push,omitempty" json:"push,omitempty"`
	PullRequest *BranchFilter `yaml:"pull_request,omitempty" json:"pull_request,omitempty"`
}

type BranchFilter struct {
	Branch string `yaml:"branch" json:"branch"`
}

// RuntimeSpec describes an interpreter to provision before the workflow's
// own steps run. Manager/Package produce the install command; Setup commands
// run afterwards; Env applies to every subsequent step of the job.
type RuntimeSpec struct {
	Name    string            `yaml:"name" json:"name"`
	Manager string            `yaml:"manager,omitempty" json:"manager,omitempty"`
	Package string            `yaml:"package,omitempty" json:"package,omitempty"`
	Version string            `yaml:"version,omitempty" json:"version,omitempty"`
	Setup   []string          `yaml:"setup,omitempty" json:"setup,omitempty"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

type StepSpec struct {
	Name    string            `yaml:"name" json:"name"`
	Run     string            `yaml:"run" json:"run"`
	Env     map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
	Timeout string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}
