// Package trigger decides whether a repository event starts a run.
package trigger

import "github.com/Promptonauts/conveyor/pkg/models"

// Matches reports whether the event satisfies the workflow's trigger
// declaration: the event kind must have a filter and the event branch must
// equal the filter branch exactly. Non-matching events are simply ignored;
// there is no error path.
func Matches(t models.TriggerSpec, ev models.Event) bool {
	switch ev.Kind {
	case models.EventPush:
		return t.Push != nil && t.Push.Branch == ev.Branch
	case models.EventPullRequest:
		return t.PullRequest != nil && t.PullRequest.Branch == ev.Branch
	default:
		return false
	}
}

// MatchingWorkflows filters the given workflows down to those whose triggers
// fire for the event, preserving order.
func MatchingWorkflows(wfs []*models.WorkflowSpec, ev models.Event) []*models.WorkflowSpec {
	var matched []*models.WorkflowSpec
	for _, wf := range wfs {
		if Matches(wf.On, ev) {
			matched = append(matched, wf)
		}
	}
	return matched
}
