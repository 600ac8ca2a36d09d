package store

import (
	"github.com/Promptonauts/conveyor/pkg/models"
)

type Store interface {
	PutWorkflow(wf *models.WorkflowSpec) error
	GetWorkflow(name string) (*models.WorkflowSpec, error)
	ListWorkflows() ([]*models.WorkflowSpec, error)
	DeleteWorkflow(name string) error

	CreateRun(run *models.RunRecord) error
	GetRun(id string) (*models.RunRecord, error)
	UpdateRun(run *models.RunRecord) error
	ListRuns(workflowName string, limit int) ([]*models.RunRecord, error)
	GetRunLogs(id string) ([]models.RunLog, error)
	AppendRunLog(id string, log models.RunLog) error

	Watch() <-chan RunEvent

	Migrate() error
	Close() error
}

type EventType string

const (
	EventCreated EventType = "CREATED"
	EventUpdated EventType = "UPDATED"
)

type RunEvent struct {
	Type EventType
	Run  *models.RunRecord
}
