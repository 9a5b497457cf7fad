package storage

import (
	"context"
	"time"

	"GoACE/app/playbook"
)

type Interface interface {
	SaveCycle(ctx context.Context, row CycleRow) error
	GetCyclesByTaskID(ctx context.Context, taskID string) ([]CycleRow, error)
	SavePlaybook(ctx context.Context, entries []playbook.Entry) error
	LoadPlaybook(ctx context.Context) ([]playbook.Entry, error)
}

// CycleRow is the persisted form of a completed or failed cycle. Phase
// outputs are stored as JSON so the schema survives output evolution.
type CycleRow struct {
	ID        string    `json:"id" db:"id"`
	TaskID    string    `json:"task_id" db:"task_id"`
	Task      string    `json:"task" db:"task"`
	State     string    `json:"state" db:"state"`
	Generator string    `json:"generator" db:"generator"`
	Reflector string    `json:"reflector" db:"reflector"`
	Curator   string    `json:"curator" db:"curator"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
