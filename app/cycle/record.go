package cycle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xlab/treeprint"

	"GoACE/app/phases"
	"GoACE/app/storage"
)

type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReflecting State = "reflecting"
	StateCurating   State = "curating"
	StateApplying   State = "applying"
	StateFailed     State = "failed"
)

// Record is the audit unit of one cycle. On failure it carries whatever
// prefix of phase outputs was produced before the cycle aborted.
type Record struct {
	ID         uuid.UUID
	Task       string
	Generator  *phases.GeneratorOutput
	Reflector  *phases.ReflectorOutput
	Curator    *phases.CuratorOutput
	State      State
	StartedAt  time.Time
	FinishedAt time.Time
}

// TaskKey derives a stable identifier from task text, so every cycle run for
// the same task groups under one history key.
func TaskKey(task string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(task))
}

func (r *Record) toRow() storage.CycleRow {
	row := storage.CycleRow{
		ID:        r.ID.String(),
		TaskID:    TaskKey(r.Task).String(),
		Task:      r.Task,
		State:     string(r.State),
		CreatedAt: r.StartedAt,
	}
	if r.Generator != nil {
		if b, err := json.Marshal(r.Generator); err == nil {
			row.Generator = string(b)
		}
	}
	if r.Reflector != nil {
		if b, err := json.Marshal(r.Reflector); err == nil {
			row.Reflector = string(b)
		}
	}
	if r.Curator != nil {
		if b, err := json.Marshal(r.Curator); err == nil {
			row.Curator = string(b)
		}
	}
	return row
}

// RenderTree renders the cycle for logs and chat summaries: approaches with
// their scores and risks, then the recommendation.
func (r *Record) RenderTree() string {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("cycle %s [%s]", r.ID, r.State))
	tree.AddNode("task: " + r.Task)

	if r.Generator != nil {
		branch := tree.AddBranch("approaches")
		for _, a := range r.Generator.Approaches {
			ab := branch.AddBranch(a.Name)
			if a.CoreIdea != "" {
				ab.AddNode(a.CoreIdea)
			}
			if r.Reflector != nil {
				if s, ok := r.Reflector.Tradeoffs[a.Name]; ok {
					ab.AddNode(fmt.Sprintf("perf=%s maint=%s sec=%s cost=%s risk=%s",
						s.Performance, s.Maintainability, s.Security, s.Cost, s.Risk))
				}
				for _, risk := range r.Reflector.Risks[a.Name] {
					ab.AddNode("risk: " + risk)
				}
			}
		}
	}

	if r.Reflector != nil && len(r.Reflector.BlindSpots) > 0 {
		branch := tree.AddBranch("blind spots")
		for _, b := range r.Reflector.BlindSpots {
			branch.AddNode(b)
		}
	}

	if r.Curator != nil {
		branch := tree.AddBranch("recommendation: " + r.Curator.Recommended)
		if r.Curator.Rationale != "" {
			branch.AddNode(r.Curator.Rationale)
		}
		if r.Curator.Alternative != nil {
			branch.AddNode(fmt.Sprintf("fallback: %s (when: %s)", r.Curator.Alternative.Name, r.Curator.Alternative.When))
		}
		for _, g := range r.Curator.Guidance {
			branch.AddNode(g)
		}
		if n := len(r.Curator.LearnedPatterns); n > 0 {
			branch.AddNode(fmt.Sprintf("learned patterns: %d", n))
		}
	}

	return tree.String()
}
