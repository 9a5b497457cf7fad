package phases

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"

	"GoACE/app/models"
	"GoACE/app/playbook"
)

const validGeneratorJSON = `{
  "approaches": [
    {"name": "InMemoryQueue", "core_idea": "channel-backed queue", "steps": ["define worker pool", "wire channel"], "assumptions": ["single node"]},
    {"name": "DBBackedQueue", "core_idea": "jobs table with polling", "steps": ["create table", "poll with SKIP LOCKED"]}
  ]
}`

func mockThink(response string, err error) *models.MockModel {
	m := &models.MockModel{}
	m.On("Think", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(response, err)
	return m
}

func TestGeneratorRun(t *testing.T) {
	g := NewGenerator(mockThink("```json\n"+validGeneratorJSON+"\n```", nil))
	out, err := g.Run(context.Background(), "build a queue", playbook.Snapshot{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(out.Approaches) != 2 || out.Approaches[0].Name != "InMemoryQueue" {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestGeneratorEmptyTask(t *testing.T) {
	g := NewGenerator(&models.MockModel{})
	_, err := g.Run(context.Background(), "   ", playbook.Snapshot{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestGeneratorInferenceFailure(t *testing.T) {
	g := NewGenerator(mockThink("", errors.New("connection refused")))
	_, err := g.Run(context.Background(), "build a queue", playbook.Snapshot{})
	if !errors.Is(err, ErrInferenceUnavailable) {
		t.Fatalf("expected ErrInferenceUnavailable, got %v", err)
	}
}

func TestGeneratorRejectsBadOutputs(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"empty_set", `{"approaches": []}`},
		{"duplicate_names", `{"approaches": [{"name":"A","steps":["x"]},{"name":"A","steps":["y"]}]}`},
		{"no_steps", `{"approaches": [{"name":"A","steps":[]}]}`},
		{"blank_name", `{"approaches": [{"name":"  ","steps":["x"]}]}`},
		{"not_json", `no dice`},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			g := NewGenerator(mockThink(cse.response, nil))
			_, err := g.Run(context.Background(), "build a queue", playbook.Snapshot{})
			if !errors.Is(err, ErrInferenceUnavailable) {
				t.Fatalf("expected ErrInferenceUnavailable, got %v", err)
			}
		})
	}
}

func TestGeneratorPromptIncludesPlaybook(t *testing.T) {
	snap := playbook.SnapshotOf([]playbook.Entry{
		{Pattern: "prefer boring tech", Context: "greenfield", Evidence: 4},
	})
	g := NewGenerator(nil)
	msgs := g.prompt("build a queue", snap)
	if len(msgs) != 2 || msgs[0].Role != "system" || msgs[1].Role != "user" {
		t.Fatalf("unexpected prompt shape: %+v", msgs)
	}
	if !strings.Contains(msgs[1].Content, "prefer boring tech") {
		t.Fatalf("playbook context missing from prompt: %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "build a queue") {
		t.Fatalf("task missing from prompt: %q", msgs[1].Content)
	}
}
