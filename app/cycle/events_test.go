package cycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"GoACE/app/models"
	"GoACE/app/phases"
	"GoACE/app/playbook"
)

// gatedModel blocks each task's generator call on its own gate so tests can
// control which cycle progresses when.
type gatedModel struct {
	inner   *scriptedModel
	gates   map[string]chan struct{}
	started chan string
}

func newGatedModel(tasks ...string) *gatedModel {
	g := &gatedModel{
		inner:   healthyModel(),
		gates:   make(map[string]chan struct{}, len(tasks)),
		started: make(chan string, len(tasks)),
	}
	for _, task := range tasks {
		g.gates[task] = make(chan struct{})
	}
	return g
}

func (g *gatedModel) Think(ctx context.Context, messages []models.Message, temperature float64, maxTokens int) (string, error) {
	if len(messages) > 1 && strings.Contains(messages[0].Content, "solution architect") {
		for task, gate := range g.gates {
			if strings.Contains(messages[1].Content, task) {
				g.started <- task
				<-gate
				break
			}
		}
	}
	return g.inner.Think(ctx, messages, temperature, maxTokens)
}

func (g *gatedModel) EmbedText(ctx context.Context, input string) ([]float32, error) {
	return g.inner.EmbedText(ctx, input)
}

type completion struct {
	rec *Record
	err error
}

func collectCompletions(c *Controller, capacity int) chan completion {
	out := make(chan completion, capacity)
	c.OnCycleComplete(func(rec *Record, err error) {
		out <- completion{rec: rec, err: err}
	})
	return out
}

func awaitCompletion(t *testing.T, ch chan completion) completion {
	t.Helper()
	select {
	case got := <-ch:
		return got
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for cycle completion")
		return completion{}
	}
}

func awaitStarted(t *testing.T, g *gatedModel, task string) {
	t.Helper()
	select {
	case got := <-g.started:
		if got != task {
			t.Fatalf("unexpected cycle started: %q, want %q", got, task)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("timed out waiting for cycle %q to start", task)
	}
}

func TestEventLoopRunsQueuedCycle(t *testing.T) {
	c := NewController(healthyModel(), playbook.NewStore(), &fakeStorage{}, nil,
		phases.DefaultWeights(), phases.TieBreakInputOrder)
	done := collectCompletions(c, 1)

	go c.Start()
	c.QueueEvent(Event{
		Task:        taskQueueTask,
		HandlerFunc: EventsHandlerFuncDefault[NewCycle],
	})

	got := awaitCompletion(t, done)
	if got.err != nil {
		t.Fatalf("queued cycle failed: %v", got.err)
	}
	if got.rec.State != StateIdle || got.rec.Curator == nil {
		t.Fatalf("unexpected record: %+v", got.rec)
	}
	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if active != nil {
		t.Fatal("finished cycle left its slot occupied")
	}
}

func TestNewCycleSupersedesRunningCycle(t *testing.T) {
	const (
		taskA = "Design a rate limiter for the public API."
		taskB = "Design a cache invalidation strategy for the session layer."
	)
	model := newGatedModel(taskA, taskB)
	c := NewController(model, playbook.NewStore(), nil, nil,
		phases.DefaultWeights(), phases.TieBreakInputOrder)
	done := collectCompletions(c, 2)

	EventsHandlerFuncDefault[NewCycle](c, Event{Task: taskA})
	awaitStarted(t, model, taskA)

	// Queuing B cancels A; A is still blocked inside its generator call.
	EventsHandlerFuncDefault[NewCycle](c, Event{Task: taskB})
	awaitStarted(t, model, taskB)

	close(model.gates[taskA])
	first := awaitCompletion(t, done)
	if first.rec.Task != taskA {
		t.Fatalf("expected superseded cycle to finish first, got %q", first.rec.Task)
	}
	if !errors.Is(first.err, context.Canceled) {
		t.Fatalf("superseded cycle should be cancelled, got %v", first.err)
	}

	// A has fully finished; its completion must not have cancelled B.
	close(model.gates[taskB])
	second := awaitCompletion(t, done)
	if second.rec.Task != taskB {
		t.Fatalf("expected second completion for %q, got %q", taskB, second.rec.Task)
	}
	if second.err != nil {
		t.Fatalf("cycle was never cancelled by any caller, yet failed: %v", second.err)
	}
	if second.rec.State != StateIdle {
		t.Fatalf("unexpected state: %s", second.rec.State)
	}
}

func TestCancelCycleEvent(t *testing.T) {
	const task = "Design a retry policy for outbound webhooks."
	model := newGatedModel(task)
	c := NewController(model, playbook.NewStore(), nil, nil,
		phases.DefaultWeights(), phases.TieBreakInputOrder)
	done := collectCompletions(c, 1)

	EventsHandlerFuncDefault[NewCycle](c, Event{Task: task})
	awaitStarted(t, model, task)

	EventsHandlerFuncDefault[CancelCycle](c, Event{})
	close(model.gates[task])

	got := awaitCompletion(t, done)
	if !errors.Is(got.err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", got.err)
	}
	if got.rec.State != StateFailed {
		t.Fatalf("unexpected state: %s", got.rec.State)
	}
}

func TestCancelCycleEventWithNothingRunning(t *testing.T) {
	c := NewController(healthyModel(), playbook.NewStore(), nil, nil,
		phases.DefaultWeights(), phases.TieBreakInputOrder)
	if got := EventsHandlerFuncDefault[CancelCycle](c, Event{}); got != CancelCycle {
		t.Fatalf("unexpected handler result: %q", got)
	}
}
