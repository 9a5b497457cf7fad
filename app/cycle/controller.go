package cycle

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"GoACE/app/models"
	"GoACE/app/phases"
	"GoACE/app/playbook"
	"GoACE/app/rag"
	"GoACE/app/storage"
)

const retrievalK = 5

// Controller sequences Generator, Reflector and Curator over one task and
// feeds the Curator's deltas back into the playbook store. Phases within a
// cycle are strictly sequential; independent cycles may run concurrently and
// only serialize at the store merge.
type Controller struct {
	mu         sync.Mutex
	store      *playbook.Store
	db         storage.Interface
	retriever  rag.Interface
	generator  *phases.Generator
	reflector  *phases.Reflector
	curator    *phases.Curator
	events     chan Event
	active     *cycleHandle
	persistMu  sync.Mutex
	onComplete []func(*Record, error)
}

// cycleHandle identifies one event-driven cycle so that a finishing cycle can
// only release its own slot, never a successor's.
type cycleHandle struct {
	cancel context.CancelFunc
}

func NewController(model models.Interface, store *playbook.Store, db storage.Interface,
	retriever rag.Interface, weights phases.Weights, tieBreak phases.TieBreak) *Controller {
	return &Controller{
		store:     store,
		db:        db,
		retriever: retriever,
		generator: phases.NewGenerator(model),
		reflector: phases.NewReflector(model),
		curator:   phases.NewCurator(model, weights, tieBreak),
		events:    make(chan Event, 100),
	}
}

// OnCycleComplete registers a callback invoked after every event-driven
// cycle, successful or not.
func (c *Controller) OnCycleComplete(fn func(*Record, error)) {
	c.mu.Lock()
	c.onComplete = append(c.onComplete, fn)
	c.mu.Unlock()
}

// RunCycle executes one full Generator→Reflector→Curator pass. On success it
// returns the complete record after the learned patterns were merged; on
// failure it returns the partial record prefix together with the typed error,
// and the playbook is left untouched.
func (c *Controller) RunCycle(ctx context.Context, task string) (*Record, error) {
	rec := &Record{
		ID:        uuid.New(),
		Task:      task,
		State:     StateGenerating,
		StartedAt: time.Now(),
	}

	snap := c.snapshotFor(ctx, task)

	gen, err := c.generator.Run(ctx, task, snap)
	if err != nil {
		return c.fail(ctx, rec, err)
	}
	rec.Generator = gen
	log.Printf("✅ Generator produced %d approaches for cycle %s", len(gen.Approaches), rec.ID)

	if err = ctx.Err(); err != nil {
		return c.fail(ctx, rec, err)
	}
	rec.State = StateReflecting

	refl, err := c.reflector.Run(ctx, task, gen, snap)
	if err != nil {
		return c.fail(ctx, rec, err)
	}
	rec.Reflector = refl
	log.Printf("✅ Reflector scored %d approaches, %d blind spots", len(refl.Tradeoffs), len(refl.BlindSpots))

	if err = ctx.Err(); err != nil {
		return c.fail(ctx, rec, err)
	}
	rec.State = StateCurating

	cur, err := c.curator.Run(ctx, task, gen, refl, snap)
	if err != nil {
		return c.fail(ctx, rec, err)
	}
	rec.Curator = cur
	log.Printf("✅ Curator recommends %q with %d learned patterns", cur.Recommended, len(cur.LearnedPatterns))

	if err = ctx.Err(); err != nil {
		return c.fail(ctx, rec, err)
	}
	rec.State = StateApplying

	// Apply-or-nothing: the in-memory merge is atomic under the store's
	// writer lock. Once it commits the mutation is final.
	if err = c.store.Merge(cur.LearnedPatterns); err != nil {
		return c.fail(ctx, rec, err)
	}

	rec.State = StateIdle
	rec.FinishedAt = time.Now()
	c.persistApplied(ctx, rec, cur.LearnedPatterns)
	return rec, nil
}

// snapshotFor returns the read-only playbook view the phases will see. When a
// retriever is wired, only the entries relevant to the task are included;
// retrieval failures fall back to the full snapshot.
func (c *Controller) snapshotFor(ctx context.Context, task string) playbook.Snapshot {
	if c.retriever == nil {
		return c.store.Snapshot()
	}
	entries, err := c.retriever.Search(ctx, task, retrievalK)
	if err != nil {
		log.Printf("⚠️ Playbook retrieval failed, using full snapshot: %v", err)
		return c.store.Snapshot()
	}
	if len(entries) == 0 {
		return c.store.Snapshot()
	}
	return playbook.SnapshotOf(entries)
}

func (c *Controller) fail(ctx context.Context, rec *Record, err error) (*Record, error) {
	rec.State = StateFailed
	rec.FinishedAt = time.Now()
	log.Printf("❌ Cycle %s failed: %v", rec.ID, err)
	if c.db != nil {
		// Cancelled cycles still belong in the audit trail, so the row is
		// written with a detached context.
		if dbErr := c.db.SaveCycle(context.WithoutCancel(ctx), rec.toRow()); dbErr != nil {
			log.Printf("⚠️ Error persisting failed cycle %s: %v", rec.ID, dbErr)
		}
	}
	return rec, err
}

func (c *Controller) persistApplied(ctx context.Context, rec *Record, deltas []playbook.Entry) {
	dbCtx := context.WithoutCancel(ctx)
	if c.db != nil {
		// Snapshot and save under one lock: a cycle holding an older
		// snapshot must never overwrite a newer one in the database.
		c.persistMu.Lock()
		if err := c.db.SavePlaybook(dbCtx, c.store.Entries()); err != nil {
			log.Printf("⚠️ Error persisting playbook: %v", err)
		}
		if err := c.db.SaveCycle(dbCtx, rec.toRow()); err != nil {
			log.Printf("⚠️ Error persisting cycle %s: %v", rec.ID, err)
		}
		c.persistMu.Unlock()
	}
	if c.retriever != nil && len(deltas) > 0 {
		merged := make([]playbook.Entry, 0, len(deltas))
		snap := c.store.Snapshot()
		for _, d := range deltas {
			if e, ok := snap[d.Pattern]; ok {
				merged = append(merged, e)
			}
		}
		if err := c.retriever.IndexEntries(dbCtx, merged); err != nil {
			log.Printf("⚠️ Error indexing learned patterns: %v", err)
		}
	}
}

func (c *Controller) notify(rec *Record, err error) {
	c.mu.Lock()
	callbacks := make([]func(*Record, error), len(c.onComplete))
	copy(callbacks, c.onComplete)
	c.mu.Unlock()
	for _, fn := range callbacks {
		fn(rec, err)
	}
}

// Start runs the event loop, dispatching queued cycle events. It never
// returns; callers run it as the main loop or in its own goroutine.
func (c *Controller) Start() {
	for {
		select {
		case ev := <-c.events:
			c.handleEvent(ev)
		default:
			time.Sleep(1 * time.Second)
		}
	}
}

func (c *Controller) QueueEvent(event Event) {
	select {
	case c.events <- event:
	default:
		log.Print("⚠️ Event queue is full, dropping event")
	}
}

func (c *Controller) handleEvent(ev Event) {
	if ev.HandlerFunc == nil {
		log.Print("⚠️ Event without handler, dropping")
		return
	}
	log.Printf("🆕 New Event received: %s Task: %v", ev.HandlerFunc(c, ev), ev.Task)
}
