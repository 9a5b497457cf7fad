package playbook

import (
	"strings"
	"sync"
	"testing"
)

func TestMergeInsertAndIncrement(t *testing.T) {
	s := NewStore()
	if err := s.Merge([]Entry{{Pattern: "start simple", Context: "MVPs"}}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	e := s.Snapshot()["start simple"]
	if e.Evidence != 1 || e.Context != "MVPs" || e.Version != SchemaVersion {
		t.Fatalf("unexpected entry after insert: %+v", e)
	}

	if err := s.Merge([]Entry{{Pattern: "start simple", Context: "prototypes"}}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	e = s.Snapshot()["start simple"]
	if e.Evidence != 2 {
		t.Fatalf("evidence not incremented by exactly 1: %+v", e)
	}
	if e.Context != "prototypes" {
		t.Fatalf("context not last-write-wins: %+v", e)
	}
}

func TestMergeNoDoubleCountWithinBatch(t *testing.T) {
	s := NewStore()
	err := s.Merge([]Entry{
		{Pattern: "cache invalidation"},
		{Pattern: "cache invalidation"},
		{Pattern: "cache invalidation"},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if got := s.Snapshot()["cache invalidation"].Evidence; got != 1 {
		t.Fatalf("duplicate keys in one batch double-counted: evidence=%d", got)
	}
}

func TestMergeRejectsEmptyPatternAtomically(t *testing.T) {
	s := NewStore()
	err := s.Merge([]Entry{{Pattern: "valid"}, {Pattern: "   "}})
	if err == nil {
		t.Fatal("expected error for empty pattern key")
	}
	if s.Len() != 0 {
		t.Fatalf("partial merge applied, store has %d entries", s.Len())
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := NewStore()
	s.Merge([]Entry{{Pattern: "p1"}})
	snap := s.Snapshot()
	s.Merge([]Entry{{Pattern: "p1"}, {Pattern: "p2"}})

	if snap["p1"].Evidence != 1 || len(snap) != 1 {
		t.Fatalf("snapshot observed later mutation: %+v", snap)
	}

	snap["p3"] = Entry{Pattern: "p3"}
	if _, ok := s.Snapshot()["p3"]; ok {
		t.Fatal("mutating a snapshot leaked into the store")
	}
}

func TestConcurrentMergesSameKey(t *testing.T) {
	const n = 64
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Merge([]Entry{{Pattern: "shared", Context: "any"}}); err != nil {
				t.Errorf("merge: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := s.Snapshot()["shared"].Evidence; got != n {
		t.Fatalf("lost updates: evidence=%d, want %d", got, n)
	}
}

func TestEntriesOrdering(t *testing.T) {
	s := Load([]Entry{
		{Pattern: "b", Evidence: 2},
		{Pattern: "a", Evidence: 2},
		{Pattern: "c", Evidence: 5},
	})
	got := s.Entries()
	if got[0].Pattern != "c" || got[1].Pattern != "a" || got[2].Pattern != "b" {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestContextText(t *testing.T) {
	s := Load([]Entry{
		{Pattern: "prefer boring tech", Context: "greenfield services", Evidence: 3},
		{Pattern: "measure first", Evidence: 1},
	})
	text := s.Snapshot().ContextText(1)
	if !strings.Contains(text, "prefer boring tech") {
		t.Fatalf("top entry missing: %q", text)
	}
	if strings.Contains(text, "measure first") {
		t.Fatalf("limit not applied: %q", text)
	}
	if empty := (Snapshot{}).ContextText(5); empty != "" {
		t.Fatalf("empty snapshot should render empty context, got %q", empty)
	}
}
