package playbook

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// SchemaVersion tags stored entries so future fields can be added without
// breaking persisted snapshots.
const SchemaVersion = 1

type Entry struct {
	Version  int    `json:"version"`
	Pattern  string `json:"pattern"`
	Context  string `json:"context,omitempty"`
	Evidence int    `json:"evidence"`
}

// Snapshot is a read-only copy of the store handed to the phases. Mutating a
// snapshot never affects the store it was taken from.
type Snapshot map[string]Entry

// Store holds the evolving playbook, keyed by pattern text. All mutation goes
// through Merge; phases only ever see snapshots.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

func Load(entries []Entry) *Store {
	s := NewStore()
	for _, e := range entries {
		if e.Pattern == "" {
			continue
		}
		if e.Version == 0 {
			e.Version = SchemaVersion
		}
		s.entries[e.Pattern] = e
	}
	return s
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(Snapshot, len(s.entries))
	for k, v := range s.entries {
		snap[k] = v
	}
	return snap
}

// SnapshotOf builds a snapshot from an arbitrary entry list, e.g. the subset
// a retriever judged relevant for the current task.
func SnapshotOf(entries []Entry) Snapshot {
	snap := make(Snapshot, len(entries))
	for _, e := range entries {
		if e.Pattern != "" {
			snap[e.Pattern] = e
		}
	}
	return snap
}

// Merge applies a batch of learned-pattern deltas atomically: either every
// delta is applied or none is. An existing key increments its evidence count
// by exactly one per Merge call, no matter how many times the key repeats
// inside the batch; its context is overwritten when the delta carries one.
// A new key is inserted with evidence 1.
func (s *Store) Merge(deltas []Entry) error {
	for _, d := range deltas {
		if strings.TrimSpace(d.Pattern) == "" {
			return fmt.Errorf("merge: delta with empty pattern key")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(deltas))
	for _, d := range deltas {
		if seen[d.Pattern] {
			continue
		}
		seen[d.Pattern] = true

		if cur, ok := s.entries[d.Pattern]; ok {
			cur.Evidence++
			if d.Context != "" {
				cur.Context = d.Context
			}
			s.entries[d.Pattern] = cur
			continue
		}
		s.entries[d.Pattern] = Entry{
			Version:  SchemaVersion,
			Pattern:  d.Pattern,
			Context:  d.Context,
			Evidence: 1,
		}
	}
	return nil
}

// Entries returns all entries ordered by evidence descending, then pattern
// ascending, so output is stable for persistence and prompts.
func (s *Store) Entries() []Entry {
	return s.Snapshot().Entries()
}

func (snap Snapshot) Entries() []Entry {
	out := make([]Entry, 0, len(snap))
	for _, e := range snap {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Evidence != out[j].Evidence {
			return out[i].Evidence > out[j].Evidence
		}
		return out[i].Pattern < out[j].Pattern
	})
	return out
}

// ContextText renders the strongest entries as prompt context for the model.
// At most limit entries are included; limit <= 0 means all.
func (snap Snapshot) ContextText(limit int) string {
	entries := snap.Entries()
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("### **Playbook (validated patterns from previous cycles):**\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("- %s", e.Pattern))
		if e.Context != "" {
			sb.WriteString(fmt.Sprintf(" (applies when: %s)", e.Context))
		}
		sb.WriteString(fmt.Sprintf(" [seen %dx]\n", e.Evidence))
	}
	return sb.String()
}
