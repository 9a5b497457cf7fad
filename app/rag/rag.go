package rag

import (
	"context"

	"GoACE/app/playbook"
)

// Interface retrieves the playbook entries most relevant to a task so the
// Generator can bias toward validated patterns without being prompted with
// the whole playbook.
type Interface interface {
	IndexEntries(ctx context.Context, entries []playbook.Entry) error
	Search(ctx context.Context, task string, k int) ([]playbook.Entry, error)
	InitContext(ctx context.Context) error
}

type vectorStore interface {
	UpsertBatch(ctx context.Context, docs []patternDoc) error
	Query(ctx context.Context, vector []float32, k int) ([]patternDoc, error)
	InitContext(ctx context.Context, vectorSize int) (bool, error)
	Close() error
}

type patternDoc struct {
	ID       string
	Pattern  string
	Context  string
	Evidence int
	Vector   []float32
}
