package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"GoACE/app/models"
	"GoACE/app/playbook"
)

const (
	vectorSize     = 2560
	collectionName = "playbook"
)

type Client struct {
	vectors vectorStore
	model   models.Interface
}

func NewClient(model models.Interface) (Interface, error) {
	vectors, err := NewQdrantStore(collectionName)
	if err != nil {
		return nil, err
	}
	return &Client{
		model:   model,
		vectors: vectors,
	}, nil
}

func (c *Client) InitContext(ctx context.Context) error {
	_, err := c.vectors.InitContext(ctx, vectorSize)
	return err
}

// IndexEntries embeds each entry and upserts it. Point IDs are derived from
// the pattern key so re-indexing an updated entry replaces its point instead
// of duplicating it.
func (c *Client) IndexEntries(ctx context.Context, entries []playbook.Entry) error {
	batch := make([]patternDoc, 0, len(entries))
	for _, e := range entries {
		if e.Pattern == "" {
			continue
		}
		text := e.Pattern
		if e.Context != "" {
			text = fmt.Sprintf("%s (applies when: %s)", e.Pattern, e.Context)
		}
		vec, err := c.model.EmbedText(ctx, text)
		if err != nil {
			return fmt.Errorf("embed pattern %q: %w", e.Pattern, err)
		}
		batch = append(batch, patternDoc{
			ID:       uuid.NewSHA1(uuid.NameSpaceOID, []byte(e.Pattern)).String(),
			Pattern:  e.Pattern,
			Context:  e.Context,
			Evidence: e.Evidence,
			Vector:   vec,
		})
	}
	if len(batch) == 0 {
		return nil
	}
	return c.vectors.UpsertBatch(ctx, batch)
}

func (c *Client) Search(ctx context.Context, task string, k int) ([]playbook.Entry, error) {
	vec, err := c.model.EmbedText(ctx, task)
	if err != nil {
		return nil, err
	}
	docs, err := c.vectors.Query(ctx, vec, k)
	if err != nil {
		return nil, err
	}

	entries := make([]playbook.Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, playbook.Entry{
			Version:  playbook.SchemaVersion,
			Pattern:  d.Pattern,
			Context:  d.Context,
			Evidence: d.Evidence,
		})
	}
	return entries, nil
}
