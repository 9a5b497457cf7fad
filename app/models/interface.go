package models

import "context"

// Interface is the opaque inference capability handed to the phases. It may
// fail or time out; everything downstream of it must stay deterministic.
type Interface interface {
	Think(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error)
	EmbedText(ctx context.Context, input string) ([]float32, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
