package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

// EmbedText returns the embedding vector for input, caching per input text.
// Playbook patterns are embedded on every re-index, so the cache saves most
// of the round trips.
func (mc *LLMClient) EmbedText(ctx context.Context, input string) ([]float32, error) {
	if v, ok := mc.cache.Load(input); ok {
		if emb, ok2 := v.([]float32); ok2 {
			return emb, nil
		}
	}

	if mc.embeddingsModel == "" {
		return nil, errors.New("embeddings model is not configured")
	}

	payload := embeddingRequestPayload{
		Model: mc.embeddingsModel,
		Input: input,
	}
	resp, err := mc.sendEmbeddings(ctx, payload, 3)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}

	emb := resp.Data[0].Embedding
	mc.cache.Store(input, emb)
	return emb, nil
}

func (mc *LLMClient) sendEmbeddings(ctx context.Context, payload embeddingRequestPayload, maxRetries int) (*embeddingResponse, error) {
	var err error
	var response []byte
	var status int
	var parsed embeddingResponse

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			log.Println("🚨 Embeddings request canceled before execution")
			return nil, ctx.Err()
		default:
			if err != nil {
				time.Sleep(time.Duration(math.Pow(2, float64(i))) * 100 * time.Millisecond)
			}
			response, status, err = mc.restClient.Post(ctx, embeddingEndpoint, payload, nil)
			if err != nil {
				log.Printf("⚠️ Embeddings attempt %d failed: HTTP %d | Error: %v", i, status, err)
				continue
			}

			if err = json.Unmarshal(response, &parsed); err != nil {
				log.Printf("⚠️ Error parsing embeddings response: %v", err)
				continue
			}

			return &parsed, nil
		}
	}

	return nil, fmt.Errorf("embeddings request failed after %d retries: %w", maxRetries, err)
}
