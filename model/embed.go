package model

import (
	"context"
	"log/slog"
	"os"
	"strconv"
)

// Embedder converts free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// DefaultDimensions matches text-embedding-3-small.
const DefaultDimensions = 1536

// NewEmbedderFromEnv builds the OpenAI-compatible embedder from environment
// configuration. The provider is treated as a black box: no retries, no
// caching, failures propagate to the caller.
func NewEmbedderFromEnv() *OpenAIEmbedder {
	dims := DefaultDimensions
	if v := os.Getenv("EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			dims = n
		}
	}

	embedder := NewOpenAIEmbedder(OpenAIConfig{
		BaseURL:    os.Getenv("OPENAI_BASE_URL"),
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		Model:      os.Getenv("EMBEDDING_MODEL"),
		Dimensions: dims,
	})

	slog.Default().Info("embedder configured", "model", embedder.model, "dimensions", dims)
	return embedder
}
