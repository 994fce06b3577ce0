package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"doclib/types"

	"github.com/pkoukk/tiktoken-go"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "text-embedding-3-small"

	// maxInputTokens is the provider's input cap for embedding models.
	// Checked locally so an oversized chunk fails with a clear error
	// instead of an opaque 400 from the API.
	maxInputTokens = 8191
)

// OpenAIEmbedder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEmbedder struct {
	baseURL    string
	apiKey     string
	model      string
	dimensions int
	client     *http.Client

	encOnce sync.Once
	enc     *tiktoken.Tiktoken
}

type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func NewOpenAIEmbedder(cfg OpenAIConfig) *OpenAIEmbedder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OpenAIEmbedder{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: t},
	}
}

// Dimension returns the fixed length of vectors this embedder produces.
func (e *OpenAIEmbedder) Dimension() int { return e.dimensions }

// Embed requests one embedding vector for text. Provider failures, empty
// responses and wrong-length vectors all surface as types.EmbeddingError;
// nothing is retried here.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	// A token is at least one byte, so only inputs longer than the cap in
	// bytes can possibly exceed it.
	if len(text) > maxInputTokens {
		if tokens, ok := e.countTokens(text); ok && tokens > maxInputTokens {
			return nil, types.NewEmbeddingError(fmt.Errorf("input is %d tokens, provider limit is %d", tokens, maxInputTokens))
		}
	}

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, types.NewEmbeddingError(fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, types.NewEmbeddingError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, types.NewEmbeddingError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, types.NewEmbeddingError(fmt.Errorf("status %d: %s", resp.StatusCode, string(payload)))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewEmbeddingError(fmt.Errorf("read response: %w", err))
	}

	var out embeddingResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, types.NewEmbeddingError(fmt.Errorf("unmarshal response: %w", err))
	}

	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, types.NewEmbeddingError(fmt.Errorf("provider returned no embedding for input of %d bytes", len(text)))
	}

	vec := out.Data[0].Embedding
	if len(vec) != e.dimensions {
		return nil, types.NewEmbeddingError(fmt.Errorf("provider returned %d dimensions, expected %d", len(vec), e.dimensions))
	}
	return vec, nil
}

// countTokens reports the tiktoken count for text. The encoder needs its BPE
// table; when that is unavailable the guard is skipped and the provider's own
// limit applies.
func (e *OpenAIEmbedder) countTokens(text string) (int, bool) {
	e.encOnce.Do(func() {
		enc, err := tiktoken.EncodingForModel(e.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
			if err != nil {
				return
			}
		}
		e.enc = enc
	})
	if e.enc == nil {
		return 0, false
	}
	return len(e.enc.Encode(text, nil, nil)), true
}
