// Package search ranks stored chunks against a free-text query. The store
// supplies the owner-scoped nearest neighbors; this layer owns the query
// embedding, the threshold cut and the result shape handed to callers.
package search

import (
	"context"
	"log/slog"
	"strings"

	"doclib/model"
	"doclib/store"
	"doclib/types"
)

const (
	DefaultLimit     = 10
	DefaultThreshold = 0.5
)

type Engine struct {
	store    store.DBStorer
	embedder model.Embedder
	logger   *slog.Logger
}

func NewEngine(storer store.DBStorer, embedder model.Embedder) *Engine {
	return &Engine{
		store:    storer,
		embedder: embedder,
		logger:   slog.Default(),
	}
}

// Search embeds query and returns the owner's chunks ranked by similarity.
//
// The store retrieves the top limit nearest neighbors first; the threshold
// then prunes within that bounded set. The result can therefore hold fewer
// than limit entries even when more chunks elsewhere in the corpus would
// clear the threshold. Filtering never re-sorts: output keeps the
// nearest-neighbor rank order.
//
// A blank query returns an empty result without touching the embedder or
// the store. An owner with no matching chunks gets an empty result, not an
// error.
func (e *Engine) Search(ctx context.Context, query, ownerID string, limit int, threshold float64) ([]types.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []types.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	nearest, err := e.store.SearchChunks(ctx, embedding, ownerID, limit)
	if err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(nearest))
	for _, r := range nearest {
		if r.Similarity > threshold {
			results = append(results, r)
		}
	}

	e.logger.Info("similarity search",
		"owner_id", ownerID,
		"retrieved", len(nearest),
		"above_threshold", len(results),
		"threshold", threshold,
	)
	return results, nil
}
