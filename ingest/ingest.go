// Package ingest drives a document's chunk lifecycle: split the content,
// embed every chunk, then swap the stored chunk set in one unit. It is the
// only writer of chunk rows; the search side only reads.
package ingest

import (
	"context"
	"log/slog"
	"time"

	"doclib/chunker"
	"doclib/model"
	"doclib/store"
	"doclib/types"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const DefaultEmbedWorkers = 4

type Service struct {
	store    store.DBStorer
	embedder model.Embedder
	cfg      types.Config
	logger   *slog.Logger
}

func New(storer store.DBStorer, embedder model.Embedder, cfg types.Config) *Service {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}
	if cfg.EmbedWorkers <= 0 {
		cfg.EmbedWorkers = DefaultEmbedWorkers
	}
	return &Service{
		store:    storer,
		embedder: embedder,
		cfg:      cfg,
		logger:   slog.Default(),
	}
}

// Reindex rebuilds the chunk set for doc from content. It serves both the
// created and updated lifecycle hooks: the previous chunk set, if any, is
// replaced wholesale, so stale ordinals never survive an edit.
//
// Chunks are embedded by a bounded worker pool. Ordinals are assigned when
// the text is split and results rejoined by that index, so completion order
// never leaks into stored positions. If any embedding fails the whole
// operation aborts and no chunk is persisted.
func (s *Service) Reindex(ctx context.Context, doc types.Document, content string) error {
	if err := s.store.SaveDocument(ctx, doc); err != nil {
		return err
	}

	pieces := chunker.Split(content, s.cfg.ChunkSize)
	now := time.Now()

	chunks := make([]types.Chunk, len(pieces))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.EmbedWorkers)
	for i, text := range pieces {
		i, text := i, text
		g.Go(func() error {
			embedding, err := s.embedder.Embed(gctx, text)
			if err != nil {
				return err
			}
			chunks[i] = types.Chunk{
				ID:        uuid.New(),
				DocID:     doc.ID,
				Index:     i,
				Content:   text,
				WordCount: chunker.WordCount(text),
				Embedding: embedding,
				CreatedAt: now,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("reindex aborted", "doc_id", doc.ID, "error", err)
		return err
	}

	if err := s.store.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return err
	}

	s.logger.Info("document reindexed", "doc_id", doc.ID, "chunks", len(chunks))
	return nil
}

// Purge drops the chunk set for docID. Idempotent.
func (s *Service) Purge(ctx context.Context, docID uuid.UUID) error {
	return s.store.DeleteChunksByDocID(ctx, docID)
}

// Remove drops the document row along with its chunks, for the deleted
// lifecycle hook.
func (s *Service) Remove(ctx context.Context, docID uuid.UUID) error {
	if err := s.store.DeleteDocument(ctx, docID); err != nil {
		return err
	}
	s.logger.Info("document removed", "doc_id", docID)
	return nil
}
