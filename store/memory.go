package store

import (
	"context"
	"math"
	"sort"
	"sync"

	"doclib/types"

	"github.com/google/uuid"
)

// MemoryStore is a brute-force in-memory DBStorer. It backs tests and small
// single-process deployments that have no Postgres at hand; ranking semantics
// match the pgvector query, including the chunk-id tiebreak.
type MemoryStore struct {
	mu     sync.RWMutex
	docs   map[uuid.UUID]types.Document
	chunks map[uuid.UUID][]types.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:   make(map[uuid.UUID]types.Document),
		chunks: make(map[uuid.UUID][]types.Chunk),
	}
}

func (m *MemoryStore) SaveDocument(_ context.Context, doc types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.docs[doc.ID]; ok {
		doc.OwnerID = existing.OwnerID
		doc.CreatedAt = existing.CreatedAt
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *MemoryStore) GetDocumentByID(_ context.Context, docID uuid.UUID) (*types.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[docID]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return &doc, nil
}

func (m *MemoryStore) DeleteDocument(_ context.Context, docID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, docID)
	delete(m.chunks, docID)
	return nil
}

func (m *MemoryStore) SaveChunk(_ context.Context, c types.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[c.DocID]; !ok {
		return types.NewStorageError("save chunk", ErrDocumentNotFound)
	}
	m.chunks[c.DocID] = append(m.chunks[c.DocID], c)
	return nil
}

func (m *MemoryStore) ReplaceChunks(_ context.Context, docID uuid.UUID, chunks []types.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[docID]; !ok {
		return types.NewStorageError("replace chunks", ErrDocumentNotFound)
	}
	replacement := make([]types.Chunk, len(chunks))
	copy(replacement, chunks)
	m.chunks[docID] = replacement
	return nil
}

func (m *MemoryStore) DeleteChunksByDocID(_ context.Context, docID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.chunks, docID)
	return nil
}

func (m *MemoryStore) SearchChunks(_ context.Context, embedding []float32, ownerID string, limit int) ([]types.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []types.SearchResult
	for docID, chunks := range m.chunks {
		doc, ok := m.docs[docID]
		if !ok || doc.OwnerID != ownerID {
			continue
		}
		for _, c := range chunks {
			results = append(results, types.SearchResult{
				ChunkID:    c.ID,
				DocID:      c.DocID,
				DocTitle:   doc.Title,
				Index:      c.Index,
				Content:    c.Content,
				Similarity: cosineSimilarity(embedding, c.Embedding),
			})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].ChunkID.String() < results[j].ChunkID.String()
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
