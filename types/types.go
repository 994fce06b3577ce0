package types

import (
	"time"

	"github.com/google/uuid"
)

// Document is the parent record a chunk set belongs to. The document CRUD
// layer owns the full record; this service only keeps the columns it needs
// for the owner scope filter and result provenance.
type Document struct {
	ID        uuid.UUID
	Title     string
	OwnerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk is a bounded piece of a document's content stored with its own
// embedding. Index is the zero-based position of the chunk in the original
// text; it is assigned at split time and never changes afterwards.
type Chunk struct {
	ID        uuid.UUID
	DocID     uuid.UUID
	Index     int
	Content   string
	WordCount int
	Embedding []float32
	CreatedAt time.Time
}

// SearchResult is one ranked hit of a similarity search. Similarity is
// 1 - cosine distance: 1.0 means identical direction, 0.0 orthogonal,
// negative opposite.
type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocID      uuid.UUID `json:"doc_id"`
	DocTitle   string    `json:"doc_title"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

type Config struct {
	ChunkSize    int
	EmbedWorkers int
}
