package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"doclib/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// ErrDocumentNotFound is returned by document lookups that match no row.
var ErrDocumentNotFound = errors.New("document not found")

// DBStorer is the persistence contract of the retrieval pipeline. Chunk rows
// are owned exclusively by this layer; a document's chunk set is only ever
// replaced wholesale, never mutated chunk by chunk.
type DBStorer interface {
	SaveDocument(ctx context.Context, doc types.Document) error
	GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error)
	DeleteDocument(ctx context.Context, docID uuid.UUID) error
	SaveChunk(ctx context.Context, chunk types.Chunk) error
	ReplaceChunks(ctx context.Context, docID uuid.UUID, chunks []types.Chunk) error
	DeleteChunksByDocID(ctx context.Context, docID uuid.UUID) error
	SearchChunks(ctx context.Context, embedding []float32, ownerID string, limit int) ([]types.SearchResult, error)
}

type PostgresStore struct {
	pool       *pgxpool.Pool
	dimensions int
	logger     *slog.Logger
}

func NewPostgresStore(ctx context.Context, connStr string, dimensions int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool:       pool,
		dimensions: dimensions,
		logger:     slog.Default(),
	}, nil
}

func (p *PostgresStore) SaveDocument(ctx context.Context, doc types.Document) error {
	query := `INSERT INTO documents (id, title, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			updated_at = EXCLUDED.updated_at
		`
	_, err := p.pool.Exec(ctx, query, doc.ID, doc.Title, doc.OwnerID, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return types.NewStorageError("save document", err)
	}
	return nil
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, docID uuid.UUID) (*types.Document, error) {
	row := p.pool.QueryRow(ctx,
		"SELECT id, title, owner_id, created_at, updated_at FROM documents WHERE id = $1", docID)

	doc := &types.Document{}
	err := row.Scan(&doc.ID, &doc.Title, &doc.OwnerID, &doc.CreatedAt, &doc.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, types.NewStorageError("get document", err)
	}
	return doc, nil
}

func (p *PostgresStore) DeleteDocument(ctx context.Context, docID uuid.UUID) error {
	// Chunks go first so a failure between the two statements never leaves
	// chunk rows without a parent.
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return types.NewStorageError("delete document", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM document_chunks WHERE doc_id = $1", docID); err != nil {
		return types.NewStorageError("delete document chunks", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM documents WHERE id = $1", docID); err != nil {
		return types.NewStorageError("delete document", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return types.NewStorageError("delete document", err)
	}
	return nil
}

func (p *PostgresStore) SaveChunk(ctx context.Context, c types.Chunk) error {
	query := `
    INSERT INTO document_chunks (id, doc_id, chunk_index, content, word_count, embedding, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	_, err := p.pool.Exec(ctx, query,
		c.ID, c.DocID, c.Index, c.Content, c.WordCount, pgvector.NewVector(c.Embedding), c.CreatedAt,
	)
	if err != nil {
		return types.NewStorageError("save chunk", err)
	}
	return nil
}

// ReplaceChunks swaps a document's full chunk set in one transaction, so
// concurrent searches see either the old set or the new one, never a mix.
func (p *PostgresStore) ReplaceChunks(ctx context.Context, docID uuid.UUID, chunks []types.Chunk) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return types.NewStorageError("replace chunks", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM document_chunks WHERE doc_id = $1", docID); err != nil {
		return types.NewStorageError("replace chunks", err)
	}

	query := `
    INSERT INTO document_chunks (id, doc_id, chunk_index, content, word_count, embedding, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    `
	for _, c := range chunks {
		if c.DocID != docID {
			return types.NewStorageError("replace chunks",
				fmt.Errorf("chunk %s belongs to document %s, not %s", c.ID, c.DocID, docID))
		}
		if _, err := tx.Exec(ctx, query,
			c.ID, c.DocID, c.Index, c.Content, c.WordCount, pgvector.NewVector(c.Embedding), c.CreatedAt,
		); err != nil {
			return types.NewStorageError("replace chunks", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return types.NewStorageError("replace chunks", err)
	}
	p.logger.Info("chunk set replaced", "doc_id", docID, "chunks", len(chunks))
	return nil
}

// DeleteChunksByDocID is idempotent: deleting a document with no chunks
// succeeds silently.
func (p *PostgresStore) DeleteChunksByDocID(ctx context.Context, docID uuid.UUID) error {
	_, err := p.pool.Exec(ctx, "DELETE FROM document_chunks WHERE doc_id = $1", docID)
	if err != nil {
		return types.NewStorageError("delete chunks", err)
	}
	return nil
}

// SearchChunks returns the limit nearest chunks among the owner's documents,
// ranked by cosine distance with the chunk id as tiebreak. Thresholding is
// the caller's concern and happens after this top-K cut.
func (p *PostgresStore) SearchChunks(ctx context.Context, embedding []float32, ownerID string, limit int) ([]types.SearchResult, error) {
	if len(embedding) == 0 {
		return nil, types.NewStorageError("search", errors.New("empty query embedding"))
	}

	vector := pgvector.NewVector(embedding)

	query := `
		SELECT dc.id, dc.doc_id, d.title, dc.chunk_index, dc.content,
		       1 - (dc.embedding <=> $1) AS similarity
		FROM document_chunks dc
		JOIN documents d ON dc.doc_id = d.id
		WHERE d.owner_id = $2
		ORDER BY dc.embedding <=> $1, dc.id
		LIMIT $3
	`
	rows, err := p.pool.Query(ctx, query, vector, ownerID, limit)
	if err != nil {
		return nil, types.NewStorageError("search", err)
	}
	defer rows.Close()

	var results []types.SearchResult
	for rows.Next() {
		var r types.SearchResult
		if err := rows.Scan(&r.ChunkID, &r.DocID, &r.DocTitle, &r.Index, &r.Content, &r.Similarity); err != nil {
			return nil, types.NewStorageError("search", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewStorageError("search", err)
	}
	return results, nil
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE,
		updated_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id);

	CREATE TABLE IF NOT EXISTS document_chunks (
		id UUID PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		chunk_index INT NOT NULL,
		content TEXT NOT NULL,
		word_count INT,
		embedding vector(%d) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE,
		UNIQUE (doc_id, chunk_index)
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON document_chunks
	USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON document_chunks(doc_id);
	`, p.dimensions)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		p.logger.Info("postgres connection pool closed")
	}
	return nil
}
