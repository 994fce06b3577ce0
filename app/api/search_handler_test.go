package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"doclib/ingest"
	"doclib/search"
	"doclib/store"
	"doclib/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	calls int
	err   error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) Dimension() int { return 2 }

type testEnv struct {
	app      *fiber.App
	store    *store.MemoryStore
	embedder *stubEmbedder
}

func newTestEnv() *testEnv {
	memStore := store.NewMemoryStore()
	embedder := &stubEmbedder{}
	engine := search.NewEngine(memStore, embedder)
	ingestor := ingest.New(memStore, embedder, types.Config{ChunkSize: 100, EmbedWorkers: 2})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	apiv1 := app.Group("/api/v1")
	apiv1.Post("/search", NewSearchHandler(engine).HandleSearch)
	docs := NewDocumentHandler(ingestor)
	apiv1.Put("/documents/:id/chunks", docs.HandleReindex)
	apiv1.Delete("/documents/:id", docs.HandleDelete)

	return &testEnv{app: app, store: memStore, embedder: embedder}
}

func (e *testEnv) seedChunk(t *testing.T, owner string, embedding []float32) uuid.UUID {
	t.Helper()
	docID := uuid.New()
	now := time.Now()
	require.NoError(t, e.store.SaveDocument(context.Background(), types.Document{
		ID: docID, Title: "seeded", OwnerID: owner, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, e.store.SaveChunk(context.Background(), types.Chunk{
		ID: uuid.New(), DocID: docID, Index: 0, Content: "seeded chunk", Embedding: embedding, CreatedAt: now,
	}))
	return docID
}

func doJSON(t *testing.T, app *fiber.App, method, path, owner string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if owner != "" {
		req.Header.Set(ownerHeader, owner)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestHandleSearchReturnsRankedResults(t *testing.T) {
	env := newTestEnv()
	env.seedChunk(t, "alice", []float32{1, 0})

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		types.SearchParams{Query: "anything"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])
	results := body["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "seeded chunk", first["content"])
	assert.Equal(t, "seeded", first["doc_title"])
	assert.InDelta(t, 1.0, first["similarity"].(float64), 1e-6)
}

func TestHandleSearchEmptyQuerySkipsEmbedder(t *testing.T) {
	env := newTestEnv()
	env.seedChunk(t, "alice", []float32{1, 0})

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		types.SearchParams{Query: "   "})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["count"])
	assert.Zero(t, env.embedder.calls)
}

func TestHandleSearchRequiresOwner(t *testing.T) {
	env := newTestEnv()

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "",
		types.SearchParams{Query: "anything"})

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing owner identity", body["error"])
}

func TestHandleSearchOwnerIsolation(t *testing.T) {
	env := newTestEnv()
	env.seedChunk(t, "bob", []float32{1, 0})

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		types.SearchParams{Query: "anything"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["count"])
}

func TestHandleSearchProviderFailureIsUserSafe(t *testing.T) {
	env := newTestEnv()
	env.embedder.err = types.NewEmbeddingError(errors.New("401 invalid api key"))

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		types.SearchParams{Query: "anything"})

	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "search failed", body["error"])
	assert.NotContains(t, body["error"], "api key")
}

func TestHandleSearchInvalidLimitRejected(t *testing.T) {
	env := newTestEnv()

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		map[string]any{"query": "q", "limit": 5000})

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body["errors"].(map[string]any), "Limit")
}

func TestHandleReindexThenSearch(t *testing.T) {
	env := newTestEnv()
	docID := uuid.New()

	resp, _ := doJSON(t, env.app, http.MethodPut, "/api/v1/documents/"+docID.String()+"/chunks", "",
		types.ReindexParams{Title: "my doc", OwnerID: "alice", Content: "some searchable text"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		types.SearchParams{Query: "searchable"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])
	first := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "my doc", first["doc_title"])
}

func TestHandleReindexValidatesBody(t *testing.T) {
	env := newTestEnv()
	docID := uuid.New()

	resp, _ := doJSON(t, env.app, http.MethodPut, "/api/v1/documents/"+docID.String()+"/chunks", "",
		map[string]any{"title": "", "owner_id": "", "content": ""})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHandleReindexRejectsBadID(t *testing.T) {
	env := newTestEnv()

	resp, body := doJSON(t, env.app, http.MethodPut, "/api/v1/documents/not-a-uuid/chunks", "",
		types.ReindexParams{Title: "t", OwnerID: "alice", Content: "c"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid id given", body["error"])
}

func TestHandleDeletePurgesChunks(t *testing.T) {
	env := newTestEnv()
	docID := env.seedChunk(t, "alice", []float32{1, 0})

	resp, _ := doJSON(t, env.app, http.MethodDelete, "/api/v1/documents/"+docID.String(), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, env.app, http.MethodPost, "/api/v1/search", "alice",
		types.SearchParams{Query: "anything"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, body["count"])
}
