package api

import (
	"time"

	"doclib/ingest"
	"doclib/types"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DocumentHandler exposes the lifecycle hooks the document CRUD layer calls
// when a document is created, edited or deleted.
type DocumentHandler struct {
	ingestor *ingest.Service
}

func NewDocumentHandler(ingestor *ingest.Service) *DocumentHandler {
	return &DocumentHandler{ingestor: ingestor}
}

// HandleReindex rebuilds the chunk set for a document from its current
// content. Covers both the created and updated hooks.
func (h *DocumentHandler) HandleReindex(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	var params types.ReindexParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	now := time.Now()
	doc := types.Document{
		ID:        docID,
		Title:     params.Title,
		OwnerID:   params.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.ingestor.Reindex(c.Context(), doc, params.Content); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"result": "ok", "doc_id": docID})
}

// HandleDelete purges a deleted document and its chunks.
func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	docID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return ErrInvalidID()
	}

	if err := h.ingestor.Remove(c.Context(), docID); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"result": "ok"})
}
