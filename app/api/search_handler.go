package api

import (
	"doclib/search"
	"doclib/types"

	"github.com/gofiber/fiber/v2"
)

// ownerHeader carries the authenticated user identity. Authentication itself
// is handled upstream; this service trusts the header the gateway sets.
const ownerHeader = "X-Owner-ID"

type SearchHandler struct {
	engine *search.Engine
}

func NewSearchHandler(engine *search.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	ownerID := c.Get(ownerHeader)
	if ownerID == "" {
		return ErrUnAuthorized("missing owner identity")
	}

	var params types.SearchParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return types.NewValidationError(errors)
	}

	limit := params.Limit
	if limit == 0 {
		limit = search.DefaultLimit
	}
	threshold := search.DefaultThreshold
	if params.Threshold != nil {
		threshold = *params.Threshold
	}

	results, err := h.engine.Search(c.Context(), params.Query, ownerID, limit, threshold)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"results": results,
		"count":   len(results),
	})
}
