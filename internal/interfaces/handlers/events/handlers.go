package events

import (
	evsvc "verdant-backend/internal/events"
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the market event feed for off-chain indexers.
type Handlers struct {
	Service *evsvc.Service
}

// List GET /api/v1/events?type=listing-sold&limit=50
func (h *Handlers) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	items, err := h.Service.List(c.Context(), c.Query("type"), limit)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Events fetched", fiber.Map{"events": items})
}
