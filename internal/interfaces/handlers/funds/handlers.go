package funds

import (
	"errors"

	fundsvc "verdant-backend/internal/funds"
	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the payment-currency wallet over HTTP.
type Handlers struct {
	Service *fundsvc.Service
}

// Balance GET /api/v1/funds/balance
func (h *Handlers) Balance(c *fiber.Ctx) error {
	account := middleware.GetAccount(c)
	balance, err := h.Service.BalanceOf(c.Context(), account)
	if err != nil {
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
	return response.Success(c, "Balance fetched", fiber.Map{"account": account, "balance": balance})
}

type depositRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Deposit POST /api/v1/funds/deposit: administrator-only credit from an
// external source.
func (h *Handlers) Deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.To == "" {
		return response.Error(c, "to is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Deposit(c.Context(), middleware.GetAccount(c), req.To, req.Amount); err != nil {
		switch {
		case errors.Is(err, fundsvc.ErrInvalidAmount):
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case errors.Is(err, fundsvc.ErrNotAdministrator):
			return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
		default:
			return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
		}
	}
	return response.Success(c, "Deposit completed", nil)
}
