package access

import (
	"errors"

	accsvc "verdant-backend/internal/access"
	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes role administration over HTTP.
type Handlers struct {
	Service *accsvc.Service
}

type roleRequest struct {
	Role    string `json:"role"`
	Account string `json:"account"`
	Ledger  string `json:"ledger"`
}

// Grant POST /api/v1/roles/grant: administrator-only, idempotent.
func (h *Handlers) Grant(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Account == "" {
		return response.Error(c, "account is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Grant(c.Context(), middleware.GetAccount(c), req.Role, req.Account, req.Ledger); err != nil {
		return accessError(c, err)
	}
	return response.Success(c, "Role granted", nil)
}

// Revoke POST /api/v1/roles/revoke: administrator-only; revoking an unheld
// role succeeds as a no-op.
func (h *Handlers) Revoke(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Account == "" {
		return response.Error(c, "account is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Revoke(c.Context(), middleware.GetAccount(c), req.Role, req.Account, req.Ledger); err != nil {
		return accessError(c, err)
	}
	return response.Success(c, "Role revoked", nil)
}

// Mine GET /api/v1/roles: the caller's grants.
func (h *Handlers) Mine(c *fiber.Ctx) error {
	grants, err := h.Service.ListGrants(c.Context(), middleware.GetAccount(c))
	if err != nil {
		return accessError(c, err)
	}
	return response.Success(c, "Roles fetched", fiber.Map{"roles": grants})
}

func accessError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, accsvc.ErrUnknownRole), errors.Is(err, accsvc.ErrUnknownLedger):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, accsvc.ErrNotAdministrator):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
