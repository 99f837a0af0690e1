package bridge

import (
	"errors"
	"strconv"

	bridgesvc "verdant-backend/internal/bridge"
	credsvc "verdant-backend/internal/credits"
	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"
	regsvc "verdant-backend/internal/registry"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the conversion bridge over HTTP.
type Handlers struct {
	Service *bridgesvc.Service
}

// Convert POST /api/v1/bridge/convert/:id destroys the caller's certificate
// and mints its quantity as fungible credits.
func (h *Handlers) Convert(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.Convert(c.Context(), middleware.GetAccount(c), id)
	if err != nil {
		return bridgeError(c, err)
	}
	return response.Success(c, "Certificate converted", fiber.Map{"conversion": result})
}

func bridgeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, regsvc.ErrCertificateNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, regsvc.ErrCertificateRetired):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, bridgesvc.ErrNotOwner),
		errors.Is(err, bridgesvc.ErrNotApproved),
		errors.Is(err, regsvc.ErrNotBridgeOperator),
		errors.Is(err, credsvc.ErrNotMinter):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	case errors.Is(err, bridgesvc.ErrInvalidCarbonAmount):
		return response.Error(c, err.Error(), fiber.StatusUnprocessableEntity, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
