package registry

import (
	"errors"
	"strconv"

	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"
	regsvc "verdant-backend/internal/registry"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the certificate ledger over HTTP.
type Handlers struct {
	Service *regsvc.Service
}

type mintRequest struct {
	To          string `json:"to"`
	Quantity    int64  `json:"quantity"`
	ProjectID   string `json:"project_id"`
	VintageYear int    `json:"vintage_year"`
	MetadataURI string `json:"metadata_uri"`
}

// Mint POST /api/v1/certificates/mint
func (h *Handlers) Mint(c *fiber.Ctx) error {
	var req mintRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.To == "" || req.ProjectID == "" {
		return response.Error(c, "to and project_id are required", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.Mint(c.Context(), middleware.GetAccount(c), req.To, req.Quantity, req.ProjectID, req.VintageYear, req.MetadataURI)
	if err != nil {
		return registryError(c, err)
	}
	return response.SuccessCreated(c, "Certificate minted", fiber.Map{"certificate": cert})
}

// Get GET /api/v1/certificates/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	cert, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "Certificate fetched", fiber.Map{"certificate": cert})
}

// ListMine GET /api/v1/certificates: live certificates owned by the caller.
func (h *Handlers) ListMine(c *fiber.Ctx) error {
	certs, err := h.Service.ListByOwner(c.Context(), middleware.GetAccount(c))
	if err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "Certificates fetched", fiber.Map{"certificates": certs})
}

type approveRequest struct {
	Spender *string `json:"spender"`
}

// Approve POST /api/v1/certificates/:id/approve: set or clear the
// single-spender approval.
func (h *Handlers) Approve(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Approve(c.Context(), middleware.GetAccount(c), req.Spender, id); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "Approval updated", nil)
}

type operatorRequest struct {
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// SetOperator POST /api/v1/certificates/operator-approval: grant or revoke a
// blanket operator approval for all of the caller's certificates.
func (h *Handlers) SetOperator(c *fiber.Ctx) error {
	var req operatorRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Operator == "" {
		return response.Error(c, "operator is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.SetOperatorApproval(c.Context(), middleware.GetAccount(c), req.Operator, req.Approved); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "Operator approval updated", nil)
}

type transferRequest struct {
	To string `json:"to"`
}

// Transfer POST /api/v1/certificates/:id/transfer: move the caller's own
// certificate.
func (h *Handlers) Transfer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.To == "" {
		return response.Error(c, "to is required", fiber.StatusBadRequest, nil)
	}
	caller := middleware.GetAccount(c)
	if err := h.Service.Transfer(c.Context(), caller, caller, req.To, id); err != nil {
		return registryError(c, err)
	}
	return response.Success(c, "Certificate transferred", nil)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}

func registryError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, regsvc.ErrCertificateNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, regsvc.ErrCertificateRetired),
		errors.Is(err, regsvc.ErrInvalidQuantity):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, regsvc.ErrNotOwner),
		errors.Is(err, regsvc.ErrNotApproved),
		errors.Is(err, regsvc.ErrNotIssuer),
		errors.Is(err, regsvc.ErrNotBridgeOperator):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
