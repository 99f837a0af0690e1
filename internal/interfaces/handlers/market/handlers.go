package market

import (
	"errors"
	"strconv"

	credsvc "verdant-backend/internal/credits"
	"verdant-backend/internal/funds"
	mktsvc "verdant-backend/internal/market"
	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"
	regsvc "verdant-backend/internal/registry"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the listing ledger and trade engine over HTTP.
type Handlers struct {
	Service *mktsvc.Service
}

type listCertificateRequest struct {
	CertificateID int64 `json:"certificate_id"`
	Price         int64 `json:"price"`
}

// CreateCertificateListing POST /api/v1/market/certificate-listings
func (h *Handlers) CreateCertificateListing(c *fiber.Ctx) error {
	var req listCertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	listing, err := h.Service.CreateCertificateListing(c.Context(), middleware.GetAccount(c), req.CertificateID, req.Price)
	if err != nil {
		return marketError(c, err)
	}
	return response.SuccessCreated(c, "Listing created", fiber.Map{"listing": listing})
}

type listCreditsRequest struct {
	Quantity int64 `json:"quantity"`
	Price    int64 `json:"price"`
}

// CreateCreditListing POST /api/v1/market/credit-listings
func (h *Handlers) CreateCreditListing(c *fiber.Ctx) error {
	var req listCreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	lot, err := h.Service.CreateCreditListing(c.Context(), middleware.GetAccount(c), req.Quantity, req.Price)
	if err != nil {
		return marketError(c, err)
	}
	return response.SuccessCreated(c, "Listing created", fiber.Map{"listing": lot})
}

// ActiveCertificateListings GET /api/v1/market/certificate-listings
func (h *Handlers) ActiveCertificateListings(c *fiber.Ctx) error {
	listings, err := h.Service.ActiveCertificateListings(c.Context())
	if err != nil {
		return marketError(c, err)
	}
	return response.Success(c, "Listings fetched", fiber.Map{"listings": listings})
}

// ActiveCreditListings GET /api/v1/market/credit-listings
func (h *Handlers) ActiveCreditListings(c *fiber.Ctx) error {
	lots, err := h.Service.ActiveCreditListings(c.Context())
	if err != nil {
		return marketError(c, err)
	}
	return response.Success(c, "Listings fetched", fiber.Map{"listings": lots})
}

type buyRequest struct {
	Payment int64 `json:"payment"`
}

// BuyCertificate POST /api/v1/market/certificate-listings/:id/buy
func (h *Handlers) BuyCertificate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	var req buyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.BuyCertificate(c.Context(), middleware.GetAccount(c), id, req.Payment)
	if err != nil {
		return marketError(c, err)
	}
	return response.Success(c, "Certificate purchased", fiber.Map{"sale": result})
}

// BuyCreditLot POST /api/v1/market/credit-listings/:id/buy
func (h *Handlers) BuyCreditLot(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid lot id", fiber.StatusBadRequest, nil)
	}
	var req buyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	result, err := h.Service.BuyCreditLot(c.Context(), middleware.GetAccount(c), id, req.Payment)
	if err != nil {
		return marketError(c, err)
	}
	return response.Success(c, "Credits purchased", fiber.Map{"sale": result})
}

// CancelCertificateListing POST /api/v1/market/certificate-listings/:id/cancel
func (h *Handlers) CancelCertificateListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid certificate id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.CancelCertificateListing(c.Context(), middleware.GetAccount(c), id); err != nil {
		return marketError(c, err)
	}
	return response.Success(c, "Listing canceled", nil)
}

// CancelCreditListing POST /api/v1/market/credit-listings/:id/cancel
func (h *Handlers) CancelCreditListing(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.Error(c, "Invalid lot id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.CancelCreditListing(c.Context(), middleware.GetAccount(c), id); err != nil {
		return marketError(c, err)
	}
	return response.Success(c, "Listing canceled", nil)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	return strconv.ParseInt(c.Params(name), 10, 64)
}

func marketError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, mktsvc.ErrListingNotFound),
		errors.Is(err, regsvc.ErrCertificateNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, mktsvc.ErrListingNotActive),
		errors.Is(err, mktsvc.ErrSellerNoLongerOwns):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, mktsvc.ErrInsufficientPayment),
		errors.Is(err, mktsvc.ErrInsufficientBalance),
		errors.Is(err, mktsvc.ErrInsufficientAllowance),
		errors.Is(err, mktsvc.ErrInvalidPrice),
		errors.Is(err, mktsvc.ErrInvalidQuantity),
		errors.Is(err, funds.ErrInsufficientFunds),
		errors.Is(err, credsvc.ErrInsufficientBalance),
		errors.Is(err, credsvc.ErrInsufficientAllowance),
		errors.Is(err, regsvc.ErrCertificateRetired):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, mktsvc.ErrNotOwner),
		errors.Is(err, mktsvc.ErrNotApproved),
		errors.Is(err, regsvc.ErrNotOwner),
		errors.Is(err, regsvc.ErrNotApproved):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
