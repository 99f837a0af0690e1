package credits

import (
	"errors"

	credsvc "verdant-backend/internal/credits"
	"verdant-backend/internal/middleware"
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers exposes the credit ledger and issuance workflow over HTTP.
type Handlers struct {
	Service *credsvc.Service
}

// Balance GET /api/v1/credits/balance: caller's balance and total supply.
func (h *Handlers) Balance(c *fiber.Ctx) error {
	account := middleware.GetAccount(c)
	balance, err := h.Service.BalanceOf(c.Context(), account)
	if err != nil {
		return creditsError(c, err)
	}
	supply, err := h.Service.TotalSupply(c.Context())
	if err != nil {
		return creditsError(c, err)
	}
	return response.Success(c, "Balance fetched", fiber.Map{
		"account":      account,
		"balance":      balance,
		"total_supply": supply,
	})
}

type approveRequest struct {
	Spender string `json:"spender"`
	Amount  int64  `json:"amount"`
}

// Approve POST /api/v1/credits/approve: set spender allowance (absolute).
func (h *Handlers) Approve(c *fiber.Ctx) error {
	var req approveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.Spender == "" {
		return response.Error(c, "spender is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Approve(c.Context(), middleware.GetAccount(c), req.Spender, req.Amount); err != nil {
		return creditsError(c, err)
	}
	return response.Success(c, "Allowance updated", nil)
}

// Allowance GET /api/v1/credits/allowance/:spender
func (h *Handlers) Allowance(c *fiber.Ctx) error {
	spender := c.Params("spender")
	amount, err := h.Service.Allowance(c.Context(), middleware.GetAccount(c), spender)
	if err != nil {
		return creditsError(c, err)
	}
	return response.Success(c, "Allowance fetched", fiber.Map{"spender": spender, "amount": amount})
}

type transferRequest struct {
	To     string `json:"to"`
	Amount int64  `json:"amount"`
}

// Transfer POST /api/v1/credits/transfer: move the caller's own credits.
func (h *Handlers) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.To == "" {
		return response.Error(c, "to is required", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Transfer(c.Context(), middleware.GetAccount(c), req.To, req.Amount); err != nil {
		return creditsError(c, err)
	}
	return response.Success(c, "Credits transferred", nil)
}

type burnRequest struct {
	Amount int64 `json:"amount"`
}

// Burn POST /api/v1/credits/burn: destroy the caller's own credits.
func (h *Handlers) Burn(c *fiber.Ctx) error {
	var req burnRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Burn(c.Context(), middleware.GetAccount(c), req.Amount); err != nil {
		return creditsError(c, err)
	}
	return response.Success(c, "Credits burned", nil)
}

type verifyRequest struct {
	ProjectID    string `json:"project_id"`
	VintageYear  int    `json:"vintage_year"`
	EvidenceHash string `json:"evidence_hash"`
	Standard     string `json:"standard"`
	CreditType   string `json:"credit_type"`
}

// SetVerification POST /api/v1/credits/verify: record verification evidence
// for a (project, vintage) pair.
func (h *Handlers) SetVerification(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.ProjectID == "" {
		return response.Error(c, "project_id is required", fiber.StatusBadRequest, nil)
	}
	record, err := h.Service.SetVerification(c.Context(), middleware.GetAccount(c), credsvc.SetVerificationInput{
		ProjectID:    req.ProjectID,
		VintageYear:  req.VintageYear,
		EvidenceHash: req.EvidenceHash,
		Standard:     req.Standard,
		CreditType:   req.CreditType,
	})
	if err != nil {
		return creditsError(c, err)
	}
	return response.SuccessCreated(c, "Verification recorded", fiber.Map{"verification": record})
}

// GetVerification GET /api/v1/credits/verify/:project_id/:vintage_year
func (h *Handlers) GetVerification(c *fiber.Ctx) error {
	vintage, err := c.ParamsInt("vintage_year")
	if err != nil {
		return response.Error(c, "Invalid vintage year", fiber.StatusBadRequest, nil)
	}
	record, err := h.Service.GetVerification(c.Context(), c.Params("project_id"), vintage)
	if err != nil {
		return creditsError(c, err)
	}
	return response.Success(c, "Verification fetched", fiber.Map{"verification": record})
}

type issueRequest struct {
	ProjectID   string `json:"project_id"`
	VintageYear int    `json:"vintage_year"`
	Recipient   string `json:"recipient"`
	Amount      int64  `json:"amount"`
}

// Issue POST /api/v1/credits/issue: mint credits against a verified
// (project, vintage) pair.
func (h *Handlers) Issue(c *fiber.Ctx) error {
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	if req.ProjectID == "" || req.Recipient == "" {
		return response.Error(c, "project_id and recipient are required", fiber.StatusBadRequest, nil)
	}
	issuance, err := h.Service.Issue(c.Context(), middleware.GetAccount(c), req.ProjectID, req.VintageYear, req.Recipient, req.Amount)
	if err != nil {
		return creditsError(c, err)
	}
	return response.SuccessCreated(c, "Credits issued", fiber.Map{"issuance": issuance})
}

func creditsError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, credsvc.ErrNotVerified):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, credsvc.ErrInsufficientBalance),
		errors.Is(err, credsvc.ErrInsufficientAllowance),
		errors.Is(err, credsvc.ErrEvidenceRequired),
		errors.Is(err, credsvc.ErrInvalidAmount):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, credsvc.ErrNotMinter),
		errors.Is(err, credsvc.ErrNotVerifier),
		errors.Is(err, credsvc.ErrNotIssuer):
		return response.Error(c, err.Error(), fiber.StatusForbidden, nil)
	default:
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}
