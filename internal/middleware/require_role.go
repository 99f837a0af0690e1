package middleware

import (
	"verdant-backend/internal/access"
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequireLedgerRole gates a route on the session account holding role on
// ledger, via the access oracle. Services still re-check at the instant of
// mutation; this just fails obviously-unauthorized requests early.
func RequireLedgerRole(oracle access.Oracle, role, ledger string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account := GetAccount(c)
		if account == "" {
			return response.Unauthorized(c, "Unauthorized")
		}
		ok, err := oracle.HasRole(c.Context(), role, account, ledger)
		if err != nil {
			return response.Error(c, "Authorization error", 500, nil)
		}
		if !ok {
			return response.Error(c, "User is Forbidden from performing this action", 403, nil)
		}
		return c.Next()
	}
}
