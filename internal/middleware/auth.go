package middleware

import (
	"verdant-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures a user is in the session. Returns 401 with standard
// error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := c.Locals(userLocal)
		if user == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// GetUser returns the session user from Locals (nil if not logged in).
func GetUser(c *fiber.Ctx) interface{} {
	return c.Locals(userLocal)
}

// GetAccount returns the session user's ledger account ("" if not logged in).
// Every ledger operation runs as this account.
func GetAccount(c *fiber.Ctx) string {
	m, ok := c.Locals(userLocal).(map[string]interface{})
	if !ok {
		return ""
	}
	account, _ := m["account"].(string)
	return account
}
