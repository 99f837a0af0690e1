package access

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	accsvc "verdant-backend/internal/access"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAccessHandlersTest(t *testing.T, account string) (*fiber.App, *accsvc.Service) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RoleGrant{}))
	svc := &accsvc.Service{DB: db}
	require.NoError(t, svc.Bootstrap(context.Background(), "admin"))

	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": "test-user",
			"account": account,
		})
		return c.Next()
	})
	app.Post("/grant", h.Grant)
	app.Post("/revoke", h.Revoke)
	app.Get("/", h.Mine)
	return app, svc
}

func roleBody(t *testing.T, role, account, ledger string) *bytes.Reader {
	raw, err := json.Marshal(map[string]string{
		"role": role, "account": account, "ledger": ledger,
	})
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestGrant_HTTP(t *testing.T) {
	app, svc := setupAccessHandlersTest(t, "admin")
	req := httptest.NewRequest("POST", "/grant", roleBody(t, constants.RoleIssuer, "alice", constants.LedgerRegistry))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	ok, err := svc.HasRole(context.Background(), constants.RoleIssuer, "alice", constants.LedgerRegistry)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGrant_NonAdminForbidden(t *testing.T) {
	app, _ := setupAccessHandlersTest(t, "mallory")
	req := httptest.NewRequest("POST", "/grant", roleBody(t, constants.RoleIssuer, "mallory", constants.LedgerRegistry))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestGrant_UnknownRoleBadRequest(t *testing.T) {
	app, _ := setupAccessHandlersTest(t, "admin")
	req := httptest.NewRequest("POST", "/grant", roleBody(t, "superuser", "alice", constants.LedgerRegistry))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGrant_MissingAccountBadRequest(t *testing.T) {
	app, _ := setupAccessHandlersTest(t, "admin")
	req := httptest.NewRequest("POST", "/grant", roleBody(t, constants.RoleIssuer, "", constants.LedgerRegistry))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestRevoke_UnheldStillSucceeds(t *testing.T) {
	app, _ := setupAccessHandlersTest(t, "admin")
	req := httptest.NewRequest("POST", "/revoke", roleBody(t, constants.RoleVerifier, "nobody", constants.LedgerCredits))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestMine_ReturnsCallerGrants(t *testing.T) {
	app, _ := setupAccessHandlersTest(t, "admin")
	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	data, _ := result["data"].(map[string]interface{})
	roles, _ := data["roles"].([]interface{})
	assert.Len(t, roles, len(constants.ValidLedgers))
}
