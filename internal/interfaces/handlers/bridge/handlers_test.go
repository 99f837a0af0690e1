package bridge

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"verdant-backend/internal/access"
	bridgesvc "verdant-backend/internal/bridge"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/credits"
	"verdant-backend/internal/domain"
	"verdant-backend/internal/events"
	"verdant-backend/internal/registry"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type bridgeTestEnv struct {
	app      *fiber.App
	registry *registry.Service
	credits  *credits.Service
}

func setupBridgeHandlersTest(t *testing.T, account *string) *bridgeTestEnv {
	// in-memory sqlite is per-connection, so queries issued outside a pinned
	// transaction would see an empty schema; use a file-backed temp db instead
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Certificate{}, &domain.OperatorApproval{},
		&domain.CreditAccount{}, &domain.CreditAllowance{}, &domain.CreditSupply{},
		&domain.MarketEvent{}, &domain.Counter{}, &domain.RoleGrant{},
	))
	oracle := &access.Service{DB: db}
	ctx := context.Background()
	require.NoError(t, oracle.Bootstrap(ctx, "admin"))
	require.NoError(t, oracle.Grant(ctx, "admin", constants.RoleIssuer, "issuer", constants.LedgerRegistry))
	require.NoError(t, oracle.Grant(ctx, "admin", constants.RoleBridgeOperator, "bridge", constants.LedgerRegistry))
	require.NoError(t, oracle.Grant(ctx, "admin", constants.RoleBridgeOperator, "bridge", constants.LedgerCredits))

	reg := &registry.Service{DB: db, Oracle: oracle}
	cred := &credits.Service{DB: db, Oracle: oracle}
	svc := &bridgesvc.Service{
		DB:       db,
		Registry: reg,
		Credits:  cred,
		Oracle:   oracle,
		Events:   &events.Recorder{},
		Operator: "bridge",
	}
	h := &Handlers{Service: svc}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": "test-user",
			"account": *account,
		})
		return c.Next()
	})
	app.Post("/convert/:id", h.Convert)

	return &bridgeTestEnv{app: app, registry: reg, credits: cred}
}

func convert(t *testing.T, app *fiber.App, path string) (int, map[string]interface{}) {
	req := httptest.NewRequest("POST", path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

func TestConvertHandlerSuccess(t *testing.T) {
	account := "alice"
	env := setupBridgeHandlersTest(t, &account)
	ctx := context.Background()

	cert, err := env.registry.Mint(ctx, "issuer", "alice", 25, "VCS-311", 2021, "ipfs://meta")
	require.NoError(t, err)
	require.NoError(t, env.registry.SetOperatorApproval(ctx, "alice", "bridge", true))

	status, body := convert(t, env.app, "/convert/1")
	assert.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	conv := data["conversion"].(map[string]interface{})
	assert.Equal(t, float64(cert.ID), conv["certificate_id"])
	assert.Equal(t, float64(25), conv["quantity"])

	balance, err := env.credits.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
}

func TestConvertHandlerNotOwner(t *testing.T) {
	account := "mallory"
	env := setupBridgeHandlersTest(t, &account)
	ctx := context.Background()

	_, err := env.registry.Mint(ctx, "issuer", "alice", 25, "VCS-311", 2021, "")
	require.NoError(t, err)

	status, _ := convert(t, env.app, "/convert/1")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestConvertHandlerWithoutApproval(t *testing.T) {
	account := "alice"
	env := setupBridgeHandlersTest(t, &account)
	ctx := context.Background()

	_, err := env.registry.Mint(ctx, "issuer", "alice", 25, "VCS-311", 2021, "")
	require.NoError(t, err)

	status, _ := convert(t, env.app, "/convert/1")
	assert.Equal(t, fiber.StatusForbidden, status)

	owner, err := env.registry.OwnerOf(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", owner)
}

func TestConvertHandlerRetiredCertificate(t *testing.T) {
	account := "alice"
	env := setupBridgeHandlersTest(t, &account)
	ctx := context.Background()

	_, err := env.registry.Mint(ctx, "issuer", "alice", 25, "VCS-311", 2021, "")
	require.NoError(t, err)
	require.NoError(t, env.registry.SetOperatorApproval(ctx, "alice", "bridge", true))

	status, _ := convert(t, env.app, "/convert/1")
	require.Equal(t, fiber.StatusOK, status)

	status, _ = convert(t, env.app, "/convert/1")
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestConvertHandlerUnknownCertificate(t *testing.T) {
	account := "alice"
	env := setupBridgeHandlersTest(t, &account)

	status, _ := convert(t, env.app, "/convert/99")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestConvertHandlerInvalidID(t *testing.T) {
	account := "alice"
	env := setupBridgeHandlersTest(t, &account)

	status, _ := convert(t, env.app, "/convert/not-a-number")
	assert.Equal(t, fiber.StatusBadRequest, status)
}
