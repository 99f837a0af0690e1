package router

import (
	"context"

	accsvc "verdant-backend/internal/access"
	authsvc "verdant-backend/internal/auth"
	bridgesvc "verdant-backend/internal/bridge"
	"verdant-backend/internal/config"
	"verdant-backend/internal/constants"
	credsvc "verdant-backend/internal/credits"
	evsvc "verdant-backend/internal/events"
	fundsvc "verdant-backend/internal/funds"
	"verdant-backend/internal/infrastructure/database"
	acchandler "verdant-backend/internal/interfaces/handlers/access"
	authhandler "verdant-backend/internal/interfaces/handlers/auth"
	bridgehandler "verdant-backend/internal/interfaces/handlers/bridge"
	credhandler "verdant-backend/internal/interfaces/handlers/credits"
	evhandler "verdant-backend/internal/interfaces/handlers/events"
	fundhandler "verdant-backend/internal/interfaces/handlers/funds"
	mkthandler "verdant-backend/internal/interfaces/handlers/market"
	reghandler "verdant-backend/internal/interfaces/handlers/registry"
	mktsvc "verdant-backend/internal/market"
	"verdant-backend/internal/middleware"
	regsvc "verdant-backend/internal/registry"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all middleware and routes, opening the
// database and Redis connections from config.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	app.Get("/health/json", func(c *fiber.Ctx) error {
		deps := fiber.Map{"database": db != nil, "redis": false}
		if rdb != nil {
			deps["redis"] = rdb.Ping(context.Background()).Err() == nil
		}
		return c.JSON(fiber.Map{"status": "ok", "dependencies": deps})
	})

	if db == nil {
		return app, nil, rdb, nil
	}

	oracle := &accsvc.Service{DB: db}
	startCtx := context.Background()
	if err := oracle.Bootstrap(startCtx, cfg.AdminAccount); err != nil {
		return nil, nil, nil, err
	}
	// The bridge account needs its role on both asset ledgers before any
	// conversion can run. Grants are idempotent, so reseeding is safe.
	if cfg.AdminAccount != "" && cfg.BridgeOperator != "" {
		for _, ledger := range []string{constants.LedgerRegistry, constants.LedgerCredits} {
			if err := oracle.Grant(startCtx, cfg.AdminAccount, constants.RoleBridgeOperator, cfg.BridgeOperator, ledger); err != nil {
				return nil, nil, nil, err
			}
		}
	}

	recorder := &evsvc.Recorder{Rdb: rdb, Channel: cfg.EventChannel}
	registry := &regsvc.Service{DB: db, Oracle: oracle}
	credits := &credsvc.Service{DB: db, Oracle: oracle}
	funds := &fundsvc.Service{DB: db, Oracle: oracle}
	market := &mktsvc.Service{
		DB:       db,
		Registry: registry,
		Credits:  credits,
		Events:   recorder,
		Operator: cfg.MarketOperator,
	}
	bridge := &bridgesvc.Service{
		DB:       db,
		Registry: registry,
		Credits:  credits,
		Oracle:   oracle,
		Events:   recorder,
		Operator: cfg.BridgeOperator,
	}

	// Auth (no auth middleware): register, login, me, logout
	authHandlers := &authhandler.Handlers{
		DB:         db,
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/register", authHandlers.Register)
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	// Certificate ledger
	regHandlers := &reghandler.Handlers{Service: registry}
	regGroup := app.Group("/api/v1/certificates", middleware.RequireAuth())
	regGroup.Post("/mint", middleware.RequireLedgerRole(oracle, constants.RoleIssuer, constants.LedgerRegistry), regHandlers.Mint)
	regGroup.Get("/", regHandlers.ListMine)
	regGroup.Get("/:id", regHandlers.Get)
	regGroup.Post("/:id/approve", regHandlers.Approve)
	regGroup.Post("/:id/transfer", regHandlers.Transfer)
	regGroup.Post("/operator-approval", regHandlers.SetOperator)

	// Credit ledger + issuance workflow
	credHandlers := &credhandler.Handlers{Service: credits}
	credGroup := app.Group("/api/v1/credits", middleware.RequireAuth())
	credGroup.Get("/balance", credHandlers.Balance)
	credGroup.Post("/approve", credHandlers.Approve)
	credGroup.Get("/allowance/:spender", credHandlers.Allowance)
	credGroup.Post("/transfer", credHandlers.Transfer)
	credGroup.Post("/burn", credHandlers.Burn)
	credGroup.Post("/verify", middleware.RequireLedgerRole(oracle, constants.RoleVerifier, constants.LedgerCredits), credHandlers.SetVerification)
	credGroup.Get("/verify/:project_id/:vintage_year", credHandlers.GetVerification)
	credGroup.Post("/issue", middleware.RequireLedgerRole(oracle, constants.RoleIssuer, constants.LedgerCredits), credHandlers.Issue)

	// Funds wallet
	fundHandlers := &fundhandler.Handlers{Service: funds}
	fundGroup := app.Group("/api/v1/funds", middleware.RequireAuth())
	fundGroup.Get("/balance", fundHandlers.Balance)
	fundGroup.Post("/deposit", middleware.RequireLedgerRole(oracle, constants.RoleAdministrator, constants.LedgerFunds), fundHandlers.Deposit)

	// Market: listings + trade engine
	mktHandlers := &mkthandler.Handlers{Service: market}
	mktGroup := app.Group("/api/v1/market", middleware.RequireAuth())
	mktGroup.Get("/certificate-listings", mktHandlers.ActiveCertificateListings)
	mktGroup.Post("/certificate-listings", mktHandlers.CreateCertificateListing)
	mktGroup.Post("/certificate-listings/:id/buy", mktHandlers.BuyCertificate)
	mktGroup.Post("/certificate-listings/:id/cancel", mktHandlers.CancelCertificateListing)
	mktGroup.Get("/credit-listings", mktHandlers.ActiveCreditListings)
	mktGroup.Post("/credit-listings", mktHandlers.CreateCreditListing)
	mktGroup.Post("/credit-listings/:id/buy", mktHandlers.BuyCreditLot)
	mktGroup.Post("/credit-listings/:id/cancel", mktHandlers.CancelCreditListing)

	// Conversion bridge
	bridgeHandlers := &bridgehandler.Handlers{Service: bridge}
	app.Post("/api/v1/bridge/convert/:id", middleware.RequireAuth(), bridgeHandlers.Convert)

	// Role administration
	accHandlers := &acchandler.Handlers{Service: oracle}
	accGroup := app.Group("/api/v1/roles", middleware.RequireAuth())
	accGroup.Get("/", accHandlers.Mine)
	accGroup.Post("/grant", accHandlers.Grant)
	accGroup.Post("/revoke", accHandlers.Revoke)

	// Event feed
	evHandlers := &evhandler.Handlers{Service: &evsvc.Service{DB: db}}
	app.Get("/api/v1/events", middleware.RequireAuth(), evHandlers.List)

	return app, db, rdb, nil
}
