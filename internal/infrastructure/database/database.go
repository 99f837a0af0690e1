package database

import (
	"verdant-backend/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Open opens a GORM DB from DSN (Postgres pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") when using connection poolers (e.g. PgBouncer).
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
}

// AutoMigrate runs migrations for all ledger and platform models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Certificate{},
		&domain.OperatorApproval{},
		&domain.CreditAccount{},
		&domain.CreditAllowance{},
		&domain.CreditSupply{},
		&domain.VerificationRecord{},
		&domain.Issuance{},
		&domain.CashAccount{},
		&domain.CertificateListing{},
		&domain.CreditLotListing{},
		&domain.RoleGrant{},
		&domain.MarketEvent{},
		&domain.Counter{},
	)
}
