package access

import (
	"context"
	"errors"

	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"gorm.io/gorm"
)

// Oracle is the capability check every ledger mutation is gated on. Injected
// so tests can swap in a stub.
type Oracle interface {
	HasRole(ctx context.Context, role, account, ledger string) (bool, error)
}

// Service stores role grants and implements Oracle. Grant and revoke are
// administrator-only and idempotent.
type Service struct {
	DB *gorm.DB
}

// HasRole reports whether account holds role on ledger.
func (s *Service) HasRole(ctx context.Context, role, account, ledger string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&domain.RoleGrant{}).
		Where("role = ? AND account = ? AND ledger = ?", role, account, ledger).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant gives account the role on ledger. Granting an already-held role is a
// no-op. The actor must hold the administrator role on the target ledger.
func (s *Service) Grant(ctx context.Context, actor, role, account, ledger string) error {
	if !constants.IsValidRole(role) {
		return ErrUnknownRole
	}
	if !constants.IsValidLedger(ledger) {
		return ErrUnknownLedger
	}
	if err := s.requireAdministrator(ctx, actor, ledger); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.RoleGrant
		err := tx.Where("role = ? AND account = ? AND ledger = ?", role, account, ledger).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&domain.RoleGrant{Role: role, Account: account, Ledger: ledger}).Error
	})
}

// Revoke removes the role from account on ledger. Revoking an unheld role is
// a no-op, not an error.
func (s *Service) Revoke(ctx context.Context, actor, role, account, ledger string) error {
	if !constants.IsValidRole(role) {
		return ErrUnknownRole
	}
	if !constants.IsValidLedger(ledger) {
		return ErrUnknownLedger
	}
	if err := s.requireAdministrator(ctx, actor, ledger); err != nil {
		return err
	}
	return s.DB.WithContext(ctx).
		Where("role = ? AND account = ? AND ledger = ?", role, account, ledger).
		Delete(&domain.RoleGrant{}).Error
}

// Bootstrap seeds the administrator role for account on every ledger without
// an actor check. Called once at startup for the configured admin account.
func (s *Service) Bootstrap(ctx context.Context, account string) error {
	if account == "" {
		return nil
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ledger := range constants.ValidLedgers {
			var existing domain.RoleGrant
			err := tx.Where("role = ? AND account = ? AND ledger = ?",
				constants.RoleAdministrator, account, ledger).First(&existing).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err := tx.Create(&domain.RoleGrant{
				Role:    constants.RoleAdministrator,
				Account: account,
				Ledger:  ledger,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListGrants returns all grants for an account (view endpoint).
func (s *Service) ListGrants(ctx context.Context, account string) ([]domain.RoleGrant, error) {
	var grants []domain.RoleGrant
	err := s.DB.WithContext(ctx).Where("account = ?", account).Find(&grants).Error
	return grants, err
}

func (s *Service) requireAdministrator(ctx context.Context, actor, ledger string) error {
	ok, err := s.HasRole(ctx, constants.RoleAdministrator, actor, ledger)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAdministrator
	}
	return nil
}
