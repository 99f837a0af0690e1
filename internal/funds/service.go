package funds

import (
	"context"
	"errors"

	"verdant-backend/internal/access"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"gorm.io/gorm"
)

// Service is the payment-currency ledger. Amounts are in the smallest unit of
// the currency; the trade engine debits the attached payment and refunds the
// excess over price within the same transaction, so an aborted buy returns
// the payment by rollback.
type Service struct {
	DB     *gorm.DB
	Oracle access.Oracle
}

// BalanceOf returns the account's cash balance (0 for unknown accounts).
func (s *Service) BalanceOf(ctx context.Context, account string) (int64, error) {
	return balanceTx(s.DB.WithContext(ctx), account)
}

// Deposit credits to from an external source. Caller must hold the
// administrator role on the funds ledger.
func (s *Service) Deposit(ctx context.Context, caller, to string, amount int64) error {
	ok, err := s.Oracle.HasRole(ctx, constants.RoleAdministrator, caller, constants.LedgerFunds)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAdministrator
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return CreditTx(tx, to, amount)
	})
}

// DebitTx removes amount from account inside tx, failing on shortfall.
func DebitTx(tx *gorm.DB, account string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}
	balance, err := balanceTx(tx, account)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientFunds
	}
	return tx.Model(&domain.CashAccount{}).Where("account = ?", account).
		Update("balance", balance-amount).Error
}

// CreditTx adds amount to account inside tx, creating the row if absent.
func CreditTx(tx *gorm.DB, account string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount == 0 {
		return nil
	}
	var acct domain.CashAccount
	err := tx.Where("account = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.CashAccount{Account: account, Balance: amount}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&domain.CashAccount{}).Where("account = ?", account).
		Update("balance", acct.Balance+amount).Error
}

func balanceTx(tx *gorm.DB, account string) (int64, error) {
	var acct domain.CashAccount
	err := tx.Where("account = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}
