package credits

import (
	"context"
	"errors"

	"verdant-backend/internal/access"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"gorm.io/gorm"
)

// Service is the fungible credit ledger: balances, allowances, role-gated
// minting, and the verification/issuance workflow. One unit is one ton,
// exactly as encoded by the certificate or issuance that produced it. Methods
// with a Tx suffix run against a caller-owned transaction.
type Service struct {
	DB     *gorm.DB
	Oracle access.Oracle
}

// BalanceOf returns the account's credit balance (0 for unknown accounts).
func (s *Service) BalanceOf(ctx context.Context, account string) (int64, error) {
	return balanceTx(s.DB.WithContext(ctx), account)
}

// BalanceOfTx is BalanceOf against a caller-owned transaction.
func (s *Service) BalanceOfTx(tx *gorm.DB, account string) (int64, error) {
	return balanceTx(tx, account)
}

// Allowance returns how much of owner's balance spender may move.
func (s *Service) Allowance(ctx context.Context, owner, spender string) (int64, error) {
	return allowanceTx(s.DB.WithContext(ctx), owner, spender)
}

// AllowanceTx is Allowance against a caller-owned transaction.
func (s *Service) AllowanceTx(tx *gorm.DB, owner, spender string) (int64, error) {
	return allowanceTx(tx, owner, spender)
}

// TotalSupply returns the sum of all mints minus all burns.
func (s *Service) TotalSupply(ctx context.Context) (int64, error) {
	var supply domain.CreditSupply
	err := s.DB.WithContext(ctx).First(&supply, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return supply.Total, nil
}

// Approve sets spender's allowance over owner's balance to amount (absolute,
// not additive). Zero clears it.
func (s *Service) Approve(ctx context.Context, owner, spender string, amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.CreditAllowance
		err := tx.Where("owner = ? AND spender = ?", owner, spender).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&domain.CreditAllowance{Owner: owner, Spender: spender, Amount: amount}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&domain.CreditAllowance{}).
			Where("owner = ? AND spender = ?", owner, spender).
			Update("amount", amount).Error
	})
}

// Transfer moves amount from the caller's own balance to to.
func (s *Service) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return moveTx(tx, from, to, amount)
	})
}

// TransferFrom moves amount from from to to on behalf of spender, consuming
// spender's allowance. Balance and allowance are both checked at the instant
// of mutation; either shortfall aborts the whole transaction.
func (s *Service) TransferFrom(ctx context.Context, spender, from, to string, amount int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.TransferFromTx(tx, spender, from, to, amount)
	})
}

// TransferFromTx is TransferFrom inside a caller-owned transaction.
func (s *Service) TransferFromTx(tx *gorm.DB, spender, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	allowance, err := allowanceTx(tx, from, spender)
	if err != nil {
		return err
	}
	if allowance < amount {
		return ErrInsufficientAllowance
	}
	if err := moveTx(tx, from, to, amount); err != nil {
		return err
	}
	return tx.Model(&domain.CreditAllowance{}).
		Where("owner = ? AND spender = ?", from, spender).
		Update("amount", allowance-amount).Error
}

// Mint creates amount new credits for to. Caller must hold the issuer or
// bridge operator role on the credits ledger.
func (s *Service) Mint(ctx context.Context, caller, to string, amount int64) error {
	authorized, err := s.canMint(ctx, caller)
	if err != nil {
		return err
	}
	if !authorized {
		return ErrNotMinter
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.MintTx(tx, to, amount)
	})
}

// MintTx credits to and bumps total supply inside tx. Authorization is the
// caller's responsibility; the bridge checks its own role before invoking it.
func (s *Service) MintTx(tx *gorm.DB, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if err := creditTx(tx, to, amount); err != nil {
		return err
	}
	return adjustSupplyTx(tx, amount)
}

// Burn destroys amount of the caller's own credits.
func (s *Service) Burn(ctx context.Context, from string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debitTx(tx, from, amount); err != nil {
			return err
		}
		return adjustSupplyTx(tx, -amount)
	})
}

// CanMint reports whether caller holds a mint-capable role on the credits
// ledger.
func (s *Service) CanMint(ctx context.Context, caller string) (bool, error) {
	return s.canMint(ctx, caller)
}

func (s *Service) canMint(ctx context.Context, caller string) (bool, error) {
	issuer, err := s.Oracle.HasRole(ctx, constants.RoleIssuer, caller, constants.LedgerCredits)
	if err != nil {
		return false, err
	}
	if issuer {
		return true, nil
	}
	return s.Oracle.HasRole(ctx, constants.RoleBridgeOperator, caller, constants.LedgerCredits)
}

func balanceTx(tx *gorm.DB, account string) (int64, error) {
	var acct domain.CreditAccount
	err := tx.Where("account = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

func allowanceTx(tx *gorm.DB, owner, spender string) (int64, error) {
	var allowance domain.CreditAllowance
	err := tx.Where("owner = ? AND spender = ?", owner, spender).First(&allowance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return allowance.Amount, nil
}

func moveTx(tx *gorm.DB, from, to string, amount int64) error {
	if err := debitTx(tx, from, amount); err != nil {
		return err
	}
	return creditTx(tx, to, amount)
}

func debitTx(tx *gorm.DB, account string, amount int64) error {
	balance, err := balanceTx(tx, account)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	return tx.Model(&domain.CreditAccount{}).Where("account = ?", account).
		Update("balance", balance-amount).Error
}

func creditTx(tx *gorm.DB, account string, amount int64) error {
	var acct domain.CreditAccount
	err := tx.Where("account = ?", account).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.CreditAccount{Account: account, Balance: amount}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&domain.CreditAccount{}).Where("account = ?", account).
		Update("balance", acct.Balance+amount).Error
}

func adjustSupplyTx(tx *gorm.DB, delta int64) error {
	var supply domain.CreditSupply
	err := tx.First(&supply, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&domain.CreditSupply{ID: 1, Total: delta}).Error
	}
	if err != nil {
		return err
	}
	return tx.Model(&domain.CreditSupply{}).Where("id = ?", 1).
		Update("total", supply.Total+delta).Error
}
