package funds

import (
	"context"
	"testing"

	"verdant-backend/internal/access"
	"verdant-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFundsTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.CashAccount{}, &domain.RoleGrant{}))
	oracle := &access.Service{DB: db}
	require.NoError(t, oracle.Bootstrap(context.Background(), "admin"))
	return &Service{DB: db, Oracle: oracle}
}

func TestDeposit_RequiresFundsAdministrator(t *testing.T) {
	svc := setupFundsTest(t)
	err := svc.Deposit(context.Background(), "mallory", "alice", 100)
	require.Error(t, err)
	assert.Equal(t, ErrNotAdministrator, err)
}

func TestDeposit_CreditsBalance(t *testing.T) {
	svc := setupFundsTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Deposit(ctx, "admin", "alice", 250))
	require.NoError(t, svc.Deposit(ctx, "admin", "alice", 50))

	bal, err := svc.BalanceOf(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(300), bal)
}

func TestDeposit_RejectsNonPositiveAmount(t *testing.T) {
	svc := setupFundsTest(t)
	assert.Equal(t, ErrInvalidAmount, svc.Deposit(context.Background(), "admin", "alice", 0))
	assert.Equal(t, ErrInvalidAmount, svc.Deposit(context.Background(), "admin", "alice", -10))
}

func TestDebitTx_ShortfallFailsWithoutChange(t *testing.T) {
	svc := setupFundsTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Deposit(ctx, "admin", "alice", 30))

	err := svc.DB.Transaction(func(tx *gorm.DB) error {
		return DebitTx(tx, "alice", 31)
	})
	assert.Equal(t, ErrInsufficientFunds, err)

	bal, _ := svc.BalanceOf(ctx, "alice")
	assert.Equal(t, int64(30), bal)
}

func TestDebitCredit_RoundTrip(t *testing.T) {
	svc := setupFundsTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Deposit(ctx, "admin", "buyer", 120))

	err := svc.DB.Transaction(func(tx *gorm.DB) error {
		if err := DebitTx(tx, "buyer", 100); err != nil {
			return err
		}
		return CreditTx(tx, "seller", 100)
	})
	require.NoError(t, err)

	buyerBal, _ := svc.BalanceOf(ctx, "buyer")
	sellerBal, _ := svc.BalanceOf(ctx, "seller")
	assert.Equal(t, int64(20), buyerBal)
	assert.Equal(t, int64(100), sellerBal)
}

func TestBalanceOf_ZeroForUnknownAccount(t *testing.T) {
	svc := setupFundsTest(t)
	bal, err := svc.BalanceOf(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, int64(0), bal)
}
