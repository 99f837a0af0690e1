package access

import (
	"context"
	"testing"

	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAccessTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.RoleGrant{}))
	svc := &Service{DB: db}
	require.NoError(t, svc.Bootstrap(context.Background(), "admin"))
	return svc
}

func TestBootstrap_SeedsAdministratorOnEveryLedger(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	for _, ledger := range constants.ValidLedgers {
		ok, err := svc.HasRole(ctx, constants.RoleAdministrator, "admin", ledger)
		require.NoError(t, err)
		assert.True(t, ok, "admin should be administrator on %s", ledger)
	}
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "admin"))

	var count int64
	require.NoError(t, svc.DB.Model(&domain.RoleGrant{}).
		Where("account = ?", "admin").Count(&count).Error)
	assert.Equal(t, int64(len(constants.ValidLedgers)), count)
}

func TestGrant_RequiresAdministrator(t *testing.T) {
	svc := setupAccessTest(t)
	err := svc.Grant(context.Background(), "mallory", constants.RoleIssuer, "alice", constants.LedgerRegistry)
	require.Error(t, err)
	assert.Equal(t, ErrNotAdministrator, err)
}

func TestGrant_AdministratorScopedToLedger(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	// deputy is administrator on funds only
	require.NoError(t, svc.Grant(ctx, "admin", constants.RoleAdministrator, "deputy", constants.LedgerFunds))

	err := svc.Grant(ctx, "deputy", constants.RoleIssuer, "alice", constants.LedgerRegistry)
	assert.Equal(t, ErrNotAdministrator, err)

	require.NoError(t, svc.Grant(ctx, "deputy", constants.RoleIssuer, "alice", constants.LedgerFunds))
}

func TestGrant_Idempotent(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Grant(ctx, "admin", constants.RoleIssuer, "alice", constants.LedgerRegistry))
	require.NoError(t, svc.Grant(ctx, "admin", constants.RoleIssuer, "alice", constants.LedgerRegistry))

	var count int64
	require.NoError(t, svc.DB.Model(&domain.RoleGrant{}).
		Where("role = ? AND account = ? AND ledger = ?", constants.RoleIssuer, "alice", constants.LedgerRegistry).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGrant_UnknownRoleOrLedger(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	assert.Equal(t, ErrUnknownRole, svc.Grant(ctx, "admin", "superuser", "alice", constants.LedgerRegistry))
	assert.Equal(t, ErrUnknownLedger, svc.Grant(ctx, "admin", constants.RoleIssuer, "alice", "bonds"))
}

func TestRevoke_RemovesGrant(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Grant(ctx, "admin", constants.RoleVerifier, "vera", constants.LedgerCredits))
	require.NoError(t, svc.Revoke(ctx, "admin", constants.RoleVerifier, "vera", constants.LedgerCredits))

	ok, err := svc.HasRole(ctx, constants.RoleVerifier, "vera", constants.LedgerCredits)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevoke_UnheldIsNoOp(t *testing.T) {
	svc := setupAccessTest(t)
	err := svc.Revoke(context.Background(), "admin", constants.RoleVerifier, "nobody", constants.LedgerCredits)
	assert.NoError(t, err)
}

func TestRevoke_RequiresAdministrator(t *testing.T) {
	svc := setupAccessTest(t)
	err := svc.Revoke(context.Background(), "mallory", constants.RoleAdministrator, "admin", constants.LedgerRegistry)
	assert.Equal(t, ErrNotAdministrator, err)
}

func TestHasRole_FalseForUnknownAccount(t *testing.T) {
	svc := setupAccessTest(t)
	ok, err := svc.HasRole(context.Background(), constants.RoleIssuer, "ghost", constants.LedgerRegistry)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListGrants_ReturnsAccountGrants(t *testing.T) {
	svc := setupAccessTest(t)
	ctx := context.Background()
	require.NoError(t, svc.Grant(ctx, "admin", constants.RoleIssuer, "alice", constants.LedgerRegistry))
	require.NoError(t, svc.Grant(ctx, "admin", constants.RoleIssuer, "alice", constants.LedgerCredits))

	grants, err := svc.ListGrants(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, grants, 2)
}
