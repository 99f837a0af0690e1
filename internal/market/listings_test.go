package market

import (
	"context"
	"testing"

	"verdant-backend/internal/access"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/credits"
	"verdant-backend/internal/domain"
	"verdant-backend/internal/events"
	"verdant-backend/internal/funds"
	"verdant-backend/internal/registry"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type marketFixture struct {
	db       *gorm.DB
	registry *registry.Service
	credits  *credits.Service
	funds    *funds.Service
	market   *Service
}

func setupMarketTest(t *testing.T) *marketFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Certificate{}, &domain.OperatorApproval{},
		&domain.CreditAccount{}, &domain.CreditAllowance{}, &domain.CreditSupply{},
		&domain.CashAccount{}, &domain.CertificateListing{}, &domain.CreditLotListing{},
		&domain.MarketEvent{}, &domain.Counter{}, &domain.RoleGrant{},
	))
	oracle := &access.Service{DB: db}
	ctx := context.Background()
	require.NoError(t, oracle.Bootstrap(ctx, "admin"))
	require.NoError(t, oracle.Grant(ctx, "admin", constants.RoleIssuer, "issuer", constants.LedgerRegistry))
	require.NoError(t, oracle.Grant(ctx, "admin", constants.RoleIssuer, "issuer", constants.LedgerCredits))

	reg := &registry.Service{DB: db, Oracle: oracle}
	cred := &credits.Service{DB: db, Oracle: oracle}
	fund := &funds.Service{DB: db, Oracle: oracle}
	mkt := &Service{
		DB:       db,
		Registry: reg,
		Credits:  cred,
		Events:   &events.Recorder{},
		Operator: "market",
	}
	return &marketFixture{db: db, registry: reg, credits: cred, funds: fund, market: mkt}
}

// listedCertificate mints a certificate to seller, approves the market
// operator, and lists it.
func (f *marketFixture) listedCertificate(t *testing.T, seller string, quantity, price int64) *domain.Certificate {
	ctx := context.Background()
	cert, err := f.registry.Mint(ctx, "issuer", seller, quantity, "VCS-901", 2022, "")
	require.NoError(t, err)
	require.NoError(t, f.registry.SetOperatorApproval(ctx, seller, "market", true))
	_, err = f.market.CreateCertificateListing(ctx, seller, cert.ID, price)
	require.NoError(t, err)
	return cert
}

func TestCreateCertificateListing_RequiresOwnership(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert, err := f.registry.Mint(ctx, "issuer", "alice", 10, "VCS-901", 2022, "")
	require.NoError(t, err)

	_, err = f.market.CreateCertificateListing(ctx, "mallory", cert.ID, 100)
	assert.Equal(t, ErrNotOwner, err)
}

func TestCreateCertificateListing_RequiresOperatorApproval(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert, err := f.registry.Mint(ctx, "issuer", "alice", 10, "VCS-901", 2022, "")
	require.NoError(t, err)

	_, err = f.market.CreateCertificateListing(ctx, "alice", cert.ID, 100)
	assert.Equal(t, ErrNotApproved, err)
}

func TestCreateCertificateListing_SingleApprovalSuffices(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert, err := f.registry.Mint(ctx, "issuer", "alice", 10, "VCS-901", 2022, "")
	require.NoError(t, err)

	operator := "market"
	require.NoError(t, f.registry.Approve(ctx, "alice", &operator, cert.ID))

	listing, err := f.market.CreateCertificateListing(ctx, "alice", cert.ID, 100)
	require.NoError(t, err)
	assert.True(t, listing.Active)
	assert.Equal(t, int64(100), listing.Price)
}

func TestCreateCertificateListing_RejectsNegativePrice(t *testing.T) {
	f := setupMarketTest(t)
	_, err := f.market.CreateCertificateListing(context.Background(), "alice", 1, -5)
	assert.Equal(t, ErrInvalidPrice, err)
}

func TestRelist_ReplacesPriorState(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert := f.listedCertificate(t, "alice", 10, 100)

	require.NoError(t, f.market.CancelCertificateListing(ctx, "alice", cert.ID))

	_, err := f.market.CreateCertificateListing(ctx, "alice", cert.ID, 175)
	require.NoError(t, err)

	listing, err := f.market.GetCertificateListing(ctx, cert.ID)
	require.NoError(t, err)
	assert.True(t, listing.Active)
	assert.Equal(t, int64(175), listing.Price)
}

func TestCreateCreditListing_BalanceAndAllowanceChecked(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()

	_, err := f.market.CreateCreditListing(ctx, "alice", 50, 10)
	assert.Equal(t, ErrInsufficientBalance, err)

	require.NoError(t, f.credits.Mint(ctx, "issuer", "alice", 100))
	_, err = f.market.CreateCreditListing(ctx, "alice", 50, 10)
	assert.Equal(t, ErrInsufficientAllowance, err)

	require.NoError(t, f.credits.Approve(ctx, "alice", "market", 50))
	lot, err := f.market.CreateCreditListing(ctx, "alice", 50, 10)
	require.NoError(t, err)
	assert.True(t, lot.Active)
}

func TestCreateCreditListing_SequentialLotIDs(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	require.NoError(t, f.credits.Mint(ctx, "issuer", "alice", 100))
	require.NoError(t, f.credits.Approve(ctx, "alice", "market", 100))

	first, err := f.market.CreateCreditListing(ctx, "alice", 30, 10)
	require.NoError(t, err)
	second, err := f.market.CreateCreditListing(ctx, "alice", 30, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.LotID)
	assert.Equal(t, int64(2), second.LotID)
}

func TestCreateCreditListing_RejectsNonPositiveQuantity(t *testing.T) {
	f := setupMarketTest(t)
	_, err := f.market.CreateCreditListing(context.Background(), "alice", 0, 10)
	assert.Equal(t, ErrInvalidQuantity, err)
}

func TestCancel_OnlySellerMayCancel(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert := f.listedCertificate(t, "alice", 10, 100)

	err := f.market.CancelCertificateListing(ctx, "mallory", cert.ID)
	assert.Equal(t, ErrNotOwner, err)

	listing, err := f.market.GetCertificateListing(ctx, cert.ID)
	require.NoError(t, err)
	assert.True(t, listing.Active)
}

func TestCancel_InactiveListingFails(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert := f.listedCertificate(t, "alice", 10, 100)

	require.NoError(t, f.market.CancelCertificateListing(ctx, "alice", cert.ID))
	err := f.market.CancelCertificateListing(ctx, "alice", cert.ID)
	assert.Equal(t, ErrListingNotActive, err)
}

func TestCancel_UnknownListing(t *testing.T) {
	f := setupMarketTest(t)
	err := f.market.CancelCertificateListing(context.Background(), "alice", 999)
	assert.Equal(t, ErrListingNotFound, err)

	err = f.market.CancelCreditListing(context.Background(), "alice", 999)
	assert.Equal(t, ErrListingNotFound, err)
}

func TestActiveListings_ExcludeInactive(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	kept := f.listedCertificate(t, "alice", 10, 100)
	gone := f.listedCertificate(t, "alice", 20, 200)
	require.NoError(t, f.market.CancelCertificateListing(ctx, "alice", gone.ID))

	listings, err := f.market.ActiveCertificateListings(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, kept.ID, listings[0].CertificateID)
}

func TestListingEventsRecorded(t *testing.T) {
	f := setupMarketTest(t)
	ctx := context.Background()
	cert := f.listedCertificate(t, "alice", 10, 100)
	require.NoError(t, f.market.CancelCertificateListing(ctx, "alice", cert.ID))

	var count int64
	require.NoError(t, f.db.Model(&domain.MarketEvent{}).
		Where("type IN ?", []string{events.TypeListingCreated, events.TypeListingCanceled}).
		Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
