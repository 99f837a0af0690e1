package market

import (
	"context"
	"errors"

	"verdant-backend/internal/constants"
	"verdant-backend/internal/credits"
	"verdant-backend/internal/domain"
	"verdant-backend/internal/events"
	"verdant-backend/internal/registry"

	"gorm.io/gorm"
)

// Service is the listing ledger plus the trade engine. It never takes custody
// of the listed asset: listings record intent, and every buy re-checks
// ownership and approvals against the asset ledgers at the instant of
// mutation. Operator is the account sellers approve so the engine can move
// assets on their behalf.
type Service struct {
	DB       *gorm.DB
	Registry *registry.Service
	Credits  *credits.Service
	Events   *events.Recorder
	Operator string
}

// CreateCertificateListing puts a certificate up for sale at a fixed price.
// The seller must currently own it and the market operator must be approved
// (single-spender or blanket) to move it. Relisting the same certificate
// replaces the prior listing state.
func (s *Service) CreateCertificateListing(ctx context.Context, seller string, certificateID, price int64) (*domain.CertificateListing, error) {
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	var listing *domain.CertificateListing
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := s.Registry.OwnerOfTx(tx, certificateID)
		if err != nil {
			return err
		}
		if owner != seller {
			return ErrNotOwner
		}
		approved, err := s.Registry.ApprovedForTx(tx, s.Operator, certificateID)
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotApproved
		}

		listing = &domain.CertificateListing{
			CertificateID: certificateID,
			Seller:        seller,
			Price:         price,
			Active:        true,
		}
		var existing domain.CertificateListing
		err = tx.Where("certificate_id = ?", certificateID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := tx.Create(listing).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Model(&domain.CertificateListing{}).
				Where("certificate_id = ?", certificateID).
				Updates(map[string]interface{}{
					"seller": seller,
					"price":  price,
					"active": true,
				}).Error; err != nil {
				return err
			}
		}

		// Informational tally only; listing identity is the certificate id.
		if _, err := domain.NextCounter(tx, constants.SeqListingCount); err != nil {
			return err
		}

		event, err = s.Events.RecordTx(tx, events.TypeListingCreated, seller, map[string]interface{}{
			"kind":           "certificate",
			"certificate_id": certificateID,
			"seller":         seller,
			"price":          price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, event)
	return listing, nil
}

// CreateCreditListing puts a quantity of fungible credits up for sale as a new
// lot. The seller's balance and allowance to the market operator must both
// cover the quantity at listing time. Lot ids are never reused.
func (s *Service) CreateCreditListing(ctx context.Context, seller string, quantity, price int64) (*domain.CreditLotListing, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	var lot *domain.CreditLotListing
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		balance, err := s.Credits.BalanceOfTx(tx, seller)
		if err != nil {
			return err
		}
		if balance < quantity {
			return ErrInsufficientBalance
		}
		allowance, err := s.Credits.AllowanceTx(tx, seller, s.Operator)
		if err != nil {
			return err
		}
		if allowance < quantity {
			return ErrInsufficientAllowance
		}

		lotID, err := domain.NextCounter(tx, constants.SeqLotID)
		if err != nil {
			return err
		}
		lot = &domain.CreditLotListing{
			LotID:    lotID,
			Seller:   seller,
			Quantity: quantity,
			Price:    price,
			Active:   true,
		}
		if err := tx.Create(lot).Error; err != nil {
			return err
		}

		event, err = s.Events.RecordTx(tx, events.TypeListingCreated, seller, map[string]interface{}{
			"kind":     "credit_lot",
			"lot_id":   lotID,
			"seller":   seller,
			"quantity": quantity,
			"price":    price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, event)
	return lot, nil
}

// CancelCertificateListing deactivates a certificate listing. Only the
// recorded seller may cancel; no asset or payment moves. Inactive is terminal.
func (s *Service) CancelCertificateListing(ctx context.Context, caller string, certificateID int64) error {
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.CertificateListing
		if err := tx.Where("certificate_id = ?", certificateID).First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if listing.Seller != caller {
			return ErrNotOwner
		}
		if !listing.Active {
			return ErrListingNotActive
		}
		if err := tx.Model(&domain.CertificateListing{}).
			Where("certificate_id = ?", certificateID).
			Update("active", false).Error; err != nil {
			return err
		}
		var err error
		event, err = s.Events.RecordTx(tx, events.TypeListingCanceled, caller, map[string]interface{}{
			"kind":           "certificate",
			"certificate_id": certificateID,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.Events.Publish(ctx, event)
	return nil
}

// CancelCreditListing deactivates a credit lot. Same rules as certificate
// cancellation.
func (s *Service) CancelCreditListing(ctx context.Context, caller string, lotID int64) error {
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot domain.CreditLotListing
		if err := tx.Where("lot_id = ?", lotID).First(&lot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return err
		}
		if lot.Seller != caller {
			return ErrNotOwner
		}
		if !lot.Active {
			return ErrListingNotActive
		}
		if err := tx.Model(&domain.CreditLotListing{}).
			Where("lot_id = ?", lotID).
			Update("active", false).Error; err != nil {
			return err
		}
		var err error
		event, err = s.Events.RecordTx(tx, events.TypeListingCanceled, caller, map[string]interface{}{
			"kind":   "credit_lot",
			"lot_id": lotID,
		})
		return err
	})
	if err != nil {
		return err
	}
	s.Events.Publish(ctx, event)
	return nil
}

// GetCertificateListing returns the listing row for a certificate id.
func (s *Service) GetCertificateListing(ctx context.Context, certificateID int64) (*domain.CertificateListing, error) {
	var listing domain.CertificateListing
	err := s.DB.WithContext(ctx).Where("certificate_id = ?", certificateID).First(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// GetCreditListing returns the lot row for a lot id.
func (s *Service) GetCreditListing(ctx context.Context, lotID int64) (*domain.CreditLotListing, error) {
	var lot domain.CreditLotListing
	err := s.DB.WithContext(ctx).Where("lot_id = ?", lotID).First(&lot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

// ActiveCertificateListings returns all active certificate listings.
func (s *Service) ActiveCertificateListings(ctx context.Context) ([]domain.CertificateListing, error) {
	var listings []domain.CertificateListing
	err := s.DB.WithContext(ctx).Where("active = ?", true).
		Order("certificate_id").Find(&listings).Error
	return listings, err
}

// ActiveCreditListings returns all active credit lots.
func (s *Service) ActiveCreditListings(ctx context.Context) ([]domain.CreditLotListing, error) {
	var lots []domain.CreditLotListing
	err := s.DB.WithContext(ctx).Where("active = ?", true).
		Order("lot_id").Find(&lots).Error
	return lots, err
}
