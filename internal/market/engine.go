package market

import (
	"context"
	"errors"

	"verdant-backend/internal/domain"
	"verdant-backend/internal/events"
	"verdant-backend/internal/funds"

	"gorm.io/gorm"
)

// SaleResult reports a completed buy.
type SaleResult struct {
	Buyer  string `json:"buyer"`
	Seller string `json:"seller"`
	Price  int64  `json:"price"`
	Refund int64  `json:"refund"`
}

// BuyCertificate executes an atomic certificate sale. The whole operation is
// one transaction: any failure (stale listing, stale ownership, payment
// shortfall) rolls back completely, returning the attached payment with it.
//
// The listing is deactivated strictly before the asset and payment move, so
// any observer of a later operation on the same id sees it inactive and is
// rejected by the active-listing guard.
func (s *Service) BuyCertificate(ctx context.Context, buyer string, certificateID, payment int64) (*SaleResult, error) {
	var result *SaleResult
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing domain.CertificateListing
		if err := tx.Where("certificate_id = ? AND active = ?", certificateID, true).
			First(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotActive
			}
			return err
		}
		if payment < listing.Price {
			return ErrInsufficientPayment
		}

		// Re-read ownership at the instant of sale; the listing snapshot is
		// not trusted (the seller may have transferred away without canceling).
		owner, err := s.Registry.OwnerOfTx(tx, certificateID)
		if err != nil {
			return err
		}
		if owner != listing.Seller {
			return ErrSellerNoLongerOwns
		}

		if err := tx.Model(&domain.CertificateListing{}).
			Where("certificate_id = ?", certificateID).
			Update("active", false).Error; err != nil {
			return err
		}

		if err := s.Registry.TransferTx(tx, s.Operator, listing.Seller, buyer, certificateID); err != nil {
			return err
		}
		if err := funds.DebitTx(tx, buyer, payment); err != nil {
			return err
		}
		if err := funds.CreditTx(tx, listing.Seller, listing.Price); err != nil {
			return err
		}
		if refund := payment - listing.Price; refund > 0 {
			if err := funds.CreditTx(tx, buyer, refund); err != nil {
				return err
			}
		}

		result = &SaleResult{
			Buyer:  buyer,
			Seller: listing.Seller,
			Price:  listing.Price,
			Refund: payment - listing.Price,
		}
		event, err = s.Events.RecordTx(tx, events.TypeListingSold, buyer, map[string]interface{}{
			"kind":           "certificate",
			"certificate_id": certificateID,
			"buyer":          buyer,
			"seller":         listing.Seller,
			"price":          listing.Price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, event)
	return result, nil
}

// BuyCreditLot executes an atomic credit lot sale. The lot is deactivated
// before the credits and payment move; the credit transfer runs through the
// seller's pre-granted allowance to the market operator, and a shortfall in
// either balance or allowance aborts the whole buy.
func (s *Service) BuyCreditLot(ctx context.Context, buyer string, lotID, payment int64) (*SaleResult, error) {
	var result *SaleResult
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lot domain.CreditLotListing
		if err := tx.Where("lot_id = ? AND active = ?", lotID, true).
			First(&lot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotActive
			}
			return err
		}
		if payment < lot.Price {
			return ErrInsufficientPayment
		}

		if err := tx.Model(&domain.CreditLotListing{}).
			Where("lot_id = ?", lotID).
			Update("active", false).Error; err != nil {
			return err
		}

		if err := s.Credits.TransferFromTx(tx, s.Operator, lot.Seller, buyer, lot.Quantity); err != nil {
			return err
		}
		if err := funds.DebitTx(tx, buyer, payment); err != nil {
			return err
		}
		if err := funds.CreditTx(tx, lot.Seller, lot.Price); err != nil {
			return err
		}
		if refund := payment - lot.Price; refund > 0 {
			if err := funds.CreditTx(tx, buyer, refund); err != nil {
				return err
			}
		}

		result = &SaleResult{
			Buyer:  buyer,
			Seller: lot.Seller,
			Price:  lot.Price,
			Refund: payment - lot.Price,
		}
		var err error
		event, err = s.Events.RecordTx(tx, events.TypeListingSold, buyer, map[string]interface{}{
			"kind":     "credit_lot",
			"lot_id":   lotID,
			"buyer":    buyer,
			"seller":   lot.Seller,
			"quantity": lot.Quantity,
			"price":    lot.Price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, event)
	return result, nil
}
