package bridge

import (
	"context"

	"verdant-backend/internal/access"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/credits"
	"verdant-backend/internal/domain"
	"verdant-backend/internal/events"
	"verdant-backend/internal/registry"

	"gorm.io/gorm"
)

// Service is the conversion bridge: it destroys a certificate and mints the
// same fungible quantity to its former owner, as one transaction. Operator is
// the bridge's own account; it must hold the bridge operator role on both
// ledgers, and certificate holders must approve it before converting.
type Service struct {
	DB       *gorm.DB
	Registry *registry.Service
	Credits  *credits.Service
	Oracle   access.Oracle
	Events   *events.Recorder
	Operator string
}

// ConversionResult reports a completed conversion.
type ConversionResult struct {
	Account       string `json:"account"`
	CertificateID int64  `json:"certificate_id"`
	Quantity      int64  `json:"quantity"`
}

// Convert destroys the caller's certificate and mints its quantity of credits
// back to the caller. The destroy is ordered before the mint so a failed
// destroy can never leave unbacked credits; a failed mint rolls the destroy
// back with it. Every successful conversion moves exactly the certificate's
// quantity from certificate-backed tonnage to fungible supply.
func (s *Service) Convert(ctx context.Context, caller string, certificateID int64) (*ConversionResult, error) {
	var result *ConversionResult
	var event *domain.MarketEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cert, err := s.Registry.GetLiveTx(tx, certificateID)
		if err != nil {
			return err
		}
		if cert.Owner != caller {
			return ErrNotOwner
		}

		// The holder must have granted the bridge's operator account either a
		// blanket operator approval or the single-spender approval for this id.
		approved, err := s.Registry.ApprovedForTx(tx, s.Operator, certificateID)
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotApproved
		}
		if cert.Quantity <= 0 {
			// Unreachable while the mint invariant holds; treated as a fatal
			// integrity failure, not a recoverable condition.
			return ErrInvalidCarbonAmount
		}

		// The bridge needs a mint-capable role on the credits ledger too.
		canMint, err := s.Oracle.HasRole(ctx, constants.RoleBridgeOperator, s.Operator, constants.LedgerCredits)
		if err != nil {
			return err
		}
		if !canMint {
			return credits.ErrNotMinter
		}

		if err := s.Registry.DestroyTx(ctx, tx, s.Operator, certificateID); err != nil {
			return err
		}
		if err := s.Credits.MintTx(tx, caller, cert.Quantity); err != nil {
			return err
		}

		result = &ConversionResult{
			Account:       caller,
			CertificateID: certificateID,
			Quantity:      cert.Quantity,
		}
		event, err = s.Events.RecordTx(tx, events.TypeConversionCompleted, caller, map[string]interface{}{
			"account":        caller,
			"certificate_id": certificateID,
			"quantity":       cert.Quantity,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, event)
	return result, nil
}
