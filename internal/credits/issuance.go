package credits

import (
	"context"
	"errors"

	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"gorm.io/gorm"
)

// SetVerificationInput carries the evidence for one (project, vintage) pair.
type SetVerificationInput struct {
	ProjectID    string
	VintageYear  int
	EvidenceHash string
	Standard     string
	CreditType   string
}

// SetVerification stores or replaces the verification record for a
// (project, vintage) pair. Caller must hold the verifier role on the credits
// ledger; the evidence hash must be non-empty before any issuance can happen.
func (s *Service) SetVerification(ctx context.Context, caller string, in SetVerificationInput) (*domain.VerificationRecord, error) {
	ok, err := s.Oracle.HasRole(ctx, constants.RoleVerifier, caller, constants.LedgerCredits)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotVerifier
	}
	if in.EvidenceHash == "" {
		return nil, ErrEvidenceRequired
	}

	record := &domain.VerificationRecord{
		ProjectID:    in.ProjectID,
		VintageYear:  in.VintageYear,
		EvidenceHash: in.EvidenceHash,
		Standard:     in.Standard,
		CreditType:   in.CreditType,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.VerificationRecord
		err := tx.Where("project_id = ? AND vintage_year = ?", in.ProjectID, in.VintageYear).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(record).Error
		}
		if err != nil {
			return err
		}
		// Issued is permanent; replacing the evidence never clears it.
		record.Issued = existing.Issued
		return tx.Model(&domain.VerificationRecord{}).
			Where("project_id = ? AND vintage_year = ?", in.ProjectID, in.VintageYear).
			Updates(map[string]interface{}{
				"evidence_hash": in.EvidenceHash,
				"standard":      in.Standard,
				"credit_type":   in.CreditType,
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetVerification returns the record for a (project, vintage) pair.
func (s *Service) GetVerification(ctx context.Context, projectID string, vintageYear int) (*domain.VerificationRecord, error) {
	var record domain.VerificationRecord
	err := s.DB.WithContext(ctx).
		Where("project_id = ? AND vintage_year = ?", projectID, vintageYear).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotVerified
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Issue mints amount credits to recipient against a verified
// (project, vintage) pair and marks the record issued. Caller must hold the
// issuer role on the credits ledger.
//
// The issued flag does not block a later Issue against the same pair:
// repeated issuance is an explicit property of this workflow, not an
// oversight. Callers that need one-shot issuance must check the flag
// themselves.
func (s *Service) Issue(ctx context.Context, caller, projectID string, vintageYear int, recipient string, amount int64) (*domain.Issuance, error) {
	ok, err := s.Oracle.HasRole(ctx, constants.RoleIssuer, caller, constants.LedgerCredits)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotIssuer
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var issuance *domain.Issuance
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record domain.VerificationRecord
		err := tx.Where("project_id = ? AND vintage_year = ?", projectID, vintageYear).
			First(&record).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotVerified
		}
		if err != nil {
			return err
		}
		if record.EvidenceHash == "" {
			return ErrEvidenceRequired
		}

		id, err := domain.NextCounter(tx, constants.SeqIssuanceID)
		if err != nil {
			return err
		}
		issuance = &domain.Issuance{
			ID:          id,
			ProjectID:   projectID,
			VintageYear: vintageYear,
			Recipient:   recipient,
			Amount:      amount,
		}
		if err := tx.Create(issuance).Error; err != nil {
			return err
		}
		if err := s.MintTx(tx, recipient, amount); err != nil {
			return err
		}
		return tx.Model(&domain.VerificationRecord{}).
			Where("project_id = ? AND vintage_year = ?", projectID, vintageYear).
			Update("issued", true).Error
	})
	if err != nil {
		return nil, err
	}
	return issuance, nil
}
