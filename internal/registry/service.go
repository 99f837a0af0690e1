package registry

import (
	"context"
	"errors"

	"verdant-backend/internal/access"
	"verdant-backend/internal/constants"
	"verdant-backend/internal/domain"

	"gorm.io/gorm"
)

// Service is the certificate ledger: ownership, approvals, immutable quantity.
// Quantity is written exactly once at mint and carried unchanged to
// destruction. Methods with a Tx suffix run against a caller-owned transaction
// so the market and bridge can compose ledger moves atomically.
type Service struct {
	DB     *gorm.DB
	Oracle access.Oracle
}

// Mint creates a certificate owned by to. Caller must hold the issuer role on
// the registry.
func (s *Service) Mint(ctx context.Context, caller, to string, quantity int64, projectID string, vintageYear int, metadataURI string) (*domain.Certificate, error) {
	ok, err := s.Oracle.HasRole(ctx, constants.RoleIssuer, caller, constants.LedgerRegistry)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotIssuer
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var cert *domain.Certificate
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := domain.NextCounter(tx, constants.SeqCertificateID)
		if err != nil {
			return err
		}
		cert = &domain.Certificate{
			ID:          id,
			Owner:       to,
			Quantity:    quantity,
			ProjectID:   projectID,
			VintageYear: vintageYear,
			MetadataURI: metadataURI,
		}
		return tx.Create(cert).Error
	})
	if err != nil {
		return nil, err
	}
	return cert, nil
}

// Get returns the certificate row, retired or not.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Certificate, error) {
	return getCert(s.DB.WithContext(ctx), id)
}

// OwnerOf returns the current owner of a live certificate.
func (s *Service) OwnerOf(ctx context.Context, id int64) (string, error) {
	cert, err := getLive(s.DB.WithContext(ctx), id)
	if err != nil {
		return "", err
	}
	return cert.Owner, nil
}

// QuantityOf returns the immutable tonnage of a live certificate.
func (s *Service) QuantityOf(ctx context.Context, id int64) (int64, error) {
	cert, err := getLive(s.DB.WithContext(ctx), id)
	if err != nil {
		return 0, err
	}
	return cert.Quantity, nil
}

// Approve sets (or clears, with nil) the single-spender approval. Caller must
// be the owner or one of the owner's operators.
func (s *Service) Approve(ctx context.Context, caller string, spender *string, id int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cert, err := getLive(tx, id)
		if err != nil {
			return err
		}
		if caller != cert.Owner {
			operator, err := isOperator(tx, cert.Owner, caller)
			if err != nil {
				return err
			}
			if !operator {
				return ErrNotOwner
			}
		}
		return tx.Model(&domain.Certificate{}).Where("certificate_id = ?", id).
			Update("approved", spender).Error
	})
}

// SetOperatorApproval grants or revokes a blanket operator approval for every
// certificate owner holds. Both directions are idempotent.
func (s *Service) SetOperatorApproval(ctx context.Context, owner, operator string, approved bool) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if !approved {
			return tx.Where("owner = ? AND operator = ?", owner, operator).
				Delete(&domain.OperatorApproval{}).Error
		}
		var existing domain.OperatorApproval
		err := tx.Where("owner = ? AND operator = ?", owner, operator).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&domain.OperatorApproval{Owner: owner, Operator: operator}).Error
	})
}

// IsOperatorApproved reports whether operator holds a blanket approval from owner.
func (s *Service) IsOperatorApproved(ctx context.Context, owner, operator string) (bool, error) {
	return isOperator(s.DB.WithContext(ctx), owner, operator)
}

// ApprovedFor reports whether account may move the certificate: owner,
// single-spender approval, or blanket operator approval.
func (s *Service) ApprovedFor(ctx context.Context, account string, id int64) (bool, error) {
	return approvedForTx(s.DB.WithContext(ctx), account, id)
}

// Transfer moves the certificate from from to to on behalf of caller, in its
// own transaction.
func (s *Service) Transfer(ctx context.Context, caller, from, to string, id int64) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.TransferTx(tx, caller, from, to, id)
	})
}

// TransferTx moves the certificate inside tx. The caller must be the owner or
// approved (single or blanket); the single-spender approval is cleared on
// success.
func (s *Service) TransferTx(tx *gorm.DB, caller, from, to string, id int64) error {
	cert, err := getLive(tx, id)
	if err != nil {
		return err
	}
	if cert.Owner != from {
		return ErrNotOwner
	}
	allowed, err := approvedForCert(tx, caller, cert)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotApproved
	}
	return tx.Model(&domain.Certificate{}).Where("certificate_id = ?", id).
		Updates(map[string]interface{}{"owner": to, "approved": nil}).Error
}

// DestroyTx retires the certificate inside tx: owner cleared, tombstone set,
// id never reissued. Caller must hold the bridge operator role on the
// registry. Quantity is left on the tombstone so the conversion amount stays
// auditable.
func (s *Service) DestroyTx(ctx context.Context, tx *gorm.DB, caller string, id int64) error {
	ok, err := s.Oracle.HasRole(ctx, constants.RoleBridgeOperator, caller, constants.LedgerRegistry)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotBridgeOperator
	}
	if _, err := getLive(tx, id); err != nil {
		return err
	}
	return tx.Model(&domain.Certificate{}).Where("certificate_id = ?", id).
		Updates(map[string]interface{}{"owner": "", "approved": nil, "retired": true}).Error
}

// OwnerOfTx is OwnerOf against a caller-owned transaction, for re-checks at
// the instant of mutation rather than listing time.
func (s *Service) OwnerOfTx(tx *gorm.DB, id int64) (string, error) {
	cert, err := getLive(tx, id)
	if err != nil {
		return "", err
	}
	return cert.Owner, nil
}

// GetLiveTx returns a live certificate inside tx.
func (s *Service) GetLiveTx(tx *gorm.DB, id int64) (*domain.Certificate, error) {
	return getLive(tx, id)
}

// ApprovedForTx is ApprovedFor against a caller-owned transaction.
func (s *Service) ApprovedForTx(tx *gorm.DB, account string, id int64) (bool, error) {
	return approvedForTx(tx, account, id)
}

// ListByOwner returns the live certificates an account holds.
func (s *Service) ListByOwner(ctx context.Context, owner string) ([]domain.Certificate, error) {
	var certs []domain.Certificate
	err := s.DB.WithContext(ctx).
		Where("owner = ? AND retired = ?", owner, false).
		Order("certificate_id").Find(&certs).Error
	return certs, err
}

func getCert(tx *gorm.DB, id int64) (*domain.Certificate, error) {
	var cert domain.Certificate
	if err := tx.Where("certificate_id = ?", id).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	return &cert, nil
}

func getLive(tx *gorm.DB, id int64) (*domain.Certificate, error) {
	cert, err := getCert(tx, id)
	if err != nil {
		return nil, err
	}
	if cert.Retired {
		return nil, ErrCertificateRetired
	}
	return cert, nil
}

func isOperator(tx *gorm.DB, owner, operator string) (bool, error) {
	var count int64
	err := tx.Model(&domain.OperatorApproval{}).
		Where("owner = ? AND operator = ?", owner, operator).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func approvedForTx(tx *gorm.DB, account string, id int64) (bool, error) {
	cert, err := getLive(tx, id)
	if err != nil {
		return false, err
	}
	return approvedForCert(tx, account, cert)
}

func approvedForCert(tx *gorm.DB, account string, cert *domain.Certificate) (bool, error) {
	if account == cert.Owner {
		return true, nil
	}
	if cert.Approved != nil && *cert.Approved == account {
		return true, nil
	}
	return isOperator(tx, cert.Owner, account)
}
