package registry

import "errors"

var (
	ErrCertificateNotFound = errors.New("Certificate not found")
	ErrCertificateRetired  = errors.New("Certificate has been retired")
	ErrNotOwner            = errors.New("Caller is not the certificate owner")
	ErrNotApproved         = errors.New("Caller is not approved for this certificate")
	ErrNotIssuer           = errors.New("Caller does not hold the issuer role")
	ErrNotBridgeOperator   = errors.New("Caller does not hold the bridge operator role")
	ErrInvalidQuantity     = errors.New("Certificate quantity must be positive")
)
