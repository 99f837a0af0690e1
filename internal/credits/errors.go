package credits

import "errors"

var (
	ErrInsufficientBalance   = errors.New("Insufficient credit balance")
	ErrInsufficientAllowance = errors.New("Insufficient credit allowance")
	ErrNotMinter             = errors.New("Caller is not authorized to mint credits")
	ErrNotVerifier           = errors.New("Caller does not hold the verifier role")
	ErrNotIssuer             = errors.New("Caller does not hold the issuer role")
	ErrNotVerified           = errors.New("No verification record for this project and vintage")
	ErrEvidenceRequired      = errors.New("Verification evidence hash must not be empty")
	ErrInvalidAmount         = errors.New("Credit amount must be positive")
)
