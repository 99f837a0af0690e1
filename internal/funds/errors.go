package funds

import "errors"

var (
	ErrInsufficientFunds = errors.New("Insufficient funds")
	ErrNotAdministrator  = errors.New("Caller is not a funds administrator")
	ErrInvalidAmount     = errors.New("Amount must be positive")
)
