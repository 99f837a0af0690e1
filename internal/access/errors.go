package access

import "errors"

var (
	ErrNotAdministrator = errors.New("Caller is not an administrator for this ledger")
	ErrUnknownRole      = errors.New("Unknown role")
	ErrUnknownLedger    = errors.New("Unknown ledger")
)
