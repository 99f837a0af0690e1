package bridge

import "errors"

var (
	ErrNotOwner            = errors.New("Caller does not own this certificate")
	ErrNotApproved         = errors.New("Bridge is not approved to move this certificate")
	ErrInvalidCarbonAmount = errors.New("Certificate carries no carbon quantity")
)
