package market

import "errors"

var (
	ErrNotOwner              = errors.New("Caller is not the owner of this asset")
	ErrNotApproved           = errors.New("Market operator is not approved to move this certificate")
	ErrInsufficientBalance   = errors.New("Insufficient credit balance to list")
	ErrInsufficientAllowance = errors.New("Insufficient allowance granted to the market operator")
	ErrListingNotFound       = errors.New("Listing not found")
	ErrListingNotActive      = errors.New("Listing is not active")
	ErrInsufficientPayment   = errors.New("Payment is below the listing price")
	ErrSellerNoLongerOwns    = errors.New("Seller no longer owns this certificate")
	ErrInvalidPrice          = errors.New("Price must not be negative")
	ErrInvalidQuantity       = errors.New("Quantity must be positive")
)
