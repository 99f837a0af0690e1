package auth

import "errors"

var (
	ErrEmailPasswordRequired = errors.New("Email and password are required")
	ErrInvalidEmail          = errors.New("Invalid Email")
	ErrIncorrectPassword     = errors.New("Incorrect Password")
	ErrNotAuthenticated      = errors.New("Not authenticated")
	ErrInvalidAccount        = errors.New("Invalid account name")
	ErrWeakPassword          = errors.New("Password does not meet requirements")
	ErrEmailTaken            = errors.New("Email already registered")
	ErrAccountTaken          = errors.New("Account name already taken")
)
