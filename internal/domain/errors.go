package domain

import "errors"

// Business and validation errors form a closed set so callers can branch on
// them instead of matching message strings. Anything not in this set is an
// infrastructure failure and surfaces as a wrapped store or lookup error.
var (
	ErrInvalidSymbol      = errors.New("invalid stock symbol")
	ErrInvalidShareCount  = errors.New("share count must be a positive integer")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNoSuchHolding      = errors.New("no holding for symbol")
	ErrLookupFailed       = errors.New("price lookup failed")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
)
