package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerStore defines the persistence contract consumed by the trade
// engine and auth service. All operations are scoped to a single user id.
type LedgerStore interface {
	// CreateUser creates a new user
	CreateUser(ctx context.Context, user *User) error

	// GetUser retrieves a user by ID
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	// GetUserByUsername retrieves a user by username
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// AdjustCash applies a signed delta to a user's cash balance.
	// A delta that would drive the balance negative is rejected with
	// ErrInsufficientFunds and leaves the balance unchanged.
	AdjustCash(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error

	// GetHolding retrieves one (user, symbol) position, or ErrNoSuchHolding
	GetHolding(ctx context.Context, userID uuid.UUID, symbol string) (*Holding, error)

	// UpsertHolding inserts or replaces the (user, symbol) position
	UpsertHolding(ctx context.Context, holding *Holding) error

	// DeleteHolding removes the (user, symbol) position entirely
	DeleteHolding(ctx context.Context, userID uuid.UUID, symbol string) error

	// AppendHistory appends one immutable activity log entry
	AppendHistory(ctx context.Context, entry *HistoryEntry) error

	// ListHoldings retrieves all of a user's positions
	ListHoldings(ctx context.Context, userID uuid.UUID) ([]*Holding, error)

	// ListHistory retrieves a user's activity log, newest first
	ListHistory(ctx context.Context, userID uuid.UUID) ([]*HistoryEntry, error)

	// ListHeldSymbols retrieves the distinct symbols held by any user
	ListHeldSymbols(ctx context.Context) ([]string, error)
}

// Ledger is a LedgerStore that can also run a group of operations as one
// atomic unit. InTx hands fn a store bound to a single transaction; if fn
// returns an error every write made through that store is rolled back.
type Ledger interface {
	LedgerStore

	InTx(ctx context.Context, fn func(store LedgerStore) error) error
}
