package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time price for one symbol as reported by the
// market-data provider.
type Quote struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name"`
	Price       decimal.Decimal `json:"price"`
}

// PriceLookup resolves a symbol to its current quote. Implementations
// return ErrInvalidSymbol for symbols the provider does not know and wrap
// ErrLookupFailed for transport or provider failures.
type PriceLookup interface {
	Lookup(ctx context.Context, symbol string) (*Quote, error)
}
