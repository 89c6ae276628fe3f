package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryEntry is one append-only row in a user's activity log. Trade
// entries carry the symbol, share count and the total amount moved (cost
// for BUY, proceeds for SELL); session entries carry only the type.
type HistoryEntry struct {
	ID          int64            `json:"id"`
	UserID      uuid.UUID        `json:"user_id"`
	Type        string           `json:"type"`
	Symbol      *string          `json:"symbol,omitempty"`
	CompanyName *string          `json:"company_name,omitempty"`
	Shares      *int64           `json:"shares,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// HistoryEntry type constants
const (
	HistoryLogin  = "LOGIN"
	HistoryLogout = "LOGOUT"
	HistoryBuy    = "BUY"
	HistorySell   = "SELL"
)

// NewTradeHistory builds a BUY or SELL entry for a completed trade.
func NewTradeHistory(userID uuid.UUID, entryType, symbol, companyName string, shares int64, amount decimal.Decimal) *HistoryEntry {
	return &HistoryEntry{
		UserID:      userID,
		Type:        entryType,
		Symbol:      &symbol,
		CompanyName: &companyName,
		Shares:      &shares,
		Amount:      &amount,
		CreatedAt:   time.Now(),
	}
}

// NewSessionHistory builds a LOGIN or LOGOUT entry.
func NewSessionHistory(userID uuid.UUID, entryType string) *HistoryEntry {
	return &HistoryEntry{
		UserID:    userID,
		Type:      entryType,
		CreatedAt: time.Now(),
	}
}
