package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Holding represents a user's aggregate position in one symbol.
// There is at most one Holding per (user, symbol) pair; it exists only
// while Shares > 0.
type Holding struct {
	UserID      uuid.UUID       `json:"user_id"`
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name"`
	Shares      int64           `json:"shares"`
	AvgCost     decimal.Decimal `json:"avg_cost"`   // cost basis per share
	TotalCost   decimal.Decimal `json:"total_cost"` // aggregate cost basis
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ApplyBuy merges a purchase into the position. The aggregate cost grows by
// the purchase cost and the per-share basis becomes the weighted average.
func (h *Holding) ApplyBuy(shares int64, totalCost decimal.Decimal) {
	h.Shares += shares
	h.TotalCost = h.TotalCost.Add(totalCost)
	h.AvgCost = h.TotalCost.DivRound(decimal.NewFromInt(h.Shares), 4)
}

// ApplySell removes shares from the position. The per-share basis is
// retained; the aggregate cost shrinks proportionally.
func (h *Holding) ApplySell(shares int64) {
	h.Shares -= shares
	h.TotalCost = h.AvgCost.Mul(decimal.NewFromInt(h.Shares))
}

// MarketValue returns the position's value at the given price.
func (h *Holding) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(h.Shares))
}
