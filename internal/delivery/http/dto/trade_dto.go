package dto

import (
	"time"

	"papertrade/internal/domain"
)

// TradeRequest represents a buy or sell order payload
type TradeRequest struct {
	Symbol string `json:"symbol" validate:"required"`
	Shares int64  `json:"shares" validate:"required,min=1"`
}

// QuoteOutput represents a quote in API responses
type QuoteOutput struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Price       string `json:"price"`
}

// HoldingOutput represents a holding snapshot in API responses
type HoldingOutput struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Shares      int64  `json:"shares"`
	AvgCost     string `json:"avg_cost"`
	TotalCost   string `json:"total_cost"`
}

// SellOutput reports the outcome of a sell order
type SellOutput struct {
	Symbol          string `json:"symbol"`
	SharesSold      int64  `json:"shares_sold"`
	RemainingShares int64  `json:"remaining_shares"`
}

// PositionOutput represents one valued position
type PositionOutput struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name"`
	Shares      int64  `json:"shares"`
	Price       string `json:"price"`
	MarketValue string `json:"market_value"`
}

// PortfolioOutput represents a full portfolio valuation
type PortfolioOutput struct {
	Positions []PositionOutput `json:"positions"`
	Cash      string           `json:"cash"`
	NetWorth  string           `json:"net_worth"`
}

// HistoryOutput represents one activity log entry
type HistoryOutput struct {
	ID          int64   `json:"id"`
	Type        string  `json:"type"`
	Symbol      *string `json:"symbol,omitempty"`
	CompanyName *string `json:"company_name,omitempty"`
	Shares      *int64  `json:"shares,omitempty"`
	Amount      *string `json:"amount,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

// FromQuote converts a domain quote to its API shape
func FromQuote(q *domain.Quote) QuoteOutput {
	return QuoteOutput{
		Symbol:      q.Symbol,
		CompanyName: q.CompanyName,
		Price:       q.Price.StringFixed(2),
	}
}

// FromHolding converts a domain holding to its API shape
func FromHolding(h *domain.Holding) HoldingOutput {
	return HoldingOutput{
		Symbol:      h.Symbol,
		CompanyName: h.CompanyName,
		Shares:      h.Shares,
		AvgCost:     h.AvgCost.StringFixed(2),
		TotalCost:   h.TotalCost.StringFixed(2),
	}
}

// FromValuation converts a portfolio valuation to its API shape
func FromValuation(v *domain.PortfolioValuation) PortfolioOutput {
	out := PortfolioOutput{
		Positions: make([]PositionOutput, 0, len(v.Positions)),
		Cash:      v.Cash.StringFixed(2),
		NetWorth:  v.NetWorth.StringFixed(2),
	}
	for _, p := range v.Positions {
		out.Positions = append(out.Positions, PositionOutput{
			Symbol:      p.Symbol,
			CompanyName: p.CompanyName,
			Shares:      p.Shares,
			Price:       p.Price.StringFixed(2),
			MarketValue: p.MarketValue.StringFixed(2),
		})
	}
	return out
}

// FromHistory converts activity log entries to their API shape
func FromHistory(entries []*domain.HistoryEntry) []HistoryOutput {
	out := make([]HistoryOutput, 0, len(entries))
	for _, e := range entries {
		item := HistoryOutput{
			ID:          e.ID,
			Type:        e.Type,
			Symbol:      e.Symbol,
			CompanyName: e.CompanyName,
			Shares:      e.Shares,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		}
		if e.Amount != nil {
			amount := e.Amount.StringFixed(2)
			item.Amount = &amount
		}
		out = append(out, item)
	}
	return out
}
