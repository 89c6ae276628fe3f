package domain

import "github.com/shopspring/decimal"

// Position is one holding valued at the current market price.
type Position struct {
	Symbol      string          `json:"symbol"`
	CompanyName string          `json:"company_name"`
	Shares      int64           `json:"shares"`
	Price       decimal.Decimal `json:"price"`
	MarketValue decimal.Decimal `json:"market_value"`
}

// PortfolioValuation is a user's full portfolio valued at current prices.
// NetWorth is cash plus the sum of all position market values.
type PortfolioValuation struct {
	Positions []Position      `json:"positions"`
	Cash      decimal.Decimal `json:"cash"`
	NetWorth  decimal.Decimal `json:"net_worth"`
}
