package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestApplyBuyWeightedAverage(t *testing.T) {
	h := &Holding{
		Symbol:    "AAPL",
		Shares:    10,
		AvgCost:   dec("100"),
		TotalCost: dec("1000"),
	}

	// 10 more shares at 200 -> 20 shares, basis 3000, avg 150
	h.ApplyBuy(10, dec("2000"))

	assert.EqualValues(t, 20, h.Shares)
	assert.True(t, h.TotalCost.Equal(dec("3000")), "total cost %s", h.TotalCost)
	assert.True(t, h.AvgCost.Equal(dec("150")), "avg cost %s", h.AvgCost)
}

func TestApplyBuyFirstPurchase(t *testing.T) {
	h := &Holding{Symbol: "NFLX"}

	h.ApplyBuy(3, dec("150.30"))

	assert.EqualValues(t, 3, h.Shares)
	assert.True(t, h.AvgCost.Equal(dec("50.10")), "avg cost %s", h.AvgCost)
}

func TestApplySellRetainsPerShareBasis(t *testing.T) {
	h := &Holding{
		Symbol:    "AAPL",
		Shares:    20,
		AvgCost:   dec("150"),
		TotalCost: dec("3000"),
	}

	h.ApplySell(5)

	assert.EqualValues(t, 15, h.Shares)
	assert.True(t, h.AvgCost.Equal(dec("150")), "avg cost %s", h.AvgCost)
	assert.True(t, h.TotalCost.Equal(dec("2250")), "total cost %s", h.TotalCost)
}

func TestMarketValue(t *testing.T) {
	h := &Holding{Shares: 7}

	v := h.MarketValue(dec("12.50"))

	assert.True(t, v.Equal(dec("87.50")), "market value %s", v)
}
