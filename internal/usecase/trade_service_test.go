package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

// memLedger is an in-memory Ledger for engine tests. InTx snapshots state
// up front and restores it when the callback fails, mirroring the rollback
// behavior of the Postgres implementation.
type memLedger struct {
	users    map[uuid.UUID]*domain.User
	holdings map[string]*domain.Holding
	history  []*domain.HistoryEntry
}

func newMemLedger() *memLedger {
	return &memLedger{
		users:    make(map[uuid.UUID]*domain.User),
		holdings: make(map[string]*domain.Holding),
	}
}

func holdingKey(userID uuid.UUID, symbol string) string {
	return userID.String() + "|" + symbol
}

func (l *memLedger) snapshot() *memLedger {
	s := newMemLedger()
	for id, u := range l.users {
		copied := *u
		s.users[id] = &copied
	}
	for k, h := range l.holdings {
		copied := *h
		s.holdings[k] = &copied
	}
	s.history = append([]*domain.HistoryEntry(nil), l.history...)
	return s
}

func (l *memLedger) restore(s *memLedger) {
	l.users = s.users
	l.holdings = s.holdings
	l.history = s.history
}

func (l *memLedger) InTx(ctx context.Context, fn func(store domain.LedgerStore) error) error {
	s := l.snapshot()
	if err := fn(l); err != nil {
		l.restore(s)
		return err
	}
	return nil
}

func (l *memLedger) CreateUser(ctx context.Context, user *domain.User) error {
	for _, u := range l.users {
		if u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	copied := *user
	l.users[user.ID] = &copied
	return nil
}

func (l *memLedger) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := l.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (l *memLedger) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range l.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (l *memLedger) AdjustCash(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	u, ok := l.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	next := u.Cash.Add(delta)
	if next.IsNegative() {
		return domain.ErrInsufficientFunds
	}
	u.Cash = next
	return nil
}

func (l *memLedger) GetHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	h, ok := l.holdings[holdingKey(userID, symbol)]
	if !ok {
		return nil, domain.ErrNoSuchHolding
	}
	copied := *h
	return &copied, nil
}

func (l *memLedger) UpsertHolding(ctx context.Context, holding *domain.Holding) error {
	copied := *holding
	l.holdings[holdingKey(holding.UserID, holding.Symbol)] = &copied
	return nil
}

func (l *memLedger) DeleteHolding(ctx context.Context, userID uuid.UUID, symbol string) error {
	key := holdingKey(userID, symbol)
	if _, ok := l.holdings[key]; !ok {
		return domain.ErrNoSuchHolding
	}
	delete(l.holdings, key)
	return nil
}

func (l *memLedger) AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	entry.ID = int64(len(l.history) + 1)
	l.history = append(l.history, entry)
	return nil
}

func (l *memLedger) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	var out []*domain.Holding
	for _, h := range l.holdings {
		if h.UserID == userID {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (l *memLedger) ListHistory(ctx context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	var out []*domain.HistoryEntry
	for i := len(l.history) - 1; i >= 0; i-- {
		if l.history[i].UserID == userID {
			out = append(out, l.history[i])
		}
	}
	return out, nil
}

func (l *memLedger) ListHeldSymbols(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, h := range l.holdings {
		if !seen[h.Symbol] {
			seen[h.Symbol] = true
			out = append(out, h.Symbol)
		}
	}
	return out, nil
}

// fakeLookup serves quotes from a fixed price table
type fakeLookup struct {
	prices map[string]decimal.Decimal
	names  map[string]string
	broken map[string]bool
}

func (f *fakeLookup) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if f.broken[symbol] {
		return nil, fmt.Errorf("%w: provider unreachable", domain.ErrLookupFailed)
	}
	price, ok := f.prices[symbol]
	if !ok {
		return nil, domain.ErrInvalidSymbol
	}
	return &domain.Quote{
		Symbol:      symbol,
		CompanyName: f.names[symbol],
		Price:       price,
	}, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func newFixture(t *testing.T, cash string) (*TradeService, *memLedger, *fakeLookup, uuid.UUID) {
	t.Helper()

	ledger := newMemLedger()
	userID := uuid.New()
	require.NoError(t, ledger.CreateUser(context.Background(), &domain.User{
		ID:       userID,
		Username: "trader",
		Cash:     dec(cash),
	}))

	lookup := &fakeLookup{
		prices: map[string]decimal.Decimal{
			"AAPL": dec("50"),
			"NFLX": dec("320.50"),
		},
		names: map[string]string{
			"AAPL": "Apple, Inc.",
			"NFLX": "Netflix, Inc.",
		},
		broken: make(map[string]bool),
	}

	return NewTradeService(ledger, lookup), ledger, lookup, userID
}

func TestBuyDebitsCashAndCreatesHolding(t *testing.T) {
	ts, ledger, _, userID := newFixture(t, "10000")
	ctx := context.Background()

	holding, err := ts.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", holding.Symbol)
	assert.EqualValues(t, 10, holding.Shares)
	assert.True(t, holding.AvgCost.Equal(dec("50")), "avg cost %s", holding.AvgCost)

	user, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Cash.Equal(dec("9500")), "cash %s", user.Cash)

	history, err := ledger.ListHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.HistoryBuy, history[0].Type)
	assert.EqualValues(t, 10, *history[0].Shares)
	// History records the total cost of the trade, not the unit price.
	assert.True(t, history[0].Amount.Equal(dec("500")), "amount %s", history[0].Amount)
}

func TestBuyMergesExistingHoldingWithWeightedAverage(t *testing.T) {
	ts, _, lookup, userID := newFixture(t, "100000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)

	lookup.prices["AAPL"] = dec("100")
	holding, err := ts.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)

	assert.EqualValues(t, 20, holding.Shares)
	assert.True(t, holding.TotalCost.Equal(dec("1500")), "total cost %s", holding.TotalCost)
	assert.True(t, holding.AvgCost.Equal(dec("75")), "avg cost %s", holding.AvgCost)
}

func TestBuyNormalizesSymbolCase(t *testing.T) {
	ts, ledger, _, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "aapl", 1)
	require.NoError(t, err)

	_, err = ledger.GetHolding(ctx, userID, "AAPL")
	assert.NoError(t, err)
}

func TestBuyInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	ts, ledger, _, userID := newFixture(t, "100")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10) // costs 500
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	user, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Cash.Equal(dec("100")), "cash %s", user.Cash)

	_, err = ledger.GetHolding(ctx, userID, "AAPL")
	assert.ErrorIs(t, err, domain.ErrNoSuchHolding)

	history, err := ledger.ListHistory(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestBuyRejectsInvalidShareCounts(t *testing.T) {
	ts, _, _, userID := newFixture(t, "10000")
	ctx := context.Background()

	for _, shares := range []int64{0, -5} {
		_, err := ts.Buy(ctx, userID, "AAPL", shares)
		assert.ErrorIs(t, err, domain.ErrInvalidShareCount, "shares=%d", shares)
	}
}

func TestBuyRejectsUnknownSymbol(t *testing.T) {
	ts, _, _, userID := newFixture(t, "10000")

	_, err := ts.Buy(context.Background(), userID, "NOPE", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidSymbol)

	_, err = ts.Buy(context.Background(), userID, "   ", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidSymbol)
}

func TestSellAllDeletesHolding(t *testing.T) {
	ts, ledger, lookup, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10) // cash 9500
	require.NoError(t, err)

	lookup.prices["AAPL"] = dec("60")
	remaining, err := ts.Sell(ctx, userID, "AAPL", 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, remaining)

	user, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Cash.Equal(dec("10100")), "cash %s", user.Cash)

	_, err = ledger.GetHolding(ctx, userID, "AAPL")
	assert.ErrorIs(t, err, domain.ErrNoSuchHolding)

	history, err := ledger.ListHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.HistorySell, history[0].Type)
	assert.True(t, history[0].Amount.Equal(dec("600")), "amount %s", history[0].Amount)
}

func TestSellPartialKeepsPerShareBasis(t *testing.T) {
	ts, ledger, lookup, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)

	lookup.prices["AAPL"] = dec("55")
	remaining, err := ts.Sell(ctx, userID, "AAPL", 4)
	require.NoError(t, err)
	assert.EqualValues(t, 6, remaining)

	holding, err := ledger.GetHolding(ctx, userID, "AAPL")
	require.NoError(t, err)
	assert.EqualValues(t, 6, holding.Shares)
	assert.True(t, holding.AvgCost.Equal(dec("50")), "avg cost %s", holding.AvgCost)
	assert.True(t, holding.TotalCost.Equal(dec("300")), "total cost %s", holding.TotalCost)

	user, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)
	// 10000 - 500 + 4*55
	assert.True(t, user.Cash.Equal(dec("9720")), "cash %s", user.Cash)
}

func TestSellWithoutHolding(t *testing.T) {
	ts, _, _, userID := newFixture(t, "10000")

	_, err := ts.Sell(context.Background(), userID, "NFLX", 1)
	assert.ErrorIs(t, err, domain.ErrNoSuchHolding)
}

func TestSellMoreThanHeldLeavesStateUnchanged(t *testing.T) {
	ts, ledger, _, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)

	before, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)

	_, err = ts.Sell(ctx, userID, "AAPL", 11)
	assert.ErrorIs(t, err, domain.ErrInsufficientShares)

	after, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, after.Cash.Equal(before.Cash))

	holding, err := ledger.GetHolding(ctx, userID, "AAPL")
	require.NoError(t, err)
	assert.EqualValues(t, 10, holding.Shares)

	history, err := ledger.ListHistory(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 1) // only the BUY
}

func TestSellRejectsInvalidShareCounts(t *testing.T) {
	ts, _, _, userID := newFixture(t, "10000")

	_, err := ts.Sell(context.Background(), userID, "AAPL", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidShareCount)
}

func TestValuePortfolio(t *testing.T) {
	ts, _, lookup, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10)    // 500
	require.NoError(t, err)
	_, err = ts.Buy(ctx, userID, "NFLX", 2) // 641
	require.NoError(t, err)

	lookup.prices["AAPL"] = dec("60")

	valuation, err := ts.ValuePortfolio(ctx, userID)
	require.NoError(t, err)

	require.Len(t, valuation.Positions, 2)
	// cash = 10000 - 500 - 641 = 8859
	assert.True(t, valuation.Cash.Equal(dec("8859")), "cash %s", valuation.Cash)
	// net worth = 8859 + 10*60 + 2*320.50 = 10100
	assert.True(t, valuation.NetWorth.Equal(dec("10100")), "net worth %s", valuation.NetWorth)

	bySymbol := make(map[string]domain.Position)
	for _, p := range valuation.Positions {
		bySymbol[p.Symbol] = p
	}
	assert.True(t, bySymbol["AAPL"].MarketValue.Equal(dec("600")))
	assert.True(t, bySymbol["NFLX"].MarketValue.Equal(dec("641")))
}

func TestValuePortfolioAbortsOnLookupFailure(t *testing.T) {
	ts, _, lookup, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 1)
	require.NoError(t, err)
	_, err = ts.Buy(ctx, userID, "NFLX", 1)
	require.NoError(t, err)

	lookup.broken["NFLX"] = true

	valuation, err := ts.ValuePortfolio(ctx, userID)
	assert.ErrorIs(t, err, domain.ErrLookupFailed)
	assert.Nil(t, valuation, "failed valuation must not return partial data")
}

func TestValuePortfolioEmpty(t *testing.T) {
	ts, _, _, userID := newFixture(t, "10000")

	valuation, err := ts.ValuePortfolio(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, valuation.Positions)
	assert.True(t, valuation.NetWorth.Equal(dec("10000")))
}

func TestHistoryGrowsOnlyOnSuccess(t *testing.T) {
	ts, ledger, _, userID := newFixture(t, "10000")
	ctx := context.Background()

	_, err := ts.Buy(ctx, userID, "AAPL", 10)
	require.NoError(t, err)
	_, err = ts.Buy(ctx, userID, "AAPL", 1000) // insufficient funds
	require.Error(t, err)
	_, err = ts.Sell(ctx, userID, "AAPL", 5)
	require.NoError(t, err)
	_, err = ts.Sell(ctx, userID, "AAPL", 99) // insufficient shares
	require.Error(t, err)

	history, err := ledger.ListHistory(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestConcurrentBuysAreSerializedPerUser(t *testing.T) {
	ts, ledger, _, userID := newFixture(t, "10000")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ts.Buy(ctx, userID, "AAPL", 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user, err := ledger.GetUser(ctx, userID)
	require.NoError(t, err)
	assert.True(t, user.Cash.Equal(dec("9000")), "cash %s", user.Cash)

	holding, err := ledger.GetHolding(ctx, userID, "AAPL")
	require.NoError(t, err)
	assert.EqualValues(t, 20, holding.Shares)
}
