package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// TradeService is the trade engine: it validates and settles buy and sell
// orders against the ledger at prices from the lookup service. Mutations
// for one user are serialized by a per-user mutex and applied inside a
// single ledger transaction, so a failed order leaves no partial state.
type TradeService struct {
	ledger domain.Ledger
	prices domain.PriceLookup

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewTradeService creates a new TradeService
func NewTradeService(ledger domain.Ledger, prices domain.PriceLookup) *TradeService {
	return &TradeService{
		ledger: ledger,
		prices: prices,
		locks:  make(map[uuid.UUID]*sync.Mutex),
	}
}

// lockUser acquires the mutation lock for one user id and returns the
// matching unlock.
func (ts *TradeService) lockUser(userID uuid.UUID) func() {
	ts.mu.Lock()
	lock, ok := ts.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		ts.locks[userID] = lock
	}
	ts.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Buy purchases shares of a symbol at its current price. It returns a
// snapshot of the updated holding.
func (ts *TradeService) Buy(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (*domain.Holding, error) {
	if shares <= 0 {
		return nil, domain.ErrInvalidShareCount
	}
	if strings.TrimSpace(symbol) == "" {
		return nil, domain.ErrInvalidSymbol
	}

	quote, err := ts.prices.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	unlock := ts.lockUser(userID)
	defer unlock()

	totalCost := quote.Price.Mul(decimal.NewFromInt(shares))

	var snapshot *domain.Holding
	err = ts.ledger.InTx(ctx, func(store domain.LedgerStore) error {
		user, err := store.GetUser(ctx, userID)
		if err != nil {
			return err
		}

		if totalCost.GreaterThan(user.Cash) {
			return domain.ErrInsufficientFunds
		}

		holding, err := store.GetHolding(ctx, userID, quote.Symbol)
		if err != nil {
			if !errors.Is(err, domain.ErrNoSuchHolding) {
				return err
			}
			holding = &domain.Holding{
				UserID: userID,
				Symbol: quote.Symbol,
			}
		}
		holding.CompanyName = quote.CompanyName
		holding.ApplyBuy(shares, totalCost)

		if err := store.UpsertHolding(ctx, holding); err != nil {
			return err
		}
		if err := store.AdjustCash(ctx, userID, totalCost.Neg()); err != nil {
			return err
		}
		// The history amount is the total cost of the trade, not the
		// unit price.
		entry := domain.NewTradeHistory(userID, domain.HistoryBuy, quote.Symbol, quote.CompanyName, shares, totalCost)
		if err := store.AppendHistory(ctx, entry); err != nil {
			return err
		}

		snapshot = holding
		return nil
	})
	if err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Sell disposes shares of a held symbol at its current price. It returns
// the remaining share count, zero when the position was fully closed.
func (ts *TradeService) Sell(ctx context.Context, userID uuid.UUID, symbol string, shares int64) (int64, error) {
	if shares <= 0 {
		return 0, domain.ErrInvalidShareCount
	}
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, domain.ErrInvalidSymbol
	}

	unlock := ts.lockUser(userID)
	defer unlock()

	holding, err := ts.ledger.GetHolding(ctx, userID, symbol)
	if err != nil {
		return 0, err
	}
	if shares > holding.Shares {
		return 0, domain.ErrInsufficientShares
	}

	quote, err := ts.prices.Lookup(ctx, symbol)
	if err != nil {
		return 0, err
	}

	proceeds := quote.Price.Mul(decimal.NewFromInt(shares))
	sellAll := shares == holding.Shares

	err = ts.ledger.InTx(ctx, func(store domain.LedgerStore) error {
		if sellAll {
			if err := store.DeleteHolding(ctx, userID, symbol); err != nil {
				return err
			}
			holding.Shares = 0
		} else {
			holding.ApplySell(shares)
			if err := store.UpsertHolding(ctx, holding); err != nil {
				return err
			}
		}

		if err := store.AdjustCash(ctx, userID, proceeds); err != nil {
			return err
		}

		entry := domain.NewTradeHistory(userID, domain.HistorySell, symbol, holding.CompanyName, shares, proceeds)
		return store.AppendHistory(ctx, entry)
	})
	if err != nil {
		return 0, err
	}

	return holding.Shares, nil
}

// ValuePortfolio values every holding of a user at current prices. The
// read is all-or-nothing: if any lookup fails the whole valuation fails
// rather than returning partial data.
func (ts *TradeService) ValuePortfolio(ctx context.Context, userID uuid.UUID) (*domain.PortfolioValuation, error) {
	user, err := ts.ledger.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings, err := ts.ledger.ListHoldings(ctx, userID)
	if err != nil {
		return nil, err
	}

	valuation := &domain.PortfolioValuation{
		Positions: make([]domain.Position, 0, len(holdings)),
		Cash:      user.Cash,
		NetWorth:  user.Cash,
	}

	for _, holding := range holdings {
		quote, err := ts.prices.Lookup(ctx, holding.Symbol)
		if err != nil {
			if !errors.Is(err, domain.ErrLookupFailed) {
				err = fmt.Errorf("%w: valuing %s: %v", domain.ErrLookupFailed, holding.Symbol, err)
			}
			return nil, err
		}

		marketValue := holding.MarketValue(quote.Price)
		valuation.Positions = append(valuation.Positions, domain.Position{
			Symbol:      holding.Symbol,
			CompanyName: quote.CompanyName,
			Shares:      holding.Shares,
			Price:       quote.Price,
			MarketValue: marketValue,
		})
		valuation.NetWorth = valuation.NetWorth.Add(marketValue)
	}

	return valuation, nil
}

// History retrieves a user's activity log, newest first
func (ts *TradeService) History(ctx context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	return ts.ledger.ListHistory(ctx, userID)
}

// Quote resolves a symbol to its current quote
func (ts *TradeService) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	return ts.prices.Lookup(ctx, symbol)
}
