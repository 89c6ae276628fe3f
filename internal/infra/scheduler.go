package infra

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"papertrade/internal/domain"
	"papertrade/internal/repository"
)

// Scheduler periodically snapshots quotes for every held symbol into the
// price history table. It only ever reads the ledger; trade settlement
// never depends on it.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	ledger  domain.Ledger
	prices  domain.PriceLookup
	history *repository.PriceHistoryRepository
}

// NewScheduler creates a new scheduler
func NewScheduler(spec string, ledger domain.Ledger, prices domain.PriceLookup, history *repository.PriceHistoryRepository) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		spec:    spec,
		ledger:  ledger,
		prices:  prices,
		history: history,
	}
}

// Start starts the snapshot job
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if err := s.snapshotHeldSymbols(ctx); err != nil {
			log.Printf("ERROR: price snapshot run failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("[OK] Price snapshot scheduler started (%s)", s.spec)
	return nil
}

// Stop stops the scheduler gracefully
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[OK] Price snapshot scheduler stopped")
}

func (s *Scheduler) snapshotHeldSymbols(ctx context.Context) error {
	symbols, err := s.ledger.ListHeldSymbols(ctx)
	if err != nil {
		return err
	}

	if len(symbols) == 0 {
		return nil
	}

	recorded := 0
	for _, symbol := range symbols {
		quote, err := s.prices.Lookup(ctx, symbol)
		if err != nil {
			log.Printf("WARNING: snapshot lookup for %s failed: %v", symbol, err)
			continue
		}

		if err := s.history.Record(ctx, quote.Symbol, quote.Price); err != nil {
			log.Printf("WARNING: failed to record snapshot for %s: %v", symbol, err)
			continue
		}
		recorded++
	}

	log.Printf("Price snapshot run complete: %d/%d symbols recorded", recorded, len(symbols))
	return nil
}
