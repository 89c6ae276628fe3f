package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PriceHistoryRepository persists periodic quote snapshots for held symbols
type PriceHistoryRepository struct {
	db *pgxpool.Pool
}

// NewPriceHistoryRepository creates a new PriceHistoryRepository
func NewPriceHistoryRepository(db *pgxpool.Pool) *PriceHistoryRepository {
	return &PriceHistoryRepository{db: db}
}

// Record stores one price observation for a symbol
func (r *PriceHistoryRepository) Record(ctx context.Context, symbol string, price decimal.Decimal) error {
	query := `
		INSERT INTO stock_prices (symbol, price, recorded_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.db.Exec(ctx, query, symbol, price, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record price snapshot: %w", err)
	}

	return nil
}

// Recent retrieves the latest snapshots for a symbol, newest first
func (r *PriceHistoryRepository) Recent(ctx context.Context, symbol string, limit int) ([]PriceSnapshot, error) {
	query := `
		SELECT symbol, price, recorded_at
		FROM stock_prices
		WHERE symbol = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query price snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []PriceSnapshot
	for rows.Next() {
		var s PriceSnapshot
		if err := rows.Scan(&s.Symbol, &s.Price, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating price snapshots: %w", err)
	}

	return snapshots, nil
}

// PriceSnapshot is one stored price observation
type PriceSnapshot struct {
	Symbol     string          `json:"symbol"`
	Price      decimal.Decimal `json:"price"`
	RecordedAt time.Time       `json:"recorded_at"`
}
