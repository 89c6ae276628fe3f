package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
)

// querier is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same repository code serves pooled and transactional calls.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepositoryImpl implements the Ledger interface over PostgreSQL
type LedgerRepositoryImpl struct {
	pool *pgxpool.Pool
	q    querier
}

// NewLedgerRepository creates a new Ledger backed by the given pool
func NewLedgerRepository(pool *pgxpool.Pool) domain.Ledger {
	return &LedgerRepositoryImpl{pool: pool, q: pool}
}

// InTx runs fn against a transaction-bound copy of the repository. Every
// write fn makes is committed together or rolled back together.
func (r *LedgerRepositoryImpl) InTx(ctx context.Context, fn func(store domain.LedgerStore) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&LedgerRepositoryImpl{pool: r.pool, q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CreateUser creates a new user
func (r *LedgerRepositoryImpl) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, password_hash, cash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.Exec(ctx, query,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.Cash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID
func (r *LedgerRepositoryImpl) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, username, password_hash, cash, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &domain.User{}
	err := r.q.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Cash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by username
func (r *LedgerRepositoryImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, password_hash, cash, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	user := &domain.User{}
	err := r.q.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Cash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return user, nil
}

// AdjustCash applies a signed delta to a user's cash. The predicate keeps
// the balance from ever going negative, even if two writers race.
func (r *LedgerRepositoryImpl) AdjustCash(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE users
		SET cash = cash + $1, updated_at = NOW()
		WHERE id = $2 AND cash + $1 >= 0
	`

	tag, err := r.q.Exec(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust cash: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the user is missing or the delta would overdraw.
		if _, err := r.GetUser(ctx, userID); err != nil {
			return err
		}
		return domain.ErrInsufficientFunds
	}

	return nil
}

// GetHolding retrieves one (user, symbol) position
func (r *LedgerRepositoryImpl) GetHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	query := `
		SELECT user_id, company_symbol, company_name, shares, stock_price, total_cost, created_at, updated_at
		FROM stocks_purchased
		WHERE user_id = $1 AND company_symbol = $2
	`

	holding := &domain.Holding{}
	err := r.q.QueryRow(ctx, query, userID, symbol).Scan(
		&holding.UserID,
		&holding.Symbol,
		&holding.CompanyName,
		&holding.Shares,
		&holding.AvgCost,
		&holding.TotalCost,
		&holding.CreatedAt,
		&holding.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoSuchHolding
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	return holding, nil
}

// UpsertHolding inserts or replaces the (user, symbol) position
func (r *LedgerRepositoryImpl) UpsertHolding(ctx context.Context, holding *domain.Holding) error {
	query := `
		INSERT INTO stocks_purchased (user_id, company_symbol, company_name, shares, stock_price, total_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, company_symbol)
		DO UPDATE SET company_name = EXCLUDED.company_name,
		              shares = EXCLUDED.shares,
		              stock_price = EXCLUDED.stock_price,
		              total_cost = EXCLUDED.total_cost,
		              updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		holding.UserID,
		holding.Symbol,
		holding.CompanyName,
		holding.Shares,
		holding.AvgCost,
		holding.TotalCost,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}

	return nil
}

// DeleteHolding removes the (user, symbol) position entirely
func (r *LedgerRepositoryImpl) DeleteHolding(ctx context.Context, userID uuid.UUID, symbol string) error {
	query := `
		DELETE FROM stocks_purchased
		WHERE user_id = $1 AND company_symbol = $2
	`

	tag, err := r.q.Exec(ctx, query, userID, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNoSuchHolding
	}

	return nil
}

// AppendHistory appends one activity log entry
func (r *LedgerRepositoryImpl) AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	query := `
		INSERT INTO user_history (user_id, type, company_symbol, company_name, shares, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.q.QueryRow(ctx, query,
		entry.UserID,
		entry.Type,
		entry.Symbol,
		entry.CompanyName,
		entry.Shares,
		entry.Amount,
		entry.CreatedAt,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}

	return nil
}

// ListHoldings retrieves all of a user's positions
func (r *LedgerRepositoryImpl) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	query := `
		SELECT user_id, company_symbol, company_name, shares, stock_price, total_cost, created_at, updated_at
		FROM stocks_purchased
		WHERE user_id = $1
		ORDER BY company_symbol ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		holding := &domain.Holding{}
		err := rows.Scan(
			&holding.UserID,
			&holding.Symbol,
			&holding.CompanyName,
			&holding.Shares,
			&holding.AvgCost,
			&holding.TotalCost,
			&holding.CreatedAt,
			&holding.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return holdings, nil
}

// ListHistory retrieves a user's activity log, newest first
func (r *LedgerRepositoryImpl) ListHistory(ctx context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	query := `
		SELECT id, user_id, type, company_symbol, company_name, shares, amount, created_at
		FROM user_history
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []*domain.HistoryEntry
	for rows.Next() {
		entry := &domain.HistoryEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Type,
			&entry.Symbol,
			&entry.CompanyName,
			&entry.Shares,
			&entry.Amount,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return entries, nil
}

// ListHeldSymbols retrieves the distinct symbols held by any user
func (r *LedgerRepositoryImpl) ListHeldSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT company_symbol
		FROM stocks_purchased
		ORDER BY company_symbol ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query held symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}
