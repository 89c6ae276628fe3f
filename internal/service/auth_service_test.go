package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papertrade/internal/domain"
)

// fakeLedger implements just enough of domain.Ledger for auth tests
type fakeLedger struct {
	users   map[string]*domain.User
	history []*domain.HistoryEntry
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{users: make(map[string]*domain.User)}
}

func (l *fakeLedger) CreateUser(ctx context.Context, user *domain.User) error {
	if _, ok := l.users[user.Username]; ok {
		return domain.ErrUsernameTaken
	}
	l.users[user.Username] = user
	return nil
}

func (l *fakeLedger) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range l.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (l *fakeLedger) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := l.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (l *fakeLedger) AppendHistory(ctx context.Context, entry *domain.HistoryEntry) error {
	l.history = append(l.history, entry)
	return nil
}

func (l *fakeLedger) AdjustCash(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) error {
	return nil
}

func (l *fakeLedger) GetHolding(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Holding, error) {
	return nil, domain.ErrNoSuchHolding
}

func (l *fakeLedger) UpsertHolding(ctx context.Context, holding *domain.Holding) error { return nil }

func (l *fakeLedger) DeleteHolding(ctx context.Context, userID uuid.UUID, symbol string) error {
	return nil
}

func (l *fakeLedger) ListHoldings(ctx context.Context, userID uuid.UUID) ([]*domain.Holding, error) {
	return nil, nil
}

func (l *fakeLedger) ListHistory(ctx context.Context, userID uuid.UUID) ([]*domain.HistoryEntry, error) {
	return l.history, nil
}

func (l *fakeLedger) ListHeldSymbols(ctx context.Context) ([]string, error) { return nil, nil }

func (l *fakeLedger) InTx(ctx context.Context, fn func(store domain.LedgerStore) error) error {
	return fn(l)
}

func seedCash() decimal.Decimal {
	return decimal.NewFromInt(10000)
}

func TestRegisterSeedsCash(t *testing.T) {
	auth := NewAuthService(newFakeLedger(), seedCash())

	user, err := auth.Register(context.Background(), "tapan", "s3cret-pw")
	require.NoError(t, err)

	assert.Equal(t, "tapan", user.Username)
	assert.True(t, user.Cash.Equal(seedCash()), "cash %s", user.Cash)
	assert.NotEqual(t, "s3cret-pw", user.PasswordHash, "password must be stored hashed")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	auth := NewAuthService(newFakeLedger(), seedCash())
	ctx := context.Background()

	_, err := auth.Register(ctx, "tapan", "s3cret-pw")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "tapan", "other-pw")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestRegisterRejectsEmptyInput(t *testing.T) {
	auth := NewAuthService(newFakeLedger(), seedCash())

	_, err := auth.Register(context.Background(), "", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = auth.Register(context.Background(), "user", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateRecordsLogin(t *testing.T) {
	ledger := newFakeLedger()
	auth := NewAuthService(ledger, seedCash())
	ctx := context.Background()

	registered, err := auth.Register(ctx, "tapan", "s3cret-pw")
	require.NoError(t, err)

	user, err := auth.Authenticate(ctx, "tapan", "s3cret-pw")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	require.Len(t, ledger.history, 1)
	assert.Equal(t, domain.HistoryLogin, ledger.history[0].Type)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	ledger := newFakeLedger()
	auth := NewAuthService(ledger, seedCash())
	ctx := context.Background()

	_, err := auth.Register(ctx, "tapan", "s3cret-pw")
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, "tapan", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Empty(t, ledger.history, "failed login must not be recorded")
}

func TestAuthenticateUnknownUser(t *testing.T) {
	auth := NewAuthService(newFakeLedger(), seedCash())

	_, err := auth.Authenticate(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestRecordLogout(t *testing.T) {
	ledger := newFakeLedger()
	auth := NewAuthService(ledger, seedCash())

	userID := uuid.New()
	require.NoError(t, auth.RecordLogout(context.Background(), userID))

	require.Len(t, ledger.history, 1)
	assert.Equal(t, domain.HistoryLogout, ledger.history[0].Type)
	assert.Equal(t, userID, ledger.history[0].UserID)
}
