package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"papertrade/internal/domain"
)

// AuthService handles registration and credential checks. The trade engine
// never sees password material; it only ever receives authenticated ids.
type AuthService struct {
	ledger   domain.Ledger
	seedCash decimal.Decimal
}

// NewAuthService creates a new AuthService
func NewAuthService(ledger domain.Ledger, seedCash decimal.Decimal) *AuthService {
	return &AuthService{
		ledger:   ledger,
		seedCash: seedCash,
	}
}

// Register creates a new account seeded with the configured starting cash
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if _, err := s.ledger.GetUserByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashedPassword),
		Cash:         s.seedCash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.ledger.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Authenticate verifies a username/password pair and logs the LOGIN
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.ledger.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.ledger.AppendHistory(ctx, domain.NewSessionHistory(user.ID, domain.HistoryLogin)); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// RecordLogout logs the LOGOUT for an authenticated user
func (s *AuthService) RecordLogout(ctx context.Context, userID uuid.UUID) error {
	return s.ledger.AppendHistory(ctx, domain.NewSessionHistory(userID, domain.HistoryLogout))
}
