package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents a registered account and its cash balance
type User struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	PasswordHash string          `json:"-"` // Never expose password hash in JSON
	Cash         decimal.Decimal `json:"cash"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
