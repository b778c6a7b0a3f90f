package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SavingsGoal struct {
	ID           uuid.UUID       `db:"id"`
	UserID       uuid.UUID       `db:"user_id"`
	Name         string          `db:"name"`
	Icon         string          `db:"icon"`
	TargetAmount decimal.Decimal `db:"target_amount"`
	SavedAmount  decimal.Decimal `db:"saved_amount"`
	TargetDate   time.Time       `db:"target_date"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Reached reports whether contributions have covered the target.
func (g *SavingsGoal) Reached() bool {
	return g.SavedAmount.GreaterThanOrEqual(g.TargetAmount)
}
