package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

type Budget struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Category  string          `db:"category"`
	Amount    decimal.Decimal `db:"amount"`
	Period    BudgetPeriod    `db:"period"`
	Spent     decimal.Decimal `db:"spent"`
	CreatedAt time.Time       `db:"created_at"`
}
