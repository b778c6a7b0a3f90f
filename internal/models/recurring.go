package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringTransaction is a template the recurring engine materializes into
// transactions. LastGenerated is the checkpoint: the date of the most recent
// occurrence already written to the ledger.
type RecurringTransaction struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	Type          TransactionType `db:"type"`
	Category      string          `db:"category"`
	PaymentMethod string          `db:"payment_method"`
	Description   string          `db:"description"`
	Frequency     Frequency       `db:"frequency"`
	StartDate     time.Time       `db:"start_date"`
	EndDate       *time.Time      `db:"end_date"`
	LastGenerated *time.Time      `db:"last_generated"`
	Active        bool            `db:"active"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
