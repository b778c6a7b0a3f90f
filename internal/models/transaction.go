package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type Transaction struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	Amount        decimal.Decimal `db:"amount"`
	Type          TransactionType `db:"type"`
	Category      string          `db:"category"`
	PaymentMethod string          `db:"payment_method"`
	Description   string          `db:"description"`
	Date          time.Time       `db:"date"`
	RecurringID   *uuid.UUID      `db:"recurring_id"` // rule that generated it, if any
	CreatedAt     time.Time       `db:"created_at"`
}

// IsExpense reports whether the transaction counts against budgets.
func (t *Transaction) IsExpense() bool {
	return t.Type == TransactionTypeExpense
}
