package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DebtType string

const (
	DebtTypeOwedToMe DebtType = "owed-to-me"
	DebtTypeIOwe     DebtType = "i-owe"
)

func (t DebtType) Valid() bool {
	return t == DebtTypeOwedToMe || t == DebtTypeIOwe
}

// TransactionType is the ledger side a settled debt lands on: money owed to
// the user comes in as income, money the user owed goes out as an expense.
func (t DebtType) TransactionType() TransactionType {
	if t == DebtTypeOwedToMe {
		return TransactionTypeIncome
	}
	return TransactionTypeExpense
}

type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPaid    DebtStatus = "paid"
)

type Debt struct {
	ID                  uuid.UUID       `db:"id"`
	UserID              uuid.UUID       `db:"user_id"`
	Person              string          `db:"person"`
	Amount              decimal.Decimal `db:"amount"`
	Type                DebtType        `db:"type"`
	Status              DebtStatus      `db:"status"`
	Description         string          `db:"description"`
	DueDate             *time.Time      `db:"due_date"`
	LinkedTransactionID *uuid.UUID      `db:"linked_transaction_id"` // set while paid
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

// Overdue reports whether a pending debt is past its due date.
func (d *Debt) Overdue(now time.Time) bool {
	return d.Status == DebtStatusPending && d.DueDate != nil && d.DueDate.Before(now)
}
