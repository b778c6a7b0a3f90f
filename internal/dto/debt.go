package dto

import (
	"time"

	"pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
)

type DebtRequest struct {
	Person      string          `json:"person" validate:"required,max=80"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required,oneof=owed-to-me i-owe"`
	Description string          `json:"description" validate:"max=500"`
	DueDate     string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type DebtQuery struct {
	Type   string `query:"type" validate:"omitempty,oneof=owed-to-me i-owe"`
	Status string `query:"status" validate:"omitempty,oneof=pending paid"`
}

// SettleDebtRequest picks how the settling transaction is booked. Empty
// fields fall back to defaults.
type SettleDebtRequest struct {
	Category      string `json:"category" validate:"max=40"`
	PaymentMethod string `json:"payment_method" validate:"max=40"`
	Date          string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type DebtResponse struct {
	ID                  string          `json:"id"`
	Person              string          `json:"person"`
	Amount              decimal.Decimal `json:"amount"`
	Type                string          `json:"type"`
	Status              string          `json:"status"`
	Description         string          `json:"description"`
	DueDate             *string         `json:"due_date,omitempty"`
	Overdue             bool            `json:"overdue"`
	LinkedTransactionID *string         `json:"linked_transaction_id,omitempty"`
	CreatedAt           string          `json:"created_at"`
}

// SettleDebtResponse is the paid debt and the transaction that settled it.
type SettleDebtResponse struct {
	Debt        DebtResponse        `json:"debt"`
	Transaction TransactionResponse `json:"transaction"`
}

func NewDebtResponse(d models.Debt, now time.Time) DebtResponse {
	resp := DebtResponse{
		ID:          d.ID.String(),
		Person:      d.Person,
		Amount:      d.Amount,
		Type:        string(d.Type),
		Status:      string(d.Status),
		Description: d.Description,
		Overdue:     d.Overdue(now),
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
	if d.DueDate != nil {
		due := d.DueDate.Format(DateLayout)
		resp.DueDate = &due
	}
	if d.LinkedTransactionID != nil {
		id := d.LinkedTransactionID.String()
		resp.LinkedTransactionID = &id
	}
	return resp
}

func NewDebtResponses(debts []models.Debt, now time.Time) []DebtResponse {
	out := make([]DebtResponse, 0, len(debts))
	for _, d := range debts {
		out = append(out, NewDebtResponse(d, now))
	}
	return out
}
