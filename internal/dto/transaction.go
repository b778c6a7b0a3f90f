package dto

import (
	"time"

	"pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

type TransactionRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type" validate:"required,oneof=income expense"`
	Category      string          `json:"category" validate:"required,max=40"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=40"`
	Description   string          `json:"description" validate:"max=500"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
}

type TransactionQuery struct {
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To       string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	Type     string `query:"type" validate:"omitempty,oneof=income expense"`
	Category string `query:"category"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=500"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
	Date          string          `json:"date"`
	RecurringID   *string         `json:"recurring_id,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

func NewTransactionResponse(t models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID.String(),
		Amount:        t.Amount,
		Type:          string(t.Type),
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Description:   t.Description,
		Date:          t.Date.Format(DateLayout),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
	if t.RecurringID != nil {
		id := t.RecurringID.String()
		resp.RecurringID = &id
	}
	return resp
}

func NewTransactionResponses(txs []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}
