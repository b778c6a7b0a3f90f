package dto

import (
	"time"

	"pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
)

type RecurringRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type" validate:"required,oneof=income expense"`
	Category      string          `json:"category" validate:"required,max=40"`
	PaymentMethod string          `json:"payment_method" validate:"required,max=40"`
	Description   string          `json:"description" validate:"max=500"`
	Frequency     string          `json:"frequency" validate:"required,oneof=daily weekly monthly yearly"`
	StartDate     string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string          `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Active        *bool           `json:"active"`
}

type RecurringResponse struct {
	ID            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	PaymentMethod string          `json:"payment_method"`
	Description   string          `json:"description"`
	Frequency     string          `json:"frequency"`
	StartDate     string          `json:"start_date"`
	EndDate       *string         `json:"end_date,omitempty"`
	LastGenerated *string         `json:"last_generated,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     string          `json:"created_at"`
}

type CreateRecurringResponse struct {
	Rule      RecurringResponse     `json:"rule"`
	Generated []TransactionResponse `json:"generated"`
}

type RunRecurringResponse struct {
	Generated   int `json:"generated"`
	Deactivated int `json:"deactivated"`
}

func NewRecurringResponse(r models.RecurringTransaction) RecurringResponse {
	return RecurringResponse{
		ID:            r.ID.String(),
		Amount:        r.Amount,
		Type:          string(r.Type),
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
		Frequency:     string(r.Frequency),
		StartDate:     r.StartDate.Format(DateLayout),
		EndDate:       formatDatePtr(r.EndDate),
		LastGenerated: formatDatePtr(r.LastGenerated),
		Active:        r.Active,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

func NewRecurringResponses(rules []models.RecurringTransaction) []RecurringResponse {
	out := make([]RecurringResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, NewRecurringResponse(r))
	}
	return out
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}
