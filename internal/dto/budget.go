package dto

import (
	"time"

	"pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
)

type BudgetRequest struct {
	Category string          `json:"category" validate:"required,max=40"`
	Amount   decimal.Decimal `json:"amount"`
	Period   string          `json:"period" validate:"required,oneof=weekly monthly yearly"`
}

type BudgetResponse struct {
	ID        string          `json:"id"`
	Category  string          `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Period    string          `json:"period"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
	CreatedAt string          `json:"created_at"`
}

func NewBudgetResponse(b models.Budget) BudgetResponse {
	return BudgetResponse{
		ID:        b.ID.String(),
		Category:  b.Category,
		Amount:    b.Amount,
		Period:    string(b.Period),
		Spent:     b.Spent,
		Remaining: b.Amount.Sub(b.Spent),
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
}

func NewBudgetResponses(budgets []models.Budget) []BudgetResponse {
	out := make([]BudgetResponse, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, NewBudgetResponse(b))
	}
	return out
}
