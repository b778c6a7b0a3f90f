package dto

import (
	"time"

	"pocket-ledger/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type SavingsGoalRequest struct {
	Name         string          `json:"name" validate:"required,max=80"`
	Icon         string          `json:"icon" validate:"max=16"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	TargetDate   string          `json:"target_date" validate:"required,datetime=2006-01-02"`
}

type ContributionRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type SavingsGoalResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Icon         string          `json:"icon"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	Remaining    decimal.Decimal `json:"remaining"`
	Progress     decimal.Decimal `json:"progress"` // percent of target, capped at 100
	Reached      bool            `json:"reached"`
	TargetDate   string          `json:"target_date"`
	CreatedAt    string          `json:"created_at"`
}

func NewSavingsGoalResponse(g models.SavingsGoal) SavingsGoalResponse {
	progress := decimal.Zero
	if g.TargetAmount.IsPositive() {
		progress = decimal.Min(g.SavedAmount.Mul(hundred).Div(g.TargetAmount), hundred).Round(2)
	}
	return SavingsGoalResponse{
		ID:           g.ID.String(),
		Name:         g.Name,
		Icon:         g.Icon,
		TargetAmount: g.TargetAmount,
		SavedAmount:  g.SavedAmount,
		Remaining:    decimal.Max(g.TargetAmount.Sub(g.SavedAmount), decimal.Zero),
		Progress:     progress,
		Reached:      g.Reached(),
		TargetDate:   g.TargetDate.Format(DateLayout),
		CreatedAt:    g.CreatedAt.Format(time.RFC3339),
	}
}

func NewSavingsGoalResponses(goals []models.SavingsGoal) []SavingsGoalResponse {
	out := make([]SavingsGoalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, NewSavingsGoalResponse(g))
	}
	return out
}
