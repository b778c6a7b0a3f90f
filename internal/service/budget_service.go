package service

import (
	"context"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type BudgetStore interface {
	Create(ctx context.Context, b *models.Budget) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Budget, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.Budget, error)
	Update(ctx context.Context, b *models.Budget) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type BudgetService struct {
	budgetRepo BudgetStore
	logger     *zap.Logger
	now        func() time.Time
}

func NewBudgetService(budgetRepo BudgetStore, logger *zap.Logger) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateBudget starts a budget with nothing spent. Spending is booked by the
// ledger as expenses in the category are added.
func (s *BudgetService) CreateBudget(ctx context.Context, userID uuid.UUID, req *dto.BudgetRequest) (*dto.BudgetResponse, error) {
	if err := validateBudget(req); err != nil {
		return nil, err
	}

	b := &models.Budget{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  req.Category,
		Amount:    req.Amount,
		Period:    models.BudgetPeriod(req.Period),
		Spent:     decimal.Zero,
		CreatedAt: s.now().UTC(),
	}
	if err := s.budgetRepo.Create(ctx, b); err != nil {
		return nil, translate(err)
	}

	resp := dto.NewBudgetResponse(*b)
	return &resp, nil
}

func (s *BudgetService) ListBudgets(ctx context.Context, userID uuid.UUID) ([]dto.BudgetResponse, error) {
	budgets, err := s.budgetRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewBudgetResponses(budgets), nil
}

func (s *BudgetService) UpdateBudget(ctx context.Context, userID, id uuid.UUID, req *dto.BudgetRequest) (*dto.BudgetResponse, error) {
	if err := validateBudget(req); err != nil {
		return nil, err
	}

	b, err := s.budgetRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	b.Category = req.Category
	b.Amount = req.Amount
	b.Period = models.BudgetPeriod(req.Period)

	if err := s.budgetRepo.Update(ctx, b); err != nil {
		return nil, translate(err)
	}

	resp := dto.NewBudgetResponse(*b)
	return &resp, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	return translate(s.budgetRepo.Delete(ctx, userID, id))
}

func validateBudget(req *dto.BudgetRequest) error {
	if err := requirePositive("amount", req.Amount); err != nil {
		return err
	}
	if !validPeriod(req.Period) {
		return invalid("period must be weekly, monthly or yearly")
	}
	return nil
}

func validPeriod(period string) bool {
	switch models.BudgetPeriod(period) {
	case models.BudgetPeriodWeekly, models.BudgetPeriodMonthly, models.BudgetPeriodYearly:
		return true
	}
	return false
}
