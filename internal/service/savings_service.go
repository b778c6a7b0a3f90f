package service

import (
	"context"
	"strings"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type SavingsGoalStore interface {
	Create(ctx context.Context, g *models.SavingsGoal) error
	List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error)
	Contribute(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*models.SavingsGoal, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// SavingsService tracks money set aside toward named targets. Contributions
// are bookkeeping on the goal and do not enter the transaction log.
type SavingsService struct {
	goalRepo SavingsGoalStore
	logger   *zap.Logger
	now      func() time.Time
}

func NewSavingsService(goalRepo SavingsGoalStore, logger *zap.Logger) *SavingsService {
	return &SavingsService{
		goalRepo: goalRepo,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *SavingsService) CreateGoal(ctx context.Context, userID uuid.UUID, req *dto.SavingsGoalRequest) (*dto.SavingsGoalResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("name is required")
	}
	if err := requirePositive("target_amount", req.TargetAmount); err != nil {
		return nil, err
	}
	target, err := parseDate("target_date", req.TargetDate)
	if err != nil {
		return nil, err
	}

	g := &models.SavingsGoal{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Icon:         req.Icon,
		TargetAmount: req.TargetAmount,
		SavedAmount:  decimal.Zero,
		TargetDate:   target,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.goalRepo.Create(ctx, g); err != nil {
		return nil, translate(err)
	}

	resp := dto.NewSavingsGoalResponse(*g)
	return &resp, nil
}

func (s *SavingsService) ListGoals(ctx context.Context, userID uuid.UUID) ([]dto.SavingsGoalResponse, error) {
	goals, err := s.goalRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSavingsGoalResponses(goals), nil
}

// Contribute adds to a goal's saved amount. Saving past the target is allowed.
func (s *SavingsService) Contribute(ctx context.Context, userID, id uuid.UUID, req *dto.ContributionRequest) (*dto.SavingsGoalResponse, error) {
	if err := requirePositive("amount", req.Amount); err != nil {
		return nil, err
	}

	g, err := s.goalRepo.Contribute(ctx, userID, id, req.Amount)
	if err != nil {
		return nil, translate(err)
	}
	if g.Reached() {
		s.logger.Debug("Savings goal reached", zap.String("goal_id", g.ID.String()))
	}

	resp := dto.NewSavingsGoalResponse(*g)
	return &resp, nil
}

func (s *SavingsService) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	return translate(s.goalRepo.Delete(ctx, userID, id))
}
