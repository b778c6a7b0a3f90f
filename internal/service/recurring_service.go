package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"
	"pocket-ledger/internal/recurring"
	"pocket-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RecurringStore interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransaction, error)
	ListActive(ctx context.Context) ([]models.RecurringTransaction, error)
	Update(ctx context.Context, rule *models.RecurringTransaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// GenerationStore commits generated transactions and rule checkpoints
// atomically.
type GenerationStore interface {
	ApplyGeneration(ctx context.Context, txs []models.Transaction, updates map[uuid.UUID]recurring.RuleUpdate) (int, error)
	CreateRecurring(ctx context.Context, rule models.RecurringTransaction, txs []models.Transaction) error
}

type RecurringService struct {
	ruleRepo  RecurringStore
	ledger    GenerationStore
	generator *recurring.Generator
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecurringService(ruleRepo RecurringStore, ledger GenerationStore, logger *zap.Logger) *RecurringService {
	return &RecurringService{
		ruleRepo:  ruleRepo,
		ledger:    ledger,
		generator: recurring.NewGenerator(),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRule saves a rule and immediately books every occurrence from its
// start date up to today.
func (s *RecurringService) CreateRule(ctx context.Context, userID uuid.UUID, req *dto.RecurringRequest) (*dto.CreateRecurringResponse, error) {
	rule, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rule.ID = uuid.New()
	rule.UserID = userID
	rule.CreatedAt = now
	rule.UpdatedAt = now

	txs, rule, err := s.generator.MaterializeOnCreate(rule, now)
	if err != nil {
		return nil, invalid("%v", err)
	}

	if err := s.ledger.CreateRecurring(ctx, rule, txs); err != nil {
		return nil, translate(err)
	}

	s.logger.Info("Recurring rule created",
		zap.String("rule_id", rule.ID.String()),
		zap.String("frequency", string(rule.Frequency)),
		zap.Int("backfilled", len(txs)),
	)
	return &dto.CreateRecurringResponse{
		Rule:      dto.NewRecurringResponse(rule),
		Generated: dto.NewTransactionResponses(txs),
	}, nil
}

func (s *RecurringService) ListRules(ctx context.Context, userID uuid.UUID) ([]dto.RecurringResponse, error) {
	rules, err := s.ruleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewRecurringResponses(rules), nil
}

// UpdateRule edits a rule in place. The start date anchors the schedule and
// the checkpoint belongs to the generator, so neither can be changed here.
func (s *RecurringService) UpdateRule(ctx context.Context, userID, id uuid.UUID, req *dto.RecurringRequest) (*dto.RecurringResponse, error) {
	edited, err := ruleFromRequest(req)
	if err != nil {
		return nil, err
	}

	rule, err := s.ruleRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	if req.StartDate != rule.StartDate.UTC().Format(dto.DateLayout) {
		return nil, invalid("start_date cannot be changed")
	}

	rule.Amount = edited.Amount
	rule.Type = edited.Type
	rule.Category = edited.Category
	rule.PaymentMethod = edited.PaymentMethod
	rule.Description = edited.Description
	rule.Frequency = edited.Frequency
	rule.EndDate = edited.EndDate
	if req.Active != nil {
		rule.Active = *req.Active
	}
	rule.UpdatedAt = s.now().UTC()

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, translate(err)
	}

	resp := dto.NewRecurringResponse(*rule)
	return &resp, nil
}

// DeleteRule removes a rule. Transactions it already generated are kept.
func (s *RecurringService) DeleteRule(ctx context.Context, userID, id uuid.UUID) error {
	return translate(s.ruleRepo.Delete(ctx, userID, id))
}

// Run catches the user's rules up to today: due occurrences are booked,
// expired rules are switched off.
func (s *RecurringService) Run(ctx context.Context, userID uuid.UUID) (*dto.RunRecurringResponse, error) {
	rules, err := s.ruleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.runUser(ctx, userID, rules)
}

// RunAll is the hydration pass executed at startup for every user. One
// user's failure does not stop the others.
func (s *RecurringService) RunAll(ctx context.Context) (*dto.RunRecurringResponse, error) {
	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	byUser := make(map[uuid.UUID][]models.RecurringTransaction)
	var order []uuid.UUID
	for _, rule := range rules {
		if _, ok := byUser[rule.UserID]; !ok {
			order = append(order, rule.UserID)
		}
		byUser[rule.UserID] = append(byUser[rule.UserID], rule)
	}

	total := &dto.RunRecurringResponse{}
	var errs []error
	for _, userID := range order {
		res, err := s.runUser(ctx, userID, byUser[userID])
		if err != nil {
			s.logger.Error("Recurring run failed", zap.String("user_id", userID.String()), zap.Error(err))
			errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			continue
		}
		total.Generated += res.Generated
		total.Deactivated += res.Deactivated
	}

	s.logger.Info("Recurring hydration pass completed",
		zap.Int("users", len(order)),
		zap.Int("generated", total.Generated),
		zap.Int("deactivated", total.Deactivated),
	)
	return total, errors.Join(errs...)
}

// runUser generates from the given snapshot. When another run or an edit
// moved a checkpoint first, the commit is rejected and the pass is repeated
// once on freshly loaded rules.
func (s *RecurringService) runUser(ctx context.Context, userID uuid.UUID, rules []models.RecurringTransaction) (*dto.RunRecurringResponse, error) {
	res, err := s.run(ctx, rules)
	if !errors.Is(err, repository.ErrConflict) {
		return res, err
	}

	s.logger.Debug("Recurring snapshot was stale, reloading", zap.String("user_id", userID.String()))
	rules, err = s.ruleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, rules)
}

func (s *RecurringService) run(ctx context.Context, rules []models.RecurringTransaction) (*dto.RunRecurringResponse, error) {
	res, err := s.generator.GenerateDueOccurrences(rules, s.now().UTC())
	if err != nil {
		return nil, err
	}

	inserted, err := s.ledger.ApplyGeneration(ctx, res.NewTransactions, res.RuleUpdates)
	if err != nil {
		return nil, err
	}

	deactivated := 0
	for _, rule := range rules {
		if u, ok := res.RuleUpdates[rule.ID]; ok && rule.Active && !u.Active {
			deactivated++
		}
	}
	return &dto.RunRecurringResponse{Generated: inserted, Deactivated: deactivated}, nil
}

func ruleFromRequest(req *dto.RecurringRequest) (models.RecurringTransaction, error) {
	if err := requirePositive("amount", req.Amount); err != nil {
		return models.RecurringTransaction{}, err
	}
	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return models.RecurringTransaction{}, invalid("type must be income or expense")
	}
	freq := models.Frequency(req.Frequency)
	if !freq.Valid() {
		return models.RecurringTransaction{}, invalid("frequency must be daily, weekly, monthly or yearly")
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	end, err := parseOptionalDate("end_date", req.EndDate)
	if err != nil {
		return models.RecurringTransaction{}, err
	}
	if end != nil && end.Before(start) {
		return models.RecurringTransaction{}, invalid("end_date must not be before start_date")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	return models.RecurringTransaction{
		Amount:        req.Amount,
		Type:          txType,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		Frequency:     freq,
		StartDate:     start,
		EndDate:       end,
		Active:        active,
	}, nil
}
