package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"
	"pocket-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDebtSettled    = errors.New("debt is already settled")
	ErrDebtNotSettled = errors.New("debt is not settled")
)

const defaultDebtPaymentMethod = "cash"

type DebtStore interface {
	Create(ctx context.Context, d *models.Debt) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Debt, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.DebtFilter) ([]models.Debt, error)
	Update(ctx context.Context, d *models.Debt) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// DebtSettler moves a debt between pending and paid together with the
// ledger transaction that records the payment.
type DebtSettler interface {
	SettleDebt(ctx context.Context, userID, debtID uuid.UUID, t models.Transaction) (*models.Debt, error)
	ReopenDebt(ctx context.Context, userID, debtID uuid.UUID) (*models.Debt, error)
}

// DebtService tracks money lent and borrowed. Settling a debt books the
// payment into the ledger; reopening it takes that transaction back out.
type DebtService struct {
	debtRepo DebtStore
	ledger   DebtSettler
	logger   *zap.Logger
	now      func() time.Time
}

func NewDebtService(debtRepo DebtStore, ledger DebtSettler, logger *zap.Logger) *DebtService {
	return &DebtService{
		debtRepo: debtRepo,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DebtService) CreateDebt(ctx context.Context, userID uuid.UUID, req *dto.DebtRequest) (*dto.DebtResponse, error) {
	d, err := debtFromRequest(req)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	d.ID = uuid.New()
	d.UserID = userID
	d.Status = models.DebtStatusPending
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := s.debtRepo.Create(ctx, &d); err != nil {
		return nil, translate(err)
	}

	resp := dto.NewDebtResponse(d, now)
	return &resp, nil
}

func (s *DebtService) ListDebts(ctx context.Context, userID uuid.UUID, q *dto.DebtQuery) ([]dto.DebtResponse, error) {
	debts, err := s.debtRepo.List(ctx, userID, repository.DebtFilter{
		Type:   models.DebtType(q.Type),
		Status: models.DebtStatus(q.Status),
	})
	if err != nil {
		return nil, err
	}
	return dto.NewDebtResponses(debts, s.now().UTC()), nil
}

// UpdateDebt edits a pending debt. Paid debts have to be reopened first.
func (s *DebtService) UpdateDebt(ctx context.Context, userID, id uuid.UUID, req *dto.DebtRequest) (*dto.DebtResponse, error) {
	edited, err := debtFromRequest(req)
	if err != nil {
		return nil, err
	}

	d, err := s.debtRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	now := s.now().UTC()
	d.Person = edited.Person
	d.Amount = edited.Amount
	d.Type = edited.Type
	d.Description = edited.Description
	d.DueDate = edited.DueDate
	d.UpdatedAt = now

	if err := s.debtRepo.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDebtSettled
		}
		return nil, translate(err)
	}

	resp := dto.NewDebtResponse(*d, now)
	return &resp, nil
}

func (s *DebtService) DeleteDebt(ctx context.Context, userID, id uuid.UUID) error {
	return translate(s.debtRepo.Delete(ctx, userID, id))
}

// SettleDebt marks a debt paid and books the payment: money owed to the user
// arrives as income, money the user owed leaves as an expense.
func (s *DebtService) SettleDebt(ctx context.Context, userID, id uuid.UUID, req *dto.SettleDebtRequest) (*dto.SettleDebtResponse, error) {
	d, err := s.debtRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	if d.Status == models.DebtStatusPaid {
		return nil, ErrDebtSettled
	}

	now := s.now().UTC()
	t := models.Transaction{
		ID:            uuid.New(),
		UserID:        userID,
		Amount:        d.Amount,
		Type:          d.Type.TransactionType(),
		Category:      firstNonEmpty(req.Category, models.CategoryUncategorized),
		PaymentMethod: firstNonEmpty(req.PaymentMethod, defaultDebtPaymentMethod),
		Description:   settlementDescription(d),
		Date:          startOfDay(now),
		CreatedAt:     now,
	}
	if req.Date != "" {
		if t.Date, err = parseDate("date", req.Date); err != nil {
			return nil, err
		}
	}

	settled, err := s.ledger.SettleDebt(ctx, userID, id, t)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDebtSettled
		}
		return nil, translate(err)
	}

	s.logger.Info("Debt settled",
		zap.String("debt_id", settled.ID.String()),
		zap.String("transaction_id", t.ID.String()),
		zap.String("type", string(t.Type)),
	)
	return &dto.SettleDebtResponse{
		Debt:        dto.NewDebtResponse(*settled, now),
		Transaction: dto.NewTransactionResponse(t),
	}, nil
}

// ReopenDebt moves a paid debt back to pending and deletes the transaction
// that settled it.
func (s *DebtService) ReopenDebt(ctx context.Context, userID, id uuid.UUID) (*dto.DebtResponse, error) {
	d, err := s.ledger.ReopenDebt(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrDebtNotSettled
		}
		return nil, translate(err)
	}

	resp := dto.NewDebtResponse(*d, s.now().UTC())
	return &resp, nil
}

func settlementDescription(d *models.Debt) string {
	verb := "paid to"
	if d.Type == models.DebtTypeOwedToMe {
		verb = "received from"
	}
	desc := fmt.Sprintf("Debt %s %s", verb, d.Person)
	if d.Description != "" {
		desc += ": " + d.Description
	}
	return desc
}

func debtFromRequest(req *dto.DebtRequest) (models.Debt, error) {
	person := strings.TrimSpace(req.Person)
	if person == "" {
		return models.Debt{}, invalid("person is required")
	}
	if err := requirePositive("amount", req.Amount); err != nil {
		return models.Debt{}, err
	}
	debtType := models.DebtType(req.Type)
	if !debtType.Valid() {
		return models.Debt{}, invalid("type must be owed-to-me or i-owe")
	}
	due, err := parseOptionalDate("due_date", req.DueDate)
	if err != nil {
		return models.Debt{}, err
	}

	return models.Debt{
		Person:      person,
		Amount:      req.Amount,
		Type:        debtType,
		Description: strings.TrimSpace(req.Description),
		DueDate:     due,
	}, nil
}
