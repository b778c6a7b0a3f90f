package service

import (
	"context"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"
	"pocket-ledger/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	exportVersion    = 1
	defaultListLimit = 100
)

type LedgerStore interface {
	AddTransaction(ctx context.Context, t models.Transaction) error
	UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	Export(ctx context.Context, userID uuid.UUID) (*models.LedgerSnapshot, error)
	Import(ctx context.Context, userID uuid.UUID, snap models.LedgerSnapshot, mode models.ImportMode) (repository.ImportResult, error)
}

type TransactionReader interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, userID uuid.UUID, filter repository.TransactionFilter) ([]models.Transaction, error)
	Totals(ctx context.Context, userID uuid.UUID, from, to *time.Time) (repository.Totals, error)
}

// LedgerService manages the user's transaction log. Every write goes through
// the ledger store so budget spent figures follow the log.
type LedgerService struct {
	ledger LedgerStore
	txRepo TransactionReader
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerService(ledger LedgerStore, txRepo TransactionReader, logger *zap.Logger) *LedgerService {
	return &LedgerService{
		ledger: ledger,
		txRepo: txRepo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, userID uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error) {
	t, err := transactionFromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = uuid.New()
	t.UserID = userID
	t.CreatedAt = s.now().UTC()

	if err := s.ledger.AddTransaction(ctx, t); err != nil {
		return nil, translate(err)
	}

	resp := dto.NewTransactionResponse(t)
	return &resp, nil
}

func (s *LedgerService) ListTransactions(ctx context.Context, userID uuid.UUID, q *dto.TransactionQuery) ([]dto.TransactionResponse, error) {
	filter := repository.TransactionFilter{
		Type:     models.TransactionType(q.Type),
		Category: q.Category,
		Limit:    defaultListLimit,
		Offset:   uint64(q.Offset),
	}
	if q.Limit > 0 {
		filter.Limit = uint64(q.Limit)
	}

	var err error
	if filter.From, filter.To, err = dateRange(q.From, q.To); err != nil {
		return nil, err
	}

	txs, err := s.txRepo.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return dto.NewTransactionResponses(txs), nil
}

// Balance sums income and expense over the optional date range, both ends
// inclusive.
func (s *LedgerService) Balance(ctx context.Context, userID uuid.UUID, q *dto.BalanceQuery) (*dto.BalanceResponse, error) {
	from, to, err := dateRange(q.From, q.To)
	if err != nil {
		return nil, err
	}

	totals, err := s.txRepo.Totals(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.BalanceResponse{
		Income:  totals.Income,
		Expense: totals.Expense,
		Net:     totals.Income.Sub(totals.Expense),
	}, nil
}

// dateRange parses optional from/to dates. to is moved to the last instant of
// its day so the range includes it.
func dateRange(fromRaw, toRaw string) (*time.Time, *time.Time, error) {
	from, err := parseOptionalDate("from", fromRaw)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalDate("to", toRaw)
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, invalid("to must not be before from")
	}
	return from, to, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*dto.TransactionResponse, error) {
	t, err := s.txRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, translate(err)
	}
	resp := dto.NewTransactionResponse(*t)
	return &resp, nil
}

// UpdateTransaction replaces the editable fields of a transaction. Budgets
// see the old amount released and the new one booked.
func (s *LedgerService) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error) {
	t, err := transactionFromRequest(req)
	if err != nil {
		return nil, err
	}
	t.ID = id
	t.UserID = userID

	old, err := s.ledger.UpdateTransaction(ctx, t)
	if err != nil {
		return nil, translate(err)
	}
	t.RecurringID = old.RecurringID
	t.CreatedAt = old.CreatedAt

	resp := dto.NewTransactionResponse(t)
	return &resp, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.ledger.DeleteTransaction(ctx, userID, id)
	if err != nil {
		return translate(err)
	}
	s.logger.Debug("Transaction deleted",
		zap.String("transaction_id", deleted.ID.String()),
		zap.String("amount", deleted.Amount.String()),
	)
	return nil
}

func (s *LedgerService) Export(ctx context.Context, userID uuid.UUID) (*dto.LedgerExport, error) {
	snap, err := s.ledger.Export(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.LedgerExport{
		Version:        exportVersion,
		ExportedAt:     s.now().UTC().Format(time.RFC3339),
		Transactions:   dto.NewTransactionResponses(snap.Transactions),
		Recurring:      dto.NewRecurringResponses(snap.RecurringTransactions),
		Budgets:        dto.NewBudgetResponses(snap.Budgets),
		Categories:     dto.NewCategoryResponses(snap.Categories),
		PaymentMethods: dto.NewPaymentMethodResponses(snap.PaymentMethods),
	}, nil
}

// Import loads an export into the user's ledger. Records are matched by id:
// merge keeps what is already stored, replace wipes the ledger first.
func (s *LedgerService) Import(ctx context.Context, userID uuid.UUID, req *dto.ImportLedgerRequest) (*dto.ImportLedgerResponse, error) {
	mode := models.ImportMode(req.Mode)
	if mode != models.ImportModeMerge && mode != models.ImportModeReplace {
		return nil, invalid("mode must be merge or replace")
	}

	snap, err := snapshotFromExport(&req.Data, s.now().UTC())
	if err != nil {
		return nil, err
	}

	res, err := s.ledger.Import(ctx, userID, *snap, mode)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ledger imported",
		zap.String("user_id", userID.String()),
		zap.String("mode", string(mode)),
		zap.Int("inserted", res.Inserted),
		zap.Int("skipped", res.Skipped),
	)
	return &dto.ImportLedgerResponse{Inserted: res.Inserted, Skipped: res.Skipped}, nil
}

func transactionFromRequest(req *dto.TransactionRequest) (models.Transaction, error) {
	if err := requirePositive("amount", req.Amount); err != nil {
		return models.Transaction{}, err
	}
	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return models.Transaction{}, invalid("type must be income or expense")
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return models.Transaction{}, err
	}

	return models.Transaction{
		Amount:        req.Amount,
		Type:          txType,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Description:   req.Description,
		Date:          date,
	}, nil
}

func snapshotFromExport(data *dto.LedgerExport, now time.Time) (*models.LedgerSnapshot, error) {
	snap := &models.LedgerSnapshot{}

	for _, c := range data.Categories {
		snap.Categories = append(snap.Categories, models.Category{
			ID:        c.ID,
			Name:      c.Name,
			Type:      models.TransactionType(c.Type),
			Icon:      c.Icon,
			IsDefault: c.IsDefault,
		})
	}
	for _, pm := range data.PaymentMethods {
		snap.PaymentMethods = append(snap.PaymentMethods, models.PaymentMethod{
			ID:        pm.ID,
			Name:      pm.Name,
			Icon:      pm.Icon,
			IsDefault: pm.IsDefault,
		})
	}

	for _, r := range data.Recurring {
		rule, err := ruleFromExport(r, now)
		if err != nil {
			return nil, err
		}
		snap.RecurringTransactions = append(snap.RecurringTransactions, rule)
	}

	for _, b := range data.Budgets {
		id, err := uuid.Parse(b.ID)
		if err != nil {
			return nil, invalid("budget id %q is not a uuid", b.ID)
		}
		if err := requirePositive("budget amount", b.Amount); err != nil {
			return nil, err
		}
		if !validPeriod(b.Period) {
			return nil, invalid("budget period %q is not supported", b.Period)
		}
		snap.Budgets = append(snap.Budgets, models.Budget{
			ID:        id,
			Category:  b.Category,
			Amount:    b.Amount,
			Period:    models.BudgetPeriod(b.Period),
			Spent:     b.Spent,
			CreatedAt: parseTimestamp(b.CreatedAt, now),
		})
	}

	for _, t := range data.Transactions {
		tx, err := transactionFromExport(t, now)
		if err != nil {
			return nil, err
		}
		snap.Transactions = append(snap.Transactions, tx)
	}
	return snap, nil
}

func transactionFromExport(t dto.TransactionResponse, now time.Time) (models.Transaction, error) {
	id, err := uuid.Parse(t.ID)
	if err != nil {
		return models.Transaction{}, invalid("transaction id %q is not a uuid", t.ID)
	}
	tx, err := transactionFromRequest(&dto.TransactionRequest{
		Amount:        t.Amount,
		Type:          t.Type,
		Category:      t.Category,
		PaymentMethod: t.PaymentMethod,
		Description:   t.Description,
		Date:          t.Date,
	})
	if err != nil {
		return models.Transaction{}, err
	}
	tx.ID = id
	tx.CreatedAt = parseTimestamp(t.CreatedAt, now)
	if t.RecurringID != nil {
		rid, err := uuid.Parse(*t.RecurringID)
		if err != nil {
			return models.Transaction{}, invalid("recurring id %q is not a uuid", *t.RecurringID)
		}
		tx.RecurringID = &rid
	}
	return tx, nil
}

func ruleFromExport(r dto.RecurringResponse, now time.Time) (models.RecurringTransaction, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return models.RecurringTransaction{}, invalid("recurring id %q is not a uuid", r.ID)
	}

	endDate := ""
	if r.EndDate != nil {
		endDate = *r.EndDate
	}
	active := r.Active
	rule, err := ruleFromRequest(&dto.RecurringRequest{
		Amount:        r.Amount,
		Type:          r.Type,
		Category:      r.Category,
		PaymentMethod: r.PaymentMethod,
		Description:   r.Description,
		Frequency:     r.Frequency,
		StartDate:     r.StartDate,
		EndDate:       endDate,
		Active:        &active,
	})
	if err != nil {
		return models.RecurringTransaction{}, err
	}

	rule.ID = id
	rule.CreatedAt = parseTimestamp(r.CreatedAt, now)
	rule.UpdatedAt = now
	if r.LastGenerated != nil {
		if rule.LastGenerated, err = parseOptionalDate("last_generated", *r.LastGenerated); err != nil {
			return models.RecurringTransaction{}, err
		}
	}
	return rule, nil
}

func parseTimestamp(value string, fallback time.Time) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fallback
	}
	return t
}
