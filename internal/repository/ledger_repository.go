package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pocket-ledger/internal/models"
	"pocket-ledger/internal/recurring"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ImportResult counts what an import wrote and what it found already present.
type ImportResult struct {
	Inserted int
	Skipped  int
}

// LedgerRepository owns every write that touches more than one table: the
// transaction log, budget spent figures and recurring rule checkpoints.
type LedgerRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	now    func() time.Time
}

func NewLedgerRepository(db *pgxpool.Pool, logger *zap.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// AddTransaction appends a transaction and books it against its budgets.
// An id that is already stored yields ErrConflict.
func (r *LedgerRepository) AddTransaction(ctx context.Context, t models.Transaction) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		inserted, err := insertTransactionsIfAbsent(ctx, tx, []models.Transaction{t})
		if err != nil {
			return err
		}
		if len(inserted) == 0 {
			return ErrConflict
		}
		return applyBudgetLinkage(ctx, tx, t, 1)
	})
}

// UpdateTransaction replaces a transaction, reversing its old budget effect
// and applying the new one. It returns the previous version.
func (r *LedgerRepository) UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	var old *models.Transaction
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		old, err = getTransaction(ctx, tx, t.UserID, t.ID, true)
		if err != nil {
			return err
		}
		if err := applyBudgetLinkage(ctx, tx, *old, -1); err != nil {
			return err
		}
		if err := updateTransaction(ctx, tx, &t); err != nil {
			return err
		}
		return applyBudgetLinkage(ctx, tx, t, 1)
	})
	if err != nil {
		return nil, err
	}
	return old, nil
}

// DeleteTransaction removes a transaction and releases its budget share.
func (r *LedgerRepository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var deleted *models.Transaction
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		deleted, err = deleteTransaction(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		return applyBudgetLinkage(ctx, tx, *deleted, -1)
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// ApplyGeneration commits the output of a recurring generation pass in one
// database transaction: the new transactions, their budget linkage and every
// rule checkpoint. Either all of it is stored or none of it.
func (r *LedgerRepository) ApplyGeneration(ctx context.Context, txs []models.Transaction, updates map[uuid.UUID]recurring.RuleUpdate) (int, error) {
	if len(txs) == 0 && len(updates) == 0 {
		return 0, nil
	}

	var inserted []models.Transaction
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		inserted, err = applyGeneration(ctx, tx, txs, updates, r.now())
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("apply generation: %w", err)
	}

	r.logger.Debug("Recurring generation committed",
		zap.Int("transactions", len(inserted)),
		zap.Int("rule_updates", len(updates)),
	)
	return len(inserted), nil
}

// BookScan writes the transactions of a receipt and marks the scan booked in
// the same database transaction. A scan that was booked meanwhile yields
// ErrConflict and nothing is written.
func (r *LedgerRepository) BookScan(ctx context.Context, userID, scanID uuid.UUID, txs []models.Transaction) (int, error) {
	var inserted []models.Transaction
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := markScanBooked(ctx, tx, userID, scanID); err != nil {
			return err
		}
		var err error
		inserted, err = applyGeneration(ctx, tx, txs, nil, r.now())
		return err
	})
	if err != nil {
		return 0, err
	}
	return len(inserted), nil
}

// SettleDebt marks a pending debt paid and books t as its linked
// transaction, with budget linkage, in one database transaction. A debt that
// is already paid yields ErrConflict.
func (r *LedgerRepository) SettleDebt(ctx context.Context, userID, debtID uuid.UUID, t models.Transaction) (*models.Debt, error) {
	var debt *models.Debt
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if debt, err = getDebt(ctx, tx, userID, debtID, true); err != nil {
			return err
		}
		if debt.Status != models.DebtStatusPending {
			return ErrConflict
		}

		inserted, err := insertTransactionsIfAbsent(ctx, tx, []models.Transaction{t})
		if err != nil {
			return err
		}
		if len(inserted) == 0 {
			return ErrConflict
		}
		if err := applyBudgetLinkage(ctx, tx, t, 1); err != nil {
			return err
		}

		debt.Status = models.DebtStatusPaid
		debt.LinkedTransactionID = &t.ID
		debt.UpdatedAt = r.now().UTC()
		return setDebtStatus(ctx, tx, debt)
	})
	if err != nil {
		return nil, err
	}
	return debt, nil
}

// ReopenDebt moves a paid debt back to pending and removes its linked
// transaction, releasing its budget share. A linked transaction the user has
// already deleted is skipped. A debt that is not paid yields ErrConflict.
func (r *LedgerRepository) ReopenDebt(ctx context.Context, userID, debtID uuid.UUID) (*models.Debt, error) {
	var debt *models.Debt
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if debt, err = getDebt(ctx, tx, userID, debtID, true); err != nil {
			return err
		}
		if debt.Status != models.DebtStatusPaid {
			return ErrConflict
		}

		if debt.LinkedTransactionID != nil {
			deleted, err := deleteTransaction(ctx, tx, userID, *debt.LinkedTransactionID)
			switch {
			case err == nil:
				if err := applyBudgetLinkage(ctx, tx, *deleted, -1); err != nil {
					return err
				}
			case !errors.Is(err, ErrNotFound):
				return err
			}
		}

		debt.Status = models.DebtStatusPending
		debt.LinkedTransactionID = nil
		debt.UpdatedAt = r.now().UTC()
		return setDebtStatus(ctx, tx, debt)
	})
	if err != nil {
		return nil, err
	}
	return debt, nil
}

// CreateRecurring stores a new rule together with the backlog generated for
// it at creation time.
func (r *LedgerRepository) CreateRecurring(ctx context.Context, rule models.RecurringTransaction, txs []models.Transaction) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertRecurring(ctx, tx, &rule, false); err != nil {
			return err
		}
		_, err := applyGeneration(ctx, tx, txs, nil, r.now())
		return err
	})
}

func applyGeneration(ctx context.Context, q DBTX, txs []models.Transaction, updates map[uuid.UUID]recurring.RuleUpdate, now time.Time) ([]models.Transaction, error) {
	inserted, err := insertTransactionsIfAbsent(ctx, q, txs)
	if err != nil {
		return nil, err
	}
	for _, t := range inserted {
		if err := applyBudgetLinkage(ctx, q, t, 1); err != nil {
			return nil, err
		}
	}
	for id, u := range updates {
		if err := updateRuleState(ctx, q, id, u, now); err != nil {
			return nil, err
		}
	}
	return inserted, nil
}

// Export returns a snapshot of everything the user owns.
func (r *LedgerRepository) Export(ctx context.Context, userID uuid.UUID) (*models.LedgerSnapshot, error) {
	var snap models.LedgerSnapshot
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if snap.Transactions, err = listTransactions(ctx, tx, psql.Select(transactionColumns...).
			From("transactions").
			Where(squirrel.Eq{"user_id": userID}).
			OrderBy("date DESC")); err != nil {
			return err
		}
		if snap.RecurringTransactions, err = listRecurring(ctx, tx, squirrel.Eq{"user_id": userID}); err != nil {
			return err
		}
		if snap.Budgets, err = listBudgets(ctx, tx, userID); err != nil {
			return err
		}
		if snap.Categories, err = listCategories(ctx, tx, userID); err != nil {
			return err
		}
		snap.PaymentMethods, err = listPaymentMethods(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Import loads a snapshot into the user's ledger. Rows are inserted by id
// only when absent; in replace mode the user's ledger is wiped first. Budget
// spent figures are taken from the snapshot as they are.
func (r *LedgerRepository) Import(ctx context.Context, userID uuid.UUID, snap models.LedgerSnapshot, mode models.ImportMode) (ImportResult, error) {
	var res ImportResult
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		if mode == models.ImportModeReplace {
			if err := wipeLedger(ctx, tx, userID); err != nil {
				return err
			}
		}

		for _, c := range snap.Categories {
			c.UserID = userID
			if err := insertCategory(ctx, tx, &c, true); err != nil {
				return err
			}
		}
		for _, pm := range snap.PaymentMethods {
			pm.UserID = userID
			if err := insertPaymentMethod(ctx, tx, &pm, true); err != nil {
				return err
			}
		}
		for _, rule := range snap.RecurringTransactions {
			rule.UserID = userID
			if err := insertRecurring(ctx, tx, &rule, true); err != nil {
				return err
			}
		}
		for _, b := range snap.Budgets {
			b.UserID = userID
			if err := insertBudget(ctx, tx, &b, true); err != nil {
				return err
			}
		}

		txs := make([]models.Transaction, len(snap.Transactions))
		for i, t := range snap.Transactions {
			t.UserID = userID
			txs[i] = t
		}
		inserted, err := insertTransactionsIfAbsent(ctx, tx, txs)
		if err != nil {
			return err
		}
		res.Inserted = len(inserted)
		res.Skipped = len(txs) - len(inserted)
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return res, nil
}

func wipeLedger(ctx context.Context, q DBTX, userID uuid.UUID) error {
	steps := []squirrel.Sqlizer{
		psql.Delete("transactions").Where(squirrel.Eq{"user_id": userID}),
		psql.Delete("recurring_transactions").Where(squirrel.Eq{"user_id": userID}),
		psql.Delete("budgets").Where(squirrel.Eq{"user_id": userID}),
		psql.Delete("categories").Where(squirrel.Eq{"user_id": userID, "is_default": false}),
		psql.Delete("payment_methods").Where(squirrel.Eq{"user_id": userID, "is_default": false}),
	}
	for _, step := range steps {
		if _, err := exec(ctx, q, step); err != nil {
			return err
		}
	}
	return nil
}
