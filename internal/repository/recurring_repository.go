package repository

import (
	"context"
	"time"

	"pocket-ledger/internal/models"
	"pocket-ledger/internal/recurring"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var recurringColumns = []string{
	"id", "user_id", "amount", "type", "category", "payment_method", "description",
	"frequency", "start_date", "end_date", "last_generated", "active", "created_at", "updated_at",
}

type RecurringRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRecurringRepository(db *pgxpool.Pool, logger *zap.Logger) *RecurringRepository {
	return &RecurringRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RecurringRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error) {
	rules, err := listRecurring(ctx, r.db, squirrel.Eq{"id": id, "user_id": userID})
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, ErrNotFound
	}
	return &rules[0], nil
}

func (r *RecurringRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransaction, error) {
	return listRecurring(ctx, r.db, squirrel.Eq{"user_id": userID})
}

// ListActive returns the active rules of every user, for the startup pass.
func (r *RecurringRepository) ListActive(ctx context.Context) ([]models.RecurringTransaction, error) {
	return listRecurring(ctx, r.db, squirrel.Eq{"active": true})
}

// Update stores a user edit. The generation checkpoint is not editable.
func (r *RecurringRepository) Update(ctx context.Context, rule *models.RecurringTransaction) error {
	tag, err := exec(ctx, r.db, psql.Update("recurring_transactions").
		Set("amount", rule.Amount).
		Set("type", rule.Type).
		Set("category", rule.Category).
		Set("payment_method", rule.PaymentMethod).
		Set("description", rule.Description).
		Set("frequency", rule.Frequency).
		Set("end_date", rule.EndDate).
		Set("active", rule.Active).
		Set("updated_at", rule.UpdatedAt).
		Where(squirrel.Eq{"id": rule.ID, "user_id": rule.UserID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a rule; transactions it generated stay in the ledger.
func (r *RecurringRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := exec(ctx, r.db, psql.Delete("recurring_transactions").Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func listRecurring(ctx context.Context, q DBTX, where squirrel.Sqlizer) ([]models.RecurringTransaction, error) {
	rows, err := query(ctx, q, psql.Select(recurringColumns...).
		From("recurring_transactions").
		Where(where).
		OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := []models.RecurringTransaction{}
	for rows.Next() {
		var rule models.RecurringTransaction
		if err := scanRecurring(rows, &rule); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func insertRecurring(ctx context.Context, q DBTX, rule *models.RecurringTransaction, ifAbsent bool) error {
	ins := psql.Insert("recurring_transactions").
		Columns(recurringColumns...).
		Values(rule.ID, rule.UserID, rule.Amount, rule.Type, rule.Category, rule.PaymentMethod, rule.Description,
			rule.Frequency, rule.StartDate, rule.EndDate, rule.LastGenerated, rule.Active, rule.CreatedAt, rule.UpdatedAt)
	if ifAbsent {
		ins = ins.Suffix("ON CONFLICT (id) DO NOTHING")
	}
	_, err := exec(ctx, q, ins)
	return mapError(err)
}

// updateRuleState persists the outcome of a generation run. It only applies
// while the rule is still active and holds the checkpoint the run started
// from; otherwise the run worked on a stale snapshot and ErrConflict makes
// the caller roll back.
func updateRuleState(ctx context.Context, q DBTX, id uuid.UUID, u recurring.RuleUpdate, now time.Time) error {
	tag, err := exec(ctx, q, psql.Update("recurring_transactions").
		Set("last_generated", u.LastGenerated).
		Set("active", u.Active).
		Set("updated_at", now).
		Where(squirrel.Eq{"id": id, "active": true}).
		Where("last_generated IS NOT DISTINCT FROM ?::timestamptz", u.Previous))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func scanRecurring(row rowScanner, rule *models.RecurringTransaction) error {
	return row.Scan(
		&rule.ID, &rule.UserID, &rule.Amount, &rule.Type, &rule.Category, &rule.PaymentMethod, &rule.Description,
		&rule.Frequency, &rule.StartDate, &rule.EndDate, &rule.LastGenerated, &rule.Active, &rule.CreatedAt, &rule.UpdatedAt,
	)
}
