package repository

import (
	"context"

	"pocket-ledger/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var scanColumns = []string{
	"id", "user_id", "file_name", "file_size", "file_url", "content_hash",
	"extracted_text", "parsed_json", "suggested_category", "status", "created_at", "updated_at",
}

type ReceiptScanRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReceiptScanRepository(db *pgxpool.Pool, logger *zap.Logger) *ReceiptScanRepository {
	return &ReceiptScanRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ReceiptScanRepository) Create(ctx context.Context, s *models.ReceiptScan) error {
	_, err := exec(ctx, r.db, psql.Insert("receipt_scans").
		Columns(scanColumns...).
		Values(s.ID, s.UserID, s.FileName, s.FileSize, s.FileURL, s.ContentHash,
			s.ExtractedText, s.ParsedJSON, s.SuggestedCategory, s.Status, s.CreatedAt, s.UpdatedAt))
	return mapError(err)
}

func (r *ReceiptScanRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ReceiptScan, error) {
	scans, err := r.list(ctx, psql.Select(scanColumns...).
		From("receipt_scans").
		Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return nil, err
	}
	if len(scans) == 0 {
		return nil, ErrNotFound
	}
	return &scans[0], nil
}

// FindParsedByHash returns the newest successfully parsed scan of the same
// file for this user, so a re-upload can skip OCR.
func (r *ReceiptScanRepository) FindParsedByHash(ctx context.Context, userID uuid.UUID, hash string) (*models.ReceiptScan, error) {
	scans, err := r.list(ctx, psql.Select(scanColumns...).
		From("receipt_scans").
		Where(squirrel.Eq{"user_id": userID, "content_hash": hash}).
		Where(squirrel.NotEq{"status": models.ScanStatusFailed}).
		OrderBy("created_at DESC").
		Limit(1))
	if err != nil {
		return nil, err
	}
	if len(scans) == 0 {
		return nil, ErrNotFound
	}
	return &scans[0], nil
}

func (r *ReceiptScanRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ReceiptScan, error) {
	return r.list(ctx, psql.Select(scanColumns...).
		From("receipt_scans").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)))
}

// markScanBooked moves a parsed scan to booked. A scan that is missing or
// no longer parsed yields ErrConflict, so only one booking can win.
func markScanBooked(ctx context.Context, q DBTX, userID, id uuid.UUID) error {
	tag, err := exec(ctx, q, psql.Update("receipt_scans").
		Set("status", models.ScanStatusBooked).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "user_id": userID, "status": models.ScanStatusParsed}))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (r *ReceiptScanRepository) list(ctx context.Context, b squirrel.SelectBuilder) ([]models.ReceiptScan, error) {
	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scans := []models.ReceiptScan{}
	for rows.Next() {
		var s models.ReceiptScan
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.FileName, &s.FileSize, &s.FileURL, &s.ContentHash,
			&s.ExtractedText, &s.ParsedJSON, &s.SuggestedCategory, &s.Status, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		scans = append(scans, s)
	}
	return scans, rows.Err()
}
