package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/internal/repository"
	"pocket-ledger/internal/splitbill"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrScanFailed means OCR produced nothing the receipt parser could read.
	ErrScanFailed        = errors.New("receipt scan failed")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file too large")
	ErrAlreadyBooked     = errors.New("receipt already booked")
)

type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}

type ScanStore interface {
	Create(ctx context.Context, s *models.ReceiptScan) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ReceiptScan, error)
	FindParsedByHash(ctx context.Context, userID uuid.UUID, hash string) (*models.ReceiptScan, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ReceiptScan, error)
}

type ScanResultCache interface {
	Get(ctx context.Context, contentHash string) (*repository.CachedScan, bool)
	Set(ctx context.Context, contentHash string, scan repository.CachedScan)
}

type CategoryLister interface {
	ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error)
}

type Suggester interface {
	Suggest(ctx context.Context, r receipt.ParsedReceipt, categories []models.Category) (string, error)
}

// ReceiptBooker books the transactions of a scan, with budget linkage, and
// marks the scan booked in one database transaction.
type ReceiptBooker interface {
	BookScan(ctx context.Context, userID, scanID uuid.UUID, txs []models.Transaction) (int, error)
}

// ScanService turns uploaded receipts into parsed receipts and books them
// into the ledger: upload -> OCR -> parse -> optional category suggestion.
type ScanService struct {
	scanRepo      ScanStore
	cache         ScanResultCache
	ocr           TextExtractor
	catalog       CategoryLister
	suggester     Suggester
	ledger        ReceiptBooker
	uploadDir     string
	maxUploadSize int64
	logger        *zap.Logger
	now           func() time.Time
}

func NewScanService(
	scanRepo ScanStore,
	cache ScanResultCache,
	ocr TextExtractor,
	catalog CategoryLister,
	suggester Suggester,
	ledger ReceiptBooker,
	uploadDir string,
	maxUploadSize int64,
	logger *zap.Logger,
) *ScanService {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.Warn("Failed to create upload directory", zap.Error(err))
	}

	return &ScanService{
		scanRepo:      scanRepo,
		cache:         cache,
		ocr:           ocr,
		catalog:       catalog,
		suggester:     suggester,
		ledger:        ledger,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
		logger:        logger,
		now:           time.Now,
	}
}

// Scan stores an uploaded receipt and parses it. A file this user already
// scanned is answered from the stored scan; a file any user scanned before
// skips OCR via the cache. When OCR yields no text the scan is recorded as
// failed and ErrScanFailed is returned without invoking the parser.
func (s *ScanService) Scan(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (*dto.ScanResponse, error) {
	if !SupportedFormat(fileName) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(fileName))
	}

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, ErrFileTooLarge
	}
	hash := contentHash(data)

	existing, err := s.scanRepo.FindParsedByHash(ctx, userID, hash)
	switch {
	case err == nil:
		resp, err := scanResponse(existing)
		if err != nil {
			return nil, err
		}
		resp.Cached = true
		return resp, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	now := s.now().UTC()
	scan := &models.ReceiptScan{
		ID:          uuid.New(),
		UserID:      userID,
		FileName:    filepath.Base(fileName),
		FileSize:    int64(len(data)),
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	path, err := s.store(scan.ID, fileName, data)
	if err != nil {
		return nil, err
	}
	scan.FileURL = filepath.Base(path)

	cached, hit := s.cache.Get(ctx, hash)
	if !hit {
		cached, err = s.recognize(ctx, path)
		if err != nil {
			scan.Status = models.ScanStatusFailed
			if createErr := s.scanRepo.Create(ctx, scan); createErr != nil {
				s.logger.Error("Failed to record failed scan", zap.Error(createErr))
			}
			return nil, err
		}
		s.cache.Set(ctx, hash, *cached)
	}

	scan.ExtractedText = cached.ExtractedText
	scan.SuggestedCategory = s.suggest(ctx, userID, cached.Receipt)
	scan.Status = models.ScanStatusParsed
	if scan.ParsedJSON, err = json.Marshal(cached.Receipt); err != nil {
		return nil, fmt.Errorf("failed to encode parsed receipt: %w", err)
	}

	if err := s.scanRepo.Create(ctx, scan); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to create scan record: %w", err)
	}

	s.logger.Info("Receipt scanned",
		zap.String("scan_id", scan.ID.String()),
		zap.Bool("cache_hit", hit),
		zap.Int("items", len(cached.Receipt.Items)),
		zap.String("total", cached.Receipt.Total.String()),
	)

	resp, err := scanResponse(scan)
	if err != nil {
		return nil, err
	}
	resp.Cached = hit
	return resp, nil
}

func (s *ScanService) store(id uuid.UUID, fileName string, data []byte) (string, error) {
	path := filepath.Join(s.uploadDir, id.String()+strings.ToLower(filepath.Ext(fileName)))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return path, nil
}

func (s *ScanService) recognize(ctx context.Context, path string) (*repository.CachedScan, error) {
	text, err := s.ocr.ExtractText(ctx, path)
	if err != nil {
		s.logger.Warn("OCR failed", zap.String("file", filepath.Base(path)), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	parsed, err := receipt.ParseText(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanFailed, err)
	}

	return &repository.CachedScan{
		ExtractedText: text,
		Receipt:       parsed,
	}, nil
}

// suggest is best effort: a failing suggester never fails the scan.
func (s *ScanService) suggest(ctx context.Context, userID uuid.UUID, parsed receipt.ParsedReceipt) string {
	if s.suggester == nil {
		return ""
	}
	categories, err := s.catalog.ListCategories(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load categories for suggestion", zap.Error(err))
		return ""
	}
	id, err := s.suggester.Suggest(ctx, parsed, categories)
	if err != nil {
		s.logger.Warn("Category suggestion failed", zap.Error(err))
		return ""
	}
	return id
}

// ParseText runs the receipt parser over text that was recognized elsewhere.
func (s *ScanService) ParseText(ctx context.Context, text string) (*receipt.ParsedReceipt, error) {
	parsed, err := receipt.ParseText(sanitizeUTF8(text))
	if err != nil {
		if errors.Is(err, receipt.ErrEmptyText) {
			return nil, invalid("text is empty")
		}
		return nil, err
	}
	return &parsed, nil
}

func (s *ScanService) ListScans(ctx context.Context, userID uuid.UUID, limit, offset int) ([]dto.ScanResponse, error) {
	scans, err := s.scanRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ScanResponse, 0, len(scans))
	for i := range scans {
		resp, err := scanResponse(&scans[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// Book writes a parsed scan into the ledger as expenses, either as a single
// transaction for the receipt total or one per item plus tax and tip.
func (s *ScanService) Book(ctx context.Context, userID, scanID uuid.UUID, req *dto.BookReceiptRequest) (*dto.BookReceiptResponse, error) {
	scan, err := s.scanRepo.GetByID(ctx, userID, scanID)
	if err != nil {
		return nil, translate(err)
	}
	switch scan.Status {
	case models.ScanStatusFailed:
		return nil, ErrScanFailed
	case models.ScanStatusBooked:
		return nil, ErrAlreadyBooked
	}

	var parsed receipt.ParsedReceipt
	if err := json.Unmarshal(scan.ParsedJSON, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode parsed receipt: %w", err)
	}

	now := s.now().UTC()
	template := models.Transaction{
		UserID:        userID,
		Type:          models.TransactionTypeExpense,
		Category:      firstNonEmpty(req.Category, scan.SuggestedCategory, models.CategoryUncategorized),
		PaymentMethod: req.PaymentMethod,
		Description:   firstNonEmpty(req.Description, "Receipt "+scan.FileName),
		Date:          startOfDay(now),
		CreatedAt:     now,
	}
	if req.Date != "" {
		if template.Date, err = parseDate("date", req.Date); err != nil {
			return nil, err
		}
	}

	txs, err := bookingLines(parsed, req.Mode, template)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.BookScan(ctx, userID, scan.ID, txs); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}

	return &dto.BookReceiptResponse{
		ScanID:       scan.ID.String(),
		Transactions: dto.NewTransactionResponses(txs),
	}, nil
}

func bookingLines(parsed receipt.ParsedReceipt, mode string, template models.Transaction) ([]models.Transaction, error) {
	line := func(amount decimal.Decimal, description string) models.Transaction {
		t := template
		t.ID = uuid.New()
		t.Amount = amount.Round(2)
		t.Description = description
		return t
	}

	switch mode {
	case dto.BookModeTotal:
		if !parsed.Total.IsPositive() {
			return nil, invalid("receipt has no total")
		}
		return []models.Transaction{line(parsed.Total, template.Description)}, nil

	case dto.BookModeItemized:
		if len(parsed.Items) == 0 {
			return nil, invalid("receipt has no items")
		}
		txs := make([]models.Transaction, 0, len(parsed.Items)+2)
		for _, it := range parsed.Items {
			name := it.Name
			if it.Quantity > 1 {
				name = fmt.Sprintf("%dx %s", it.Quantity, it.Name)
			}
			if amount := it.LineTotal(); amount.IsPositive() {
				txs = append(txs, line(amount, name))
			}
		}
		if parsed.Tax.IsPositive() {
			txs = append(txs, line(parsed.Tax, template.Description+" (tax)"))
		}
		if parsed.Tip.IsPositive() {
			txs = append(txs, line(parsed.Tip, template.Description+" (tip)"))
		}
		return txs, nil

	default:
		return nil, invalid("mode must be total or itemized")
	}
}

// Split divides a bill among the people who shared it.
func (s *ScanService) Split(ctx context.Context, req *dto.SplitBillRequest) (*splitbill.Breakdown, error) {
	breakdown, err := splitbill.Split(req.Bill())
	if err != nil {
		return nil, invalid("%v", err)
	}
	return &breakdown, nil
}

func scanResponse(scan *models.ReceiptScan) (*dto.ScanResponse, error) {
	resp := &dto.ScanResponse{
		ID:                scan.ID.String(),
		FileName:          scan.FileName,
		FileURL:           scan.FileURL,
		ExtractedText:     scan.ExtractedText,
		SuggestedCategory: scan.SuggestedCategory,
		Status:            string(scan.Status),
		CreatedAt:         scan.CreatedAt.Format(time.RFC3339),
		Receipt:           receipt.ParsedReceipt{Items: []receipt.Item{}},
	}
	if len(scan.ParsedJSON) > 0 {
		if err := json.Unmarshal(scan.ParsedJSON, &resp.Receipt); err != nil {
			return nil, fmt.Errorf("failed to decode parsed receipt: %w", err)
		}
	}
	return resp, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
