package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/models"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const warungReceipt = `WARUNG MAKAN SEDERHANA
Jl. Sudirman No. 12
12/03/2024 19:42
Nasi Goreng 25.000
2x Es Teh 10.000
Subtotal 35.000
Tax 10% 3.500
Total 38.500
Tunai 50.000
Kembalian 11.500`

type scanFixture struct {
	svc       *ScanService
	scans     *fakeScanStore
	cache     *fakeCache
	extractor *fakeExtractor
	suggester *fakeSuggester
	ledger    *fakeLedger
	booker    *fakeReceiptBooker
}

func newScanFixture(t *testing.T, text string, ocrErr error) *scanFixture {
	t.Helper()
	f := &scanFixture{
		scans:     newFakeScanStore(),
		cache:     newFakeCache(),
		extractor: &fakeExtractor{text: text, err: ocrErr},
		suggester: &fakeSuggester{category: "dining"},
		ledger:    newFakeLedger(),
	}
	f.booker = &fakeReceiptBooker{scans: f.scans, ledger: f.ledger}
	f.svc = NewScanService(
		f.scans,
		f.cache,
		f.extractor,
		newFakeCatalog(),
		f.suggester,
		f.booker,
		t.TempDir(),
		1<<20,
		zap.NewNop(),
	)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 12, 20, 0, 0, 0, time.UTC) }
	return f
}

func TestScanParsesReceipt(t *testing.T) {
	f := newScanFixture(t, warungReceipt, nil)

	resp, err := f.svc.Scan(context.Background(), uuid.New(), strings.NewReader("jpeg-bytes"), "dinner.jpg")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if resp.Status != string(models.ScanStatusParsed) || resp.Cached {
		t.Errorf("unexpected scan status: %+v", resp)
	}
	if len(resp.Receipt.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", resp.Receipt.Items)
	}
	if !resp.Receipt.Total.Equal(decimal.NewFromInt(38500)) {
		t.Errorf("expected total 38500, got %s", resp.Receipt.Total)
	}
	if resp.SuggestedCategory != "dining" {
		t.Errorf("expected suggested category dining, got %q", resp.SuggestedCategory)
	}
	if len(f.cache.entries) != 1 {
		t.Errorf("expected the result to be cached")
	}
}

func TestScanFailureSkipsParser(t *testing.T) {
	f := newScanFixture(t, "", errors.New("no text extracted"))

	_, err := f.svc.Scan(context.Background(), uuid.New(), strings.NewReader("blurry"), "blurry.png")
	if !errors.Is(err, ErrScanFailed) {
		t.Fatalf("expected ErrScanFailed, got %v", err)
	}

	if len(f.scans.scans) != 1 {
		t.Fatalf("expected the failed scan to be recorded")
	}
	for _, s := range f.scans.scans {
		if s.Status != models.ScanStatusFailed || s.ParsedJSON != nil {
			t.Errorf("unexpected failed scan record: %+v", s)
		}
	}
	if len(f.cache.entries) != 0 {
		t.Errorf("failed scans must not be cached")
	}
}

func TestScanReuse(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	data := []byte("jpeg-bytes")

	t.Run("same user rescans", func(t *testing.T) {
		f := newScanFixture(t, warungReceipt, nil)
		first, err := f.svc.Scan(ctx, userID, bytes.NewReader(data), "a.jpg")
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		second, err := f.svc.Scan(ctx, userID, bytes.NewReader(data), "b.jpg")
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if second.ID != first.ID || !second.Cached {
			t.Errorf("expected the stored scan to be returned, got %+v", second)
		}
		if f.extractor.calls != 1 {
			t.Errorf("expected OCR to run once, ran %d times", f.extractor.calls)
		}
	})

	t.Run("cache hit skips OCR", func(t *testing.T) {
		f := newScanFixture(t, "", errors.New("must not be called"))
		parsed, _ := receipt.ParseText(warungReceipt)
		f.cache.entries[contentHash(data)] = repository.CachedScan{ExtractedText: warungReceipt, Receipt: parsed}

		resp, err := f.svc.Scan(ctx, userID, bytes.NewReader(data), "c.jpg")
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if !resp.Cached || f.extractor.calls != 0 {
			t.Errorf("expected cache hit without OCR, calls=%d", f.extractor.calls)
		}
	})
}

func TestScanSuggestsPerUserOnCacheHit(t *testing.T) {
	f := newScanFixture(t, warungReceipt, nil)
	ctx := context.Background()
	data := []byte("jpeg-bytes")

	f.suggester.category = "alice-private-hobby"
	first, err := f.svc.Scan(ctx, uuid.New(), bytes.NewReader(data), "a.jpg")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if first.SuggestedCategory != "alice-private-hobby" {
		t.Fatalf("expected the first user's suggestion, got %q", first.SuggestedCategory)
	}

	f.suggester.category = "groceries"
	second, err := f.svc.Scan(ctx, uuid.New(), bytes.NewReader(data), "b.jpg")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if !second.Cached || f.extractor.calls != 1 {
		t.Fatalf("expected a cache hit, cached=%v calls=%d", second.Cached, f.extractor.calls)
	}
	if second.SuggestedCategory != "groceries" {
		t.Errorf("expected the second user's own suggestion, got %q", second.SuggestedCategory)
	}
}

func TestScanRejectsUpload(t *testing.T) {
	f := newScanFixture(t, warungReceipt, nil)
	ctx := context.Background()

	if _, err := f.svc.Scan(ctx, uuid.New(), strings.NewReader("x"), "notes.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	f.svc.maxUploadSize = 4
	if _, err := f.svc.Scan(ctx, uuid.New(), strings.NewReader("too large"), "big.jpg"); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
}

func TestBook(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		amounts []string
	}{
		{name: "total", mode: dto.BookModeTotal, amounts: []string{"38500"}},
		{name: "itemized", mode: dto.BookModeItemized, amounts: []string{"25000", "10000", "3500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newScanFixture(t, warungReceipt, nil)
			ctx := context.Background()
			userID := uuid.New()

			scan, err := f.svc.Scan(ctx, userID, strings.NewReader("jpeg-bytes"), "dinner.jpg")
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			scanID, _ := uuid.Parse(scan.ID)

			booked, err := f.svc.Book(ctx, userID, scanID, &dto.BookReceiptRequest{Mode: tt.mode, PaymentMethod: "cash"})
			if err != nil {
				t.Fatalf("Book failed: %v", err)
			}
			if len(booked.Transactions) != len(tt.amounts) {
				t.Fatalf("expected %d transactions, got %d", len(tt.amounts), len(booked.Transactions))
			}
			for i, want := range tt.amounts {
				got := booked.Transactions[i]
				if !got.Amount.Equal(decimal.RequireFromString(want)) {
					t.Errorf("line %d: expected %s, got %s", i, want, got.Amount)
				}
				if got.Category != "dining" || got.Type != "expense" || got.Date != "2024-03-12" {
					t.Errorf("line %d: unexpected transaction %+v", i, got)
				}
			}

			if _, err := f.svc.Book(ctx, userID, scanID, &dto.BookReceiptRequest{Mode: tt.mode, PaymentMethod: "cash"}); !errors.Is(err, ErrAlreadyBooked) {
				t.Errorf("expected ErrAlreadyBooked on second booking, got %v", err)
			}
		})
	}
}

func TestBookLosesRace(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		wantErr error
	}{
		{name: "total", mode: dto.BookModeTotal, wantErr: ErrAlreadyBooked},
		{name: "itemized", mode: dto.BookModeItemized, wantErr: ErrAlreadyBooked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newScanFixture(t, warungReceipt, nil)
			ctx := context.Background()
			userID := uuid.New()

			scan, err := f.svc.Scan(ctx, userID, strings.NewReader("jpeg-bytes"), "dinner.jpg")
			if err != nil {
				t.Fatalf("Scan failed: %v", err)
			}
			scanID, _ := uuid.Parse(scan.ID)

			// Another request books the scan after this one read it as parsed.
			f.booker.beforeBook = func() { f.scans.scans[scanID].Status = models.ScanStatusBooked }

			_, err = f.svc.Book(ctx, userID, scanID, &dto.BookReceiptRequest{Mode: tt.mode, PaymentMethod: "cash"})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(f.ledger.txs) != 0 {
				t.Errorf("expected nothing booked by the losing request, got %d transactions", len(f.ledger.txs))
			}
		})
	}
}

func TestParseTextRejectsBlank(t *testing.T) {
	f := newScanFixture(t, "", nil)
	if _, err := f.svc.ParseText(context.Background(), "  \n "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	f := newScanFixture(t, "", nil)
	pct := decimal.NewFromInt(10)

	breakdown, err := f.svc.Split(context.Background(), &dto.SplitBillRequest{
		Items: []dto.SplitItemRequest{
			{Name: "Pizza", Price: decimal.NewFromInt(20), Quantity: 1, AssignedTo: []string{"a", "b"}},
			{Name: "Beer", Price: decimal.NewFromInt(5), Quantity: 2, AssignedTo: []string{"a"}},
		},
		People:     []dto.SplitPersonRequest{{ID: "a", Name: "Ann"}, {ID: "b", Name: "Ben"}},
		TaxPercent: &pct,
	})
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !breakdown.Total.Equal(decimal.NewFromInt(33)) {
		t.Errorf("expected total 33, got %s", breakdown.Total)
	}

	_, err = f.svc.Split(context.Background(), &dto.SplitBillRequest{
		Items:  []dto.SplitItemRequest{{Name: "Pizza", Price: decimal.NewFromInt(20), Quantity: 1, AssignedTo: []string{"z"}}},
		People: []dto.SplitPersonRequest{{ID: "a", Name: "Ann"}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown person, got %v", err)
	}
}
