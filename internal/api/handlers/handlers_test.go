package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"pocket-ledger/internal/dto"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/internal/service"
	"pocket-ledger/internal/splitbill"
	"pocket-ledger/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var testUserID = uuid.MustParse("6f1c2c1e-4e1b-4c55-9d0e-2a4f7a3d9b10")

func withUser(c *fiber.Ctx) error {
	c.Locals(middleware.LocalUserID, testUserID)
	return c.Next()
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if s, ok := body.(string); ok {
		r = bytes.NewBufferString(s)
	} else if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type fakeAuthService struct {
	err error
}

func (f *fakeAuthService) Register(_ context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AuthResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", User: dto.UserResponse{Email: req.Email}}, nil
}

func (f *fakeAuthService) Login(_ context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AuthResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}, nil
}

func (f *fakeAuthService) RefreshToken(_ context.Context, token string) (*dto.AuthResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AuthResponse{AccessToken: "a2", RefreshToken: token, TokenType: "Bearer"}, nil
}

func TestAuthHandler(t *testing.T) {
	tests := []struct {
		name string
		path string
		body any
		err  error
		want int
	}{
		{
			name: "register",
			path: "/register",
			body: dto.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret123"},
			want: fiber.StatusCreated,
		},
		{
			name: "register short password",
			path: "/register",
			body: dto.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "short"},
			want: fiber.StatusBadRequest,
		},
		{
			name: "register existing user",
			path: "/register",
			body: dto.RegisterRequest{Username: "ana", Email: "ana@example.com", Password: "secret123"},
			err:  service.ErrUserExists,
			want: fiber.StatusConflict,
		},
		{
			name: "login bad credentials",
			path: "/login",
			body: dto.LoginRequest{Email: "ana@example.com", Password: "wrong"},
			err:  service.ErrInvalidCredentials,
			want: fiber.StatusUnauthorized,
		},
		{
			name: "login malformed json",
			path: "/login",
			body: "{",
			want: fiber.StatusBadRequest,
		},
		{
			name: "refresh",
			path: "/refresh",
			body: dto.RefreshTokenRequest{RefreshToken: "r"},
			want: fiber.StatusOK,
		},
		{
			name: "refresh missing token",
			path: "/refresh",
			body: dto.RefreshTokenRequest{},
			want: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&fakeAuthService{err: tt.err}, zap.NewNop())
			app := fiber.New()
			app.Post("/register", h.Register)
			app.Post("/login", h.Login)
			app.Post("/refresh", h.RefreshToken)

			resp := doJSON(t, app, "POST", tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

type fakeLedgerService struct {
	LedgerService
	created *dto.TransactionRequest
	query   *dto.TransactionQuery
	balance *dto.BalanceQuery
	err     error
}

func (f *fakeLedgerService) CreateTransaction(_ context.Context, _ uuid.UUID, req *dto.TransactionRequest) (*dto.TransactionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &dto.TransactionResponse{ID: uuid.NewString(), Amount: req.Amount, Type: req.Type, Category: req.Category, Date: req.Date}, nil
}

func (f *fakeLedgerService) ListTransactions(_ context.Context, _ uuid.UUID, q *dto.TransactionQuery) ([]dto.TransactionResponse, error) {
	f.query = q
	return []dto.TransactionResponse{}, nil
}

func (f *fakeLedgerService) DeleteTransaction(_ context.Context, _, _ uuid.UUID) error {
	return f.err
}

func (f *fakeLedgerService) Balance(_ context.Context, _ uuid.UUID, q *dto.BalanceQuery) (*dto.BalanceResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.balance = q
	return &dto.BalanceResponse{
		Income:  decimal.NewFromInt(100),
		Expense: decimal.NewFromInt(40),
		Net:     decimal.NewFromInt(60),
	}, nil
}

func newTransactionApp(svc LedgerService) *fiber.App {
	h := NewTransactionHandler(svc, zap.NewNop())
	app := fiber.New()
	app.Post("/transactions", withUser, h.CreateTransaction)
	app.Get("/transactions", withUser, h.ListTransactions)
	app.Delete("/transactions/:id", withUser, h.DeleteTransaction)
	app.Get("/ledger/balance", withUser, h.GetBalance)
	app.Post("/anonymous", h.CreateTransaction)
	return app
}

func TestCreateTransaction(t *testing.T) {
	valid := map[string]any{
		"amount":         "12.50",
		"type":           "expense",
		"category":       "food",
		"payment_method": "cash",
		"date":           "2024-03-05",
	}

	t.Run("created", func(t *testing.T) {
		svc := &fakeLedgerService{}
		resp := doJSON(t, newTransactionApp(svc), "POST", "/transactions", valid)
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("expected 201, got %d", resp.StatusCode)
		}
		var got dto.TransactionResponse
		decode(t, resp, &got)
		if !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected amount 12.5, got %s", got.Amount)
		}
		if svc.created == nil || svc.created.Category != "food" {
			t.Errorf("expected request to reach the service, got %+v", svc.created)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		body := map[string]any{}
		for k, v := range valid {
			body[k] = v
		}
		body["date"] = "05/03/2024"
		resp := doJSON(t, newTransactionApp(&fakeLedgerService{}), "POST", "/transactions", body)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
		var got map[string]string
		decode(t, resp, &got)
		if got["error"] != "date failed on datetime=2006-01-02" {
			t.Errorf("unexpected error message %q", got["error"])
		}
	})

	t.Run("service rejects amount", func(t *testing.T) {
		svc := &fakeLedgerService{err: fmt.Errorf("%w: amount must be positive", service.ErrInvalidInput)}
		resp := doJSON(t, newTransactionApp(svc), "POST", "/transactions", valid)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		resp := doJSON(t, newTransactionApp(&fakeLedgerService{}), "POST", "/anonymous", valid)
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestListTransactionsQuery(t *testing.T) {
	svc := &fakeLedgerService{}
	app := newTransactionApp(svc)

	resp := doJSON(t, app, "GET", "/transactions?from=2024-01-01&type=expense&limit=10", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if svc.query == nil || svc.query.From != "2024-01-01" || svc.query.Type != "expense" || svc.query.Limit != 10 {
		t.Fatalf("unexpected query %+v", svc.query)
	}

	resp = doJSON(t, app, "GET", "/transactions?type=transfer", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", resp.StatusCode)
	}
}

func TestDeleteTransaction(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "deleted", path: "/transactions/" + uuid.NewString(), want: fiber.StatusNoContent},
		{name: "missing", path: "/transactions/" + uuid.NewString(), err: service.ErrNotFound, want: fiber.StatusNotFound},
		{name: "bad id", path: "/transactions/abc", want: fiber.StatusBadRequest},
		{name: "store down", path: "/transactions/" + uuid.NewString(), err: fmt.Errorf("connection refused"), want: fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, newTransactionApp(&fakeLedgerService{err: tt.err}), "DELETE", tt.path, nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestGetBalance(t *testing.T) {
	tests := []struct {
		name string
		path string
		err  error
		want int
	}{
		{name: "all time", path: "/ledger/balance", want: fiber.StatusOK},
		{name: "range", path: "/ledger/balance?from=2024-01-01&to=2024-01-31", want: fiber.StatusOK},
		{name: "bad date", path: "/ledger/balance?from=01/01/2024", want: fiber.StatusBadRequest},
		{
			name: "inverted range",
			path: "/ledger/balance?from=2024-02-01&to=2024-01-01",
			err:  fmt.Errorf("%w: to is before from", service.ErrInvalidInput),
			want: fiber.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeLedgerService{err: tt.err}
			resp := doJSON(t, newTransactionApp(svc), "GET", tt.path, nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
			if tt.want != fiber.StatusOK {
				return
			}
			var got dto.BalanceResponse
			decode(t, resp, &got)
			if !got.Net.Equal(decimal.NewFromInt(60)) {
				t.Errorf("expected net 60, got %s", got.Net)
			}
		})
	}

	svc := &fakeLedgerService{}
	doJSON(t, newTransactionApp(svc), "GET", "/ledger/balance?from=2024-01-01&to=2024-01-31", nil)
	if svc.balance == nil || svc.balance.From != "2024-01-01" || svc.balance.To != "2024-01-31" {
		t.Fatalf("unexpected balance query %+v", svc.balance)
	}
}

type fakeRecurringService struct {
	RecurringService
	run dto.RunRecurringResponse
}

func (f *fakeRecurringService) Run(_ context.Context, _ uuid.UUID) (*dto.RunRecurringResponse, error) {
	return &f.run, nil
}

func TestRunRecurring(t *testing.T) {
	h := NewRecurringHandler(&fakeRecurringService{run: dto.RunRecurringResponse{Generated: 3, Deactivated: 1}}, zap.NewNop())
	app := fiber.New()
	app.Post("/recurring/run", withUser, h.Run)

	resp := doJSON(t, app, "POST", "/recurring/run", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got dto.RunRecurringResponse
	decode(t, resp, &got)
	if got.Generated != 3 || got.Deactivated != 1 {
		t.Fatalf("unexpected run result %+v", got)
	}
}

type fakeCatalogService struct {
	CatalogService
	deleteErr error
}

func (f *fakeCatalogService) DeleteCategory(_ context.Context, _ uuid.UUID, _ string) error {
	return f.deleteErr
}

func TestDeleteCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "custom", want: fiber.StatusNoContent},
		{name: "default", err: service.ErrDefaultCategory, want: fiber.StatusConflict},
		{name: "missing", err: service.ErrNotFound, want: fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCatalogHandler(&fakeCatalogService{deleteErr: tt.err}, zap.NewNop())
			app := fiber.New()
			app.Delete("/categories/:id", withUser, h.DeleteCategory)

			resp := doJSON(t, app, "DELETE", "/categories/coffee", nil)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

type fakeScanService struct {
	ScanService
	scanned  []byte
	fileName string
	cached   bool
	err      error
}

func (f *fakeScanService) Scan(_ context.Context, _ uuid.UUID, file io.Reader, fileName string) (*dto.ScanResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.scanned = data
	f.fileName = fileName
	return &dto.ScanResponse{ID: uuid.NewString(), FileName: fileName, Status: "parsed", Cached: f.cached}, nil
}

func (f *fakeScanService) ParseText(_ context.Context, text string) (*receipt.ParsedReceipt, error) {
	parsed, err := receipt.ParseText(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return &parsed, nil
}

func (f *fakeScanService) Split(_ context.Context, req *dto.SplitBillRequest) (*splitbill.Breakdown, error) {
	b, err := splitbill.Split(req.Bill())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return &b, nil
}

func newReceiptApp(svc ScanService, maxSize int64) *fiber.App {
	h := NewReceiptHandler(svc, maxSize, zap.NewNop())
	app := fiber.New()
	app.Post("/receipts/scan", withUser, h.ScanReceipt)
	app.Post("/receipts/parse", withUser, h.ParseReceipt)
	app.Post("/receipts/split", withUser, h.SplitBill)
	return app
}

func uploadRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/receipts/scan", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestScanReceipt(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		maxSize int64
		cached  bool
		err     error
		want    int
	}{
		{name: "new scan", content: []byte("png bytes"), maxSize: 1024, want: fiber.StatusCreated},
		{name: "cached scan", content: []byte("png bytes"), maxSize: 1024, cached: true, want: fiber.StatusOK},
		{name: "too large", content: bytes.Repeat([]byte("x"), 64), maxSize: 16, want: fiber.StatusRequestEntityTooLarge},
		{name: "unreadable", content: []byte("png bytes"), maxSize: 1024, err: service.ErrScanFailed, want: fiber.StatusUnprocessableEntity},
		{name: "unsupported", content: []byte("gif"), maxSize: 1024, err: service.ErrUnsupportedFormat, want: fiber.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeScanService{cached: tt.cached, err: tt.err}
			resp, err := newReceiptApp(svc, tt.maxSize).Test(uploadRequest(t, "receipt.png", tt.content))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
			if tt.want == fiber.StatusCreated && (svc.fileName != "receipt.png" || !bytes.Equal(svc.scanned, tt.content)) {
				t.Fatalf("upload did not reach the service intact: %q %q", svc.fileName, svc.scanned)
			}
		})
	}
}

func TestScanReceiptRequiresFile(t *testing.T) {
	resp := doJSON(t, newReceiptApp(&fakeScanService{}, 1024), "POST", "/receipts/scan", map[string]string{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestParseReceipt(t *testing.T) {
	app := newReceiptApp(&fakeScanService{}, 1024)

	resp := doJSON(t, app, "POST", "/receipts/parse", dto.ParseReceiptRequest{Text: "2x Nasi Goreng 50.000\nTotal 50.000"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got receipt.ParsedReceipt
	decode(t, resp, &got)
	if !got.Total.Equal(decimal.NewFromInt(50000)) {
		t.Errorf("expected total 50000, got %s", got.Total)
	}

	resp = doJSON(t, app, "POST", "/receipts/parse", dto.ParseReceiptRequest{})
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for empty text, got %d", resp.StatusCode)
	}
}

func TestSplitBill(t *testing.T) {
	app := newReceiptApp(&fakeScanService{}, 1024)

	body := `{
		"items": [
			{"name": "Pizza", "price": "20", "quantity": 1, "assigned_to": ["a", "b"]},
			{"name": "Beer", "price": "10", "quantity": 1, "assigned_to": ["a"]}
		],
		"people": [{"id": "a", "name": "Ana"}, {"id": "b", "name": "Ben"}],
		"tax": "3",
		"tip": "0"
	}`
	resp := doJSON(t, app, "POST", "/receipts/split", body)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got splitbill.Breakdown
	decode(t, resp, &got)
	if len(got.People) != 2 {
		t.Fatalf("expected 2 people, got %d", len(got.People))
	}
	if !got.People[0].Total.Equal(decimal.NewFromInt(22)) {
		t.Errorf("expected Ana to owe 22, got %s", got.People[0].Total)
	}
	if !got.People[1].Total.Equal(decimal.NewFromInt(11)) {
		t.Errorf("expected Ben to owe 11, got %s", got.People[1].Total)
	}

	resp = doJSON(t, app, "POST", "/receipts/split", `{"items": [{"name": "Pizza", "price": "20", "quantity": 1, "assigned_to": []}], "people": [{"id": "a", "name": "Ana"}]}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unassigned item, got %d", resp.StatusCode)
	}
}

type fakeSavingsService struct {
	SavingsService
	contributed *dto.ContributionRequest
	err         error
}

func (f *fakeSavingsService) CreateGoal(_ context.Context, _ uuid.UUID, req *dto.SavingsGoalRequest) (*dto.SavingsGoalResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.SavingsGoalResponse{ID: uuid.NewString(), Name: req.Name, TargetAmount: req.TargetAmount, TargetDate: req.TargetDate}, nil
}

func (f *fakeSavingsService) Contribute(_ context.Context, _, id uuid.UUID, req *dto.ContributionRequest) (*dto.SavingsGoalResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.contributed = req
	return &dto.SavingsGoalResponse{ID: id.String(), SavedAmount: req.Amount}, nil
}

func TestSavingsHandler(t *testing.T) {
	goal := map[string]any{"name": "Bike", "target_amount": "400", "target_date": "2024-12-31"}

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		err    error
		want   int
	}{
		{name: "create", method: "POST", path: "/savings-goals", body: goal, want: fiber.StatusCreated},
		{
			name:   "create without date",
			method: "POST",
			path:   "/savings-goals",
			body:   map[string]any{"name": "Bike", "target_amount": "400"},
			want:   fiber.StatusBadRequest,
		},
		{
			name:   "contribute",
			method: "POST",
			path:   "/savings-goals/" + uuid.NewString() + "/contribute",
			body:   map[string]any{"amount": "25"},
			want:   fiber.StatusOK,
		},
		{
			name:   "contribute bad id",
			method: "POST",
			path:   "/savings-goals/abc/contribute",
			body:   map[string]any{"amount": "25"},
			want:   fiber.StatusBadRequest,
		},
		{
			name:   "contribute to missing goal",
			method: "POST",
			path:   "/savings-goals/" + uuid.NewString() + "/contribute",
			body:   map[string]any{"amount": "25"},
			err:    service.ErrNotFound,
			want:   fiber.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSavingsHandler(&fakeSavingsService{err: tt.err}, zap.NewNop())
			app := fiber.New()
			app.Post("/savings-goals", withUser, h.CreateGoal)
			app.Post("/savings-goals/:id/contribute", withUser, h.Contribute)

			resp := doJSON(t, app, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

type fakeDebtService struct {
	DebtService
	settled *dto.SettleDebtRequest
	query   *dto.DebtQuery
	err     error
}

func (f *fakeDebtService) ListDebts(_ context.Context, _ uuid.UUID, q *dto.DebtQuery) ([]dto.DebtResponse, error) {
	f.query = q
	return []dto.DebtResponse{}, nil
}

func (f *fakeDebtService) SettleDebt(_ context.Context, _, id uuid.UUID, req *dto.SettleDebtRequest) (*dto.SettleDebtResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.settled = req
	return &dto.SettleDebtResponse{Debt: dto.DebtResponse{ID: id.String(), Status: "paid"}}, nil
}

func (f *fakeDebtService) ReopenDebt(_ context.Context, _, id uuid.UUID) (*dto.DebtResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DebtResponse{ID: id.String(), Status: "pending"}, nil
}

func newDebtApp(svc DebtService) *fiber.App {
	h := NewDebtHandler(svc, zap.NewNop())
	app := fiber.New()
	app.Get("/debts", withUser, h.ListDebts)
	app.Post("/debts/:id/settle", withUser, h.SettleDebt)
	app.Post("/debts/:id/reopen", withUser, h.ReopenDebt)
	return app
}

func TestSettleDebt(t *testing.T) {
	tests := []struct {
		name string
		path string
		body any
		err  error
		want int
	}{
		{name: "empty body", path: "/debts/" + uuid.NewString() + "/settle", want: fiber.StatusOK},
		{
			name: "with overrides",
			path: "/debts/" + uuid.NewString() + "/settle",
			body: map[string]any{"category": "gifts", "date": "2024-06-01"},
			want: fiber.StatusOK,
		},
		{
			name: "bad date",
			path: "/debts/" + uuid.NewString() + "/settle",
			body: map[string]any{"date": "June 1"},
			want: fiber.StatusBadRequest,
		},
		{name: "already settled", path: "/debts/" + uuid.NewString() + "/settle", err: service.ErrDebtSettled, want: fiber.StatusConflict},
		{name: "missing", path: "/debts/" + uuid.NewString() + "/settle", err: service.ErrNotFound, want: fiber.StatusNotFound},
		{name: "bad id", path: "/debts/abc/settle", want: fiber.StatusBadRequest},
		{name: "reopen pending", path: "/debts/" + uuid.NewString() + "/reopen", err: service.ErrDebtNotSettled, want: fiber.StatusConflict},
		{name: "reopen", path: "/debts/" + uuid.NewString() + "/reopen", want: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, newDebtApp(&fakeDebtService{err: tt.err}), "POST", tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestListDebtsQuery(t *testing.T) {
	svc := &fakeDebtService{}
	app := newDebtApp(svc)

	resp := doJSON(t, app, "GET", "/debts?type=i-owe&status=pending", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if svc.query == nil || svc.query.Type != "i-owe" || svc.query.Status != "pending" {
		t.Fatalf("unexpected query %+v", svc.query)
	}

	resp = doJSON(t, app, "GET", "/debts?status=forgiven", nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}
