package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pocket-ledger/internal/models"
	"pocket-ledger/internal/receipt"
	"pocket-ledger/internal/recurring"
	"pocket-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeUserStore struct {
	byID map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrConflict
		}
	}
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

// fakeLedger keeps transactions and rules in memory and records every
// generation commit.
type fakeLedger struct {
	mu          sync.Mutex
	txs         map[uuid.UUID]models.Transaction
	rules       map[uuid.UUID]models.RecurringTransaction
	commits     int
	failApply   error
	beforeApply func(f *fakeLedger)
	imported    *models.LedgerSnapshot
	importMode  models.ImportMode
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		txs:   make(map[uuid.UUID]models.Transaction),
		rules: make(map[uuid.UUID]models.RecurringTransaction),
	}
}

func (f *fakeLedger) AddTransaction(ctx context.Context, t models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.txs[t.ID]; ok {
		return repository.ErrConflict
	}
	f.txs[t.ID] = t
	return nil
}

func (f *fakeLedger) UpdateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.txs[t.ID]
	if !ok || old.UserID != t.UserID {
		return nil, repository.ErrNotFound
	}
	f.txs[t.ID] = t
	return &old, nil
}

func (f *fakeLedger) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.txs[id]
	if !ok || old.UserID != userID {
		return nil, repository.ErrNotFound
	}
	delete(f.txs, id)
	return &old, nil
}

func (f *fakeLedger) Export(ctx context.Context, userID uuid.UUID) (*models.LedgerSnapshot, error) {
	snap := &models.LedgerSnapshot{}
	for _, t := range f.txs {
		if t.UserID == userID {
			snap.Transactions = append(snap.Transactions, t)
		}
	}
	for _, r := range f.rules {
		if r.UserID == userID {
			snap.RecurringTransactions = append(snap.RecurringTransactions, r)
		}
	}
	return snap, nil
}

func (f *fakeLedger) Import(ctx context.Context, userID uuid.UUID, snap models.LedgerSnapshot, mode models.ImportMode) (repository.ImportResult, error) {
	f.imported = &snap
	f.importMode = mode
	var res repository.ImportResult
	for _, t := range snap.Transactions {
		if _, ok := f.txs[t.ID]; ok {
			res.Skipped++
			continue
		}
		t.UserID = userID
		f.txs[t.ID] = t
		res.Inserted++
	}
	return res, nil
}

// ApplyGeneration refuses the whole commit when a rule no longer holds the
// checkpoint the run started from. beforeApply fires once ahead of it.
func (f *fakeLedger) ApplyGeneration(ctx context.Context, txs []models.Transaction, updates map[uuid.UUID]recurring.RuleUpdate) (int, error) {
	if hook := f.beforeApply; hook != nil {
		f.beforeApply = nil
		hook(f)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failApply != nil {
		return 0, f.failApply
	}
	for id, u := range updates {
		rule, ok := f.rules[id]
		if !ok || !rule.Active || !sameInstant(rule.LastGenerated, u.Previous) {
			return 0, fmt.Errorf("apply generation: %w", repository.ErrConflict)
		}
	}
	inserted := 0
	for _, t := range txs {
		if _, ok := f.txs[t.ID]; ok {
			continue
		}
		f.txs[t.ID] = t
		inserted++
	}
	for id, u := range updates {
		rule := f.rules[id]
		u.Apply(&rule)
		f.rules[id] = rule
	}
	f.commits++
	return inserted, nil
}

func (f *fakeLedger) CreateRecurring(ctx context.Context, rule models.RecurringTransaction, txs []models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[rule.ID] = rule
	for _, t := range txs {
		f.txs[t.ID] = t
	}
	return nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// fakeRuleStore reads the rules owned by a fakeLedger so a run sees the
// checkpoints written by the previous one.
type fakeRuleStore struct {
	ledger *fakeLedger
}

func (f *fakeRuleStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.RecurringTransaction, error) {
	rule, ok := f.ledger.rules[id]
	if !ok || rule.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &rule, nil
}

func (f *fakeRuleStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RecurringTransaction, error) {
	var out []models.RecurringTransaction
	for _, r := range f.ledger.rules {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleStore) ListActive(ctx context.Context) ([]models.RecurringTransaction, error) {
	var out []models.RecurringTransaction
	for _, r := range f.ledger.rules {
		if r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleStore) Update(ctx context.Context, rule *models.RecurringTransaction) error {
	if _, ok := f.ledger.rules[rule.ID]; !ok {
		return repository.ErrNotFound
	}
	f.ledger.rules[rule.ID] = *rule
	return nil
}

func (f *fakeRuleStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, ok := f.ledger.rules[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.ledger.rules, id)
	return nil
}

type fakeCatalog struct {
	categories map[string]models.Category
	methods    map[string]models.PaymentMethod
	deleted    []string
}

func newFakeCatalog() *fakeCatalog {
	f := &fakeCatalog{
		categories: make(map[string]models.Category),
		methods:    make(map[string]models.PaymentMethod),
	}
	for _, c := range models.DefaultCategories {
		f.categories[c.ID] = c
	}
	for _, pm := range models.DefaultPaymentMethods {
		f.methods[pm.ID] = pm
	}
	return f
}

func (f *fakeCatalog) SeedDefaults(ctx context.Context, userID uuid.UUID) error { return nil }

func (f *fakeCatalog) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	out := make([]models.Category, 0, len(f.categories))
	for _, c := range f.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCatalog) GetCategory(ctx context.Context, userID uuid.UUID, id string) (*models.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (f *fakeCatalog) CreateCategory(ctx context.Context, c *models.Category) error {
	if _, ok := f.categories[c.ID]; ok {
		return repository.ErrConflict
	}
	f.categories[c.ID] = *c
	return nil
}

func (f *fakeCatalog) DeleteCategory(ctx context.Context, userID uuid.UUID, id string) error {
	delete(f.categories, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCatalog) ListPaymentMethods(ctx context.Context, userID uuid.UUID) ([]models.PaymentMethod, error) {
	return models.DefaultPaymentMethods, nil
}

func (f *fakeCatalog) GetPaymentMethod(ctx context.Context, userID uuid.UUID, id string) (*models.PaymentMethod, error) {
	pm, ok := f.methods[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &pm, nil
}

func (f *fakeCatalog) CreatePaymentMethod(ctx context.Context, pm *models.PaymentMethod) error {
	if _, ok := f.methods[pm.ID]; ok {
		return repository.ErrConflict
	}
	f.methods[pm.ID] = *pm
	return nil
}

func (f *fakeCatalog) DeletePaymentMethod(ctx context.Context, userID uuid.UUID, id string) error {
	delete(f.methods, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeScanStore struct {
	scans map[uuid.UUID]*models.ReceiptScan
}

func newFakeScanStore() *fakeScanStore {
	return &fakeScanStore{scans: make(map[uuid.UUID]*models.ReceiptScan)}
}

func (f *fakeScanStore) Create(ctx context.Context, s *models.ReceiptScan) error {
	cp := *s
	f.scans[s.ID] = &cp
	return nil
}

func (f *fakeScanStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.ReceiptScan, error) {
	s, ok := f.scans[id]
	if !ok || s.UserID != userID {
		return nil, repository.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeScanStore) FindParsedByHash(ctx context.Context, userID uuid.UUID, hash string) (*models.ReceiptScan, error) {
	for _, s := range f.scans {
		if s.UserID == userID && s.ContentHash == hash && s.Status != models.ScanStatusFailed {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeScanStore) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.ReceiptScan, error) {
	var out []models.ReceiptScan
	for _, s := range f.scans {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fakeReceiptBooker flips a parsed scan to booked and stores its
// transactions in one step, refusing scans that are no longer parsed.
type fakeReceiptBooker struct {
	scans  *fakeScanStore
	ledger *fakeLedger
	// beforeBook runs once ahead of the next booking.
	beforeBook func()
}

func (f *fakeReceiptBooker) BookScan(ctx context.Context, userID, scanID uuid.UUID, txs []models.Transaction) (int, error) {
	if hook := f.beforeBook; hook != nil {
		f.beforeBook = nil
		hook()
	}
	s, ok := f.scans.scans[scanID]
	if !ok || s.UserID != userID || s.Status != models.ScanStatusParsed {
		return 0, repository.ErrConflict
	}
	s.Status = models.ScanStatusBooked
	for _, t := range txs {
		f.ledger.txs[t.ID] = t
	}
	return len(txs), nil
}

type fakeCache struct {
	entries map[string]repository.CachedScan
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]repository.CachedScan)}
}

func (f *fakeCache) Get(ctx context.Context, hash string) (*repository.CachedScan, bool) {
	e, ok := f.entries[hash]
	if !ok {
		return nil, false
	}
	return &e, true
}

func (f *fakeCache) Set(ctx context.Context, hash string, scan repository.CachedScan) {
	f.entries[hash] = scan
}

type fakeExtractor struct {
	text  string
	err   error
	calls int
}

func (f *fakeExtractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeSuggester struct {
	category string
}

func (f *fakeSuggester) Suggest(ctx context.Context, r receipt.ParsedReceipt, categories []models.Category) (string, error) {
	return f.category, nil
}

type fakeGoalStore struct {
	goals map[uuid.UUID]models.SavingsGoal
}

func newFakeGoalStore() *fakeGoalStore {
	return &fakeGoalStore{goals: make(map[uuid.UUID]models.SavingsGoal)}
}

func (f *fakeGoalStore) Create(ctx context.Context, g *models.SavingsGoal) error {
	f.goals[g.ID] = *g
	return nil
}

func (f *fakeGoalStore) List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error) {
	out := []models.SavingsGoal{}
	for _, g := range f.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGoalStore) Contribute(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*models.SavingsGoal, error) {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, repository.ErrNotFound
	}
	g.SavedAmount = g.SavedAmount.Add(amount)
	f.goals[id] = g
	return &g, nil
}

func (f *fakeGoalStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.goals, id)
	return nil
}

// fakeDebts stores debts next to a fakeLedger so settling and reopening can
// be checked against the transactions they book.
type fakeDebts struct {
	debts  map[uuid.UUID]models.Debt
	ledger *fakeLedger
}

func newFakeDebts() *fakeDebts {
	return &fakeDebts{debts: make(map[uuid.UUID]models.Debt), ledger: newFakeLedger()}
}

func (f *fakeDebts) Create(ctx context.Context, d *models.Debt) error {
	f.debts[d.ID] = *d
	return nil
}

func (f *fakeDebts) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Debt, error) {
	d, ok := f.debts[id]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDebts) List(ctx context.Context, userID uuid.UUID, filter repository.DebtFilter) ([]models.Debt, error) {
	out := []models.Debt{}
	for _, d := range f.debts {
		if d.UserID != userID || (filter.Type != "" && d.Type != filter.Type) || (filter.Status != "" && d.Status != filter.Status) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDebts) Update(ctx context.Context, d *models.Debt) error {
	current, ok := f.debts[d.ID]
	if !ok || current.UserID != d.UserID {
		return repository.ErrNotFound
	}
	if current.Status != models.DebtStatusPending {
		return repository.ErrConflict
	}
	f.debts[d.ID] = *d
	return nil
}

func (f *fakeDebts) Delete(ctx context.Context, userID, id uuid.UUID) error {
	d, ok := f.debts[id]
	if !ok || d.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.debts, id)
	return nil
}

func (f *fakeDebts) SettleDebt(ctx context.Context, userID, debtID uuid.UUID, t models.Transaction) (*models.Debt, error) {
	d, ok := f.debts[debtID]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if d.Status != models.DebtStatusPending {
		return nil, repository.ErrConflict
	}
	f.ledger.txs[t.ID] = t
	d.Status = models.DebtStatusPaid
	d.LinkedTransactionID = &t.ID
	f.debts[debtID] = d
	return &d, nil
}

func (f *fakeDebts) ReopenDebt(ctx context.Context, userID, debtID uuid.UUID) (*models.Debt, error) {
	d, ok := f.debts[debtID]
	if !ok || d.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if d.Status != models.DebtStatusPaid {
		return nil, repository.ErrConflict
	}
	if d.LinkedTransactionID != nil {
		delete(f.ledger.txs, *d.LinkedTransactionID)
	}
	d.Status = models.DebtStatusPending
	d.LinkedTransactionID = nil
	f.debts[debtID] = d
	return &d, nil
}
