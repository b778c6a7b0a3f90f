package dto

import "github.com/shopspring/decimal"

// LedgerExport is the portable form of a user's ledger.
type LedgerExport struct {
	Version        int                     `json:"version"`
	ExportedAt     string                  `json:"exported_at"`
	Transactions   []TransactionResponse   `json:"transactions"`
	Recurring      []RecurringResponse     `json:"recurring"`
	Budgets        []BudgetResponse        `json:"budgets"`
	Categories     []CategoryResponse      `json:"categories"`
	PaymentMethods []PaymentMethodResponse `json:"payment_methods"`
}

type ImportLedgerRequest struct {
	Mode string       `json:"mode" validate:"required,oneof=merge replace"`
	Data LedgerExport `json:"data"`
}

type ImportLedgerResponse struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type BalanceQuery struct {
	From string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

// BalanceResponse sums the ledger: Net is Income minus Expense.
type BalanceResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}
