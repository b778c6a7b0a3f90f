package models

// LedgerSnapshot is everything a user owns, as exported and imported.
type LedgerSnapshot struct {
	Transactions          []Transaction
	RecurringTransactions []RecurringTransaction
	Budgets               []Budget
	Categories            []Category
	PaymentMethods        []PaymentMethod
}

type ImportMode string

const (
	// ImportModeMerge keeps existing rows and inserts only unknown ids.
	ImportModeMerge ImportMode = "merge"
	// ImportModeReplace wipes the user's ledger before inserting.
	ImportModeReplace ImportMode = "replace"
)
