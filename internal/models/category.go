package models

import "github.com/google/uuid"

const (
	// CategoryUncategorized receives transactions of a deleted category.
	CategoryUncategorized = "uncategorized"
	// PaymentMethodOther receives transactions of a deleted payment method.
	PaymentMethodOther = "other"
)

type Category struct {
	ID        string          `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Name      string          `db:"name"`
	Type      TransactionType `db:"type"`
	Icon      string          `db:"icon"`
	IsDefault bool            `db:"is_default"`
}

type PaymentMethod struct {
	ID        string    `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Icon      string    `db:"icon"`
	IsDefault bool      `db:"is_default"`
}

var DefaultCategories = []Category{
	{ID: "groceries", Name: "Groceries", Type: TransactionTypeExpense, Icon: "🛒", IsDefault: true},
	{ID: "transport", Name: "Transportation", Type: TransactionTypeExpense, Icon: "🚗", IsDefault: true},
	{ID: "utilities", Name: "Utilities", Type: TransactionTypeExpense, Icon: "💡", IsDefault: true},
	{ID: "entertainment", Name: "Entertainment", Type: TransactionTypeExpense, Icon: "🎬", IsDefault: true},
	{ID: "healthcare", Name: "Healthcare", Type: TransactionTypeExpense, Icon: "🏥", IsDefault: true},
	{ID: "dining", Name: "Dining", Type: TransactionTypeExpense, Icon: "🍽️", IsDefault: true},
	{ID: "shopping", Name: "Shopping", Type: TransactionTypeExpense, Icon: "🛍️", IsDefault: true},
	{ID: "salary", Name: "Salary", Type: TransactionTypeIncome, Icon: "💰", IsDefault: true},
	{ID: "freelance", Name: "Freelance", Type: TransactionTypeIncome, Icon: "💻", IsDefault: true},
	{ID: "investment", Name: "Investment", Type: TransactionTypeIncome, Icon: "📈", IsDefault: true},
	{ID: "gift", Name: "Gift", Type: TransactionTypeIncome, Icon: "🎁", IsDefault: true},
	{ID: CategoryUncategorized, Name: "Uncategorized", Type: TransactionTypeExpense, Icon: "📋", IsDefault: true},
}

var DefaultPaymentMethods = []PaymentMethod{
	{ID: "cash", Name: "Cash", Icon: "💵", IsDefault: true},
	{ID: "credit", Name: "Credit Card", Icon: "💳", IsDefault: true},
	{ID: "debit", Name: "Debit Card", Icon: "🏦", IsDefault: true},
	{ID: "transfer", Name: "Bank Transfer", Icon: "🏧", IsDefault: true},
	{ID: "digital", Name: "Digital Wallet", Icon: "📱", IsDefault: true},
	{ID: PaymentMethodOther, Name: "Other", Icon: "📋", IsDefault: true},
}
