package models

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// PaymentMethod represents how a transaction was paid.
type PaymentMethod string

const (
	PaymentMethodCash          PaymentMethod = "cash"
	PaymentMethodCreditCard    PaymentMethod = "credit_card"
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodDigitalWallet PaymentMethod = "digital_wallet"
)

// Transaction represents a financial transaction in the system. Amounts are
// stored in minor currency units. TransactionDate is the economically
// relevant date, distinct from the record's CreatedAt timestamp.
type Transaction struct {
	Base
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	CategoryID      uint            `gorm:"not null;index" json:"category_id"`
	Type            TransactionType `gorm:"not null" json:"type"`
	Amount          int64           `gorm:"type:bigint;not null" json:"amount"`
	PaymentMethod   PaymentMethod   `gorm:"not null" json:"payment_method"`
	Description     string          `json:"description"`
	TransactionDate Date            `gorm:"not null;index" json:"transaction_date"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
