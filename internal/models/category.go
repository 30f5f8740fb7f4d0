package models

// Category represents a transaction category. Names are unique per user.
type Category struct {
	Base
	UserID uint   `gorm:"not null;index;uniqueIndex:uq_category_user_name" json:"user_id"`
	Name   string `gorm:"not null;uniqueIndex:uq_category_user_name" json:"name"`

	Transactions []Transaction `gorm:"foreignKey:CategoryID" json:"transactions,omitempty"`
	Budgets      []Budget      `gorm:"foreignKey:CategoryID" json:"budgets,omitempty"`
}
