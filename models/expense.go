package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	ExpenseStatusPending  = "pending"
	ExpenseStatusApproved = "approved"
	ExpenseStatusRejected = "rejected"
)

// ExpenseType is reference data for categorizing expenses.
type ExpenseType struct {
	gorm.Model

	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(100)"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"isActive" gorm:"column:is_active;default:true"`
}

// Expense is a recorded outflow against a user's account. Approval deducts the
// amount from both the user account and the main account.
type Expense struct {
	gorm.Model

	ExpenseTypeID uint            `json:"expenseTypeId" gorm:"column:expense_type_id;index"`
	UserID        uint            `json:"userId" gorm:"column:user_id;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Description   string          `json:"description" gorm:"type:varchar(255)"`
	Status        string          `json:"status" gorm:"type:varchar(32);default:pending"`
	ExpenseDate   time.Time       `json:"expenseDate" gorm:"column:expense_date"`

	ExpenseType ExpenseType `json:"expenseType,omitempty" gorm:"foreignKey:ExpenseTypeID"`
	User        User        `json:"-" gorm:"foreignKey:UserID"`
}
