package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BankAccount is a named money pool. Exactly one active account may carry
// IsMainAccount; per-user accounts are created lazily on first expense deduction.
// Balance is a maintained running total; the transaction log is the source of
// truth and drift is surfaced by the reconcile report.
type BankAccount struct {
	gorm.Model

	AccountName   string          `json:"accountName" gorm:"column:account_name;type:varchar(128)"`
	AccountType   string          `json:"accountType" gorm:"column:account_type;type:varchar(32);default:operational"`
	Balance       decimal.Decimal `json:"balance" gorm:"type:decimal(14,2)"`
	IsMainAccount bool            `json:"isMainAccount" gorm:"column:is_main_account;default:false;index"`
	IsActive      bool            `json:"isActive" gorm:"column:is_active;default:true"`

	UserID *uint `json:"userId,omitempty" gorm:"column:user_id;index"`
}
