package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TxDebit  = "debit"
	TxCredit = "credit"

	TxCategoryAccommodation = "accommodation_revenue"
	TxCategoryExtraCharges  = "extra_charges_revenue"
	TxCategoryTaxes         = "tax_revenue"
	TxCategoryOtherExpense  = "other_expense"
	TxCategoryRefunds       = "refunds"

	RefTypeBooking = "booking"
	RefTypeInvoice = "invoice"
	RefTypePayment = "payment"
	RefTypeExpense = "expense"
)

// Transaction is an immutable ledger entry for one account. Entries are never
// updated after creation; corrections arrive as compensating entries carrying
// the modification audit fields.
type Transaction struct {
	gorm.Model

	AccountID uint            `json:"accountId" gorm:"column:account_id;index"`
	Type      string          `json:"type" gorm:"type:varchar(16)"`
	Category  string          `json:"category" gorm:"type:varchar(64);index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(14,2)"`

	ReferenceID   uint   `json:"referenceId" gorm:"column:reference_id;index"`
	ReferenceType string `json:"referenceType" gorm:"column:reference_type;type:varchar(32);index"`
	ReferenceNo   string `json:"referenceNo" gorm:"column:reference_no;type:varchar(64)"`

	Description string `json:"description" gorm:"type:varchar(255)"`
	ProcessedBy string `json:"processedBy" gorm:"column:processed_by;type:varchar(128)"`

	IsModification     bool             `json:"isModification" gorm:"column:is_modification;default:false"`
	OriginalAmount     *decimal.Decimal `json:"originalAmount,omitempty" gorm:"column:original_amount;type:decimal(14,2)"`
	ModificationReason string           `json:"modificationReason,omitempty" gorm:"column:modification_reason;type:varchar(255)"`

	Account BankAccount `json:"-" gorm:"foreignKey:AccountID"`
}
