package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PaymentMethodCash          = "cash"
	PaymentMethodCard          = "card"
	PaymentMethodUPI           = "upi"
	PaymentMethodBankTransfer  = "bank_transfer"
	PaymentMethodOnlineGateway = "online_gateway"
	PaymentMethodCheque        = "cheque"
	PaymentMethodWallet        = "wallet"
)

// Payment is a recorded money receipt against a booking, optionally tied to an
// invoice. IdempotencyKey, when supplied by the caller, uniquely identifies the
// receipt attempt and takes precedence over the field-matched duplicate check.
type Payment struct {
	gorm.Model

	BookingID uint  `json:"bookingId" gorm:"column:booking_id;index"`
	InvoiceID *uint `json:"invoiceId,omitempty" gorm:"column:invoice_id;index"`

	Amount     decimal.Decimal `json:"amount" gorm:"type:decimal(12,2)"`
	Method     string          `json:"method" gorm:"type:varchar(32)"`
	Reference  string          `json:"reference" gorm:"type:varchar(128)"`
	ReceivedBy string          `json:"receivedBy" gorm:"column:received_by;type:varchar(128)"`
	Status     string          `json:"status" gorm:"type:varchar(32);default:completed"`

	IdempotencyKey *string `json:"idempotencyKey,omitempty" gorm:"column:idempotency_key;uniqueIndex;type:varchar(64)"`
}
