package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	InvoiceStatusPending       = "pending"
	InvoiceStatusPartiallyPaid = "partially_paid"
	InvoiceStatusPaid          = "paid"

	InvoiceItemRoomStay    = "room_stay"
	InvoiceItemExtraCharge = "extra_charge"
)

// Invoice is a billing document for a booking. A booking may carry several
// invoices (reissues); each keeps its own item list and QR payload.
type Invoice struct {
	gorm.Model

	BookingID     uint       `json:"bookingId" gorm:"column:booking_id;index"`
	InvoiceNumber string     `json:"invoiceNumber" gorm:"column:invoice_number;uniqueIndex;type:varchar(64)"`
	QRCode        string     `json:"qrCode" gorm:"column:qr_code;type:mediumtext"`
	Status        string     `json:"status" gorm:"type:varchar(32);default:pending"`
	DueDate       *time.Time `json:"dueDate,omitempty" gorm:"column:due_date"`

	BaseAmount     decimal.Decimal `json:"baseAmount" gorm:"column:base_amount;type:decimal(12,2)"`
	DiscountAmount decimal.Decimal `json:"discountAmount" gorm:"column:discount_amount;type:decimal(12,2)"`
	TaxAmount      decimal.Decimal `json:"taxAmount" gorm:"column:tax_amount;type:decimal(12,2)"`
	TotalAmount    decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(12,2)"`

	Items    []InvoiceItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments []Payment     `json:"payments,omitempty" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// InvoiceItem is one itemized line on an invoice.
type InvoiceItem struct {
	gorm.Model

	InvoiceID   uint   `json:"invoiceId" gorm:"column:invoice_id;index"`
	ItemType    string `json:"itemType" gorm:"column:item_type;type:varchar(32)"`
	Description string `json:"description" gorm:"type:varchar(255)"`
	Quantity    int    `json:"quantity" gorm:"default:1"`

	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"column:unit_price;type:decimal(12,2)"`
	Discount    decimal.Decimal `json:"discount" gorm:"type:decimal(12,2)"`
	TaxRate     decimal.Decimal `json:"taxRate" gorm:"column:tax_rate;type:decimal(5,2)"`
	TaxAmount   decimal.Decimal `json:"taxAmount" gorm:"column:tax_amount;type:decimal(12,2)"`
	FinalAmount decimal.Decimal `json:"finalAmount" gorm:"column:final_amount;type:decimal(12,2)"`
}
