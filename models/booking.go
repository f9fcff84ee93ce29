package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	BookingStatusConfirmed  = "confirmed"
	BookingStatusCheckedIn  = "checked_in"
	BookingStatusCheckedOut = "checked_out"
	BookingStatusCancelled  = "cancelled"

	PaymentStatusPending       = "pending"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusPaid          = "paid"
	PaymentStatusOverdue       = "overdue"
)

// Booking is a reservation with its full pricing breakdown. Amount columns are a
// snapshot of the tax calculation at booking time; they are recomputed only when
// nights or room type change.
type Booking struct {
	gorm.Model

	RoomTypeID uint  `json:"roomTypeId" gorm:"column:room_type_id;index"`
	RoomID     *uint `json:"roomId,omitempty" gorm:"column:room_id;index"`

	GuestName  string `json:"guestName" gorm:"column:guest_name;type:varchar(191)"`
	GuestEmail string `json:"guestEmail" gorm:"column:guest_email;type:varchar(191)"`
	GuestPhone string `json:"guestPhone" gorm:"column:guest_phone;type:varchar(32)"`

	CheckIn  time.Time `json:"checkIn" gorm:"column:check_in"`
	CheckOut time.Time `json:"checkOut" gorm:"column:check_out"`
	Nights   int       `json:"nights"`
	Adults   int       `json:"adults" gorm:"default:1"`
	Children int       `json:"children" gorm:"default:0"`

	OriginalAmount   decimal.Decimal `json:"originalAmount" gorm:"column:original_amount;type:decimal(12,2)"`
	DiscountAmount   decimal.Decimal `json:"discountAmount" gorm:"column:discount_amount;type:decimal(12,2)"`
	BaseAmount       decimal.Decimal `json:"baseAmount" gorm:"column:base_amount;type:decimal(12,2)"`
	GSTAmount        decimal.Decimal `json:"gstAmount" gorm:"column:gst_amount;type:decimal(12,2)"`
	ServiceTaxAmount decimal.Decimal `json:"serviceTaxAmount" gorm:"column:service_tax_amount;type:decimal(12,2)"`
	OtherTaxAmount   decimal.Decimal `json:"otherTaxAmount" gorm:"column:other_tax_amount;type:decimal(12,2)"`
	TotalTaxAmount   decimal.Decimal `json:"totalTaxAmount" gorm:"column:total_tax_amount;type:decimal(12,2)"`
	TotalAmount      decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(12,2)"`

	PromoCodeID *uint `json:"promoCodeId,omitempty" gorm:"column:promo_code_id"`

	Status        string `json:"status" gorm:"type:varchar(32);default:confirmed;index"`
	PaymentStatus string `json:"paymentStatus" gorm:"column:payment_status;type:varchar(32);default:pending"`
	PaymentMethod string `json:"paymentMethod" gorm:"column:payment_method;type:varchar(32);default:pay_at_hotel"`

	RoomType RoomType  `json:"roomType,omitempty" gorm:"foreignKey:RoomTypeID"`
	Room     *Room     `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Invoices []Invoice `json:"invoices,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	Payments []Payment `json:"payments,omitempty" gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
}
