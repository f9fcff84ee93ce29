package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaxSetting holds the hotel-wide tax configuration. OtherTaxes is a JSON list
// of {name, percentage} entries.
type TaxSetting struct {
	gorm.Model

	GSTPercentage        decimal.Decimal `json:"gstPercentage" gorm:"column:gst_percentage;type:decimal(5,2)"`
	ServiceTaxPercentage decimal.Decimal `json:"serviceTaxPercentage" gorm:"column:service_tax_percentage;type:decimal(5,2)"`
	OtherTaxes           datatypes.JSON  `json:"otherTaxes,omitempty" gorm:"column:other_taxes"`
	TaxEnabled           bool            `json:"taxEnabled" gorm:"column:tax_enabled;default:true"`
}
