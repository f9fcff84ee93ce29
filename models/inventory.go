package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StockTxPurchase   = "purchase"
	StockTxSale       = "sale"
	StockTxAdjustment = "adjustment"
	StockTxReturn     = "return"
	StockTxDamage     = "damage"
	StockTxExpiry     = "expiry"
	StockTxTransfer   = "transfer"

	AlertLowStock   = "low_stock"
	AlertOutOfStock = "out_of_stock"
	AlertOverstock  = "overstock"
)

// InventoryCategory is reference data for grouping stock items.
type InventoryCategory struct {
	gorm.Model

	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(100)"`
	Description string `json:"description" gorm:"type:text"`
	IsActive    bool   `json:"isActive" gorm:"column:is_active;default:true"`
}

// InventoryItem is a physical stock item. CurrentStock is mutated only through
// inventory transactions.
type InventoryItem struct {
	gorm.Model

	CategoryID uint    `json:"categoryId" gorm:"column:category_id;index"`
	Name       string  `json:"name" gorm:"type:varchar(128)"`
	SKU        string  `json:"sku" gorm:"uniqueIndex;type:varchar(64)"`
	Barcode    *string `json:"barcode,omitempty" gorm:"uniqueIndex;type:varchar(64)"`
	Unit       string  `json:"unit" gorm:"type:varchar(32);default:pcs"`

	CurrentStock int  `json:"currentStock" gorm:"column:current_stock;default:0"`
	MinimumStock int  `json:"minimumStock" gorm:"column:minimum_stock;default:0"`
	MaximumStock *int `json:"maximumStock,omitempty" gorm:"column:maximum_stock"`

	UnitPrice decimal.Decimal `json:"unitPrice" gorm:"column:unit_price;type:decimal(12,2)"`
	IsActive  bool            `json:"isActive" gorm:"column:is_active;default:true"`

	Category InventoryCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// InventoryTransaction records one stock movement with the before/after stock levels.
type InventoryTransaction struct {
	gorm.Model

	ItemID   uint   `json:"itemId" gorm:"column:item_id;index"`
	Type     string `json:"type" gorm:"type:varchar(32);index"`
	Quantity int    `json:"quantity"`

	UnitPrice   decimal.Decimal `json:"unitPrice" gorm:"column:unit_price;type:decimal(12,2)"`
	TotalAmount decimal.Decimal `json:"totalAmount" gorm:"column:total_amount;type:decimal(12,2)"`

	PreviousStock int `json:"previousStock" gorm:"column:previous_stock"`
	NewStock      int `json:"newStock" gorm:"column:new_stock"`

	Notes       string `json:"notes" gorm:"type:varchar(255)"`
	ProcessedBy string `json:"processedBy" gorm:"column:processed_by;type:varchar(128)"`

	Item InventoryItem `json:"-" gorm:"foreignKey:ItemID"`
}

// InventoryAlert is emitted when a stock movement crosses a threshold.
type InventoryAlert struct {
	gorm.Model

	ItemID     uint   `json:"itemId" gorm:"column:item_id;index"`
	AlertType  string `json:"alertType" gorm:"column:alert_type;type:varchar(32)"`
	Message    string `json:"message" gorm:"type:varchar(255)"`
	IsResolved bool   `json:"isResolved" gorm:"column:is_resolved;default:false"`

	Item InventoryItem `json:"-" gorm:"foreignKey:ItemID"`
}
