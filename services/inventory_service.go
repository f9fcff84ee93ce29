package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

// overstockRatio is the fraction of maximum stock above which an overstock
// alert is emitted.
const overstockRatio = 0.9

// InventoryService is the stock ledger: item stock changes only through
// recorded transactions, and threshold crossings emit alerts.
type InventoryService struct {
	DB  *gorm.DB
	Log *zap.SugaredLogger
}

func NewInventoryService(db *gorm.DB, log *zap.SugaredLogger) *InventoryService {
	return &InventoryService{DB: db, Log: log}
}

// --- categories ---

func (s *InventoryService) ListCategories() ([]models.InventoryCategory, error) {
	var categories []models.InventoryCategory
	if err := s.DB.Where("is_active = ?", true).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *InventoryService) CreateCategory(name, description string) (*models.InventoryCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", apperrors.ErrValidation)
	}

	category := models.InventoryCategory{Name: name, Description: description, IsActive: true}
	if err := s.DB.Create(&category).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("category %q: %w", name, apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (s *InventoryService) UpdateCategory(id uint, name, description string) (*models.InventoryCategory, error) {
	var category models.InventoryCategory
	if err := s.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	updates := map[string]interface{}{}
	if name = strings.TrimSpace(name); name != "" {
		updates["name"] = name
	}
	if description != "" {
		updates["description"] = description
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&category).Updates(updates).Error; err != nil {
			if isDuplicateKeyError(err) {
				return nil, fmt.Errorf("category %q: %w", name, apperrors.ErrDuplicate)
			}
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
	}
	return &category, nil
}

func (s *InventoryService) DeleteCategory(id uint) error {
	res := s.DB.Delete(&models.InventoryCategory{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// --- items ---

// ItemInput carries item fields for create/update.
type ItemInput struct {
	CategoryID   uint            `json:"categoryId"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	Barcode      *string         `json:"barcode"`
	Unit         string          `json:"unit"`
	CurrentStock int             `json:"currentStock"`
	MinimumStock int             `json:"minimumStock"`
	MaximumStock *int            `json:"maximumStock"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
}

func (s *InventoryService) ListItems(categoryID uint) ([]models.InventoryItem, error) {
	q := s.DB.Preload("Category").Where("is_active = ?", true).Order("name ASC")
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var items []models.InventoryItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (s *InventoryService) CreateItem(in ItemInput) (*models.InventoryItem, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.SKU) == "" {
		return nil, fmt.Errorf("name and sku are required: %w", apperrors.ErrValidation)
	}

	item := models.InventoryItem{
		CategoryID:   in.CategoryID,
		Name:         strings.TrimSpace(in.Name),
		SKU:          strings.TrimSpace(in.SKU),
		Barcode:      in.Barcode,
		Unit:         in.Unit,
		CurrentStock: in.CurrentStock,
		MinimumStock: in.MinimumStock,
		MaximumStock: in.MaximumStock,
		UnitPrice:    in.UnitPrice,
		IsActive:     true,
	}
	if err := s.DB.Create(&item).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("item sku/barcode already in use: %w", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return &item, nil
}

func (s *InventoryService) UpdateItem(id uint, in ItemInput) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.DB.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("item %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	// CurrentStock is deliberately absent here: stock moves only through
	// RecordTransaction.
	updates := map[string]interface{}{
		"minimum_stock": in.MinimumStock,
		"maximum_stock": in.MaximumStock,
	}
	if strings.TrimSpace(in.Name) != "" {
		updates["name"] = strings.TrimSpace(in.Name)
	}
	if strings.TrimSpace(in.SKU) != "" {
		updates["sku"] = strings.TrimSpace(in.SKU)
	}
	if in.Barcode != nil {
		updates["barcode"] = in.Barcode
	}
	if in.Unit != "" {
		updates["unit"] = in.Unit
	}
	if in.CategoryID != 0 {
		updates["category_id"] = in.CategoryID
	}
	if !in.UnitPrice.IsZero() {
		updates["unit_price"] = in.UnitPrice
	}

	if err := s.DB.Model(&item).Updates(updates).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf("item sku/barcode already in use: %w", apperrors.ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return &item, nil
}

func (s *InventoryService) DeleteItem(id uint) error {
	res := s.DB.Delete(&models.InventoryItem{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("item %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// --- transactions ---

// StockTransactionInput carries one stock movement.
type StockTransactionInput struct {
	ItemID      uint            `json:"itemId"`
	Type        string          `json:"type"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Notes       string          `json:"notes"`
	ProcessedBy string          `json:"processedBy"`
}

// newStockFor applies the movement semantics per transaction type. Both
// adjustment and transfer overwrite the stock level with the given quantity;
// whether transfer should instead be a relative move between two items is an
// open product question.
func newStockFor(txType string, previous, quantity int) (int, error) {
	switch txType {
	case models.StockTxPurchase, models.StockTxReturn:
		return previous + quantity, nil
	case models.StockTxSale, models.StockTxDamage, models.StockTxExpiry:
		if previous < quantity {
			return 0, fmt.Errorf("stock %d below quantity %d: %w", previous, quantity, apperrors.ErrInsufficientStock)
		}
		return previous - quantity, nil
	case models.StockTxAdjustment, models.StockTxTransfer:
		return quantity, nil
	default:
		return 0, fmt.Errorf("unknown transaction type %q: %w", txType, apperrors.ErrValidation)
	}
}

// RecordTransaction applies one stock movement: it updates the item's current
// stock, records the transaction with before/after levels, and emits threshold
// alerts, all in one transaction.
func (s *InventoryService) RecordTransaction(in StockTransactionInput) (*models.InventoryTransaction, error) {
	if in.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative: %w", apperrors.ErrValidation)
	}

	var record models.InventoryTransaction
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var item models.InventoryItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, in.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("item %d: %w", in.ItemID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to load item %d: %w", in.ItemID, err)
		}
		if !item.IsActive {
			return fmt.Errorf("item %d: %w", item.ID, apperrors.ErrInactiveItem)
		}

		previous := item.CurrentStock
		newStock, err := newStockFor(in.Type, previous, in.Quantity)
		if err != nil {
			return err
		}
		if item.MaximumStock != nil && newStock > *item.MaximumStock {
			return fmt.Errorf("new stock %d above maximum %d: %w", newStock, *item.MaximumStock, apperrors.ErrMaximumStockExceeded)
		}

		if err := tx.Model(&item).Update("current_stock", newStock).Error; err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		unitPrice := in.UnitPrice
		if unitPrice.IsZero() {
			unitPrice = item.UnitPrice
		}
		record = models.InventoryTransaction{
			ItemID:        item.ID,
			Type:          in.Type,
			Quantity:      in.Quantity,
			UnitPrice:     unitPrice,
			TotalAmount:   unitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2),
			PreviousStock: previous,
			NewStock:      newStock,
			Notes:         in.Notes,
			ProcessedBy:   in.ProcessedBy,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to create inventory transaction: %w", err)
		}

		return s.emitAlerts(tx, &item, newStock)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &record, nil
}

func (s *InventoryService) emitAlerts(tx *gorm.DB, item *models.InventoryItem, newStock int) error {
	var alerts []models.InventoryAlert

	if newStock == 0 {
		alerts = append(alerts, models.InventoryAlert{
			ItemID:    item.ID,
			AlertType: models.AlertOutOfStock,
			Message:   fmt.Sprintf("%s is out of stock", item.Name),
		})
	} else if item.MinimumStock > 0 && newStock <= item.MinimumStock {
		alerts = append(alerts, models.InventoryAlert{
			ItemID:    item.ID,
			AlertType: models.AlertLowStock,
			Message:   fmt.Sprintf("%s stock %d at or below minimum %d", item.Name, newStock, item.MinimumStock),
		})
	}
	if item.MaximumStock != nil && newStock > 0 && float64(newStock) > overstockRatio*float64(*item.MaximumStock) {
		alerts = append(alerts, models.InventoryAlert{
			ItemID:    item.ID,
			AlertType: models.AlertOverstock,
			Message:   fmt.Sprintf("%s stock %d near maximum %d", item.Name, newStock, *item.MaximumStock),
		})
	}

	for i := range alerts {
		if err := tx.Create(&alerts[i]).Error; err != nil {
			return fmt.Errorf("failed to create alert: %w", err)
		}
	}
	return nil
}

// ListTransactions returns stock movements newest first, optionally for one item.
func (s *InventoryService) ListTransactions(itemID uint) ([]models.InventoryTransaction, error) {
	q := s.DB.Order("created_at DESC")
	if itemID != 0 {
		q = q.Where("item_id = ?", itemID)
	}
	var txns []models.InventoryTransaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory transactions: %w", err)
	}
	return txns, nil
}

// ListAlerts returns unresolved alerts, newest first.
func (s *InventoryService) ListAlerts() ([]models.InventoryAlert, error) {
	var alerts []models.InventoryAlert
	if err := s.DB.Where("is_resolved = ?", false).Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}
