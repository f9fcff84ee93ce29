package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hoteldesk-backend/apperrors"
	"hoteldesk-backend/models"
)

func TestNewStockFor(t *testing.T) {
	cases := []struct {
		txType   string
		previous int
		quantity int
		want     int
		wantErr  error
	}{
		{models.StockTxPurchase, 10, 5, 15, nil},
		{models.StockTxReturn, 10, 2, 12, nil},
		{models.StockTxSale, 10, 4, 6, nil},
		{models.StockTxDamage, 10, 10, 0, nil},
		{models.StockTxExpiry, 3, 5, 0, apperrors.ErrInsufficientStock},
		{models.StockTxSale, 0, 1, 0, apperrors.ErrInsufficientStock},
		{models.StockTxAdjustment, 10, 25, 25, nil},
		{models.StockTxTransfer, 10, 7, 7, nil},
		{"teleport", 10, 1, 0, apperrors.ErrValidation},
	}

	for _, tc := range cases {
		got, err := newStockFor(tc.txType, tc.previous, tc.quantity)
		if tc.wantErr != nil {
			require.ErrorIs(t, err, tc.wantErr, "type %s", tc.txType)
			continue
		}
		require.NoError(t, err, "type %s", tc.txType)
		require.Equal(t, tc.want, got, "type %s", tc.txType)
	}
}

func inventoryFixture(t *testing.T, db *gorm.DB, stock, minStock int, maxStock *int) (*InventoryService, *models.InventoryItem) {
	t.Helper()
	svc := NewInventoryService(db, testLogger())

	category, err := svc.CreateCategory("Housekeeping", "")
	require.NoError(t, err)

	item, err := svc.CreateItem(ItemInput{
		CategoryID:   category.ID,
		Name:         "Towels",
		SKU:          "TWL-001",
		Unit:         "pcs",
		CurrentStock: stock,
		MinimumStock: minStock,
		MaximumStock: maxStock,
		UnitPrice:    decimal.NewFromInt(120),
	})
	require.NoError(t, err)
	return svc, item
}

func TestRecordTransactionPurchase(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 0, nil)

	record, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:      item.ID,
		Type:        models.StockTxPurchase,
		Quantity:    15,
		ProcessedBy: "storekeeper",
	})
	require.NoError(t, err)
	require.Equal(t, 10, record.PreviousStock)
	require.Equal(t, 25, record.NewStock)
	decEq(t, "1800", record.TotalAmount) // 15 x item price 120

	var reloaded models.InventoryItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	require.Equal(t, 25, reloaded.CurrentStock)
}

func TestRecordTransactionSaleInsufficient(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 3, 0, nil)

	_, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxSale,
		Quantity: 5,
	})
	require.ErrorIs(t, err, apperrors.ErrInsufficientStock)

	// Failed movement leaves stock and the log untouched.
	var reloaded models.InventoryItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	require.Equal(t, 3, reloaded.CurrentStock)

	var count int64
	require.NoError(t, db.Model(&models.InventoryTransaction{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRecordTransactionMaximumExceeded(t *testing.T) {
	db := newTestDB(t)
	max := 20
	svc, item := inventoryFixture(t, db, 10, 0, &max)

	_, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxPurchase,
		Quantity: 15,
	})
	require.ErrorIs(t, err, apperrors.ErrMaximumStockExceeded)
}

func TestRecordTransactionLowStockAlert(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 5, nil)

	_, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxSale,
		Quantity: 6,
	})
	require.NoError(t, err)

	alerts, err := svc.ListAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertLowStock, alerts[0].AlertType)
}

func TestRecordTransactionOutOfStockAlert(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 4, 5, nil)

	_, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxDamage,
		Quantity: 4,
	})
	require.NoError(t, err)

	// Out-of-stock wins over low-stock; exactly one alert.
	alerts, err := svc.ListAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertOutOfStock, alerts[0].AlertType)
}

func TestRecordTransactionOverstockAlert(t *testing.T) {
	db := newTestDB(t)
	max := 100
	svc, item := inventoryFixture(t, db, 50, 5, &max)

	_, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxPurchase,
		Quantity: 45,
	})
	require.NoError(t, err)

	alerts, err := svc.ListAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, models.AlertOverstock, alerts[0].AlertType)
}

func TestRecordTransactionInactiveItem(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 0, nil)
	require.NoError(t, db.Model(&models.InventoryItem{}).
		Where("id = ?", item.ID).Update("is_active", false).Error)

	_, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxPurchase,
		Quantity: 5,
	})
	require.ErrorIs(t, err, apperrors.ErrInactiveItem)
}

func TestRecordTransactionAdjustmentOverwrites(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 0, nil)

	record, err := svc.RecordTransaction(StockTransactionInput{
		ItemID:   item.ID,
		Type:     models.StockTxAdjustment,
		Quantity: 42,
	})
	require.NoError(t, err)
	require.Equal(t, 42, record.NewStock)
}

func TestUpdateItemCannotTouchStock(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 0, nil)

	_, err := svc.UpdateItem(item.ID, ItemInput{
		Name:         "Bath Towels",
		CurrentStock: 999,
		MinimumStock: 3,
	})
	require.NoError(t, err)

	var reloaded models.InventoryItem
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	require.Equal(t, 10, reloaded.CurrentStock)
	require.Equal(t, 3, reloaded.MinimumStock)
	require.Equal(t, "Bath Towels", reloaded.Name)
}

func TestCreateItemDuplicateSKU(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 0, nil)

	_, err := svc.CreateItem(ItemInput{
		CategoryID: item.CategoryID,
		Name:       "Other Towels",
		SKU:        "TWL-001",
	})
	require.ErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestListTransactionsByItem(t *testing.T) {
	db := newTestDB(t)
	svc, item := inventoryFixture(t, db, 10, 0, nil)

	for _, quantity := range []int{5, 3} {
		_, err := svc.RecordTransaction(StockTransactionInput{
			ItemID:   item.ID,
			Type:     models.StockTxPurchase,
			Quantity: quantity,
		})
		require.NoError(t, err)
	}

	txns, err := svc.ListTransactions(item.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)
}
