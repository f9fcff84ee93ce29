package services

import (
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hoteldesk-backend/models"
)

var testDBSeq atomic.Int64

// newTestDB opens a fresh in-memory database with the full schema. Each test
// gets its own named memory database so state never leaks between tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:svctest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	return openTestDB(t, dsn)
}

// newConcurrentTestDB opens a file-backed database suited to tests that run
// transactions from several goroutines. Immediate transactions take the write
// lock at BEGIN, so concurrent writers queue on the busy timeout instead of
// deadlocking on a lock upgrade.
func newConcurrentTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "svctest.db")
	return openTestDB(t, "file:"+path+"?_busy_timeout=5000&_txlock=immediate")
}

func openTestDB(t *testing.T, dsn string) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TaxSetting{},
		&models.RoomType{},
		&models.Room{},
		&models.Booking{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.Payment{},
		&models.BankAccount{},
		&models.Transaction{},
		&models.ExpenseType{},
		&models.Expense{},
		&models.InventoryCategory{},
		&models.InventoryItem{},
		&models.InventoryTransaction{},
		&models.InventoryAlert{},
		&models.DeadLetter{},
	))
	return db
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func seedGSTOnly(t *testing.T, db *gorm.DB, gst int64) {
	t.Helper()
	require.NoError(t, db.Create(&models.TaxSetting{
		GSTPercentage:        decimal.NewFromInt(gst),
		ServiceTaxPercentage: decimal.Zero,
		TaxEnabled:           true,
	}).Error)
}

func seedRoomType(t *testing.T, db *gorm.DB, name string, price int64, roomNumbers ...string) *models.RoomType {
	t.Helper()
	roomType := models.RoomType{
		Name:          name,
		PricePerNight: decimal.NewFromInt(price),
		Currency:      "INR",
		MaxGuests:     2,
		TotalRooms:    len(roomNumbers),
	}
	require.NoError(t, db.Create(&roomType).Error)
	for _, number := range roomNumbers {
		require.NoError(t, db.Create(&models.Room{
			RoomTypeID:          roomType.ID,
			RoomNumber:          number,
			Status:              models.RoomStatusAvailable,
			AvailableForBooking: true,
		}).Error)
	}
	return &roomType
}

func decEq(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	require.True(t, actual.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s %v", expected, actual, msgAndArgs)
}
