package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hoteldesk-backend/models"
	"hoteldesk-backend/utils"
)

// ConnectDatabase opens the MySQL connection. MYSQL_URL or DATABASE_URL wins
// when set; otherwise the DSN is assembled from the individual DB_* variables.
func ConnectDatabase(log *zap.SugaredLogger) (*gorm.DB, error) {
	dsn := os.Getenv("MYSQL_URL")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		user := utils.EnvOrDefault("DB_USER", "root")
		pass := utils.EnvOrDefault("DB_PASSWORD", "")
		host := utils.EnvOrDefault("DB_HOST", "127.0.0.1")
		port := utils.EnvOrDefault("DB_PORT", "3306")
		name := utils.EnvOrDefault("DB_NAME", "hoteldesk")
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			user, pass, host, port, name)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Infow("database connected")
	return db, nil
}

// AutoMigrate creates or updates the schema, parents before children.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
	)
}

// SeedDatabase inserts the minimum data the system needs on an empty database:
// an admin user, the tax settings row, the main account, and a starter set of
// room types with rooms. Every block is skipped when data already exists.
func SeedDatabase(db *gorm.DB, log *zap.SugaredLogger) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if userCount == 0 {
		password := utils.EnvOrDefault("ADMIN_PASSWORD", "admin1234")
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash admin password: %w", err)
		}
		admin := models.User{
			FullName: "Administrator",
			Email:    utils.EnvOrDefault("ADMIN_EMAIL", "admin@hoteldesk.local"),
			Password: string(hash),
			Role:     models.RoleAdmin,
			IsActive: true,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to seed admin user: %w", err)
		}
		log.Infow("seeded admin user", "email", admin.Email)
	}

	var settingCount int64
	if err := db.Model(&models.TaxSetting{}).Count(&settingCount).Error; err != nil {
		return fmt.Errorf("failed to count tax settings: %w", err)
	}
	if settingCount == 0 {
		setting := models.TaxSetting{
			GSTPercentage:        decimal.NewFromInt(18),
			ServiceTaxPercentage: decimal.Zero,
			TaxEnabled:           true,
		}
		if err := db.Create(&setting).Error; err != nil {
			return fmt.Errorf("failed to seed tax settings: %w", err)
		}
	}

	var mainCount int64
	if err := db.Model(&models.BankAccount{}).
		Where("is_main_account = ?", true).Count(&mainCount).Error; err != nil {
		return fmt.Errorf("failed to count main accounts: %w", err)
	}
	if mainCount == 0 {
		account := models.BankAccount{
			AccountName:   "Hotel Main Account",
			AccountType:   "main",
			Balance:       decimal.Zero,
			IsMainAccount: true,
			IsActive:      true,
		}
		if err := db.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to seed main account: %w", err)
		}
	}

	var roomTypeCount int64
	if err := db.Model(&models.RoomType{}).Count(&roomTypeCount).Error; err != nil {
		return fmt.Errorf("failed to count room types: %w", err)
	}
	if roomTypeCount == 0 {
		seedTypes := []struct {
			name    string
			price   int64
			guests  int
			numbers []string
		}{
			{"Standard", 1000, 2, []string{"101", "102", "103", "104"}},
			{"Deluxe", 2500, 3, []string{"201", "202", "203"}},
			{"Suite", 5000, 4, []string{"301", "302"}},
		}
		for _, st := range seedTypes {
			roomType := models.RoomType{
				Name:          st.name,
				PricePerNight: decimal.NewFromInt(st.price),
				Currency:      "INR",
				MaxGuests:     st.guests,
				TotalRooms:    len(st.numbers),
			}
			if err := db.Create(&roomType).Error; err != nil {
				return fmt.Errorf("failed to seed room type %s: %w", st.name, err)
			}
			for _, number := range st.numbers {
				room := models.Room{
					RoomTypeID:          roomType.ID,
					RoomNumber:          number,
					Floor:               number[:1],
					Status:              models.RoomStatusAvailable,
					AvailableForBooking: true,
				}
				if err := db.Create(&room).Error; err != nil {
					return fmt.Errorf("failed to seed room %s: %w", number, err)
				}
			}
		}
		log.Infow("seeded room types and rooms")
	}

	return nil
}
