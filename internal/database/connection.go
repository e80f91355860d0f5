// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shopbook/shopbook-backend/internal/config"
	"github.com/shopbook/shopbook-backend/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established successfully")
	return DB, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	default:
		return logger.Info
	}
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// gen_random_uuid() lives in pgcrypto before Postgres 13
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"pgcrypto\"").Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.Account{},
		&models.SubscriptionPayment{},
		&models.Category{},
		&models.Product{},
		&models.Variant{},
		&models.Sale{},
		&models.StockReceipt{},
		&models.Expense{},
		&models.Person{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Catalog
		"CREATE INDEX IF NOT EXISTS idx_products_owner_name ON products(owner_id, name)",
		"CREATE INDEX IF NOT EXISTS idx_products_owner_category ON products(owner_id, category)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_owner_name ON categories(owner_id, name) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_variants_product_position ON variants(product_id, position)",

		// Stock movements
		"CREATE INDEX IF NOT EXISTS idx_sales_owner_sold_at ON sales(owner_id, sold_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_owner_product ON sales(owner_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_receipts_owner_received_at ON stock_receipts(owner_id, received_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_receipts_owner_product ON stock_receipts(owner_id, product_id)",

		// Books
		"CREATE INDEX IF NOT EXISTS idx_expenses_owner_spent_at ON expenses(owner_id, spent_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_people_owner_name ON people(owner_id, LOWER(name))",
		"CREATE INDEX IF NOT EXISTS idx_invoices_owner_issued_at ON invoices(owner_id, issued_at DESC)",

		// Audit
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_action ON audit_logs(user_id, action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedDemoData gives a development account a subscription and one product
// so the API can be tried right away.
func SeedDemoData(db *gorm.DB, accountID uuid.UUID) error {
	logrus.Info("Seeding demo data...")

	var account models.Account
	if err := db.Where("id = ?", accountID).First(&account).Error; err == nil {
		logrus.Info("Demo account already present, skipping seed")
		return nil
	}

	now := time.Now()
	account = models.Account{
		DisplayName:      "Demo shop",
		SubscriptionDays: 30,
		LastRenewedAt:    &now,
	}
	account.ID = accountID

	return WithTransaction(db, func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to create demo account: %w", err)
		}

		category := &models.Category{Name: "General"}
		category.OwnerID = accountID
		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("failed to create demo category: %w", err)
		}

		product := &models.Product{
			Name:     "Widget",
			Category: category.Name,
			Variants: []models.Variant{{
				ID:            uuid.New(),
				PurchasePrice: 100,
				SalePrice:     150,
				Stock:         10,
				IsOriginal:    true,
			}},
		}
		product.OwnerID = accountID
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create demo product: %w", err)
		}

		logrus.Info("Demo data seeding completed")
		return nil
	})
}

// Transaction helper
func WithTransaction(db *gorm.DB, fn func(*gorm.DB) error) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
