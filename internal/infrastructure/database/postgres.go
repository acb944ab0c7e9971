package database

import (
	"fmt"

	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, production bool, log *zap.Logger) (*gorm.DB, error) {
	logLevel := logger.Warn
	if production {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to PostgreSQL", zap.String("host", cfg.Host), zap.String("database", cfg.Name))
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		&entity.Organization{},
		&entity.AppUser{},

		// Catalogue and stock ledger
		&entity.Product{},
		&entity.InventoryMovement{},

		// Billing
		&entity.Customer{},
		&entity.Bill{},
		&entity.BillItem{},

		// Purchase orders shown on the dashboard
		&entity.Order{},

		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := createUnscopedIndexes(db); err != nil {
		return err
	}

	log.Info("database migrations completed")
	return nil
}

// unscopedIndexes keep keys unique for rows without an org. Postgres treats
// NULL org_id values as distinct, so the composite (org_id, ...) indexes never
// fire for them.
var unscopedIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_mobile_unscoped ON customers (mobile) WHERE org_id IS NULL`,
}

type execer interface {
	Exec(sql string, values ...interface{}) *gorm.DB
}

func createUnscopedIndexes(db execer) error {
	for _, stmt := range unscopedIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create partial index: %w", err)
		}
	}
	return nil
}
