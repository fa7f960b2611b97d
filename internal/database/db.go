package database

import (
	"fmt"
	"time"

	"thrive-backend/internal/config"
	"thrive-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

// Open connects to Postgres and applies the pool limits from cfg.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), Options(log))
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Info("database connected",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db, nil
}

// Options is shared with the sqlite databases used in tests so both
// dialects translate constraint errors the same way. GORM's own messages
// (failed and slow queries) go to log.
func Options(log *zap.Logger) *gorm.Config {
	gl := zapgorm2.New(log.Named("gorm"))
	gl.LogLevel = logger.Warn
	gl.SlowThreshold = slowQuery
	gl.IgnoreRecordNotFoundError = true
	return &gorm.Config{
		TranslateError: true,
		Logger:         gl,
	}
}

const slowQuery = 200 * time.Millisecond

// Models lists every table in creation order.
func Models() []any {
	return []any{
		&models.Location{},
		&models.User{},
		&models.Customer{},
		&models.FoodCategory{},
		&models.FoodType{},
		&models.Specification{},
		&models.CookType{},
		&models.Ingredient{},
		&models.IngredientQuantity{},
		&models.MenuItem{},
		&models.MenuItemPhoto{},
		&models.MenuItemIngredient{},
		&models.Order{},
		&models.OrderItem{},
		&models.AuditLog{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
