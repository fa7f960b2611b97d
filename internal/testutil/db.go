// Package testutil builds migrated in-memory databases and fixtures for
// package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"thrive-backend/internal/database"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewDB returns a fresh sqlite database with foreign keys enforced and the
// production schema migrated. One connection keeps the in-memory database
// alive and serializes transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared&_foreign_keys=on", name, uuid.NewString()[:8])

	db, err := gorm.Open(sqlite.Open(dsn), database.Options(zap.NewNop()))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func CreateLocation(t *testing.T, db *gorm.DB, name string) *models.Location {
	t.Helper()
	loc := &models.Location{Name: name, Currency: "USD", Status: models.LocationActive}
	require.NoError(t, db.Create(loc).Error)
	return loc
}

func CreateCustomer(t *testing.T, db *gorm.DB, locationID uuid.UUID, name string) *models.Customer {
	t.Helper()
	c := &models.Customer{LocationID: locationID, Name: name, AccountStatus: models.AccountActive}
	require.NoError(t, db.Create(c).Error)
	return c
}

func CreateFoodType(t *testing.T, db *gorm.DB, category, foodType string) (*models.FoodCategory, *models.FoodType) {
	t.Helper()
	cat := &models.FoodCategory{Name: category}
	require.NoError(t, db.Create(cat).Error)
	ft := &models.FoodType{FoodCategoryID: cat.ID, Name: foodType}
	require.NoError(t, db.Create(ft).Error)
	return cat, ft
}
