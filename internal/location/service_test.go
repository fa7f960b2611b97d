package location

import (
	"context"
	"testing"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var admin = auth.Principal{UserID: uuid.New(), Name: "Admin", Role: models.RoleAdmin}

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewService(db, zap.NewNop()), db
}

func TestCreate(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	loc, err := svc.Create(ctx, admin, CreateInput{Name: "  Downtown ", Currency: "eur", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Downtown", loc.Name)
	assert.Equal(t, "EUR", loc.Currency)
	assert.Equal(t, models.LocationActive, loc.Status)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs, "entity_id = ?", loc.ID).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)

	_, err = svc.Create(ctx, admin, CreateInput{Name: "Downtown"})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, err = svc.Create(ctx, admin, CreateInput{Name: " "})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, admin, CreateInput{Name: "Uptown", Currency: "EURO"})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, admin, CreateInput{Name: "Uptown", Status: "closed"})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestUpdate_KeepsSequences(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	loc := testutil.CreateLocation(t, db, "Harbor")
	require.NoError(t, db.Model(loc).UpdateColumn("order_seq", 7).Error)

	name := "Harbor Front"
	status := models.LocationInactive
	updated, err := svc.Update(ctx, admin, loc.ID, UpdateInput{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Harbor Front", updated.Name)
	assert.Equal(t, models.LocationInactive, updated.Status)

	var reloaded models.Location
	require.NoError(t, db.First(&reloaded, "id = ?", loc.ID).Error)
	assert.Equal(t, int64(7), reloaded.OrderSeq)
	assert.Equal(t, "USD", reloaded.Currency)

	_, err = svc.Update(ctx, admin, uuid.New(), UpdateInput{Name: &name})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestList(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	testutil.CreateLocation(t, db, "Downtown")
	testutil.CreateLocation(t, db, "Airport")
	closed := testutil.CreateLocation(t, db, "Old Town")
	require.NoError(t, db.Model(closed).Update("status", models.LocationInactive).Error)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Airport", all[0].Name)

	active, err := svc.List(ctx, Filter{Status: models.LocationActive})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	found, err := svc.List(ctx, Filter{Search: "TOWN"})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestDelete_Cascades(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	loc := testutil.CreateLocation(t, db, "Doomed")
	keep := testutil.CreateLocation(t, db, "Survivor")

	customer := testutil.CreateCustomer(t, db, loc.ID, "Ana")
	testutil.CreateCustomer(t, db, keep.ID, "Ben")

	item := models.MenuItem{LocationID: loc.ID, DisplayID: 1, Name: "Bowl"}
	require.NoError(t, db.Create(&item).Error)
	require.NoError(t, db.Create(&models.MenuItemPhoto{MenuItemID: item.ID, URL: "https://img/1.png"}).Error)

	user := models.User{LocationID: loc.ID, Email: "a@b.c", Name: "Cook", PasswordHash: "x", Role: models.RoleStaff}
	require.NoError(t, db.Create(&user).Error)

	order := models.Order{LocationID: loc.ID, CustomerID: &customer.ID, OrderNumber: "ORD-00001", OrderDate: item.CreatedAt}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Create(&models.OrderItem{OrderID: order.ID, MenuItemID: &item.ID, Quantity: 1}).Error)

	require.NoError(t, svc.Delete(ctx, loc.ID))

	count := func(model any) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where("location_id = ?", loc.ID).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&models.MenuItem{}))
	assert.Zero(t, count(&models.Customer{}))
	assert.Zero(t, count(&models.User{}))
	assert.Zero(t, count(&models.Order{}))

	var children int64
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&children).Error)
	assert.Zero(t, children)
	require.NoError(t, db.Model(&models.MenuItemPhoto{}).Count(&children).Error)
	assert.Zero(t, children)

	var others int64
	require.NoError(t, db.Model(&models.Customer{}).Where("location_id = ?", keep.ID).Count(&others).Error)
	assert.Equal(t, int64(1), others)

	err := svc.Delete(ctx, loc.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}
