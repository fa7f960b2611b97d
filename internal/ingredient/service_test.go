package ingredient

import (
	"context"
	"errors"
	"testing"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var manager = auth.Principal{UserID: uuid.New(), Name: "Manager", Role: models.RoleManager}

func ptr[T any](v T) *T { return &v }

func newService(t *testing.T) (*Service, *gorm.DB, *models.FoodType) {
	t.Helper()
	db := testutil.NewDB(t)
	_, ft := testutil.CreateFoodType(t, db, "Meat", "Beef")
	return NewService(db, zap.NewNop()), db, ft
}

func tier(label, price string) QuantityInput {
	return QuantityInput{Quantity: label, Price: decimal.RequireFromString(price)}
}

func labels(ing *models.Ingredient) []string {
	out := make([]string, 0, len(ing.Quantities))
	for _, q := range ing.Quantities {
		out = append(out, q.Quantity)
	}
	return out
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestCreate_PersistsAllTiers(t *testing.T) {
	svc, db, ft := newService(t)
	ctx := context.Background()

	ing, err := svc.Create(ctx, manager, CreateInput{
		FoodTypeID: &ft.ID,
		Name:       ptr("Ground beef"),
		Quantities: []QuantityInput{tier("100g", "3.5"), tier("200g", "6"), tier("1 lb", "12.99")},
	})
	require.NoError(t, err)
	assert.True(t, ing.IsActive)
	require.Len(t, ing.Quantities, 3)
	assert.Equal(t, "Beef", ing.FoodType.Name)
	assert.Equal(t, "Meat", ing.FoodType.FoodCategory.Name)

	assert.Equal(t, int64(3), countRows(t, db, &models.IngredientQuantity{}))
	assert.ElementsMatch(t, []string{"100g", "200g", "1 lb"}, labels(ing))
	for _, q := range ing.Quantities {
		assert.Equal(t, ing.ID, q.IngredientID)
		assert.True(t, q.IsAvailable)
	}

	res := ToResponse(ing)
	prices := map[string]string{}
	for _, q := range res.Quantities {
		prices[q.Quantity] = q.Price
	}
	assert.Equal(t, "6.00", prices["200g"])
}

func TestCreate_Validation(t *testing.T) {
	svc, db, ft := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, manager, CreateInput{Name: ptr("No type")})
	assert.True(t, apperr.Is(err, apperr.Validation))

	missing := uuid.New()
	_, err = svc.Create(ctx, manager, CreateInput{FoodTypeID: &missing})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, manager, CreateInput{FoodTypeID: &ft.ID, SpecificationID: &missing})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, manager, CreateInput{
		FoodTypeID: &ft.ID,
		Quantities: []QuantityInput{tier("100g", "1"), tier("100g", "2")},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, manager, CreateInput{
		FoodTypeID: &ft.ID,
		Quantities: []QuantityInput{tier("100g", "1"), tier("  ", "2")},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	// the ingredient row was inserted before the tiers failed; nothing survives
	assert.Zero(t, countRows(t, db, &models.Ingredient{}))
	assert.Zero(t, countRows(t, db, &models.IngredientQuantity{}))
	assert.Zero(t, countRows(t, db, &models.AuditLog{}))
}

func TestCreate_InactiveIsPersisted(t *testing.T) {
	svc, _, ft := newService(t)
	ctx := context.Background()

	ing, err := svc.Create(ctx, manager, CreateInput{FoodTypeID: &ft.ID, IsActive: ptr(false)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, ing.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUpdate_Quantities(t *testing.T) {
	svc, db, ft := newService(t)
	ctx := context.Background()

	ing, err := svc.Create(ctx, manager, CreateInput{
		FoodTypeID: &ft.ID,
		Name:       ptr("Steak"),
		Quantities: []QuantityInput{tier("small", "10"), tier("large", "20")},
	})
	require.NoError(t, err)
	oldIDs := map[uuid.UUID]bool{}
	for _, q := range ing.Quantities {
		oldIDs[q.ID] = true
	}

	t.Run("omitted keeps tiers", func(t *testing.T) {
		got, err := svc.Update(ctx, manager, ing.ID, UpdateInput{Description: ptr("dry aged")})
		require.NoError(t, err)
		assert.Equal(t, "Steak", *got.Name)
		assert.Equal(t, "dry aged", *got.Description)
		assert.ElementsMatch(t, []string{"small", "large"}, labels(got))
	})

	t.Run("supplied set replaces everything", func(t *testing.T) {
		replacement := []QuantityInput{tier("large", "22"), tier("xl", "30"), tier("family", "55")}
		got, err := svc.Update(ctx, manager, ing.ID, UpdateInput{Quantities: &replacement})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"large", "xl", "family"}, labels(got))
		for _, q := range got.Quantities {
			assert.False(t, oldIDs[q.ID], "tier %s kept an old row", q.Quantity)
		}
		assert.Equal(t, int64(3), countRows(t, db, &models.IngredientQuantity{}))
	})

	t.Run("duplicate labels roll back", func(t *testing.T) {
		bad := []QuantityInput{tier("a", "1"), tier("a", "1")}
		_, err := svc.Update(ctx, manager, ing.ID, UpdateInput{Name: ptr("Renamed"), Quantities: &bad})
		assert.True(t, apperr.Is(err, apperr.Validation))

		got, err := svc.Get(ctx, ing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Steak", *got.Name)
		assert.Len(t, got.Quantities, 3)
	})

	t.Run("failed tier insert keeps the old tiers", func(t *testing.T) {
		require.NoError(t, db.Callback().Create().Before("gorm:create").Register("test:fail_tiers", func(tx *gorm.DB) {
			if tx.Statement.Table == "ingredient_quantities" {
				_ = tx.AddError(errors.New("disk full"))
			}
		}))
		defer func() { _ = db.Callback().Create().Remove("test:fail_tiers") }()

		replacement := []QuantityInput{tier("tiny", "1")}
		_, err := svc.Update(ctx, manager, ing.ID, UpdateInput{Name: ptr("Renamed"), Quantities: &replacement})
		assert.True(t, apperr.Is(err, apperr.StorageFailure))

		got, err := svc.Get(ctx, ing.ID)
		require.NoError(t, err)
		assert.Equal(t, "Steak", *got.Name)
		assert.ElementsMatch(t, []string{"large", "xl", "family"}, labels(got))
	})

	t.Run("empty set clears tiers", func(t *testing.T) {
		empty := []QuantityInput{}
		got, err := svc.Update(ctx, manager, ing.ID, UpdateInput{Quantities: &empty})
		require.NoError(t, err)
		assert.Empty(t, got.Quantities)
		assert.Zero(t, countRows(t, db, &models.IngredientQuantity{}))
	})

	_, err = svc.Update(ctx, manager, uuid.New(), UpdateInput{Name: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDelete(t *testing.T) {
	svc, db, ft := newService(t)
	ctx := context.Background()

	ing, err := svc.Create(ctx, manager, CreateInput{FoodTypeID: &ft.ID, Quantities: []QuantityInput{tier("1", "1")}})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, manager, ing.ID))
	assert.Zero(t, countRows(t, db, &models.Ingredient{}))
	assert.Zero(t, countRows(t, db, &models.IngredientQuantity{}))

	assert.True(t, apperr.Is(svc.Delete(ctx, manager, ing.ID), apperr.NotFound))
}

func TestListAndGroup(t *testing.T) {
	svc, db, beef := newService(t)
	ctx := context.Background()
	_, carrot := testutil.CreateFoodType(t, db, "Veg", "Carrot")

	_, err := svc.Create(ctx, manager, CreateInput{FoodTypeID: &beef.ID, Name: ptr("Brisket")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, manager, CreateInput{FoodTypeID: &beef.ID, Name: ptr("Old cut"), IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, manager, CreateInput{FoodTypeID: &carrot.ID, Name: ptr("Baby carrot")})
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := svc.List(ctx, Filter{IsActive: ptr(true), FoodCategoryID: &beef.FoodCategoryID})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Brisket", *active[0].Name)

	found, err := svc.List(ctx, Filter{Search: "CARROT"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	groups, err := svc.ListByCategory(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, cat := range groups {
		require.Len(t, cat.FoodTypes, 1)
		assert.Len(t, cat.FoodTypes[0].Ingredients, 1, "only active ingredients are grouped")
	}
}
