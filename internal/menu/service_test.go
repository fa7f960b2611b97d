package menu

import (
	"context"
	"encoding/json"
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

type fixture struct {
	svc      *Service
	db       *gorm.DB
	loc      *models.Location
	foodType *models.FoodType
	beef     *models.Ingredient
	onion    *models.Ingredient
	beefTier *models.IngredientQuantity
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testutil.NewDB(t)
	loc := testutil.CreateLocation(t, db, "Downtown")
	_, ft := testutil.CreateFoodType(t, db, "Meat", "Beef")

	beef := &models.Ingredient{FoodTypeID: ft.ID, Name: ptr("Beef patty"), IsActive: true}
	onion := &models.Ingredient{FoodTypeID: ft.ID, Name: ptr("Onion"), IsActive: true}
	require.NoError(t, db.Create(beef).Error)
	require.NoError(t, db.Create(onion).Error)
	tier := &models.IngredientQuantity{IngredientID: beef.ID, Quantity: "150g", Price: decimal.NewFromInt(4), IsAvailable: true}
	require.NoError(t, db.Create(tier).Error)

	return fixture{
		svc:      NewService(db, zap.NewNop()),
		db:       db,
		loc:      loc,
		foodType: ft,
		beef:     beef,
		onion:    onion,
		beefTier: tier,
	}
}

func (f fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCreate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, manager, CreateInput{
		LocationID: &f.loc.ID,
		FoodTypeID: &f.foodType.ID,
		Name:       "Burger",
		Price:      ptr(decimal.RequireFromString("12.5")),
		Photos:     []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		Ingredients: []IngredientInput{
			{IngredientID: f.beef.ID, IngredientQuantityID: &f.beefTier.ID},
			{IngredientID: f.onion.ID, CustomQuantity: ptr("a few rings")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), item.DisplayID)
	assert.Equal(t, models.MenuItemDraft, item.Status)
	assert.Equal(t, "Beef", item.FoodType.Name)
	require.Len(t, item.Photos, 2)
	assert.Equal(t, "https://cdn/a.jpg", item.Photos[0].URL)
	assert.Equal(t, 0, item.Photos[0].DisplayOrder)
	assert.Equal(t, 1, item.Photos[1].DisplayOrder)
	require.Len(t, item.Ingredients, 2)
	assert.Equal(t, "150g", item.Ingredients[0].IngredientQuantity.Quantity)
	assert.Equal(t, "a few rings", *item.Ingredients[1].CustomQuantity)

	res := ToResponse(item)
	assert.Equal(t, "12.50", res.Price)
	assert.Equal(t, "4.00", *res.Ingredients[0].Price)

	second, err := f.svc.Create(ctx, manager, CreateInput{LocationID: &f.loc.ID, Name: "Fries"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.DisplayID)
	assert.True(t, second.Price.IsZero())
}

func TestCreate_RejectsBadComposition(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, manager, CreateInput{
		LocationID: &f.loc.ID,
		Name:       "Double",
		Photos:     []string{"https://cdn/a.jpg"},
		Ingredients: []IngredientInput{
			{IngredientID: f.beef.ID},
			{IngredientID: f.beef.ID, CustomQuantity: ptr("extra")},
		},
	})
	assert.True(t, apperr.Is(err, apperr.DuplicateIngredient))

	_, err = f.svc.Create(ctx, manager, CreateInput{
		LocationID:  &f.loc.ID,
		Name:        "Wrong tier",
		Ingredients: []IngredientInput{{IngredientID: f.onion.ID, IngredientQuantityID: &f.beefTier.ID}},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = f.svc.Create(ctx, manager, CreateInput{
		LocationID:  &f.loc.ID,
		Name:        "Ghost",
		Ingredients: []IngredientInput{{IngredientID: uuid.New()}},
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = f.svc.Create(ctx, manager, CreateInput{Name: "Nowhere"})
	assert.True(t, apperr.Is(err, apperr.MissingLocationFilter))

	assert.Zero(t, f.count(t, &models.MenuItem{}))
	assert.Zero(t, f.count(t, &models.MenuItemPhoto{}))
	assert.Zero(t, f.count(t, &models.MenuItemIngredient{}))

	// failed creates hand their display ids back
	item, err := f.svc.Create(ctx, manager, CreateInput{LocationID: &f.loc.ID, Name: "First real"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), item.DisplayID)
}

func TestUpdate_ReplacesCollections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, manager, CreateInput{
		LocationID:  &f.loc.ID,
		Name:        "Burger",
		Photos:      []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		Ingredients: []IngredientInput{{IngredientID: f.beef.ID}},
	})
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, manager, &f.loc.ID, item.ID, UpdateInput{Name: ptr("Cheeseburger")})
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", got.Name)
	assert.Len(t, got.Photos, 2)
	assert.Len(t, got.Ingredients, 1)
	assert.Equal(t, item.DisplayID, got.DisplayID)

	photos := []string{"https://cdn/c.jpg"}
	ings := []IngredientInput{{IngredientID: f.onion.ID}, {IngredientID: f.beef.ID, IngredientQuantityID: &f.beefTier.ID}}
	got, err = f.svc.Update(ctx, manager, &f.loc.ID, item.ID, UpdateInput{Photos: &photos, Ingredients: &ings})
	require.NoError(t, err)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "https://cdn/c.jpg", got.Photos[0].URL)
	assert.Equal(t, 0, got.Photos[0].DisplayOrder)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, f.onion.ID, got.Ingredients[0].IngredientID)
	assert.Equal(t, int64(1), f.count(t, &models.MenuItemPhoto{}))

	dup := []IngredientInput{{IngredientID: f.onion.ID}, {IngredientID: f.onion.ID}}
	_, err = f.svc.Update(ctx, manager, &f.loc.ID, item.ID, UpdateInput{Name: ptr("Broken"), Ingredients: &dup})
	assert.True(t, apperr.Is(err, apperr.DuplicateIngredient))

	after, err := f.svc.Get(ctx, &f.loc.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cheeseburger", after.Name)
	assert.Len(t, after.Ingredients, 2)

	other := uuid.New()
	_, err = f.svc.Update(ctx, manager, &other, item.ID, UpdateInput{Name: ptr("x")})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUpdate_NullClearsReference(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, manager, CreateInput{
		LocationID:     &f.loc.ID,
		FoodCategoryID: &f.foodType.FoodCategoryID,
		FoodTypeID:     &f.foodType.ID,
		Name:           "Burger",
	})
	require.NoError(t, err)
	require.NotNil(t, item.FoodTypeID)

	var body UpdateMenuItemRequest
	require.NoError(t, json.Unmarshal([]byte(`{"food_type_id": null, "name": "Plain burger"}`), &body))
	got, err := f.svc.Update(ctx, manager, &f.loc.ID, item.ID, UpdateInput{
		FoodCategoryID: body.FoodCategoryID.Patch(),
		FoodTypeID:     body.FoodTypeID.Patch(),
		Name:           body.Name,
	})
	require.NoError(t, err)
	assert.Nil(t, got.FoodTypeID)
	require.NotNil(t, got.FoodCategoryID, "absent field is left alone")
	assert.Equal(t, f.foodType.FoodCategoryID, *got.FoodCategoryID)
	assert.Equal(t, "Plain burger", got.Name)
}

func TestToggleStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	item, err := f.svc.Create(ctx, manager, CreateInput{LocationID: &f.loc.ID, Name: "Soup"})
	require.NoError(t, err)
	require.Equal(t, models.MenuItemDraft, item.Status)

	once, err := f.svc.ToggleStatus(ctx, manager, nil, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MenuItemActive, once.Status)

	twice, err := f.svc.ToggleStatus(ctx, manager, nil, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MenuItemDraft, twice.Status)

	_, err = f.svc.ToggleStatus(ctx, manager, nil, uuid.New())
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestListAndDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	elsewhere := testutil.CreateLocation(t, f.db, "Airport")

	soup, err := f.svc.Create(ctx, manager, CreateInput{
		LocationID: &f.loc.ID, Name: "Tomato soup", Status: models.MenuItemActive,
		Photos: []string{"https://cdn/s.jpg"},
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, manager, CreateInput{LocationID: &f.loc.ID, Name: "Salad", Tags: "vegan,SOUP-free"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, manager, CreateInput{LocationID: &elsewhere.ID, Name: "Airport soup"})
	require.NoError(t, err)

	_, err = f.svc.List(ctx, Filter{})
	assert.True(t, apperr.Is(err, apperr.MissingLocationFilter))

	all, err := f.svc.List(ctx, Filter{LocationID: &f.loc.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Tomato soup", all[0].Name)

	active, err := f.svc.List(ctx, Filter{LocationID: &f.loc.ID, Status: models.MenuItemActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	soups, err := f.svc.List(ctx, Filter{LocationID: &f.loc.ID, Search: "soup"})
	require.NoError(t, err)
	assert.Len(t, soups, 2)

	_, err = f.svc.Get(ctx, &elsewhere.ID, soup.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	require.NoError(t, f.svc.Delete(ctx, manager, &f.loc.ID, soup.ID))
	assert.Zero(t, f.count(t, &models.MenuItemPhoto{}))
	assert.True(t, apperr.Is(f.svc.Delete(ctx, manager, &f.loc.ID, soup.ID), apperr.NotFound))
}
