// Package menu manages menu items together with their photos and ingredient
// composition.
package menu

import (
	"context"
	"strings"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/audit"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/database"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IngredientInput struct {
	IngredientID         uuid.UUID
	IngredientQuantityID *uuid.UUID
	CustomQuantity       *string
}

type CreateInput struct {
	LocationID      *uuid.UUID
	FoodCategoryID  *uuid.UUID
	FoodTypeID      *uuid.UUID
	SpecificationID *uuid.UUID
	CookTypeID      *uuid.UUID
	Name            string
	Quantity        string
	Description     string
	Tags            string
	PrepNote        string
	Price           *decimal.Decimal
	Status          models.MenuItemStatus
	Photos          []string
	Ingredients     []IngredientInput
}

// UpdateInput changes only non-nil fields. Photos and Ingredients, when
// given, replace the stored collections.
type UpdateInput struct {
	FoodCategoryID  *uuid.UUID
	FoodTypeID      *uuid.UUID
	SpecificationID *uuid.UUID
	CookTypeID      *uuid.UUID
	Name            *string
	Quantity        *string
	Description     *string
	Tags            *string
	PrepNote        *string
	Price           *decimal.Decimal
	Status          *models.MenuItemStatus
	Photos          *[]string
	Ingredients     *[]IngredientInput
}

type Filter struct {
	LocationID     *uuid.UUID
	Status         models.MenuItemStatus
	FoodCategoryID *uuid.UUID
	FoodTypeID     *uuid.UUID
	Search         string
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("FoodCategory").
		Preload("FoodType").
		Preload("Specification").
		Preload("CookType").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("display_order ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Ingredients.Ingredient").
		Preload("Ingredients.IngredientQuantity")
}

func scoped(db *gorm.DB, scope *uuid.UUID) *gorm.DB {
	if scope != nil {
		return db.Where("location_id = ?", *scope)
	}
	return db
}

func (s *Service) load(tx *gorm.DB, scope *uuid.UUID, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := withRelations(scoped(tx, scope)).First(&item, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "menu item")
	}
	return &item, nil
}

func nilIfZero(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

func checkRef(tx *gorm.DB, model any, id *uuid.UUID, field string) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(model).Where("id = ?", *id).Count(&n).Error; err != nil {
		return apperr.FromDB(err, field)
	}
	if n == 0 {
		return apperr.Newf(apperr.Validation, "%s does not reference an existing record", field)
	}
	return nil
}

func checkTaxonomy(tx *gorm.DB, item *models.MenuItem) error {
	refs := []struct {
		model any
		id    *uuid.UUID
		field string
	}{
		{&models.FoodCategory{}, item.FoodCategoryID, "food_category_id"},
		{&models.FoodType{}, item.FoodTypeID, "food_type_id"},
		{&models.Specification{}, item.SpecificationID, "specification_id"},
		{&models.CookType{}, item.CookTypeID, "cook_type_id"},
	}
	for _, r := range refs {
		if err := checkRef(tx, r.model, r.id, r.field); err != nil {
			return err
		}
	}
	return nil
}

func validPrice(p *decimal.Decimal) (decimal.Decimal, error) {
	if p == nil {
		return decimal.Zero, nil
	}
	if p.IsNegative() {
		return decimal.Zero, apperr.New(apperr.Validation, "price cannot be negative")
	}
	return p.Round(2), nil
}

// replacePhotos deletes the item's photos and stores urls in array order.
func replacePhotos(tx *gorm.DB, itemID uuid.UUID, urls []string) error {
	if err := tx.Where("menu_item_id = ?", itemID).Delete(&models.MenuItemPhoto{}).Error; err != nil {
		return apperr.FromDB(err, "menu item photo")
	}
	if len(urls) == 0 {
		return nil
	}
	photos := make([]models.MenuItemPhoto, 0, len(urls))
	for i, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			return apperr.Newf(apperr.Validation, "photos[%d]: url is required", i)
		}
		photos = append(photos, models.MenuItemPhoto{MenuItemID: itemID, URL: u, DisplayOrder: i})
	}
	if err := tx.Create(&photos).Error; err != nil {
		return apperr.FromDB(err, "menu item photo")
	}
	return nil
}

// replaceComposition deletes the item's ingredient rows and stores the given
// ones. The same ingredient twice is rejected, as is a tier that belongs to
// a different ingredient.
func replaceComposition(tx *gorm.DB, itemID uuid.UUID, in []IngredientInput) error {
	rows := make([]models.MenuItemIngredient, 0, len(in))
	seen := make(map[uuid.UUID]struct{}, len(in))
	for i, ing := range in {
		if ing.IngredientID == uuid.Nil {
			return apperr.Newf(apperr.Validation, "ingredients[%d]: ingredient_id is required", i)
		}
		if _, dup := seen[ing.IngredientID]; dup {
			return apperr.Newf(apperr.DuplicateIngredient, "ingredient %s is listed more than once", ing.IngredientID)
		}
		seen[ing.IngredientID] = struct{}{}

		if err := checkRef(tx, &models.Ingredient{}, &ing.IngredientID, "ingredient_id"); err != nil {
			return err
		}
		tierID := nilIfZero(ing.IngredientQuantityID)
		if tierID != nil {
			var n int64
			if err := tx.Model(&models.IngredientQuantity{}).
				Where("id = ? AND ingredient_id = ?", *tierID, ing.IngredientID).
				Count(&n).Error; err != nil {
				return apperr.FromDB(err, "ingredient quantity")
			}
			if n == 0 {
				return apperr.Newf(apperr.Validation, "ingredients[%d]: ingredient_quantity_id does not belong to the ingredient", i)
			}
		}

		var custom *string
		if ing.CustomQuantity != nil {
			if v := strings.TrimSpace(*ing.CustomQuantity); v != "" {
				custom = &v
			}
		}
		rows = append(rows, models.MenuItemIngredient{
			MenuItemID:           itemID,
			IngredientID:         ing.IngredientID,
			IngredientQuantityID: tierID,
			CustomQuantity:       custom,
			Position:             i,
		})
	}

	if err := tx.Where("menu_item_id = ?", itemID).Delete(&models.MenuItemIngredient{}).Error; err != nil {
		return apperr.FromDB(err, "menu item ingredient")
	}
	if len(rows) == 0 {
		return nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperr.FromDB(err, "menu item ingredient")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.MenuItem, error) {
	if in.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "menu item name is required")
	}
	price, err := validPrice(in.Price)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.MenuItemDraft
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid menu item status %q", status)
	}

	item := models.MenuItem{
		LocationID:      *in.LocationID,
		FoodCategoryID:  nilIfZero(in.FoodCategoryID),
		FoodTypeID:      nilIfZero(in.FoodTypeID),
		SpecificationID: nilIfZero(in.SpecificationID),
		CookTypeID:      nilIfZero(in.CookTypeID),
		Name:            name,
		Quantity:        strings.TrimSpace(in.Quantity),
		Description:     in.Description,
		Tags:            strings.TrimSpace(in.Tags),
		PrepNote:        in.PrepNote,
		Price:           price,
		Status:          status,
	}

	var out *models.MenuItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkTaxonomy(tx, &item); err != nil {
			return err
		}
		seq, err := database.NextSequence(tx, item.LocationID, database.MenuItemSequence)
		if err != nil {
			return apperr.FromDB(err, "location")
		}
		item.DisplayID = seq

		if err := tx.Create(&item).Error; err != nil {
			return apperr.FromDB(err, "menu item")
		}
		if err := replacePhotos(tx, item.ID, in.Photos); err != nil {
			return err
		}
		if err := replaceComposition(tx, item.ID, in.Ingredients); err != nil {
			return err
		}

		out, err = s.load(tx, nil, item.ID)
		if err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &item.LocationID,
			Actor:       actor,
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionCreate,
			Description: "menu item created: " + item.Name,
			After:       ToResponse(out),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID, in UpdateInput) (*models.MenuItem, error) {
	var out *models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, scope, id)
		if err != nil {
			return err
		}
		before := ToResponse(current)

		item := *current
		item.FoodCategory, item.FoodType, item.Specification, item.CookType = nil, nil, nil, nil
		item.Photos, item.Ingredients = nil, nil

		if in.FoodCategoryID != nil {
			item.FoodCategoryID = nilIfZero(in.FoodCategoryID)
		}
		if in.FoodTypeID != nil {
			item.FoodTypeID = nilIfZero(in.FoodTypeID)
		}
		if in.SpecificationID != nil {
			item.SpecificationID = nilIfZero(in.SpecificationID)
		}
		if in.CookTypeID != nil {
			item.CookTypeID = nilIfZero(in.CookTypeID)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.New(apperr.Validation, "menu item name cannot be empty")
			}
			item.Name = name
		}
		if in.Quantity != nil {
			item.Quantity = strings.TrimSpace(*in.Quantity)
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.Tags != nil {
			item.Tags = strings.TrimSpace(*in.Tags)
		}
		if in.PrepNote != nil {
			item.PrepNote = *in.PrepNote
		}
		if in.Price != nil {
			price, err := validPrice(in.Price)
			if err != nil {
				return err
			}
			item.Price = price
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return apperr.Newf(apperr.Validation, "invalid menu item status %q", *in.Status)
			}
			item.Status = *in.Status
		}
		if err := checkTaxonomy(tx, &item); err != nil {
			return err
		}

		if err := tx.Model(&item).Select(
			"food_category_id", "food_type_id", "specification_id", "cook_type_id",
			"name", "quantity", "description", "tags", "prep_note", "price", "status", "updated_at",
		).Updates(&item).Error; err != nil {
			return apperr.FromDB(err, "menu item")
		}
		if in.Photos != nil {
			if err := replacePhotos(tx, item.ID, *in.Photos); err != nil {
				return err
			}
		}
		if in.Ingredients != nil {
			if err := replaceComposition(tx, item.ID, *in.Ingredients); err != nil {
				return err
			}
		}

		out, err = s.load(tx, nil, item.ID)
		if err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &item.LocationID,
			Actor:       actor,
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: "menu item updated: " + item.Name,
			Before:      before,
			After:       ToResponse(out),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleStatus flips draft to active and active to draft.
func (s *Service) ToggleStatus(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID) (*models.MenuItem, error) {
	var out *models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.MenuItem
		if err := scoped(tx, scope).First(&item, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "menu item")
		}
		from := item.Status
		next := models.MenuItemActive
		if from == models.MenuItemActive {
			next = models.MenuItemDraft
		}
		if err := tx.Model(&item).Update("status", next).Error; err != nil {
			return apperr.FromDB(err, "menu item")
		}

		var err error
		if out, err = s.load(tx, nil, id); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &item.LocationID,
			Actor:       actor,
			EntityType:  "menu_item",
			EntityID:    item.ID,
			Action:      models.AuditActionUpdate,
			Description: "menu item status: " + string(from) + " -> " + string(next),
			Before:      map[string]any{"status": from},
			After:       map[string]any{"status": next},
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, scope, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.MenuItem{}, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "menu item")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &current.LocationID,
			Actor:       actor,
			EntityType:  "menu_item",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "menu item deleted: " + current.Name,
			Before:      ToResponse(current),
		})
	})
}

func (s *Service) Get(ctx context.Context, scope *uuid.UUID, id uuid.UUID) (*models.MenuItem, error) {
	return s.load(s.db.WithContext(ctx), scope, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.MenuItem, error) {
	if f.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}

	q := withRelations(s.db.WithContext(ctx).Model(&models.MenuItem{})).
		Where("location_id = ?", *f.LocationID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.FoodCategoryID != nil {
		q = q.Where("food_category_id = ?", *f.FoodCategoryID)
	}
	if f.FoodTypeID != nil {
		q = q.Where("food_type_id = ?", *f.FoodTypeID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", like, like, like)
	}

	var items []models.MenuItem
	if err := q.Order("display_id ASC").Find(&items).Error; err != nil {
		return nil, apperr.FromDB(err, "menu item")
	}
	return items, nil
}
