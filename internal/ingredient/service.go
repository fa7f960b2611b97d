// Package ingredient manages ingredients and their quantity/price tiers as
// one aggregate.
package ingredient

import (
	"context"
	"strings"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/audit"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuantityInput struct {
	Quantity      string
	QuantityGrams *decimal.Decimal
	Price         decimal.Decimal
	IsAvailable   *bool
}

type CreateInput struct {
	FoodTypeID      *uuid.UUID
	SpecificationID *uuid.UUID
	CookTypeID      *uuid.UUID
	Name            *string
	Description     *string
	IsActive        *bool
	Quantities      []QuantityInput
}

// UpdateInput changes only the non-nil fields. A non-nil Quantities, even
// an empty one, replaces the whole tier set.
type UpdateInput struct {
	FoodTypeID      *uuid.UUID
	SpecificationID *uuid.UUID
	CookTypeID      *uuid.UUID
	Name            *string
	Description     *string
	IsActive        *bool
	Quantities      *[]QuantityInput
}

type Filter struct {
	FoodTypeID     *uuid.UUID
	FoodCategoryID *uuid.UUID
	IsActive       *bool
	Search         string
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func orderTiers(db *gorm.DB) *gorm.DB {
	return db.Order("quantity_grams IS NULL, quantity_grams ASC, quantity ASC")
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("FoodType.FoodCategory").
		Preload("Specification").
		Preload("CookType").
		Preload("Quantities", orderTiers)
}

func exists(tx *gorm.DB, model any, id uuid.UUID, field string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return apperr.FromDB(err, field)
	}
	if n == 0 {
		return apperr.Newf(apperr.Validation, "%s does not reference an existing record", field)
	}
	return nil
}

func checkRefs(tx *gorm.DB, ing *models.Ingredient) error {
	if err := exists(tx, &models.FoodType{}, ing.FoodTypeID, "food_type_id"); err != nil {
		return err
	}
	if ing.SpecificationID != nil {
		if err := exists(tx, &models.Specification{}, *ing.SpecificationID, "specification_id"); err != nil {
			return err
		}
	}
	if ing.CookTypeID != nil {
		if err := exists(tx, &models.CookType{}, *ing.CookTypeID, "cook_type_id"); err != nil {
			return err
		}
	}
	return nil
}

// buildTiers validates the requested tiers and rejects repeated labels.
func buildTiers(ingredientID uuid.UUID, in []QuantityInput) ([]models.IngredientQuantity, error) {
	seen := make(map[string]struct{}, len(in))
	tiers := make([]models.IngredientQuantity, 0, len(in))
	for i, q := range in {
		label := strings.TrimSpace(q.Quantity)
		if label == "" {
			return nil, apperr.Newf(apperr.Validation, "quantities[%d]: quantity is required", i)
		}
		if _, dup := seen[label]; dup {
			return nil, apperr.Newf(apperr.Validation, "quantity %q appears more than once", label)
		}
		seen[label] = struct{}{}
		if q.Price.IsNegative() {
			return nil, apperr.Newf(apperr.Validation, "quantities[%d]: price cannot be negative", i)
		}

		available := true
		if q.IsAvailable != nil {
			available = *q.IsAvailable
		}
		tiers = append(tiers, models.IngredientQuantity{
			IngredientID:  ingredientID,
			Quantity:      label,
			QuantityGrams: q.QuantityGrams,
			Price:         q.Price.Round(2),
			IsAvailable:   available,
		})
	}
	return tiers, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func nilIfZero(id *uuid.UUID) *uuid.UUID {
	if id == nil || *id == uuid.Nil {
		return nil
	}
	return id
}

func (s *Service) load(tx *gorm.DB, id uuid.UUID) (*models.Ingredient, error) {
	var ing models.Ingredient
	if err := withRelations(tx).First(&ing, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "ingredient")
	}
	return &ing, nil
}

// Create inserts the ingredient and all of its tiers, or nothing.
func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.Ingredient, error) {
	if in.FoodTypeID == nil || *in.FoodTypeID == uuid.Nil {
		return nil, apperr.New(apperr.Validation, "food_type_id is required")
	}

	ing := models.Ingredient{
		FoodTypeID:      *in.FoodTypeID,
		SpecificationID: nilIfZero(in.SpecificationID),
		CookTypeID:      nilIfZero(in.CookTypeID),
		Name:            trimmed(in.Name),
		Description:     trimmed(in.Description),
		IsActive:        true,
	}
	if in.IsActive != nil {
		ing.IsActive = *in.IsActive
	}

	var out *models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(tx, &ing); err != nil {
			return err
		}
		if err := tx.Create(&ing).Error; err != nil {
			return apperr.FromDB(err, "ingredient")
		}

		tiers, err := buildTiers(ing.ID, in.Quantities)
		if err != nil {
			return err
		}
		if len(tiers) > 0 {
			if err := tx.Create(&tiers).Error; err != nil {
				return apperr.FromDB(err, "ingredient quantity")
			}
		}

		out, err = s.load(tx, ing.ID)
		if err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionCreate,
			Description: "ingredient created",
			After:       ToResponse(out),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, in UpdateInput) (*models.Ingredient, error) {
	var out *models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		before := ToResponse(current)

		ing := *current
		ing.FoodType, ing.Specification, ing.CookType, ing.Quantities = nil, nil, nil, nil

		if in.FoodTypeID != nil {
			if *in.FoodTypeID == uuid.Nil {
				return apperr.New(apperr.Validation, "food_type_id cannot be empty")
			}
			ing.FoodTypeID = *in.FoodTypeID
		}
		if in.SpecificationID != nil {
			ing.SpecificationID = nilIfZero(in.SpecificationID)
		}
		if in.CookTypeID != nil {
			ing.CookTypeID = nilIfZero(in.CookTypeID)
		}
		if in.Name != nil {
			ing.Name = trimmed(in.Name)
		}
		if in.Description != nil {
			ing.Description = trimmed(in.Description)
		}
		if in.IsActive != nil {
			ing.IsActive = *in.IsActive
		}
		if err := checkRefs(tx, &ing); err != nil {
			return err
		}

		if err := tx.Model(&ing).
			Select("food_type_id", "specification_id", "cook_type_id", "name", "description", "is_active", "updated_at").
			Updates(&ing).Error; err != nil {
			return apperr.FromDB(err, "ingredient")
		}

		if in.Quantities != nil {
			tiers, err := buildTiers(ing.ID, *in.Quantities)
			if err != nil {
				return err
			}
			if err := tx.Where("ingredient_id = ?", ing.ID).Delete(&models.IngredientQuantity{}).Error; err != nil {
				return apperr.FromDB(err, "ingredient quantity")
			}
			if len(tiers) > 0 {
				if err := tx.Create(&tiers).Error; err != nil {
					return apperr.FromDB(err, "ingredient quantity")
				}
			}
		}

		out, err = s.load(tx, ing.ID)
		if err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ingredient",
			EntityID:    ing.ID,
			Action:      models.AuditActionUpdate,
			Description: "ingredient updated",
			Before:      before,
			After:       ToResponse(out),
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Principal, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&models.Ingredient{}, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "ingredient")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "ingredient",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "ingredient deleted",
			Before:      ToResponse(current),
		})
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	return s.load(s.db.WithContext(ctx), id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Ingredient, error) {
	q := withRelations(s.db.WithContext(ctx).Model(&models.Ingredient{})).
		Joins("JOIN food_types ON food_types.id = ingredients.food_type_id").
		Joins("JOIN food_categories ON food_categories.id = food_types.food_category_id")
	if f.FoodTypeID != nil {
		q = q.Where("ingredients.food_type_id = ?", *f.FoodTypeID)
	}
	if f.FoodCategoryID != nil {
		q = q.Where("food_types.food_category_id = ?", *f.FoodCategoryID)
	}
	if f.IsActive != nil {
		q = q.Where("ingredients.is_active = ?", *f.IsActive)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(ingredients.name) LIKE ? OR LOWER(ingredients.description) LIKE ? OR LOWER(food_types.name) LIKE ?",
			like, like, like)
	}

	var list []models.Ingredient
	err := q.Order("food_categories.display_order ASC, food_types.name ASC, ingredients.name IS NULL, ingredients.name ASC").
		Find(&list).Error
	if err != nil {
		return nil, apperr.FromDB(err, "ingredient")
	}
	return list, nil
}

// ListByCategory returns every category with its food types and their
// active ingredients, tiers included.
func (s *Service) ListByCategory(ctx context.Context) ([]models.FoodCategory, error) {
	var cats []models.FoodCategory
	err := s.db.WithContext(ctx).
		Preload("FoodTypes", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("FoodTypes.Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("name IS NULL, name ASC")
		}).
		Preload("FoodTypes.Ingredients.Specification").
		Preload("FoodTypes.Ingredients.CookType").
		Preload("FoodTypes.Ingredients.Quantities", orderTiers).
		Order("display_order ASC, name ASC").
		Find(&cats).Error
	if err != nil {
		return nil, apperr.FromDB(err, "food category")
	}
	return cats, nil
}
