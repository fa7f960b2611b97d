// Package taxonomy manages the global food reference data: categories, the
// food types and cook types under them, and the specifications under food
// types.
package taxonomy

import (
	"context"
	"strings"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name               *string
	DisplayOrder       *int
	ShowSpecifications *bool
	ShowCookTypes      *bool
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func requiredName(name *string, what string) (string, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return "", apperr.Newf(apperr.Validation, "%s name is required", what)
	}
	return strings.TrimSpace(*name), nil
}

// requireParent turns a missing parent row into a validation error rather
// than NotFound: the request is wrong, not the URL.
func requireParent(tx *gorm.DB, model any, id *uuid.UUID, field string) error {
	if id == nil || *id == uuid.Nil {
		return apperr.Newf(apperr.Validation, "%s is required", field)
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

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, entity string) error {
	res := db.WithContext(ctx).Delete(model, "id = ?", id)
	if res.Error != nil {
		return apperr.FromDB(res.Error, entity)
	}
	if res.RowsAffected == 0 {
		return apperr.Newf(apperr.NotFound, "%s not found", entity)
	}
	return nil
}

// ---- food categories ----

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*models.FoodCategory, error) {
	name, err := requiredName(in.Name, "food category")
	if err != nil {
		return nil, err
	}
	cat := models.FoodCategory{Name: name}
	if in.ShowSpecifications != nil {
		cat.ShowSpecifications = *in.ShowSpecifications
	}
	if in.ShowCookTypes != nil {
		cat.ShowCookTypes = *in.ShowCookTypes
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.DisplayOrder != nil {
			cat.DisplayOrder = *in.DisplayOrder
		} else {
			var next int
			if err := tx.Model(&models.FoodCategory{}).
				Select("COALESCE(MAX(display_order), 0) + 1").Scan(&next).Error; err != nil {
				return apperr.FromDB(err, "food category")
			}
			cat.DisplayOrder = next
		}
		if err := tx.Create(&cat).Error; err != nil {
			return apperr.FromDB(err, "food category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*models.FoodCategory, error) {
	var cat models.FoodCategory
	if err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "food category")
	}
	return &cat, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]models.FoodCategory, error) {
	var cats []models.FoodCategory
	if err := s.db.WithContext(ctx).Order("display_order ASC, name ASC").Find(&cats).Error; err != nil {
		return nil, apperr.FromDB(err, "food category")
	}
	return cats, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, in CategoryInput) (*models.FoodCategory, error) {
	var cat models.FoodCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&cat, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "food category")
		}
		if in.Name != nil {
			name, err := requiredName(in.Name, "food category")
			if err != nil {
				return err
			}
			cat.Name = name
		}
		if in.DisplayOrder != nil {
			cat.DisplayOrder = *in.DisplayOrder
		}
		if in.ShowSpecifications != nil {
			cat.ShowSpecifications = *in.ShowSpecifications
		}
		if in.ShowCookTypes != nil {
			cat.ShowCookTypes = *in.ShowCookTypes
		}
		if err := tx.Save(&cat).Error; err != nil {
			return apperr.FromDB(err, "food category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory removes the category with its food types, cook types,
// specifications and ingredients.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := deleteByID(ctx, s.db, &models.FoodCategory{}, id, "food category"); err != nil {
		return err
	}
	s.log.Info("food category deleted", zap.String("food_category_id", id.String()))
	return nil
}

// ---- food types ----

type FoodTypeInput struct {
	FoodCategoryID *uuid.UUID
	Name           *string
}

func (s *Service) CreateFoodType(ctx context.Context, in FoodTypeInput) (*models.FoodType, error) {
	name, err := requiredName(in.Name, "food type")
	if err != nil {
		return nil, err
	}
	var ft models.FoodType
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireParent(tx, &models.FoodCategory{}, in.FoodCategoryID, "food_category_id"); err != nil {
			return err
		}
		ft = models.FoodType{FoodCategoryID: *in.FoodCategoryID, Name: name}
		if err := tx.Create(&ft).Error; err != nil {
			return apperr.FromDB(err, "food type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

func (s *Service) GetFoodType(ctx context.Context, id uuid.UUID) (*models.FoodType, error) {
	var ft models.FoodType
	if err := s.db.WithContext(ctx).Preload("FoodCategory").First(&ft, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "food type")
	}
	return &ft, nil
}

func (s *Service) ListFoodTypes(ctx context.Context, categoryID *uuid.UUID) ([]models.FoodType, error) {
	q := s.db.WithContext(ctx).Model(&models.FoodType{}).
		Joins("JOIN food_categories ON food_categories.id = food_types.food_category_id")
	if categoryID != nil {
		q = q.Where("food_types.food_category_id = ?", *categoryID)
	}
	var types []models.FoodType
	if err := q.Order("food_categories.display_order ASC, food_categories.name ASC, food_types.name ASC").
		Preload("FoodCategory").Find(&types).Error; err != nil {
		return nil, apperr.FromDB(err, "food type")
	}
	return types, nil
}

func (s *Service) UpdateFoodType(ctx context.Context, id uuid.UUID, in FoodTypeInput) (*models.FoodType, error) {
	var ft models.FoodType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ft, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "food type")
		}
		if in.FoodCategoryID != nil {
			if err := requireParent(tx, &models.FoodCategory{}, in.FoodCategoryID, "food_category_id"); err != nil {
				return err
			}
			ft.FoodCategoryID = *in.FoodCategoryID
		}
		if in.Name != nil {
			name, err := requiredName(in.Name, "food type")
			if err != nil {
				return err
			}
			ft.Name = name
		}
		if err := tx.Save(&ft).Error; err != nil {
			return apperr.FromDB(err, "food type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ft, nil
}

func (s *Service) DeleteFoodType(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, s.db, &models.FoodType{}, id, "food type")
}

// ---- specifications ----

type SpecificationInput struct {
	FoodTypeID *uuid.UUID
	Name       *string
}

func (s *Service) CreateSpecification(ctx context.Context, in SpecificationInput) (*models.Specification, error) {
	name, err := requiredName(in.Name, "specification")
	if err != nil {
		return nil, err
	}
	var spec models.Specification
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireParent(tx, &models.FoodType{}, in.FoodTypeID, "food_type_id"); err != nil {
			return err
		}
		spec = models.Specification{FoodTypeID: *in.FoodTypeID, Name: name}
		if err := tx.Create(&spec).Error; err != nil {
			return apperr.FromDB(err, "specification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Service) GetSpecification(ctx context.Context, id uuid.UUID) (*models.Specification, error) {
	var spec models.Specification
	if err := s.db.WithContext(ctx).Preload("FoodType").First(&spec, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "specification")
	}
	return &spec, nil
}

func (s *Service) ListSpecifications(ctx context.Context, foodTypeID *uuid.UUID) ([]models.Specification, error) {
	q := s.db.WithContext(ctx).Model(&models.Specification{}).
		Joins("JOIN food_types ON food_types.id = specifications.food_type_id").
		Joins("JOIN food_categories ON food_categories.id = food_types.food_category_id")
	if foodTypeID != nil {
		q = q.Where("specifications.food_type_id = ?", *foodTypeID)
	}
	var specs []models.Specification
	if err := q.Order("food_categories.display_order ASC, food_categories.name ASC, food_types.name ASC, specifications.name ASC").
		Preload("FoodType").Find(&specs).Error; err != nil {
		return nil, apperr.FromDB(err, "specification")
	}
	return specs, nil
}

func (s *Service) UpdateSpecification(ctx context.Context, id uuid.UUID, in SpecificationInput) (*models.Specification, error) {
	var spec models.Specification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&spec, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "specification")
		}
		if in.FoodTypeID != nil {
			if err := requireParent(tx, &models.FoodType{}, in.FoodTypeID, "food_type_id"); err != nil {
				return err
			}
			spec.FoodTypeID = *in.FoodTypeID
		}
		if in.Name != nil {
			name, err := requiredName(in.Name, "specification")
			if err != nil {
				return err
			}
			spec.Name = name
		}
		if err := tx.Save(&spec).Error; err != nil {
			return apperr.FromDB(err, "specification")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Service) DeleteSpecification(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, s.db, &models.Specification{}, id, "specification")
}

// ---- cook types ----

type CookTypeInput struct {
	FoodCategoryID *uuid.UUID
	Name           *string
}

func (s *Service) CreateCookType(ctx context.Context, in CookTypeInput) (*models.CookType, error) {
	name, err := requiredName(in.Name, "cook type")
	if err != nil {
		return nil, err
	}
	var ct models.CookType
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireParent(tx, &models.FoodCategory{}, in.FoodCategoryID, "food_category_id"); err != nil {
			return err
		}
		ct = models.CookType{FoodCategoryID: *in.FoodCategoryID, Name: name}
		if err := tx.Create(&ct).Error; err != nil {
			return apperr.FromDB(err, "cook type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (s *Service) GetCookType(ctx context.Context, id uuid.UUID) (*models.CookType, error) {
	var ct models.CookType
	if err := s.db.WithContext(ctx).Preload("FoodCategory").First(&ct, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "cook type")
	}
	return &ct, nil
}

func (s *Service) ListCookTypes(ctx context.Context, categoryID *uuid.UUID) ([]models.CookType, error) {
	q := s.db.WithContext(ctx).Model(&models.CookType{}).
		Joins("JOIN food_categories ON food_categories.id = cook_types.food_category_id")
	if categoryID != nil {
		q = q.Where("cook_types.food_category_id = ?", *categoryID)
	}
	var types []models.CookType
	if err := q.Order("food_categories.display_order ASC, food_categories.name ASC, cook_types.name ASC").
		Preload("FoodCategory").Find(&types).Error; err != nil {
		return nil, apperr.FromDB(err, "cook type")
	}
	return types, nil
}

func (s *Service) UpdateCookType(ctx context.Context, id uuid.UUID, in CookTypeInput) (*models.CookType, error) {
	var ct models.CookType
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ct, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "cook type")
		}
		if in.FoodCategoryID != nil {
			if err := requireParent(tx, &models.FoodCategory{}, in.FoodCategoryID, "food_category_id"); err != nil {
				return err
			}
			ct.FoodCategoryID = *in.FoodCategoryID
		}
		if in.Name != nil {
			name, err := requiredName(in.Name, "cook type")
			if err != nil {
				return err
			}
			ct.Name = name
		}
		if err := tx.Save(&ct).Error; err != nil {
			return apperr.FromDB(err, "cook type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

func (s *Service) DeleteCookType(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, s.db, &models.CookType{}, id, "cook type")
}

// Tree returns every category with its food types (and their
// specifications) and cook types, all in display order.
func (s *Service) Tree(ctx context.Context) ([]models.FoodCategory, error) {
	var cats []models.FoodCategory
	err := s.db.WithContext(ctx).
		Preload("FoodTypes", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("FoodTypes.Specifications", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("CookTypes", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Order("display_order ASC, name ASC").
		Find(&cats).Error
	if err != nil {
		return nil, apperr.FromDB(err, "food category")
	}
	return cats, nil
}
