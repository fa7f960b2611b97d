package models

import "github.com/google/uuid"

// FoodCategory is global reference data, never location-scoped.
type FoodCategory struct {
	Base
	Name               string `gorm:"size:100;not null;uniqueIndex"`
	DisplayOrder       int    `gorm:"not null;default:0;index"`
	ShowSpecifications bool   `gorm:"not null;default:false"`
	ShowCookTypes      bool   `gorm:"not null;default:false"`

	FoodTypes []FoodType `gorm:"foreignKey:FoodCategoryID;constraint:OnDelete:CASCADE"`
	CookTypes []CookType `gorm:"foreignKey:FoodCategoryID;constraint:OnDelete:CASCADE"`
}

type FoodType struct {
	Base
	FoodCategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_food_type_category_name"`
	Name           string    `gorm:"size:100;not null;uniqueIndex:idx_food_type_category_name"`

	FoodCategory   *FoodCategory   `gorm:"foreignKey:FoodCategoryID"`
	Specifications []Specification `gorm:"foreignKey:FoodTypeID;constraint:OnDelete:CASCADE"`
	Ingredients    []Ingredient    `gorm:"foreignKey:FoodTypeID;constraint:OnDelete:CASCADE"`
}

type Specification struct {
	Base
	FoodTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_specification_type_name"`
	Name       string    `gorm:"size:100;not null;uniqueIndex:idx_specification_type_name"`

	FoodType    *FoodType    `gorm:"foreignKey:FoodTypeID"`
	Ingredients []Ingredient `gorm:"foreignKey:SpecificationID;constraint:OnDelete:SET NULL"`
}

type CookType struct {
	Base
	FoodCategoryID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cook_type_category_name"`
	Name           string    `gorm:"size:100;not null;uniqueIndex:idx_cook_type_category_name"`

	FoodCategory *FoodCategory `gorm:"foreignKey:FoodCategoryID"`
	Ingredients  []Ingredient  `gorm:"foreignKey:CookTypeID;constraint:OnDelete:SET NULL"`
}
