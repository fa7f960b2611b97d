package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Ingredient struct {
	Base
	FoodTypeID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	SpecificationID *uuid.UUID `gorm:"type:uuid;index"`
	CookTypeID      *uuid.UUID `gorm:"type:uuid;index"`
	Name            *string    `gorm:"size:150"`
	Description     *string    `gorm:"type:text"`
	IsActive        bool       `gorm:"not null"`

	FoodType      *FoodType      `gorm:"foreignKey:FoodTypeID"`
	Specification *Specification `gorm:"foreignKey:SpecificationID"`
	CookType      *CookType      `gorm:"foreignKey:CookTypeID"`

	Quantities  []IngredientQuantity `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
	MenuEntries []MenuItemIngredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:CASCADE"`
}

// IngredientQuantity is one price tier of an ingredient ("100g", "1 cup").
type IngredientQuantity struct {
	Base
	IngredientID  uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_quantity"`
	Quantity      string           `gorm:"size:50;not null;uniqueIndex:idx_ingredient_quantity"`
	QuantityGrams *decimal.Decimal `gorm:"type:numeric(10,2)"`
	Price         decimal.Decimal  `gorm:"type:numeric(10,2);not null;default:0"`
	IsAvailable   bool             `gorm:"not null"`

	MenuEntries []MenuItemIngredient `gorm:"foreignKey:IngredientQuantityID;constraint:OnDelete:SET NULL"`
}
