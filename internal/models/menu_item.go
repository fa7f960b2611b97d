package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MenuItemStatus string

const (
	MenuItemDraft  MenuItemStatus = "draft"
	MenuItemActive MenuItemStatus = "active"
)

func (s MenuItemStatus) Valid() bool {
	return s == MenuItemDraft || s == MenuItemActive
}

type MenuItem struct {
	Base
	LocationID      uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_menu_item_display"`
	DisplayID       int64           `gorm:"not null;uniqueIndex:idx_menu_item_display"`
	FoodCategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	FoodTypeID      *uuid.UUID      `gorm:"type:uuid;index"`
	SpecificationID *uuid.UUID      `gorm:"type:uuid"`
	CookTypeID      *uuid.UUID      `gorm:"type:uuid"`
	Name            string          `gorm:"size:150;not null"`
	Quantity        string          `gorm:"size:100"`
	Description     string          `gorm:"type:text"`
	Tags            string          `gorm:"size:255"`
	PrepNote        string          `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Status          MenuItemStatus  `gorm:"size:20;not null;default:draft;index"`

	FoodCategory  *FoodCategory  `gorm:"foreignKey:FoodCategoryID;constraint:OnDelete:SET NULL"`
	FoodType      *FoodType      `gorm:"foreignKey:FoodTypeID;constraint:OnDelete:SET NULL"`
	Specification *Specification `gorm:"foreignKey:SpecificationID;constraint:OnDelete:SET NULL"`
	CookType      *CookType      `gorm:"foreignKey:CookTypeID;constraint:OnDelete:SET NULL"`

	Photos      []MenuItemPhoto      `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
	Ingredients []MenuItemIngredient `gorm:"foreignKey:MenuItemID;constraint:OnDelete:CASCADE"`
}

type MenuItemPhoto struct {
	Base
	MenuItemID   uuid.UUID `gorm:"type:uuid;not null;index"`
	URL          string    `gorm:"size:500;not null"`
	DisplayOrder int       `gorm:"not null;default:0"`
}

// MenuItemIngredient links a menu item to one ingredient, optionally pinned
// to a quantity tier or described by free text.
type MenuItemIngredient struct {
	Base
	MenuItemID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_menu_item_ingredient"`
	IngredientID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_menu_item_ingredient"`
	IngredientQuantityID *uuid.UUID `gorm:"type:uuid"`
	CustomQuantity       *string    `gorm:"size:100"`
	Position             int        `gorm:"not null;default:0"`

	Ingredient         *Ingredient         `gorm:"foreignKey:IngredientID"`
	IngredientQuantity *IngredientQuantity `gorm:"foreignKey:IngredientQuantityID"`
}
