package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderReceived  OrderStatus = "received"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderReceived, OrderPreparing, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type Order struct {
	Base
	LocationID  uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_order_location_number"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index"`
	OrderNumber string          `gorm:"size:20;not null;uniqueIndex:idx_order_location_number"`
	Status      OrderStatus     `gorm:"size:20;not null;default:received;index"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Notes       string          `gorm:"type:text"`
	OrderDate   time.Time       `gorm:"not null;index"`
	DeliveredAt *time.Time
	CreatedBy   *uuid.UUID `gorm:"type:uuid"`

	Customer *Customer   `gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	Base
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	MenuItemID *uuid.UUID      `gorm:"type:uuid;index"`
	Quantity   int             `gorm:"not null;default:1"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0"`
	Notes      string          `gorm:"type:text"`
	Position   int             `gorm:"not null;default:0"`

	MenuItem *MenuItem `gorm:"foreignKey:MenuItemID;constraint:OnDelete:SET NULL"`
}
