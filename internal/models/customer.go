package models

import "github.com/google/uuid"

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountInactive  AccountStatus = "inactive"
	AccountSuspended AccountStatus = "suspended"
)

func (s AccountStatus) Valid() bool {
	switch s {
	case AccountActive, AccountInactive, AccountSuspended:
		return true
	}
	return false
}

// Customer.TotalPreps always equals the number of orders referencing the
// customer; it is only changed by the order aggregate.
type Customer struct {
	Base
	LocationID    uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_customer_location_email"`
	Email         *string       `gorm:"size:150;uniqueIndex:idx_customer_location_email"`
	Name          string        `gorm:"size:150;not null"`
	Phone         string        `gorm:"size:50"`
	Address       string        `gorm:"size:255"`
	Notes         string        `gorm:"type:text"`
	AccountStatus AccountStatus `gorm:"size:20;not null;default:active"`
	TotalPreps    int           `gorm:"not null;default:0"`

	Orders []Order `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL"`
}
