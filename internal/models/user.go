package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleManager      UserRole = "manager"
	RoleStaff        UserRole = "staff"
	RoleKitchenStaff UserRole = "kitchen_staff"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff, RoleKitchenStaff:
		return true
	}
	return false
}

type User struct {
	Base
	LocationID    uuid.UUID     `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_location_email"`
	Email         string        `gorm:"size:150;not null;uniqueIndex:idx_user_location_email"`
	Name          string        `gorm:"size:100;not null"`
	PasswordHash  string        `gorm:"size:255;not null"`
	Role          UserRole      `gorm:"size:20;not null"`
	AccountStatus AccountStatus `gorm:"size:20;not null;default:active"`
	LastLoginAt   *time.Time
}
