package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	LocationID *uuid.UUID `gorm:"type:uuid;index"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"`
	UserName   string     `gorm:"size:100"`

	// "order", "menu_item", "ingredient", ...
	EntityType string      `gorm:"size:50;index"`
	EntityID   uuid.UUID   `gorm:"type:uuid;index"`
	Action     AuditAction `gorm:"size:20"`

	Description string `gorm:"size:255"`
	BeforeData  string `gorm:"type:text"`
	AfterData   string `gorm:"type:text"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
