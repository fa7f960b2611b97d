package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is whoever performed the audited change.
type Actor interface {
	ActorID() uuid.UUID
	ActorName() string
}

type LogOptions struct {
	LocationID  *uuid.UUID
	Actor       Actor
	EntityType  string
	EntityID    uuid.UUID
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records one change. Pass the transaction doing the change so the
// entry commits or rolls back with it.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	entry := models.AuditLog{
		LocationID:  opts.LocationID,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
	if opts.Actor != nil {
		id := opts.Actor.ActorID()
		if id != uuid.Nil {
			entry.UserID = &id
		}
		entry.UserName = opts.Actor.ActorName()
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

type Filter struct {
	LocationID *uuid.UUID
	EntityType string
	EntityID   *uuid.UUID
	UserID     *uuid.UUID
	Limit      int
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.LocationID != nil {
		q = q.Where("location_id = ?", *f.LocationID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var logs []models.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, apperr.FromDB(err, "audit log")
	}
	return logs, nil
}
