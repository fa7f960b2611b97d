package customer

import (
	"context"
	"strings"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/audit"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recentOrdersLimit = 10

type CreateInput struct {
	LocationID    *uuid.UUID
	Email         *string
	Name          string
	Phone         string
	Address       string
	Notes         string
	AccountStatus models.AccountStatus
}

type UpdateInput struct {
	Email         *string
	Name          *string
	Phone         *string
	Address       *string
	Notes         *string
	AccountStatus *models.AccountStatus
}

type Filter struct {
	LocationID *uuid.UUID
	Status     models.AccountStatus
	Search     string
}

// Detail is a customer with its latest orders, newest first.
type Detail struct {
	Customer     models.Customer
	RecentOrders []models.Order
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	v := auth.NormalizeEmail(*email)
	if v == "" {
		return nil
	}
	return &v
}

func scoped(db *gorm.DB, scope *uuid.UUID) *gorm.DB {
	if scope != nil {
		return db.Where("location_id = ?", *scope)
	}
	return db
}

func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.Customer, error) {
	if in.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "customer name is required")
	}
	status := in.AccountStatus
	if status == "" {
		status = models.AccountActive
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid account status %q", status)
	}

	c := models.Customer{
		LocationID:    *in.LocationID,
		Email:         normalizeEmail(in.Email),
		Name:          name,
		Phone:         strings.TrimSpace(in.Phone),
		Address:       in.Address,
		Notes:         in.Notes,
		AccountStatus: status,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return apperr.FromDB(err, "customer")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &c.LocationID,
			Actor:       actor,
			EntityType:  "customer",
			EntityID:    c.ID,
			Action:      models.AuditActionCreate,
			Description: "customer created: " + c.Name,
			After:       ToResponse(&c),
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Get(ctx context.Context, scope *uuid.UUID, id uuid.UUID) (*Detail, error) {
	db := s.db.WithContext(ctx)

	var d Detail
	if err := scoped(db, scope).First(&d.Customer, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "customer")
	}
	if err := db.Where("customer_id = ?", id).
		Order("order_date DESC, created_at DESC").
		Limit(recentOrdersLimit).
		Find(&d.RecentOrders).Error; err != nil {
		return nil, apperr.FromDB(err, "order")
	}
	return &d, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Customer, error) {
	if f.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}

	q := s.db.WithContext(ctx).Model(&models.Customer{}).Where("location_id = ?", *f.LocationID)
	if f.Status != "" {
		q = q.Where("account_status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?", like, like, like)
	}

	var list []models.Customer
	if err := q.Order("name ASC").Find(&list).Error; err != nil {
		return nil, apperr.FromDB(err, "customer")
	}
	return list, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID, in UpdateInput) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx, scope).First(&c, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "customer")
		}
		before := ToResponse(&c)

		if in.Email != nil {
			c.Email = normalizeEmail(in.Email)
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.New(apperr.Validation, "customer name cannot be empty")
			}
			c.Name = name
		}
		if in.Phone != nil {
			c.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Address != nil {
			c.Address = *in.Address
		}
		if in.Notes != nil {
			c.Notes = *in.Notes
		}
		if in.AccountStatus != nil {
			if !in.AccountStatus.Valid() {
				return apperr.Newf(apperr.Validation, "invalid account status %q", *in.AccountStatus)
			}
			c.AccountStatus = *in.AccountStatus
		}

		// total_preps is left out so a concurrent order is never overwritten.
		if err := tx.Model(&c).Select("email", "name", "phone", "address", "notes", "account_status", "updated_at").
			Updates(&c).Error; err != nil {
			return apperr.FromDB(err, "customer")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &c.LocationID,
			Actor:       actor,
			EntityType:  "customer",
			EntityID:    c.ID,
			Action:      models.AuditActionUpdate,
			Description: "customer updated: " + c.Name,
			Before:      before,
			After:       ToResponse(&c),
		})
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the customer. Its orders stay and lose the reference.
func (s *Service) Delete(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := scoped(tx, scope).First(&c, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "customer")
		}
		if err := tx.Delete(&c).Error; err != nil {
			return apperr.FromDB(err, "customer")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &c.LocationID,
			Actor:       actor,
			EntityType:  "customer",
			EntityID:    c.ID,
			Action:      models.AuditActionDelete,
			Description: "customer deleted: " + c.Name,
			Before:      ToResponse(&c),
		})
	})
}
