package user

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

type CreateInput struct {
	LocationID    *uuid.UUID
	Email         string
	Name          string
	Password      string
	Role          models.UserRole
	AccountStatus models.AccountStatus
}

type UpdateInput struct {
	Email         *string
	Name          *string
	Password      *string
	Role          *models.UserRole
	AccountStatus *models.AccountStatus
}

type Filter struct {
	LocationID *uuid.UUID
	Role       models.UserRole
	Status     models.AccountStatus
	Search     string
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	cost int
}

func NewService(db *gorm.DB, log *zap.Logger, bcryptCost int) *Service {
	return &Service{db: db, log: log, cost: bcryptCost}
}

// snapshot is what the audit trail stores; the hash stays out of it.
func snapshot(u *models.User) map[string]any {
	return map[string]any{
		"id":             u.ID,
		"location_id":    u.LocationID,
		"email":          u.Email,
		"name":           u.Name,
		"role":           u.Role,
		"account_status": u.AccountStatus,
	}
}

// canAssign stops managers from handing out the admin role.
func canAssign(actor auth.Principal, role models.UserRole) error {
	if role == models.RoleAdmin && !actor.IsAdmin() {
		return apperr.New(apperr.Forbidden, "only admins can assign the admin role")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.User, error) {
	if in.LocationID == nil {
		return nil, apperr.New(apperr.Validation, "location_id is required")
	}
	email := auth.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" {
		return nil, apperr.New(apperr.Validation, "name and email are required")
	}
	if !in.Role.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid role %q", in.Role)
	}
	if err := canAssign(actor, in.Role); err != nil {
		return nil, err
	}
	status := in.AccountStatus
	if status == "" {
		status = models.AccountActive
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid account status %q", status)
	}

	hash, err := auth.HashPassword(in.Password, s.cost)
	if err != nil {
		return nil, err
	}

	u := models.User{
		LocationID:    *in.LocationID,
		Email:         email,
		Name:          name,
		PasswordHash:  hash,
		Role:          in.Role,
		AccountStatus: status,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &u.LocationID,
			Actor:       actor,
			EntityType:  "user",
			EntityID:    u.ID,
			Action:      models.AuditActionCreate,
			Description: "user created: " + u.Email,
			After:       snapshot(&u),
		})
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Get loads a user inside the caller's location scope; scope may be nil for
// admins working across locations.
func (s *Service) Get(ctx context.Context, scope *uuid.UUID, id uuid.UUID) (*models.User, error) {
	q := s.db.WithContext(ctx)
	if scope != nil {
		q = q.Where("location_id = ?", *scope)
	}
	var u models.User
	if err := q.First(&u, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return &u, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.User, error) {
	if f.LocationID == nil {
		return nil, apperr.New(apperr.MissingLocationFilter, "location_id is required")
	}

	q := s.db.WithContext(ctx).Model(&models.User{}).Where("location_id = ?", *f.LocationID)
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		q = q.Where("account_status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var users []models.User
	if err := q.Order("name ASC").Find(&users).Error; err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return users, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID, in UpdateInput) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if scope != nil {
			q = q.Where("location_id = ?", *scope)
		}
		if err := q.First(&u, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		before := snapshot(&u)

		if u.Role == models.RoleAdmin && !actor.IsAdmin() {
			return apperr.New(apperr.Forbidden, "only admins can modify an admin account")
		}
		if in.Email != nil {
			email := auth.NormalizeEmail(*in.Email)
			if email == "" {
				return apperr.New(apperr.Validation, "email cannot be empty")
			}
			u.Email = email
		}
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.New(apperr.Validation, "name cannot be empty")
			}
			u.Name = name
		}
		if in.Role != nil {
			if !in.Role.Valid() {
				return apperr.Newf(apperr.Validation, "invalid role %q", *in.Role)
			}
			if err := canAssign(actor, *in.Role); err != nil {
				return err
			}
			u.Role = *in.Role
		}
		if in.AccountStatus != nil {
			if !in.AccountStatus.Valid() {
				return apperr.Newf(apperr.Validation, "invalid account status %q", *in.AccountStatus)
			}
			u.AccountStatus = *in.AccountStatus
		}
		if in.Password != nil {
			hash, err := auth.HashPassword(*in.Password, s.cost)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
		}

		if err := tx.Model(&u).Select("email", "name", "role", "account_status", "password_hash", "updated_at").
			Updates(&u).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &u.LocationID,
			Actor:       actor,
			EntityType:  "user",
			EntityID:    u.ID,
			Action:      models.AuditActionUpdate,
			Description: "user updated: " + u.Email,
			Before:      before,
			After:       snapshot(&u),
		})
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Principal, scope *uuid.UUID, id uuid.UUID) error {
	if id == actor.UserID {
		return apperr.New(apperr.Validation, "you cannot delete your own account")
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if scope != nil {
			q = q.Where("location_id = ?", *scope)
		}
		var u models.User
		if err := q.First(&u, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		if u.Role == models.RoleAdmin && !actor.IsAdmin() {
			return apperr.New(apperr.Forbidden, "only admins can delete an admin account")
		}
		if err := tx.Delete(&u).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &u.LocationID,
			Actor:       actor,
			EntityType:  "user",
			EntityID:    u.ID,
			Action:      models.AuditActionDelete,
			Description: "user deleted: " + u.Email,
			Before:      snapshot(&u),
		})
	})
}
