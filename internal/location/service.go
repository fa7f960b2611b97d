package location

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
	Name     string
	Currency string
	Type     string
	Address  string
	Phone    string
	Status   models.LocationStatus
}

type UpdateInput struct {
	Name     *string
	Currency *string
	Type     *string
	Address  *string
	Phone    *string
	Status   *models.LocationStatus
}

type Filter struct {
	Status models.LocationStatus
	Search string
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func normalizeCurrency(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD", nil
	}
	if len(code) != 3 {
		return "", apperr.New(apperr.Validation, "currency must be a 3-letter code")
	}
	return code, nil
}

func (s *Service) Create(ctx context.Context, actor auth.Principal, in CreateInput) (*models.Location, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "location name is required")
	}
	currency, err := normalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	status := in.Status
	if status == "" {
		status = models.LocationActive
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.Validation, "invalid location status %q", status)
	}

	loc := models.Location{
		Name:     name,
		Currency: currency,
		Type:     strings.TrimSpace(in.Type),
		Address:  in.Address,
		Phone:    strings.TrimSpace(in.Phone),
		Status:   status,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&loc).Error; err != nil {
			return apperr.FromDB(err, "location")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &loc.ID,
			Actor:       actor,
			EntityType:  "location",
			EntityID:    loc.ID,
			Action:      models.AuditActionCreate,
			Description: "location created: " + loc.Name,
			After:       ToResponse(&loc),
		})
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var loc models.Location
	if err := s.db.WithContext(ctx).First(&loc, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, "location")
	}
	return &loc, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]models.Location, error) {
	q := s.db.WithContext(ctx).Model(&models.Location{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var locs []models.Location
	if err := q.Order("name ASC").Find(&locs).Error; err != nil {
		return nil, apperr.FromDB(err, "location")
	}
	return locs, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Principal, id uuid.UUID, in UpdateInput) (*models.Location, error) {
	var loc models.Location
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loc, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "location")
		}
		before := ToResponse(&loc)

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.New(apperr.Validation, "location name cannot be empty")
			}
			loc.Name = name
		}
		if in.Currency != nil {
			code, err := normalizeCurrency(*in.Currency)
			if err != nil {
				return err
			}
			loc.Currency = code
		}
		if in.Type != nil {
			loc.Type = strings.TrimSpace(*in.Type)
		}
		if in.Address != nil {
			loc.Address = *in.Address
		}
		if in.Phone != nil {
			loc.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Status != nil {
			if !in.Status.Valid() {
				return apperr.Newf(apperr.Validation, "invalid location status %q", *in.Status)
			}
			loc.Status = *in.Status
		}

		// Save would rewrite the sequences with stale values.
		if err := tx.Model(&loc).Select("name", "currency", "type", "address", "phone", "status", "updated_at").
			Updates(&loc).Error; err != nil {
			return apperr.FromDB(err, "location")
		}
		return audit.WriteLog(tx, audit.LogOptions{
			LocationID:  &loc.ID,
			Actor:       actor,
			EntityType:  "location",
			EntityID:    loc.ID,
			Action:      models.AuditActionUpdate,
			Description: "location updated: " + loc.Name,
			Before:      before,
			After:       ToResponse(&loc),
		})
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Delete removes the location; menu items, customers, users, orders and audit
// entries go with it through ON DELETE CASCADE.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Location{}, "id = ?", id)
	if res.Error != nil {
		return apperr.FromDB(res.Error, "location")
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.NotFound, "location not found")
	}
	s.log.Info("location deleted", zap.String("location_id", id.String()))
	return nil
}
