package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/config"
	"thrive-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Principal is the authenticated caller, threaded explicitly into every
// operation that needs to know who is acting.
type Principal struct {
	UserID     uuid.UUID
	Name       string
	Email      string
	Role       models.UserRole
	LocationID uuid.UUID
}

func (p Principal) ActorID() uuid.UUID { return p.UserID }
func (p Principal) ActorName() string  { return p.Name }

func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

func principalOf(u *models.User) Principal {
	return Principal{
		UserID:     u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		LocationID: u.LocationID,
	}
}

type Service struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time

	// compared against for unknown emails so both failure paths cost one bcrypt run
	dummyHash []byte
}

func NewService(db *gorm.DB, cfg config.AuthConfig) (*Service, error) {
	pad := make([]byte, 16)
	if _, err := rand.Read(pad); err != nil {
		return nil, fmt.Errorf("seed dummy hash: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(pad, cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("seed dummy hash: %w", err)
	}

	return &Service{
		db:        db,
		secret:    []byte(cfg.JWTSecret),
		ttl:       cfg.TokenTTL,
		cost:      cfg.BcryptCost,
		now:       defaultNow,
		dummyHash: dummy,
	}, nil
}

// HashPassword hashes with the configured bcrypt cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.cost)
}

func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", apperr.New(apperr.Validation, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", apperr.Wrap(apperr.Validation, "password could not be hashed", err)
	}
	return string(hash), nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies email and password. Unknown emails and wrong passwords
// produce the same InvalidCredentials error.
func (s *Service) Login(ctx context.Context, email, password string, locationID *uuid.UUID) (Principal, string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Principal{}, "", apperr.New(apperr.Validation, "email and password are required")
	}

	q := s.db.WithContext(ctx).Where("email = ?", email)
	if locationID != nil {
		q = q.Where("location_id = ?", *locationID)
	}
	var candidates []models.User
	if err := q.Order("created_at ASC").Find(&candidates).Error; err != nil {
		return Principal{}, "", apperr.FromDB(err, "user")
	}

	invalid := apperr.New(apperr.InvalidCredentials, "invalid email or password")
	if len(candidates) == 0 {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return Principal{}, "", invalid
	}

	var user *models.User
	for i := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(candidates[i].PasswordHash), []byte(password)) == nil {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		return Principal{}, "", invalid
	}
	if user.AccountStatus != models.AccountActive {
		return Principal{}, "", apperr.New(apperr.AccountInactive, "account is not active")
	}

	now := s.now()
	if err := s.db.WithContext(ctx).Model(user).UpdateColumn("last_login_at", now).Error; err != nil {
		return Principal{}, "", apperr.FromDB(err, "user")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return Principal{}, "", apperr.Wrap(apperr.StorageFailure, "could not issue token", err)
	}
	return principalOf(user), token, nil
}

// Authenticate resolves a bearer token to an active user. Role and location
// are read from the user row so changes apply to already-issued tokens.
func (s *Service) Authenticate(ctx context.Context, token string) (Principal, error) {
	if token == "" {
		return Principal{}, apperr.New(apperr.Unauthenticated, "missing token")
	}
	userID, err := s.parseToken(token)
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.Unauthenticated, "invalid or expired token", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, apperr.New(apperr.Unauthenticated, "user no longer exists")
		}
		return Principal{}, apperr.FromDB(err, "user")
	}
	if user.AccountStatus != models.AccountActive {
		return Principal{}, apperr.New(apperr.Unauthenticated, "account is not active")
	}
	return principalOf(&user), nil
}

// Authorize fails with Forbidden unless p has one of the allowed roles.
func Authorize(p Principal, allowed ...models.UserRole) error {
	if slices.Contains(allowed, p.Role) {
		return nil
	}
	return apperr.Newf(apperr.Forbidden, "role %s is not allowed to perform this action", p.Role)
}

type BootstrapInput struct {
	LocationName string
	Currency     string
	Name         string
	Email        string
	Password     string
}

// Bootstrap creates the first location and its admin. It only succeeds while
// the users table is empty.
func (s *Service) Bootstrap(ctx context.Context, in BootstrapInput) (Principal, string, error) {
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	in.LocationName = strings.TrimSpace(in.LocationName)
	if in.Name == "" || in.Email == "" || in.Password == "" || in.LocationName == "" {
		return Principal{}, "", apperr.New(apperr.Validation, "location_name, name, email and password are required")
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return Principal{}, "", err
	}

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		if count > 0 {
			return apperr.New(apperr.Forbidden, "system is already initialized")
		}

		loc := models.Location{
			Name:     in.LocationName,
			Currency: strings.ToUpper(in.Currency),
			Status:   models.LocationActive,
		}
		if err := tx.Create(&loc).Error; err != nil {
			return apperr.FromDB(err, "location")
		}

		user = models.User{
			LocationID:    loc.ID,
			Email:         in.Email,
			Name:          in.Name,
			PasswordHash:  hash,
			Role:          models.RoleAdmin,
			AccountStatus: models.AccountActive,
		}
		if err := tx.Create(&user).Error; err != nil {
			return apperr.FromDB(err, "user")
		}
		return nil
	})
	if err != nil {
		return Principal{}, "", err
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return Principal{}, "", apperr.Wrap(apperr.StorageFailure, "could not issue token", err)
	}
	return principalOf(&user), token, nil
}

// Profile returns the caller's user row and location.
func (s *Service) Profile(ctx context.Context, p Principal) (*models.User, *models.Location, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", p.UserID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "user")
	}
	var loc models.Location
	if err := s.db.WithContext(ctx).First(&loc, "id = ?", user.LocationID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "location")
	}
	return &user, &loc, nil
}
