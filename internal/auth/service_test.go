package auth

import (
	"context"
	"testing"
	"time"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/config"
	"thrive-backend/internal/models"
	"thrive-backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc, err := NewService(db, config.AuthConfig{
		JWTSecret:  "0123456789abcdef0123456789abcdef",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc, db
}

func createUser(t *testing.T, svc *Service, db *gorm.DB, loc uuid.UUID, email string, role models.UserRole, status models.AccountStatus) *models.User {
	t.Helper()
	hash, err := svc.HashPassword("secret-pass")
	require.NoError(t, err)
	u := &models.User{
		LocationID:    loc,
		Email:         email,
		Name:          "Test " + string(role),
		PasswordHash:  hash,
		Role:          role,
		AccountStatus: status,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestLogin(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	loc := testutil.CreateLocation(t, db, "Downtown")
	user := createUser(t, svc, db, loc.ID, "chef@thrive.test", models.RoleManager, models.AccountActive)

	t.Run("success", func(t *testing.T) {
		p, token, err := svc.Login(ctx, "  Chef@Thrive.test ", "secret-pass", nil)
		require.NoError(t, err)
		assert.Equal(t, user.ID, p.UserID)
		assert.Equal(t, models.RoleManager, p.Role)
		assert.NotEmpty(t, token)
		assert.NotEqual(t, user.ID.String(), token)

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
		assert.NotNil(t, reloaded.LastLoginAt)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, _, errWrong := svc.Login(ctx, "chef@thrive.test", "nope", nil)
		_, _, errUnknown := svc.Login(ctx, "ghost@thrive.test", "nope", nil)

		assert.True(t, apperr.Is(errWrong, apperr.InvalidCredentials))
		assert.True(t, apperr.Is(errUnknown, apperr.InvalidCredentials))
		assert.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("inactive account", func(t *testing.T) {
		createUser(t, svc, db, loc.ID, "old@thrive.test", models.RoleAdmin, models.AccountInactive)

		_, _, err := svc.Login(ctx, "old@thrive.test", "secret-pass", nil)
		assert.True(t, apperr.Is(err, apperr.AccountInactive))

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, "email = ?", "old@thrive.test").Error)
		assert.Equal(t, models.AccountInactive, reloaded.AccountStatus, "admins are not auto-activated")
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "", "", nil)
		assert.True(t, apperr.Is(err, apperr.Validation))
	})
}

func TestLogin_SameEmailInTwoLocations(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	a := testutil.CreateLocation(t, db, "A")
	b := testutil.CreateLocation(t, db, "B")
	createUser(t, svc, db, a.ID, "shared@thrive.test", models.RoleStaff, models.AccountActive)
	ub := createUser(t, svc, db, b.ID, "shared@thrive.test", models.RoleManager, models.AccountActive)

	p, _, err := svc.Login(ctx, "shared@thrive.test", "secret-pass", &b.ID)
	require.NoError(t, err)
	assert.Equal(t, ub.ID, p.UserID)
}

func TestAuthenticate(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	loc := testutil.CreateLocation(t, db, "Downtown")
	user := createUser(t, svc, db, loc.ID, "staff@thrive.test", models.RoleStaff, models.AccountActive)

	_, token, err := svc.Login(ctx, user.Email, "secret-pass", nil)
	require.NoError(t, err)

	p, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.UserID)
	assert.Equal(t, loc.ID, p.LocationID)

	_, err = svc.Authenticate(ctx, token+"x")
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))

	_, err = svc.Authenticate(ctx, "")
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { svc.now = defaultNow }()

		_, err := svc.Authenticate(ctx, token)
		assert.True(t, apperr.Is(err, apperr.Unauthenticated))
	})

	t.Run("deactivated after login", func(t *testing.T) {
		require.NoError(t, db.Model(user).Update("account_status", models.AccountSuspended).Error)

		_, err := svc.Authenticate(ctx, token)
		assert.True(t, apperr.Is(err, apperr.Unauthenticated))
	})
}

func TestAuthorize(t *testing.T) {
	p := Principal{Role: models.RoleKitchenStaff}

	assert.NoError(t, Authorize(p, models.RoleKitchenStaff, models.RoleAdmin))
	assert.True(t, apperr.Is(Authorize(p, models.RoleAdmin, models.RoleManager), apperr.Forbidden))
}

func TestBootstrap_OnlyOnce(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	in := BootstrapInput{LocationName: "HQ", Name: "Owner", Email: "owner@thrive.test", Password: "pw"}
	p, token, err := svc.Bootstrap(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.NotEmpty(t, token)

	var loc models.Location
	require.NoError(t, db.First(&loc, "id = ?", p.LocationID).Error)
	assert.Equal(t, "USD", loc.Currency)

	_, _, err = svc.Bootstrap(ctx, in)
	assert.True(t, apperr.Is(err, apperr.Forbidden))
}

func TestResolveLocation(t *testing.T) {
	own := uuid.New()
	other := uuid.New()
	admin := Principal{Role: models.RoleAdmin, LocationID: own}
	staff := Principal{Role: models.RoleStaff, LocationID: own}

	got, err := ResolveLocation(admin, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ResolveLocation(admin, other.String())
	require.NoError(t, err)
	assert.Equal(t, other, *got)

	got, err = ResolveLocation(staff, "")
	require.NoError(t, err)
	assert.Equal(t, own, *got)

	_, err = ResolveLocation(staff, other.String())
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	_, err = ResolveLocation(staff, "not-a-uuid")
	assert.True(t, apperr.Is(err, apperr.Validation))
}
