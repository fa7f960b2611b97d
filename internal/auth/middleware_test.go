package auth

import (
	"context"
	"net/http/httptest"
	"testing"

	"thrive-backend/internal/models"
	"thrive-backend/internal/response"
	"thrive-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMiddlewareChain(t *testing.T) {
	svc, db := newTestService(t)
	loc := testutil.CreateLocation(t, db, "Downtown")
	createUser(t, svc, db, loc.ID, "kitchen@thrive.test", models.RoleKitchenStaff, models.AccountActive)
	_, token, err := svc.Login(context.Background(), "kitchen@thrive.test", "secret-pass", nil)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: response.ErrorHandler(zap.NewNop(), false)})
	api := app.Group("/api", Middleware(svc), LocationScope())
	api.Get("/scoped", func(c *fiber.Ctx) error {
		return response.OK(c, LocationFrom(c).String())
	})
	api.Get("/managers", RequireRole(models.RoleManager), func(c *fiber.Ctx) error {
		return response.OK(c, "ok")
	})

	cases := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"no header", "/api/scoped", "", 401},
		{"bad scheme", "/api/scoped", "Token " + token, 401},
		{"ok", "/api/scoped", "Bearer " + token, 200},
		{"wrong role", "/api/managers", "Bearer " + token, 403},
		{"foreign location", "/api/scoped?location_id=" + "5b0d8c1e-4b43-4f7c-9c4a-1f1e3f0b7a11", "Bearer " + token, 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
