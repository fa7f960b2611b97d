package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"thrive-backend/internal/auth"
	"thrive-backend/internal/config"
	"thrive-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   *int            `json:"count"`
}

type client struct {
	t        *testing.T
	app      *fiber.App
	token    string
	location string
}

func newClient(t *testing.T) *client {
	t.Helper()
	return newClientWith(t, zap.NewNop(), nil)
}

func newClientWith(t *testing.T, log *zap.Logger, tweak func(*config.Config)) *client {
	t.Helper()
	cfg := config.Defaults()
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.Auth.BcryptCost = 4
	if tweak != nil {
		tweak(cfg)
	}

	app, err := New(cfg, log, testutil.NewDB(t), time.UTC)
	require.NoError(t, err)
	return &client{t: t, app: app}
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.location != "" {
		req.Header.Set(auth.LocationHeader, c.location)
	}

	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (c *client) decode(env envelope, v any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(env.Data, v))
}

func (c *client) bootstrap() {
	c.t.Helper()
	status, env := c.do("POST", "/api/auth/bootstrap", map[string]string{
		"location_name": "Downtown",
		"name":          "Owner",
		"email":         "owner@thrive.test",
		"password":      "owner-pass",
	})
	require.Equal(c.t, fiber.StatusCreated, status, env.Error)

	var out struct {
		Token string `json:"token"`
		User  struct {
			LocationID string `json:"location_id"`
		} `json:"user"`
	}
	c.decode(env, &out)
	c.token = out.Token
	c.location = out.User.LocationID
}

func TestBootstrapAndAuth(t *testing.T) {
	c := newClient(t)

	status, env := c.do("GET", "/api/auth/me", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)

	c.bootstrap()

	status, _ = c.do("POST", "/api/auth/bootstrap", map[string]string{
		"location_name": "Again", "name": "X", "email": "x@thrive.test", "password": "x",
	})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = c.do("GET", "/api/auth/me", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, env.Success)

	c.token = ""
	status, env = c.do("POST", "/api/auth/login", map[string]string{"email": "OWNER@thrive.test", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", env.Error)
}

func TestOrderFlow(t *testing.T) {
	c := newClient(t)
	c.bootstrap()

	status, env := c.do("POST", "/api/customers", map[string]any{"name": "Ana", "email": "ana@mail.test"})
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	var cust struct {
		ID         string `json:"id"`
		TotalPreps int    `json:"total_preps"`
	}
	c.decode(env, &cust)

	status, env = c.do("POST", "/api/menu-items", map[string]any{"name": "Burger", "price": "12.50"})
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	var item struct {
		ID        string `json:"id"`
		DisplayID int64  `json:"display_id"`
	}
	c.decode(env, &item)
	assert.EqualValues(t, 1, item.DisplayID)

	status, env = c.do("POST", "/api/orders", map[string]any{"customer_id": cust.ID, "items": []any{}})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, env.Success)

	status, env = c.do("POST", "/api/orders", map[string]any{
		"customer_id": cust.ID,
		"items": []map[string]any{
			{"menu_item_id": item.ID, "quantity": 2, "unit_price": "12.50"},
			{"menu_item_id": item.ID, "unit_price": 5},
		},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Error)
	var o struct {
		ID          string `json:"id"`
		OrderNumber string `json:"order_number"`
		TotalPrice  string `json:"total_price"`
		Items       []struct {
			TotalPrice string `json:"total_price"`
		} `json:"items"`
	}
	c.decode(env, &o)
	assert.Equal(t, "ORD-00001", o.OrderNumber)
	assert.Equal(t, "30.00", o.TotalPrice)
	require.Len(t, o.Items, 2)
	assert.Equal(t, "25.00", o.Items[0].TotalPrice)

	status, env = c.do("GET", "/api/customers/"+cust.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	c.decode(env, &cust)
	assert.Equal(t, 1, cust.TotalPreps)

	status, env = c.do("PATCH", "/api/orders/"+o.ID+"/status", map[string]string{"status": "delivered"})
	require.Equal(t, fiber.StatusOK, status, env.Error)

	status, env = c.do("GET", "/api/orders", nil)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	status, env = c.do("GET", "/api/orders/stats", nil)
	require.Equal(t, fiber.StatusOK, status, env.Error)
	var st struct {
		Delivered        int    `json:"delivered"`
		DeliveredRevenue string `json:"delivered_revenue"`
	}
	c.decode(env, &st)
	assert.Equal(t, 1, st.Delivered)
	assert.Equal(t, "30.00", st.DeliveredRevenue)

	status, env = c.do("DELETE", "/api/orders/"+o.ID, nil)
	require.Equal(t, fiber.StatusOK, status, env.Error)
	assert.True(t, env.Success)

	status, env = c.do("GET", "/api/customers/"+cust.ID, nil)
	require.Equal(t, fiber.StatusOK, status)
	c.decode(env, &cust)
	assert.Zero(t, cust.TotalPreps)

	status, _ = c.do("GET", "/api/orders/"+o.ID, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = c.do("GET", "/api/orders/not-an-id", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestRoleGate(t *testing.T) {
	c := newClient(t)
	c.bootstrap()

	status, env := c.do("POST", "/api/users", map[string]any{
		"name": "Kim", "email": "kim@thrive.test", "password": "kim-pass", "role": "staff",
	})
	require.Equal(t, fiber.StatusCreated, status, env.Error)

	c.token, c.location = "", ""
	status, env = c.do("POST", "/api/auth/login", map[string]string{"email": "kim@thrive.test", "password": "kim-pass"})
	require.Equal(t, fiber.StatusOK, status, env.Error)
	var login struct {
		Token string `json:"token"`
	}
	c.decode(env, &login)
	c.token = login.Token

	status, _ = c.do("POST", "/api/locations", map[string]string{"name": "Airport"})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = c.do("POST", "/api/food-categories", map[string]string{"name": "Mains"})
	assert.Equal(t, fiber.StatusForbidden, status)
	status, _ = c.do("GET", "/api/audit-logs", nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = c.do("GET", "/api/locations", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 1, *env.Count)
	status, _ = c.do("GET", "/api/customers", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestRequestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := newClientWith(t, zap.New(core), nil)

	status, _ := c.do("GET", "/api/auth/me", nil)
	require.Equal(t, fiber.StatusUnauthorized, status)

	entries := logs.All()
	require.NotEmpty(t, entries)
	last := entries[len(entries)-1]
	assert.Equal(t, zapcore.WarnLevel, last.Level)
	fields := last.ContextMap()
	assert.EqualValues(t, fiber.StatusUnauthorized, fields["status"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/auth/me", fields["url"])
}

func TestRequestTimeout(t *testing.T) {
	c := newClientWith(t, zap.NewNop(), func(cfg *config.Config) {
		cfg.RequestTimeout = time.Nanosecond
	})

	status, _ := c.do("POST", "/api/auth/login", map[string]string{"email": "a@thrive.test", "password": "x"})
	assert.Equal(t, fiber.StatusRequestTimeout, status)
}
