package auth

import (
	"strings"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	CtxPrincipalKey = "principal"
	CtxLocationKey  = "location_id"

	LocationHeader = "X-Location-ID"
)

// Middleware authenticates "Authorization: Bearer <token>" and stores the
// Principal in the request locals.
func Middleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.New(apperr.Unauthenticated, "authorization header is missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return apperr.New(apperr.Unauthenticated, "authorization header must be 'Bearer <token>'")
		}

		p, err := svc.Authenticate(c.UserContext(), strings.TrimSpace(parts[1]))
		if err != nil {
			return err
		}

		c.Locals(CtxPrincipalKey, p)
		return c.Next()
	}
}

func RequireRole(allowed ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}
		if err := Authorize(p, allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}

// LocationScope resolves the location a request operates on from the
// X-Location-ID header or the location_id query parameter.
func LocationScope() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}

		requested := c.Get(LocationHeader)
		if requested == "" {
			requested = c.Query("location_id")
		}

		loc, err := ResolveLocation(p, requested)
		if err != nil {
			return err
		}
		if loc != nil {
			c.Locals(CtxLocationKey, *loc)
		}
		return c.Next()
	}
}

// ResolveLocation applies the scoping rule: admins may pick any location or
// none, everyone else is pinned to their own.
func ResolveLocation(p Principal, requested string) (*uuid.UUID, error) {
	var want *uuid.UUID
	if requested = strings.TrimSpace(requested); requested != "" {
		id, err := uuid.Parse(requested)
		if err != nil {
			return nil, apperr.Wrap(apperr.Validation, "location_id is not a valid id", err)
		}
		want = &id
	}
	return ScopeLocation(p, want)
}

func ScopeLocation(p Principal, want *uuid.UUID) (*uuid.UUID, error) {
	if p.IsAdmin() {
		return want, nil
	}
	if want != nil && *want != p.LocationID {
		return nil, apperr.New(apperr.Forbidden, "access to this location is not allowed")
	}
	own := p.LocationID
	return &own, nil
}

func PrincipalFrom(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(CtxPrincipalKey).(Principal)
	if !ok {
		return Principal{}, apperr.New(apperr.Unauthenticated, "not authenticated")
	}
	return p, nil
}

// LocationFrom returns the scoped location, or nil when an admin did not
// pick one.
func LocationFrom(c *fiber.Ctx) *uuid.UUID {
	if id, ok := c.Locals(CtxLocationKey).(uuid.UUID); ok {
		return &id
	}
	return nil
}

// WriteLocation picks the location a create request targets: an explicit
// body value (checked against the caller's scope) or the request scope.
func WriteLocation(c *fiber.Ctx, fromBody *uuid.UUID) (*uuid.UUID, error) {
	if fromBody == nil {
		return LocationFrom(c), nil
	}
	p, err := PrincipalFrom(c)
	if err != nil {
		return nil, err
	}
	return ScopeLocation(p, fromBody)
}
