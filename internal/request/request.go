// Package request holds the path and query parsing shared by the handlers.
package request

import (
	"strconv"
	"time"

	"thrive-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// ParamID parses the :id route parameter.
func ParamID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.Validation, "id is not a valid identifier")
	}
	return id, nil
}

// QueryID returns nil when the query parameter is absent.
func QueryID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperr.Newf(apperr.Validation, "%s is not a valid identifier", key)
	}
	return &id, nil
}

func QueryBool(c *fiber.Ctx, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperr.Newf(apperr.Validation, "%s must be true or false", key)
	}
	return &b, nil
}

// QueryDate parses a YYYY-MM-DD query parameter as midnight in loc.
func QueryDate(c *fiber.Ctx, key string, loc *time.Location) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(DateLayout, v, loc)
	if err != nil {
		return nil, apperr.Newf(apperr.Validation, "%s must be a date in YYYY-MM-DD format", key)
	}
	return &d, nil
}
