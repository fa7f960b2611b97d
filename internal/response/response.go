// Package response renders the JSON envelope every endpoint answers with.
package response

import (
	"errors"

	"thrive-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

func OK(c *fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

func Created(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

func List(c *fiber.Ctx, data any, count int) error {
	return c.JSON(Envelope{Success: true, Data: data, Count: &count})
}

func Deleted(c *fiber.Ctx) error {
	return c.JSON(Envelope{Success: true})
}

// ErrorHandler is installed as fiber.Config.ErrorHandler. Storage failures
// are logged in full and only echoed to the client in development.
func ErrorHandler(log *zap.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Envelope{Error: fe.Message})
		}

		kind := apperr.KindOf(err)
		msg := "internal server error"

		var ae *apperr.Error
		if errors.As(err, &ae) && kind != apperr.StorageFailure {
			msg = ae.Message
		}

		if kind == apperr.StorageFailure {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Any("request_id", c.Locals("requestid")),
				zap.Error(err),
			)
			if development {
				msg = err.Error()
			}
		} else if ae == nil {
			// A raw gorm sentinel that slipped through without FromDB.
			msg = string(kind)
		}

		return c.Status(kind.Status()).JSON(Envelope{Error: msg})
	}
}

// BadBody is returned when the request body cannot be decoded.
func BadBody(err error) error {
	return apperr.Wrap(apperr.Validation, "invalid request body", err)
}

// Money renders an amount with exactly two fraction digits.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func MoneyPtr(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}
