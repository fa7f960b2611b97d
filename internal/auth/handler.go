package auth

import (
	"time"

	"thrive-backend/internal/models"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LoginRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	LocationID *uuid.UUID `json:"location_id"`
}

type BootstrapRequest struct {
	LocationName string `json:"location_name"`
	Currency     string `json:"currency"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
}

type UserResponse struct {
	ID            uuid.UUID            `json:"id"`
	LocationID    uuid.UUID            `json:"location_id"`
	Name          string               `json:"name"`
	Email         string               `json:"email"`
	Role          models.UserRole      `json:"role"`
	AccountStatus models.AccountStatus `json:"account_status,omitempty"`
	LastLoginAt   *time.Time           `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func principalResponse(p Principal) UserResponse {
	return UserResponse{
		ID:         p.UserID,
		LocationID: p.LocationID,
		Name:       p.Name,
		Email:      p.Email,
		Role:       p.Role,
	}
}

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		p, token, err := svc.Login(c.UserContext(), body.Email, body.Password, body.LocationID)
		if err != nil {
			return err
		}
		return response.OK(c, LoginResponse{Token: token, User: principalResponse(p)})
	}
}

// POST /api/auth/bootstrap
func BootstrapHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BootstrapRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		p, token, err := svc.Bootstrap(c.UserContext(), BootstrapInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, LoginResponse{Token: token, User: principalResponse(p)})
	}
}

// GET /api/auth/me
func MeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := PrincipalFrom(c)
		if err != nil {
			return err
		}

		user, loc, err := svc.Profile(c.UserContext(), p)
		if err != nil {
			return err
		}

		return response.OK(c, fiber.Map{
			"user": UserResponse{
				ID:            user.ID,
				LocationID:    user.LocationID,
				Name:          user.Name,
				Email:         user.Email,
				Role:          user.Role,
				AccountStatus: user.AccountStatus,
				LastLoginAt:   user.LastLoginAt,
			},
			"location": fiber.Map{
				"id":       loc.ID,
				"name":     loc.Name,
				"currency": loc.Currency,
				"address":  loc.Address,
				"phone":    loc.Phone,
			},
		})
	}
}
