package user

import (
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateUserRequest struct {
	LocationID    *uuid.UUID           `json:"location_id"`
	Email         string               `json:"email"`
	Name          string               `json:"name"`
	Password      string               `json:"password"`
	Role          models.UserRole      `json:"role"`
	AccountStatus models.AccountStatus `json:"account_status"`
}

type UpdateUserRequest struct {
	Email         *string               `json:"email"`
	Name          *string               `json:"name"`
	Password      *string               `json:"password"`
	Role          *models.UserRole      `json:"role"`
	AccountStatus *models.AccountStatus `json:"account_status"`
}

func toResponse(u *models.User) auth.UserResponse {
	return auth.UserResponse{
		ID:            u.ID,
		LocationID:    u.LocationID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		AccountStatus: u.AccountStatus,
		LastLoginAt:   u.LastLoginAt,
	}
}

// POST /api/users
func CreateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		loc, err := auth.WriteLocation(c, body.LocationID)
		if err != nil {
			return err
		}
		body.LocationID = loc

		u, err := svc.Create(c.UserContext(), p, CreateInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, toResponse(u))
	}
}

// GET /api/users?role=staff&status=active&search=ann
func ListUsersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		users, err := svc.List(c.UserContext(), Filter{
			LocationID: auth.LocationFrom(c),
			Role:       models.UserRole(c.Query("role")),
			Status:     models.AccountStatus(c.Query("status")),
			Search:     c.Query("search"),
		})
		if err != nil {
			return err
		}

		res := make([]auth.UserResponse, 0, len(users))
		for i := range users {
			res = append(res, toResponse(&users[i]))
		}
		return response.List(c, res, len(res))
	}
}

// GET /api/users/:id
func GetUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		u, err := svc.Get(c.UserContext(), auth.LocationFrom(c), id)
		if err != nil {
			return err
		}
		return response.OK(c, toResponse(u))
	}
}

// PUT /api/users/:id
func UpdateUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body UpdateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		u, err := svc.Update(c.UserContext(), p, auth.LocationFrom(c), id, UpdateInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, toResponse(u))
	}
}

// DELETE /api/users/:id
func DeleteUserHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), p, auth.LocationFrom(c), id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}
