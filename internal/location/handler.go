package location

import (
	"time"

	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LocationResponse struct {
	ID        uuid.UUID             `json:"id"`
	Name      string                `json:"name"`
	Currency  string                `json:"currency"`
	Type      string                `json:"type"`
	Address   string                `json:"address"`
	Phone     string                `json:"phone"`
	Status    models.LocationStatus `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type CreateLocationRequest struct {
	Name     string                `json:"name"`
	Currency string                `json:"currency"`
	Type     string                `json:"type"`
	Address  string                `json:"address"`
	Phone    string                `json:"phone"`
	Status   models.LocationStatus `json:"status"`
}

type UpdateLocationRequest struct {
	Name     *string                `json:"name"`
	Currency *string                `json:"currency"`
	Type     *string                `json:"type"`
	Address  *string                `json:"address"`
	Phone    *string                `json:"phone"`
	Status   *models.LocationStatus `json:"status"`
}

func ToResponse(l *models.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Currency:  l.Currency,
		Type:      l.Type,
		Address:   l.Address,
		Phone:     l.Phone,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// POST /api/locations
func CreateLocationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		loc, err := svc.Create(c.UserContext(), p, CreateInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, ToResponse(loc))
	}
}

// GET /api/locations?status=active&search=down
func ListLocationsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}

		var res []LocationResponse
		if p.IsAdmin() {
			locs, err := svc.List(c.UserContext(), Filter{
				Status: models.LocationStatus(c.Query("status")),
				Search: c.Query("search"),
			})
			if err != nil {
				return err
			}
			res = make([]LocationResponse, 0, len(locs))
			for i := range locs {
				res = append(res, ToResponse(&locs[i]))
			}
		} else {
			// non-admins only ever see their own location
			loc, err := svc.Get(c.UserContext(), p.LocationID)
			if err != nil {
				return err
			}
			res = []LocationResponse{ToResponse(loc)}
		}
		return response.List(c, res, len(res))
	}
}

// GET /api/locations/:id
func GetLocationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if _, err := auth.ScopeLocation(p, &id); err != nil {
			return err
		}

		loc, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(loc))
	}
}

// PUT /api/locations/:id
func UpdateLocationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		loc, err := svc.Update(c.UserContext(), p, id, UpdateInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(loc))
	}
}

// DELETE /api/locations/:id
func DeleteLocationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}
