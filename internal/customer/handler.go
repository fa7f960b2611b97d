package customer

import (
	"time"

	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateCustomerRequest struct {
	LocationID    *uuid.UUID           `json:"location_id"`
	Email         *string              `json:"email"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	Notes         string               `json:"notes"`
	AccountStatus models.AccountStatus `json:"account_status"`
}

// There is no total_preps field: only orders change it.
type UpdateCustomerRequest struct {
	Email         *string               `json:"email"`
	Name          *string               `json:"name"`
	Phone         *string               `json:"phone"`
	Address       *string               `json:"address"`
	Notes         *string               `json:"notes"`
	AccountStatus *models.AccountStatus `json:"account_status"`
}

type CustomerResponse struct {
	ID            uuid.UUID            `json:"id"`
	LocationID    uuid.UUID            `json:"location_id"`
	Email         *string              `json:"email"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	Address       string               `json:"address"`
	Notes         string               `json:"notes"`
	AccountStatus models.AccountStatus `json:"account_status"`
	TotalPreps    int                  `json:"total_preps"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type RecentOrder struct {
	ID          uuid.UUID          `json:"id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	TotalPrice  string             `json:"total_price"`
	OrderDate   time.Time          `json:"order_date"`
}

type CustomerDetailResponse struct {
	CustomerResponse
	RecentOrders []RecentOrder `json:"recent_orders"`
}

func ToResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID,
		LocationID:    c.LocationID,
		Email:         c.Email,
		Name:          c.Name,
		Phone:         c.Phone,
		Address:       c.Address,
		Notes:         c.Notes,
		AccountStatus: c.AccountStatus,
		TotalPreps:    c.TotalPreps,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// POST /api/customers
func CreateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body CreateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		loc, err := auth.WriteLocation(c, body.LocationID)
		if err != nil {
			return err
		}
		body.LocationID = loc

		cust, err := svc.Create(c.UserContext(), p, CreateInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, ToResponse(cust))
	}
}

// GET /api/customers?status=active&search=ana
func ListCustomersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := svc.List(c.UserContext(), Filter{
			LocationID: auth.LocationFrom(c),
			Status:     models.AccountStatus(c.Query("status")),
			Search:     c.Query("search"),
		})
		if err != nil {
			return err
		}
		res := make([]CustomerResponse, 0, len(list))
		for i := range list {
			res = append(res, ToResponse(&list[i]))
		}
		return response.List(c, res, len(res))
	}
}

// GET /api/customers/:id
func GetCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		d, err := svc.Get(c.UserContext(), auth.LocationFrom(c), id)
		if err != nil {
			return err
		}

		res := CustomerDetailResponse{
			CustomerResponse: ToResponse(&d.Customer),
			RecentOrders:     make([]RecentOrder, 0, len(d.RecentOrders)),
		}
		for _, o := range d.RecentOrders {
			res.RecentOrders = append(res.RecentOrders, RecentOrder{
				ID:          o.ID,
				OrderNumber: o.OrderNumber,
				Status:      o.Status,
				TotalPrice:  response.Money(o.TotalPrice),
				OrderDate:   o.OrderDate,
			})
		}
		return response.OK(c, res)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body UpdateCustomerRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		cust, err := svc.Update(c.UserContext(), p, auth.LocationFrom(c), id, UpdateInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(cust))
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler(svc *Service) fiber.Handler {
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
