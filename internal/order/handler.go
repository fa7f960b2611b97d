package order

import (
	"fmt"
	"strconv"
	"time"

	"thrive-backend/internal/apperr"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ItemRequest struct {
	MenuItemID *uuid.UUID       `json:"menu_item_id"`
	Quantity   *int             `json:"quantity"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	Notes      string           `json:"notes"`
}

type CreateOrderRequest struct {
	LocationID *uuid.UUID         `json:"location_id"`
	CustomerID *uuid.UUID         `json:"customer_id"`
	Status     models.OrderStatus `json:"status"`
	Notes      string             `json:"notes"`
	OrderDate  *time.Time         `json:"order_date"`
	Items      []ItemRequest      `json:"items"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

type ItemResponse struct {
	ID           uuid.UUID  `json:"id"`
	MenuItemID   *uuid.UUID `json:"menu_item_id"`
	MenuItemName string     `json:"menu_item_name,omitempty"`
	Quantity     int        `json:"quantity"`
	UnitPrice    string     `json:"unit_price"`
	TotalPrice   string     `json:"total_price"`
	Notes        string     `json:"notes"`
}

type OrderResponse struct {
	ID           uuid.UUID          `json:"id"`
	LocationID   uuid.UUID          `json:"location_id"`
	CustomerID   *uuid.UUID         `json:"customer_id"`
	CustomerName string             `json:"customer_name,omitempty"`
	OrderNumber  string             `json:"order_number"`
	Status       models.OrderStatus `json:"status"`
	TotalPrice   string             `json:"total_price"`
	Notes        string             `json:"notes"`
	OrderDate    time.Time          `json:"order_date"`
	DeliveredAt  *time.Time         `json:"delivered_at"`
	CreatedBy    *uuid.UUID         `json:"created_by"`
	Items        []ItemResponse     `json:"items"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type StatsResponse struct {
	Date             string                       `json:"date"`
	TotalOrders      int64                        `json:"total_orders"`
	Received         int64                        `json:"received"`
	Delivered        int64                        `json:"delivered"`
	DeliveredRevenue string                       `json:"delivered_revenue"`
	ByStatus         map[models.OrderStatus]int64 `json:"by_status"`
}

func ToResponse(o *models.Order) OrderResponse {
	res := OrderResponse{
		ID:          o.ID,
		LocationID:  o.LocationID,
		CustomerID:  o.CustomerID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		TotalPrice:  response.Money(o.TotalPrice),
		Notes:       o.Notes,
		OrderDate:   o.OrderDate,
		DeliveredAt: o.DeliveredAt,
		CreatedBy:   o.CreatedBy,
		Items:       make([]ItemResponse, 0, len(o.Items)),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	if o.Customer != nil {
		res.CustomerName = o.Customer.Name
	}
	for _, it := range o.Items {
		item := ItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Quantity:   it.Quantity,
			UnitPrice:  response.Money(it.UnitPrice),
			TotalPrice: response.Money(it.TotalPrice),
			Notes:      it.Notes,
		}
		if it.MenuItem != nil {
			item.MenuItemName = it.MenuItem.Name
		}
		res.Items = append(res.Items, item)
	}
	return res
}

// date reads ?date=YYYY-MM-DD in the service timezone, today when absent.
func (s *Service) date(c *fiber.Ctx) (time.Time, error) {
	d, err := request.QueryDate(c, "date", s.tz)
	if err != nil {
		return time.Time{}, err
	}
	if d == nil {
		return s.now().In(s.tz), nil
	}
	return *d, nil
}

// POST /api/orders
func CreateOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		loc, err := auth.WriteLocation(c, body.LocationID)
		if err != nil {
			return err
		}

		items := make([]ItemInput, 0, len(body.Items))
		for _, it := range body.Items {
			items = append(items, ItemInput(it))
		}
		o, err := svc.Create(c.UserContext(), p, CreateInput{
			LocationID: loc,
			CustomerID: body.CustomerID,
			Status:     body.Status,
			Notes:      body.Notes,
			OrderDate:  body.OrderDate,
			Items:      items,
		})
		if err != nil {
			return err
		}
		return response.Created(c, ToResponse(o))
	}
}

// PATCH /api/orders/:id/status
func UpdateStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		if body.Status == "" {
			return apperr.New(apperr.Validation, "status is required")
		}

		o, err := svc.UpdateStatus(c.UserContext(), p, auth.LocationFrom(c), id, body.Status)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(o))
	}
}

// DELETE /api/orders/:id
func DeleteOrderHandler(svc *Service) fiber.Handler {
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

// GET /api/orders/:id
func GetOrderHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		o, err := svc.Get(c.UserContext(), auth.LocationFrom(c), id)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(o))
	}
}

// GET /api/orders?status=&customer_id=&from=YYYY-MM-DD&to=YYYY-MM-DD&search=ORD-0001
func ListOrdersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			LocationID: auth.LocationFrom(c),
			Status:     models.OrderStatus(c.Query("status")),
			Search:     c.Query("search"),
		}
		var err error
		if f.CustomerID, err = request.QueryID(c, "customer_id"); err != nil {
			return err
		}
		if f.From, err = request.QueryDate(c, "from", svc.tz); err != nil {
			return err
		}
		if f.To, err = request.QueryDate(c, "to", svc.tz); err != nil {
			return err
		}
		if f.To != nil {
			// "to" is inclusive of the whole day
			end := f.To.AddDate(0, 0, 1)
			f.To = &end
		}

		list, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		res := make([]OrderResponse, 0, len(list))
		for i := range list {
			res = append(res, ToResponse(&list[i]))
		}
		return response.List(c, res, len(res))
	}
}

// GET /api/orders/stats?date=YYYY-MM-DD
func StatsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := svc.date(c)
		if err != nil {
			return err
		}
		st, err := svc.Stats(c.UserContext(), auth.LocationFrom(c), day)
		if err != nil {
			return err
		}
		return response.OK(c, StatsResponse{
			Date:             st.Date,
			TotalOrders:      st.TotalOrders,
			Received:         st.Received,
			Delivered:        st.Delivered,
			DeliveredRevenue: response.Money(st.DeliveredRevenue),
			ByStatus:         st.ByStatus,
		})
	}
}

// GET /api/orders/export?date=YYYY-MM-DD
func ExportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		day, err := svc.date(c)
		if err != nil {
			return err
		}
		loc := auth.LocationFrom(c)
		data, err := svc.Export(c.UserContext(), loc, day)
		if err != nil {
			return err
		}

		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="orders-%s.xlsx"`, day.Format(request.DateLayout)))
		return c.Send(data)
	}
}

type ChartPointResponse struct {
	Label     string `json:"label"`
	Orders    int64  `json:"orders"`
	Delivered int64  `json:"delivered"`
	Revenue   string `json:"revenue"`
}

type ChartResponse struct {
	Period       Period               `json:"period"`
	From         string               `json:"from"`
	To           string               `json:"to"`
	Points       []ChartPointResponse `json:"points"`
	TotalOrders  int64                `json:"total_orders"`
	TotalRevenue string               `json:"total_revenue"`
}

// GET /api/orders/chart?period=daily|weekly|monthly&count=7
func ChartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		count, err := strconv.Atoi(c.Query("count", "0"))
		if err != nil {
			return apperr.Wrap(apperr.Validation, "count must be a number", err)
		}
		chart, err := svc.Chart(c.UserContext(), auth.LocationFrom(c), Period(c.Query("period")), count)
		if err != nil {
			return err
		}

		res := ChartResponse{
			Period:       chart.Period,
			From:         chart.From,
			To:           chart.To,
			Points:       make([]ChartPointResponse, 0, len(chart.Points)),
			TotalOrders:  chart.TotalOrders,
			TotalRevenue: response.Money(chart.TotalRevenue),
		}
		for _, p := range chart.Points {
			res.Points = append(res.Points, ChartPointResponse{
				Label:     p.Label,
				Orders:    p.Orders,
				Delivered: p.Delivered,
				Revenue:   response.Money(p.Revenue),
			})
		}
		return response.OK(c, res)
	}
}
