package menu

import (
	"time"

	"thrive-backend/internal/auth"
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IngredientRequest struct {
	IngredientID         uuid.UUID  `json:"ingredient_id"`
	IngredientQuantityID *uuid.UUID `json:"ingredient_quantity_id"`
	CustomQuantity       *string    `json:"custom_quantity"`
}

type CreateMenuItemRequest struct {
	LocationID      *uuid.UUID            `json:"location_id"`
	FoodCategoryID  *uuid.UUID            `json:"food_category_id"`
	FoodTypeID      *uuid.UUID            `json:"food_type_id"`
	SpecificationID *uuid.UUID            `json:"specification_id"`
	CookTypeID      *uuid.UUID            `json:"cook_type_id"`
	Name            string                `json:"name"`
	Quantity        string                `json:"quantity"`
	Description     string                `json:"description"`
	Tags            string                `json:"tags"`
	PrepNote        string                `json:"prep_note"`
	Price           *decimal.Decimal      `json:"price"`
	Status          models.MenuItemStatus `json:"status"`
	Photos          []string              `json:"photos"`
	Ingredients     []IngredientRequest   `json:"ingredients"`
}

type UpdateMenuItemRequest struct {
	FoodCategoryID  request.OptionalID     `json:"food_category_id"`
	FoodTypeID      request.OptionalID     `json:"food_type_id"`
	SpecificationID request.OptionalID     `json:"specification_id"`
	CookTypeID      request.OptionalID     `json:"cook_type_id"`
	Name            *string                `json:"name"`
	Quantity        *string                `json:"quantity"`
	Description     *string                `json:"description"`
	Tags            *string                `json:"tags"`
	PrepNote        *string                `json:"prep_note"`
	Price           *decimal.Decimal       `json:"price"`
	Status          *models.MenuItemStatus `json:"status"`
	Photos          *[]string              `json:"photos"`
	Ingredients     *[]IngredientRequest   `json:"ingredients"`
}

type PhotoResponse struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	DisplayOrder int       `json:"display_order"`
}

type CompositionResponse struct {
	ID                   uuid.UUID  `json:"id"`
	IngredientID         uuid.UUID  `json:"ingredient_id"`
	IngredientName       *string    `json:"ingredient_name"`
	IngredientQuantityID *uuid.UUID `json:"ingredient_quantity_id"`
	Quantity             string     `json:"quantity,omitempty"`
	Price                *string    `json:"price,omitempty"`
	CustomQuantity       *string    `json:"custom_quantity"`
}

type MenuItemResponse struct {
	ID                uuid.UUID             `json:"id"`
	LocationID        uuid.UUID             `json:"location_id"`
	DisplayID         int64                 `json:"display_id"`
	FoodCategoryID    *uuid.UUID            `json:"food_category_id"`
	FoodCategoryName  string                `json:"food_category_name,omitempty"`
	FoodTypeID        *uuid.UUID            `json:"food_type_id"`
	FoodTypeName      string                `json:"food_type_name,omitempty"`
	SpecificationID   *uuid.UUID            `json:"specification_id"`
	SpecificationName string                `json:"specification_name,omitempty"`
	CookTypeID        *uuid.UUID            `json:"cook_type_id"`
	CookTypeName      string                `json:"cook_type_name,omitempty"`
	Name              string                `json:"name"`
	Quantity          string                `json:"quantity"`
	Description       string                `json:"description"`
	Tags              string                `json:"tags"`
	PrepNote          string                `json:"prep_note"`
	Price             string                `json:"price"`
	Status            models.MenuItemStatus `json:"status"`
	Photos            []PhotoResponse       `json:"photos"`
	Ingredients       []CompositionResponse `json:"ingredients"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func ToResponse(m *models.MenuItem) MenuItemResponse {
	res := MenuItemResponse{
		ID:              m.ID,
		LocationID:      m.LocationID,
		DisplayID:       m.DisplayID,
		FoodCategoryID:  m.FoodCategoryID,
		FoodTypeID:      m.FoodTypeID,
		SpecificationID: m.SpecificationID,
		CookTypeID:      m.CookTypeID,
		Name:            m.Name,
		Quantity:        m.Quantity,
		Description:     m.Description,
		Tags:            m.Tags,
		PrepNote:        m.PrepNote,
		Price:           response.Money(m.Price),
		Status:          m.Status,
		Photos:          make([]PhotoResponse, 0, len(m.Photos)),
		Ingredients:     make([]CompositionResponse, 0, len(m.Ingredients)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.FoodCategory != nil {
		res.FoodCategoryName = m.FoodCategory.Name
	}
	if m.FoodType != nil {
		res.FoodTypeName = m.FoodType.Name
	}
	if m.Specification != nil {
		res.SpecificationName = m.Specification.Name
	}
	if m.CookType != nil {
		res.CookTypeName = m.CookType.Name
	}
	for _, p := range m.Photos {
		res.Photos = append(res.Photos, PhotoResponse{ID: p.ID, URL: p.URL, DisplayOrder: p.DisplayOrder})
	}
	for _, ing := range m.Ingredients {
		row := CompositionResponse{
			ID:                   ing.ID,
			IngredientID:         ing.IngredientID,
			IngredientQuantityID: ing.IngredientQuantityID,
			CustomQuantity:       ing.CustomQuantity,
		}
		if ing.Ingredient != nil {
			row.IngredientName = ing.Ingredient.Name
		}
		if ing.IngredientQuantity != nil {
			row.Quantity = ing.IngredientQuantity.Quantity
			row.Price = response.MoneyPtr(&ing.IngredientQuantity.Price)
		}
		res.Ingredients = append(res.Ingredients, row)
	}
	return res
}

func ingredientInputs(in []IngredientRequest) []IngredientInput {
	out := make([]IngredientInput, 0, len(in))
	for _, r := range in {
		out = append(out, IngredientInput(r))
	}
	return out
}

// POST /api/menu-items
func CreateMenuItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body CreateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		loc, err := auth.WriteLocation(c, body.LocationID)
		if err != nil {
			return err
		}

		item, err := svc.Create(c.UserContext(), p, CreateInput{
			LocationID:      loc,
			FoodCategoryID:  body.FoodCategoryID,
			FoodTypeID:      body.FoodTypeID,
			SpecificationID: body.SpecificationID,
			CookTypeID:      body.CookTypeID,
			Name:            body.Name,
			Quantity:        body.Quantity,
			Description:     body.Description,
			Tags:            body.Tags,
			PrepNote:        body.PrepNote,
			Price:           body.Price,
			Status:          body.Status,
			Photos:          body.Photos,
			Ingredients:     ingredientInputs(body.Ingredients),
		})
		if err != nil {
			return err
		}
		return response.Created(c, ToResponse(item))
	}
}

// PUT /api/menu-items/:id
func UpdateMenuItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body UpdateMenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		in := UpdateInput{
			FoodCategoryID:  body.FoodCategoryID.Patch(),
			FoodTypeID:      body.FoodTypeID.Patch(),
			SpecificationID: body.SpecificationID.Patch(),
			CookTypeID:      body.CookTypeID.Patch(),
			Name:            body.Name,
			Quantity:        body.Quantity,
			Description:     body.Description,
			Tags:            body.Tags,
			PrepNote:        body.PrepNote,
			Price:           body.Price,
			Status:          body.Status,
			Photos:          body.Photos,
		}
		if body.Ingredients != nil {
			ings := ingredientInputs(*body.Ingredients)
			in.Ingredients = &ings
		}

		item, err := svc.Update(c.UserContext(), p, auth.LocationFrom(c), id, in)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(item))
	}
}

// PATCH /api/menu-items/:id/toggle-status
func ToggleStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		item, err := svc.ToggleStatus(c.UserContext(), p, auth.LocationFrom(c), id)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(item))
	}
}

// DELETE /api/menu-items/:id
func DeleteMenuItemHandler(svc *Service) fiber.Handler {
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

// GET /api/menu-items/:id
func GetMenuItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		item, err := svc.Get(c.UserContext(), auth.LocationFrom(c), id)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(item))
	}
}

// GET /api/menu-items?status=active&food_category_id=&food_type_id=&search=
func ListMenuItemsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f := Filter{
			LocationID: auth.LocationFrom(c),
			Status:     models.MenuItemStatus(c.Query("status")),
			Search:     c.Query("search"),
		}
		var err error
		if f.FoodCategoryID, err = request.QueryID(c, "food_category_id"); err != nil {
			return err
		}
		if f.FoodTypeID, err = request.QueryID(c, "food_type_id"); err != nil {
			return err
		}

		items, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		res := make([]MenuItemResponse, 0, len(items))
		for i := range items {
			res = append(res, ToResponse(&items[i]))
		}
		return response.List(c, res, len(res))
	}
}
