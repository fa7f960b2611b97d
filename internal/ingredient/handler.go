package ingredient

import (
	"strings"
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

type QuantityRequest struct {
	Quantity      string           `json:"quantity"`
	QuantityGrams *decimal.Decimal `json:"quantity_grams"`
	Price         decimal.Decimal  `json:"price"`
	IsAvailable   *bool            `json:"is_available"`
}

type CreateIngredientRequest struct {
	FoodTypeID      *uuid.UUID        `json:"food_type_id"`
	SpecificationID *uuid.UUID        `json:"specification_id"`
	CookTypeID      *uuid.UUID        `json:"cook_type_id"`
	Name            *string           `json:"name"`
	Description     *string           `json:"description"`
	IsActive        *bool             `json:"is_active"`
	Quantities      []QuantityRequest `json:"quantities"`
}

type UpdateIngredientRequest struct {
	FoodTypeID      *uuid.UUID         `json:"food_type_id"`
	SpecificationID request.OptionalID `json:"specification_id"`
	CookTypeID      request.OptionalID `json:"cook_type_id"`
	Name            *string            `json:"name"`
	Description     *string            `json:"description"`
	IsActive        *bool              `json:"is_active"`
	Quantities      *[]QuantityRequest `json:"quantities"`
}

type QuantityResponse struct {
	ID            uuid.UUID `json:"id"`
	Quantity      string    `json:"quantity"`
	QuantityGrams *string   `json:"quantity_grams"`
	Price         string    `json:"price"`
	IsAvailable   bool      `json:"is_available"`
}

type IngredientResponse struct {
	ID                uuid.UUID          `json:"id"`
	FoodTypeID        uuid.UUID          `json:"food_type_id"`
	FoodTypeName      string             `json:"food_type_name,omitempty"`
	FoodCategoryID    *uuid.UUID         `json:"food_category_id,omitempty"`
	FoodCategoryName  string             `json:"food_category_name,omitempty"`
	SpecificationID   *uuid.UUID         `json:"specification_id"`
	SpecificationName string             `json:"specification_name,omitempty"`
	CookTypeID        *uuid.UUID         `json:"cook_type_id"`
	CookTypeName      string             `json:"cook_type_name,omitempty"`
	Name              *string            `json:"name"`
	Description       *string            `json:"description"`
	IsActive          bool               `json:"is_active"`
	Quantities        []QuantityResponse `json:"quantities"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

type CategoryGroup struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	DisplayOrder int             `json:"display_order"`
	FoodTypes    []FoodTypeGroup `json:"food_types"`
}

type FoodTypeGroup struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

func quantityInputs(in []QuantityRequest) []QuantityInput {
	out := make([]QuantityInput, 0, len(in))
	for _, q := range in {
		out = append(out, QuantityInput(q))
	}
	return out
}

func ToResponse(ing *models.Ingredient) IngredientResponse {
	res := IngredientResponse{
		ID:              ing.ID,
		FoodTypeID:      ing.FoodTypeID,
		SpecificationID: ing.SpecificationID,
		CookTypeID:      ing.CookTypeID,
		Name:            ing.Name,
		Description:     ing.Description,
		IsActive:        ing.IsActive,
		Quantities:      make([]QuantityResponse, 0, len(ing.Quantities)),
		CreatedAt:       ing.CreatedAt,
		UpdatedAt:       ing.UpdatedAt,
	}
	if ing.FoodType != nil {
		res.FoodTypeName = ing.FoodType.Name
		if ing.FoodType.FoodCategory != nil {
			res.FoodCategoryID = &ing.FoodType.FoodCategory.ID
			res.FoodCategoryName = ing.FoodType.FoodCategory.Name
		}
	}
	if ing.Specification != nil {
		res.SpecificationName = ing.Specification.Name
	}
	if ing.CookType != nil {
		res.CookTypeName = ing.CookType.Name
	}
	for _, q := range ing.Quantities {
		res.Quantities = append(res.Quantities, QuantityResponse{
			ID:            q.ID,
			Quantity:      q.Quantity,
			QuantityGrams: response.MoneyPtr(q.QuantityGrams),
			Price:         response.Money(q.Price),
			IsAvailable:   q.IsAvailable,
		})
	}
	return res
}

// POST /api/ingredients
func CreateIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		var body CreateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		ing, err := svc.Create(c.UserContext(), p, CreateInput{
			FoodTypeID:      body.FoodTypeID,
			SpecificationID: body.SpecificationID,
			CookTypeID:      body.CookTypeID,
			Name:            body.Name,
			Description:     body.Description,
			IsActive:        body.IsActive,
			Quantities:      quantityInputs(body.Quantities),
		})
		if err != nil {
			return err
		}
		return response.Created(c, ToResponse(ing))
	}
}

// PUT /api/ingredients/:id
func UpdateIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body UpdateIngredientRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}

		in := UpdateInput{
			FoodTypeID:      body.FoodTypeID,
			SpecificationID: body.SpecificationID.Patch(),
			CookTypeID:      body.CookTypeID.Patch(),
			Name:            body.Name,
			Description:     body.Description,
			IsActive:        body.IsActive,
		}
		if body.Quantities != nil {
			q := quantityInputs(*body.Quantities)
			in.Quantities = &q
		}

		ing, err := svc.Update(c.UserContext(), p, id, in)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(ing))
	}
}

// DELETE /api/ingredients/:id
func DeleteIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), p, id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}

// GET /api/ingredients/:id
func GetIngredientHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		ing, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, ToResponse(ing))
	}
}

// GET /api/ingredients?food_type_id=&food_category_id=&is_active=&search=
func ListIngredientsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var f Filter
		var err error
		if f.FoodTypeID, err = request.QueryID(c, "food_type_id"); err != nil {
			return err
		}
		if f.FoodCategoryID, err = request.QueryID(c, "food_category_id"); err != nil {
			return err
		}
		if f.IsActive, err = request.QueryBool(c, "is_active"); err != nil {
			return err
		}
		f.Search = c.Query("search")

		list, err := svc.List(c.UserContext(), f)
		if err != nil {
			return err
		}
		res := make([]IngredientResponse, 0, len(list))
		for i := range list {
			res = append(res, ToResponse(&list[i]))
		}
		return response.List(c, res, len(res))
	}
}

// GET /api/ingredients/by-category
func ListByCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.ListByCategory(c.UserContext())
		if err != nil {
			return err
		}

		res := make([]CategoryGroup, 0, len(cats))
		for _, cat := range cats {
			group := CategoryGroup{ID: cat.ID, Name: cat.Name, DisplayOrder: cat.DisplayOrder, FoodTypes: []FoodTypeGroup{}}
			for _, ft := range cat.FoodTypes {
				ftGroup := FoodTypeGroup{ID: ft.ID, Name: ft.Name, Ingredients: []IngredientResponse{}}
				for i := range ft.Ingredients {
					ing := ft.Ingredients[i]
					ing.FoodType = &models.FoodType{Base: ft.Base, Name: ft.Name}
					ftGroup.Ingredients = append(ftGroup.Ingredients, ToResponse(&ing))
				}
				group.FoodTypes = append(group.FoodTypes, ftGroup)
			}
			res = append(res, group)
		}
		return response.List(c, res, len(res))
	}
}

type ImportResponse struct {
	Created   int      `json:"created"`
	Skipped   []string `json:"skipped"`
	Unmatched []string `json:"unmatched_food_types"`
}

// POST /api/ingredients/import (multipart, field "file", .xlsx)
func ImportIngredientsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := auth.PrincipalFrom(c)
		if err != nil {
			return err
		}
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return apperr.Wrap(apperr.Validation, "file upload is missing", err)
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return apperr.New(apperr.Validation, "only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return apperr.Wrap(apperr.Validation, "could not open the upload", err)
		}
		defer file.Close()

		res, err := svc.Import(c.UserContext(), p, file)
		if err != nil {
			return err
		}
		return response.OK(c, ImportResponse{
			Created:   res.Created,
			Skipped:   nonNil(res.Skipped),
			Unmatched: nonNil(res.Unmatched),
		})
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
