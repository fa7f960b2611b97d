package taxonomy

import (
	"thrive-backend/internal/models"
	"thrive-backend/internal/request"
	"thrive-backend/internal/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CategoryRequest struct {
	Name               *string `json:"name"`
	DisplayOrder       *int    `json:"display_order"`
	ShowSpecifications *bool   `json:"show_specifications"`
	ShowCookTypes      *bool   `json:"show_cook_types"`
}

type FoodTypeRequest struct {
	FoodCategoryID *uuid.UUID `json:"food_category_id"`
	Name           *string    `json:"name"`
}

type SpecificationRequest struct {
	FoodTypeID *uuid.UUID `json:"food_type_id"`
	Name       *string    `json:"name"`
}

type CookTypeRequest struct {
	FoodCategoryID *uuid.UUID `json:"food_category_id"`
	Name           *string    `json:"name"`
}

type CategoryResponse struct {
	ID                 uuid.UUID          `json:"id"`
	Name               string             `json:"name"`
	DisplayOrder       int                `json:"display_order"`
	ShowSpecifications bool               `json:"show_specifications"`
	ShowCookTypes      bool               `json:"show_cook_types"`
	FoodTypes          []FoodTypeResponse `json:"food_types,omitempty"`
	CookTypes          []CookTypeResponse `json:"cook_types,omitempty"`
}

type FoodTypeResponse struct {
	ID               uuid.UUID               `json:"id"`
	FoodCategoryID   uuid.UUID               `json:"food_category_id"`
	FoodCategoryName string                  `json:"food_category_name,omitempty"`
	Name             string                  `json:"name"`
	Specifications   []SpecificationResponse `json:"specifications,omitempty"`
}

type SpecificationResponse struct {
	ID           uuid.UUID `json:"id"`
	FoodTypeID   uuid.UUID `json:"food_type_id"`
	FoodTypeName string    `json:"food_type_name,omitempty"`
	Name         string    `json:"name"`
}

type CookTypeResponse struct {
	ID               uuid.UUID `json:"id"`
	FoodCategoryID   uuid.UUID `json:"food_category_id"`
	FoodCategoryName string    `json:"food_category_name,omitempty"`
	Name             string    `json:"name"`
}

func CategoryToResponse(c *models.FoodCategory) CategoryResponse {
	res := CategoryResponse{
		ID:                 c.ID,
		Name:               c.Name,
		DisplayOrder:       c.DisplayOrder,
		ShowSpecifications: c.ShowSpecifications,
		ShowCookTypes:      c.ShowCookTypes,
	}
	for i := range c.FoodTypes {
		res.FoodTypes = append(res.FoodTypes, FoodTypeToResponse(&c.FoodTypes[i]))
	}
	for i := range c.CookTypes {
		res.CookTypes = append(res.CookTypes, cookTypeToResponse(&c.CookTypes[i]))
	}
	return res
}

func FoodTypeToResponse(ft *models.FoodType) FoodTypeResponse {
	res := FoodTypeResponse{ID: ft.ID, FoodCategoryID: ft.FoodCategoryID, Name: ft.Name}
	if ft.FoodCategory != nil {
		res.FoodCategoryName = ft.FoodCategory.Name
	}
	for i := range ft.Specifications {
		res.Specifications = append(res.Specifications, specToResponse(&ft.Specifications[i]))
	}
	return res
}

func specToResponse(s *models.Specification) SpecificationResponse {
	res := SpecificationResponse{ID: s.ID, FoodTypeID: s.FoodTypeID, Name: s.Name}
	if s.FoodType != nil {
		res.FoodTypeName = s.FoodType.Name
	}
	return res
}

func cookTypeToResponse(ct *models.CookType) CookTypeResponse {
	res := CookTypeResponse{ID: ct.ID, FoodCategoryID: ct.FoodCategoryID, Name: ct.Name}
	if ct.FoodCategory != nil {
		res.FoodCategoryName = ct.FoodCategory.Name
	}
	return res
}

func mapAll[M any, R any](items []M, fn func(*M) R) []R {
	out := make([]R, 0, len(items))
	for i := range items {
		out = append(out, fn(&items[i]))
	}
	return out
}

// =================== FOOD CATEGORIES ===================

// GET /api/food-categories
func ListCategoriesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.ListCategories(c.UserContext())
		if err != nil {
			return err
		}
		return response.List(c, mapAll(cats, CategoryToResponse), len(cats))
	}
}

// GET /api/food-categories/:id
func GetCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		cat, err := svc.GetCategory(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, CategoryToResponse(cat))
	}
}

// POST /api/food-categories
func CreateCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		cat, err := svc.CreateCategory(c.UserContext(), CategoryInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, CategoryToResponse(cat))
	}
}

// PUT /api/food-categories/:id
func UpdateCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		cat, err := svc.UpdateCategory(c.UserContext(), id, CategoryInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, CategoryToResponse(cat))
	}
}

// DELETE /api/food-categories/:id
func DeleteCategoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteCategory(c.UserContext(), id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}

// =================== FOOD TYPES ===================

// GET /api/food-types?food_category_id=...
func ListFoodTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		catID, err := request.QueryID(c, "food_category_id")
		if err != nil {
			return err
		}
		types, err := svc.ListFoodTypes(c.UserContext(), catID)
		if err != nil {
			return err
		}
		return response.List(c, mapAll(types, FoodTypeToResponse), len(types))
	}
}

// GET /api/food-types/:id
func GetFoodTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		ft, err := svc.GetFoodType(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, FoodTypeToResponse(ft))
	}
}

// POST /api/food-types
func CreateFoodTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FoodTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		ft, err := svc.CreateFoodType(c.UserContext(), FoodTypeInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, FoodTypeToResponse(ft))
	}
}

// PUT /api/food-types/:id
func UpdateFoodTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body FoodTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		ft, err := svc.UpdateFoodType(c.UserContext(), id, FoodTypeInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, FoodTypeToResponse(ft))
	}
}

// DELETE /api/food-types/:id
func DeleteFoodTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteFoodType(c.UserContext(), id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}

// =================== SPECIFICATIONS ===================

// GET /api/specifications?food_type_id=...
func ListSpecificationsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ftID, err := request.QueryID(c, "food_type_id")
		if err != nil {
			return err
		}
		specs, err := svc.ListSpecifications(c.UserContext(), ftID)
		if err != nil {
			return err
		}
		return response.List(c, mapAll(specs, specToResponse), len(specs))
	}
}

// GET /api/specifications/:id
func GetSpecificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		spec, err := svc.GetSpecification(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, specToResponse(spec))
	}
}

// POST /api/specifications
func CreateSpecificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SpecificationRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		spec, err := svc.CreateSpecification(c.UserContext(), SpecificationInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, specToResponse(spec))
	}
}

// PUT /api/specifications/:id
func UpdateSpecificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body SpecificationRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		spec, err := svc.UpdateSpecification(c.UserContext(), id, SpecificationInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, specToResponse(spec))
	}
}

// DELETE /api/specifications/:id
func DeleteSpecificationHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteSpecification(c.UserContext(), id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}

// =================== COOK TYPES ===================

// GET /api/cook-types?food_category_id=...
func ListCookTypesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		catID, err := request.QueryID(c, "food_category_id")
		if err != nil {
			return err
		}
		types, err := svc.ListCookTypes(c.UserContext(), catID)
		if err != nil {
			return err
		}
		return response.List(c, mapAll(types, cookTypeToResponse), len(types))
	}
}

// GET /api/cook-types/:id
func GetCookTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		ct, err := svc.GetCookType(c.UserContext(), id)
		if err != nil {
			return err
		}
		return response.OK(c, cookTypeToResponse(ct))
	}
}

// POST /api/cook-types
func CreateCookTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CookTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		ct, err := svc.CreateCookType(c.UserContext(), CookTypeInput(body))
		if err != nil {
			return err
		}
		return response.Created(c, cookTypeToResponse(ct))
	}
}

// PUT /api/cook-types/:id
func UpdateCookTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		var body CookTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return response.BadBody(err)
		}
		ct, err := svc.UpdateCookType(c.UserContext(), id, CookTypeInput(body))
		if err != nil {
			return err
		}
		return response.OK(c, cookTypeToResponse(ct))
	}
}

// DELETE /api/cook-types/:id
func DeleteCookTypeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := request.ParamID(c)
		if err != nil {
			return err
		}
		if err := svc.DeleteCookType(c.UserContext(), id); err != nil {
			return err
		}
		return response.Deleted(c)
	}
}

// GET /api/taxonomy
func TreeHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.Tree(c.UserContext())
		if err != nil {
			return err
		}
		return response.List(c, mapAll(cats, CategoryToResponse), len(cats))
	}
}
