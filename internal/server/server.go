// Package server assembles the Fiber application: middleware, services and
// the /api route table.
package server

import (
	"strings"
	"time"

	"thrive-backend/internal/audit"
	"thrive-backend/internal/auth"
	"thrive-backend/internal/config"
	"thrive-backend/internal/customer"
	"thrive-backend/internal/ingredient"
	"thrive-backend/internal/location"
	"thrive-backend/internal/menu"
	"thrive-backend/internal/models"
	"thrive-backend/internal/order"
	"thrive-backend/internal/response"
	"thrive-backend/internal/taxonomy"
	"thrive-backend/internal/user"

	"github.com/gofiber/contrib/fiberzap/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type services struct {
	auth       *auth.Service
	audit      *audit.Service
	location   *location.Service
	user       *user.Service
	taxonomy   *taxonomy.Service
	ingredient *ingredient.Service
	menu       *menu.Service
	customer   *customer.Service
	order      *order.Service
}

// New builds the application with every route registered. tz is the zone
// order stats and exports cut days in.
func New(cfg *config.Config, log *zap.Logger, db *gorm.DB, tz *time.Location) (*fiber.App, error) {
	authSvc, err := auth.NewService(db, cfg.Auth)
	if err != nil {
		return nil, err
	}
	svc := services{
		auth:       authSvc,
		audit:      audit.NewService(db),
		location:   location.NewService(db, log),
		user:       user.NewService(db, log, cfg.Auth.BcryptCost),
		taxonomy:   taxonomy.NewService(db, log),
		ingredient: ingredient.NewService(db, log),
		menu:       menu.NewService(db, log),
		customer:   customer.NewService(db, log),
		order:      order.NewService(db, log, tz),
	}

	app := fiber.New(fiber.Config{
		AppName:      "thrive-backend",
		ErrorHandler: response.ErrorHandler(log, cfg.IsDevelopment()),
	})

	origins := strings.Split(cfg.CORSOrigins, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: log,
		Fields: []string{"requestId", "method", "url", "status", "latency", "ip"},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(origins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + auth.LocationHeader,
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	if cfg.RequestTimeout > 0 {
		app.Use(timeout.NewWithContext(func(c *fiber.Ctx) error { return c.Next() }, cfg.RequestTimeout))
	}

	registerRoutes(app, svc)
	return app, nil
}

func registerRoutes(app *fiber.App, svc services) {
	api := app.Group("/api")

	// Public auth
	api.Post("/auth/bootstrap", auth.BootstrapHandler(svc.auth))
	api.Post("/auth/login", auth.LoginHandler(svc.auth))

	// Protected
	protected := api.Group("", auth.Middleware(svc.auth), auth.LocationScope())
	protected.Get("/auth/me", auth.MeHandler(svc.auth))

	admin := auth.RequireRole(models.RoleAdmin)
	managers := auth.RequireRole(models.RoleAdmin, models.RoleManager)
	frontOfHouse := auth.RequireRole(models.RoleAdmin, models.RoleManager, models.RoleStaff)

	// Locations
	protected.Get("/locations", location.ListLocationsHandler(svc.location))
	protected.Post("/locations", admin, location.CreateLocationHandler(svc.location))
	protected.Get("/locations/:id", location.GetLocationHandler(svc.location))
	protected.Put("/locations/:id", admin, location.UpdateLocationHandler(svc.location))
	protected.Delete("/locations/:id", admin, location.DeleteLocationHandler(svc.location))

	// Staff users
	users := protected.Group("/users", managers)
	users.Get("/", user.ListUsersHandler(svc.user))
	users.Post("/", user.CreateUserHandler(svc.user))
	users.Get("/:id", user.GetUserHandler(svc.user))
	users.Put("/:id", user.UpdateUserHandler(svc.user))
	users.Delete("/:id", user.DeleteUserHandler(svc.user))

	// Taxonomy
	protected.Get("/taxonomy", taxonomy.TreeHandler(svc.taxonomy))

	protected.Get("/food-categories", taxonomy.ListCategoriesHandler(svc.taxonomy))
	protected.Get("/food-categories/:id", taxonomy.GetCategoryHandler(svc.taxonomy))
	protected.Post("/food-categories", managers, taxonomy.CreateCategoryHandler(svc.taxonomy))
	protected.Put("/food-categories/:id", managers, taxonomy.UpdateCategoryHandler(svc.taxonomy))
	protected.Delete("/food-categories/:id", managers, taxonomy.DeleteCategoryHandler(svc.taxonomy))

	protected.Get("/food-types", taxonomy.ListFoodTypesHandler(svc.taxonomy))
	protected.Get("/food-types/:id", taxonomy.GetFoodTypeHandler(svc.taxonomy))
	protected.Post("/food-types", managers, taxonomy.CreateFoodTypeHandler(svc.taxonomy))
	protected.Put("/food-types/:id", managers, taxonomy.UpdateFoodTypeHandler(svc.taxonomy))
	protected.Delete("/food-types/:id", managers, taxonomy.DeleteFoodTypeHandler(svc.taxonomy))

	protected.Get("/specifications", taxonomy.ListSpecificationsHandler(svc.taxonomy))
	protected.Get("/specifications/:id", taxonomy.GetSpecificationHandler(svc.taxonomy))
	protected.Post("/specifications", managers, taxonomy.CreateSpecificationHandler(svc.taxonomy))
	protected.Put("/specifications/:id", managers, taxonomy.UpdateSpecificationHandler(svc.taxonomy))
	protected.Delete("/specifications/:id", managers, taxonomy.DeleteSpecificationHandler(svc.taxonomy))

	protected.Get("/cook-types", taxonomy.ListCookTypesHandler(svc.taxonomy))
	protected.Get("/cook-types/:id", taxonomy.GetCookTypeHandler(svc.taxonomy))
	protected.Post("/cook-types", managers, taxonomy.CreateCookTypeHandler(svc.taxonomy))
	protected.Put("/cook-types/:id", managers, taxonomy.UpdateCookTypeHandler(svc.taxonomy))
	protected.Delete("/cook-types/:id", managers, taxonomy.DeleteCookTypeHandler(svc.taxonomy))

	// Ingredients
	protected.Get("/ingredients", ingredient.ListIngredientsHandler(svc.ingredient))
	protected.Get("/ingredients/by-category", ingredient.ListByCategoryHandler(svc.ingredient))
	protected.Get("/ingredients/:id", ingredient.GetIngredientHandler(svc.ingredient))
	protected.Post("/ingredients/import", managers, ingredient.ImportIngredientsHandler(svc.ingredient))
	protected.Post("/ingredients", managers, ingredient.CreateIngredientHandler(svc.ingredient))
	protected.Put("/ingredients/:id", managers, ingredient.UpdateIngredientHandler(svc.ingredient))
	protected.Delete("/ingredients/:id", managers, ingredient.DeleteIngredientHandler(svc.ingredient))

	// Menu
	protected.Get("/menu-items", menu.ListMenuItemsHandler(svc.menu))
	protected.Get("/menu-items/:id", menu.GetMenuItemHandler(svc.menu))
	protected.Post("/menu-items", managers, menu.CreateMenuItemHandler(svc.menu))
	protected.Put("/menu-items/:id", managers, menu.UpdateMenuItemHandler(svc.menu))
	protected.Patch("/menu-items/:id/toggle-status", managers, menu.ToggleStatusHandler(svc.menu))
	protected.Delete("/menu-items/:id", managers, menu.DeleteMenuItemHandler(svc.menu))

	// Customers
	customers := protected.Group("/customers", frontOfHouse)
	customers.Get("/", customer.ListCustomersHandler(svc.customer))
	customers.Post("/", customer.CreateCustomerHandler(svc.customer))
	customers.Get("/:id", customer.GetCustomerHandler(svc.customer))
	customers.Put("/:id", customer.UpdateCustomerHandler(svc.customer))
	customers.Delete("/:id", customer.DeleteCustomerHandler(svc.customer))

	// Orders
	protected.Get("/orders", order.ListOrdersHandler(svc.order))
	protected.Get("/orders/stats", order.StatsHandler(svc.order))
	protected.Get("/orders/export", order.ExportHandler(svc.order))
	protected.Get("/orders/chart", order.ChartHandler(svc.order))
	protected.Get("/orders/:id", order.GetOrderHandler(svc.order))
	protected.Post("/orders", frontOfHouse, order.CreateOrderHandler(svc.order))
	protected.Patch("/orders/:id/status", order.UpdateStatusHandler(svc.order))
	protected.Delete("/orders/:id", managers, order.DeleteOrderHandler(svc.order))

	// Audit
	protected.Get("/audit-logs", managers, audit.ListAuditLogsHandler(svc.audit))
}
