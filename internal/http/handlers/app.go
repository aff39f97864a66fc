package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"basket/internal/domain"
	applog "basket/internal/log"
)

const Version = "1.0.0"

// NewApp builds the fiber app with middleware and every route mounted.
func NewApp(d *Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:      "basket",
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if cfg.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit,
			Expiration: time.Minute,
			Next: func(c *fiber.Ctx) bool {
				p := c.Path()
				return p == "/" || p == "/healthz"
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate.global.hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many requests, please slow down."})
			},
		}))
	}

	loginLimiter := func(scope string) fiber.Handler {
		return limiter.New(limiter.Config{
			Max:        5,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP() + "|" + scope
			},
			LimitReached: func(c *fiber.Ctx) error {
				applog.Security(c, "rate."+scope+".hit", nil)
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "Too many attempts. Please try again later."})
			},
		})
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Basket Grocery API is running", "version": Version})
	})
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api")

	// Shoppers
	api.Post("/signup", d.AuthHandler.Signup)
	api.Post("/login", loginLimiter("login"), d.AuthHandler.Login)
	api.Get("/pricing", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"deliveryFee": cfg.DeliveryFee, "freeDeliveryAbove": cfg.FreeAbove})
	})

	user := RequireUser(d.Tokens)
	api.Get("/user/profile", user, d.AuthHandler.Profile)
	api.Put("/user/profile", user, d.AuthHandler.UpdateProfile)
	api.Post("/order", user, d.OrderHandler.Place)
	api.Get("/user/orders", user, d.OrderHandler.History)

	// Catalog
	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/featured", d.ProductHandler.Featured)
	api.Get("/products/category/:categoryId", d.ProductHandler.ByCategory)
	api.Get("/products/:id", d.ProductHandler.Detail)
	api.Get("/categories", d.CategoryHandler.List)
	api.Get("/categories/:id", d.CategoryHandler.Detail)

	// Admin
	ah := d.AdminHandler
	api.Post("/admin/setup", ah.Setup)
	api.Post("/admin/login", loginLimiter("admin_login"), ah.Login)

	admin := api.Group("/admin", RequireAdmin(d.Tokens))
	can := RequireCapability

	admin.Get("/admins", ah.ListAdmins)
	admin.Post("/register", can(domain.CapManageAdmins), ah.Register)
	admin.Put("/admins/:id", can(domain.CapManageAdmins), ah.UpdateAdmin)
	admin.Put("/admins/:id/password", can(domain.CapManageAdmins), ah.ChangePassword)
	admin.Delete("/admins/:id", can(domain.CapManageAdmins), ah.DeleteAdmin)

	admin.Get("/products", can(domain.CapManageProducts), ah.Products)
	admin.Post("/products", can(domain.CapManageProducts), ah.CreateProduct)
	admin.Put("/products/:id", can(domain.CapManageProducts), ah.UpdateProduct)
	admin.Delete("/products/:id", can(domain.CapManageProducts), ah.DeleteProduct)

	admin.Get("/categories", can(domain.CapManageCategories), ah.Categories)
	admin.Post("/categories", can(domain.CapManageCategories), ah.CreateCategory)
	admin.Put("/categories/:id", can(domain.CapManageCategories), ah.UpdateCategory)
	admin.Delete("/categories/:id", can(domain.CapManageCategories), ah.DeleteCategory)

	admin.Get("/users", can(domain.CapManageUsers), ah.Users)
	admin.Put("/users/:id", can(domain.CapManageUsers), ah.UpdateUser)
	admin.Delete("/users/:id", can(domain.CapManageUsers), ah.DeleteUser)

	admin.Get("/orders", can(domain.CapManageOrders), ah.ListOrders)
	admin.Put("/orders/:id", can(domain.CapManageOrders), ah.UpdateOrderStatus)
	admin.Delete("/orders/:id", can(domain.CapManageOrders), ah.DeleteOrder)
	admin.Get("/orders/:id/next", can(domain.CapManageOrders), ah.NextStatuses)

	admin.Get("/stats", can(domain.CapViewReports), ah.Stats)

	// 404
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Route not found"})
	})

	return app
}
