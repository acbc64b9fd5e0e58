package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Cart           *handlers.CartHandler
	Orders         *handlers.OrdersHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	api := app.Group("/api")
	protect := cfg.AuthMiddleware.Handle
	admin := auth.RequireRole(domain.RoleAdmin)

	health := api.Group("/health")
	health.Get("/", cfg.Health.Live)
	health.Get("/ready", cfg.Health.Ready)
	health.Get("/metrics", cfg.Health.Metrics)

	authGroup := api.Group("/auth")
	authGroup.Post("/send-otp", cfg.Auth.SendOTP)
	authGroup.Post("/verify-otp", cfg.Auth.VerifyOTP)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Post("/register-details", protect, cfg.Auth.RegisterDetails)
	authGroup.Get("/me", protect, cfg.Auth.Me)
	authGroup.Post("/logout", protect, cfg.Auth.Logout)
	authGroup.Put("/change-password", protect, cfg.Auth.ChangePassword)

	users := api.Group("/users", protect)
	users.Get("/profile", cfg.Users.Profile)
	users.Put("/profile", cfg.Users.UpdateProfile)
	users.Get("/", admin, cfg.Users.List)
	users.Get("/:id", admin, cfg.Users.Get)
	users.Delete("/:id", admin, cfg.Users.Deactivate)

	cart := api.Group("/cart", protect)
	cart.Get("/", cfg.Cart.Get)
	cart.Delete("/", cfg.Cart.Clear)
	cart.Post("/items", cfg.Cart.AddItem)
	cart.Put("/items/:productId", cfg.Cart.UpdateItem)
	cart.Delete("/items/:productId", cfg.Cart.RemoveItem)

	orders := api.Group("/orders", protect)
	orders.Post("/", cfg.Orders.Place)
	orders.Get("/", admin, cfg.Orders.List)
	orders.Get("/myorders", cfg.Orders.Mine)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Put("/:id/pay", cfg.Orders.Pay)
	orders.Put("/:id/status", admin, cfg.Orders.UpdateStatus)

	products := api.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", protect, admin, cfg.Products.Create)
	products.Put("/:id", protect, admin, cfg.Products.Update)
}
