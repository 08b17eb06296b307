package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/produmax-api/internal/application/auth"
	"github.com/jhoicas/produmax-api/internal/application/catalog"
	"github.com/jhoicas/produmax-api/internal/application/order"
	"github.com/jhoicas/produmax-api/internal/application/usecase"
	"github.com/jhoicas/produmax-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	OrderUC   *order.OrderUseCase
	ProductUC *catalog.ProductUseCase
	UserUC    *usecase.UserUseCase
	Tokens    *auth.TokenService
	Gate      *auth.Gate
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	authn := AuthMiddleware(deps.Tokens)
	admin := RequireRole(deps.Gate, entity.RoleAdmin)

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Orders: lectura pública, comprobante con token, escritura admin
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/items", orderHandler.Items)
	orders.Get("/:id/receipt", authn, orderHandler.Receipt)
	orders.Post("/", authn, admin, orderHandler.Create)
	orders.Put("/:id", authn, admin, orderHandler.Update)
	orders.Delete("/:id", authn, admin, orderHandler.Delete)

	// Products: lectura pública, escritura admin
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", authn, admin, productHandler.Create)
	products.Put("/:id", authn, admin, productHandler.Update)
	products.Delete("/:id", authn, admin, productHandler.Delete)

	// Users (admin)
	users := api.Group("/users", authn, admin)
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Post("/", userHandler.Create)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)
}
