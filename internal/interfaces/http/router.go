package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/Inventario-ledger/internal/application/usecase"
	"github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC  *inventory.LedgerUseCase
	ProductUC *usecase.ProductUseCase // nil = sin catálogo, no se montan /api/products
	JWTSecret string
	JWTIssuer string

	Logger         zerolog.Logger
	HTTPObserver   HTTPObserver // opcional
	MetricsHandler http.Handler // opcional, se monta en /metrics
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestLogger(deps.Logger, deps.HTTPObserver))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.MetricsHandler))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	adminOnly := RequireRole(jwt.RoleAdmin)

	// Ledger de inventario
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC)
	inv.Post("/receive", writers, inventoryHandler.Receive)
	inv.Post("/issue", writers, inventoryHandler.Issue)
	inv.Post("/scan", writers, inventoryHandler.Scan)
	inv.Get("/items", inventoryHandler.ListItems)
	inv.Patch("/items/:sku", adminOnly, inventoryHandler.RenameItem)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Get("/report", inventoryHandler.Report)

	// Catálogo de productos (solo si hay almacén configurado)
	if deps.ProductUC != nil {
		products := protected.Group("/products")
		productHandler := NewProductHandler(deps.ProductUC)
		products.Post("/", adminOnly, productHandler.Create)
		products.Get("/", productHandler.List)
		products.Get("/:productId", productHandler.GetByID)
		products.Put("/:productId", adminOnly, productHandler.Update)
		products.Delete("/:productId", adminOnly, productHandler.Delete)
	}
}
