package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/presupuestos-api/internal/application/inventory"
	"github.com/jhoicas/presupuestos-api/internal/application/lifecycle"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
	Dispatcher  *lifecycle.Dispatcher
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	inventoryHandler := NewInventoryHandler(deps.InventoryUC)

	// Stock (protegido)
	stock := protected.Group("/stock")
	stock.Post("/", inventoryHandler.TrackProduct)
	stock.Get("/low", inventoryHandler.ListLowStock)
	stock.Get("/:product_id", inventoryHandler.GetStock)
	stock.Put("/:product_id/min-quantity", inventoryHandler.SetMinQuantity)

	// Movimientos de inventario (protegido)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/consume", inventoryHandler.Consume)
	invGroup.Post("/return", inventoryHandler.Return)
	invGroup.Get("/:product_id/movements", inventoryHandler.ListMovements)
	invGroup.Get("/:product_id/balance", inventoryHandler.GetBalance)

	// Eventos del ciclo de vida de documentos (protegido)
	lifecycleHandler := NewLifecycleHandler(deps.Dispatcher)
	lc := protected.Group("/lifecycle")
	lc.Post("/status-changed", lifecycleHandler.StatusChanged)
	lc.Post("/item-deleted", lifecycleHandler.ItemDeleted)
}
