package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/pos-backoffice/internal/application/inventory"
	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TransferUC  *transfer.TransferUseCase
	StockUC     *inventory.StockUseCase
	JWTSecret   string
	JWTIssuer   string
	ServiceName string
	Gatherer    prometheus.Gatherer // nil = sin /metrics
}

// Router registra /health, /metrics y las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC, deps.StockUC)
	transfers.Post("/", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero, jwt.RoleVendedor), transferHandler.Create)
	transfers.Post("/ledger/link-orphans", RequireRole(jwt.RoleAdmin), transferHandler.LinkOrphans)
	transfers.Post("/:id/resume", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), transferHandler.Resume)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Get("/:id/slip", transferHandler.Slip)
	transfers.Get("/:id/movements", transferHandler.Movements)

	invGroup := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.StockUC)
	invGroup.Get("/:kind/:id", inventoryHandler.ListByLocation)
	invGroup.Put("/:kind/:id/products/:product_id", RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero), inventoryHandler.Adjust)
}
