package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine        *ledger.Engine
	Kardex        *report.KardexUseCase
	StorageDriver string
	Log           *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Log != nil {
		app.Use(RequestLogger(deps.Log))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(dto.HealthResponse{Status: "ok", Storage: deps.StorageDriver})
	})

	api := app.Group("/api")

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.Engine)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Get("/:id/reconciliation", productHandler.Reconciliation)

	movementHandler := NewMovementHandler(deps.Engine, deps.Kardex)
	products.Get("/:id/movements", movementHandler.List)
	products.Post("/:id/entries", movementHandler.RecordEntry)
	products.Post("/:id/exits", movementHandler.RecordExit)
	if deps.Kardex != nil {
		products.Get("/:id/kardex.pdf", movementHandler.KardexPDF)
	}
}
