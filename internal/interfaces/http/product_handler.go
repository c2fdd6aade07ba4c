package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// ProductHandler consultas de productos (pantalla de inicio y detalle).
type ProductHandler struct {
	engine *ledger.Engine
}

// NewProductHandler construye el handler.
func NewProductHandler(engine *ledger.Engine) *ProductHandler {
	return &ProductHandler{engine: engine}
}

// List godoc
// @Summary      Listar productos
// @Description  Todos los productos ordenados por id, con indicador bajo_minimo.
// @Tags         products
// @Produce      json
// @Success      200  {object}  dto.ProductListResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.engine.ListProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, toProductResponse(p))
	}
	return c.JSON(dto.ProductListResponse{Items: items, Total: len(items)})
}

// GetByID godoc
// @Summary      Obtener producto por ID
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	p, err := h.engine.GetProduct(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toProductResponse(p))
}

// Reconciliation godoc
// @Summary      Conciliar stock con el libro
// @Description  Compara stock_actual con stock_base + Σ ingresos − Σ egresos.
// @Tags         products
// @Produce      json
// @Param        id   path      int  true  "ID del producto"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/reconciliation [get]
func (h *ProductHandler) Reconciliation(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	rec, err := h.engine.Reconcile(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReconciliationResponse(rec))
}
