package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementHandler registro de entradas/salidas e historial del producto.
type MovementHandler struct {
	engine *ledger.Engine
	kardex *report.KardexUseCase
}

// NewMovementHandler construye el handler. kardex puede ser nil (sin ruta de PDF).
func NewMovementHandler(engine *ledger.Engine, kardex *report.KardexUseCase) *MovementHandler {
	return &MovementHandler{engine: engine, kardex: kardex}
}

// RecordEntry godoc
// @Summary      Registrar entrada de stock
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del producto"
// @Param        body  body  dto.MovementRequest  true  "cantidad (entero positivo)"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/entries [post]
func (h *MovementHandler) RecordEntry(c *fiber.Ctx) error {
	return h.record(c, h.engine.RecordEntryInput)
}

// RecordExit godoc
// @Summary      Registrar salida de stock
// @Description  Rechaza con 409 si la cantidad supera el stock actual.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true  "ID del producto"
// @Param        body  body  dto.MovementRequest  true  "cantidad (entero positivo)"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/exits [post]
func (h *MovementHandler) RecordExit(c *fiber.Ctx) error {
	return h.record(c, h.engine.RecordExitInput)
}

func (h *MovementHandler) record(c *fiber.Ctx, fn func(ctx context.Context, id int64, raw string) (*entity.Product, error)) error {
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "cuerpo inválido"})
	}
	p, err := fn(c.UserContext(), id, in.Cantidad.String())
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
}

// List godoc
// @Summary      Historial de movimientos
// @Description  Ingresos y egresos del producto, cada lista en orden de registro.
// @Tags         movements
// @Produce      json
// @Param        id   path      int  true  "ID del producto"
// @Success      200  {object}  dto.MovementsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	entries, exits, err := h.engine.ListMovements(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementsResponse{
		Ingresos: toMovementResponses(entries),
		Egresos:  toMovementResponses(exits),
	})
}

// KardexPDF godoc
// @Summary      Kardex del producto en PDF
// @Tags         movements
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del producto"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/kardex.pdf [get]
func (h *MovementHandler) KardexPDF(c *fiber.Ctx) error {
	id, err := productIDParam(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.kardex.KardexPDF(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="kardex-`+strconv.FormatInt(id, 10)+`.pdf"`)
	return c.Send(out)
}
