package dto

import (
	"encoding/json"
	"time"
)

// MovementRequest body de POST /api/products/:id/entries y /exits.
// Cantidad se recibe como número JSON (o texto numérico) y se valida como entero positivo.
type MovementRequest struct {
	Cantidad json.Number `json:"cantidad" swaggertype:"integer" example:"5"`
}

// MovementResponse una fila del libro de entradas o salidas.
type MovementResponse struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Tipo      string    `json:"tipo"`
	Cantidad  int64     `json:"cantidad"`
	Fecha     time.Time `json:"fecha"`
}

// MovementsResponse historial de un producto: ingresos y egresos por separado.
type MovementsResponse struct {
	Ingresos []MovementResponse `json:"ingresos"`
	Egresos  []MovementResponse `json:"egresos"`
}

// ReconciliationResponse comparación del stock actual con el reconstruido desde el libro.
type ReconciliationResponse struct {
	ProductID     int64 `json:"product_id"`
	StockBase     int64 `json:"stock_base"`
	TotalIngresos int64 `json:"total_ingresos"`
	TotalEgresos  int64 `json:"total_egresos"`
	Esperado      int64 `json:"esperado"`
	Actual        int64 `json:"actual"`
	Diferencia    int64 `json:"diferencia"`
	Consistente   bool  `json:"consistente"`
}
