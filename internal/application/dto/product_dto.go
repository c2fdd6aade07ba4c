package dto

import (
	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto con sus indicadores de stock.
type ProductResponse struct {
	ID           int64           `json:"id"`
	Nombre       string          `json:"nombre"`
	Precio       decimal.Decimal `json:"precio" swaggertype:"string"`
	MinStock     int64           `json:"stock_minimo"`
	MaxStock     int64           `json:"stock_maximo"`
	CurrentStock int64           `json:"stock_actual"`
	BaseStock    int64           `json:"stock_base"`
	BajoMinimo   bool            `json:"bajo_minimo"`
	SobreMaximo  bool            `json:"sobre_maximo"`
}

// ProductListResponse lista completa de productos (sin paginación).
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// ProductSeed fila de importación del catálogo (CSV de cmd/seed).
type ProductSeed struct {
	ID           int64           `json:"id" validate:"gte=0"`
	Nombre       string          `json:"nombre" validate:"required,min=1,max=200"`
	Precio       decimal.Decimal `json:"precio"`
	MinStock     int64           `json:"stock_minimo" validate:"gte=0"`
	MaxStock     int64           `json:"stock_maximo" validate:"gte=0,gtefield=MinStock"`
	CurrentStock int64           `json:"stock_actual" validate:"gte=0"`
}

// ImportResult resumen de una importación de catálogo.
type ImportResult struct {
	Imported int     `json:"importados"`
	IDs      []int64 `json:"ids"`
}
