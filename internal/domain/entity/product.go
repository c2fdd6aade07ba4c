package entity

import "github.com/shopspring/decimal"

// Product representa un producto del inventario.
// CurrentStock sólo cambia mediante entradas y salidas registradas en el libro (ledger);
// BaseStock es el stock con el que se importó el producto y nunca se modifica.
type Product struct {
	ID           int64
	Nombre       string
	Precio       decimal.Decimal
	MinStock     int64
	MaxStock     int64
	CurrentStock int64
	BaseStock    int64
}

// BelowMinimum indica si el stock actual está por debajo del mínimo configurado.
func (p *Product) BelowMinimum() bool {
	return p.CurrentStock < p.MinStock
}

// AboveMaximum indica si el stock actual supera el máximo (sólo informativo, no se bloquea).
func (p *Product) AboveMaximum() bool {
	return p.MaxStock > 0 && p.CurrentStock > p.MaxStock
}
