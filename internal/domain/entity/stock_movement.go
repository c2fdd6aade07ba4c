package entity

import "time"

// MovementKind distingue los dos libros de movimientos.
type MovementKind string

// Tipos de movimiento de stock.
const (
	MovementEntry MovementKind = "entrada" // stock_entries
	MovementExit  MovementKind = "salida"  // stock_exits
)

// Valid indica si el tipo de movimiento es conocido.
func (k MovementKind) Valid() bool {
	return k == MovementEntry || k == MovementExit
}

// StockMovement es una fila inmutable del libro de entradas o de salidas.
// ID lo asigna el almacenamiento al insertar; Fecha la asigna el motor del ledger.
type StockMovement struct {
	ID        int64
	ProductID int64
	Kind      MovementKind
	Cantidad  int64
	Fecha     time.Time
}
