package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia de los libros de entradas y salidas.
// Sólo se agregan filas: no existe actualización ni borrado.
type StockMovementRepository interface {
	// Append inserta el movimiento en el libro de su Kind y asigna movement.ID.
	Append(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos de un libro ordenados por id ascendente.
	ListByProduct(ctx context.Context, kind entity.MovementKind, productID int64) ([]*entity.StockMovement, error)
	// SumByProduct devuelve la suma de cantidades de un libro para el producto.
	SumByProduct(ctx context.Context, kind entity.MovementKind, productID int64) (int64, error)
}
