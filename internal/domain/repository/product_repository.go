package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetByID e Increment/DecrementStock devuelven (nil, nil) cuando el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	// IncrementStock suma qty a currentStock y devuelve el producto actualizado.
	IncrementStock(ctx context.Context, id, qty int64) (*entity.Product, error)
	// DecrementStock resta qty sólo si currentStock >= qty (update condicional).
	// Devuelve (nil, nil) si el producto no existe o no alcanza el stock.
	DecrementStock(ctx context.Context, id, qty int64) (*entity.Product, error)
}
