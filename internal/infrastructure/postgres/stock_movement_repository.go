package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación de los libros stock_entries / stock_exits sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append agrega la fila al libro del tipo del movimiento y asigna su ID.
func (r *StockMovementRepo) Append(ctx context.Context, movement *entity.StockMovement) error {
	table, err := ledgerTable(movement.Kind)
	if err != nil {
		return err
	}
	err = r.q.QueryRow(ctx,
		`INSERT INTO `+table+` (productId, cantidad, fecha) VALUES ($1, $2, $3) RETURNING id`,
		movement.ProductID, movement.Cantidad, movement.Fecha,
	).Scan(&movement.ID)
	if err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// ListByProduct lista los movimientos de un libro para el producto, en orden de inserción.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, kind entity.MovementKind, productID int64) ([]*entity.StockMovement, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx,
		`SELECT id, productId, cantidad, fecha FROM `+table+` WHERE productId = $1 ORDER BY id`, productID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()
	list := []*entity.StockMovement{}
	for rows.Next() {
		m := entity.StockMovement{Kind: kind}
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Cantidad, &m.Fecha); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		m.Fecha = m.Fecha.UTC()
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumByProduct suma las cantidades de un libro para el producto.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, kind entity.MovementKind, productID int64) (int64, error) {
	table, err := ledgerTable(kind)
	if err != nil {
		return 0, err
	}
	var sum int64
	err = r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(cantidad), 0)::BIGINT FROM `+table+` WHERE productId = $1`, productID).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum %s: %w", table, err)
	}
	return sum, nil
}
