package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, nombre, precio, minStock, maxStock, currentStock, baseStock`

// ProductRepo implementación del puerto ProductRepository sobre SQLite (usable con db o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar db o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*entity.Product, error) {
	var (
		p      entity.Product
		precio float64
	)
	if err := row.Scan(&p.ID, &p.Nombre, &precio, &p.MinStock, &p.MaxStock, &p.CurrentStock, &p.BaseStock); err != nil {
		return nil, err
	}
	p.Precio = decimal.NewFromFloat(precio)
	return &p, nil
}

// Create persiste un producto importado. Si ID es 0 lo asigna SQLite.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	var id any
	if product.ID > 0 {
		id = product.ID
	}
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, product.Nombre, product.Precio.InexactFloat64(), product.MinStock, product.MaxStock,
		product.CurrentStock, product.BaseStock,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	if product.ID == 0 {
		newID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert product id: %w", err)
		}
		product.ID = newID
	}
	return nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List devuelve todos los productos ordenados por id.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := []*entity.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// IncrementStock suma qty a currentStock y devuelve la fila actualizada.
func (r *ProductRepo) IncrementStock(ctx context.Context, id, qty int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx,
		`UPDATE products SET currentStock = currentStock + ? WHERE id = ? RETURNING `+productColumns,
		qty, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return p, nil
}

// DecrementStock resta qty sólo si alcanza el stock (compare-and-swap en el WHERE).
func (r *ProductRepo) DecrementStock(ctx context.Context, id, qty int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRowContext(ctx,
		`UPDATE products SET currentStock = currentStock - ? WHERE id = ? AND currentStock >= ? RETURNING `+productColumns,
		qty, id, qty))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	return p, nil
}
