package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, nombre, precio, minStock, maxStock, currentStock, baseStock`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Nombre, &p.Precio, &p.MinStock, &p.MaxStock, &p.CurrentStock, &p.BaseStock); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un producto importado. Con ID explícito se adelanta la secuencia
// para que los productos creados después no colisionen.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	var err error
	if product.ID > 0 {
		_, err = r.q.Exec(ctx,
			`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			product.ID, product.Nombre, product.Precio, product.MinStock, product.MaxStock,
			product.CurrentStock, product.BaseStock,
		)
		if err == nil {
			_, err = r.q.Exec(ctx,
				`SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT MAX(id) FROM products))`)
		}
	} else {
		err = r.q.QueryRow(ctx,
			`INSERT INTO products (nombre, precio, minStock, maxStock, currentStock, baseStock)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			product.Nombre, product.Precio, product.MinStock, product.MaxStock,
			product.CurrentStock, product.BaseStock,
		).Scan(&product.ID)
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List devuelve todos los productos ordenados por id.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
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

// IncrementStock suma qty a currentStock (el UPDATE toma el lock de la fila) y devuelve la fila.
func (r *ProductRepo) IncrementStock(ctx context.Context, id, qty int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`UPDATE products SET currentStock = currentStock + $2 WHERE id = $1 RETURNING `+productColumns,
		id, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("increment stock: %w", err)
	}
	return p, nil
}

// DecrementStock resta qty sólo si alcanza el stock. Bajo READ COMMITTED una segunda
// transacción espera el lock de la fila y reevalúa el WHERE con el valor confirmado.
func (r *ProductRepo) DecrementStock(ctx context.Context, id, qty int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx,
		`UPDATE products SET currentStock = currentStock - $2 WHERE id = $1 AND currentStock >= $2 RETURNING `+productColumns,
		id, qty))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("decrement stock: %w", err)
	}
	return p, nil
}
