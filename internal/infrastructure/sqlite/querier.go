package sqlite

import (
	"context"
	"database/sql"
)

// Querier es el subconjunto común de *sql.DB y *sql.Tx que usan los repositorios.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
