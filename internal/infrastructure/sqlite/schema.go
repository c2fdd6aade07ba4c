package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/schema"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// schemaStatements crea las tablas si no existen. No altera ni borra datos existentes.
// Los triggers hacen de stock_entries y stock_exits libros de solo inserción.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id           INTEGER PRIMARY KEY,
		nombre       TEXT    NOT NULL CHECK (length(trim(nombre)) > 0),
		precio       REAL    NOT NULL DEFAULT 0 CHECK (precio >= 0),
		minStock     INTEGER NOT NULL DEFAULT 0 CHECK (minStock >= 0),
		maxStock     INTEGER NOT NULL DEFAULT 0 CHECK (maxStock >= minStock),
		currentStock INTEGER NOT NULL DEFAULT 0 CHECK (currentStock >= 0),
		baseStock    INTEGER NOT NULL DEFAULT 0 CHECK (baseStock >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_entries (
		id        INTEGER PRIMARY KEY,
		productId INTEGER   NOT NULL REFERENCES products(id),
		cantidad  INTEGER   NOT NULL CHECK (cantidad > 0),
		fecha     TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_exits (
		id        INTEGER PRIMARY KEY,
		productId INTEGER   NOT NULL REFERENCES products(id),
		cantidad  INTEGER   NOT NULL CHECK (cantidad > 0),
		fecha     TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_entries_product ON stock_entries(productId, id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_exits_product ON stock_exits(productId, id)`,
	`CREATE TRIGGER IF NOT EXISTS stock_entries_no_update BEFORE UPDATE ON stock_entries
	BEGIN SELECT RAISE(ABORT, 'stock_entries es de solo inserción'); END`,
	`CREATE TRIGGER IF NOT EXISTS stock_entries_no_delete BEFORE DELETE ON stock_entries
	BEGIN SELECT RAISE(ABORT, 'stock_entries es de solo inserción'); END`,
	`CREATE TRIGGER IF NOT EXISTS stock_exits_no_update BEFORE UPDATE ON stock_exits
	BEGIN SELECT RAISE(ABORT, 'stock_exits es de solo inserción'); END`,
	`CREATE TRIGGER IF NOT EXISTS stock_exits_no_delete BEFORE DELETE ON stock_exits
	BEGIN SELECT RAISE(ABORT, 'stock_exits es de solo inserción'); END`,
}

var _ schema.Manager = (*SchemaManager)(nil)

// SchemaManager crea el esquema del ledger una vez por proceso.
type SchemaManager struct {
	db   *sql.DB
	log  *logger.Logger
	gate schema.Gate
}

// NewSchemaManager construye el gestor de esquema.
func NewSchemaManager(db *sql.DB, log *logger.Logger) *SchemaManager {
	if log == nil {
		log = logger.Nop()
	}
	return &SchemaManager{db: db, log: log}
}

// EnsureSchema crea las tablas si no existen. Seguro de llamar en cada arranque y desde
// varias goroutines: sólo la primera llamada exitosa toca la base.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	return m.gate.Do(ctx, m.apply)
}

func (m *SchemaManager) apply(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("crear esquema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	m.log.Info().Str("driver", "sqlite").Msg("esquema del ledger verificado")
	return nil
}
