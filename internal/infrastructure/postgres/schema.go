package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/stock-ledger/internal/infrastructure/schema"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// schemaLockKey serializa la creación del esquema entre procesos (pg_advisory_xact_lock).
const schemaLockKey = 7_301_120

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id           BIGSERIAL     PRIMARY KEY,
		nombre       TEXT          NOT NULL CHECK (length(btrim(nombre)) > 0),
		precio       NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (precio >= 0),
		minStock     BIGINT        NOT NULL DEFAULT 0 CHECK (minStock >= 0),
		maxStock     BIGINT        NOT NULL DEFAULT 0,
		currentStock BIGINT        NOT NULL DEFAULT 0 CHECK (currentStock >= 0),
		baseStock    BIGINT        NOT NULL DEFAULT 0 CHECK (baseStock >= 0),
		CHECK (maxStock >= minStock)
	)`,
	`CREATE TABLE IF NOT EXISTS stock_entries (
		id        BIGSERIAL   PRIMARY KEY,
		productId BIGINT      NOT NULL REFERENCES products(id),
		cantidad  BIGINT      NOT NULL CHECK (cantidad > 0),
		fecha     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_exits (
		id        BIGSERIAL   PRIMARY KEY,
		productId BIGINT      NOT NULL REFERENCES products(id),
		cantidad  BIGINT      NOT NULL CHECK (cantidad > 0),
		fecha     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_entries_product ON stock_entries(productId, id)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_exits_product ON stock_exits(productId, id)`,
	`CREATE OR REPLACE FUNCTION ledger_append_only() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION '% es de solo inserción', TG_TABLE_NAME;
	END;
	$$ LANGUAGE plpgsql`,
	`CREATE OR REPLACE TRIGGER stock_entries_append_only
		BEFORE UPDATE OR DELETE ON stock_entries
		FOR EACH ROW EXECUTE FUNCTION ledger_append_only()`,
	`CREATE OR REPLACE TRIGGER stock_exits_append_only
		BEFORE UPDATE OR DELETE ON stock_exits
		FOR EACH ROW EXECUTE FUNCTION ledger_append_only()`,
}

var _ schema.Manager = (*SchemaManager)(nil)

// SchemaManager crea el esquema del ledger en PostgreSQL una vez por proceso.
type SchemaManager struct {
	pool *pgxpool.Pool
	log  *logger.Logger
	gate schema.Gate
}

// NewSchemaManager construye el gestor de esquema.
func NewSchemaManager(pool *pgxpool.Pool, log *logger.Logger) *SchemaManager {
	if log == nil {
		log = logger.Nop()
	}
	return &SchemaManager{pool: pool, log: log}
}

// EnsureSchema crea las tablas si no existen (idempotente, sin versiones).
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	return m.gate.Do(ctx, m.apply)
}

func (m *SchemaManager) apply(ctx context.Context) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("lock schema: %w", err)
	}
	for _, stmt := range schemaStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("crear esquema: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	m.log.Info().Str("driver", "postgres").Msg("esquema del ledger verificado")
	return nil
}
