// Package storage abre el backend del ledger elegido por configuración (SQLite embebido o
// PostgreSQL) y lo expone con los mismos puertos a las capas de aplicación.
package storage

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/schema"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Backend agrupa los adaptadores de un motor de almacenamiento ya inicializado.
type Backend struct {
	Driver   string
	TxRunner ledger.TxRunner
	Products repository.ProductRepository
	Schema   schema.Manager

	close func()
}

// Close libera las conexiones del backend.
func (b *Backend) Close() {
	if b != nil && b.close != nil {
		b.close()
	}
}

// Open conecta con el motor configurado y asegura el esquema antes de devolverlo.
func Open(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*Backend, error) {
	if log == nil {
		log = logger.Nop()
	}

	var b *Backend
	switch cfg.Driver {
	case config.DriverSQLite, "":
		db, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("abrir sqlite: %w", err)
		}
		b = &Backend{
			Driver:   config.DriverSQLite,
			TxRunner: sqlite.NewTxRunner(db),
			Products: sqlite.NewProductRepository(db),
			Schema:   sqlite.NewSchemaManager(db, log),
			close:    func() { _ = db.Close() },
		}
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("abrir postgres: %w", err)
		}
		b = &Backend{
			Driver:   config.DriverPostgres,
			TxRunner: postgres.NewTxRunner(pool),
			Products: postgres.NewProductRepository(pool),
			Schema:   postgres.NewSchemaManager(pool, log),
			close:    pool.Close,
		}
	default:
		return nil, fmt.Errorf("driver de almacenamiento no soportado: %q", cfg.Driver)
	}

	if err := b.Schema.EnsureSchema(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("inicializar esquema: %w", err)
	}
	log.Info().Str("driver", b.Driver).Msg("almacenamiento listo")
	return b, nil
}

var (
	sharedMu    sync.Mutex
	shared      *Backend
	sharedGroup singleflight.Group
)

// Shared devuelve el backend único del proceso, abriéndolo en la primera llamada.
// Llamadas concurrentes durante la apertura esperan el mismo resultado.
func Shared(ctx context.Context, cfg config.StorageConfig, log *logger.Logger) (*Backend, error) {
	sharedMu.Lock()
	b := shared
	sharedMu.Unlock()
	if b != nil {
		return b, nil
	}

	v, err, _ := sharedGroup.Do("shared", func() (any, error) {
		sharedMu.Lock()
		if shared != nil {
			defer sharedMu.Unlock()
			return shared, nil
		}
		sharedMu.Unlock()

		opened, err := Open(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		sharedMu.Lock()
		shared = opened
		sharedMu.Unlock()
		return opened, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Backend), nil
}

// CloseShared cierra el backend compartido; una llamada posterior a Shared vuelve a abrirlo.
func CloseShared() {
	sharedMu.Lock()
	b := shared
	shared = nil
	sharedMu.Unlock()
	b.Close()
}
