// Package sqlite implementa los puertos de persistencia del ledger sobre un archivo SQLite
// (motor embebido, durable, de un solo archivo).
//
// La base se abre en modo WAL, con BEGIN IMMEDIATE en cada transacción y una única conexión
// compartida: las escrituras quedan serializadas y el update condicional de stock nunca
// compite contra una lectura obsoleta.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jhoicas/stock-ledger/pkg/config"
)

// Open abre (o crea) el archivo de base de datos y verifica la conexión.
func Open(ctx context.Context, cfg config.SQLiteConfig) (*sql.DB, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: ruta vacía")
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("crear directorio de la base: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	// Una sola conexión: SQLite admite un escritor a la vez y así las transacciones
	// esperan en el pool en lugar de fallar con SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// DSN construye la cadena de conexión de go-sqlite3 con las opciones del ledger.
func DSN(cfg config.SQLiteConfig) string {
	busy := cfg.BusyTimeoutMS
	if busy <= 0 {
		busy = 5000
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_txlock=immediate&_foreign_keys=on&_loc=UTC",
		cfg.Path, busy)
}
