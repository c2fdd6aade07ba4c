package sqlite

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de PRIMARY KEY o UNIQUE.
func isUniqueViolation(err error) bool {
	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		return sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			sqErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// ledgerTable devuelve la tabla del libro correspondiente al tipo de movimiento.
func ledgerTable(kind entity.MovementKind) (string, error) {
	switch kind {
	case entity.MovementEntry:
		return "stock_entries", nil
	case entity.MovementExit:
		return "stock_exits", nil
	}
	return "", fmt.Errorf("tipo de movimiento desconocido %q", kind)
}
