package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
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
