package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// ParseQuantity convierte la cantidad tecleada por el usuario en un entero estrictamente positivo
// (servicio de dominio puro, sin dependencia de la capa de presentación).
// Rechaza vacío, texto no numérico, decimales, cero, negativos y desbordamiento con domain.ErrInvalidInput.
func ParseQuantity(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: cantidad vacía", domain.ErrInvalidInput)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cantidad %q no es un entero", domain.ErrInvalidInput, raw)
	}
	if err := ValidateQuantity(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ValidateQuantity exige una cantidad de movimiento estrictamente positiva.
func ValidateQuantity(n int64) error {
	if n <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un número positivo (recibido %d)", domain.ErrInvalidInput, n)
	}
	return nil
}
