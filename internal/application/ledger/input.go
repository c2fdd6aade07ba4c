package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// RecordEntryInput adapta la cantidad en texto que entrega la capa de presentación
// (campo de formulario) a RecordEntry. No confía en el llamador: valida con inventory.ParseQuantity.
func (e *Engine) RecordEntryInput(ctx context.Context, productID int64, rawQuantity string) (*entity.Product, error) {
	qty, err := inventory.ParseQuantity(rawQuantity)
	if err != nil {
		return nil, err
	}
	return e.RecordEntry(ctx, productID, qty)
}

// RecordExitInput es el equivalente de RecordEntryInput para salidas.
func (e *Engine) RecordExitInput(ctx context.Context, productID int64, rawQuantity string) (*entity.Product, error) {
	qty, err := inventory.ParseQuantity(rawQuantity)
	if err != nil {
		return nil, err
	}
	return e.RecordExit(ctx, productID, qty)
}
