package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toProductResponse(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:           p.ID,
		Nombre:       p.Nombre,
		Precio:       p.Precio,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		CurrentStock: p.CurrentStock,
		BaseStock:    p.BaseStock,
		BajoMinimo:   p.BelowMinimum(),
		SobreMaximo:  p.AboveMaximum(),
	}
}

func toMovementResponses(list []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:        m.ID,
			ProductID: m.ProductID,
			Tipo:      string(m.Kind),
			Cantidad:  m.Cantidad,
			Fecha:     m.Fecha,
		})
	}
	return out
}

func toReconciliationResponse(r *entity.Reconciliation) dto.ReconciliationResponse {
	return dto.ReconciliationResponse{
		ProductID:     r.ProductID,
		StockBase:     r.BaseStock,
		TotalIngresos: r.TotalEntries,
		TotalEgresos:  r.TotalExits,
		Esperado:      r.Expected,
		Actual:        r.Actual,
		Diferencia:    r.Drift(),
		Consistente:   r.Consistent(),
	}
}
