package ledger

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// Reconcile recalcula el stock del producto desde su libro y lo compara con currentStock.
func (e *Engine) Reconcile(ctx context.Context, productID int64) (*entity.Reconciliation, error) {
	ctx, span := e.tracer.Start(ctx, "ledger.Reconcile", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	var rec *entity.Reconciliation
	err := e.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		p, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		rec, err = reconcileProduct(ctx, movRepo, p)
		return err
	})
	if err != nil {
		return nil, e.fail(span, "ledger.Reconcile", err)
	}
	return rec, nil
}

// ReconcileAll reconcilia todos los productos en una sola transacción de lectura.
func (e *Engine) ReconcileAll(ctx context.Context) ([]*entity.Reconciliation, error) {
	ctx, span := e.tracer.Start(ctx, "ledger.ReconcileAll")
	defer span.End()

	var out []*entity.Reconciliation
	err := e.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		products, err := productRepo.List(ctx)
		if err != nil {
			return err
		}
		out = make([]*entity.Reconciliation, 0, len(products))
		for _, p := range products {
			rec, err := reconcileProduct(ctx, movRepo, p)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, e.fail(span, "ledger.ReconcileAll", err)
	}
	for _, rec := range out {
		if !rec.Consistent() {
			e.log.Warn().
				Int64("product_id", rec.ProductID).
				Int64("esperado", rec.Expected).
				Int64("actual", rec.Actual).
				Msg("stock descuadrado respecto al libro")
		}
	}
	return out, nil
}

func reconcileProduct(ctx context.Context, movRepo repository.StockMovementRepository, p *entity.Product) (*entity.Reconciliation, error) {
	in, err := movRepo.SumByProduct(ctx, entity.MovementEntry, p.ID)
	if err != nil {
		return nil, err
	}
	out, err := movRepo.SumByProduct(ctx, entity.MovementExit, p.ID)
	if err != nil {
		return nil, err
	}
	return entity.NewReconciliation(p, in, out), nil
}
