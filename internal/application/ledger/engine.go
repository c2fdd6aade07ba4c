// Package ledger es el motor de consistencia del stock: toda lectura y escritura de
// currentStock y de los libros de entradas/salidas pasa por aquí.
//
// Invariante: currentStock == baseStock + Σ entradas - Σ salidas, para cada producto,
// después de cada operación exitosa y sin estados intermedios visibles.
package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const tracerName = "github.com/jhoicas/stock-ledger/internal/application/ledger"

// Engine registra entradas y salidas de stock de forma transaccional y expone las consultas
// del libro. Es seguro para uso concurrente.
type Engine struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	clock       Clock
	log         *logger.Logger
	tracer      trace.Tracer
}

// Option configura el Engine.
type Option func(*Engine)

// WithClock reemplaza el reloj que asigna la fecha de los movimientos.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger inyecta el logger estructurado.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine construye el motor. productRepo se usa para lecturas fuera de transacción.
func NewEngine(txRunner TxRunner, productRepo repository.ProductRepository, opts ...Option) *Engine {
	e := &Engine{
		txRunner:    txRunner,
		productRepo: productRepo,
		clock:       NewMonotonicClock(nil),
		log:         logger.Nop(),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordEntry suma quantity al stock del producto y agrega la fila al libro de entradas,
// ambas en la misma transacción. Devuelve el producto ya incrementado.
func (e *Engine) RecordEntry(ctx context.Context, productID, quantity int64) (*entity.Product, error) {
	return e.record(ctx, entity.MovementEntry, productID, quantity)
}

// RecordExit resta quantity del stock y agrega la fila al libro de salidas. La verificación
// quantity <= currentStock y el descuento son un único UPDATE condicional dentro de la
// transacción, de modo que dos salidas concurrentes no pueden pasar ambas contra el mismo stock.
func (e *Engine) RecordExit(ctx context.Context, productID, quantity int64) (*entity.Product, error) {
	return e.record(ctx, entity.MovementExit, productID, quantity)
}

func (e *Engine) record(ctx context.Context, kind entity.MovementKind, productID, quantity int64) (*entity.Product, error) {
	opID := uuid.NewString()
	spanName := "ledger.RecordEntry"
	if kind == entity.MovementExit {
		spanName = "ledger.RecordExit"
	}
	ctx, span := e.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("ledger.op_id", opID),
		attribute.Int64("product.id", productID),
		attribute.Int64("movement.cantidad", quantity),
	))
	defer span.End()

	if err := inventory.ValidateQuantity(quantity); err != nil {
		return nil, e.fail(span, spanName, err)
	}

	// La transacción no se cancela a mitad de camino: el llamador puede dejar de esperar,
	// pero el update y la fila del libro se confirman o se revierten juntos.
	txCtx := context.WithoutCancel(ctx)

	var (
		updated *entity.Product
		mov     *entity.StockMovement
	)
	err := e.txRunner.Run(txCtx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		p, err := applyStockChange(txCtx, productRepo, kind, productID, quantity)
		if err != nil {
			return err
		}
		// La fecha se toma con la fila del producto ya bloqueada: id y fecha crecen juntos.
		mov = &entity.StockMovement{
			ProductID: productID,
			Kind:      kind,
			Cantidad:  quantity,
			Fecha:     e.clock.Now(),
		}
		if err := movRepo.Append(txCtx, mov); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		var insuf *domain.InsufficientStockError
		if errors.As(err, &insuf) {
			e.log.Warn().
				Str("op_id", opID).
				Int64("product_id", productID).
				Int64("solicitado", insuf.Requested).
				Int64("disponible", insuf.Available).
				Msg("salida rechazada por stock insuficiente")
		}
		return nil, e.fail(span, spanName, err)
	}

	e.log.Debug().
		Str("op_id", opID).
		Str("tipo", string(kind)).
		Int64("product_id", productID).
		Int64("movement_id", mov.ID).
		Int64("cantidad", quantity).
		Int64("current_stock", updated.CurrentStock).
		Msg("movimiento registrado")
	return updated, nil
}

// applyStockChange aplica el cambio de stock sobre productRepo (atado a la tx).
func applyStockChange(
	ctx context.Context,
	productRepo repository.ProductRepository,
	kind entity.MovementKind,
	productID, quantity int64,
) (*entity.Product, error) {
	if kind == entity.MovementEntry {
		p, err := productRepo.IncrementStock(ctx, productID, quantity)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		return p, nil
	}

	p, err := productRepo.DecrementStock(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	// Cero filas afectadas: distinguir producto inexistente de stock insuficiente
	// releyendo dentro de la misma transacción.
	current, err := productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, domain.ErrNotFound
	}
	return nil, &domain.InsufficientStockError{
		ProductID: productID,
		Requested: quantity,
		Available: current.CurrentStock,
	}
}

// GetProduct devuelve el estado actual del producto o domain.ErrNotFound.
func (e *Engine) GetProduct(ctx context.Context, productID int64) (*entity.Product, error) {
	ctx, span := e.tracer.Start(ctx, "ledger.GetProduct", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	p, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, e.fail(span, "ledger.GetProduct", err)
	}
	if p == nil {
		return nil, e.fail(span, "ledger.GetProduct", domain.ErrNotFound)
	}
	return p, nil
}

// ListProducts devuelve todos los productos ordenados por id (carga completa, sin paginación).
func (e *Engine) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	ctx, span := e.tracer.Start(ctx, "ledger.ListProducts")
	defer span.End()

	list, err := e.productRepo.List(ctx)
	if err != nil {
		return nil, e.fail(span, "ledger.ListProducts", err)
	}
	if list == nil {
		list = []*entity.Product{}
	}
	return list, nil
}

// ListMovements devuelve las entradas y las salidas del producto, cada lista en orden de inserción.
// Un producto inexistente es domain.ErrNotFound; la verificación y ambas lecturas comparten
// una transacción, así que ven el mismo estado.
func (e *Engine) ListMovements(ctx context.Context, productID int64) (entries, exits []*entity.StockMovement, err error) {
	ctx, span := e.tracer.Start(ctx, "ledger.ListMovements", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	err = e.txRunner.Run(ctx, func(
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
		if entries, err = movRepo.ListByProduct(ctx, entity.MovementEntry, productID); err != nil {
			return err
		}
		exits, err = movRepo.ListByProduct(ctx, entity.MovementExit, productID)
		return err
	})
	if err != nil {
		return nil, nil, e.fail(span, "ledger.ListMovements", err)
	}
	if entries == nil {
		entries = []*entity.StockMovement{}
	}
	if exits == nil {
		exits = []*entity.StockMovement{}
	}
	return entries, exits, nil
}

// fail clasifica err (dominio o almacenamiento) y lo registra en el span.
func (e *Engine) fail(span trace.Span, op string, err error) error {
	if !domain.IsDomainError(err) && !errors.Is(err, domain.ErrStorage) {
		err = &domain.StorageError{Op: op, Err: err}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
