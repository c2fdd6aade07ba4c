// Package report arma la tarjeta de kardex de un producto: el libro de entradas y salidas
// intercalado con el saldo corrido desde el stock base.
package report

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// KardexLine un movimiento de la tarjeta con el saldo resultante.
type KardexLine struct {
	MovementID int64
	Kind       entity.MovementKind
	Fecha      time.Time
	Entrada    int64
	Salida     int64
	Saldo      int64
}

// StockCard tarjeta de kardex completa de un producto.
type StockCard struct {
	Product      *entity.Product
	SaldoInicial int64
	Lines        []KardexLine
	SaldoFinal   int64
	GeneratedAt  time.Time
}

// Consistent indica si el saldo final del libro coincide con el stock actual del producto.
func (c *StockCard) Consistent() bool {
	return c.SaldoFinal == c.Product.CurrentStock
}

// KardexPDFGenerator puerto para renderizar la tarjeta en PDF.
type KardexPDFGenerator interface {
	GenerateKardexPDF(ctx context.Context, card *StockCard) ([]byte, error)
}

// KardexUseCase lee producto y libros en una transacción y arma la tarjeta.
type KardexUseCase struct {
	txRunner ledger.TxRunner
	pdf      KardexPDFGenerator
	now      func() time.Time
}

// NewKardexUseCase construye el caso de uso. pdf puede ser nil si sólo se usa StockCard.
func NewKardexUseCase(txRunner ledger.TxRunner, pdf KardexPDFGenerator) *KardexUseCase {
	return &KardexUseCase{txRunner: txRunner, pdf: pdf, now: time.Now}
}

// StockCard devuelve la tarjeta del producto o domain.ErrNotFound.
func (uc *KardexUseCase) StockCard(ctx context.Context, productID int64) (*StockCard, error) {
	var (
		product        *entity.Product
		entries, exits []*entity.StockMovement
	)
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		if product, err = productRepo.GetByID(ctx, productID); err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if entries, err = movRepo.ListByProduct(ctx, entity.MovementEntry, productID); err != nil {
			return err
		}
		exits, err = movRepo.ListByProduct(ctx, entity.MovementExit, productID)
		return err
	})
	if err != nil {
		if domain.IsDomainError(err) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "report.StockCard", Err: err}
	}

	return BuildStockCard(product, entries, exits, uc.now().UTC()), nil
}

// KardexPDF arma la tarjeta y la renderiza.
func (uc *KardexUseCase) KardexPDF(ctx context.Context, productID int64) ([]byte, error) {
	card, err := uc.StockCard(ctx, productID)
	if err != nil {
		return nil, err
	}
	return uc.pdf.GenerateKardexPDF(ctx, card)
}

// BuildStockCard intercala entradas y salidas por (fecha, entradas antes que salidas, id)
// y acumula el saldo desde el stock base.
func BuildStockCard(p *entity.Product, entries, exits []*entity.StockMovement, at time.Time) *StockCard {
	movs := make([]*entity.StockMovement, 0, len(entries)+len(exits))
	movs = append(movs, entries...)
	movs = append(movs, exits...)
	sort.SliceStable(movs, func(i, j int) bool {
		a, b := movs[i], movs[j]
		if !a.Fecha.Equal(b.Fecha) {
			return a.Fecha.Before(b.Fecha)
		}
		if a.Kind != b.Kind {
			return a.Kind == entity.MovementEntry
		}
		return a.ID < b.ID
	})

	card := &StockCard{
		Product:      p,
		SaldoInicial: p.BaseStock,
		Lines:        make([]KardexLine, 0, len(movs)),
		GeneratedAt:  at,
	}
	saldo := p.BaseStock
	for _, m := range movs {
		line := KardexLine{MovementID: m.ID, Kind: m.Kind, Fecha: m.Fecha}
		if m.Kind == entity.MovementEntry {
			line.Entrada = m.Cantidad
			saldo += m.Cantidad
		} else {
			line.Salida = m.Cantidad
			saldo -= m.Cantidad
		}
		line.Saldo = saldo
		card.Lines = append(card.Lines, line)
	}
	card.SaldoFinal = saldo
	return card
}
