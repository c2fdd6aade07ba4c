// Package catalog carga productos al inventario por fuera del ledger (importación del catálogo).
// Es el único camino que crea filas de productos.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ImportUseCase valida e inserta un lote de productos en una sola transacción.
type ImportUseCase struct {
	txRunner ledger.TxRunner
	validate *validator.Validate
	log      *logger.Logger
}

// NewImportUseCase construye el caso de uso. log puede ser nil.
func NewImportUseCase(txRunner ledger.TxRunner, log *logger.Logger) *ImportUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ImportUseCase{txRunner: txRunner, validate: validator.New(), log: log}
}

// Import inserta todas las filas o ninguna. El stock inicial de cada fila queda como
// stock base del producto, así el libro vacío cuadra desde el primer momento.
func (uc *ImportUseCase) Import(ctx context.Context, seeds []dto.ProductSeed) (*dto.ImportResult, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: catálogo vacío", domain.ErrInvalidInput)
	}
	seen := make(map[int64]int, len(seeds))
	for i := range seeds {
		seeds[i].Nombre = strings.TrimSpace(seeds[i].Nombre)
		if err := uc.validateSeed(seeds[i]); err != nil {
			return nil, fmt.Errorf("fila %d: %w", i+1, err)
		}
		if id := seeds[i].ID; id > 0 {
			if prev, ok := seen[id]; ok {
				return nil, fmt.Errorf("fila %d: id %d repetido (fila %d): %w", i+1, id, prev, domain.ErrDuplicate)
			}
			seen[id] = i + 1
		}
	}

	result := &dto.ImportResult{IDs: make([]int64, 0, len(seeds))}
	err := uc.txRunner.Run(ctx, func(productRepo repository.ProductRepository, _ repository.StockMovementRepository) error {
		for i, s := range seeds {
			p := &entity.Product{
				ID:           s.ID,
				Nombre:       s.Nombre,
				Precio:       s.Precio,
				MinStock:     s.MinStock,
				MaxStock:     s.MaxStock,
				CurrentStock: s.CurrentStock,
				BaseStock:    s.CurrentStock,
			}
			if err := productRepo.Create(ctx, p); err != nil {
				if errors.Is(err, domain.ErrDuplicate) {
					return fmt.Errorf("fila %d: id %d: %w", i+1, s.ID, err)
				}
				return err
			}
			result.IDs = append(result.IDs, p.ID)
		}
		return nil
	})
	if err != nil {
		if domain.IsDomainError(err) {
			return nil, err
		}
		return nil, &domain.StorageError{Op: "catalog.Import", Err: err}
	}
	result.Imported = len(result.IDs)
	uc.log.Info().Int("importados", result.Imported).Msg("catálogo importado")
	return result, nil
}

func (uc *ImportUseCase) validateSeed(s dto.ProductSeed) error {
	if err := uc.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if s.Precio.IsNegative() {
		return fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	}
	return nil
}
