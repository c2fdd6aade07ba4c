package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// csvColumns encabezado esperado del archivo de catálogo. id puede ir vacío (autonumérico).
var csvColumns = []string{"id", "nombre", "precio", "minStock", "maxStock", "currentStock"}

// ParseCSV lee el catálogo en CSV (separador coma o punto y coma, primera fila encabezado).
func ParseCSV(r io.Reader) ([]dto.ProductSeed, error) {
	br := newSniffReader(r)
	cr := csv.NewReader(br)
	cr.Comma = br.comma()
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("leer encabezado: %w", err)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var seeds []dto.ProductSeed
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}
		s, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		seeds = append(seeds, s)
	}
	return seeds, nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	for _, c := range csvColumns {
		if _, ok := idx[strings.ToLower(c)]; !ok {
			return nil, fmt.Errorf("%w: falta la columna %q", domain.ErrInvalidInput, c)
		}
	}
	return idx, nil
}

func parseRecord(rec []string, idx map[string]int) (dto.ProductSeed, error) {
	field := func(name string) string {
		i := idx[strings.ToLower(name)]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	integer := func(name string) (int64, error) {
		raw := field(name)
		if raw == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, name, raw)
		}
		return n, nil
	}

	var (
		s   = dto.ProductSeed{Nombre: field("nombre")}
		err error
	)
	if s.ID, err = integer("id"); err != nil {
		return s, err
	}
	if raw := field("precio"); raw != "" {
		if s.Precio, err = decimal.NewFromString(strings.ReplaceAll(raw, ",", ".")); err != nil {
			return s, fmt.Errorf("%w: precio=%q", domain.ErrInvalidInput, raw)
		}
	}
	if s.MinStock, err = integer("minStock"); err != nil {
		return s, err
	}
	if s.MaxStock, err = integer("maxStock"); err != nil {
		return s, err
	}
	if s.CurrentStock, err = integer("currentStock"); err != nil {
		return s, err
	}
	return s, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
