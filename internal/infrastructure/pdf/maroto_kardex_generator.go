// Package pdf renderiza la tarjeta de kardex de un producto.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del producto + ID  │  Fecha de generación   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FICHA: Precio / Mín / Máx / Stock base / Stock actual       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Fecha | Tipo | Ref. | Entrada | Salida | Saldo       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Saldo inicial / Saldo final / Estado del libro     │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/stock-ledger/internal/application/report"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 180, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.KardexPDFGenerator = (*MarotoKardexGenerator)(nil)

// MarotoKardexGenerator implementa report.KardexPDFGenerator usando Maroto v2.
type MarotoKardexGenerator struct {
	appName string
}

// NewMarotoKardexGenerator construye el generador; appName va como autor del documento.
func NewMarotoKardexGenerator(appName string) *MarotoKardexGenerator {
	return &MarotoKardexGenerator{appName: appName}
}

// GenerateKardexPDF genera el PDF y devuelve sus bytes.
func (g *MarotoKardexGenerator) GenerateKardexPDF(_ context.Context, card *report.StockCard) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Kardex "+card.Product.Nombre, true).
		WithAuthor(nonEmpty(g.appName, "inventario"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(card))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(productRow(card.Product))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(openingRow(card))
	for _, r := range tableDetailRows(card.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(card))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar kardex: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(card *report.StockCard) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(card.Product.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Producto #"+strconv.FormatInt(card.Product.ID, 10), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("KARDEX DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Generado: "+card.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

func productRow(p *entity.Product) core.Row {
	stockColor := colorGray
	if p.BelowMinimum() {
		stockColor = colorAlert
	}
	return row.New(12).Add(
		col.New(3).Add(text.New("Precio: $"+formatMoney(p.Precio.StringFixed(0)), props.Text{Size: 8, Top: 2})),
		col.New(2).Add(text.New("Mín: "+formatQty(p.MinStock), props.Text{Size: 8, Top: 2})),
		col.New(2).Add(text.New("Máx: "+formatQty(p.MaxStock), props.Text{Size: 8, Top: 2})),
		col.New(2).Add(text.New("Base: "+formatQty(p.BaseStock), props.Text{Size: 8, Top: 2})),
		col.New(3).Add(text.New("Stock actual: "+formatQty(p.CurrentStock), props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 2, Align: align.Right, Color: stockColor,
		})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Fecha", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Ref.", 1, align.Center),
		h("Entrada", 2, align.Right),
		h("Salida", 2, align.Right),
		h("Saldo", 2, align.Right),
	)
}

func openingRow(card *report.StockCard) core.Row {
	return row.New(6).Add(
		col.New(3).Add(text.New("-", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
		col.New(2).Add(text.New("Saldo inicial", props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
		col.New(5),
		col.New(2).Add(text.New(formatQty(card.SaldoInicial), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
	)
}

func tableDetailRows(lines []report.KardexLine) []core.Row {
	qty := func(n int64) string {
		if n == 0 {
			return ""
		}
		return formatQty(n)
	}
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		tipo := "Entrada"
		if l.Kind == entity.MovementExit {
			tipo = "Salida"
		}
		result = append(result, row.New(6).Add(
			col.New(3).Add(text.New(l.Fecha.Format("02/01/2006 15:04:05"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(tipo, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.FormatInt(l.MovementID, 10), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(qty(l.Entrada), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(qty(l.Salida), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(formatQty(l.Saldo), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(card *report.StockCard) core.Row {
	estado, estadoColor := "Libro cuadrado con el stock actual", colorPrimary
	if !card.Consistent() {
		estado = fmt.Sprintf("Descuadre: libro %s, stock actual %s",
			formatQty(card.SaldoFinal), formatQty(card.Product.CurrentStock))
		estadoColor = colorAlert
	}
	return row.New(18).Add(
		col.New(6).Add(
			text.New(fmt.Sprintf("Movimientos: %d", len(card.Lines)), props.Text{Size: 9, Top: 2}),
			text.New(estado, props.Text{Style: fontstyle.Bold, Size: 9, Top: 9, Color: estadoColor}),
		),
		col.New(6).Add(
			text.New("Saldo inicial: "+formatQty(card.SaldoInicial), props.Text{Size: 9, Align: align.Right, Top: 2, Right: 1}),
			text.New("SALDO FINAL: "+formatQty(card.SaldoFinal), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 9, Right: 1,
			}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func formatQty(n int64) string {
	if n < 0 {
		return "-" + formatMoney(strconv.FormatInt(-n, 10))
	}
	return formatMoney(strconv.FormatInt(n, 10))
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	neg := len(s) > 0 && s[0] == '-'
	if neg {
		s = s[1:]
	}
	n := len(s)
	buf := make([]byte, 0, n+n/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
