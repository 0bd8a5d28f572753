// Package pdf genera el comprobante imprimible de un traslado entre ubicaciones.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Libro de traslados   │  N° Traslado + Fecha         │
//	│  ORIGEN → DESTINO (nombre, tipo y dirección)                 │
//	│  TABLA: # | Producto | Cantidad                              │
//	│  TOTALES: unidades y montos (siempre en cero)                │
//	│  QR con el número + firmas de entrega y recibo               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
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

	"github.com/jhoicas/pos-backoffice/internal/application/transfer"
	"github.com/jhoicas/pos-backoffice/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var _ transfer.SlipGenerator = (*TransferSlipGenerator)(nil)

// TransferSlipGenerator implementa transfer.SlipGenerator con Maroto v2.
type TransferSlipGenerator struct{}

// NewTransferSlipGenerator construye el generador.
func NewTransferSlipGenerator() *TransferSlipGenerator { return &TransferSlipGenerator{} }

// GenerateTransferSlip genera el PDF del traslado y devuelve sus bytes.
func (g *TransferSlipGenerator) GenerateTransferSlip(_ context.Context, d *transfer.TransferDetail) ([]byte, error) {
	if d == nil || d.Invoice == nil {
		return nil, fmt.Errorf("pdf: traslado vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Traslado "+d.Invoice.Number, true).
		WithAuthor(entity.LedgerDisplayName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d.Invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(locationsRow(d.Source, d.Destination))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(d.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(d))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(d.Invoice))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(inv *entity.TransferInvoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(entity.LedgerDisplayName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Movimiento interno sin valor comercial", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TRASLADO DE INVENTARIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func locationsRow(src, dst *entity.LocationDetail) core.Row {
	block := func(title string, d *entity.LocationDetail) core.Col {
		name, kind, address := "—", "", "—"
		if d != nil {
			name = nonEmpty(d.Name, "—")
			address = nonEmpty(d.Address, "—")
			if d.Location != nil {
				kind = kindLabel(d.Location)
			}
		}
		return col.New(6).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(kind+"   |   "+address, props.Text{Size: 8, Top: 12, Color: colorGray}),
		)
	}
	return row.New(18).Add(block("ORIGEN", src), block("DESTINO", dst))
}

func kindLabel(l entity.Location) string {
	switch l.(type) {
	case entity.Branch:
		return "Sucursal"
	case entity.Warehouse:
		return "Bodega"
	default:
		return ""
	}
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("Producto", 8, align.Left),
		h("Cantidad", 3, align.Right),
	)
}

func tableLineRows(lines []*entity.TransferLineItem) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(l.Position+1), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(8).Add(text.New(l.ProductID, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(3).Add(text.New(formatUnits(l.Quantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(d *transfer.TransferDetail) core.Row {
	var units int64
	for _, l := range d.Lines {
		units += l.Quantity
	}
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	return row.New(20).Add(
		col.New(6),
		col.New(3).Add(
			label("Unidades:"),
			label("Total:"),
		),
		col.New(3).Add(
			value(formatUnits(units)),
			value("$"+d.Invoice.GrandTotal.StringFixed(0)),
		),
	)
}

func footerRow(inv *entity.TransferInvoice) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(inv.Number, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New(inv.Notes, props.Text{Size: 8, Top: 2, Left: 3, Color: colorGray}),
			text.New("Entrega: ______________________", props.Text{Size: 9, Top: 18, Left: 3}),
			text.New("Recibe:  ______________________", props.Text{Size: 9, Top: 28, Left: 3}),
		),
	)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatUnits inserta puntos de miles. Ej: 25000 → "25.000"
func formatUnits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	buf := make([]byte, 0, len(s)+len(s)/3)
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
