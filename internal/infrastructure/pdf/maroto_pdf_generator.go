// Package pdf genera la versión imprimible de un pedido.
//
// Formato A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre de la app     │  N° Pedido + Fecha           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTRAPARTE: Cliente/Proveedor + teléfono + dirección      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Producto | SKU | P.Unit | Subtotal            │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Artículos / TOTAL                                  │
//	│  FOOTER: QR con el número de pedido                          │
//	└─────────────────────────────────────────────────────────────┘
//
// Formato receipt: ticket de 80 mm de ancho, una columna, líneas "cant x precio = subtotal".
package pdf

import (
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

	"github.com/jhoicas/pedidos-api/internal/application/ports"
)

var _ ports.OrderPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const (
	receiptWidth = 80.0 // mm
	dateLayout   = "02/01/2006 15:04"
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa ports.OrderPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateOrderPDF genera el PDF del pedido en formato a4 o receipt.
func (g *MarotoPDFGenerator) GenerateOrderPDF(doc *ports.OrderDocument, format string) ([]byte, error) {
	var m core.Maroto
	switch format {
	case ports.PrintFormatA4:
		m = buildA4(doc)
	case ports.PrintFormatReceipt:
		m = buildReceipt(doc)
	default:
		return nil, fmt.Errorf("pdf: formato desconocido %q", format)
	}
	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return out.GetBytes(), nil
}

// ── A4 ────────────────────────────────────────────────────────────────────────

func buildA4(doc *ports.OrderDocument) core.Maroto {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Pedido "+doc.OrderNumber, true).
		WithAuthor(doc.AppName, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(headerRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(counterpartyRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(doc.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(doc))
	m.AddRows(line.NewRow(3))
	m.AddRows(qrRow(doc))
	return m
}

// headerRow: nombre de la app (izq) y N° de pedido + fecha (der).
func headerRow(doc *ports.OrderDocument) core.Row {
	return row.New(18).Add(
		col.New(6).Add(
			text.New(doc.AppName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
		),
		col.New(6).Add(
			text.New("PEDIDO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.OrderNumber, props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+doc.Date.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func counterpartyRow(doc *ports.OrderDocument) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New(doc.CounterpartyLabel, props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(doc.CounterpartyName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Tel: %s   |   Dirección: %s",
				nonEmpty(doc.CounterpartyPhone, "-"),
				nonEmpty(doc.CounterpartyAddress, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Producto", 5, align.Left),
		h("SKU", 2, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableLineRows(lines []ports.OrderDocumentLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(strconv.FormatInt(l.Quantity, 10), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(l.ProductSKU, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray})),
			col.New(2).Add(text.New(l.UnitPrice, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(l.Subtotal, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func totalsRow(doc *ports.OrderDocument) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 1, Top: top, Color: colorPrimary})
	}
	return row.New(14).Add(
		col.New(6),
		col.New(3).Add(label("Artículos:", 1), label("TOTAL:", 7)),
		col.New(3).Add(value(strconv.FormatInt(doc.ItemCount, 10), 1), value(doc.Total, 7)),
	)
}

func qrRow(doc *ports.OrderDocument) core.Row {
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(doc.OrderNumber, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Número de pedido", props.Text{Size: 8, Top: 4, Left: 3, Color: colorGray}),
			text.New(doc.OrderNumber, props.Text{Style: fontstyle.Bold, Size: 9, Top: 10, Left: 3}),
		),
	)
}

// ── Receipt 80 mm ─────────────────────────────────────────────────────────────

func buildReceipt(doc *ports.OrderDocument) core.Maroto {
	// Alto fijo de cabecera + QR más dos filas por línea.
	height := 130 + float64(len(doc.Lines))*9
	cfg := config.NewBuilder().
		WithDimensions(receiptWidth, height).
		WithLeftMargin(4).WithRightMargin(4).
		WithTopMargin(4).WithBottomMargin(4).
		WithDefaultFont(&props.Font{Family: "courier", Size: 8}).
		WithTitle("Pedido "+doc.OrderNumber, true).
		WithAuthor(doc.AppName, true).
		Build()

	center := func(s string, size float64, style fontstyle.Type) core.Row {
		return text.NewRow(5, s, props.Text{Size: size, Style: style, Align: align.Center})
	}
	left := func(s string) core.Row {
		return text.NewRow(4, s, props.Text{Size: 7})
	}

	m := maroto.New(cfg)
	m.AddRows(
		center(doc.AppName, 10, fontstyle.Bold),
		center(doc.Date.Format(dateLayout), 7, fontstyle.Normal),
		text.NewRow(4, doc.OrderNumber, props.Text{Size: 6, Align: align.Center}),
		line.NewRow(3, props.Line{Thickness: 0.2}),
		left(doc.CounterpartyLabel+": "+doc.CounterpartyName),
	)
	if doc.CounterpartyPhone != "" {
		m.AddRows(left("Tel: " + doc.CounterpartyPhone))
	}
	m.AddRows(line.NewRow(3, props.Line{Thickness: 0.2}))
	for _, l := range doc.Lines {
		m.AddRows(
			text.NewRow(4, l.ProductName, props.Text{Size: 7, Style: fontstyle.Bold}),
			text.NewRow(5, fmt.Sprintf("%d x %s = %s", l.Quantity, l.UnitPrice, l.Subtotal), props.Text{Size: 7, Align: align.Right}),
		)
	}
	m.AddRows(
		line.NewRow(3, props.Line{Thickness: 0.2}),
		row.New(5).Add(
			col.New(6).Add(text.New("Artículos", props.Text{Size: 8})),
			col.New(6).Add(text.New(strconv.FormatInt(doc.ItemCount, 10), props.Text{Size: 8, Align: align.Right})),
		),
		row.New(6).Add(
			col.New(6).Add(text.New("TOTAL", props.Text{Size: 9, Style: fontstyle.Bold})),
			col.New(6).Add(text.New(doc.Total, props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right})),
		),
		line.NewRow(4),
		code.NewQrRow(40, doc.OrderNumber, props.Rect{Percent: 90, Center: true}),
		center("Gracias por su preferencia", 7, fontstyle.Normal),
	)
	return m
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
