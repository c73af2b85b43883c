// Package pdf genera el comprobante imprimible de un retiro de bodega.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Bodega + código     │  COMPROBANTE DE RETIRO + fecha│
//	│  ─────────────────────────────────────────────────────────  │
//	│  DATOS: Obra / Responsable / Notas                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Ítem | Código de barras | N° Factura         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: líneas / unidades                                 │
//	│  FOOTER: QR con el id del retiro + firmas                   │
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

	"github.com/jhoicas/inventario-bodegas/internal/application/withdrawal"
	"github.com/jhoicas/inventario-bodegas/internal/domain/entity"
)

var _ withdrawal.ReceiptGenerator = (*ReceiptGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ReceiptGenerator implementa withdrawal.ReceiptGenerator usando Maroto v2.
type ReceiptGenerator struct{}

// NewReceiptGenerator construye el generador.
func NewReceiptGenerator() *ReceiptGenerator { return &ReceiptGenerator{} }

// GenerateWithdrawalPDF genera el PDF y devuelve sus bytes.
func (g *ReceiptGenerator) GenerateWithdrawalPDF(
	_ context.Context,
	w *entity.Withdrawal,
	warehouse *entity.Warehouse,
	userName string,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de retiro", true).
		WithAuthor(warehouse.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(w, warehouse))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(infoRow(w, userName))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(w.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(w))
	m.AddRows(line.NewRow(6))
	m.AddRows(footerRow(w))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar comprobante: %w", err)
	}
	return doc.GetBytes(), nil
}

func headerRow(w *entity.Withdrawal, wh *entity.Warehouse) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(wh.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Código: %s   %s", wh.Code, wh.Location), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE RETIRO", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Fecha: "+w.WithdrawalDate.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

func infoRow(w *entity.Withdrawal, userName string) core.Row {
	notes := w.Notes
	if notes == "" {
		notes = "-"
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("Obra: "+w.Obra, props.Text{Style: fontstyle.Bold, Size: 10, Top: 1}),
			text.New("Responsable: "+userName, props.Text{Size: 9, Top: 7}),
			text.New("Notas: "+notes, props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Ítem", 5, align.Left),
		h("Código de barras", 3, align.Left),
		h("N° Factura", 3, align.Left),
	)
}

func tableLineRows(lines []entity.WithdrawalLine) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.ItemName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(l.Barcode, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(l.NFactura, props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return rows
}

func totalsRow(w *entity.Withdrawal) core.Row {
	return row.New(10).Add(
		col.New(6),
		col.New(6).Add(text.New(
			fmt.Sprintf("Líneas: %d   |   Unidades retiradas: %d", len(w.Lines), w.TotalUnits()),
			props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 2, Right: 1},
		)),
	)
}

// footerRow QR con el id del retiro (trazabilidad) y espacio para firmas.
func footerRow(w *entity.Withdrawal) core.Row {
	return row.New(35).Add(
		col.New(3).Add(code.NewQr(w.ID, props.Rect{Percent: 90, Center: true})),
		col.New(9).Add(
			text.New("Entregado por: ______________________", props.Text{Size: 9, Top: 8, Left: 4}),
			text.New("Recibido por:  ______________________", props.Text{Size: 9, Top: 20, Left: 4}),
			text.New("Retiro "+w.ID, props.Text{Size: 6.5, Top: 30, Left: 4, Color: colorGray}),
		),
	)
}
