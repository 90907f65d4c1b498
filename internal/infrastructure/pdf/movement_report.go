// Package pdf genera el reporte de movimientos de stock en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: título + rango de fechas  │  fecha de generación   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TIENDA <id>                                                │
//	│  TABLA: SKU | Producto | Inicial | Recib. | Vend. | ...     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES del reporte                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
	"time"

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

	"github.com/jhoicas/stock-ledger/internal/application/dto"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MovementReportGenerator arma el PDF del reporte de movimientos con Maroto v2.
type MovementReportGenerator struct {
	title string
}

// NewMovementReportGenerator construye el generador; title aparece en el encabezado.
func NewMovementReportGenerator(title string) *MovementReportGenerator {
	if title == "" {
		title = "Reporte de movimientos de stock"
	}
	return &MovementReportGenerator{title: title}
}

// Generate devuelve los bytes del PDF. Las filas llegan ordenadas por producto y tienda.
func (g *MovementReportGenerator) Generate(_ context.Context, rep *dto.MovementReport) ([]byte, error) {
	if rep == nil {
		return nil, fmt.Errorf("pdf: reporte vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(g.title, true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(g.headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	for _, group := range groupByStore(rep.Rows) {
		m.AddRows(storeRow(group.storeID))
		m.AddRows(tableHeaderRow())
		m.AddRows(tableDetailRows(group.rows)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.2}))
	}
	if len(rep.Rows) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Sin movimientos en el rango seleccionado.", props.Text{
				Size: 9, Align: align.Center, Color: colorGray, Top: 3,
			}),
		)))
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(rep.Rows))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MovementReportGenerator) headerRow(rep *dto.MovementReport) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(g.title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Rango: "+formatRange(rep.From, rep.To), props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(4).Add(
			text.New("Generado", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 7,
			}),
		),
	)
}

func storeRow(storeID string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New("TIENDA "+storeID, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 2,
		}),
	))
}

var tableColumns = []struct {
	label string
	size  int
}{
	{"SKU", 2}, {"Producto", 3}, {"Inicial", 1}, {"Recib.", 1}, {"Vend.", 1},
	{"Tr. sal.", 1}, {"Tr. ent.", 1}, {"Ajuste", 1}, {"Final", 1},
}

func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(tableColumns))
	for i, c := range tableColumns {
		a := align.Right
		if i < 2 {
			a = align.Left
		}
		cols = append(cols, col.New(c.size).Add(text.New(c.label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	return row.New(6).Add(cols...)
}

func tableDetailRows(rows []dto.MovementReportRow) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		values := []int{r.OpeningStock, r.Received, r.Sold, r.TransferredOut, r.TransferredIn, r.Adjusted, r.ClosingStock}
		cols := []core.Col{
			col.New(2).Add(text.New(nonEmpty(r.SKU, r.ProductID), props.Text{Size: 7.5, Top: 1, Left: 1})),
			col.New(3).Add(text.New(nonEmpty(r.ProductName, "-"), props.Text{Size: 7.5, Top: 1, Left: 1})),
		}
		for _, v := range values {
			cols = append(cols, col.New(1).Add(text.New(strconv.Itoa(v), props.Text{
				Size: 7.5, Align: align.Right, Top: 1, Right: 1,
			})))
		}
		out = append(out, row.New(5).Add(cols...))
	}
	return out
}

func totalsRow(rows []dto.MovementReportRow) core.Row {
	var received, sold, adjusted, entries int
	for _, r := range rows {
		received += r.Received
		sold += r.Sold
		adjusted += r.Adjusted
		entries += r.EntryCount
	}
	value := func(label string, v int) core.Col {
		return col.New(3).Add(text.New(fmt.Sprintf("%s: %d", label, v), props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 2,
		}))
	}
	return row.New(10).Add(
		value("Recibido", received),
		value("Vendido", sold),
		value("Ajustes", adjusted),
		value("Entradas", entries),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

type storeGroup struct {
	storeID string
	rows    []dto.MovementReportRow
}

// groupByStore agrupa conservando el orden de primera aparición de cada tienda.
func groupByStore(rows []dto.MovementReportRow) []storeGroup {
	idx := make(map[string]int)
	var groups []storeGroup
	for _, r := range rows {
		i, ok := idx[r.StoreID]
		if !ok {
			i = len(groups)
			idx[r.StoreID] = i
			groups = append(groups, storeGroup{storeID: r.StoreID})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	return groups
}

func formatRange(from, to *time.Time) string {
	const layout = "02/01/2006"
	switch {
	case from == nil && to == nil:
		return "toda la historia"
	case from == nil:
		return "hasta " + to.Format(layout)
	case to == nil:
		return "desde " + from.Format(layout)
	}
	return from.Format(layout) + " – " + to.Format(layout)
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
