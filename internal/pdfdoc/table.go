package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/porticus-lab/go-html-export/internal/paginate"
)

// ErrMissingData is returned by ComposeTable when there are no rows or
// no columns.
var ErrMissingData = errors.New("pdfdoc: missing rows or columns")

// Grid layout constants, in millimetres and points.
const (
	gridFontSize   = 9.0
	gridRowHeight  = 7.0
	gridCellPad    = 2.0
	gridMinColumn  = 15.0
	gridMaxColumn  = 80.0
	gridTitleSize  = 16.0
	gridTitleLine  = 10.0
	gridDateLine   = 6.0
	gridTitleGap   = 4.0
	gridFooterBand = 8.0
)

// Column describes one column of a grid.
type Column struct {
	Header string
	Key    string
}

// Row maps column keys to cell values.
type Row map[string]any

// TableMeta describes the document a grid is written into.
type TableMeta struct {
	Metadata

	PageWidth  float64
	PageHeight float64
	Margin     paginate.Margins

	// Date is printed under the title on the first page when set.
	Date string
}

// CellText formats a cell value for display.
func CellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// span is a half-open range of row indexes placed on one page.
type span struct {
	start, end int
}

// paginateRows distributes n rows of height rowHeight across pages. The
// first page has firstAvail millimetres for the grid, the others
// otherAvail; every page spends one row on the repeated header. Each page
// holds at least one row.
func paginateRows(n int, rowHeight, firstAvail, otherAvail float64) []span {
	perPage := func(avail float64) int {
		return max(1, int((avail+1e-9)/rowHeight)-1)
	}
	var out []span
	start := 0
	for start < n {
		avail := otherAvail
		if len(out) == 0 {
			avail = firstAvail
		}
		end := min(n, start+perPage(avail))
		out = append(out, span{start, end})
		start = end
	}
	return out
}

// columnWidths returns widths that fit content exactly, proportional to
// the natural width of each column.
func columnWidths(natural []float64, content float64) []float64 {
	widths := make([]float64, len(natural))
	var sum float64
	for i, w := range natural {
		widths[i] = min(max(w, gridMinColumn), gridMaxColumn)
		sum += widths[i]
	}
	if sum <= 0 {
		return widths
	}
	scale := content / sum
	for i := range widths {
		widths[i] *= scale
	}
	return widths
}

// fit shortens s with an ellipsis until it is at most w wide.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 {
		r = r[:len(r)-1]
		cand := strings.TrimRight(string(r), " ") + "..."
		if pdf.GetStringWidth(cand) <= w {
			return cand
		}
	}
	return ""
}

// ComposeTable writes rows under columns as a paginated grid. Column
// widths are the same on every page and the header row is repeated on
// each one; the title and date appear once, on the first page.
func ComposeTable(rows []Row, columns []Column, meta TableMeta) ([]byte, error) {
	if len(rows) == 0 || len(columns) == 0 {
		return nil, fmt.Errorf("%w: %d rows, %d columns", ErrMissingData, len(rows), len(columns))
	}

	pdf := newDocument(meta.PageWidth, meta.PageHeight, meta.Metadata)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	m := meta.Margin
	content := meta.PageWidth - m.Left - m.Right
	if content <= 0 {
		return nil, fmt.Errorf("%w: no room for columns", ErrSerialization)
	}

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = make([]string, len(columns))
		for j, c := range columns {
			cells[i][j] = tr(CellText(r[c.Key]))
		}
	}
	headers := make([]string, len(columns))
	for j, c := range columns {
		headers[j] = tr(c.Header)
	}

	natural := make([]float64, len(columns))
	pdf.SetFont(fontFamily, "B", gridFontSize)
	for j, h := range headers {
		natural[j] = pdf.GetStringWidth(h) + 2*gridCellPad
	}
	pdf.SetFont(fontFamily, "", gridFontSize)
	for _, row := range cells {
		for j, s := range row {
			natural[j] = max(natural[j], pdf.GetStringWidth(s)+2*gridCellPad)
		}
	}
	widths := columnWidths(natural, content)

	top := m.Top
	if meta.Title != "" {
		top += gridTitleLine
	}
	if meta.Date != "" {
		top += gridDateLine
	}
	if top > m.Top {
		top += gridTitleGap
	}
	bottom := meta.PageHeight - m.Bottom - gridFooterBand
	pages := paginateRows(len(rows), gridRowHeight, bottom-top, bottom-m.Top)

	for i, sp := range pages {
		pdf.AddPage()
		y := m.Top
		if i == 0 {
			if meta.Title != "" {
				pdf.SetFont(fontFamily, "B", gridTitleSize)
				pdf.SetTextColor(0, 0, 0)
				pdf.SetXY(m.Left, y)
				pdf.CellFormat(content, gridTitleLine, tr(meta.Title), "", 0, "L", false, 0, "")
			}
			if meta.Date != "" {
				pdf.SetFont(fontFamily, "", gridFontSize)
				pdf.SetTextColor(80, 80, 80)
				dateY := m.Top
				if meta.Title != "" {
					dateY += gridTitleLine
				}
				pdf.SetXY(m.Left, dateY)
				pdf.CellFormat(content, gridDateLine, tr(meta.Date), "", 0, "L", false, 0, "")
			}
			y = top
		}

		drawGridRow(pdf, m.Left, y, widths, headers, true)
		y += gridRowHeight
		for _, row := range cells[sp.start:sp.end] {
			drawGridRow(pdf, m.Left, y, widths, row, false)
			y += gridRowHeight
		}

		label := paginate.PageLabel(i+1, len(pages))
		pdf.SetFont(fontFamily, "", decorationSize)
		pdf.SetTextColor(80, 80, 80)
		pdf.Text(meta.PageWidth-m.Right-pdf.GetStringWidth(label), meta.PageHeight-m.Bottom-gridFooterBand/2, label)

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrSerialization, i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

func drawGridRow(pdf *fpdf.Fpdf, x, y float64, widths []float64, cells []string, header bool) {
	style := ""
	if header {
		style = "B"
		pdf.SetFillColor(230, 230, 230)
	}
	pdf.SetFont(fontFamily, style, gridFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.2)
	pdf.SetXY(x, y)
	pdf.SetCellMargin(gridCellPad)
	for j, w := range widths {
		s := ""
		if j < len(cells) {
			s = fit(pdf, cells[j], w-2*gridCellPad)
		}
		pdf.CellFormat(w, gridRowHeight, s, "1", 0, "L", header, 0, "")
	}
}
