package htmlexport

import (
	"log/slog"
	"time"

	"github.com/porticus-lab/go-html-export/internal/pdfdoc"
)

// Column describes one column of a tabular export: the header label and
// the key of the cell value in each [Row].
type Column = pdfdoc.Column

// Row maps column keys to cell values. Strings are printed as they are,
// [time.Time] values as dates and anything else with its default format.
type Row = pdfdoc.Row

// ExportTable lays rows out as a paginated PDF grid. Column widths are
// the same on every page and the header row is repeated on each one; the
// title and date are printed once, on the first page. It returns an error
// wrapping [ErrMissingData] when rows or columns are empty.
//
// No browser is needed. If opts is nil, [DefaultExportOptions] values
// are used.
func ExportTable(rows []Row, columns []Column, opts *ExportOptions) (*Result, error) {
	return exportTable(slog.Default(), time.Now(), rows, columns, opts)
}

func exportTable(logger *slog.Logger, now time.Time, rows []Row, columns []Column, opts *ExportOptions) (*Result, error) {
	c := begin(logger, "table", "")
	o := opts.resolved()
	w, h := o.pageDimensions()

	data, err := pdfdoc.ComposeTable(rows, columns, pdfdoc.TableMeta{
		Metadata:   o.metadata(now),
		PageWidth:  w,
		PageHeight: h,
		Margin:     o.margins(),
		Date:       o.date(now),
	})
	if err != nil {
		return nil, c.fail(err, "rows", len(rows), "columns", len(columns))
	}
	c.done("rows", len(rows), "columns", len(columns), "bytes", len(data))
	return newResult(data, o.Filename, ".pdf"), nil
}
