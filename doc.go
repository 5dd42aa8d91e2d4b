// Package htmlexport exports rendered HTML content as paginated PDF,
// plain text, Markdown, and PDF grids built from tabular data.
//
// # PDF and text exports
//
// An [Exporter] drives a headless Chrome over the Chrome DevTools
// Protocol. Each export loads a [Source] in a fresh tab and works on the
// element matched by its selector:
//
//	e, err := htmlexport.NewExporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer e.Close()
//
//	src := htmlexport.URL("https://example.com/report").Select("#summary")
//	res, err := e.ExportPDF(ctx, src, nil)
//	res, err  = e.ExportText(ctx, src, nil)
//	res, err  = e.ExportMarkdown(ctx, src, nil)
//
// For PDF output the element is copied off-screen, restyled with fixed
// font sizes, black text on white and bordered table cells, captured at
// 4x resolution, and sliced across pages. Every page carries the same
// header, footer, "Page i of N" label and optional watermark.
//
// Text output walks the element's markup instead: headings are
// uppercased and underlined, paragraphs wrapped at 80 columns, lists
// bulleted or numbered and tables laid out in fixed-width columns.
// [FormatHTML] applies the same rules to an HTML string without a browser.
//
// Use [ExportOptions] to control paper size, orientation, margins,
// decorations and metadata:
//
//	opts := &htmlexport.ExportOptions{
//	    Title:       "Quarterly report",
//	    Filename:    "q3",
//	    Size:        htmlexport.Letter,
//	    Orientation: htmlexport.Landscape,
//	    Margin:      htmlexport.Margin{Top: 20},
//	    Watermark:   "DRAFT",
//	}
//
// Options may also be loaded from YAML with [LoadExportOptions].
//
// # Tabular exports
//
// [ExportTable] builds a grid document straight from rows and columns:
//
//	res, err := htmlexport.ExportTable(
//	    []htmlexport.Row{{"name": "Ana", "age": 30}},
//	    []htmlexport.Column{{Header: "Name", Key: "name"}, {Header: "Age", Key: "age"}},
//	    nil,
//	)
//
// # Results and errors
//
// A [Result] is only returned once the document is fully assembled:
//
//	res.Bytes()        // []byte
//	res.Filename()     // "q3.pdf", "q3.txt" or "q3.md"
//	res.Save(dir)      // atomic write into dir
//	res.PageCount()    // pages of a PDF result
//
// Failures are returned as [*ExportError] values carrying a short
// message; use [errors.Is] with [ErrDetachedNode], [ErrEmptyContent],
// [ErrCapture], [ErrSerialization] or [ErrMissingData] to tell them
// apart.
//
// Chrome or Chromium must be available in PATH, or use [WithAutoDownload]:
//
//	e, err := htmlexport.NewExporter(htmlexport.WithAutoDownload())
package htmlexport
