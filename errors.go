package htmlexport

import (
	"errors"
	"fmt"

	"github.com/porticus-lab/go-html-export/internal/normalize"
	"github.com/porticus-lab/go-html-export/internal/pdfdoc"
	"github.com/porticus-lab/go-html-export/internal/raster"
)

// Sentinel errors returned by the library. Use [errors.Is] to test for
// them; export methods wrap them in an [*ExportError].
var (
	// ErrClosed is returned when attempting to use a closed [Exporter].
	ErrClosed = errors.New("htmlexport: exporter is closed")

	// ErrInvalidSource is returned when a [Source] names no content, or
	// more than one kind of content.
	ErrInvalidSource = errors.New("htmlexport: invalid source")

	// ErrNotPDF is returned by [Result.PageCount] for text and Markdown
	// results.
	ErrNotPDF = errors.New("htmlexport: result is not a PDF")

	// ErrDetachedNode is returned when the selector does not match an
	// element rendered in the page.
	ErrDetachedNode = normalize.ErrDetachedNode

	// ErrEmptyContent is returned when the selected element measures zero
	// pixels wide or high.
	ErrEmptyContent = raster.ErrEmptyContent

	// ErrCapture is returned when the browser fails to rasterize the
	// element.
	ErrCapture = raster.ErrCapture

	// ErrSerialization is returned when the document cannot be encoded.
	ErrSerialization = pdfdoc.ErrSerialization

	// ErrMissingData is returned by tabular exports without rows or
	// columns.
	ErrMissingData = pdfdoc.ErrMissingData
)

// ExportError is the error returned by export entry points. Its message
// is short enough to show to an end user; the underlying cause is kept
// for [errors.Is] and [errors.As].
type ExportError struct {
	// Op is the export that failed: "pdf", "text", "markdown" or "table".
	Op  string
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("htmlexport: %s export failed: %s", e.Op, describe(e.Err))
}

func (e *ExportError) Unwrap() error { return e.Err }

// describe maps a failure to a concise message.
func describe(err error) string {
	switch {
	case errors.Is(err, ErrDetachedNode):
		return "the selected content is not displayed"
	case errors.Is(err, ErrEmptyContent):
		return "the selected content is empty"
	case errors.Is(err, ErrCapture):
		return "the content could not be captured"
	case errors.Is(err, ErrSerialization):
		return "the document could not be encoded"
	case errors.Is(err, ErrMissingData):
		return "there are no rows or columns to export"
	case errors.Is(err, ErrInvalidSource):
		return "no valid content was given"
	case errors.Is(err, ErrClosed):
		return "the exporter is closed"
	default:
		return err.Error()
	}
}
