package htmlexport

import (
	"errors"
	"fmt"
	"testing"
)

func TestExportError(t *testing.T) {
	tests := []struct {
		cause error
		want  string
	}{
		{fmt.Errorf("%w: no element matches \"#x\"", ErrDetachedNode), "htmlexport: pdf export failed: the selected content is not displayed"},
		{fmt.Errorf("%w: measured 0x10", ErrEmptyContent), "htmlexport: pdf export failed: the selected content is empty"},
		{fmt.Errorf("%w: boom", ErrCapture), "htmlexport: pdf export failed: the content could not be captured"},
		{fmt.Errorf("%w: bad image", ErrSerialization), "htmlexport: pdf export failed: the document could not be encoded"},
		{ErrClosed, "htmlexport: pdf export failed: the exporter is closed"},
		{errors.New("disk on fire"), "htmlexport: pdf export failed: disk on fire"},
	}
	for _, tt := range tests {
		err := error(&ExportError{Op: "pdf", Err: tt.cause})
		if got := err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
		if !errors.Is(err, tt.cause) {
			t.Errorf("errors.Is(%v, cause) = false", err)
		}
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	all := []error{ErrClosed, ErrInvalidSource, ErrNotPDF, ErrDetachedNode, ErrEmptyContent, ErrCapture, ErrSerialization, ErrMissingData}
	for i, a := range all {
		for j, b := range all {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
