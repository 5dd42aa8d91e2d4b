package htmlexport

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/porticus-lab/go-html-export/internal/pdfdoc"
)

// Result holds a produced document and provides helpers for common output
// formats such as raw bytes, base64 encoding, and streaming readers.
//
// A Result is returned by every export method once the document is fully
// assembled. Its methods may be called any number of times; the
// underlying data is never modified.
type Result struct {
	data     []byte
	filename string
}

func newResult(data []byte, base, ext string) *Result {
	return &Result{data: data, filename: base + ext}
}

// NewResult wraps an already assembled document.
func NewResult(filename string, data []byte) *Result {
	return &Result{data: data, filename: filename}
}

// Bytes returns the raw document content.
func (r *Result) Bytes() []byte {
	return r.data
}

// Filename returns the file name the document is saved under, such as
// "report.pdf" or "report.txt".
func (r *Result) Filename() string {
	return r.filename
}

// Base64 returns the document encoded as a standard base64 string
// (RFC 4648).
func (r *Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.data)
}

// Reader returns an [*bytes.Reader] over the document content.
func (r *Result) Reader() *bytes.Reader {
	return bytes.NewReader(r.data)
}

// WriteTo writes the full document to w. It implements [io.WriterTo].
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.data)
	return int64(n), err
}

// WriteToFile writes the document to the file at path with permissions
// perm, replacing any existing file. Like [Result.Save], it never leaves
// a partially written file at path.
func (r *Result) WriteToFile(path string, perm os.FileMode) error {
	return r.writeFile(path, perm)
}

// Save writes the document into dir under [Result.Filename] and returns
// the path written. The content goes to a temporary file first and is
// renamed into place, so a failed save leaves no partial file behind.
func (r *Result) Save(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	dst := filepath.Join(dir, r.filename)
	if err := r.writeFile(dst, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// writeFile writes the document to a temporary file next to path and
// renames it into place.
func (r *Result) writeFile(path string, perm os.FileMode) error {
	name := filepath.Base(path)
	f, err := os.CreateTemp(filepath.Dir(path), ".htmlexport-*")
	if err != nil {
		return fmt.Errorf("htmlexport: creating temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(r.data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("htmlexport: writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("htmlexport: writing %s: %w", name, err)
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("htmlexport: writing %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("htmlexport: saving %s: %w", name, err)
	}
	return nil
}

// Len returns the size of the document in bytes.
func (r *Result) Len() int {
	return len(r.data)
}

// PageCount parses the result as a PDF and returns its number of pages.
func (r *Result) PageCount() (int, error) {
	if filepath.Ext(r.filename) != ".pdf" {
		return 0, ErrNotPDF
	}
	info, err := pdfdoc.Inspect(r.Reader())
	if err != nil {
		return 0, fmt.Errorf("htmlexport: %w", err)
	}
	return info.Pages, nil
}
