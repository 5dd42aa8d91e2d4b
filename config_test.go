package htmlexport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadExportOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.yaml")
	doc := `title: Monthly report
filename: monthly
author: Ana
header_text: ACME Corp
footer_text: Internal use only
include_date: false
orientation: landscape
size: Letter
margin:
  top: 20
watermark: DRAFT
image_quality: 0.8
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	opts, err := LoadExportOptions(path)
	if err != nil {
		t.Fatalf("LoadExportOptions: %v", err)
	}
	if opts.Title != "Monthly report" || opts.Filename != "monthly" || opts.Author != "Ana" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.HeaderText != "ACME Corp" || opts.FooterText != "Internal use only" || opts.Watermark != "DRAFT" {
		t.Errorf("opts = %+v", opts)
	}
	if opts.IncludeDate == nil || *opts.IncludeDate {
		t.Error("include_date: false was not loaded")
	}
	if opts.Orientation != Landscape || opts.Size != Letter || opts.ImageQuality != 0.8 {
		t.Errorf("opts = %+v", opts)
	}

	r := opts.resolved()
	if want := (Margin{Top: 20, Right: 15, Bottom: 15, Left: 15}); r.Margin != want {
		t.Errorf("margin = %+v, want %+v", r.Margin, want)
	}
}

func TestParseExportOptions(t *testing.T) {
	opts, err := ParseExportOptions(nil)
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if opts.resolved().Size != A4 {
		t.Error("empty document should resolve to defaults")
	}

	if _, err := ParseExportOptions([]byte("colour: red\n")); err == nil {
		t.Error("unknown key was accepted")
	}
	if _, err := ParseExportOptions([]byte("size: B5\n")); err == nil {
		t.Error("unknown page size was accepted")
	}
	if _, err := ParseExportOptions([]byte("orientation: sideways\n")); err == nil {
		t.Error("unknown orientation was accepted")
	}
}

func TestLoadExportOptions_Missing(t *testing.T) {
	if _, err := LoadExportOptions(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
