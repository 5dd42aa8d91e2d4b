package htmlexport

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func TestDefaultExportOptions(t *testing.T) {
	d := DefaultExportOptions()
	if d.Size != A4 {
		t.Errorf("default size = %v, want A4", d.Size)
	}
	if d.Orientation != Portrait {
		t.Errorf("default orientation = %v, want Portrait", d.Orientation)
	}
	if d.Margin != UniformMargin(15) {
		t.Errorf("default margin = %v, want uniform 15", d.Margin)
	}
	if d.IncludeDate == nil || !*d.IncludeDate {
		t.Error("default IncludeDate should be true")
	}
	if d.ImageQuality != 0.95 {
		t.Errorf("default quality = %v, want 0.95", d.ImageQuality)
	}
	if d.Filename != "export" {
		t.Errorf("default filename = %q, want export", d.Filename)
	}
}

func TestUniformMargin(t *testing.T) {
	m := UniformMargin(2.5)
	if m.Top != 2.5 || m.Right != 2.5 || m.Bottom != 2.5 || m.Left != 2.5 {
		t.Errorf("UniformMargin(2.5) = %+v, want all 2.5", m)
	}
}

func TestExportOptionsResolved_Nil(t *testing.T) {
	var o *ExportOptions
	r := o.resolved()
	d := DefaultExportOptions()
	if r.Size != d.Size || r.Margin != d.Margin || r.Filename != d.Filename || *r.IncludeDate != *d.IncludeDate {
		t.Errorf("nil resolved = %+v, want %+v", r, d)
	}
}

func TestExportOptionsResolved_ZeroValues(t *testing.T) {
	r := (&ExportOptions{}).resolved()
	if r.Size != A4 {
		t.Errorf("zero size resolved to %v, want A4", r.Size)
	}
	if r.ImageQuality != 0.95 {
		t.Errorf("zero quality resolved to %v, want 0.95", r.ImageQuality)
	}
	if r.Margin != UniformMargin(15) {
		t.Errorf("zero margin resolved to %v, want uniform 15", r.Margin)
	}
	if r.Filename != "export" {
		t.Errorf("blank filename resolved to %q", r.Filename)
	}
}

func TestExportOptionsResolved_MergesMarginFields(t *testing.T) {
	o := &ExportOptions{Margin: Margin{Top: 30, Left: 5}}
	r := o.resolved()
	want := Margin{Top: 30, Right: 15, Bottom: 15, Left: 5}
	if r.Margin != want {
		t.Errorf("margin = %+v, want %+v", r.Margin, want)
	}
	if o.Margin.Right != 0 {
		t.Error("resolved modified the caller's options")
	}
}

func TestExportOptionsResolved_PreservesExplicit(t *testing.T) {
	off := false
	o := &ExportOptions{
		Filename:     "q3",
		Size:         Letter,
		Orientation:  Landscape,
		IncludeDate:  &off,
		ImageQuality: 0.5,
	}
	r := o.resolved()
	if r.Size != Letter || r.Orientation != Landscape || r.Filename != "q3" {
		t.Errorf("resolved = %+v", r)
	}
	if *r.IncludeDate {
		t.Error("explicit IncludeDate=false was overridden")
	}
	if r.ImageQuality != 0.5 {
		t.Errorf("quality = %v, want 0.5", r.ImageQuality)
	}

	*r.IncludeDate = true
	if off {
		t.Error("resolved options share IncludeDate with the caller")
	}

	if got := (&ExportOptions{ImageQuality: 1.5}).resolved().ImageQuality; got != 0.95 {
		t.Errorf("out-of-range quality resolved to %v", got)
	}
}

func TestPageDimensions(t *testing.T) {
	w, h := (&ExportOptions{Size: A4}).resolved().pageDimensions()
	if w != 210 || h != 297 {
		t.Errorf("portrait = %vx%v, want 210x297", w, h)
	}
	w, h = (&ExportOptions{Size: A4, Orientation: Landscape}).resolved().pageDimensions()
	if w != 297 || h != 210 {
		t.Errorf("landscape = %vx%v, want 297x210", w, h)
	}
}

func TestGeometry(t *testing.T) {
	off := false
	o := (&ExportOptions{IncludeDate: &off}).resolved()
	g := o.geometry(testNow)
	if g.HeaderHeight != 0 {
		t.Errorf("header band reserved without header: %v", g.HeaderHeight)
	}
	if g.FooterHeight != footerBand {
		t.Errorf("footer band = %v, want %v", g.FooterHeight, footerBand)
	}
	if !almostEqual(g.ContentWidth(), 210-2*15, 1e-9) {
		t.Errorf("content width = %v, want 180", g.ContentWidth())
	}

	o = (&ExportOptions{HeaderText: "ACME"}).resolved()
	g = o.geometry(testNow)
	if g.HeaderHeight != headerBand {
		t.Errorf("header band = %v, want %v", g.HeaderHeight, headerBand)
	}
	if !almostEqual(g.StartY(), 15+headerBand, 1e-9) {
		t.Errorf("StartY = %v", g.StartY())
	}
}

func TestDecorations(t *testing.T) {
	o := (&ExportOptions{HeaderText: "ACME", FooterText: "Internal", Watermark: "DRAFT"}).resolved()
	spec := o.decorations(testNow)
	if spec.Date != "2026-10-19" {
		t.Errorf("date = %q, want 2026-10-19", spec.Date)
	}
	if spec.HeaderText != "ACME" || spec.FooterText != "Internal" || spec.Watermark != "DRAFT" {
		t.Errorf("spec = %+v", spec)
	}

	off := false
	o = (&ExportOptions{IncludeDate: &off}).resolved()
	if d := o.decorations(testNow).Date; d != "" {
		t.Errorf("date printed although disabled: %q", d)
	}
}

func TestMetadata(t *testing.T) {
	o := (&ExportOptions{Title: "T", Author: "A", Subject: "S"}).resolved()
	m := o.metadata(testNow)
	if m.Title != "T" || m.Author != "A" || m.Subject != "S" || m.Creator != Generator {
		t.Errorf("metadata = %+v", m)
	}
	if !m.Created.Equal(testNow) || m.Quality != 0.95 {
		t.Errorf("metadata = %+v", m)
	}
}

func TestPageSizeByName(t *testing.T) {
	for name, want := range map[string]PageSize{"A4": A4, "letter": Letter, " Legal ": Legal, "tabloid": Tabloid} {
		got, ok := PageSizeByName(name)
		if !ok || got != want {
			t.Errorf("PageSizeByName(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := PageSizeByName("B5"); ok {
		t.Error("unknown size was accepted")
	}
}

func TestPageSizeUnmarshal(t *testing.T) {
	var s PageSize
	if err := yaml.Unmarshal([]byte(`letter`), &s); err != nil || s != Letter {
		t.Errorf("yaml name: %v, %v", s, err)
	}
	if err := yaml.Unmarshal([]byte("width: 100\nheight: 150\n"), &s); err != nil || s != (PageSize{Width: 100, Height: 150}) {
		t.Errorf("yaml mapping: %v, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`"A5"`), &s); err != nil || s != A5 {
		t.Errorf("json name: %v, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`{"width":10,"height":20}`), &s); err != nil || s != (PageSize{Width: 10, Height: 20}) {
		t.Errorf("json object: %v, %v", s, err)
	}
	if err := json.Unmarshal([]byte(`"B5"`), &s); err == nil {
		t.Error("unknown size was accepted")
	}
}

func TestOrientationText(t *testing.T) {
	var o Orientation
	if err := o.UnmarshalText([]byte("Landscape")); err != nil || o != Landscape {
		t.Errorf("UnmarshalText = %v, %v", o, err)
	}
	if err := o.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("unknown orientation was accepted")
	}
	b, err := json.Marshal(Landscape)
	if err != nil || string(b) != `"landscape"` {
		t.Errorf("json = %s, %v", b, err)
	}
}
