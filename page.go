package htmlexport

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/porticus-lab/go-html-export/internal/paginate"
	"github.com/porticus-lab/go-html-export/internal/pdfdoc"
)

// PageSize represents paper dimensions in millimetres.
type PageSize struct {
	Width  float64 `yaml:"width" json:"width"`   // Width in millimetres.
	Height float64 `yaml:"height" json:"height"` // Height in millimetres.
}

// Standard paper sizes.
var (
	A3      = PageSize{Width: 297, Height: 420}
	A4      = PageSize{Width: 210, Height: 297}
	A5      = PageSize{Width: 148, Height: 210}
	Letter  = PageSize{Width: 215.9, Height: 279.4}
	Legal   = PageSize{Width: 215.9, Height: 355.6}
	Tabloid = PageSize{Width: 279.4, Height: 431.8}
)

var pageSizes = map[string]PageSize{
	"a3":      A3,
	"a4":      A4,
	"a5":      A5,
	"letter":  Letter,
	"legal":   Legal,
	"tabloid": Tabloid,
}

// PageSizeByName looks up a standard paper size, ignoring case.
func PageSizeByName(name string) (PageSize, bool) {
	s, ok := pageSizes[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// UnmarshalYAML accepts either a paper name such as "A4" or a mapping
// with width and height.
func (s *PageSize) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return s.setName(value.Value)
	}
	type plain PageSize
	return value.Decode((*plain)(s))
}

// UnmarshalJSON accepts either a paper name or an object with width and
// height.
func (s *PageSize) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return s.setName(name)
	}
	type plain PageSize
	return json.Unmarshal(data, (*plain)(s))
}

func (s *PageSize) setName(name string) error {
	size, ok := PageSizeByName(name)
	if !ok {
		return fmt.Errorf("htmlexport: unknown page size %q", name)
	}
	*s = size
	return nil
}

// Orientation represents the page orientation.
type Orientation int

const (
	// Portrait is the default vertical orientation.
	Portrait Orientation = iota
	// Landscape rotates the page to horizontal orientation.
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// MarshalText implements [encoding.TextMarshaler].
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (o *Orientation) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "portrait":
		*o = Portrait
	case "landscape":
		*o = Landscape
	default:
		return fmt.Errorf("htmlexport: unknown orientation %q", text)
	}
	return nil
}

// Margin represents page margins in millimetres.
type Margin struct {
	Top    float64 `yaml:"top" json:"top"`
	Right  float64 `yaml:"right" json:"right"`
	Bottom float64 `yaml:"bottom" json:"bottom"`
	Left   float64 `yaml:"left" json:"left"`
}

// UniformMargin returns a Margin with the same value on all sides.
func UniformMargin(mm float64) Margin {
	return Margin{Top: mm, Right: mm, Bottom: mm, Left: mm}
}

// DateLayout is the format of the generation date printed in headers and
// title blocks.
const DateLayout = "2006-01-02"

// Header and footer bands, in millimetres, reserved between the margins
// and the page content.
const (
	headerBand = 8.0
	footerBand = 8.0
)

// ExportOptions controls the produced document.
//
// A nil ExportOptions or zero-value fields use the values of
// [DefaultExportOptions]. Margins are merged field by field, so setting
// only Margin.Top keeps the default for the other three sides. As a
// consequence a zero margin cannot be requested.
type ExportOptions struct {
	// Title is written to the document metadata and, for text and tabular
	// exports, printed at the top of the first page.
	Title string `yaml:"title" json:"title"`

	// Filename is the base name used by [Result.Filename] and
	// [Result.Save]. Defaults to "export".
	Filename string `yaml:"filename" json:"filename"`

	Author  string `yaml:"author" json:"author"`
	Subject string `yaml:"subject" json:"subject"`

	// HeaderText is printed at the top left of every PDF page.
	HeaderText string `yaml:"header_text" json:"header_text"`

	// FooterText is printed at the bottom left of every PDF page and at the
	// end of text exports.
	FooterText string `yaml:"footer_text" json:"footer_text"`

	// IncludeDate prints the generation date. Defaults to true.
	IncludeDate *bool `yaml:"include_date" json:"include_date"`

	// Orientation specifies portrait or landscape. Defaults to Portrait.
	Orientation Orientation `yaml:"orientation" json:"orientation"`

	// Size specifies the paper size. Defaults to A4.
	Size PageSize `yaml:"size" json:"size"`

	// Margin specifies page margins in millimetres. Defaults to 15 mm on
	// all sides.
	Margin Margin `yaml:"margin" json:"margin"`

	// Watermark is drawn diagonally on every PDF page when set.
	Watermark string `yaml:"watermark" json:"watermark"`

	// ImageQuality is the JPEG quality in (0,1] used for page slices.
	// Defaults to 0.95.
	ImageQuality float64 `yaml:"image_quality" json:"image_quality"`
}

// DefaultExportOptions returns ExportOptions with sensible defaults.
func DefaultExportOptions() ExportOptions {
	include := true
	return ExportOptions{
		Filename:     "export",
		IncludeDate:  &include,
		Orientation:  Portrait,
		Size:         A4,
		Margin:       UniformMargin(15),
		ImageQuality: pdfdoc.DefaultQuality,
	}
}

// resolved returns ExportOptions with all zero values replaced by
// defaults. The receiver is not modified.
func (o *ExportOptions) resolved() ExportOptions {
	d := DefaultExportOptions()
	if o == nil {
		return d
	}
	r := *o
	if strings.TrimSpace(r.Filename) == "" {
		r.Filename = d.Filename
	}
	if r.IncludeDate == nil {
		r.IncludeDate = d.IncludeDate
	} else {
		v := *r.IncludeDate
		r.IncludeDate = &v
	}
	if r.Size.Width <= 0 || r.Size.Height <= 0 {
		r.Size = d.Size
	}
	r.Margin = mergeMargin(r.Margin, d.Margin)
	if r.ImageQuality <= 0 || r.ImageQuality > 1 {
		r.ImageQuality = d.ImageQuality
	}
	return r
}

func mergeMargin(m, d Margin) Margin {
	pick := func(v, def float64) float64 {
		if v <= 0 {
			return def
		}
		return v
	}
	return Margin{
		Top:    pick(m.Top, d.Top),
		Right:  pick(m.Right, d.Right),
		Bottom: pick(m.Bottom, d.Bottom),
		Left:   pick(m.Left, d.Left),
	}
}

// pageDimensions returns the page width and height in millimetres,
// accounting for orientation.
func (o ExportOptions) pageDimensions() (width, height float64) {
	if o.Orientation == Landscape {
		return o.Size.Height, o.Size.Width
	}
	return o.Size.Width, o.Size.Height
}

func (o ExportOptions) margins() paginate.Margins {
	return paginate.Margins{Top: o.Margin.Top, Right: o.Margin.Right, Bottom: o.Margin.Bottom, Left: o.Margin.Left}
}

// date returns the formatted generation date, or "" when dates are off.
func (o ExportOptions) date(now time.Time) string {
	if o.IncludeDate == nil || !*o.IncludeDate {
		return ""
	}
	return now.Format(DateLayout)
}

// decorations lists the repeating page elements for a PDF export.
func (o ExportOptions) decorations(now time.Time) paginate.DecorationSpec {
	return paginate.DecorationSpec{
		HeaderText: o.HeaderText,
		Date:       o.date(now),
		FooterText: o.FooterText,
		Watermark:  o.Watermark,
	}
}

// geometry lays out a PDF page. The header band is only reserved when a
// header label or date is printed; the footer always carries the page
// number.
func (o ExportOptions) geometry(now time.Time) paginate.Geometry {
	w, h := o.pageDimensions()
	g := paginate.Geometry{
		PageWidth:    w,
		PageHeight:   h,
		Margin:       o.margins(),
		FooterHeight: footerBand,
	}
	if o.decorations(now).HasHeader() {
		g.HeaderHeight = headerBand
	}
	return g
}

func (o ExportOptions) metadata(now time.Time) pdfdoc.Metadata {
	return pdfdoc.Metadata{
		Title:   o.Title,
		Author:  o.Author,
		Subject: o.Subject,
		Creator: Generator,
		Created: now,
		Quality: o.ImageQuality,
	}
}
