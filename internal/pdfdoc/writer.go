// Package pdfdoc serializes paginated content into PDF bytes.
//
// [Produce] lays slices of a captured bitmap onto pages computed by
// package paginate and draws their decorations. [ComposeTable] builds a
// grid document straight from row and column data.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"math"
	"time"

	"github.com/go-pdf/fpdf"
	"golang.org/x/image/draw"

	"github.com/porticus-lab/go-html-export/internal/paginate"
	"github.com/porticus-lab/go-html-export/internal/raster"
)

// ErrSerialization is returned when page content cannot be encoded.
var ErrSerialization = errors.New("pdfdoc: serialization failed")

// DefaultQuality is the JPEG quality used when Metadata.Quality is unset.
const DefaultQuality = 0.95

const (
	fontFamily     = "Helvetica"
	decorationSize = 9.0
	watermarkSize  = 60.0
	watermarkAlpha = 0.15
	watermarkAngle = 45.0
)

// Metadata is written into the document information dictionary.
type Metadata struct {
	Title   string
	Author  string
	Subject string
	Creator string
	Created time.Time

	// Quality is the JPEG quality in [0,1] used when slices of the image
	// are re-encoded.
	Quality float64
}

func (m Metadata) jpegQuality() int {
	q := m.Quality
	if q <= 0 || q > 1 {
		q = DefaultQuality
	}
	return max(1, int(math.Round(q*100)))
}

// newDocument starts a PDF with page size w x h millimetres.
func newDocument(w, h float64, meta Metadata) *fpdf.Fpdf {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCompression(true)
	if meta.Title != "" {
		pdf.SetTitle(meta.Title, true)
	}
	if meta.Author != "" {
		pdf.SetAuthor(meta.Author, true)
	}
	if meta.Subject != "" {
		pdf.SetSubject(meta.Subject, true)
	}
	if meta.Creator != "" {
		pdf.SetCreator(meta.Creator, true)
	}
	if !meta.Created.IsZero() {
		pdf.SetCreationDate(meta.Created)
		pdf.SetModificationDate(meta.Created)
	}
	return pdf
}

// Produce renders img across the pages of plan and returns the PDF bytes.
// decorations must hold one entry per page, as returned by
// paginate.Decorate.
func Produce(img *raster.Image, plan paginate.Plan, decorations []paginate.Decoration, g paginate.Geometry, meta Metadata) ([]byte, error) {
	if img == nil || len(plan.Pages) == 0 {
		return nil, fmt.Errorf("%w: nothing to render", ErrSerialization)
	}
	if len(decorations) != len(plan.Pages) {
		return nil, fmt.Errorf("%w: %d decorations for %d pages", ErrSerialization, len(decorations), len(plan.Pages))
	}

	pdf := newDocument(g.PageWidth, g.PageHeight, meta)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	quality := meta.jpegQuality()

	for i, page := range plan.Pages {
		deco := decorations[i]
		pdf.AddPage()

		// The image is opaque, so the watermark only shows in the margins.
		if deco.Watermark != "" {
			drawWatermark(pdf, tr(deco.Watermark), g)
		}

		data, typ, err := segment(img, page, plan.Whole, quality)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrSerialization, page.Index, err)
		}
		name := fmt.Sprintf("page-%d", page.Index)
		opts := fpdf.ImageOptions{ImageType: typ}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
		p := page.Placement
		pdf.ImageOptions(name, p.X, p.Y, p.W, p.H, false, opts, 0, "")

		drawHeader(pdf, tr, deco, g)
		drawFooter(pdf, tr, deco, g)

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrSerialization, page.Index, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

// segment returns the encoded image data for one page. A whole image is
// embedded as captured; slices are cropped and re-encoded as JPEG.
func segment(img *raster.Image, page paginate.Descriptor, whole bool, quality int) ([]byte, string, error) {
	if whole && len(img.Encoded) > 0 {
		return img.Encoded, "PNG", nil
	}
	if page.Rows() <= 0 {
		return nil, "", fmt.Errorf("empty source range [%d,%d)", page.SourceTop, page.SourceBottom)
	}
	b := img.Pixels.Bounds()
	src := image.Rect(b.Min.X, b.Min.Y+page.SourceTop, b.Max.X, b.Min.Y+page.SourceBottom)
	dst := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Copy(dst, image.Point{}, img.Pixels, src, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "JPG", nil
}

func drawWatermark(pdf *fpdf.Fpdf, text string, g paginate.Geometry) {
	cx, cy := g.PageWidth/2, g.PageHeight/2
	pdf.SetFont(fontFamily, "B", watermarkSize)
	pdf.SetTextColor(128, 128, 128)
	pdf.SetAlpha(watermarkAlpha, "Normal")
	w := pdf.GetStringWidth(text)
	pdf.TransformBegin()
	pdf.TransformRotate(watermarkAngle, cx, cy)
	pdf.Text(cx-w/2, cy+watermarkSize*0.35/2, text)
	pdf.TransformEnd()
	pdf.SetAlpha(1, "Normal")
}

func drawHeader(pdf *fpdf.Fpdf, tr func(string) string, d paginate.Decoration, g paginate.Geometry) {
	if d.HeaderLeft == "" && d.HeaderRight == "" {
		return
	}
	y := g.Margin.Top + g.HeaderHeight/2
	pdf.SetFont(fontFamily, "", decorationSize)
	pdf.SetTextColor(80, 80, 80)
	if d.HeaderLeft != "" {
		pdf.Text(g.Margin.Left, y, tr(d.HeaderLeft))
	}
	if d.HeaderRight != "" {
		s := tr(d.HeaderRight)
		pdf.Text(g.PageWidth-g.Margin.Right-pdf.GetStringWidth(s), y, s)
	}
}

func drawFooter(pdf *fpdf.Fpdf, tr func(string) string, d paginate.Decoration, g paginate.Geometry) {
	y := g.PageHeight - g.Margin.Bottom - g.FooterHeight/2 + decorationSize*0.35/2
	if g.FooterHeight == 0 {
		y = g.PageHeight - g.Margin.Bottom/2
	}
	pdf.SetFont(fontFamily, "", decorationSize)
	pdf.SetTextColor(80, 80, 80)
	if d.FooterLeft != "" {
		pdf.Text(g.Margin.Left, y, tr(d.FooterLeft))
	}
	if d.FooterRight != "" {
		s := tr(d.FooterRight)
		pdf.Text(g.PageWidth-g.Margin.Right-pdf.GetStringWidth(s), y, s)
	}
}
