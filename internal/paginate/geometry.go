// Package paginate slices one captured bitmap across fixed-size pages.
//
// All lengths are in millimetres. Pagination is pure arithmetic: [Compose]
// turns an image size and a [Geometry] into a [Plan], and [Decorate]
// derives the per-page header, footer and watermark once the page count
// is known.
package paginate

import (
	"errors"
	"fmt"
)

// ErrInvalidGeometry is returned when a page cannot hold any content.
var ErrInvalidGeometry = errors.New("paginate: invalid page geometry")

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Geometry describes the physical page the image is laid out on.
type Geometry struct {
	PageWidth  float64
	PageHeight float64
	Margin     Margins

	// HeaderHeight is the band reserved below the top margin for the
	// header. Content starts underneath it.
	HeaderHeight float64

	// FooterHeight is the band reserved above the bottom margin for the
	// footer and page numbers.
	FooterHeight float64
}

// ContentWidth is the printable width between the left and right margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.Margin.Left - g.Margin.Right
}

// StartY is the header-clear offset at which page content begins.
func (g Geometry) StartY() float64 {
	return g.Margin.Top + g.HeaderHeight
}

// BottomMargin is the distance from the bottom page edge that content
// must not cross.
func (g Geometry) BottomMargin() float64 {
	return g.Margin.Bottom + g.FooterHeight
}

// MaxContentHeight is the tallest slice a single page can hold.
func (g Geometry) MaxContentHeight() float64 {
	return g.PageHeight - g.StartY() - g.BottomMargin()
}

// Validate reports whether the geometry leaves a positive content area.
func (g Geometry) Validate() error {
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		return fmt.Errorf("%w: page size %.2fx%.2f", ErrInvalidGeometry, g.PageWidth, g.PageHeight)
	}
	if g.ContentWidth() <= 0 {
		return fmt.Errorf("%w: content width %.2f", ErrInvalidGeometry, g.ContentWidth())
	}
	if g.MaxContentHeight() <= 0 {
		return fmt.Errorf("%w: content height %.2f", ErrInvalidGeometry, g.MaxContentHeight())
	}
	return nil
}
