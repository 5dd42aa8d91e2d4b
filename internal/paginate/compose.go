package paginate

import (
	"errors"
	"fmt"
	"math"
)

// epsilon absorbs floating residue so an exact multiple of the page
// height never produces a trailing empty page.
const epsilon = 1e-6

// ErrTooFewRows is returned when an image is so narrow for the page that
// it has fewer pixel rows than the pages it would span.
var ErrTooFewRows = errors.New("paginate: fewer image rows than pages")

// Rect is a placement on the page in millimetres.
type Rect struct {
	X, Y, W, H float64
}

// Descriptor describes one page of the output.
type Descriptor struct {
	// Index is 1-based.
	Index int

	// SourceTop and SourceBottom delimit the half-open pixel row range
	// [SourceTop, SourceBottom) of the source image shown on this page.
	SourceTop    int
	SourceBottom int

	// Placement is where the slice is drawn on the page.
	Placement Rect
}

// Rows returns the number of source pixel rows on the page.
func (d Descriptor) Rows() int { return d.SourceBottom - d.SourceTop }

// Plan is the result of paginating one image.
type Plan struct {
	Pages []Descriptor

	// ScaledHeight is the full image height once scaled to the content width.
	ScaledHeight float64

	// Whole is true when the image fits on a single page and is placed
	// without being cut.
	Whole bool
}

// Total returns the number of pages.
func (p Plan) Total() int { return len(p.Pages) }

// Compose splits an image of width x height pixels across pages of the
// given geometry. The image is scaled uniformly so its width fills the
// content width exactly.
func Compose(width, height int, g Geometry) (Plan, error) {
	if width <= 0 || height <= 0 {
		return Plan{}, fmt.Errorf("paginate: empty image %dx%d", width, height)
	}
	if err := g.Validate(); err != nil {
		return Plan{}, err
	}

	contentWidth := g.ContentWidth()
	maxHeight := g.MaxContentHeight()
	startY := g.StartY()
	scaled := float64(height) * contentWidth / float64(width)

	if scaled <= maxHeight+epsilon {
		return Plan{
			Pages: []Descriptor{{
				Index:        1,
				SourceTop:    0,
				SourceBottom: height,
				Placement:    Rect{X: g.Margin.Left, Y: startY, W: contentWidth, H: scaled},
			}},
			ScaledHeight: scaled,
			Whole:        true,
		}, nil
	}

	total := PageCount(width, height, g)
	if total > height {
		return Plan{}, fmt.Errorf("%w: %d rows over %d pages", ErrTooFewRows, height, total)
	}

	plan := Plan{ScaledHeight: scaled, Pages: make([]Descriptor, 0, total)}
	remaining := scaled
	sourceY := 0.0
	top := 0
	for index := 1; index <= total; index++ {
		take := math.Min(maxHeight, remaining)
		if index == total {
			take = remaining
		}
		sourceY += take / scaled * float64(height)
		remaining -= take

		bottom := int(math.Round(sourceY))
		if index == total {
			bottom = height
		}
		// Every later page keeps at least one row.
		bottom = max(min(bottom, height-(total-index)), top+1)

		plan.Pages = append(plan.Pages, Descriptor{
			Index:        index,
			SourceTop:    top,
			SourceBottom: bottom,
			Placement:    Rect{X: g.Margin.Left, Y: startY, W: contentWidth, H: take},
		})
		top = bottom
	}
	return plan, nil
}

// PageCount returns ceil(scaledHeight / maxContentHeight) for an image of
// the given pixel size without building the plan.
func PageCount(width, height int, g Geometry) int {
	if width <= 0 || height <= 0 || g.Validate() != nil {
		return 0
	}
	scaled := float64(height) * g.ContentWidth() / float64(width)
	n := int(math.Ceil((scaled - epsilon) / g.MaxContentHeight()))
	if n < 1 {
		n = 1
	}
	return n
}
