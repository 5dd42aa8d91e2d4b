// Package raster captures a region of a browser tab as a bitmap.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Sentinel errors returned by Capture.
var (
	// ErrEmptyContent is returned when the region to capture has a zero
	// width or height. It is detected before the browser is asked for
	// pixels.
	ErrEmptyContent = errors.New("raster: empty content")

	// ErrCapture is returned when the browser fails to produce a bitmap.
	ErrCapture = errors.New("raster: capture failed")
)

// DefaultScale oversamples the capture so the page image survives the
// lossy re-encoding done when it is sliced across pages.
const DefaultScale = 4.0

// Region is a box in CSS pixels, in document coordinates.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether the region has no area.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Options control a capture.
type Options struct {
	// Scale is the device pixel oversampling factor. Defaults to DefaultScale.
	Scale float64

	// Background fills transparent areas. Defaults to opaque white.
	Background color.RGBA
}

func (o Options) resolved() Options {
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Background == (color.RGBA{}) {
		o.Background = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return o
}

// Image is a captured bitmap. It is never modified after Capture returns.
type Image struct {
	Width  int
	Height int

	// Pixels is the decoded bitmap.
	Pixels image.Image

	// Encoded holds the PNG bytes exactly as the browser produced them.
	Encoded []byte
}

// Decode wraps PNG bytes into an Image.
func Decode(data []byte) (*Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding png: %v", ErrCapture, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: decoded %dx%d image", ErrEmptyContent, b.Dx(), b.Dy())
	}
	return &Image{Width: b.Dx(), Height: b.Dy(), Pixels: img, Encoded: data}, nil
}

// Capture rasterizes region of the page attached to ctx, which must be a
// chromedp tab context.
func Capture(ctx context.Context, region Region, opts Options) (*Image, error) {
	if region.Empty() {
		return nil, fmt.Errorf("%w: measured %.0fx%.0f", ErrEmptyContent, region.Width, region.Height)
	}
	opts = opts.resolved()

	bg := &cdp.RGBA{
		R: int64(opts.Background.R),
		G: int64(opts.Background.G),
		B: int64(opts.Background.B),
		A: float64(opts.Background.A) / 0xff,
	}

	var buf []byte
	if err := chromedp.Run(ctx,
		emulation.SetDefaultBackgroundColorOverride().WithColor(bg),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithClip(&page.Viewport{
					X:      region.X,
					Y:      region.Y,
					Width:  region.Width,
					Height: region.Height,
					Scale:  opts.Scale,
				}).
				WithCaptureBeyondViewport(true).
				WithFromSurface(true).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return Decode(buf)
}
