package render

import (
	"context"
	"fmt"
	"image"

	"slidesync-be/pkg/raster"
)

// Layout reports the current available width×height of a target container.
// Measurements may be stale right after a layout change; callers paper over
// that with a delayed re-render, not here.
type Layout func() (w, h float64)

// Adapter wraps an open document and turns "render page N into this
// container" into a concrete viewport plus an engine paint call.
type Adapter struct {
	doc raster.Document
}

func NewAdapter(doc raster.Document) *Adapter {
	return &Adapter{doc: doc}
}

func (a *Adapter) NumPages() int {
	return a.doc.NumPages()
}

// Paint renders page number into an off-screen image sized by fitting the
// page into the given container.
func (a *Adapter) Paint(ctx context.Context, number int, layout Layout, opts FitOptions) (*image.RGBA, error) {
	page, err := a.doc.Page(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", number, err)
	}

	availW, availH := layout()
	vp := FitViewport(page, availW, availH, opts)

	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	if err := page.Render(ctx, vp, dst); err != nil {
		return nil, fmt.Errorf("render page %d: %w", number, err)
	}
	return dst, nil
}

// PaintThumbnail renders page number at the fixed thumbnail budget.
func (a *Adapter) PaintThumbnail(ctx context.Context, number int) (*image.RGBA, error) {
	page, err := a.doc.Page(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", number, err)
	}

	vp := ThumbnailViewport(page)
	dst := image.NewRGBA(image.Rect(0, 0, vp.Width, vp.Height))
	if err := page.Render(ctx, vp, dst); err != nil {
		return nil, fmt.Errorf("render thumbnail %d: %w", number, err)
	}
	return dst, nil
}

func (a *Adapter) Close() error {
	return a.doc.Close()
}
