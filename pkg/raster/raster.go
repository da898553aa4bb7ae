package raster

import (
	"context"
	"image"
)

// Engine is the boundary to the external PDF rasterization capability.
// Implementations wrap whatever decoder the host platform provides; the rest
// of the client code only sees geometry and a page-paint operation.
type Engine interface {
	Open(ctx context.Context, ref string) (Document, error)
}

// Document is an open deck.
type Document interface {
	NumPages() int
	// Page returns the page with the given 1-based number.
	Page(ctx context.Context, number int) (Page, error)
	Close() error
}

// Size is page geometry at the reference scale 1.
type Size struct {
	Width  float64
	Height float64
}

// Viewport describes one paint: the scale and the compensating rotation to
// apply, plus the resulting pixel dimensions.
type Viewport struct {
	Scale    float64
	Rotation int
	Width    int
	Height   int
}

type Page interface {
	Size() Size
	// Rotation is the page's intrinsic rotation in degrees (0, 90, 180, 270).
	Rotation() int
	// Render paints the page into dst under the given viewport. dst must be
	// an off-screen target; Render may suspend while the engine works.
	Render(ctx context.Context, vp Viewport, dst *image.RGBA) error
}
