package render

import (
	"math"

	"slidesync-be/pkg/raster"
)

// FitOptions controls how a page is fitted into an available container.
type FitOptions struct {
	// Margin is subtracted from each available dimension before fitting.
	Margin float64
	// Shrink backs the fitted scale off slightly so edges never clip.
	Shrink float64
	// MinWidth/MinHeight floor the available space; containers report 0x0
	// before layout has run.
	MinWidth  float64
	MinHeight float64
}

var (
	MainSlideOptions = FitOptions{Margin: 20, Shrink: 0.94, MinWidth: 150, MinHeight: 100}
	PreviewOptions   = FitOptions{Margin: 15, Shrink: 0.88, MinWidth: 150, MinHeight: 100}
	ProjectorOptions = FitOptions{Margin: 10, Shrink: 0.98, MinWidth: 200, MinHeight: 150}
)

// ThumbnailBudget is the pixel budget for the larger thumbnail dimension.
const ThumbnailBudget = 100

// CompensateRotation returns the rotation that cancels a page's intrinsic
// rotation so the rendered output appears upright.
func CompensateRotation(intrinsic int) int {
	r := intrinsic % 360
	if r < 0 {
		r += 360
	}
	return (360 - r) % 360
}

// orientedSize returns the page size as it will appear once the compensating
// rotation is applied: a 90/270 rotation swaps the axes.
func orientedSize(s raster.Size, rotation int) (w, h float64) {
	if rotation%180 != 0 {
		return s.Height, s.Width
	}
	return s.Width, s.Height
}

// FitViewport computes the viewport that fits a page into availW×availH.
func FitViewport(page raster.Page, availW, availH float64, opts FitOptions) raster.Viewport {
	rotation := CompensateRotation(page.Rotation())
	baseW, baseH := orientedSize(page.Size(), rotation)

	availW = math.Max(availW-opts.Margin, opts.MinWidth)
	availH = math.Max(availH-opts.Margin, opts.MinHeight)

	scale := math.Min(availW/baseW, availH/baseH) * opts.Shrink

	return raster.Viewport{
		Scale:    scale,
		Rotation: rotation,
		Width:    int(math.Floor(baseW * scale)),
		Height:   int(math.Floor(baseH * scale)),
	}
}

// ThumbnailViewport scales a page so its larger dimension maps to the fixed
// thumbnail budget, ignoring any container size.
func ThumbnailViewport(page raster.Page) raster.Viewport {
	rotation := CompensateRotation(page.Rotation())
	baseW, baseH := orientedSize(page.Size(), rotation)

	scale := ThumbnailBudget / math.Max(baseW, baseH)

	return raster.Viewport{
		Scale:    scale,
		Rotation: rotation,
		Width:    int(math.Floor(baseW * scale)),
		Height:   int(math.Floor(baseH * scale)),
	}
}
