package render

import (
	"context"
	"image"
	"testing"

	"slidesync-be/pkg/raster"

	"github.com/stretchr/testify/assert"
)

type fakePage struct {
	size     raster.Size
	rotation int
}

func (p fakePage) Size() raster.Size { return p.size }
func (p fakePage) Rotation() int     { return p.rotation }
func (p fakePage) Render(ctx context.Context, vp raster.Viewport, dst *image.RGBA) error {
	return nil
}

func TestCompensateRotation(t *testing.T) {
	tests := []struct {
		name      string
		intrinsic int
		want      int
	}{
		{name: "upright stays upright", intrinsic: 0, want: 0},
		{name: "90 compensated by 270", intrinsic: 90, want: 270},
		{name: "180 compensated by 180", intrinsic: 180, want: 180},
		{name: "270 compensated by 90", intrinsic: 270, want: 90},
		{name: "full turn normalized", intrinsic: 360, want: 0},
		{name: "over a full turn", intrinsic: 450, want: 270},
		{name: "negative normalized first", intrinsic: -90, want: 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompensateRotation(tt.intrinsic))
		})
	}
}

func TestFitViewportLandscapeContainer(t *testing.T) {
	page := fakePage{size: raster.Size{Width: 612, Height: 792}}
	opts := FitOptions{Margin: 20, Shrink: 0.94, MinWidth: 150, MinHeight: 100}

	vp := FitViewport(page, 1000, 700, opts)

	// Height is the binding dimension: (700-20)/792 < (1000-20)/612.
	wantScale := (700.0 - 20.0) / 792.0 * 0.94
	assert.InDelta(t, wantScale, vp.Scale, 1e-9)
	assert.Equal(t, 0, vp.Rotation)
	assert.Equal(t, int(612*wantScale), vp.Width)
	assert.Equal(t, int(792*wantScale), vp.Height)
}

func TestFitViewportRotatedPageSwapsAxes(t *testing.T) {
	// A landscape scan stored with a 90° rotation flag: once the compensating
	// 270° is applied, width and height trade places for fitting.
	page := fakePage{size: raster.Size{Width: 612, Height: 792}, rotation: 90}
	opts := FitOptions{Margin: 0, Shrink: 1, MinWidth: 1, MinHeight: 1}

	vp := FitViewport(page, 792, 612, opts)

	assert.Equal(t, 270, vp.Rotation)
	assert.InDelta(t, 1.0, vp.Scale, 1e-9)
	assert.Equal(t, 792, vp.Width)
	assert.Equal(t, 612, vp.Height)
}

func TestFitViewportClampsUnmeasuredContainer(t *testing.T) {
	page := fakePage{size: raster.Size{Width: 612, Height: 792}}
	opts := FitOptions{Margin: 20, Shrink: 0.94, MinWidth: 150, MinHeight: 100}

	// A container that has not laid out yet reports 0x0; the floor keeps the
	// scale positive instead of collapsing the paint.
	vp := FitViewport(page, 0, 0, opts)

	assert.Greater(t, vp.Scale, 0.0)
	wantScale := 100.0 / 792.0 * 0.94
	assert.InDelta(t, wantScale, vp.Scale, 1e-9)
}

func TestFitOptionsPresets(t *testing.T) {
	assert.Equal(t, FitOptions{Margin: 20, Shrink: 0.94, MinWidth: 150, MinHeight: 100}, MainSlideOptions)
	assert.Equal(t, FitOptions{Margin: 15, Shrink: 0.88, MinWidth: 150, MinHeight: 100}, PreviewOptions)
	assert.Equal(t, FitOptions{Margin: 10, Shrink: 0.98, MinWidth: 200, MinHeight: 150}, ProjectorOptions)
}

func TestThumbnailViewport(t *testing.T) {
	t.Run("portrait page budgets the height", func(t *testing.T) {
		vp := ThumbnailViewport(fakePage{size: raster.Size{Width: 600, Height: 800}})
		assert.Equal(t, 100, vp.Height)
		assert.Equal(t, 75, vp.Width)
		assert.InDelta(t, 0.125, vp.Scale, 1e-9)
	})

	t.Run("landscape page budgets the width", func(t *testing.T) {
		vp := ThumbnailViewport(fakePage{size: raster.Size{Width: 800, Height: 600}})
		assert.Equal(t, 100, vp.Width)
		assert.Equal(t, 75, vp.Height)
	})

	t.Run("rotated page budgets the oriented dimension", func(t *testing.T) {
		vp := ThumbnailViewport(fakePage{size: raster.Size{Width: 600, Height: 800}, rotation: 90})
		assert.Equal(t, 90, vp.Rotation)
		assert.Equal(t, 100, vp.Width)
	})
}
