package display

import (
	"context"
	"image"
	"sync"
)

// State of a double-buffered surface pair.
type State int

const (
	Idle State = iota
	Painting
	Swapping
)

// Surface is one of the two paint targets of a buffer pair. Page records
// which page its pixels show; 0 means never painted.
type Surface struct {
	Image *image.RGBA
	Page  int
}

// PaintFunc paints one page into dst. It may suspend while the rasterization
// engine works. It must only touch dst, never the visible surface.
type PaintFunc func(ctx context.Context, page int, dst *Surface) error

// DoubleBuffer keeps two equivalent surfaces, exactly one visible. Paints go
// to the back surface; a completed paint atomically promotes it to visible.
// At most one paint is in flight; requests arriving mid-paint supersede each
// other so a burst of page changes coalesces into "paint latest only".
type DoubleBuffer struct {
	mu      sync.Mutex
	front   *Surface
	back    *Surface
	state   State
	pending int // superseding page, 0 = none
	paint   PaintFunc

	// AfterSwap, if set, runs after a painted frame becomes visible.
	AfterSwap func(page int)
}

func NewDoubleBuffer(paint PaintFunc) *DoubleBuffer {
	return &DoubleBuffer{
		front: &Surface{},
		back:  &Surface{},
		paint: paint,
	}
}

// Render requests that page become visible. If a paint is already in flight
// the request is recorded as pending and the in-flight target is superseded;
// no second concurrent paint ever starts.
func (b *DoubleBuffer) Render(ctx context.Context, page int) {
	b.mu.Lock()
	if b.state != Idle {
		b.pending = page
		b.mu.Unlock()
		return
	}
	b.state = Painting
	b.mu.Unlock()

	go b.paintLoop(ctx, page)
}

func (b *DoubleBuffer) paintLoop(ctx context.Context, page int) {
	for {
		// The in-flight paint always runs to completion; superseding
		// requests only take effect afterwards.
		err := b.paint(ctx, page, b.back)

		b.mu.Lock()
		var swapped bool
		if err == nil {
			b.state = Swapping
			b.back.Page = page
			b.front, b.back = b.back, b.front
			swapped = true
		}
		// Drain-one-pending: continue with the latest superseding page only.
		next := b.pending
		b.pending = 0
		if next != 0 && next != page {
			b.state = Painting
			b.mu.Unlock()
			if swapped && b.AfterSwap != nil {
				b.AfterSwap(page)
			}
			page = next
			continue
		}
		b.state = Idle
		b.mu.Unlock()
		if swapped && b.AfterSwap != nil {
			b.AfterSwap(page)
		}
		return
	}
}

// Visible returns the surface currently shown. On paint errors the previous
// frame stays visible; a half-painted back surface is never promoted.
func (b *DoubleBuffer) Visible() *Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.front
}

func (b *DoubleBuffer) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
