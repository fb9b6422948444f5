// scanfill - a 2D scan-conversion rasterization library
// Copyright (C) 2026  The scanfill authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package scanfill

import (
	"fmt"
	"image"
	"sync"
)

// Brush produces color for covered pixels. A Brush is an immutable
// description; binding it to a frame and region with Applicator yields
// the object that actually writes pixels.
type Brush interface {
	// Applicator binds the brush to a destination frame and the device
	// region the drawing operation may touch. opacity in [0, 1] scales
	// all coverage passed to Apply.
	Applicator(frame *Frame, region image.Rectangle, opacity float64) (Applicator, error)
}

// Applicator writes brush color into frame rows, weighted by coverage.
// Apply may be called concurrently for distinct rows; Close releases
// internal scratch and must be called exactly once, after all Apply
// calls have returned.
type Applicator interface {
	// Apply blends the brush into the pixels (x, y) .. (x+len(coverage)-1, y)
	// of the bound frame, each weighted by the corresponding coverage
	// value. Coordinates are device pixels; the caller guarantees the
	// run lies inside the frame.
	Apply(coverage []float32, x, y int)

	// Close releases per-thread scratch buffers. The applicator must
	// not be used afterwards.
	Close() error
}

// scratch is the per-goroutine working state of an applicator. Each
// concurrent Apply call checks one out of the pool, so rows never share
// buffers.
type scratch struct {
	amount []float32 // opacity-scaled coverage
	colors []RGBA    // per-pixel brush color (spatially varying brushes)
}

func (sc *scratch) resize(n int) {
	if cap(sc.amount) < n {
		sc.amount = make([]float32, n)
	}
	sc.amount = sc.amount[:n]
}

func (sc *scratch) resizeColors(n int) {
	if cap(sc.colors) < n {
		sc.colors = make([]RGBA, n)
	}
	sc.colors = sc.colors[:n]
}

// blendOver source-over composites src (non-premultiplied, alpha a)
// onto the frame pixel at index i of row.
func blendOver(row []float64, i int, r, g, b, a float64) {
	if a <= 0 {
		return
	}
	dstA := row[i+3]
	outA := a + dstA*(1-a)
	if outA <= 0 {
		return
	}
	invOut := 1 / outA
	w := dstA * (1 - a)
	row[i+0] = (r*a + row[i+0]*w) * invOut
	row[i+1] = (g*a + row[i+1]*w) * invOut
	row[i+2] = (b*a + row[i+2]*w) * invOut
	row[i+3] = outA
}

// Solid is a brush painting a single color everywhere.
type Solid struct {
	Color RGBA
}

// NewSolid returns a solid brush, validating the color.
func NewSolid(c RGBA) (*Solid, error) {
	if !c.valid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidColor, c)
	}
	return &Solid{Color: c}, nil
}

// Applicator implements the Brush interface.
func (s *Solid) Applicator(frame *Frame, region image.Rectangle, opacity float64) (Applicator, error) {
	if !s.Color.valid() {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidColor, s.Color)
	}
	if opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidOpacity, opacity)
	}
	return &solidApplicator{
		frame:   frame,
		color:   s.Color,
		opacity: opacity,
	}, nil
}

type solidApplicator struct {
	frame   *Frame
	color   RGBA
	opacity float64
	closed  bool

	pool sync.Pool // *scratch, populated lazily per concurrent row
}

func (ap *solidApplicator) Apply(coverage []float32, x, y int) {
	sc, _ := ap.pool.Get().(*scratch)
	if sc == nil {
		sc = &scratch{}
	}
	sc.resize(len(coverage))
	for i, c := range coverage {
		sc.amount[i] = c * float32(ap.opacity)
	}

	row := ap.frame.Row(y)
	c := ap.color
	for i, amt := range sc.amount {
		blendOver(row, (x+i)*4, c.R, c.G, c.B, c.A*float64(amt))
	}

	ap.pool.Put(sc)
}

func (ap *solidApplicator) Close() error {
	if ap.closed {
		return ErrClosed
	}
	ap.closed = true
	return nil
}
