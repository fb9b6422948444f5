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

// Pattern is a brush repeating a small two-color tile across the plane.
// The tile is anchored at the device origin and addressed modulo its
// size, so patterns of overlapping operations line up.
type Pattern struct {
	tile          []RGBA // row-major, precomputed colors
	width, height int
}

// NewPattern builds a pattern brush from a boolean tile: true cells
// paint fg, false cells paint bg. The tile must be non-empty and
// rectangular.
func NewPattern(tile [][]bool, fg, bg RGBA) (*Pattern, error) {
	if len(tile) == 0 || len(tile[0]) == 0 {
		return nil, fmt.Errorf("%w: empty tile", ErrInvalidTile)
	}
	width := len(tile[0])
	for i, row := range tile {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d",
				ErrInvalidTile, i, len(row), width)
		}
	}
	if !fg.valid() {
		return nil, fmt.Errorf("%w: foreground %+v", ErrInvalidColor, fg)
	}
	if !bg.valid() {
		return nil, fmt.Errorf("%w: background %+v", ErrInvalidColor, bg)
	}

	p := &Pattern{
		tile:   make([]RGBA, len(tile)*width),
		width:  width,
		height: len(tile),
	}
	for y, row := range tile {
		for x, on := range row {
			if on {
				p.tile[y*width+x] = fg
			} else {
				p.tile[y*width+x] = bg
			}
		}
	}
	return p, nil
}

// Applicator implements the Brush interface.
func (p *Pattern) Applicator(frame *Frame, region image.Rectangle, opacity float64) (Applicator, error) {
	if opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidOpacity, opacity)
	}
	return &patternApplicator{
		frame:   frame,
		pattern: p,
		opacity: opacity,
	}, nil
}

type patternApplicator struct {
	frame   *Frame
	pattern *Pattern
	opacity float64
	closed  bool

	pool sync.Pool // *scratch
}

// tileIndex maps a device coordinate to a tile coordinate, handling
// negative device positions.
func tileIndex(v, size int) int {
	i := v % size
	if i < 0 {
		i += size
	}
	return i
}

func (ap *patternApplicator) Apply(coverage []float32, x, y int) {
	sc, _ := ap.pool.Get().(*scratch)
	if sc == nil {
		sc = &scratch{}
	}
	n := len(coverage)
	sc.resize(n)
	sc.resizeColors(n)

	p := ap.pattern
	tileRow := p.tile[tileIndex(y, p.height)*p.width:]
	for i := 0; i < n; i++ {
		sc.amount[i] = coverage[i] * float32(ap.opacity)
		sc.colors[i] = tileRow[tileIndex(x+i, p.width)]
	}

	row := ap.frame.Row(y)
	for i := 0; i < n; i++ {
		c := sc.colors[i]
		blendOver(row, (x+i)*4, c.R, c.G, c.B, c.A*float64(sc.amount[i]))
	}

	ap.pool.Put(sc)
}

func (ap *patternApplicator) Close() error {
	if ap.closed {
		return ErrClosed
	}
	ap.closed = true
	return nil
}
