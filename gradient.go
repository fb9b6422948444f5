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
	"math"
	"sync"

	"seehuhn.de/go/geom/vec"
)

// ColorStop is a color at a position along a gradient axis. Offset is
// in [0, 1].
type ColorStop struct {
	Offset float64
	Color  RGBA
}

// ExtendMode controls gradient color outside the [0, 1] axis range.
type ExtendMode int

const (
	// ExtendPad clamps to the first/last stop color.
	ExtendPad ExtendMode = iota

	// ExtendRepeat tiles the gradient.
	ExtendRepeat

	// ExtendReflect mirrors the gradient on every repetition.
	ExtendReflect
)

// LinearGradient is a brush interpolating colors along the axis from
// Start to End (device coordinates).
type LinearGradient struct {
	Start, End vec.Vec2
	Stops      []ColorStop
	Extend     ExtendMode
}

// NewLinearGradient validates the stops and returns the gradient.
// Stops must be non-empty, sorted by offset, with offsets in [0, 1] and
// valid colors. Start and End must be distinct.
func NewLinearGradient(start, end vec.Vec2, stops []ColorStop, extend ExtendMode) (*LinearGradient, error) {
	if len(stops) == 0 {
		return nil, fmt.Errorf("%w: no stops", ErrInvalidGradient)
	}
	prev := math.Inf(-1)
	for i, s := range stops {
		if s.Offset < 0 || s.Offset > 1 {
			return nil, fmt.Errorf("%w: stop %d offset %g out of range", ErrInvalidGradient, i, s.Offset)
		}
		if s.Offset < prev {
			return nil, fmt.Errorf("%w: stops not sorted at index %d", ErrInvalidGradient, i)
		}
		if !s.Color.valid() {
			return nil, fmt.Errorf("%w: stop %d color %+v", ErrInvalidColor, i, s.Color)
		}
		prev = s.Offset
	}
	d := end.Sub(start)
	if d.Length() < zeroLengthThreshold {
		return nil, fmt.Errorf("%w: start and end coincide", ErrInvalidGradient)
	}
	return &LinearGradient{
		Start:  start,
		End:    end,
		Stops:  append([]ColorStop(nil), stops...),
		Extend: extend,
	}, nil
}

// colorAt returns the gradient color for axis position t, after extend
// handling.
func (g *LinearGradient) colorAt(t float64) RGBA {
	switch g.Extend {
	case ExtendPad:
		t = clamp01(t)
	case ExtendRepeat:
		t = t - math.Floor(t)
	case ExtendReflect:
		t = math.Abs(t)
		period := math.Mod(t, 2)
		if period > 1 {
			period = 2 - period
		}
		t = period
	}

	stops := g.Stops
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	for i := 1; i < len(stops); i++ {
		if t <= stops[i].Offset {
			lo, hi := stops[i-1], stops[i]
			span := hi.Offset - lo.Offset
			if span <= 0 {
				return hi.Color
			}
			return lo.Color.Lerp(hi.Color, (t-lo.Offset)/span)
		}
	}
	return last.Color
}

// Applicator implements the Brush interface.
func (g *LinearGradient) Applicator(frame *Frame, region image.Rectangle, opacity float64) (Applicator, error) {
	if opacity < 0 || opacity > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidOpacity, opacity)
	}
	d := g.End.Sub(g.Start)
	lenSq := d.Dot(d)
	if lenSq < zeroLengthThreshold {
		return nil, fmt.Errorf("%w: start and end coincide", ErrInvalidGradient)
	}
	return &gradientApplicator{
		frame:    frame,
		gradient: g,
		opacity:  opacity,
		// Precompute the projection: t = (p - start) · d / |d|²
		dx: d.X / lenSq,
		dy: d.Y / lenSq,
	}, nil
}

type gradientApplicator struct {
	frame    *Frame
	gradient *LinearGradient
	opacity  float64
	dx, dy   float64
	closed   bool

	pool sync.Pool // *scratch
}

func (ap *gradientApplicator) Apply(coverage []float32, x, y int) {
	sc, _ := ap.pool.Get().(*scratch)
	if sc == nil {
		sc = &scratch{}
	}
	n := len(coverage)
	sc.resize(n)
	sc.resizeColors(n)

	g := ap.gradient
	// Sample at pixel centers.
	py := float64(y) + 0.5 - g.Start.Y
	base := (float64(x)+0.5-g.Start.X)*ap.dx + py*ap.dy
	for i := 0; i < n; i++ {
		sc.amount[i] = coverage[i] * float32(ap.opacity)
		sc.colors[i] = g.colorAt(base + float64(i)*ap.dx)
	}

	row := ap.frame.Row(y)
	for i := 0; i < n; i++ {
		c := sc.colors[i]
		blendOver(row, (x+i)*4, c.R, c.G, c.B, c.A*float64(sc.amount[i]))
	}

	ap.pool.Put(sc)
}

func (ap *gradientApplicator) Close() error {
	if ap.closed {
		return ErrClosed
	}
	ap.closed = true
	return nil
}
