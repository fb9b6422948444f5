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
	"math"

	"seehuhn.de/go/geom/rect"

	"github.com/scanfill/scanfill/internal/pool"
)

// CoverageMap holds per-pixel coverage values in [0, 1] for a
// rectangular pixel region. The map is anchored at integer device
// coordinates (OriginX, OriginY); entry (col, row) of the map covers
// device pixel (OriginX+col, OriginY+row).
type CoverageMap struct {
	OriginX, OriginY int
	Width, Height    int

	// Values holds coverage row-major. Row r starts at Values[r*Width].
	Values []float32
}

// Row returns the coverage values of map row r.
func (m *CoverageMap) Row(r int) []float32 {
	return m.Values[r*m.Width : (r+1)*m.Width]
}

// At returns the coverage of map entry (col, row).
func (m *CoverageMap) At(col, row int) float32 {
	return m.Values[row*m.Width+col]
}

// Filler turns polygon geometry into anti-aliased pixel coverage. Each
// pixel row is evaluated at SubSamples vertical positions; horizontal
// coverage within each sub-sample is exact. A pixel whose every
// sub-sample is fully inside reports coverage exactly 1.0, and a pixel
// no span touches reports exactly 0.0.
//
// A Filler is not safe for concurrent use; create one per goroutine.
type Filler struct {
	// SubSamples is the number of vertical sample positions per pixel
	// row. Must be positive. Higher values give smoother edges at
	// proportional cost.
	SubSamples int

	// Clip, when non-empty, restricts rasterization to the given device
	// region. Pixels outside the clip are not evaluated.
	Clip rect.Rect

	// Alloc, when set, provides the backing buffers for coverage maps.
	// Maps obtained from a filler with an allocator should be returned
	// with Release once composited.
	Alloc *pool.Float32Pool

	scanner *Scanner
	acc     []float32 // one pixel row, in sub-sample units
}

// NewFiller returns a Filler with the default sub-sample count and no
// clip.
func NewFiller() *Filler {
	return &Filler{
		SubSamples: defaultSubSamples,
		scanner:    NewScanner(),
	}
}

// defaultSubSamples is the default number of vertical sub-samples per
// pixel row.
const defaultSubSamples = 4

// Fill rasterizes the polygons under the given fill rule and returns a
// coverage map tight around the geometry (intersected with Clip when
// set). A nil map with a nil error means the geometry covers no pixels.
func (f *Filler) Fill(polys []Polygon, rule Rule) (*CoverageMap, error) {
	if f.SubSamples <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSubSamples, f.SubSamples)
	}
	if f.scanner == nil {
		f.scanner = NewScanner()
	}

	f.scanner.SetPolygons(polys)
	yMin, yMax, xMin, xMax, ok := f.scanner.Bounds()
	if !ok {
		return nil, nil
	}

	if f.Clip.URx > f.Clip.LLx && f.Clip.URy > f.Clip.LLy {
		xMin = max(xMin, f.Clip.LLx)
		xMax = min(xMax, f.Clip.URx)
		yMin = max(yMin, f.Clip.LLy)
		yMax = min(yMax, f.Clip.URy)
		if xMin >= xMax || yMin >= yMax {
			return nil, nil
		}
	}

	originX := int(math.Floor(xMin))
	originY := int(math.Floor(yMin))
	width := int(math.Ceil(xMax)) - originX
	height := int(math.Ceil(yMax)) - originY
	if width <= 0 || height <= 0 {
		return nil, nil
	}

	var values []float32
	if f.Alloc != nil {
		values = f.Alloc.Get(width * height)
	} else {
		values = make([]float32, width*height)
	}
	m := &CoverageMap{
		OriginX: originX,
		OriginY: originY,
		Width:   width,
		Height:  height,
		Values:  values,
	}

	if cap(f.acc) < width {
		f.acc = make([]float32, width)
	}
	acc := f.acc[:width]

	n := f.SubSamples
	invN := 1 / float32(n)
	for row := 0; row < height; row++ {
		clear(acc)
		touched := false
		for s := 0; s < n; s++ {
			y := float64(originY+row) + (float64(s)+0.5)/float64(n)
			for _, span := range f.scanner.SpansAt(y, rule) {
				if accumulateSpan(acc, originX, span) {
					touched = true
				}
			}
		}
		if !touched {
			continue
		}
		dst := m.Row(row)
		for col, v := range acc {
			dst[col] = v * invN
		}
	}

	return m, nil
}

// Release returns a coverage map's buffer to the filler's allocator.
// A no-op without an allocator or for nil maps.
func (f *Filler) Release(m *CoverageMap) {
	if f.Alloc == nil || m == nil {
		return
	}
	f.Alloc.Put(m.Values)
	m.Values = nil
}

// CoverageRow computes one pixel row of coverage from span sets, one
// set per vertical sub-sample. dst[i] covers device pixel originX+i.
// Pixels inside every sub-sample's spans get exactly 1, untouched
// pixels exactly 0.
func CoverageRow(dst []float32, originX int, subSampleSpans [][]Span) {
	clear(dst)
	if len(subSampleSpans) == 0 {
		return
	}
	for _, spans := range subSampleSpans {
		for _, span := range spans {
			accumulateSpan(dst, originX, span)
		}
	}
	inv := 1 / float32(len(subSampleSpans))
	for i := range dst {
		dst[i] *= inv
	}
}

// accumulateSpan adds one sub-sample's horizontal coverage of span to
// acc. acc[i] corresponds to device pixel originX+i; a fully covered
// pixel gains exactly 1. Reports whether any pixel was touched.
func accumulateSpan(acc []float32, originX int, span Span) bool {
	x0 := span.X0 - float64(originX)
	x1 := span.X1 - float64(originX)
	if x1 <= 0 || x0 >= float64(len(acc)) || x0 >= x1 {
		return false
	}
	x0 = max(x0, 0)
	x1 = min(x1, float64(len(acc)))

	i0 := int(x0)
	i1 := int(math.Ceil(x1)) - 1

	if i0 == i1 {
		acc[i0] += float32(x1 - x0)
		return true
	}

	acc[i0] += float32(float64(i0+1) - x0)
	for i := i0 + 1; i < i1; i++ {
		acc[i] += 1
	}
	acc[i1] += float32(x1 - float64(i1))
	return true
}
