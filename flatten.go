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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Polygon is an ordered point sequence in device coordinates. A closed
// polygon is implicitly connected from the last point back to the
// first; the closing segment is never stored explicitly.
type Polygon struct {
	Points []vec.Vec2
	Closed bool
}

// Flattener converts paths into polygons in device space, approximating
// curves by line segments to within Flatness device pixels. Create one
// instance and reuse it; internal buffers grow as needed but never
// shrink.
//
// A Flattener is not safe for concurrent use.
type Flattener struct {
	// CTM transforms from user space to device space. Must be non-singular.
	CTM matrix.Matrix

	// Flatness controls curve approximation accuracy in device pixels.
	// Typical values: 0.25–1.0. Must be positive.
	Flatness float64

	// Output buffers (reused across calls). Each polygon's Points slice
	// aliases the points buffer.
	polys  []Polygon
	points []vec.Vec2
}

// NewFlattener returns a Flattener with an identity CTM and the default
// flatness tolerance.
func NewFlattener() *Flattener {
	return &Flattener{
		CTM:      matrix.Identity,
		Flatness: defaultFlatness,
	}
}

// transform maps a user-space point to device space.
func (fl *Flattener) transform(p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: fl.CTM[0]*p.X + fl.CTM[2]*p.Y + fl.CTM[4],
		Y: fl.CTM[1]*p.X + fl.CTM[3]*p.Y + fl.CTM[5],
	}
}

// transformLinear applies only the 2×2 linear part of CTM to a vector.
// Used for CTM-aware tolerance checking where translation is irrelevant.
func (fl *Flattener) transformLinear(v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: fl.CTM[0]*v.X + fl.CTM[2]*v.Y,
		Y: fl.CTM[1]*v.X + fl.CTM[3]*v.Y,
	}
}

// Flatten walks the path and returns one polygon per subpath, in device
// coordinates. The returned slice and the polygons' point slices are
// valid until the next call.
//
// Degenerate subpaths (a lone MoveTo) produce single-point polygons;
// duplicate consecutive points are preserved as-is. Neither is an
// error.
func (fl *Flattener) Flatten(p *path.Data) []Polygon {
	fl.polys = fl.polys[:0]
	fl.points = fl.points[:0]

	var current vec.Vec2 // current point (user space)
	start := 0           // index into fl.points where current subpath starts
	open := false

	emit := func(_, to vec.Vec2) {
		fl.points = append(fl.points, fl.transform(to))
	}
	finish := func(closed bool) {
		if !open {
			return
		}
		fl.polys = append(fl.polys, Polygon{
			Points: fl.points[start:len(fl.points):len(fl.points)],
			Closed: closed,
		})
		start = len(fl.points)
		open = false
	}

	// Walk the path using direct field access (no iterator allocation).
	coordIdx := 0
	for _, cmd := range p.Cmds {
		switch cmd {
		case path.CmdMoveTo:
			finish(false)
			current = p.Coords[coordIdx]
			coordIdx++
			fl.points = append(fl.points, fl.transform(current))
			open = true

		case path.CmdLineTo:
			if open {
				emit(current, p.Coords[coordIdx])
			}
			current = p.Coords[coordIdx]
			coordIdx++

		case path.CmdQuadTo:
			if open {
				fl.flattenQuadratic(current, p.Coords[coordIdx], p.Coords[coordIdx+1], emit)
			}
			current = p.Coords[coordIdx+1]
			coordIdx += 2

		case path.CmdCubeTo:
			if open {
				fl.flattenCubic(current, p.Coords[coordIdx], p.Coords[coordIdx+1], p.Coords[coordIdx+2], emit)
			}
			current = p.Coords[coordIdx+2]
			coordIdx += 3

		case path.CmdClose:
			// The closing segment back to the subpath start is implicit
			// in Polygon.Closed.
			finish(true)
		}
	}
	finish(false)

	return fl.polys
}

// flattenQuadratic flattens a quadratic Bézier and calls emit for each
// line segment. p0 is the start point (current point), p1 is control,
// p2 is endpoint. All points are in user space; CTM-aware tolerance
// checking is used.
func (fl *Flattener) flattenQuadratic(p0, p1, p2 vec.Vec2, emit func(from, to vec.Vec2)) {
	// Error vector: e = (P0 - 2*P1 + P2) / 4
	e := p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)
	eDev := fl.transformLinear(e)

	n := 1
	errDev := eDev.Length()
	if errDev > fl.Flatness {
		n = int(math.Ceil(math.Sqrt(errDev / fl.Flatness)))
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		// B(t) = (1-t)²P0 + 2(1-t)tP1 + t²P2
		omt := 1 - t
		pt := p0.Mul(omt * omt).Add(p1.Mul(2 * omt * t)).Add(p2.Mul(t * t))
		emit(prev, pt)
		prev = pt
	}
}

// flattenCubic flattens a cubic Bézier and calls emit for each line
// segment. p0 is start, p1/p2 are controls, p3 is endpoint. All in user
// space.
func (fl *Flattener) flattenCubic(p0, p1, p2, p3 vec.Vec2, emit func(from, to vec.Vec2)) {
	// Deviation vectors for Wang's formula.
	d1 := p0.Sub(p1.Mul(2)).Add(p2) // P0 - 2*P1 + P2
	d2 := p1.Sub(p2.Mul(2)).Add(p3) // P1 - 2*P2 + P3

	d1Dev := fl.transformLinear(d1)
	d2Dev := fl.transformLinear(d2)

	mDev := max(d1Dev.Length(), d2Dev.Length())
	n := 1
	if mDev > 0 {
		// n = ceil(sqrt(3 * mDev / (4 * ε)))
		nFloat := math.Sqrt(3 * mDev / (4 * fl.Flatness))
		if nFloat > 1 {
			n = int(math.Ceil(nFloat))
		}
	}

	prev := p0
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		// B(t) = (1-t)³P0 + 3(1-t)²tP1 + 3(1-t)t²P2 + t³P3
		omt := 1 - t
		omt2 := omt * omt
		omt3 := omt2 * omt
		t2 := t * t
		t3 := t2 * t
		pt := p0.Mul(omt3).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t3))
		emit(prev, pt)
		prev = pt
	}
}

// Default values for geometry processing.
const (
	// defaultFlatness is the default curve flattening tolerance in
	// device pixels. Values of 0.25-1.0 are typical; 0.25 is below the
	// threshold of visual perception.
	defaultFlatness = 0.25

	// defaultMiterLimit is the default miter limit, matching
	// PDF/PostScript. This converts joins to bevels when the interior
	// angle is less than approximately 11.5 degrees.
	defaultMiterLimit = 10.0
)

// Numerical tolerances.
const (
	// horizontalEdgeThreshold is the minimum vertical extent for an
	// edge to produce crossings. Edges with |y1 - y0| below this
	// threshold are treated as horizontal and excluded.
	horizontalEdgeThreshold = 1e-10

	// zeroLengthThreshold is the minimum length for a stroke segment.
	// Segments shorter than this are skipped.
	zeroLengthThreshold = 1e-10

	// collinearityThreshold is used to detect nearly collinear
	// segments where no join is needed.
	collinearityThreshold = 1e-6

	// cuspCosineThreshold is the cosine threshold for detecting cusps
	// (path doubling back on itself). cos(179.43°) ≈ -0.9999
	cuspCosineThreshold = -0.9999
)
