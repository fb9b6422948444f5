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
	"sort"

	"seehuhn.de/go/geom/vec"
)

// Rule selects how crossings are reduced to inside spans.
type Rule int

const (
	// Nonzero fills where the winding number is non-zero.
	Nonzero Rule = iota

	// OddEven fills where the crossing count is odd.
	OddEven
)

func (r Rule) String() string {
	switch r {
	case Nonzero:
		return "nonzero"
	case OddEven:
		return "oddeven"
	default:
		return "unknown"
	}
}

// edge is a non-horizontal polygon segment, normalized so that
// yMin < yMax. An edge contributes a crossing to every scan row y with
// yMin <= y < yMax; the half-open range keeps shared vertices from
// being counted twice.
type edge struct {
	yMin, yMax float64
	x          float64 // x at yMin
	dxdy       float64
	winding    int // +1 if the segment points downward (y increasing), -1 otherwise
}

// Crossing is an intersection of an edge with a scan row.
type Crossing struct {
	X       float64
	Winding int
}

// Span is a maximal inside interval [X0, X1] on a scan row. X0 == X1 is
// a valid zero-width span, produced where coincident crossings cancel,
// e.g. at the waist of a self-intersecting path.
type Span struct {
	X0, X1 float64
}

// Scanner intersects a fixed set of polygons with horizontal scan rows.
// Load geometry once with SetPolygons, then query any number of rows.
// Internal buffers are reused across calls; results are valid until the
// next call on the same Scanner.
//
// A Scanner is not safe for concurrent use; create one per goroutine.
type Scanner struct {
	edges []edge

	// Bounds of the loaded geometry (device space). Empty when no
	// non-horizontal edges are loaded.
	yMin, yMax float64
	xMin, xMax float64

	crossings []Crossing
	spans     []Span
}

// NewScanner returns an empty Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// SetPolygons replaces the scanner's geometry. Closed polygons get an
// implicit closing segment; open polygons are closed the same way, so
// that every loaded polygon contributes a well-defined interior.
// Horizontal segments are excluded at load time.
func (s *Scanner) SetPolygons(polys []Polygon) {
	s.edges = s.edges[:0]
	s.yMin, s.yMax = math.Inf(1), math.Inf(-1)
	s.xMin, s.xMax = math.Inf(1), math.Inf(-1)

	for _, poly := range polys {
		n := len(poly.Points)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			p0 := poly.Points[i]
			p1 := poly.Points[(i+1)%n]
			if i == n-1 && !needsClosing(poly) {
				break
			}
			s.addEdge(p0, p1)
		}
	}
}

// needsClosing reports whether the implicit closing segment of poly
// carries any geometry. A polygon whose last point equals its first
// needs no extra segment.
func needsClosing(poly Polygon) bool {
	first := poly.Points[0]
	last := poly.Points[len(poly.Points)-1]
	return first != last
}

func (s *Scanner) addEdge(p0, p1 vec.Vec2) {
	if math.Abs(p1.Y-p0.Y) < horizontalEdgeThreshold {
		return // horizontal, contributes no crossings
	}

	winding := 1
	if p0.Y > p1.Y {
		winding = -1
		p0, p1 = p1, p0
	}

	dxdy := (p1.X - p0.X) / (p1.Y - p0.Y)
	s.edges = append(s.edges, edge{
		yMin:    p0.Y,
		yMax:    p1.Y,
		x:       p0.X,
		dxdy:    dxdy,
		winding: winding,
	})

	s.yMin = min(s.yMin, p0.Y)
	s.yMax = max(s.yMax, p1.Y)
	s.xMin = min(s.xMin, p0.X, p1.X)
	s.xMax = max(s.xMax, p0.X, p1.X)
}

// Bounds returns the y- and x-extent of the loaded geometry. ok is
// false when the scanner holds no edges.
func (s *Scanner) Bounds() (yMin, yMax, xMin, xMax float64, ok bool) {
	if len(s.edges) == 0 {
		return 0, 0, 0, 0, false
	}
	return s.yMin, s.yMax, s.xMin, s.xMax, true
}

// CrossingsAt returns the crossings of row y, sorted by X in ascending
// order. Crossings with equal X are all retained, in load order. The
// result is valid until the next call.
func (s *Scanner) CrossingsAt(y float64) []Crossing {
	s.crossings = s.crossings[:0]
	for i := range s.edges {
		e := &s.edges[i]
		if y < e.yMin || y >= e.yMax {
			continue
		}
		s.crossings = append(s.crossings, Crossing{
			X:       e.x + (y-e.yMin)*e.dxdy,
			Winding: e.winding,
		})
	}
	sort.SliceStable(s.crossings, func(i, j int) bool {
		return s.crossings[i].X < s.crossings[j].X
	})
	return s.crossings
}

// SpansAt returns the inside spans of row y under the given rule,
// sorted by X0 and non-overlapping. Zero-width spans are included. The
// result is valid until the next call.
func (s *Scanner) SpansAt(y float64, rule Rule) []Span {
	crossings := s.CrossingsAt(y)
	s.spans = s.spans[:0]

	switch rule {
	case Nonzero:
		acc := 0
		var openX float64
		for _, c := range crossings {
			prev := acc
			acc += c.Winding
			if prev == 0 && acc != 0 {
				openX = c.X
			} else if prev != 0 && acc == 0 {
				s.spans = append(s.spans, Span{X0: openX, X1: c.X})
			}
		}

	case OddEven:
		inside := false
		var openX float64
		for _, c := range crossings {
			if !inside {
				openX = c.X
				inside = true
			} else {
				s.spans = append(s.spans, Span{X0: openX, X1: c.X})
				inside = false
			}
		}
	}

	return s.spans
}
