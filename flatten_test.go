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
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

func TestFlattenLines(t *testing.T) {
	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 0}).
		LineTo(vec.Vec2{X: 10, Y: 10}).
		Close()

	fl := NewFlattener()
	polys := fl.Flatten(p)

	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	if !polys[0].Closed {
		t.Error("closed subpath flattened to open polygon")
	}
	want := []vec.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	if len(polys[0].Points) != len(want) {
		t.Fatalf("got %d points, want %d", len(polys[0].Points), len(want))
	}
	for i, pt := range polys[0].Points {
		if pt != want[i] {
			t.Errorf("point %d: got %v, want %v", i, pt, want[i])
		}
	}
}

func TestFlattenMultipleSubpaths(t *testing.T) {
	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: 0, Y: 0}).
		LineTo(vec.Vec2{X: 5, Y: 0}).
		Close().
		MoveTo(vec.Vec2{X: 10, Y: 10}).
		LineTo(vec.Vec2{X: 20, Y: 10})

	fl := NewFlattener()
	polys := fl.Flatten(p)

	if len(polys) != 2 {
		t.Fatalf("got %d polygons, want 2", len(polys))
	}
	if !polys[0].Closed || polys[1].Closed {
		t.Errorf("closed flags: got %v/%v, want true/false", polys[0].Closed, polys[1].Closed)
	}
}

func TestFlattenQuadraticTolerance(t *testing.T) {
	// Every point of the flattened curve must lie within Flatness of
	// the true curve; check against dense evaluation.
	p0 := vec.Vec2{X: 0, Y: 0}
	p1 := vec.Vec2{X: 50, Y: 100}
	p2 := vec.Vec2{X: 100, Y: 0}

	p := (&path.Data{}).MoveTo(p0).QuadTo(p1, p2)

	fl := NewFlattener()
	polys := fl.Flatten(p)
	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	pts := polys[0].Points
	if len(pts) < 3 {
		t.Fatalf("curve flattened to only %d points", len(pts))
	}
	if pts[0] != p0 || pts[len(pts)-1] != p2 {
		t.Errorf("endpoints %v, %v not preserved", pts[0], pts[len(pts)-1])
	}

	// Maximum distance from each chord midpoint to the curve.
	for i := 1; i < len(pts); i++ {
		mid := pts[i-1].Add(pts[i]).Mul(0.5)
		best := math.Inf(1)
		for s := 0.0; s <= 1.0; s += 1e-3 {
			omt := 1 - s
			c := p0.Mul(omt * omt).Add(p1.Mul(2 * omt * s)).Add(p2.Mul(s * s))
			best = min(best, c.Sub(mid).Length())
		}
		if best > fl.Flatness+1e-6 {
			t.Errorf("chord %d deviates %g from curve, tolerance %g", i, best, fl.Flatness)
		}
	}
}

func TestFlattenCubic(t *testing.T) {
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		CubeTo(vec.Vec2{X: 0, Y: 60}, vec.Vec2{X: 100, Y: 60}, vec.Vec2{X: 100, Y: 0}).
		Close()
	fl := NewFlattener()
	polys := fl.Flatten(p)
	if len(polys) != 1 {
		t.Fatalf("got %d polygons, want 1", len(polys))
	}
	pts := polys[0].Points
	if len(pts) < 4 {
		t.Fatalf("cubic flattened to only %d points", len(pts))
	}
	// The curve's apex is at y=45; the polygon must come close to it.
	maxY := 0.0
	for _, pt := range pts {
		maxY = max(maxY, pt.Y)
	}
	if math.Abs(maxY-45) > 1 {
		t.Errorf("apex y=%g, want about 45", maxY)
	}
}

func TestFlattenCTM(t *testing.T) {
	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: 1, Y: 2}).LineTo(vec.Vec2{X: 3, Y: 4})

	fl := NewFlattener()
	fl.CTM = matrix.Matrix{2, 0, 0, 2, 10, 20} // scale by 2, translate

	polys := fl.Flatten(p)
	want := []vec.Vec2{{X: 12, Y: 24}, {X: 16, Y: 28}}
	for i, pt := range polys[0].Points {
		if pt != want[i] {
			t.Errorf("point %d: got %v, want %v", i, pt, want[i])
		}
	}
}

func TestFlattenCTMScalesTolerance(t *testing.T) {
	// Under a magnifying CTM the same curve must be flattened into more
	// segments, since tolerance is measured in device space.
	p := (&path.Data{}).
		MoveTo(vec.Vec2{X: 0, Y: 0}).
		QuadTo(vec.Vec2{X: 50, Y: 100}, vec.Vec2{X: 100, Y: 0})

	fl := NewFlattener()
	plain := len(fl.Flatten(p)[0].Points)

	fl.CTM = matrix.Matrix{8, 0, 0, 8, 0, 0}
	scaled := len(fl.Flatten(p)[0].Points)

	if scaled <= plain {
		t.Errorf("8x CTM produced %d points, unscaled %d; want more under magnification",
			scaled, plain)
	}
}

func TestFlattenDegenerate(t *testing.T) {
	// A lone MoveTo yields a single-point polygon; an empty path none.
	p := &path.Data{}
	p.MoveTo(vec.Vec2{X: 5, Y: 5})

	fl := NewFlattener()
	polys := fl.Flatten(p)
	if len(polys) != 1 || len(polys[0].Points) != 1 {
		t.Fatalf("lone MoveTo: got %v", polys)
	}

	if polys = fl.Flatten(&path.Data{}); len(polys) != 0 {
		t.Errorf("empty path: got %d polygons, want 0", len(polys))
	}
}
