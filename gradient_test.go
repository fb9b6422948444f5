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
	"errors"
	"math"
	"testing"

	"seehuhn.de/go/geom/vec"
)

func blackToWhite(t *testing.T, extend ExtendMode) *LinearGradient {
	t.Helper()
	g, err := NewLinearGradient(
		vec.Vec2{X: 0}, vec.Vec2{X: 10},
		[]ColorStop{
			{Offset: 0, Color: Black},
			{Offset: 1, Color: White},
		},
		extend,
	)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestLinearGradientColorAt(t *testing.T) {
	g := blackToWhite(t, ExtendPad)
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{1, 1},
		{-1, 0}, // pad
		{2, 1},  // pad
	}
	for _, tt := range tests {
		got := g.colorAt(tt.t)
		if math.Abs(got.R-tt.want) > 1e-9 {
			t.Errorf("colorAt(%g).R = %g, want %g", tt.t, got.R, tt.want)
		}
	}
}

func TestLinearGradientExtendModes(t *testing.T) {
	repeat := blackToWhite(t, ExtendRepeat)
	if got := repeat.colorAt(1.25); math.Abs(got.R-0.25) > 1e-9 {
		t.Errorf("repeat colorAt(1.25).R = %g, want 0.25", got.R)
	}

	reflect := blackToWhite(t, ExtendReflect)
	if got := reflect.colorAt(1.25); math.Abs(got.R-0.75) > 1e-9 {
		t.Errorf("reflect colorAt(1.25).R = %g, want 0.75", got.R)
	}
	if got := reflect.colorAt(-0.25); math.Abs(got.R-0.25) > 1e-9 {
		t.Errorf("reflect colorAt(-0.25).R = %g, want 0.25", got.R)
	}
}

func TestLinearGradientApply(t *testing.T) {
	frame := mustFrame(t, 10, 1)
	g := blackToWhite(t, ExtendPad)

	ap, err := g.Applicator(frame, frame.Bounds(), 1)
	if err != nil {
		t.Fatal(err)
	}
	cov := make([]float32, 10)
	for i := range cov {
		cov[i] = 1
	}
	ap.Apply(cov, 0, 0)
	if err := ap.Close(); err != nil {
		t.Fatal(err)
	}

	// Sampled at pixel centers: pixel x sits at t=(x+0.5)/10.
	for x := 0; x < 10; x++ {
		want := (float64(x) + 0.5) / 10
		if got := frame.At(x, 0).R; math.Abs(got-want) > 1e-9 {
			t.Errorf("pixel %d: R=%g, want %g", x, got, want)
		}
	}
}

func TestLinearGradientValidation(t *testing.T) {
	stops := []ColorStop{{Offset: 0, Color: Black}, {Offset: 1, Color: White}}

	tests := []struct {
		name  string
		start vec.Vec2
		end   vec.Vec2
		stops []ColorStop
	}{
		{"no stops", vec.Vec2{}, vec.Vec2{X: 1}, nil},
		{"unsorted", vec.Vec2{}, vec.Vec2{X: 1}, []ColorStop{
			{Offset: 0.8, Color: Black}, {Offset: 0.2, Color: White},
		}},
		{"offset out of range", vec.Vec2{}, vec.Vec2{X: 1}, []ColorStop{
			{Offset: 1.5, Color: Black},
		}},
		{"degenerate axis", vec.Vec2{X: 3, Y: 3}, vec.Vec2{X: 3, Y: 3}, stops},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLinearGradient(tt.start, tt.end, tt.stops, ExtendPad)
			if !errors.Is(err, ErrInvalidGradient) {
				t.Errorf("got %v, want ErrInvalidGradient", err)
			}
		})
	}
}
