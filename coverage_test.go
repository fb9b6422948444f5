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

	"seehuhn.de/go/geom/rect"

	"github.com/scanfill/scanfill/internal/pool"
)

func TestSquareCoverageExact(t *testing.T) {
	// A pixel-aligned square must give exactly 1.0 inside and exactly
	// 0.0 outside, for any sub-sample count.
	square := []Polygon{poly(true, 2, 2, 8, 2, 8, 8, 2, 8)}

	for _, subSamples := range []int{1, 2, 4, 5, 8} {
		f := NewFiller()
		f.SubSamples = subSamples
		m, err := f.Fill(square, Nonzero)
		if err != nil {
			t.Fatal(err)
		}
		if m == nil {
			t.Fatal("no coverage")
		}
		if m.OriginX != 2 || m.OriginY != 2 || m.Width != 6 || m.Height != 6 {
			t.Fatalf("subSamples=%d: map %d,%d %dx%d, want 2,2 6x6",
				subSamples, m.OriginX, m.OriginY, m.Width, m.Height)
		}
		for row := 0; row < m.Height; row++ {
			for col := 0; col < m.Width; col++ {
				if got := m.At(col, row); got != 1.0 {
					t.Fatalf("subSamples=%d: pixel (%d,%d) coverage %g, want exactly 1.0",
						subSamples, col, row, got)
				}
			}
		}
	}
}

func TestCoverageBounds(t *testing.T) {
	triangle := []Polygon{poly(true, 0, 0, 10, 0, 5, 10)}
	f := NewFiller()
	m, err := f.Fill(triangle, Nonzero)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range m.Values {
		if v < 0 || v > 1 {
			t.Fatalf("value %d out of range: %g", i, v)
		}
	}
}

func TestHalfPixelStrip(t *testing.T) {
	// A strip covering the left half of one pixel column.
	strip := []Polygon{poly(true, 0, 0, 0.5, 0, 0.5, 4, 0, 4)}
	f := NewFiller()
	m, err := f.Fill(strip, Nonzero)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 1 || m.Height != 4 {
		t.Fatalf("map %dx%d, want 1x4", m.Width, m.Height)
	}
	for row := 0; row < m.Height; row++ {
		if got := m.At(0, row); math.Abs(float64(got)-0.5) > 1e-6 {
			t.Errorf("row %d: coverage %g, want 0.5", row, got)
		}
	}
}

func TestTriangleCoverage(t *testing.T) {
	// Right triangle with a 45° hypotenuse: pixels on the diagonal are
	// half covered, analytically (2k+1)/(2n) per diagonal step with n
	// sub-samples.
	tri := []Polygon{poly(true, 0, 0, 8, 8, 0, 8)}
	f := NewFiller()
	f.SubSamples = 4
	m, err := f.Fill(tri, Nonzero)
	if err != nil {
		t.Fatal(err)
	}

	for row := 0; row < m.Height; row++ {
		for col := 0; col < m.Width; col++ {
			got := float64(m.At(col, row))
			var want float64
			switch {
			case col < row:
				want = 1
			case col == row:
				// Diagonal pixel: sub-samples at (s+0.5)/4 cover
				// x < y, averaging to 1/2.
				want = 0.5
			default:
				want = 0
			}
			if math.Abs(got-want) > 1e-6 {
				t.Errorf("pixel (%d,%d): coverage %g, want %g", col, row, got, want)
			}
		}
	}
}

func TestCoverageRow(t *testing.T) {
	dst := make([]float32, 10)

	// Identical spans in every sub-sample: interior exactly 1,
	// boundary pixels carry the exact fraction.
	spans := []Span{{1.25, 8.5}}
	CoverageRow(dst, 0, [][]Span{spans, spans, spans, spans})

	want := []float32{0, 0.75, 1, 1, 1, 1, 1, 1, 0.5, 0}
	for i := range want {
		if math.Abs(float64(dst[i]-want[i])) > 1e-6 {
			t.Errorf("pixel %d: %g, want %g", i, dst[i], want[i])
		}
	}
	if dst[2] != 1.0 {
		t.Error("interior pixel not exactly 1.0")
	}
	if dst[0] != 0.0 {
		t.Error("untouched pixel not exactly 0.0")
	}
}

func TestCoverageRowPartialSubSamples(t *testing.T) {
	dst := make([]float32, 4)

	// Span present in 1 of 4 sub-samples: quarter coverage.
	CoverageRow(dst, 0, [][]Span{
		{{0, 4}},
		nil,
		nil,
		nil,
	})
	for i, v := range dst {
		if math.Abs(float64(v)-0.25) > 1e-6 {
			t.Errorf("pixel %d: %g, want 0.25", i, v)
		}
	}
}

func TestCoverageRowOrigin(t *testing.T) {
	dst := make([]float32, 3)
	// Span [5, 8) with origin 5 fills all three pixels.
	CoverageRow(dst, 5, [][]Span{{{5, 8}}})
	for i, v := range dst {
		if v != 1.0 {
			t.Errorf("pixel %d: %g, want 1.0", i, v)
		}
	}
}

func TestFillerClip(t *testing.T) {
	square := []Polygon{poly(true, 0, 0, 10, 0, 10, 10, 0, 10)}
	f := NewFiller()
	f.Clip = rect.Rect{LLx: 2, LLy: 3, URx: 6, URy: 8}
	m, err := f.Fill(square, Nonzero)
	if err != nil {
		t.Fatal(err)
	}
	if m.OriginX != 2 || m.OriginY != 3 || m.Width != 4 || m.Height != 5 {
		t.Fatalf("map %d,%d %dx%d, want 2,3 4x5", m.OriginX, m.OriginY, m.Width, m.Height)
	}
}

func TestFillerEmptyGeometry(t *testing.T) {
	f := NewFiller()
	m, err := f.Fill(nil, Nonzero)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Errorf("got non-nil map for empty geometry")
	}
}

func TestFillerInvalidSubSamples(t *testing.T) {
	f := NewFiller()
	f.SubSamples = 0
	_, err := f.Fill([]Polygon{poly(true, 0, 0, 1, 0, 1, 1)}, Nonzero)
	if !errors.Is(err, ErrInvalidSubSamples) {
		t.Errorf("got %v, want ErrInvalidSubSamples", err)
	}
}

func TestFillerAllocator(t *testing.T) {
	square := []Polygon{poly(true, 0, 0, 4, 0, 4, 4, 0, 4)}
	f := NewFiller()
	f.Alloc = pool.NewFloat32Pool(4)

	m, err := f.Fill(square, Nonzero)
	if err != nil {
		t.Fatal(err)
	}
	f.Release(m)
	if got := f.Alloc.Len(16); got != 1 {
		t.Errorf("allocator holds %d buffers after Release, want 1", got)
	}

	// The next fill of the same size reuses the buffer, zeroed.
	m2, err := f.Fill(square, Nonzero)
	if err != nil {
		t.Fatal(err)
	}
	if m2.At(0, 0) != 1 {
		t.Errorf("recycled map coverage %g, want 1", m2.At(0, 0))
	}
}

func TestZeroWidthSpanNoCoverage(t *testing.T) {
	// The bowtie's waist produces a zero-width span; it contributes no
	// area but must not corrupt neighbouring coverage.
	bowtie := []Polygon{poly(true, 0, 0, 10, 0, 0, 10, 10, 10)}
	f := NewFiller()
	m, err := f.Fill(bowtie, OddEven)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range m.Values {
		if v < 0 || v > 1 {
			t.Fatalf("value %d out of range: %g", i, v)
		}
	}
}
