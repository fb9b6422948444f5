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

package text

import (
	"errors"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/vec"

	"github.com/scanfill/scanfill"
)

func testFace(t *testing.T, size float64) *Face {
	t.Helper()
	face, err := NewFace(goregular.TTF, size)
	if err != nil {
		t.Fatal(err)
	}
	return face
}

func TestNewFaceValidation(t *testing.T) {
	if _, err := NewFace(goregular.TTF, 0); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("zero size: got %v, want ErrInvalidFace", err)
	}
	if _, err := NewFace([]byte("not a font"), 16); !errors.Is(err, ErrInvalidFace) {
		t.Errorf("bad data: got %v, want ErrInvalidFace", err)
	}
}

func TestFaceIdentity(t *testing.T) {
	a := testFace(t, 16)
	b := testFace(t, 16)
	if a.id == b.id {
		t.Error("two faces share an identity")
	}
}

func TestShaperBasic(t *testing.T) {
	face := testFace(t, 32)
	s := NewShaper()

	glyphs := s.Shape("Hello", face)
	if len(glyphs) != 5 {
		t.Fatalf("got %d glyphs, want 5", len(glyphs))
	}
	for i, g := range glyphs {
		if g.GID == 0 {
			t.Errorf("glyph %d: missing glyph (GID 0)", i)
		}
		if g.XAdvance <= 0 {
			t.Errorf("glyph %d: advance %g, want > 0", i, g.XAdvance)
		}
		if i > 0 && g.X <= glyphs[i-1].X {
			t.Errorf("glyph %d: pen position %g did not advance past %g", i, g.X, glyphs[i-1].X)
		}
	}
}

func TestShaperEmpty(t *testing.T) {
	face := testFace(t, 32)
	s := NewShaper()
	if got := s.Shape("", face); got != nil {
		t.Errorf("empty string shaped to %d glyphs", len(got))
	}
	if got := s.Shape("x", nil); got != nil {
		t.Errorf("nil face shaped to %d glyphs", len(got))
	}
}

func TestShaperNormalizes(t *testing.T) {
	face := testFace(t, 32)
	s := NewShaper()

	// "é" precomposed vs decomposed must shape identically after NFC.
	composed := s.Shape("é", face)
	decomposed := s.Shape("é", face)
	if len(composed) != len(decomposed) {
		t.Fatalf("composed %d glyphs, decomposed %d", len(composed), len(decomposed))
	}
	for i := range composed {
		if composed[i].GID != decomposed[i].GID {
			t.Errorf("glyph %d: GID %d != %d", i, composed[i].GID, decomposed[i].GID)
		}
	}
}

func TestGlyphPath(t *testing.T) {
	face := testFace(t, 32)
	s := NewShaper()
	glyphs := s.Shape("H", face)
	if len(glyphs) != 1 {
		t.Fatal("shaping failed")
	}

	p, err := face.GlyphPath(sfnt.GlyphIndex(glyphs[0].GID), vec.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Cmds) == 0 {
		t.Fatal("H has no outline")
	}

	// Glyph outlines sit above the baseline: y coordinates negative in
	// y-down device space.
	for _, pt := range p.Coords {
		if pt.Y > 1 {
			t.Fatalf("outline point %v below baseline", pt)
		}
	}
}

func TestDrawString(t *testing.T) {
	frame, err := scanfill.NewFrame(200, 60)
	if err != nil {
		t.Fatal(err)
	}
	c := scanfill.NewCompositor(2)
	defer c.Close()

	brush, err := scanfill.NewSolid(scanfill.Black)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(testFace(t, 32), brush)

	advance, err := r.DrawString(c, frame, "Hello", vec.Vec2{X: 10, Y: 45})
	if err != nil {
		t.Fatal(err)
	}
	if advance <= 0 {
		t.Errorf("advance %g, want > 0", advance)
	}

	// Some pixels must have been painted, all inside the frame.
	painted := 0
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			if frame.At(x, y).A > 0 {
				painted++
			}
		}
	}
	if painted == 0 {
		t.Fatal("DrawString painted nothing")
	}
}

func TestDrawStringEmpty(t *testing.T) {
	frame, err := scanfill.NewFrame(10, 10)
	if err != nil {
		t.Fatal(err)
	}
	c := scanfill.NewCompositor(1)
	defer c.Close()

	brush, err := scanfill.NewSolid(scanfill.Black)
	if err != nil {
		t.Fatal(err)
	}
	r := NewRenderer(testFace(t, 12), brush)

	advance, err := r.DrawString(c, frame, "", vec.Vec2{})
	if err != nil {
		t.Fatal(err)
	}
	if advance != 0 {
		t.Errorf("advance %g for empty string", advance)
	}
}

func TestDrawStringDeterministic(t *testing.T) {
	// Two identical draws produce identical frames.
	render := func() *scanfill.Frame {
		frame, err := scanfill.NewFrame(120, 40)
		if err != nil {
			t.Fatal(err)
		}
		c := scanfill.NewCompositor(4)
		defer c.Close()
		brush, err := scanfill.NewSolid(scanfill.Black)
		if err != nil {
			t.Fatal(err)
		}
		r := NewRenderer(testFace(t, 20), brush)
		if _, err := r.DrawString(c, frame, "aaa bbb", vec.Vec2{X: 4, Y: 30}); err != nil {
			t.Fatal(err)
		}
		return frame
	}

	a := render()
	b := render()
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("frames differ at component %d", i)
		}
	}
}
