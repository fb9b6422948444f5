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
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// ShapedGlyph is one glyph of a shaped run, positioned relative to the
// run origin in device pixels.
type ShapedGlyph struct {
	GID     uint16
	Cluster int // rune index in the input text

	X, Y     float64 // pen position including shaping offsets
	XAdvance float64
}

// Shaper turns strings into positioned glyph runs using HarfBuzz
// shaping. Ligatures, kerning and script-specific forms are applied by
// the shaping engine.
//
// A Shaper is safe for concurrent use; the underlying HarfBuzz shapers
// are pooled because they carry mutable state.
type Shaper struct {
	pool sync.Pool // *shaping.HarfbuzzShaper
}

// NewShaper returns a ready-to-use Shaper.
func NewShaper() *Shaper {
	return &Shaper{
		pool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape shapes s (left to right) with the given face. The input is NFC
// normalized first, so decomposed sequences shape like their composed
// equivalents.
func (s *Shaper) Shape(text string, face *Face) []ShapedGlyph {
	if text == "" || face == nil {
		return nil
	}
	runes := []rune(norm.NFC.String(text))

	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(face.font),
		Size:      fixed.Int26_6(face.size * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.pool.Put(hb)

	glyphs := make([]ShapedGlyph, len(output.Glyphs))
	var x float64
	for i, g := range output.Glyphs {
		adv := fixedToFloat(g.XAdvance)
		glyphs[i] = ShapedGlyph{
			GID:     uint16(g.GlyphID),
			Cluster: g.ClusterIndex,
			X:       x + fixedToFloat(g.XOffset),
			// Shaping offsets are y-up; device space is y-down.
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return glyphs
}

// detectScript returns the script of the first non-space rune, falling
// back to Latin. Mixed-script text should be split into runs before
// shaping.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch r {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
