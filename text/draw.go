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
	"math"

	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/vec"

	"github.com/scanfill/scanfill"
)

// Renderer draws shaped strings onto frames. Glyph outlines are
// rasterized at most once per (face, size, glyph, sub-pixel position)
// within a drawing call; the per-call RenderCache deduplicates repeated
// glyphs.
//
// A Renderer is not safe for concurrent use.
type Renderer struct {
	Face  *Face
	Brush scanfill.Brush

	// SubSamples is passed to the glyph rasterizer. Zero means the
	// fill default.
	SubSamples int

	shaper    *Shaper
	flattener *scanfill.Flattener
	filler    *scanfill.Filler
	ops       []scanfill.Op
}

// NewRenderer returns a renderer drawing with the given face and brush.
func NewRenderer(face *Face, brush scanfill.Brush) *Renderer {
	return &Renderer{
		Face:      face,
		Brush:     brush,
		shaper:    NewShaper(),
		flattener: scanfill.NewFlattener(),
		filler:    scanfill.NewFiller(),
	}
}

// DrawString shapes s and composites its glyphs onto frame with the pen
// starting at origin (the text baseline, y growing downward). All
// glyphs of the call share one compositor pass, so they blend in stable
// glyph order. Returns the advance width of the shaped run.
func (r *Renderer) DrawString(c *scanfill.Compositor, frame *scanfill.Frame, s string, origin vec.Vec2) (float64, error) {
	glyphs := r.shaper.Shape(s, r.Face)
	if len(glyphs) == 0 {
		return 0, nil
	}

	cache := NewRenderCache()
	defer cache.Close()

	if r.SubSamples > 0 {
		r.filler.SubSamples = r.SubSamples
	}

	r.ops = r.ops[:0]
	var advance float64
	for _, g := range glyphs {
		advance += g.XAdvance

		penX := origin.X + g.X
		penY := origin.Y + g.Y
		pixelX, bucket, subX := quantize(penX)
		pixelY := int(math.Round(penY))

		key := cacheKey{
			faceID: r.Face.id,
			size:   r.Face.ppem(),
			gid:    g.GID,
			subX:   bucket,
		}
		cov, ok := cache.get(key)
		if !ok {
			var err error
			cov, err = r.rasterizeGlyph(g.GID, subX)
			if err != nil {
				return 0, err
			}
			cache.put(key, cov)
		}
		if cov == nil {
			continue
		}

		// The cached map is anchored at the glyph origin; place a copy
		// at the pen position. The coverage values are shared.
		placed := *cov
		placed.OriginX += pixelX
		placed.OriginY += pixelY
		r.ops = append(r.ops, scanfill.Op{
			Brush:    r.Brush,
			Coverage: &placed,
		})
	}

	if err := c.Composite(r.ops, frame, frame.Bounds()); err != nil {
		return 0, err
	}

	hits, misses := cache.Stats()
	scanfill.Logger().Debug("drew string",
		"glyphs", len(glyphs), "cacheHits", hits, "cacheMisses", misses)
	return advance, nil
}

// rasterizeGlyph builds the coverage map for one glyph at a sub-pixel
// x offset, anchored at the glyph origin.
func (r *Renderer) rasterizeGlyph(gid uint16, subX float64) (*scanfill.CoverageMap, error) {
	p, err := r.Face.GlyphPath(sfnt.GlyphIndex(gid), vec.Vec2{X: subX})
	if err != nil {
		return nil, err
	}
	if len(p.Cmds) == 0 {
		return nil, nil
	}
	polys := r.flattener.Flatten(p)
	return r.filler.Fill(polys, scanfill.Nonzero)
}
