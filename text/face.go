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

// Package text renders shaped text through the scanfill pipeline.
//
// A [Face] combines parsed font data with a size. The [Shaper] turns
// strings into positioned glyphs, and a [Renderer] rasterizes the
// glyph outlines into coverage maps (cached per glyph and sub-pixel
// position) and composites them onto a frame.
package text

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Sentinel errors of the text layer.
var (
	// ErrInvalidFace indicates font data that cannot be parsed or a
	// non-positive size.
	ErrInvalidFace = errors.New("invalid face")

	// ErrClosed indicates use of a render cache after Close.
	ErrClosed = errors.New("already closed")
)

// faceIDs issues unique face identities for cache keys.
var faceIDs atomic.Uint64

// Face is a font at a fixed size in device pixels. The sfnt side
// provides glyph outlines; the typesetting side provides HarfBuzz
// shaping.
//
// A Face is safe for concurrent use.
type Face struct {
	id   uint64
	size float64 // pixels per em

	sfnt *sfnt.Font
	font *gtfont.Font // read-only, safe for concurrent use

	mu  sync.Mutex
	buf sfnt.Buffer
}

// NewFace parses TTF/OTF font data at the given size in pixels per em.
func NewFace(data []byte, size float64) (*Face, error) {
	if !(size > 0) {
		return nil, fmt.Errorf("%w: size %g", ErrInvalidFace, size)
	}
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFace, err)
	}
	gt, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFace, err)
	}
	return &Face{
		id:   faceIDs.Add(1),
		size: size,
		sfnt: sf,
		font: gt.Font,
	}, nil
}

// Size returns the face size in pixels per em.
func (f *Face) Size() float64 {
	return f.size
}

// ppem returns the face size in 26.6 fixed point.
func (f *Face) ppem() fixed.Int26_6 {
	return fixed.Int26_6(f.size * 64)
}

// GlyphPath loads the outline of gid at the face size, translated by
// offset. Coordinates are in device space with y growing downward, as
// sfnt delivers them. Glyphs without an outline (e.g. space) return an
// empty path.
func (f *Face) GlyphPath(gid sfnt.GlyphIndex, offset vec.Vec2) (*path.Data, error) {
	f.mu.Lock()
	segments, err := f.sfnt.LoadGlyph(&f.buf, gid, f.ppem(), nil)
	f.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("glyph %d: %w", gid, err)
	}

	p := &path.Data{}
	pt := func(a fixed.Point26_6) vec.Vec2 {
		return vec.Vec2{
			X: float64(a.X)/64 + offset.X,
			Y: float64(a.Y)/64 + offset.Y,
		}
	}
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Cmds = append(p.Cmds, path.CmdClose)
			}
			p.Cmds = append(p.Cmds, path.CmdMoveTo)
			p.Coords = append(p.Coords, pt(seg.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			p.Cmds = append(p.Cmds, path.CmdLineTo)
			p.Coords = append(p.Coords, pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p.Cmds = append(p.Cmds, path.CmdQuadTo)
			p.Coords = append(p.Coords, pt(seg.Args[0]), pt(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			p.Cmds = append(p.Cmds, path.CmdCubeTo)
			p.Coords = append(p.Coords, pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2]))
		}
	}
	if open {
		p.Cmds = append(p.Cmds, path.CmdClose)
	}
	return p, nil
}
