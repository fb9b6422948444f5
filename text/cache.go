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
	"golang.org/x/image/math/fixed"

	"github.com/scanfill/scanfill"
)

// subPixelBuckets is the number of horizontal sub-pixel positions a
// glyph can be rasterized at. Four buckets (0, 1/4, 1/2, 3/4) balance
// quality against cache size.
const subPixelBuckets = 4

// quantize splits a horizontal pen position into an integer pixel and a
// sub-pixel bucket. The returned offset is the bucket's fractional
// position, the value actually rasterized.
func quantize(x float64) (pixel int, bucket uint8, offset float64) {
	floor := int(fixedFloor(x))
	frac := x - float64(floor)
	b := uint8(frac * subPixelBuckets)
	if b >= subPixelBuckets {
		b = subPixelBuckets - 1
	}
	return floor, b, float64(b) / subPixelBuckets
}

func fixedFloor(x float64) float64 {
	f := float64(int(x))
	if x < 0 && x != f {
		f--
	}
	return f
}

// cacheKey identifies one rasterized glyph image.
type cacheKey struct {
	faceID uint64
	size   fixed.Int26_6
	gid    uint16
	subX   uint8
}

// RenderCache holds rasterized glyph coverage for the duration of one
// drawing call. Repeated glyphs at the same sub-pixel position reuse
// the cached coverage instead of re-rasterizing. The cache is discarded
// with Close when the call finishes.
//
// A RenderCache is not safe for concurrent use.
type RenderCache struct {
	entries map[cacheKey]*scanfill.CoverageMap
	closed  bool

	hits, misses int
}

// NewRenderCache returns an empty cache.
func NewRenderCache() *RenderCache {
	return &RenderCache{
		entries: make(map[cacheKey]*scanfill.CoverageMap),
	}
}

// get returns the cached coverage for key. A stored nil (a glyph with
// no pixels) still counts as a hit.
func (c *RenderCache) get(key cacheKey) (*scanfill.CoverageMap, bool) {
	m, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return m, ok
}

// put stores coverage for key. Nil maps (glyphs covering no pixels,
// e.g. space) are stored too, so they are not re-rasterized.
func (c *RenderCache) put(key cacheKey, m *scanfill.CoverageMap) {
	c.entries[key] = m
}

// Stats reports cache hits and misses since creation.
func (c *RenderCache) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Len returns the number of cached glyph images.
func (c *RenderCache) Len() int {
	return len(c.entries)
}

// Close drops all cached coverage. Using the cache afterwards returns
// ErrClosed from the renderer.
func (c *RenderCache) Close() error {
	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.entries = nil
	return nil
}
