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

import "image/color"

// RGBA is a non-premultiplied color with float64 components in [0, 1].
type RGBA struct {
	R, G, B, A float64
}

// Common colors.
var (
	Black       = RGBA{0, 0, 0, 1}
	White       = RGBA{1, 1, 1, 1}
	Transparent = RGBA{0, 0, 0, 0}
)

// NewRGBA converts a color.Color to an RGBA.
func NewRGBA(c color.Color) RGBA {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Transparent
	}
	// Un-premultiply.
	af := float64(a)
	return RGBA{
		R: float64(r) / af,
		G: float64(g) / af,
		B: float64(b) / af,
		A: af / 0xffff,
	}
}

// Lerp linearly interpolates between c and other. t=0 returns c, t=1
// returns other. t is not clamped.
func (c RGBA) Lerp(other RGBA, t float64) RGBA {
	return RGBA{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// valid reports whether all components are in [0, 1].
func (c RGBA) valid() bool {
	return c.R >= 0 && c.R <= 1 &&
		c.G >= 0 && c.G <= 1 &&
		c.B >= 0 && c.B <= 1 &&
		c.A >= 0 && c.A <= 1
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
