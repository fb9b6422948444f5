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
	"fmt"
	"image"
	"image/color"
)

// Frame is a destination raster of non-premultiplied RGBA pixels stored
// in row-major float64 components. Rows are independent, so distinct
// rows may be written concurrently.
type Frame struct {
	Width  int
	Height int

	// Pix holds pixel components in R, G, B, A order, row-major.
	// Pixel (x, y) starts at Pix[(y*Width+x)*4].
	Pix []float64
}

// NewFrame allocates a frame of the given size, initialized to
// transparent black. Width and height must be positive.
func NewFrame(width, height int) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: frame size %dx%d", ErrInvalidSize, width, height)
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height*4),
	}, nil
}

// Clear sets every pixel to c.
func (f *Frame) Clear(c RGBA) {
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i+0] = c.R
		f.Pix[i+1] = c.G
		f.Pix[i+2] = c.B
		f.Pix[i+3] = c.A
	}
}

// Row returns the pixel components of row y, in R, G, B, A order.
func (f *Frame) Row(y int) []float64 {
	return f.Pix[y*f.Width*4 : (y+1)*f.Width*4]
}

// At returns the color of pixel (x, y).
func (f *Frame) At(x, y int) RGBA {
	i := (y*f.Width + x) * 4
	return RGBA{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

// SetPixel sets pixel (x, y) to c. Out-of-bounds coordinates are
// ignored.
func (f *Frame) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= f.Width || y < 0 || y >= f.Height {
		return
	}
	i := (y*f.Width + x) * 4
	f.Pix[i+0] = c.R
	f.Pix[i+1] = c.G
	f.Pix[i+2] = c.B
	f.Pix[i+3] = c.A
}

// Bounds returns the frame rectangle anchored at the origin.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Image converts the frame to an 8-bit image.NRGBA, clamping components
// to [0, 1] and rounding to the nearest level.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(f.Bounds())
	for y := 0; y < f.Height; y++ {
		src := f.Row(y)
		dst := img.Pix[y*img.Stride : y*img.Stride+f.Width*4]
		for x := 0; x < f.Width; x++ {
			for k := 0; k < 4; k++ {
				dst[x*4+k] = uint8(clamp01(src[x*4+k])*255 + 0.5)
			}
		}
	}
	return img
}

// ColorModel implements part of the image.Image contract for callers
// that wrap a Frame.
func (f *Frame) ColorModel() color.Model {
	return color.NRGBAModel
}
