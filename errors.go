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

import "errors"

// Sentinel errors returned by constructors and pipeline stages. All
// returned errors wrap one of these, so callers can match with
// errors.Is.
var (
	// ErrInvalidSize indicates a non-positive frame or region size.
	ErrInvalidSize = errors.New("invalid size")

	// ErrInvalidColor indicates a color component outside [0, 1].
	ErrInvalidColor = errors.New("invalid color")

	// ErrInvalidTile indicates a pattern tile that is empty or not
	// rectangular.
	ErrInvalidTile = errors.New("invalid pattern tile")

	// ErrInvalidGradient indicates gradient stops that are empty, out
	// of range, or not sorted by offset.
	ErrInvalidGradient = errors.New("invalid gradient")

	// ErrInvalidPen indicates a non-positive stroke width, a negative
	// dash entry, or an all-zero dash pattern.
	ErrInvalidPen = errors.New("invalid pen")

	// ErrInvalidSubSamples indicates a non-positive sub-sample count.
	ErrInvalidSubSamples = errors.New("invalid sub-sample count")

	// ErrInvalidOpacity indicates an opacity value outside [0, 1].
	ErrInvalidOpacity = errors.New("invalid opacity")

	// ErrClosed indicates use of an applicator or cache after Close.
	ErrClosed = errors.New("already closed")
)
