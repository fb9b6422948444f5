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

// Package scanfill converts vector path geometry into per-pixel color
// contributions on a raster image.
//
// The pipeline has four stages. A [Flattener] turns paths into polygons
// in device space. A [Scanner] intersects polygons with horizontal scan
// rows, producing sorted crossings and inside spans under a fill
// [Rule]. A [Filler] accumulates spans over several vertical
// sub-samples per row into a [CoverageMap] of anti-aliased coverage
// values. Finally a [Compositor] blends one coverage map per drawing
// [Op] onto a destination [Frame] through a [Brush], in deterministic
// pass order.
//
// Stroked lines are handled by [Pen], which expands a path into outline
// polygons (joins, caps, dash pattern) that feed the same fill
// pipeline. Text rendering on top of this core lives in the text
// subpackage.
package scanfill
