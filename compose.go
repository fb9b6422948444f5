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
	"sort"

	"github.com/scanfill/scanfill/internal/parallel"
)

// Op is one drawing operation: a coverage map painted through a brush.
// Ops with lower Pass composite first; ops of equal pass composite in
// submission order.
type Op struct {
	Brush    Brush
	Coverage *CoverageMap
	Pass     int
}

// Compositor blends drawing operations onto frames. Operations are
// applied strictly one after another in pass order; within one
// operation, frame rows are processed in parallel.
type Compositor struct {
	// Opacity in [0, 1] scales every operation's coverage.
	Opacity float64

	pool *parallel.WorkerPool

	// order is scratch for pass sorting, reused across calls.
	order []int
}

// NewCompositor creates a compositor with its own worker pool. workers
// of 0 or less uses GOMAXPROCS workers.
func NewCompositor(workers int) *Compositor {
	return &Compositor{
		Opacity: 1,
		pool:    parallel.NewWorkerPool(workers),
	}
}

// Close stops the compositor's workers. The compositor remains usable,
// processing rows on the calling goroutine.
func (c *Compositor) Close() {
	c.pool.Close()
}

// Composite applies ops to frame, restricted to the target rectangle.
// Coverage outside target or outside the frame is ignored; an op whose
// coverage map misses the target entirely is skipped without touching
// its brush.
func (c *Compositor) Composite(ops []Op, frame *Frame, target image.Rectangle) error {
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidOpacity, c.Opacity)
	}
	target = target.Intersect(frame.Bounds())
	if target.Empty() {
		return nil
	}

	// Stable pass order: sort indices, not ops, so equal-pass ops keep
	// submission order.
	c.order = c.order[:0]
	for i := range ops {
		c.order = append(c.order, i)
	}
	sort.SliceStable(c.order, func(a, b int) bool {
		return ops[c.order[a]].Pass < ops[c.order[b]].Pass
	})

	for _, idx := range c.order {
		op := &ops[idx]
		if err := c.compositeOne(op, frame, target); err != nil {
			return fmt.Errorf("op %d (pass %d): %w", idx, op.Pass, err)
		}
	}
	return nil
}

func (c *Compositor) compositeOne(op *Op, frame *Frame, target image.Rectangle) error {
	cov := op.Coverage
	if cov == nil || cov.Width == 0 || cov.Height == 0 {
		return nil
	}

	covRect := image.Rect(cov.OriginX, cov.OriginY,
		cov.OriginX+cov.Width, cov.OriginY+cov.Height)
	region := covRect.Intersect(target)
	if region.Empty() {
		return nil
	}

	ap, err := op.Brush.Applicator(frame, region, c.Opacity)
	if err != nil {
		return err
	}

	// Offsets into the coverage map for the clipped region. Both are
	// non-negative after the intersection above, covering maps whose
	// origin lies left of or above the target.
	colStart := region.Min.X - cov.OriginX
	rowStart := region.Min.Y - cov.OriginY
	width := region.Dx()

	tasks := make([]func(), region.Dy())
	for i := range tasks {
		row := rowStart + i
		y := region.Min.Y + i
		tasks[i] = func() {
			coverage := cov.Row(row)[colStart : colStart+width]
			ap.Apply(coverage, region.Min.X, y)
		}
	}
	c.pool.ExecuteAll(tasks)

	return ap.Close()
}
