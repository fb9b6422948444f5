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
	"math"

	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"
)

// penSegment is one polygon edge with precomputed orientation.
type penSegment struct {
	a, b vec.Vec2
	tan  vec.Vec2 // unit tangent (a→b)
	nor  vec.Vec2 // unit normal, 90° CCW from tan
}

// Pen expands polygons into stroke outline polygons. The outlines are
// filled under the Nonzero rule by the regular fill pipeline, which
// paints overlapping dash pieces and joins exactly once.
//
// A Pen is not safe for concurrent use.
type Pen struct {
	// Width is the stroke width in device units. Must be positive.
	Width float64

	// Cap is the line cap style for open ends and dash pieces.
	Cap graphics.LineCapStyle

	// Join is the corner style where two segments meet.
	Join graphics.LineJoinStyle

	// MiterLimit converts long miters to bevels. Must be >= 1.
	MiterLimit float64

	// Dash is the on/off pattern in device units; empty means solid.
	// Entries must be non-negative and not all zero.
	Dash []float64

	// DashPhase is the offset into the dash pattern at the start of
	// each polygon.
	DashPhase float64

	// Flatness is the tolerance for round caps and joins, in device
	// units.
	Flatness float64

	// Reusable buffers.
	segs     []penSegment
	dashSegs []penSegment
	dashOffs []int
	pts      []vec.Vec2
	offsets  []int
	out      []Polygon
}

// NewPen returns a pen with the given width, butt caps, miter joins and
// no dash pattern.
func NewPen(width float64) (*Pen, error) {
	p := &Pen{
		Width:      width,
		Cap:        graphics.LineCapButt,
		Join:       graphics.LineJoinMiter,
		MiterLimit: defaultMiterLimit,
		Flatness:   defaultFlatness,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Pen) validate() error {
	if !(p.Width > 0) {
		return fmt.Errorf("%w: width %g", ErrInvalidPen, p.Width)
	}
	if p.MiterLimit < 1 {
		return fmt.Errorf("%w: miter limit %g", ErrInvalidPen, p.MiterLimit)
	}
	if !(p.Flatness > 0) {
		return fmt.Errorf("%w: flatness %g", ErrInvalidPen, p.Flatness)
	}
	if len(p.Dash) > 0 {
		total := 0.0
		for i, d := range p.Dash {
			if d < 0 {
				return fmt.Errorf("%w: dash entry %d is %g", ErrInvalidPen, i, d)
			}
			total += d
		}
		if total <= 0 {
			return fmt.Errorf("%w: all dash entries are zero", ErrInvalidPen)
		}
	}
	return nil
}

// Outline expands the polygons into closed stroke outline polygons.
// The result is valid until the next call on the same Pen.
func (p *Pen) Outline(polys []Polygon) ([]Polygon, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	p.pts = p.pts[:0]
	p.offsets = p.offsets[:0]
	p.out = p.out[:0]

	for _, poly := range polys {
		p.segs = p.segs[:0]
		n := len(poly.Points)
		for i := 1; i < n; i++ {
			p.addSegment(poly.Points[i-1], poly.Points[i])
		}
		if poly.Closed && n >= 2 && poly.Points[n-1] != poly.Points[0] {
			p.addSegment(poly.Points[n-1], poly.Points[0])
		}

		if len(p.segs) == 0 {
			// Degenerate subpath: a round cap paints a dot, other caps
			// paint nothing.
			if n >= 1 && p.Cap == graphics.LineCapRound {
				start := len(p.pts)
				p.addArc(poly.Points[0], p.Width/2, vec.Vec2{X: 1}, 2*math.Pi, true)
				p.offsets = append(p.offsets, start)
			}
			continue
		}

		if len(p.Dash) > 0 {
			p.outlineDashed(poly.Closed)
		} else {
			p.outlineSolid(p.segs, poly.Closed)
		}
	}

	// Slice the point buffer into polygons.
	for i, start := range p.offsets {
		end := len(p.pts)
		if i+1 < len(p.offsets) {
			end = p.offsets[i+1]
		}
		if end-start < 3 {
			continue
		}
		p.out = append(p.out, Polygon{
			Points: p.pts[start:end:end],
			Closed: true,
		})
	}
	return p.out, nil
}

func (p *Pen) addSegment(a, b vec.Vec2) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		return
	}
	t := d.Mul(1 / length)
	p.segs = append(p.segs, penSegment{
		a: a, b: b,
		tan: t,
		nor: vec.Vec2{X: -t.Y, Y: t.X},
	})
}

// outlineSolid builds one outline polygon for a run of segments:
// forward pass along the +normal side, then backward along the -normal
// side, with caps at open ends and joins at corners.
func (p *Pen) outlineSolid(segs []penSegment, closed bool) {
	start := len(p.pts)
	if closed {
		p.outlineClosed(segs)
	} else {
		p.outlineOpen(segs)
	}
	if len(p.pts)-start >= 3 {
		p.offsets = append(p.offsets, start)
	} else {
		p.pts = p.pts[:start]
	}
}

func (p *Pen) outlineOpen(segs []penSegment) {
	d := p.Width / 2
	first := &segs[0]
	last := &segs[len(segs)-1]

	p.addCap(first.a, first.tan.Mul(-1), d)

	skipA := false
	for i := range segs {
		seg := &segs[i]
		if !skipA {
			p.pts = append(p.pts, seg.a.Add(seg.nor.Mul(d)))
		}
		skipA = false
		if i < len(segs)-1 {
			next := &segs[i+1]
			sinTheta := cross(seg.tan, next.tan)
			if math.Abs(sinTheta) < collinearityThreshold {
				p.pts = append(p.pts, seg.b.Add(seg.nor.Mul(d)))
			} else if sinTheta > 0 {
				skipA = p.addInnerCorner(seg.b, seg.tan, next.tan, seg.nor, next.nor, d, true)
			} else {
				p.pts = append(p.pts, seg.b.Add(seg.nor.Mul(d)))
				p.addJoin(seg.b, seg.tan, next.tan, d, true)
			}
		} else {
			p.pts = append(p.pts, seg.b.Add(seg.nor.Mul(d)))
		}
	}

	p.addCap(last.b, last.tan, d)

	skipB := false
	for i := len(segs) - 1; i >= 0; i-- {
		seg := &segs[i]
		if !skipB {
			p.pts = append(p.pts, seg.b.Sub(seg.nor.Mul(d)))
		}
		skipB = false
		if i > 0 {
			prev := &segs[i-1]
			sinTheta := cross(prev.tan, seg.tan)
			if math.Abs(sinTheta) < collinearityThreshold {
				p.pts = append(p.pts, seg.a.Sub(seg.nor.Mul(d)))
			} else if sinTheta > 0 {
				p.pts = append(p.pts, seg.a.Sub(seg.nor.Mul(d)))
				p.addJoin(seg.a, prev.tan, seg.tan, d, false)
			} else {
				skipB = p.addInnerCorner(seg.a, prev.tan, seg.tan, prev.nor, seg.nor, d, false)
			}
		} else {
			p.pts = append(p.pts, seg.a.Sub(seg.nor.Mul(d)))
		}
	}
}

func (p *Pen) outlineClosed(segs []penSegment) {
	d := p.Width / 2
	first := &segs[0]
	last := &segs[len(segs)-1]
	sinClose := cross(last.tan, first.tan)

	// Forward pass on the +normal side, including the closing corner.
	p.pts = append(p.pts, first.a.Add(first.nor.Mul(d)))
	for i := range segs {
		seg := &segs[i]
		var nxt *penSegment
		if i < len(segs)-1 {
			nxt = &segs[i+1]
		} else {
			nxt = first
		}
		sinTheta := cross(seg.tan, nxt.tan)
		if math.Abs(sinTheta) < collinearityThreshold {
			p.pts = append(p.pts, seg.b.Add(seg.nor.Mul(d)))
			p.pts = append(p.pts, nxt.a.Add(nxt.nor.Mul(d)))
		} else if sinTheta > 0 {
			p.addInnerCorner(seg.b, seg.tan, nxt.tan, seg.nor, nxt.nor, d, true)
		} else {
			p.pts = append(p.pts, seg.b.Add(seg.nor.Mul(d)))
			p.addJoin(seg.b, seg.tan, nxt.tan, d, true)
			p.pts = append(p.pts, nxt.a.Add(nxt.nor.Mul(d)))
		}
	}

	// Backward pass on the -normal side, closing corner first.
	if math.Abs(sinClose) < collinearityThreshold {
		p.pts = append(p.pts, first.a.Sub(first.nor.Mul(d)))
		p.pts = append(p.pts, last.b.Sub(last.nor.Mul(d)))
	} else if sinClose > 0 {
		p.pts = append(p.pts, first.a.Sub(first.nor.Mul(d)))
		p.addJoin(first.a, last.tan, first.tan, d, false)
		p.pts = append(p.pts, last.b.Sub(last.nor.Mul(d)))
	} else {
		p.addInnerCorner(first.a, last.tan, first.tan, last.nor, first.nor, d, false)
	}

	for i := len(segs) - 1; i >= 0; i-- {
		seg := &segs[i]
		if i > 0 {
			prev := &segs[i-1]
			sinTheta := cross(prev.tan, seg.tan)
			if math.Abs(sinTheta) < collinearityThreshold {
				p.pts = append(p.pts, seg.a.Sub(seg.nor.Mul(d)))
				p.pts = append(p.pts, prev.b.Sub(prev.nor.Mul(d)))
			} else if sinTheta > 0 {
				p.pts = append(p.pts, seg.a.Sub(seg.nor.Mul(d)))
				p.addJoin(seg.a, prev.tan, seg.tan, d, false)
				p.pts = append(p.pts, prev.b.Sub(prev.nor.Mul(d)))
			} else {
				p.addInnerCorner(seg.a, prev.tan, seg.tan, prev.nor, seg.nor, d, false)
			}
		} else {
			p.pts = append(p.pts, seg.a.Sub(seg.nor.Mul(d)))
		}
	}
}

func cross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// addCap appends a line cap at point pt. outward is the unit direction
// pointing away from the stroked line.
func (p *Pen) addCap(pt, outward vec.Vec2, d float64) {
	n := vec.Vec2{X: -outward.Y, Y: outward.X}

	switch p.Cap {
	case graphics.LineCapButt:
		// The two offset points are already connected directly.

	case graphics.LineCapSquare:
		ext := pt.Add(outward.Mul(d))
		p.pts = append(p.pts, ext.Add(n.Mul(d)), ext.Sub(n.Mul(d)))

	case graphics.LineCapRound:
		// Semicircle from +n through outward to -n.
		p.addArc(pt, d, n, -math.Pi, true)
	}
}

// innerIntersection returns where the two inner offset lines of a
// corner meet. ok is false for nearly collinear segments.
func innerIntersection(pt, t1, t2 vec.Vec2, d float64, positiveSide bool) (vec.Vec2, bool) {
	cosTheta := t1.Dot(t2)
	if cosTheta > 1-1e-9 {
		return vec.Vec2{}, false
	}
	// cos(θ/2) = sqrt((1 + cosθ) / 2)
	halfCos := math.Sqrt((1 + cosTheta) / 2)
	if halfCos < 1e-9 {
		return vec.Vec2{}, false
	}

	n1 := vec.Vec2{X: -t1.Y, Y: t1.X}
	n2 := vec.Vec2{X: -t2.Y, Y: t2.X}
	inner := n1.Add(n2)
	if !positiveSide {
		inner = inner.Mul(-1)
	}
	length := inner.Length()
	if length < 1e-9 {
		return vec.Vec2{}, false
	}
	return pt.Add(inner.Mul(d / (halfCos * length))), true
}

// addInnerCorner handles the inner side of a corner: a single
// intersection point when one exists, both offset points otherwise.
// Reports whether the next segment's offset start should be skipped.
func (p *Pen) addInnerCorner(pt, t1, t2, n1, n2 vec.Vec2, d float64, positiveSide bool) bool {
	if inner, ok := innerIntersection(pt, t1, t2, d, positiveSide); ok {
		p.pts = append(p.pts, inner)
		return true
	}
	if positiveSide {
		p.pts = append(p.pts, pt.Add(n1.Mul(d)), pt.Add(n2.Mul(d)))
	} else {
		p.pts = append(p.pts, pt.Sub(n1.Mul(d)), pt.Sub(n2.Mul(d)))
	}
	return false
}

// addJoin appends join geometry on the outer side of a corner where the
// tangent turns from t1 to t2.
func (p *Pen) addJoin(pt, t1, t2 vec.Vec2, d float64, positiveSide bool) {
	cosTheta := t1.Dot(t2)
	sinTheta := cross(t1, t2)
	if math.Abs(sinTheta) < collinearityThreshold {
		return
	}

	// A cusp (path doubling back) gets two caps instead of a join.
	if cosTheta < cuspCosineThreshold {
		p.addCap(pt, t1, d)
		p.addCap(pt, t2.Mul(-1), d)
		return
	}

	switch p.Join {
	case graphics.LineJoinMiter:
		// miterLength/width = 1/sin(φ/2) where φ is the interior angle;
		// sin(φ/2) = cos(θ/2) = sqrt((1 + cosθ)/2).
		sinHalf := math.Sqrt((1 + cosTheta) / 2)
		const miterEpsilon = 1e-10
		if sinHalf > 0 && 1/sinHalf <= p.MiterLimit+miterEpsilon {
			n1 := vec.Vec2{X: -t1.Y, Y: t1.X}
			n2 := vec.Vec2{X: -t2.Y, Y: t2.X}
			bisector := n1.Add(n2)
			if !positiveSide {
				bisector = bisector.Mul(-1)
			}
			length := bisector.Length()
			if length > zeroLengthThreshold {
				p.pts = append(p.pts, pt.Add(bisector.Mul(d/(sinHalf*length))))
			}
			return
		}
		fallthrough

	case graphics.LineJoinBevel:
		// The two offset points already connect directly.
		return

	case graphics.LineJoinRound:
		angle := math.Acos(max(-1, min(1, cosTheta)))
		if positiveSide {
			n1 := vec.Vec2{X: -t1.Y, Y: t1.X}
			if sinTheta > 0 {
				p.addArc(pt, d, n1, angle, false)
			} else {
				p.addArc(pt, d, n1, -angle, false)
			}
		} else {
			n2 := vec.Vec2{X: t2.Y, Y: -t2.X}
			if sinTheta > 0 {
				p.addArc(pt, d, n2, -angle, false)
			} else {
				p.addArc(pt, d, n2, angle, false)
			}
		}
	}
}

// addArc appends arc vertices around center. startDir is the unit
// vector from center to the arc start; sweep is in radians, positive
// CCW.
func (p *Pen) addArc(center vec.Vec2, radius float64, startDir vec.Vec2, sweep float64, includeStart bool) {
	if radius < p.Flatness {
		if includeStart {
			p.pts = append(p.pts, center.Add(startDir.Mul(radius)))
		}
		p.pts = append(p.pts, center.Add(rotate(startDir, sweep).Mul(radius)))
		return
	}

	// Chord sagitta r*(1-cos(θ/2)) bounded by the flatness tolerance.
	step := 2 * math.Acos(1-p.Flatness/radius)
	if step <= 0 || math.IsNaN(step) {
		step = math.Pi / 4
	}
	n := max(int(math.Ceil(math.Abs(sweep)/step)), 1)

	dt := sweep / float64(n)
	i0 := 1
	if includeStart {
		i0 = 0
	}
	for i := i0; i <= n; i++ {
		dir := rotate(startDir, float64(i)*dt)
		p.pts = append(p.pts, center.Add(dir.Mul(radius)))
	}
}

func rotate(v vec.Vec2, angle float64) vec.Vec2 {
	sin, cos := math.Sincos(angle)
	return vec.Vec2{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// addDot appends a filled square for a zero-length dash piece with
// square caps, oriented by the tangent.
func (p *Pen) addDot(center, tan vec.Vec2, d float64) {
	n := vec.Vec2{X: -tan.Y, Y: tan.X}
	p.pts = append(p.pts,
		center.Add(tan.Mul(d)).Add(n.Mul(d)),
		center.Add(tan.Mul(d)).Sub(n.Mul(d)),
		center.Sub(tan.Mul(d)).Sub(n.Mul(d)),
		center.Sub(tan.Mul(d)).Add(n.Mul(d)),
	)
}

// outlineDashed splits p.segs into dash pieces and outlines each one as
// an open subpath. On closed paths a dash covering both the start and
// the end of the path is merged into one piece, so no artificial caps
// appear at the start point.
func (p *Pen) outlineDashed(closed bool) {
	p.splitDashes(closed)

	for i, start := range p.dashOffs {
		end := len(p.dashSegs)
		if i+1 < len(p.dashOffs) {
			end = p.dashOffs[i+1]
		}
		segs := p.dashSegs[start:end]
		if len(segs) == 0 {
			continue
		}

		if len(segs) == 1 && segs[0].a == segs[0].b {
			// Zero-length dash piece: a dot with round or square caps.
			seg := &segs[0]
			polyStart := len(p.pts)
			switch p.Cap {
			case graphics.LineCapRound:
				p.addArc(seg.a, p.Width/2, vec.Vec2{X: 1}, 2*math.Pi, true)
				p.offsets = append(p.offsets, polyStart)
			case graphics.LineCapSquare:
				p.addDot(seg.a, seg.tan, p.Width/2)
				p.offsets = append(p.offsets, polyStart)
			}
			continue
		}

		p.outlineSolid(segs, false)
	}
}

// splitDashes cuts p.segs into p.dashSegs runs according to the dash
// pattern and phase.
func (p *Pen) splitDashes(closed bool) {
	p.dashSegs = p.dashSegs[:0]
	p.dashOffs = p.dashOffs[:0]

	dash := p.Dash
	dashLen := len(dash)

	patternLen := 0.0
	for _, d := range dash {
		patternLen += d
	}
	if dashLen%2 == 1 {
		// Odd patterns alternate on/off across two repetitions.
		patternLen *= 2
	}
	if patternLen <= 0 {
		return
	}

	phase := math.Mod(p.DashPhase, patternLen)
	if phase < 0 {
		phase += patternLen
	}

	// Locate the starting pattern element.
	dashIdx := 0
	dist := phase
	for dist >= dash[dashIdx%dashLen] && dash[dashIdx%dashLen] > 0 {
		dist -= dash[dashIdx%dashLen]
		dashIdx++
	}
	remaining := dash[dashIdx%dashLen] - dist
	isOn := dashIdx%2 == 0

	// A zero-length "on" element at the path start becomes a dot.
	if isOn && remaining == 0 {
		seg := p.segs[0]
		p.dashOffs = append(p.dashOffs, len(p.dashSegs))
		p.dashSegs = append(p.dashSegs, penSegment{a: seg.a, b: seg.a, tan: seg.tan, nor: seg.nor})
		dashIdx++
		remaining = dash[dashIdx%dashLen]
		isOn = dashIdx%2 == 0
	}

	startedOn := isOn
	firstStart, firstEnd := -1, -1

	pieceStart := len(p.dashSegs)
	segIdx := 0
	segDist := 0.0

	for segIdx < len(p.segs) {
		seg := p.segs[segIdx]
		segLen := seg.b.Sub(seg.a).Length()
		segRemaining := segLen - segDist

		if remaining >= segRemaining {
			// The current pattern element covers the rest of this segment.
			if isOn {
				if segDist > 0 {
					t := segDist / segLen
					from := seg.a.Add(seg.b.Sub(seg.a).Mul(t))
					p.dashSegs = append(p.dashSegs, penSegment{a: from, b: seg.b, tan: seg.tan, nor: seg.nor})
				} else {
					p.dashSegs = append(p.dashSegs, seg)
				}
			}
			remaining -= segRemaining
			segIdx++
			segDist = 0
			continue
		}

		// The element ends inside this segment.
		endDist := segDist + remaining
		cut := seg.a.Add(seg.b.Sub(seg.a).Mul(endDist / segLen))

		if isOn {
			from := seg.a.Add(seg.b.Sub(seg.a).Mul(segDist / segLen))
			d := cut.Sub(from)
			dLen := d.Length()
			if dLen > zeroLengthThreshold {
				t := d.Mul(1 / dLen)
				p.dashSegs = append(p.dashSegs, penSegment{
					a: from, b: cut,
					tan: t,
					nor: vec.Vec2{X: -t.Y, Y: t.X},
				})
			} else if len(p.dashSegs) == pieceStart {
				// Zero-length dash keeps the underlying tangent so caps
				// can be oriented.
				p.dashSegs = append(p.dashSegs, penSegment{a: from, b: from, tan: seg.tan, nor: seg.nor})
			}

			if firstStart < 0 && len(p.dashSegs) > pieceStart {
				firstStart, firstEnd = pieceStart, len(p.dashSegs)
			}
			if len(p.dashSegs) > pieceStart {
				p.dashOffs = append(p.dashOffs, pieceStart)
				pieceStart = len(p.dashSegs)
			}
		}

		segDist = endDist
		dashIdx++
		remaining = dash[dashIdx%dashLen]
		isOn = dashIdx%2 == 0
	}

	if len(p.dashSegs) > pieceStart {
		if closed && startedOn && isOn && firstStart >= 0 {
			// Merge the trailing dash with the leading one.
			for i := firstStart; i < firstEnd; i++ {
				p.dashSegs = append(p.dashSegs, p.dashSegs[i])
			}
			if len(p.dashOffs) > 0 && p.dashOffs[0] == firstStart {
				p.dashOffs = p.dashOffs[1:]
			}
		}
		p.dashOffs = append(p.dashOffs, pieceStart)
	}
}
