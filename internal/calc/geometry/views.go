package geometry

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ArcFlags returns the SVG large-arc and sweep flags for an arc running from
// startDeg to endDeg.
func ArcFlags(startDeg, endDeg float64) (largeArc, sweep int) {
	span := endDeg - startDeg
	if math.Abs(span) > 180 {
		largeArc = 1
	}
	if span > 0 {
		sweep = 1
	}
	return largeArc, sweep
}

// ArcPath returns an SVG path that moves to the start of the arc and draws it.
func ArcPath(center Point2D, r, startDeg, endDeg float64) string {
	start := PolarToCartesian(center, r, startDeg)
	end := PolarToCartesian(center, r, endDeg)
	large, sweep := ArcFlags(startDeg, endDeg)
	return fmt.Sprintf("M %.3f %.3f A %.3f %.3f 0 %d %d %.3f %.3f",
		start.X, start.Y, r, r, large, sweep, end.X, end.Y)
}

// SegmentOutlinePath draws the closed outline of a ring segment: outer arc,
// radial end face, inner arc back, closing end face.
func SegmentOutlinePath(center Point2D, outerR, innerR, startDeg, endDeg float64) string {
	var b strings.Builder
	b.WriteString(ArcPath(center, outerR, startDeg, endDeg))

	innerEnd := PolarToCartesian(center, innerR, endDeg)
	innerStart := PolarToCartesian(center, innerR, startDeg)
	large, sweep := ArcFlags(endDeg, startDeg)
	fmt.Fprintf(&b, " L %.3f %.3f", innerEnd.X, innerEnd.Y)
	fmt.Fprintf(&b, " A %.3f %.3f 0 %d %d %.3f %.3f", innerR, innerR, large, sweep, innerStart.X, innerStart.Y)
	b.WriteString(" Z")
	return b.String()
}

type BoundingBox struct {
	Min Point2D `json:"min"`
	Max Point2D `json:"max"`
}

func (b BoundingBox) Width() float64  { return b.Max.X - b.Min.X }
func (b BoundingBox) Height() float64 { return b.Max.Y - b.Min.Y }

// SegmentBoundingBox returns the plan-view bounding box of a ring segment.
// Besides the four corners, every axis crossing inside the angular range
// contributes an extreme point on the outer arc.
func SegmentBoundingBox(center Point2D, outerR, innerR, startDeg, endDeg float64) BoundingBox {
	if endDeg < startDeg {
		startDeg, endDeg = endDeg, startDeg
	}
	pts := []Point2D{
		PolarToCartesian(center, outerR, startDeg),
		PolarToCartesian(center, outerR, endDeg),
		PolarToCartesian(center, innerR, startDeg),
		PolarToCartesian(center, innerR, endDeg),
	}
	for k := math.Ceil(startDeg / 90); k*90 <= endDeg; k++ {
		pts = append(pts, PolarToCartesian(center, outerR, k*90))
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i], ys[i] = p.X, p.Y
	}
	return BoundingBox{
		Min: Point2D{X: floats.Min(xs), Y: floats.Min(ys)},
		Max: Point2D{X: floats.Max(xs), Y: floats.Max(ys)},
	}
}

// OptimalScale returns the largest uniform scale that fits box into a
// viewport of viewW x viewH with padding on every side. Degenerate inputs
// give 1.
func OptimalScale(box BoundingBox, viewW, viewH, padding float64) float64 {
	availW := viewW - 2*padding
	availH := viewH - 2*padding
	w, h := box.Width(), box.Height()
	if w <= 0 || h <= 0 || availW <= 0 || availH <= 0 {
		return 1
	}
	return math.Min(availW/w, availH/h)
}
