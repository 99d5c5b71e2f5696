// Package geometry provides the closed-form math behind ring-segment
// calibration blocks: radii, arc lengths, polar and 3D hole coordinates and
// the 2D view projections used by downstream renderers.
//
// All functions are pure. Angles are in degrees, lengths in millimetres.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Point2D is a point in a drawing view. Y increases downward.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3D is a point in block coordinates: X/Z span the ring plane, Y runs
// along the ring axis.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func DegToRad(deg float64) float64 { return deg * math.Pi / 180 }

func RadToDeg(rad float64) float64 { return rad * 180 / math.Pi }

// WallThickness returns (OD - ID) / 2.
func WallThickness(od, id float64) float64 {
	return (od - id) / 2
}

func OuterRadius(od float64) float64 { return od / 2 }

func InnerRadius(id float64) float64 { return id / 2 }

// MeanRadius is the midpoint between the outer and inner radius.
func MeanRadius(od, id float64) float64 {
	return (OuterRadius(od) + InnerRadius(id)) / 2
}

// ArcLength returns the arc length subtended by angleDeg at radius r.
func ArcLength(r, angleDeg float64) float64 {
	return r * DegToRad(angleDeg)
}

// AngleFromArcLength converts an arc length at radius r back to degrees.
// A non-positive radius yields 0.
func AngleFromArcLength(r, length float64) float64 {
	if r <= 0 {
		return 0
	}
	return RadToDeg(length / r)
}

// PolarToCartesian places angleDeg on a circle around center. 0° is the
// arc's start face and angles grow counter-clockwise; the -90° offset puts
// 0° at the top of a Y-down drawing.
func PolarToCartesian(center Point2D, r, angleDeg float64) Point2D {
	rad := DegToRad(angleDeg - 90)
	return Point2D{
		X: center.X + r*math.Cos(rad),
		Y: center.Y + r*math.Sin(rad),
	}
}

// PointOnCylinder returns the 3D point at radius r, angle and axial position.
func PointOnCylinder(r, angleDeg, axialPos float64) Point3D {
	theta := DegToRad(angleDeg)
	return Point3D{
		X: r * math.Cos(theta),
		Y: axialPos,
		Z: r * math.Sin(theta),
	}
}

// HolePosition3D locates the bottom of a hole drilled depth mm in from the
// outer surface.
func HolePosition3D(outerRadius, depth, angleDeg, axialPos float64) Point3D {
	return PointOnCylinder(outerRadius-depth, angleDeg, axialPos)
}

// TopView projects a hole onto the plan view of the ring.
func TopView(center Point2D, radiusAtHole, angleDeg float64) Point2D {
	return PolarToCartesian(center, radiusAtHole, angleDeg)
}

// SectionView maps a hole onto the radial section: X is the distance from
// the ID surface, Y the axial position.
func SectionView(wallThickness, depth, axialPos float64) Point2D {
	return Point2D{X: wallThickness - depth, Y: axialPos}
}

// Round rounds x to prec decimal places, half away from zero.
func Round(x float64, prec int) float64 {
	return scalar.Round(x, prec)
}

// Round2 rounds to two decimals.
func Round2(x float64) float64 { return scalar.Round(x, 2) }

// CeilToStep rounds x up to the next multiple of step. Values within 1e-9
// of a multiple stay on it.
func CeilToStep(x, step float64) float64 {
	if step <= 0 {
		return x
	}
	return math.Ceil(x/step-1e-9) * step
}

// Equal compares two lengths or angles within tol.
func Equal(a, b, tol float64) bool {
	return scalar.EqualWithinAbs(a, b, tol)
}
