package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestRadii(t *testing.T) {
	assert.Equal(t, 80.0, WallThickness(400, 240))
	assert.Equal(t, 200.0, OuterRadius(400))
	assert.Equal(t, 120.0, InnerRadius(240))
	assert.Equal(t, 160.0, MeanRadius(400, 240))
}

func TestArcLengthRoundTrip(t *testing.T) {
	l := ArcLength(160, 120)
	assert.InDelta(t, 160*2*math.Pi/3, l, eps)
	assert.InDelta(t, 120, AngleFromArcLength(160, l), eps)
}

func TestAngleFromArcLengthDegenerateRadius(t *testing.T) {
	assert.Equal(t, 0.0, AngleFromArcLength(0, 10))
	assert.Equal(t, 0.0, AngleFromArcLength(-5, 10))
}

func TestPolarToCartesianOffset(t *testing.T) {
	c := Point2D{X: 100, Y: 100}
	tests := []struct {
		deg  float64
		want Point2D
	}{
		{0, Point2D{X: 100, Y: 50}},
		{90, Point2D{X: 150, Y: 100}},
		{180, Point2D{X: 100, Y: 150}},
		{270, Point2D{X: 50, Y: 100}},
	}
	for _, tt := range tests {
		got := PolarToCartesian(c, 50, tt.deg)
		assert.InDelta(t, tt.want.X, got.X, eps, "deg %v", tt.deg)
		assert.InDelta(t, tt.want.Y, got.Y, eps, "deg %v", tt.deg)
	}
}

func TestHolePosition3D(t *testing.T) {
	p := HolePosition3D(200, 15, 90, 40)
	assert.InDelta(t, 0, p.X, eps)
	assert.Equal(t, 40.0, p.Y)
	assert.InDelta(t, 185, p.Z, eps)

	p = HolePosition3D(200, 15, 0, 10)
	assert.InDelta(t, 185, p.X, eps)
	assert.InDelta(t, 0, p.Z, eps)
}

func TestSectionView(t *testing.T) {
	p := SectionView(80, 15, 40)
	assert.Equal(t, Point2D{X: 65, Y: 40}, p)
}

func TestArcFlags(t *testing.T) {
	tests := []struct {
		start, end       float64
		wantLarge, wantS int
	}{
		{0, 90, 0, 1},
		{0, 180, 0, 1},
		{0, 180.0001, 1, 1},
		{90, 0, 0, 0},
		{270, 0, 1, 0},
		{10, 10, 0, 0},
	}
	for _, tt := range tests {
		large, sweep := ArcFlags(tt.start, tt.end)
		assert.Equal(t, tt.wantLarge, large, "%v->%v", tt.start, tt.end)
		assert.Equal(t, tt.wantS, sweep, "%v->%v", tt.start, tt.end)
	}
}

func TestArcPath(t *testing.T) {
	got := ArcPath(Point2D{}, 10, 0, 90)
	assert.Equal(t, "M 0.000 -10.000 A 10.000 10.000 0 0 1 10.000 0.000", got)

	outline := SegmentOutlinePath(Point2D{}, 10, 5, 0, 90)
	assert.Contains(t, outline, " L 5.000 0.000")
	assert.Contains(t, outline, "A 5.000 5.000 0 0 0 0.000 -5.000 Z")
}

func TestSegmentBoundingBox(t *testing.T) {
	box := SegmentBoundingBox(Point2D{}, 10, 5, 0, 180)
	assert.InDelta(t, 0, box.Min.X, eps)
	assert.InDelta(t, 10, box.Max.X, eps)
	assert.InDelta(t, -10, box.Min.Y, eps)
	assert.InDelta(t, 10, box.Max.Y, eps)

	box = SegmentBoundingBox(Point2D{}, 10, 5, 30, 60)
	assert.Greater(t, box.Width(), 0.0)
	assert.Greater(t, box.Height(), 0.0)
}

func TestOptimalScale(t *testing.T) {
	box := BoundingBox{Max: Point2D{X: 100, Y: 50}}
	assert.InDelta(t, 1.8, OptimalScale(box, 200, 200, 10), eps)
	assert.Equal(t, 1.0, OptimalScale(BoundingBox{}, 200, 200, 10))
	assert.Equal(t, 1.0, OptimalScale(box, 10, 10, 10))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 1.98, Round2(1.984375))
	assert.Equal(t, 2.5, Round2(2.4999999))
	assert.Equal(t, 35.0, CeilToStep(31.25, 5))
	assert.Equal(t, 30.0, CeilToStep(30, 5))
	assert.InDelta(t, 0.3, CeilToStep(0.1+0.2, 0.1), 1e-12)
	assert.Equal(t, 7.0, CeilToStep(7, 0))
	assert.True(t, Equal(0.1+0.2, 0.3, 1e-12))
}
