package standards

import (
	"fmt"
	"math"
)

const mmPerInch = 25.4

// FBHNumberToMM converts an FBH number (diameter in 1/64 in.) to millimetres.
func FBHNumberToMM(n int) float64 {
	return float64(n) * mmPerInch / 64
}

// MMToFBHNumber returns the nearest FBH number for a diameter in millimetres.
// The round trip through FBHNumberToMM is within 1/128 in.
func MMToFBHNumber(d float64) int {
	return int(math.Round(d * 64 / mmPerInch))
}

// MatchBucket returns the index of the bucket holding t. Buckets are
// half-open [min, max). When t lies outside every bucket the nearest one is
// returned and exact is false.
func MatchBucket(buckets []Bucket, t float64) (idx int, exact bool) {
	if len(buckets) == 0 {
		return -1, false
	}
	best, bestDist := 0, math.Inf(1)
	for i, b := range buckets {
		if b.Contains(t) {
			return i, true
		}
		d := b.MinMM - t
		if t >= b.MaxMM {
			d = t - b.MaxMM
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, false
}

type FBHSize struct {
	Standard       Standard `json:"standard"`
	Class          string   `json:"class"`
	Number         int      `json:"number"`
	DiameterMM     float64  `json:"diameter_mm"`
	BucketMinMM    float64  `json:"bucket_min_mm"`
	BucketMaxMM    float64  `json:"bucket_max_mm"`
	BucketFallback bool     `json:"bucket_fallback"`
	ClassFallback  bool     `json:"class_fallback"`
}

// FBHFor looks up the reference FBH for a section thickness and class.
// An unknown class falls back to the table's default class.
func FBHFor(std Standard, thicknessMM float64, class string) (FBHSize, error) {
	t, ok := tables[std]
	if !ok {
		return FBHSize{}, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}
	if thicknessMM <= 0 {
		return FBHSize{}, fmt.Errorf("thickness must be positive, got %.3f", thicknessMM)
	}
	out := FBHSize{Standard: std, Class: class}
	if !t.HasClass(class) {
		out.Class = t.DefaultClass
		out.ClassFallback = true
	}
	idx, exact := MatchBucket(t.Buckets, thicknessMM)
	b := t.Buckets[idx]
	out.BucketMinMM, out.BucketMaxMM = b.MinMM, b.MaxMM
	out.BucketFallback = !exact

	v := b.FBH[out.Class]
	switch t.Units {
	case UnitsInch64:
		out.Number = int(math.Round(v))
		out.DiameterMM = FBHNumberToMM(out.Number)
	case UnitsMM:
		out.DiameterMM = v
		out.Number = MMToFBHNumber(v)
	default:
		return FBHSize{}, fmt.Errorf("%s: unsupported units %q", std, t.Units)
	}
	return out, nil
}
