package blockspec

import (
	"fmt"
	"math"

	"ScanMaster/internal/calc/geometry"
	"ScanMaster/internal/standards"
)

type NotchLocation string

const (
	NotchOD NotchLocation = "od"
	NotchID NotchLocation = "id"
)

type NotchOrientation string

const (
	NotchAxial           NotchOrientation = "axial"
	NotchCircumferential NotchOrientation = "circumferential"
)

type Notch struct {
	Location     NotchLocation    `json:"location"`
	Orientation  NotchOrientation `json:"orientation"`
	DepthMM      float64          `json:"depth_mm"`
	DepthPercent float64          `json:"depth_percent"`
	LengthMM     float64          `json:"length_mm"`
	WidthMM      float64          `json:"width_mm"`
	AngleDeg     float64          `json:"angle_deg"`
}

// CalculateNotches returns the OD-axial, OD-circumferential, ID-axial and
// ID-circumferential reference notches for a tube wall.
func CalculateNotches(std standards.Standard, wallMM float64) ([]Notch, error) {
	if wallMM <= 0 {
		return nil, fmt.Errorf("wall thickness must be positive, got %.3f", wallMM)
	}
	rule, err := standards.NotchRuleFor(std)
	if err != nil {
		return nil, err
	}
	depth := wallMM * rule.DepthPercent / 100
	depth = geometry.Round2(math.Min(math.Max(depth, rule.MinDepthMM), rule.MaxDepthMM))

	out := make([]Notch, 0, 4)
	for _, loc := range []NotchLocation{NotchOD, NotchID} {
		for _, o := range []NotchOrientation{NotchAxial, NotchCircumferential} {
			out = append(out, Notch{
				Location:     loc,
				Orientation:  o,
				DepthMM:      depth,
				DepthPercent: geometry.Round2(depth / wallMM * 100),
				LengthMM:     rule.LengthMM,
				WidthMM:      rule.WidthMM,
				AngleDeg:     rule.AngleDeg,
			})
		}
	}
	return out, nil
}
