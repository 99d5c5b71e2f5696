package ringblock

import (
	"fmt"
	"sort"
	"strings"

	"ScanMaster/internal/calc/geometry"
)

const (
	MinSegmentAngleDeg = 30.0
	MaxSegmentAngleDeg = 180.0
)

type GeometryValidation struct {
	IsValid    bool                `json:"is_valid"`
	Errors     []Warning           `json:"errors"`
	Calculated *CalculatedGeometry `json:"calculated_geometry,omitempty"`
}

// GeometryError is returned when a geometry cannot produce any block.
type GeometryError struct {
	Issues []Warning
}

func (e *GeometryError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.Message
	}
	return "invalid geometry: " + strings.Join(msgs, "; ")
}

// ValidateGeometry runs every structural check and collects all failures.
func ValidateGeometry(g Geometry) GeometryValidation {
	var errs []Warning
	if g.OuterDiameterMM <= g.InnerDiameterMM {
		errs = append(errs, Warning{
			Severity:   SeverityError,
			Code:       CodeODNotGreaterThanID,
			Message:    fmt.Sprintf("outer diameter %.2f mm must exceed inner diameter %.2f mm", g.OuterDiameterMM, g.InnerDiameterMM),
			Suggestion: "increase OD or reduce ID",
		})
	}
	if g.SegmentAngleDeg < MinSegmentAngleDeg || g.SegmentAngleDeg > MaxSegmentAngleDeg {
		errs = append(errs, Warning{
			Severity:   SeverityError,
			Code:       CodeSegmentAngleRange,
			Message:    fmt.Sprintf("segment angle %.1f° outside [%.0f°, %.0f°]", g.SegmentAngleDeg, MinSegmentAngleDeg, MaxSegmentAngleDeg),
			Suggestion: "choose a segment angle between 30° and 180°",
		})
	}
	if g.AxialWidthMM <= 0 {
		errs = append(errs, Warning{
			Severity:   SeverityError,
			Code:       CodeAxialWidthNotPositive,
			Message:    fmt.Sprintf("axial width %.2f mm must be positive", g.AxialWidthMM),
			Suggestion: "set a positive axial width",
		})
	}
	if g.EdgeMarginMM < 0 {
		errs = append(errs, Warning{
			Severity:   SeverityError,
			Code:       CodeEdgeMarginNegative,
			Message:    fmt.Sprintf("edge margin %.2f mm must not be negative", g.EdgeMarginMM),
			Suggestion: "use an edge margin of 0 mm or more",
		})
	}
	if g.MinHoleSpacingMM < 0 {
		errs = append(errs, Warning{
			Severity:   SeverityError,
			Code:       CodeHoleSpacingNegative,
			Message:    fmt.Sprintf("minimum hole spacing %.2f mm must not be negative", g.MinHoleSpacingMM),
			Suggestion: "use a hole spacing of 0 mm or more",
		})
	}

	res := GeometryValidation{IsValid: len(errs) == 0, Errors: errs}
	if res.IsValid {
		calc := Calculate(g)
		res.Calculated = &calc
	}
	return res
}

type PositionValidation struct {
	IsValid  bool      `json:"is_valid"`
	Errors   []Warning `json:"errors"`
	Warnings []Warning `json:"warnings"`
}

// ValidateHolePositions checks hole placement against the block edges and
// each other. Axial positions are measured from the start face. Margin and
// capacity violations are errors; tight spacing between neighbours is a
// warning.
func ValidateHolePositions(positions []CurvedHolePosition, features []HoleFeature, g Geometry) PositionValidation {
	calc := Calculate(g)
	angularMargin := geometry.AngleFromArcLength(calc.MeanRadiusMM, g.EdgeMarginMM)

	kind := make(map[string]Reflector, len(features))
	for _, f := range features {
		kind[f.Label] = f.Reflector
	}
	name := func(label string) string {
		if r, ok := kind[label]; ok {
			return fmt.Sprintf("%s hole %s", r, label)
		}
		return "hole " + label
	}

	var res PositionValidation
	for _, p := range positions {
		fromStart := p.AngleDeg
		fromEnd := g.SegmentAngleDeg - p.AngleDeg
		if fromStart < angularMargin || fromEnd < angularMargin {
			res.Errors = append(res.Errors, Warning{
				Severity: SeverityError,
				Code:     CodeHoleAngularMargin,
				Message: fmt.Sprintf("%s at %.1f° is closer than %.1f° to a segment end",
					name(p.Label), p.AngleDeg, angularMargin),
				Suggestion: "move the hole toward the middle of the arc or enlarge the segment angle",
			})
		}
		axialStart := p.AxialPositionMM
		axialEnd := g.AxialWidthMM - p.AxialPositionMM
		if axialStart < g.EdgeMarginMM || axialEnd < g.EdgeMarginMM {
			res.Errors = append(res.Errors, Warning{
				Severity: SeverityError,
				Code:     CodeHoleAxialMargin,
				Message: fmt.Sprintf("%s at axial %.1f mm is closer than %.1f mm to a face",
					name(p.Label), p.AxialPositionMM, g.EdgeMarginMM),
				Suggestion: "increase the axial width or move the hole toward mid-width",
			})
		}
	}

	sorted := append([]CurvedHolePosition(nil), positions...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].AngleDeg < sorted[j].AngleDeg })
	for i := 1; i < len(sorted); i++ {
		a, b := sorted[i-1], sorted[i]
		dist := geometry.ArcLength(calc.MeanRadiusMM, b.AngleDeg-a.AngleDeg)
		if dist < g.MinHoleSpacingMM {
			res.Warnings = append(res.Warnings, Warning{
				Severity: SeverityWarning,
				Code:     CodeHoleSpacingTight,
				Message: fmt.Sprintf("%s and %s are %.1f mm apart at mean radius, minimum %.1f mm",
					name(a.Label), name(b.Label), dist, g.MinHoleSpacingMM),
				Suggestion: "spread the holes or reduce the minimum spacing",
			})
		}
	}

	if n := len(positions); n > 0 {
		required := 2*g.EdgeMarginMM + float64(n-1)*g.MinHoleSpacingMM
		if required > calc.ArcLengthMM {
			res.Errors = append(res.Errors, Warning{
				Severity: SeverityError,
				Code:     CodeInsufficientArcLength,
				Message: fmt.Sprintf("%d holes need %.1f mm of arc, segment offers %.1f mm",
					n, required, calc.ArcLengthMM),
				Suggestion: "enlarge the segment angle or diameter, or use fewer holes",
			})
		}
	}

	res.IsValid = len(res.Errors) == 0
	return res
}
