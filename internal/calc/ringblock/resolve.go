package ringblock

import (
	"fmt"
	"sort"
	"strings"

	"ScanMaster/internal/calc/geometry"
)

// GeometryOverride replaces only the fields that are set.
type GeometryOverride struct {
	Shape            *Shape   `json:"shape,omitempty"`
	OuterDiameterMM  *float64 `json:"outer_diameter_mm,omitempty"`
	InnerDiameterMM  *float64 `json:"inner_diameter_mm,omitempty"`
	AxialWidthMM     *float64 `json:"axial_width_mm,omitempty"`
	LengthMM         *float64 `json:"length_mm,omitempty"`
	WidthMM          *float64 `json:"width_mm,omitempty"`
	HeightMM         *float64 `json:"height_mm,omitempty"`
	SegmentAngleDeg  *float64 `json:"segment_angle_deg,omitempty"`
	EdgeMarginMM     *float64 `json:"edge_margin_mm,omitempty"`
	MinHoleSpacingMM *float64 `json:"min_hole_spacing_mm,omitempty"`
}

// mergeGeometry applies o to base and names the fields whose value changed.
func mergeGeometry(base Geometry, o *GeometryOverride) (Geometry, []string) {
	out := base
	if o == nil {
		return out, nil
	}
	var changed []string
	set := func(name string, dst *float64, v *float64) {
		if v == nil {
			return
		}
		if *dst != *v {
			changed = append(changed, name)
		}
		*dst = *v
	}
	if o.Shape != nil {
		if out.Shape != *o.Shape {
			changed = append(changed, "shape")
		}
		out.Shape = *o.Shape
	}
	set("outer_diameter", &out.OuterDiameterMM, o.OuterDiameterMM)
	set("inner_diameter", &out.InnerDiameterMM, o.InnerDiameterMM)
	set("axial_width", &out.AxialWidthMM, o.AxialWidthMM)
	set("length", &out.LengthMM, o.LengthMM)
	set("width", &out.WidthMM, o.WidthMM)
	set("height", &out.HeightMM, o.HeightMM)
	set("segment_angle", &out.SegmentAngleDeg, o.SegmentAngleDeg)
	set("edge_margin", &out.EdgeMarginMM, o.EdgeMarginMM)
	set("min_hole_spacing", &out.MinHoleSpacingMM, o.MinHoleSpacingMM)
	return out, changed
}

// Resolve resolves a built-in template with the default thin-wall policy.
func Resolve(templateID string, override *GeometryOverride) (ResolvedBlock, error) {
	return ResolveWithPolicy(templateID, override, DefaultPolicy())
}

func ResolveWithPolicy(templateID string, override *GeometryOverride, p Policy) (ResolvedBlock, error) {
	t, err := GetTemplate(templateID)
	if err != nil {
		return ResolvedBlock{}, err
	}
	return ResolveTemplate(t, override, p)
}

func ResolveEN(override *GeometryOverride) (ResolvedBlock, error) {
	return Resolve(TemplateEN, override)
}

func ResolveASTM(override *GeometryOverride) (ResolvedBlock, error) {
	return Resolve(TemplateASTM, override)
}

func ResolveTUV(override *GeometryOverride) (ResolvedBlock, error) {
	return Resolve(TemplateTUV, override)
}

// ResolveTemplate produces the final block for any template, built-in or
// custom. It fails when the policy or the merged geometry is invalid;
// placement and thin-wall problems are reported as warnings.
func ResolveTemplate(t Template, override *GeometryOverride, p Policy) (ResolvedBlock, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return ResolvedBlock{}, err
	}
	g, changed := mergeGeometry(t.Geometry, override)

	gv := ValidateGeometry(g)
	if !gv.IsValid {
		return ResolvedBlock{}, &GeometryError{Issues: gv.Errors}
	}
	calc := *gv.Calculated

	positions := scalePositions(t, g)

	pv := ValidateHolePositions(positions, t.Features, g)
	tw := ApplyThinWallPolicy(t.Features, calc.WallThicknessMM, t.Family, p)

	var warnings []Warning
	if len(changed) > 0 {
		warnings = append(warnings, Warning{
			Severity: SeverityInfo,
			Code:     CodeDimensionsAdapted,
			Message: fmt.Sprintf("template %s adapted to requested dimensions (%s); hole positions scaled proportionally",
				t.ID, strings.Join(changed, ", ")),
			Suggestion: "check hole positions against the drawing before machining",
		})
	}
	warnings = append(warnings, pv.Errors...)
	warnings = append(warnings, pv.Warnings...)
	warnings = append(warnings, tw.Warnings...)

	features := make(map[string]AdjustedFeature, len(tw.Features))
	for _, f := range tw.Features {
		features[f.Label] = f
	}
	holes := make([]ResolvedHole, 0, len(positions))
	for _, pos := range positions {
		f, ok := features[pos.Label]
		if !ok {
			// dropped by the thin-wall policy
			continue
		}
		holes = append(holes, resolveHole(pos, f, calc))
	}
	sort.SliceStable(holes, func(i, j int) bool { return holes[i].AngleDeg < holes[j].AngleDeg })

	return ResolvedBlock{
		TemplateID:   t.ID,
		TemplateName: t.Name,
		Family:       t.Family,
		StandardRef:  t.StandardRef,
		Geometry:     g,
		Calculated:   calc,
		Holes:        holes,
		Warnings:     warnings,
		Compliant:    tw.Compliant && pv.IsValid,
	}, nil
}

// scalePositions stretches template hole positions onto geometry g and
// returns them with axial positions measured from the start face.
func scalePositions(t Template, g Geometry) []CurvedHolePosition {
	angleScale, axialScale := 1.0, 1.0
	if t.Geometry.SegmentAngleDeg > 0 {
		angleScale = g.SegmentAngleDeg / t.Geometry.SegmentAngleDeg
	}
	if t.Geometry.AxialWidthMM > 0 {
		axialScale = g.AxialWidthMM / t.Geometry.AxialWidthMM
	}

	out := make([]CurvedHolePosition, len(t.Positions))
	for i, p := range t.Positions {
		p.AngleDeg *= angleScale
		p.AxialPositionMM *= axialScale
		switch t.AxialOrigin {
		case AxialFromCenter:
			p.AxialPositionMM += g.AxialWidthMM / 2
		case AxialFromStartFace, "":
		}
		out[i] = p
	}
	return out
}

func resolveHole(pos CurvedHolePosition, f AdjustedFeature, calc CalculatedGeometry) ResolvedHole {
	var (
		radius  float64
		pos3D   geometry.Point3D
		section geometry.Point2D
	)
	switch pos.DepthMode {
	case DepthRadial, DepthAlongDrillAxis, "":
		radius = calc.OuterRadiusMM - f.DepthMM
		pos3D = geometry.HolePosition3D(calc.OuterRadiusMM, f.DepthMM, pos.AngleDeg, pos.AxialPositionMM)
		section = geometry.SectionView(calc.WallThicknessMM, f.DepthMM, pos.AxialPositionMM)
	case DepthFromInnerSurface:
		radius = calc.InnerRadiusMM + f.DepthMM
		pos3D = geometry.PointOnCylinder(radius, pos.AngleDeg, pos.AxialPositionMM)
		section = geometry.Point2D{X: f.DepthMM, Y: pos.AxialPositionMM}
	}
	return ResolvedHole{
		Label:           pos.Label,
		Reflector:       f.Reflector,
		DiameterMM:      f.DiameterMM,
		DepthMM:         f.DepthMM,
		OriginalDepthMM: f.OriginalDepthMM,
		Adjusted:        f.Adjusted,
		AngleDeg:        pos.AngleDeg,
		AxialPositionMM: pos.AxialPositionMM,
		DepthMode:       pos.DepthMode,
		RadiusAtHoleMM:  radius,
		ArcPositionMM:   geometry.ArcLength(calc.MeanRadiusMM, pos.AngleDeg),
		Position3D:      pos3D,
		TopView:         geometry.TopView(geometry.Point2D{}, radius, pos.AngleDeg),
		SectionView:     section,
	}
}
