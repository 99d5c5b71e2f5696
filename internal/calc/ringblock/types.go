// Package ringblock resolves parametric ring-segment calibration blocks:
// built-in templates, geometry overrides with proportional hole scaling,
// geometry and hole-placement validation, and the thin-wall depth policy.
package ringblock

import (
	"ScanMaster/internal/calc/geometry"
)

type Shape string

const (
	ShapeFlat        Shape = "flat"
	ShapeRingSegment Shape = "ring_segment"
	ShapeCylindrical Shape = "cylindrical"
)

type Reflector string

const (
	ReflectorSDH Reflector = "SDH"
	ReflectorFBH Reflector = "FBH"
)

// DepthMode says where a hole's nominal depth is measured from.
type DepthMode string

const (
	DepthRadial           DepthMode = "radial"
	DepthAlongDrillAxis   DepthMode = "along_drill_axis"
	DepthFromInnerSurface DepthMode = "from_inner_surface"
)

type Family string

const (
	FamilyEN     Family = "EN"
	FamilyASTM   Family = "ASTM"
	FamilyTUV    Family = "TUV"
	FamilyCustom Family = "CUSTOM"
)

// AxialOrigin is the reference for CurvedHolePosition.AxialPositionMM.
type AxialOrigin string

const (
	AxialFromStartFace AxialOrigin = "start_face"
	AxialFromCenter    AxialOrigin = "center"
)

type Geometry struct {
	Shape            Shape   `json:"shape"`
	OuterDiameterMM  float64 `json:"outer_diameter_mm"`
	InnerDiameterMM  float64 `json:"inner_diameter_mm"`
	AxialWidthMM     float64 `json:"axial_width_mm"`
	LengthMM         float64 `json:"length_mm,omitempty"`
	WidthMM          float64 `json:"width_mm,omitempty"`
	HeightMM         float64 `json:"height_mm,omitempty"`
	SegmentAngleDeg  float64 `json:"segment_angle_deg"`
	EdgeMarginMM     float64 `json:"edge_margin_mm"`
	MinHoleSpacingMM float64 `json:"min_hole_spacing_mm"`
}

// CalculatedGeometry is derived from Geometry on every resolve.
type CalculatedGeometry struct {
	WallThicknessMM float64 `json:"wall_thickness_mm"`
	OuterRadiusMM   float64 `json:"outer_radius_mm"`
	InnerRadiusMM   float64 `json:"inner_radius_mm"`
	MeanRadiusMM    float64 `json:"mean_radius_mm"`
	ArcLengthMM     float64 `json:"arc_length_mm"`
}

func Calculate(g Geometry) CalculatedGeometry {
	mean := geometry.MeanRadius(g.OuterDiameterMM, g.InnerDiameterMM)
	return CalculatedGeometry{
		WallThicknessMM: geometry.WallThickness(g.OuterDiameterMM, g.InnerDiameterMM),
		OuterRadiusMM:   geometry.OuterRadius(g.OuterDiameterMM),
		InnerRadiusMM:   geometry.InnerRadius(g.InnerDiameterMM),
		MeanRadiusMM:    mean,
		ArcLengthMM:     geometry.ArcLength(mean, g.SegmentAngleDeg),
	}
}

type HoleFeature struct {
	Label      string    `json:"label"`
	Reflector  Reflector `json:"reflector"`
	DiameterMM float64   `json:"diameter_mm"`
	DepthMM    float64   `json:"depth_mm"`
}

// CurvedHolePosition places a hole on the segment. Label joins it to a
// HoleFeature of the same template.
type CurvedHolePosition struct {
	Label           string    `json:"label"`
	AngleDeg        float64   `json:"angle_deg"`
	AxialPositionMM float64   `json:"axial_position_mm"`
	DepthMode       DepthMode `json:"depth_mode"`
}

type Template struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Family      Family               `json:"family"`
	StandardRef string               `json:"standard_ref"`
	AxialOrigin AxialOrigin          `json:"axial_origin"`
	Geometry    Geometry             `json:"geometry"`
	Features    []HoleFeature        `json:"features"`
	Positions   []CurvedHolePosition `json:"positions"`
}

// Clone returns a copy that shares no slices with t.
func (t Template) Clone() Template {
	out := t
	out.Features = append([]HoleFeature(nil), t.Features...)
	out.Positions = append([]CurvedHolePosition(nil), t.Positions...)
	return out
}

type ResolvedHole struct {
	Label           string           `json:"label"`
	Reflector       Reflector        `json:"reflector"`
	DiameterMM      float64          `json:"diameter_mm"`
	DepthMM         float64          `json:"depth_mm"`
	OriginalDepthMM float64          `json:"original_depth_mm"`
	Adjusted        bool             `json:"adjusted"`
	AngleDeg        float64          `json:"angle_deg"`
	AxialPositionMM float64          `json:"axial_position_mm"`
	DepthMode       DepthMode        `json:"depth_mode"`
	RadiusAtHoleMM  float64          `json:"radius_at_hole_mm"`
	ArcPositionMM   float64          `json:"arc_position_mm"`
	Position3D      geometry.Point3D `json:"position_3d"`
	TopView         geometry.Point2D `json:"top_view"`
	SectionView     geometry.Point2D `json:"section_view"`
}

type ResolvedBlock struct {
	TemplateID   string             `json:"template_id"`
	TemplateName string             `json:"template_name"`
	Family       Family             `json:"family"`
	StandardRef  string             `json:"standard_ref"`
	Geometry     Geometry           `json:"geometry"`
	Calculated   CalculatedGeometry `json:"calculated"`
	Holes        []ResolvedHole     `json:"holes"`
	Warnings     []Warning          `json:"warnings"`
	Compliant    bool               `json:"compliant"`
}

// HasErrors reports whether any warning carries error severity.
func (b ResolvedBlock) HasErrors() bool {
	for _, w := range b.Warnings {
		if w.Severity == SeverityError {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Code identifies a diagnostic. Callers branch on the code, never on Message.
type Code string

const (
	CodeODNotGreaterThanID     Code = "OD_NOT_GREATER_THAN_ID"
	CodeSegmentAngleRange      Code = "SEGMENT_ANGLE_OUT_OF_RANGE"
	CodeAxialWidthNotPositive  Code = "AXIAL_WIDTH_NOT_POSITIVE"
	CodeEdgeMarginNegative     Code = "EDGE_MARGIN_NEGATIVE"
	CodeHoleSpacingNegative    Code = "MIN_HOLE_SPACING_NEGATIVE"
	CodeHoleAngularMargin      Code = "HOLE_OUTSIDE_ANGULAR_MARGIN"
	CodeHoleAxialMargin        Code = "HOLE_OUTSIDE_AXIAL_MARGIN"
	CodeHoleSpacingTight       Code = "HOLE_SPACING_TOO_TIGHT"
	CodeInsufficientArcLength  Code = "INSUFFICIENT_ARC_LENGTH"
	CodeDepthAdjusted          Code = "DEPTH_ADJUSTED"
	CodeReflectorRemoved       Code = "REFLECTOR_REMOVED"
	CodeMinimumReflectorsUnmet Code = "MINIMUM_REFLECTORS_NOT_MET"
	CodeThinWallFallback       Code = "THIN_WALL_FALLBACK_APPLIED"
	CodeDimensionsAdapted      Code = "DIMENSIONS_ADAPTED"
)

type Warning struct {
	Severity   Severity `json:"severity"`
	Code       Code     `json:"code"`
	Message    string   `json:"message"`
	Suggestion string   `json:"suggestion,omitempty"`
}
