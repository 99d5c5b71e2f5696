package ringblock

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

const (
	TemplateEN   = "EN_10228_DAC_REF_BLOCK"
	TemplateASTM = "ASTM_E428_RING_SEGMENT"
	TemplateTUV  = "TUV_RING_SEGMENT_REF"
)

var ErrTemplateNotFound = errors.New("template not found")

// registry is filled once at init and only read afterwards.
var registry = builtinTemplates()

func builtinTemplates() map[string]Template {
	en := Template{
		ID:          TemplateEN,
		Name:        "EN 10228 DAC reference ring segment",
		Family:      FamilyEN,
		StandardRef: "BS EN 10228-3",
		AxialOrigin: AxialFromStartFace,
		Geometry: Geometry{
			Shape:            ShapeRingSegment,
			OuterDiameterMM:  400,
			InnerDiameterMM:  240,
			AxialWidthMM:     80,
			SegmentAngleDeg:  120,
			EdgeMarginMM:     10,
			MinHoleSpacingMM: 20,
		},
		Features: []HoleFeature{
			{Label: "A", Reflector: ReflectorSDH, DiameterMM: 3, DepthMM: 15},
			{Label: "B", Reflector: ReflectorSDH, DiameterMM: 3, DepthMM: 35},
			{Label: "C", Reflector: ReflectorSDH, DiameterMM: 3, DepthMM: 55},
			{Label: "D", Reflector: ReflectorSDH, DiameterMM: 3, DepthMM: 70},
		},
		Positions: []CurvedHolePosition{
			{Label: "A", AngleDeg: 15, AxialPositionMM: 40, DepthMode: DepthRadial},
			{Label: "B", AngleDeg: 45, AxialPositionMM: 40, DepthMode: DepthRadial},
			{Label: "C", AngleDeg: 75, AxialPositionMM: 40, DepthMode: DepthRadial},
			{Label: "D", AngleDeg: 105, AxialPositionMM: 40, DepthMode: DepthRadial},
		},
	}

	// FBH #5 (5/64 in.)
	astm := Template{
		ID:          TemplateASTM,
		Name:        "ASTM E428 FBH ring segment",
		Family:      FamilyASTM,
		StandardRef: "ASTM E428 / A388",
		AxialOrigin: AxialFromCenter,
		Geometry: Geometry{
			Shape:            ShapeRingSegment,
			OuterDiameterMM:  300,
			InnerDiameterMM:  180,
			AxialWidthMM:     60,
			SegmentAngleDeg:  90,
			EdgeMarginMM:     8,
			MinHoleSpacingMM: 15,
		},
		Features: []HoleFeature{
			{Label: "A", Reflector: ReflectorFBH, DiameterMM: 1.98, DepthMM: 10},
			{Label: "B", Reflector: ReflectorFBH, DiameterMM: 1.98, DepthMM: 25},
			{Label: "C", Reflector: ReflectorFBH, DiameterMM: 1.98, DepthMM: 45},
		},
		Positions: []CurvedHolePosition{
			{Label: "A", AngleDeg: 20, AxialPositionMM: -10, DepthMode: DepthAlongDrillAxis},
			{Label: "B", AngleDeg: 45, AxialPositionMM: 0, DepthMode: DepthAlongDrillAxis},
			{Label: "C", AngleDeg: 70, AxialPositionMM: 10, DepthMode: DepthAlongDrillAxis},
		},
	}

	tuv := Template{
		ID:          TemplateTUV,
		Name:        "TUV SDH reference ring segment",
		Family:      FamilyTUV,
		StandardRef: "TUV ring forging practice",
		AxialOrigin: AxialFromStartFace,
		Geometry: Geometry{
			Shape:            ShapeRingSegment,
			OuterDiameterMM:  500,
			InnerDiameterMM:  300,
			AxialWidthMM:     100,
			SegmentAngleDeg:  150,
			EdgeMarginMM:     12,
			MinHoleSpacingMM: 25,
		},
		Features: []HoleFeature{
			{Label: "A", Reflector: ReflectorSDH, DiameterMM: 4, DepthMM: 10},
			{Label: "B", Reflector: ReflectorSDH, DiameterMM: 4, DepthMM: 25},
			{Label: "C", Reflector: ReflectorSDH, DiameterMM: 4, DepthMM: 50},
			{Label: "D", Reflector: ReflectorSDH, DiameterMM: 4, DepthMM: 75},
			{Label: "E", Reflector: ReflectorSDH, DiameterMM: 4, DepthMM: 90},
		},
		Positions: []CurvedHolePosition{
			{Label: "A", AngleDeg: 15, AxialPositionMM: 50, DepthMode: DepthRadial},
			{Label: "B", AngleDeg: 45, AxialPositionMM: 50, DepthMode: DepthRadial},
			{Label: "C", AngleDeg: 75, AxialPositionMM: 50, DepthMode: DepthRadial},
			{Label: "D", AngleDeg: 105, AxialPositionMM: 50, DepthMode: DepthRadial},
			{Label: "E", AngleDeg: 135, AxialPositionMM: 50, DepthMode: DepthRadial},
		},
	}

	return map[string]Template{en.ID: en, astm.ID: astm, tuv.ID: tuv}
}

// GetTemplate returns an independent copy of a built-in template.
func GetTemplate(id string) (Template, error) {
	t, ok := registry[id]
	if !ok {
		return Template{}, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
	}
	return t.Clone(), nil
}

func ListIDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func ListByFamily(f Family) []Template {
	var out []Template
	for _, id := range ListIDs() {
		if t := registry[id]; t.Family == f {
			out = append(out, t.Clone())
		}
	}
	return out
}

// CustomTemplate describes a caller-built template.
type CustomTemplate struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Family      Family               `json:"family"`
	StandardRef string               `json:"standard_ref"`
	AxialOrigin AxialOrigin          `json:"axial_origin"`
	Geometry    Geometry             `json:"geometry"`
	Features    []HoleFeature        `json:"features"`
	Positions   []CurvedHolePosition `json:"positions"`
}

// CreateCustom builds a template outside the registry. The geometry must be
// valid and feature labels unique. Registered templates are never replaced.
func CreateCustom(c CustomTemplate) (Template, error) {
	if c.ID == "" {
		c.ID = "CUSTOM_" + uuid.NewString()
	}
	if _, taken := registry[c.ID]; taken {
		return Template{}, fmt.Errorf("template id %q is reserved", c.ID)
	}
	if c.Family == "" {
		c.Family = FamilyCustom
	}
	if c.AxialOrigin == "" {
		c.AxialOrigin = AxialFromStartFace
	}
	if c.Geometry.Shape == "" {
		c.Geometry.Shape = ShapeRingSegment
	}
	if res := ValidateGeometry(c.Geometry); !res.IsValid {
		return Template{}, &GeometryError{Issues: res.Errors}
	}
	if err := checkLabels(c.Features); err != nil {
		return Template{}, err
	}
	t := Template{
		ID:          c.ID,
		Name:        c.Name,
		Family:      c.Family,
		StandardRef: c.StandardRef,
		AxialOrigin: c.AxialOrigin,
		Geometry:    c.Geometry,
		Features:    c.Features,
		Positions:   c.Positions,
	}
	return t.Clone(), nil
}

// TemplateOverrides are applied on top of a cloned base template. Nil fields
// keep the base value.
type TemplateOverrides struct {
	ID        string               `json:"id,omitempty"`
	Name      string               `json:"name,omitempty"`
	Geometry  *GeometryOverride    `json:"geometry,omitempty"`
	Features  []HoleFeature        `json:"features,omitempty"`
	Positions []CurvedHolePosition `json:"positions,omitempty"`
}

// Clone derives a new template from a built-in one. An overridden geometry
// must pass ValidateGeometry.
func Clone(baseID string, o TemplateOverrides) (Template, error) {
	base, err := GetTemplate(baseID)
	if err != nil {
		return Template{}, err
	}
	out := base
	out.ID = o.ID
	if out.ID == "" {
		out.ID = baseID + "_" + uuid.NewString()[:8]
	}
	if _, taken := registry[out.ID]; taken {
		return Template{}, fmt.Errorf("template id %q is reserved", out.ID)
	}
	if o.Name != "" {
		out.Name = o.Name
	}
	if o.Geometry != nil {
		out.Geometry, _ = mergeGeometry(base.Geometry, o.Geometry)
		if res := ValidateGeometry(out.Geometry); !res.IsValid {
			return Template{}, &GeometryError{Issues: res.Errors}
		}
	}
	if o.Features != nil {
		if err := checkLabels(o.Features); err != nil {
			return Template{}, err
		}
		out.Features = append([]HoleFeature(nil), o.Features...)
	}
	if o.Positions != nil {
		out.Positions = append([]CurvedHolePosition(nil), o.Positions...)
	}
	return out, nil
}

func checkLabels(features []HoleFeature) error {
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		if f.Label == "" {
			return fmt.Errorf("hole feature without label")
		}
		if seen[f.Label] {
			return fmt.Errorf("duplicate hole label %q", f.Label)
		}
		seen[f.Label] = true
	}
	return nil
}
