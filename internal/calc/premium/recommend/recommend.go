// Package recommend picks the built-in ring-segment template for a
// standard and derives the geometry override that fits it to a part.
package recommend

import (
	"fmt"

	"ScanMaster/internal/calc/ringblock"
	"ScanMaster/internal/standards"
)

type Input struct {
	Standard     string  `json:"standard"`
	PartODMM     float64 `json:"part_od_mm"`
	PartIDMM     float64 `json:"part_id_mm"`
	AxialWidthMM float64 `json:"axial_width_mm"`
}

type Recommendation struct {
	TemplateID string                     `json:"template_id"`
	Family     ringblock.Family           `json:"family"`
	Standard   standards.Standard         `json:"standard"`
	Override   ringblock.GeometryOverride `json:"override"`
	Reasoning  string                     `json:"reasoning"`
}

// FamilyFor maps a standard to the template family whose reflector layout
// it calls for.
func FamilyFor(std standards.Standard) ringblock.Family {
	switch std {
	case standards.EN10228_3, standards.EN10228_4:
		return ringblock.FamilyEN
	case standards.TUV:
		return ringblock.FamilyTUV
	default:
		return ringblock.FamilyASTM
	}
}

var templateFor = map[ringblock.Family]string{
	ringblock.FamilyEN:   ringblock.TemplateEN,
	ringblock.FamilyASTM: ringblock.TemplateASTM,
	ringblock.FamilyTUV:  ringblock.TemplateTUV,
}

// Template recommends a template and an override carrying the part's OD
// and ID. The template's axial width is kept unless the part is narrower.
func Template(in Input) (Recommendation, error) {
	std, err := standards.Parse(in.Standard)
	if err != nil {
		return Recommendation{}, err
	}
	if in.PartODMM <= 0 || in.PartIDMM <= 0 {
		return Recommendation{}, fmt.Errorf("ring blocks need the part OD and ID")
	}
	if in.PartIDMM >= in.PartODMM {
		return Recommendation{}, fmt.Errorf("part ID %.2f mm must be smaller than OD %.2f mm", in.PartIDMM, in.PartODMM)
	}

	fam := FamilyFor(std)
	id := templateFor[fam]
	t, err := ringblock.GetTemplate(id)
	if err != nil {
		return Recommendation{}, err
	}

	od, bore := in.PartODMM, in.PartIDMM
	rec := Recommendation{
		TemplateID: id,
		Family:     fam,
		Standard:   std,
		Override:   ringblock.GeometryOverride{OuterDiameterMM: &od, InnerDiameterMM: &bore},
	}
	rec.Reasoning = fmt.Sprintf("%s calls for the %s reflector layout; %s adapted from OD %.0f/ID %.0f mm to the part's %.1f/%.1f mm",
		std, fam, id, t.Geometry.OuterDiameterMM, t.Geometry.InnerDiameterMM, od, bore)
	if in.AxialWidthMM > 0 && in.AxialWidthMM < t.Geometry.AxialWidthMM {
		w := in.AxialWidthMM
		rec.Override.AxialWidthMM = &w
		rec.Reasoning += fmt.Sprintf("; axial width cut to %.1f mm", w)
	}
	return rec, nil
}
