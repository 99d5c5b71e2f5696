// Package autoplan produces the complete calibration plan for one part:
// reference block, shear-wave master, tube reference and ring segment.
package autoplan

import (
	"fmt"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/premium/recommend"
	"ScanMaster/internal/calc/ringblock"
	"ScanMaster/internal/calc/shearwave"
)

type Part struct {
	Reference       string                 `json:"reference"`
	Geometry        blockspec.PartGeometry `json:"geometry"`
	Dimensions      blockspec.Dimensions   `json:"dimensions"`
	Standard        string                 `json:"standard"`
	AcceptanceClass string                 `json:"acceptance_class"`
	Material        string                 `json:"material"`
}

type Plan struct {
	Reference      string                    `json:"reference"`
	Spec           blockspec.Specification   `json:"spec"`
	ShearWave      *shearwave.Selection      `json:"shear_wave,omitempty"`
	TubeReference  *shearwave.TubeReference  `json:"tube_reference,omitempty"`
	Recommendation *recommend.Recommendation `json:"recommendation,omitempty"`
	RingBlock      *ringblock.ResolvedBlock  `json:"ring_block,omitempty"`
	Warnings       []string                  `json:"warnings"`

	// Compliant is false when any selected block failed its own checks.
	Compliant bool `json:"compliant"`
}

// Build runs every selector that applies to the part. Only a failing block
// specification is an error; the optional selectors report through
// Warnings.
func Build(p Part, policy ringblock.Policy) (Plan, error) {
	spec, err := blockspec.Calculate(blockspec.Input{
		Geometry:        p.Geometry,
		Dimensions:      p.Dimensions,
		Standard:        p.Standard,
		AcceptanceClass: p.AcceptanceClass,
		Material:        p.Material,
	})
	if err != nil {
		return Plan{}, err
	}
	plan := Plan{Reference: p.Reference, Spec: spec, Warnings: []string{}, Compliant: true}
	d := p.Dimensions
	wall := d.Wall()

	if d.OuterDiameterMM > 0 && (p.Geometry.Tubular() || p.Geometry.Round()) {
		sel, err := shearwave.SelectMaster(shearwave.Input{
			PartODMM:        d.OuterDiameterMM,
			PartThicknessMM: wall,
			PartGeometry:    p.Geometry,
		})
		if err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("shear-wave master: %v", err))
		} else {
			plan.ShearWave = &sel
			if sel.Block == nil || !sel.Compliant {
				plan.Compliant = false
			}
		}
	}

	if (p.Geometry == blockspec.Tube || p.Geometry == blockspec.Pipe) && d.OuterDiameterMM > 0 && wall > 0 {
		ref, err := shearwave.SelectTubeReference(shearwave.TubeInput{
			ODMM:     d.OuterDiameterMM,
			WallMM:   wall,
			Standard: string(spec.Standard),
		})
		if err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("tube reference: %v", err))
		} else {
			plan.TubeReference = &ref
		}
	}

	if p.Geometry.Tubular() && d.InnerDiameterMM > 0 {
		rec, err := recommend.Template(recommend.Input{
			Standard:     string(spec.Standard),
			PartODMM:     d.OuterDiameterMM,
			PartIDMM:     d.InnerDiameterMM,
			AxialWidthMM: d.LengthMM,
		})
		if err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("ring segment: %v", err))
			return plan, nil
		}
		plan.Recommendation = &rec
		block, err := ringblock.ResolveWithPolicy(rec.TemplateID, &rec.Override, policy)
		if err != nil {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("ring segment: %v", err))
			plan.Compliant = false
			return plan, nil
		}
		plan.RingBlock = &block
		if !block.Compliant {
			plan.Compliant = false
		}
	}
	return plan, nil
}
