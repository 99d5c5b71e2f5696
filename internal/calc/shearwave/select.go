// Package shearwave picks pre-built shear-wave master blocks and tube
// reference standards from fixed banks.
package shearwave

import (
	"fmt"
	"math"

	"ScanMaster/internal/calc/blockspec"
)

type Quality string

const (
	QualityPerfect      Quality = "perfect"
	QualityAcceptable   Quality = "acceptable"
	QualityMarginal     Quality = "marginal"
	QualityNonCompliant Quality = "non_compliant"
	QualityNone         Quality = "none"
)

const (
	flatThresholdMM = 500.0
	coverageMin     = 0.9
	coverageMax     = 1.5
	thicknessTol    = 0.25
	thicknessReview = 0.35
	diameterTol     = 0.10
	eps             = 1e-9
)

type Master struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Curved            bool                     `json:"curved"`
	NominalDiameterMM float64                  `json:"nominal_diameter_mm,omitempty"`
	ThicknessMM       float64                  `json:"thickness_mm"`
	Geometries        []blockspec.PartGeometry `json:"geometries,omitempty"`
}

// Coverage is the part OD range [0.9, 1.5] x nominal a curved master serves.
func (m Master) Coverage() (lo, hi float64) {
	return m.NominalDiameterMM * coverageMin, m.NominalDiameterMM * coverageMax
}

func (m Master) covers(od float64) bool {
	lo, hi := m.Coverage()
	return od >= lo-eps && od <= hi+eps
}

func (m Master) appliesTo(g blockspec.PartGeometry) bool {
	if g == "" {
		return true
	}
	for _, x := range m.Geometries {
		if x == g {
			return true
		}
	}
	return false
}

var (
	small = []blockspec.PartGeometry{blockspec.Tube, blockspec.Pipe, blockspec.RoundBar}
	large = []blockspec.PartGeometry{blockspec.Tube, blockspec.Pipe, blockspec.RoundBar, blockspec.Ring, blockspec.Shaft}

	masters = []Master{
		{ID: "SWM-026", Name: "Curved shear-wave master 026", Curved: true, NominalDiameterMM: 26, ThicknessMM: 5, Geometries: small},
		{ID: "SWM-035", Name: "Curved shear-wave master 035", Curved: true, NominalDiameterMM: 35, ThicknessMM: 6, Geometries: small},
		{ID: "SWM-050", Name: "Curved shear-wave master 050", Curved: true, NominalDiameterMM: 50, ThicknessMM: 8, Geometries: small},
		{ID: "SWM-075", Name: "Curved shear-wave master 075", Curved: true, NominalDiameterMM: 75, ThicknessMM: 10, Geometries: large},
		{ID: "SWM-100", Name: "Curved shear-wave master 100", Curved: true, NominalDiameterMM: 100, ThicknessMM: 12, Geometries: large},
		{ID: "SWM-150", Name: "Curved shear-wave master 150", Curved: true, NominalDiameterMM: 150, ThicknessMM: 15, Geometries: large},
		{ID: "SWM-200", Name: "Curved shear-wave master 200", Curved: true, NominalDiameterMM: 200, ThicknessMM: 20, Geometries: large},
		{ID: "SWM-300", Name: "Curved shear-wave master 300", Curved: true, NominalDiameterMM: 300, ThicknessMM: 25, Geometries: large},
		{ID: "SWM-400", Name: "Curved shear-wave master 400", Curved: true, NominalDiameterMM: 400, ThicknessMM: 30, Geometries: large},
	}

	flatMaster = Master{ID: "SWM-FLAT", Name: "Flat shear-wave master", ThicknessMM: 25}
)

func (m Master) clone() Master {
	m.Geometries = append([]blockspec.PartGeometry(nil), m.Geometries...)
	return m
}

// Masters returns the curved bank followed by the flat master.
func Masters() []Master {
	out := make([]Master, 0, len(masters)+1)
	for _, m := range masters {
		out = append(out, m.clone())
	}
	return append(out, flatMaster.clone())
}

type Input struct {
	PartODMM        float64                `json:"part_od_mm"`
	PartThicknessMM float64                `json:"part_thickness_mm"`
	PartGeometry    blockspec.PartGeometry `json:"part_geometry"`
}

type Selection struct {
	Block              *Master `json:"block"`
	Reasoning          string  `json:"reasoning"`
	MatchQuality       Quality `json:"match_quality"`
	Compliant          bool    `json:"compliant"`
	RequiresReview     bool    `json:"requires_review"`
	ThicknessDeviation float64 `json:"thickness_deviation"`
	DiameterDeviation  float64 `json:"diameter_deviation"`
}

func deviation(actual, nominal float64) float64 {
	return math.Abs(actual-nominal) / nominal
}

// SelectMaster picks the master block for a part. Parts over 500 mm OD use
// the flat master; smaller parts use the curved master whose coverage holds
// the OD and whose nominal diameter is closest to it.
func SelectMaster(in Input) (Selection, error) {
	if in.PartODMM <= 0 {
		return Selection{}, fmt.Errorf("part OD must be positive, got %.2f", in.PartODMM)
	}
	if in.PartThicknessMM < 0 {
		return Selection{}, fmt.Errorf("part thickness must not be negative")
	}

	if in.PartODMM > flatThresholdMM {
		m := flatMaster.clone()
		sel := Selection{Block: &m, MatchQuality: QualityPerfect, Compliant: true}
		if in.PartThicknessMM <= 0 {
			sel.Reasoning = fmt.Sprintf("OD %.1f mm exceeds %.0f mm, flat master used; thickness not given", in.PartODMM, flatThresholdMM)
			return sel, nil
		}
		sel.ThicknessDeviation = deviation(in.PartThicknessMM, m.ThicknessMM)
		if sel.ThicknessDeviation > thicknessTol+eps {
			sel.MatchQuality = QualityMarginal
			sel.Compliant = false
			sel.RequiresReview = true
		}
		sel.Reasoning = fmt.Sprintf("OD %.1f mm exceeds %.0f mm, flat master used; thickness %.1f mm is %.0f%% from %.1f mm",
			in.PartODMM, flatThresholdMM, in.PartThicknessMM, sel.ThicknessDeviation*100, m.ThicknessMM)
		return sel, nil
	}

	var best *Master
	for i := range masters {
		m := masters[i].clone()
		if !m.covers(in.PartODMM) || !m.appliesTo(in.PartGeometry) {
			continue
		}
		if best == nil || math.Abs(m.NominalDiameterMM-in.PartODMM) < math.Abs(best.NominalDiameterMM-in.PartODMM) {
			best = &m
		}
	}
	if best == nil {
		return Selection{
			MatchQuality: QualityNone,
			Reasoning:    fmt.Sprintf("no coverage: no curved master covers OD %.1f mm for %s", in.PartODMM, geometryName(in.PartGeometry)),
		}, nil
	}

	sel := Selection{Block: best, DiameterDeviation: deviation(in.PartODMM, best.NominalDiameterMM)}
	lo, hi := best.Coverage()
	reason := fmt.Sprintf("%s covers OD %.1f-%.1f mm, closest nominal %.0f mm to part OD %.1f mm",
		best.ID, lo, hi, best.NominalDiameterMM, in.PartODMM)

	diamOK := sel.DiameterDeviation <= diameterTol+eps
	if in.PartThicknessMM <= 0 {
		sel.MatchQuality, sel.Compliant = QualityPerfect, true
		if !diamOK {
			sel.MatchQuality = QualityAcceptable
		}
		sel.Reasoning = reason + "; thickness not given, match judged on diameter only"
		return sel, nil
	}

	sel.ThicknessDeviation = deviation(in.PartThicknessMM, best.ThicknessMM)
	pct := sel.ThicknessDeviation * 100
	switch {
	case sel.ThicknessDeviation <= thicknessTol+eps:
		sel.Compliant = true
		sel.MatchQuality = QualityPerfect
		if !diamOK {
			sel.MatchQuality = QualityAcceptable
		}
		reason += fmt.Sprintf("; thickness within %.0f%% (%.1f%%)", thicknessTol*100, pct)
	case sel.ThicknessDeviation <= thicknessReview+eps:
		sel.MatchQuality = QualityMarginal
		sel.RequiresReview = true
		reason += fmt.Sprintf("; thickness deviation %.1f%% exceeds %.0f%%, review required", pct, thicknessTol*100)
	default:
		sel.MatchQuality = QualityNonCompliant
		reason += fmt.Sprintf("; thickness deviation %.1f%% exceeds %.0f%%, master not compliant for this part", pct, thicknessReview*100)
	}
	sel.Reasoning = reason
	return sel, nil
}

func geometryName(g blockspec.PartGeometry) string {
	if g == "" {
		return "any geometry"
	}
	return string(g)
}
