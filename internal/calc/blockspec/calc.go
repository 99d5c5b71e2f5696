// Package blockspec sizes flat and curved calibration blocks from part
// dimensions and the governing standard's tables.
package blockspec

import (
	"errors"
	"fmt"
	"math"

	"ScanMaster/internal/calc/geometry"
	"ScanMaster/internal/standards"
)

type PartGeometry string

const (
	Plate    PartGeometry = "plate"
	Bar      PartGeometry = "bar"
	Disk     PartGeometry = "disk"
	RoundBar PartGeometry = "round_bar"
	Shaft    PartGeometry = "shaft"
	Tube     PartGeometry = "tube"
	Pipe     PartGeometry = "pipe"
	Ring     PartGeometry = "ring"
	Sphere   PartGeometry = "sphere"
	Cone     PartGeometry = "cone"
	Pyramid  PartGeometry = "pyramid"
)

// Tubular reports whether the part has a bore.
func (g PartGeometry) Tubular() bool {
	return g == Tube || g == Pipe || g == Ring
}

// Round reports whether the part is a solid of revolution scanned through
// its diameter.
func (g PartGeometry) Round() bool {
	return g == RoundBar || g == Shaft
}

type BlockType string

const (
	FlatFBH         BlockType = "flat_fbh"
	CurvedFBH       BlockType = "curved_fbh"
	CylinderFBH     BlockType = "cylinder_fbh"
	CylinderNotched BlockType = "cylinder_notched"
	CustomBlock     BlockType = "custom"
)

// Curved reports whether the block carries a part-matched contour.
func (b BlockType) Curved() bool {
	return b == CurvedFBH || b == CylinderFBH || b == CylinderNotched
}

const (
	notchedWallLimitMM = 25.0
	curvedODLimitMM    = 50.0
	thickSectionMM     = 150.0
	thinWallMM         = 10.0
	defaultArcDeg      = 90.0
	envelopeStepMM     = 5.0
)

var ErrUnknownGeometry = errors.New("unknown part geometry")

type Dimensions struct {
	ThicknessMM     float64 `json:"thickness_mm"`
	LengthMM        float64 `json:"length_mm"`
	WidthMM         float64 `json:"width_mm"`
	OuterDiameterMM float64 `json:"outer_diameter_mm"`
	InnerDiameterMM float64 `json:"inner_diameter_mm"`
	WallThicknessMM float64 `json:"wall_thickness_mm"`
}

// Wall returns the tube wall, derived from OD/ID when not given. Zero means
// unknown.
func (d Dimensions) Wall() float64 {
	if d.WallThicknessMM > 0 {
		return d.WallThicknessMM
	}
	if d.OuterDiameterMM > d.InnerDiameterMM && d.InnerDiameterMM > 0 {
		return geometry.WallThickness(d.OuterDiameterMM, d.InnerDiameterMM)
	}
	return 0
}

type Input struct {
	Geometry        PartGeometry `json:"geometry"`
	Dimensions      Dimensions   `json:"dimensions"`
	Standard        string       `json:"standard"`
	AcceptanceClass string       `json:"acceptance_class"`
	Material        string       `json:"material"`
}

type BlockDimensions struct {
	LengthMM          float64 `json:"length_mm"`
	WidthMM           float64 `json:"width_mm"`
	HeightMM          float64 `json:"height_mm"`
	OuterDiameterMM   float64 `json:"outer_diameter_mm,omitempty"`
	InnerDiameterMM   float64 `json:"inner_diameter_mm,omitempty"`
	ArcAngleDeg       float64 `json:"arc_angle_deg,omitempty"`
	LengthTolMM       float64 `json:"length_tol_mm"`
	WidthTolMM        float64 `json:"width_tol_mm"`
	HeightTolMM       float64 `json:"height_tol_mm"`
	DiameterTolMM     float64 `json:"diameter_tol_mm,omitempty"`
	SurfaceFinishRaUM float64 `json:"surface_finish_ra_um"`
}

type FBHSpec struct {
	Number        int       `json:"number"`
	DiameterMM    float64   `json:"diameter_mm"`
	DiameterTolMM float64   `json:"diameter_tol_mm"`
	DepthTolMM    float64   `json:"depth_tol_mm"`
	DepthsMM      []float64 `json:"depths_mm"`
	Count         int       `json:"count"`
	Class         string    `json:"class"`
	BucketMinMM   float64   `json:"bucket_min_mm"`
	BucketMaxMM   float64   `json:"bucket_max_mm"`
}

type MaterialRef struct {
	Key                    string  `json:"key"`
	Name                   string  `json:"name"`
	LongitudinalVelocityMS float64 `json:"longitudinal_velocity_ms"`
	ShearVelocityMS        float64 `json:"shear_velocity_ms"`
	AcousticImpedanceMRayl float64 `json:"acoustic_impedance_mrayl"`
	Austenitic             bool    `json:"austenitic"`
}

type Specification struct {
	BlockType          BlockType          `json:"block_type"`
	Standard           standards.Standard `json:"standard"`
	SectionThicknessMM float64            `json:"section_thickness_mm"`
	Dimensions         BlockDimensions    `json:"dimensions"`
	FBH                FBHSpec            `json:"fbh"`
	Notches            []Notch            `json:"notches,omitempty"`
	Material           MaterialRef        `json:"material"`
	Warnings           []string           `json:"warnings"`
	Notes              []string           `json:"notes"`
}

// ClassifyBlockType picks the block family for a part.
func ClassifyBlockType(g PartGeometry, d Dimensions) (BlockType, error) {
	switch g {
	case Tube, Pipe, Ring:
		if w := d.Wall(); w > 0 && w < notchedWallLimitMM {
			return CylinderNotched, nil
		}
		return CylinderFBH, nil
	case RoundBar, Shaft:
		if d.OuterDiameterMM > 0 && d.OuterDiameterMM < curvedODLimitMM {
			return CurvedFBH, nil
		}
		return FlatFBH, nil
	case Plate, Bar, Disk:
		return FlatFBH, nil
	case Sphere, Cone, Pyramid:
		return CustomBlock, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGeometry, g)
}

// SectionThickness is the metal path the block has to reproduce: the wall
// for tubular parts, the diameter for round solids without a thickness.
func SectionThickness(g PartGeometry, d Dimensions) float64 {
	switch {
	case g.Tubular():
		if w := d.Wall(); w > 0 {
			return w
		}
	case g.Round():
		if d.ThicknessMM <= 0 {
			return d.OuterDiameterMM
		}
	}
	return d.ThicknessMM
}

// DACDepths returns the calibration depths for a section thickness.
// Tiers are half-open [min, max).
func DACDepths(thicknessMM float64) []float64 {
	var ladder []float64
	switch {
	case thicknessMM < 25:
		ladder = []float64{0.25, 0.5, 0.75}
	case thicknessMM < 75:
		ladder = []float64{0.125, 0.25, 0.5, 0.75}
	case thicknessMM < 150:
		ladder = []float64{0.1, 0.25, 0.5, 0.75, 0.9}
	default:
		ladder = []float64{0.05, 0.1, 0.25, 0.5, 0.75, 0.9}
	}
	out := make([]float64, len(ladder))
	for i, r := range ladder {
		out[i] = geometry.Round2(thicknessMM * r)
	}
	return out
}

func Calculate(in Input) (Specification, error) {
	std, err := standards.Parse(in.Standard)
	if err != nil {
		return Specification{}, err
	}
	bt, err := ClassifyBlockType(in.Geometry, in.Dimensions)
	if err != nil {
		return Specification{}, err
	}
	d := in.Dimensions
	if d.OuterDiameterMM < 0 || d.InnerDiameterMM < 0 || d.WallThicknessMM < 0 {
		return Specification{}, fmt.Errorf("dimensions must not be negative")
	}
	if in.Geometry.Tubular() && d.InnerDiameterMM > 0 && d.InnerDiameterMM >= d.OuterDiameterMM {
		return Specification{}, fmt.Errorf("outer diameter %.2f mm must exceed inner diameter %.2f mm",
			d.OuterDiameterMM, d.InnerDiameterMM)
	}
	t := SectionThickness(in.Geometry, d)
	if t <= 0 {
		return Specification{}, fmt.Errorf("section thickness must be positive for %s", in.Geometry)
	}

	tbl, err := standards.Lookup(std)
	if err != nil {
		return Specification{}, err
	}
	spec := Specification{BlockType: bt, Standard: std, SectionThicknessMM: t}

	env := tbl.Block
	spec.Dimensions = BlockDimensions{
		HeightMM:          geometry.CeilToStep(math.Max(env.MinHeightMM, t*1.25), envelopeStepMM),
		LengthMM:          geometry.CeilToStep(math.Max(env.MinLengthMM, t*3), envelopeStepMM),
		WidthMM:           geometry.CeilToStep(math.Max(env.MinWidthMM, t*2), envelopeStepMM),
		LengthTolMM:       env.LengthTolMM,
		WidthTolMM:        env.WidthTolMM,
		HeightTolMM:       env.HeightTolMM,
		SurfaceFinishRaUM: tbl.SurfaceFinishRaUM,
	}
	if bt.Curved() {
		spec.Dimensions.OuterDiameterMM = d.OuterDiameterMM
		spec.Dimensions.InnerDiameterMM = d.InnerDiameterMM
		spec.Dimensions.ArcAngleDeg = defaultArcDeg
		spec.Dimensions.DiameterTolMM = env.DiameterTolMM
	}

	fbh, err := standards.FBHFor(std, t, in.AcceptanceClass)
	if err != nil {
		return Specification{}, err
	}
	depths := DACDepths(t)
	spec.FBH = FBHSpec{
		Number:        fbh.Number,
		DiameterMM:    geometry.Round2(fbh.DiameterMM),
		DiameterTolMM: tbl.FBHDiameterTolMM,
		DepthTolMM:    tbl.FBHDepthTolMM,
		DepthsMM:      depths,
		Count:         len(depths),
		Class:         fbh.Class,
		BucketMinMM:   fbh.BucketMinMM,
		BucketMaxMM:   fbh.BucketMaxMM,
	}
	if fbh.ClassFallback && in.AcceptanceClass != "" {
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("class %q is not defined in %s, using class %s",
			in.AcceptanceClass, std, fbh.Class))
	}
	if fbh.BucketFallback {
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("thickness %.1f mm is outside the tabulated ranges, using the %.1f-%.1f mm bucket",
			t, fbh.BucketMinMM, fbh.BucketMaxMM))
	}

	if in.Geometry.Tubular() {
		if w := d.Wall(); w > 0 {
			spec.Notches, err = CalculateNotches(std, w)
			if err != nil {
				return Specification{}, err
			}
			if w < thinWallMM {
				spec.Warnings = append(spec.Warnings, fmt.Sprintf("thin wall (%.1f mm): consider a shear-wave technique with a notched reference", w))
			}
		}
	}

	mat, err := standards.LookupMaterial(in.Material)
	if err != nil {
		mat, _ = standards.LookupMaterial(standards.DefaultMaterial)
		if in.Material != "" {
			spec.Warnings = append(spec.Warnings, fmt.Sprintf("unknown material %q, acoustic properties of %s assumed", in.Material, mat.Name))
		}
	}
	spec.Material = MaterialRef{
		Key:                    mat.Key,
		Name:                   mat.Name,
		LongitudinalVelocityMS: mat.LongitudinalVelocityMS,
		ShearVelocityMS:        mat.ShearVelocityMS,
		AcousticImpedanceMRayl: geometry.Round2(mat.AcousticImpedanceMRayl()),
		Austenitic:             mat.Austenitic,
	}

	if t > thickSectionMM {
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("thick section (%.0f mm): check attenuation and consider scanning from both sides", t))
	}
	if mat.Austenitic {
		spec.Warnings = append(spec.Warnings, "austenitic material: coarse grain scatter, make the block from the same material and heat treatment as the part")
	}
	if bt == CustomBlock {
		spec.Warnings = append(spec.Warnings, fmt.Sprintf("%s parts need a block machined to the part contour; envelope is a minimum", in.Geometry))
	}

	spec.Notes = append(spec.Notes,
		fmt.Sprintf("block material %s (VL %.0f m/s, Z %.2f MRayl) must match the part material", mat.Name, mat.LongitudinalVelocityMS, spec.Material.AcousticImpedanceMRayl),
		"dimensions in mm; FBH number in 1/64 in.",
		tbl.Provenance,
	)
	return spec, nil
}
