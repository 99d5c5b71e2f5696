// Package standards holds the read-only reference tables used to size
// calibration blocks: FBH size by thickness and class, notch rules, minimum
// block envelopes, surface finish and material acoustic properties.
//
// The tables are embedded YAML parsed once at process start. Every accessor
// returns copies; nothing in this package is mutated after init.
package standards

import (
	"embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

type Standard string

const (
	AMS2154E  Standard = "AMS-STD-2154E"
	MIL2154   Standard = "MIL-STD-2154"
	ASTMA388  Standard = "ASTM-A388"
	ASTME428  Standard = "ASTM-E428"
	EN10228_3 Standard = "BS-EN-10228-3"
	EN10228_4 Standard = "BS-EN-10228-4"
	TUV       Standard = "TUV"
)

// Units of the FBH values in a table.
type Units string

const (
	UnitsInch64 Units = "inch64"
	UnitsMM     Units = "mm"
)

var (
	ErrUnknownStandard = errors.New("unknown standard")
	ErrUnknownMaterial = errors.New("unknown material")
)

type Bucket struct {
	MinMM float64            `yaml:"min_mm" json:"min_mm"`
	MaxMM float64            `yaml:"max_mm" json:"max_mm"`
	FBH   map[string]float64 `yaml:"fbh" json:"fbh"`
}

// Contains reports whether t falls in [MinMM, MaxMM).
func (b Bucket) Contains(t float64) bool {
	return t >= b.MinMM && t < b.MaxMM
}

type NotchRule struct {
	DepthPercent float64 `yaml:"depth_percent" json:"depth_percent"`
	MinDepthMM   float64 `yaml:"min_depth_mm" json:"min_depth_mm"`
	MaxDepthMM   float64 `yaml:"max_depth_mm" json:"max_depth_mm"`
	LengthMM     float64 `yaml:"length_mm" json:"length_mm"`
	WidthMM      float64 `yaml:"width_mm" json:"width_mm"`
	AngleDeg     float64 `yaml:"angle_deg" json:"angle_deg"`
}

type BlockEnvelope struct {
	MinLengthMM   float64 `yaml:"min_length_mm" json:"min_length_mm"`
	MinWidthMM    float64 `yaml:"min_width_mm" json:"min_width_mm"`
	MinHeightMM   float64 `yaml:"min_height_mm" json:"min_height_mm"`
	LengthTolMM   float64 `yaml:"length_tol_mm" json:"length_tol_mm"`
	WidthTolMM    float64 `yaml:"width_tol_mm" json:"width_tol_mm"`
	HeightTolMM   float64 `yaml:"height_tol_mm" json:"height_tol_mm"`
	DiameterTolMM float64 `yaml:"diameter_tol_mm" json:"diameter_tol_mm"`
}

type Table struct {
	Standard          Standard      `yaml:"-" json:"standard"`
	Title             string        `yaml:"title" json:"title"`
	Units             Units         `yaml:"units" json:"units"`
	Classes           []string      `yaml:"classes" json:"classes"`
	DefaultClass      string        `yaml:"default_class" json:"default_class"`
	Buckets           []Bucket      `yaml:"buckets" json:"buckets"`
	Notch             NotchRule     `yaml:"notch" json:"notch"`
	Block             BlockEnvelope `yaml:"block" json:"block"`
	FBHDepthTolMM     float64       `yaml:"fbh_depth_tol_mm" json:"fbh_depth_tol_mm"`
	FBHDiameterTolMM  float64       `yaml:"fbh_diameter_tol_mm" json:"fbh_diameter_tol_mm"`
	SurfaceFinishRaUM float64       `yaml:"surface_finish_ra_um" json:"surface_finish_ra_um"`
	Provenance        string        `yaml:"provenance" json:"provenance"`
}

func (t Table) clone() Table {
	out := t
	out.Classes = append([]string(nil), t.Classes...)
	out.Buckets = make([]Bucket, len(t.Buckets))
	for i, b := range t.Buckets {
		fbh := make(map[string]float64, len(b.FBH))
		for k, v := range b.FBH {
			fbh[k] = v
		}
		out.Buckets[i] = Bucket{MinMM: b.MinMM, MaxMM: b.MaxMM, FBH: fbh}
	}
	return out
}

// HasClass reports whether class is defined for the table.
func (t Table) HasClass(class string) bool {
	for _, c := range t.Classes {
		if c == class {
			return true
		}
	}
	return false
}

type standardsFile struct {
	Standards map[Standard]Table `yaml:"standards"`
}

var tables = mustLoadTables()

func mustLoadTables() map[Standard]Table {
	out, err := loadTables()
	if err != nil {
		panic(fmt.Sprintf("standards: %v", err))
	}
	return out
}

func loadTables() (map[Standard]Table, error) {
	raw, err := dataFS.ReadFile("data/standards.yaml")
	if err != nil {
		return nil, fmt.Errorf("read standards table: %w", err)
	}
	var f standardsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse standards table: %w", err)
	}
	for id, t := range f.Standards {
		t.Standard = id
		if err := checkTable(t); err != nil {
			return nil, fmt.Errorf("%s: %w", id, err)
		}
		f.Standards[id] = t
	}
	return f.Standards, nil
}

func checkTable(t Table) error {
	if len(t.Buckets) == 0 {
		return fmt.Errorf("no thickness buckets")
	}
	if !t.HasClass(t.DefaultClass) {
		return fmt.Errorf("default class %q not in classes", t.DefaultClass)
	}
	if t.Units != UnitsInch64 && t.Units != UnitsMM {
		return fmt.Errorf("unsupported units %q", t.Units)
	}
	for i, b := range t.Buckets {
		if b.MaxMM <= b.MinMM {
			return fmt.Errorf("bucket %d: max %.2f <= min %.2f", i, b.MaxMM, b.MinMM)
		}
		if i > 0 && b.MinMM < t.Buckets[i-1].MaxMM {
			return fmt.Errorf("bucket %d overlaps bucket %d", i, i-1)
		}
		for _, c := range t.Classes {
			if _, ok := b.FBH[c]; !ok {
				return fmt.Errorf("bucket %d: missing class %q", i, c)
			}
		}
	}
	return nil
}

// Lookup returns a copy of the table for std.
func Lookup(std Standard) (Table, error) {
	t, ok := tables[std]
	if !ok {
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}
	return t.clone(), nil
}

// List returns every known standard, sorted.
func List() []Standard {
	out := make([]Standard, 0, len(tables))
	for id := range tables {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var aliases = map[string]Standard{
	"AMS-STD-2154":  AMS2154E,
	"AMS-STD-2154E": AMS2154E,
	"AMS-2154":      AMS2154E,
	"AMS-2154E":     AMS2154E,
	"AMS2154":       AMS2154E,
	"AMS2154E":      AMS2154E,
	"MIL-STD-2154":  MIL2154,
	"MIL-2154":      MIL2154,
	"MIL2154":       MIL2154,
	"ASTM-A388":     ASTMA388,
	"A388":          ASTMA388,
	"ASTM-A388M":    ASTMA388,
	"ASTM-E428":     ASTME428,
	"E428":          ASTME428,
	"BS-EN-10228-3": EN10228_3,
	"EN-10228-3":    EN10228_3,
	"EN10228-3":     EN10228_3,
	"BS-EN-10228-4": EN10228_4,
	"EN-10228-4":    EN10228_4,
	"EN10228-4":     EN10228_4,
	"TUV":           TUV,
	"TÜV":           TUV,
}

// Parse maps user spelling ("ams 2154e", "EN_10228-3") to a Standard.
func Parse(s string) (Standard, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "-", "_", "-").Replace(key)
	if std, ok := aliases[key]; ok {
		return std, nil
	}
	if _, ok := tables[Standard(key)]; ok {
		return Standard(key), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStandard, s)
}

// SurfaceFinish returns the block surface roughness Ra in micrometres.
func SurfaceFinish(std Standard) (float64, error) {
	t, ok := tables[std]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}
	return t.SurfaceFinishRaUM, nil
}

func MinimumBlock(std Standard) (BlockEnvelope, error) {
	t, ok := tables[std]
	if !ok {
		return BlockEnvelope{}, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}
	return t.Block, nil
}

func NotchRuleFor(std Standard) (NotchRule, error) {
	t, ok := tables[std]
	if !ok {
		return NotchRule{}, fmt.Errorf("%w: %q", ErrUnknownStandard, std)
	}
	return t.Notch, nil
}
