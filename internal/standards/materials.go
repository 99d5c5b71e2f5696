package standards

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Material struct {
	Key                    string  `yaml:"-" json:"key"`
	Name                   string  `yaml:"name" json:"name"`
	LongitudinalVelocityMS float64 `yaml:"longitudinal_velocity_ms" json:"longitudinal_velocity_ms"`
	ShearVelocityMS        float64 `yaml:"shear_velocity_ms" json:"shear_velocity_ms"`
	DensityGCM3            float64 `yaml:"density_g_cm3" json:"density_g_cm3"`
	Austenitic             bool    `yaml:"austenitic" json:"austenitic"`
}

// AcousticImpedanceMRayl is density times longitudinal velocity.
func (m Material) AcousticImpedanceMRayl() float64 {
	// g/cm3 * m/s = 1e3 kg/m3 * m/s; 1 MRayl = 1e6 kg/(m2 s)
	return m.DensityGCM3 * m.LongitudinalVelocityMS / 1000
}

const DefaultMaterial = "carbon_steel"

var materials = mustLoadMaterials()

func mustLoadMaterials() map[string]Material {
	raw, err := dataFS.ReadFile("data/materials.yaml")
	if err != nil {
		panic(fmt.Sprintf("standards: read materials: %v", err))
	}
	var f struct {
		Materials map[string]Material `yaml:"materials"`
	}
	if err := yaml.Unmarshal(raw, &f); err != nil {
		panic(fmt.Sprintf("standards: parse materials: %v", err))
	}
	for k, m := range f.Materials {
		m.Key = k
		f.Materials[k] = m
	}
	if _, ok := f.Materials[DefaultMaterial]; !ok {
		panic("standards: default material missing")
	}
	return f.Materials
}

func materialKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// LookupMaterial finds a material by key, case and separator insensitive.
func LookupMaterial(name string) (Material, error) {
	m, ok := materials[materialKey(name)]
	if !ok {
		return Material{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, name)
	}
	return m, nil
}

func Materials() []Material {
	out := make([]Material, 0, len(materials))
	for _, m := range materials {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
