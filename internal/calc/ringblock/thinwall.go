package ringblock

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// depthTol absorbs float noise when comparing ratio*wall with the allowed depth.
const depthTol = 1e-9

// Policy controls how nominal hole depths are handled when the wall is too
// thin for them.
type Policy struct {
	SafetyMarginMM      float64        `json:"safety_margin_mm"`
	MinimumReflectors   map[Family]int `json:"minimum_reflectors"`
	FallbackDepthRatios []float64      `json:"fallback_depth_ratios"`
}

func DefaultPolicy() Policy {
	return Policy{
		SafetyMarginMM: 1.0,
		MinimumReflectors: map[Family]int{
			FamilyEN:     3,
			FamilyASTM:   2,
			FamilyTUV:    3,
			FamilyCustom: 2,
		},
		FallbackDepthRatios: []float64{0.2, 0.5, 0.8},
	}
}

var ErrInvalidPolicy = errors.New("invalid thin-wall policy")

// WithDefaults returns a copy of p with absent family minimums and absent
// fallback ratios taken from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	def := DefaultPolicy()
	out := Policy{
		SafetyMarginMM:      p.SafetyMarginMM,
		MinimumReflectors:   make(map[Family]int, len(def.MinimumReflectors)),
		FallbackDepthRatios: append([]float64(nil), p.FallbackDepthRatios...),
	}
	for f, n := range p.MinimumReflectors {
		out.MinimumReflectors[f] = n
	}
	for f, n := range def.MinimumReflectors {
		if _, ok := out.MinimumReflectors[f]; !ok {
			out.MinimumReflectors[f] = n
		}
	}
	if p.FallbackDepthRatios == nil {
		out.FallbackDepthRatios = def.FallbackDepthRatios
	}
	return out
}

// Validate checks the margin is not negative, every fallback ratio lies in
// (0, 1) and every family minimum is at least one reflector.
func (p Policy) Validate() error {
	if p.SafetyMarginMM < 0 || math.IsNaN(p.SafetyMarginMM) || math.IsInf(p.SafetyMarginMM, 0) {
		return fmt.Errorf("%w: safety margin must be a non-negative number, got %.2f", ErrInvalidPolicy, p.SafetyMarginMM)
	}
	if len(p.FallbackDepthRatios) == 0 {
		return fmt.Errorf("%w: fallback depth ratios must not be empty", ErrInvalidPolicy)
	}
	for _, r := range p.FallbackDepthRatios {
		if !(r > 0 && r < 1) {
			return fmt.Errorf("%w: fallback depth ratio %.3f outside (0, 1)", ErrInvalidPolicy, r)
		}
	}
	for f, n := range p.MinimumReflectors {
		if n < 1 {
			return fmt.Errorf("%w: minimum reflectors for %s must be at least 1, got %d", ErrInvalidPolicy, f, n)
		}
	}
	return nil
}

func (p Policy) minimumFor(f Family) int {
	if n, ok := p.MinimumReflectors[f]; ok {
		return n
	}
	return 2
}

// AdjustedFeature is a copy of a HoleFeature after the policy ran.
type AdjustedFeature struct {
	HoleFeature
	Adjusted        bool    `json:"adjusted"`
	OriginalDepthMM float64 `json:"original_depth_mm"`
}

type ThinWallResult struct {
	Features          []AdjustedFeature `json:"features"`
	Removed           []string          `json:"removed"`
	Warnings          []Warning         `json:"warnings"`
	MaxAllowedDepthMM float64           `json:"max_allowed_depth_mm"`
	Compliant         bool              `json:"compliant"`
}

// FallbackDepths returns ratio*wall for every policy ratio.
func FallbackDepths(wallThickness float64, ratios []float64) []float64 {
	out := make([]float64, len(ratios))
	for i, r := range ratios {
		out[i] = r * wallThickness
	}
	return out
}

// ApplyThinWallPolicy adjusts or drops features whose depth does not fit in
// wallThickness minus the safety margin. Input features are never modified.
func ApplyThinWallPolicy(features []HoleFeature, wallThickness float64, family Family, p Policy) ThinWallResult {
	maxAllowed := wallThickness - p.SafetyMarginMM
	res := ThinWallResult{MaxAllowedDepthMM: maxAllowed}

	exceeds := false
	for _, f := range features {
		if f.DepthMM > maxAllowed+depthTol {
			exceeds = true
			break
		}
	}
	if !exceeds {
		for _, f := range features {
			res.Features = append(res.Features, AdjustedFeature{HoleFeature: f, OriginalDepthMM: f.DepthMM})
		}
		res.Compliant = true
		return res
	}

	candidates := FallbackDepths(wallThickness, p.FallbackDepthRatios)
	adjusted := 0
	for _, f := range features {
		if f.DepthMM <= maxAllowed+depthTol {
			res.Features = append(res.Features, AdjustedFeature{HoleFeature: f, OriginalDepthMM: f.DepthMM})
			continue
		}
		best, ok := deepestWithin(candidates, maxAllowed)
		if !ok {
			res.Removed = append(res.Removed, f.Label)
			res.Warnings = append(res.Warnings, Warning{
				Severity: SeverityWarning,
				Code:     CodeReflectorRemoved,
				Message: fmt.Sprintf("hole %s removed: nominal depth %.2f mm and every fallback depth exceed %.2f mm usable wall",
					f.Label, f.DepthMM, maxAllowed),
				Suggestion: "use a thicker block or a smaller safety margin",
			})
			continue
		}
		adjusted++
		nf := f
		nf.DepthMM = best
		res.Features = append(res.Features, AdjustedFeature{HoleFeature: nf, Adjusted: true, OriginalDepthMM: f.DepthMM})
		res.Warnings = append(res.Warnings, Warning{
			Severity: SeverityWarning,
			Code:     CodeDepthAdjusted,
			Message: fmt.Sprintf("hole %s depth %.2f mm exceeds %.2f mm usable wall, adjusted to %.2f mm",
				f.Label, f.DepthMM, maxAllowed, best),
			Suggestion: "verify the DAC range still covers the inspection zone",
		})
	}

	required := p.minimumFor(family)
	res.Compliant = len(res.Features) >= required
	if !res.Compliant {
		res.Warnings = append(res.Warnings, Warning{
			Severity: SeverityError,
			Code:     CodeMinimumReflectorsUnmet,
			Message: fmt.Sprintf("only %d reflectors remain, %s requires at least %d (removed: %s)",
				len(res.Features), family, required, strings.Join(res.Removed, ", ")),
			Suggestion: "block is not usable for calibration; increase wall thickness",
		})
	}
	if adjusted > 0 && len(res.Removed) == 0 {
		res.Warnings = append(res.Warnings, Warning{
			Severity: SeverityInfo,
			Code:     CodeThinWallFallback,
			Message: fmt.Sprintf("thin-wall fallback applied to %d holes; all reflectors retained",
				adjusted),
			Suggestion: "fallback depths are fractions of the wall thickness",
		})
	}
	return res
}

func deepestWithin(candidates []float64, limit float64) (float64, bool) {
	best, found := 0.0, false
	for _, c := range candidates {
		if c > 0 && c <= limit+depthTol && (!found || c > best) {
			best, found = c, true
		}
	}
	return best, found
}
