package ringblock

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enFeatures(t *testing.T) []HoleFeature {
	t.Helper()
	tpl, err := GetTemplate(TemplateEN)
	require.NoError(t, err)
	return tpl.Features
}

func TestFallbackDepths(t *testing.T) {
	assert.InDeltaSlice(t, []float64{1, 2.5, 4}, FallbackDepths(5, DefaultPolicy().FallbackDepthRatios), 1e-12)
	assert.Empty(t, FallbackDepths(5, nil))
}

func TestThinWallPassThrough(t *testing.T) {
	features := enFeatures(t)
	res := ApplyThinWallPolicy(features, 80, FamilyEN, DefaultPolicy())
	assert.True(t, res.Compliant)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, res.Removed)
	assert.Equal(t, 79.0, res.MaxAllowedDepthMM)
	require.Len(t, res.Features, 4)
	for i, f := range res.Features {
		assert.False(t, f.Adjusted)
		assert.Equal(t, features[i].DepthMM, f.DepthMM)
		assert.Equal(t, features[i].DepthMM, f.OriginalDepthMM)
	}
}

func TestThinWallAllAdjusted(t *testing.T) {
	features := enFeatures(t)
	res := ApplyThinWallPolicy(features, 5, FamilyEN, DefaultPolicy())

	assert.True(t, res.Compliant)
	assert.Empty(t, res.Removed)
	require.Len(t, res.Features, 4)
	for i, f := range res.Features {
		assert.True(t, f.Adjusted, f.Label)
		assert.InDelta(t, 4.0, f.DepthMM, 1e-9)
		assert.Equal(t, features[i].DepthMM, f.OriginalDepthMM)
	}
	assert.Equal(t, []Code{CodeDepthAdjusted, CodeDepthAdjusted, CodeDepthAdjusted, CodeDepthAdjusted, CodeThinWallFallback}, codes(res.Warnings))
	assert.Equal(t, SeverityInfo, res.Warnings[4].Severity)

	// input untouched
	assert.Equal(t, 70.0, features[3].DepthMM)
}

func TestThinWallMixed(t *testing.T) {
	features := []HoleFeature{
		{Label: "A", Reflector: ReflectorFBH, DiameterMM: 2, DepthMM: 0.5},
		{Label: "B", Reflector: ReflectorFBH, DiameterMM: 2, DepthMM: 3},
		{Label: "C", Reflector: ReflectorFBH, DiameterMM: 2, DepthMM: 10},
	}
	res := ApplyThinWallPolicy(features, 5, FamilyASTM, DefaultPolicy())
	require.Len(t, res.Features, 3)
	assert.False(t, res.Features[0].Adjusted)
	assert.False(t, res.Features[1].Adjusted)
	assert.True(t, res.Features[2].Adjusted)
	assert.InDelta(t, 4.0, res.Features[2].DepthMM, 1e-9)
	assert.Equal(t, []Code{CodeDepthAdjusted, CodeThinWallFallback}, codes(res.Warnings))
}

func TestThinWallRemoval(t *testing.T) {
	features := []HoleFeature{
		{Label: "A", Reflector: ReflectorFBH, DiameterMM: 2, DepthMM: 1},
		{Label: "B", Reflector: ReflectorFBH, DiameterMM: 2, DepthMM: 2},
		{Label: "C", Reflector: ReflectorFBH, DiameterMM: 2, DepthMM: 10},
	}
	p := DefaultPolicy()
	p.FallbackDepthRatios = []float64{0.9}

	res := ApplyThinWallPolicy(features, 5, FamilyASTM, p)
	assert.True(t, res.Compliant)
	assert.Equal(t, []string{"C"}, res.Removed)
	assert.Len(t, res.Features, 2)
	// no info notice once something was dropped
	assert.Equal(t, []Code{CodeReflectorRemoved}, codes(res.Warnings))
	assert.Equal(t, SeverityWarning, res.Warnings[0].Severity)
}

func TestThinWallBelowMinimumReflectors(t *testing.T) {
	res := ApplyThinWallPolicy(enFeatures(t), 1.2, FamilyEN, DefaultPolicy())
	assert.False(t, res.Compliant)
	assert.Empty(t, res.Features)
	assert.Equal(t, []string{"A", "B", "C", "D"}, res.Removed)

	last := res.Warnings[len(res.Warnings)-1]
	assert.Equal(t, CodeMinimumReflectorsUnmet, last.Code)
	assert.Equal(t, SeverityError, last.Severity)
	assert.Len(t, res.Warnings, 5)
}

func TestThinWallMinimumPerFamily(t *testing.T) {
	features := []HoleFeature{
		{Label: "A", DepthMM: 1},
		{Label: "B", DepthMM: 2},
		{Label: "C", DepthMM: 50},
	}
	p := DefaultPolicy()
	p.FallbackDepthRatios = []float64{0.95}

	// two survivors: enough for ASTM, not for EN or TUV
	assert.True(t, ApplyThinWallPolicy(features, 5, FamilyASTM, p).Compliant)
	assert.False(t, ApplyThinWallPolicy(features, 5, FamilyEN, p).Compliant)
	assert.False(t, ApplyThinWallPolicy(features, 5, FamilyTUV, p).Compliant)
	assert.True(t, ApplyThinWallPolicy(features, 5, Family("OTHER"), p).Compliant)
}

func TestThinWallMonotonic(t *testing.T) {
	features := enFeatures(t)
	p := DefaultPolicy()
	prev := len(features)
	for wall := 100.0; wall >= 0.5; wall -= 0.25 {
		n := len(ApplyThinWallPolicy(features, wall, FamilyEN, p).Features)
		assert.LessOrEqual(t, n, prev, "wall %.2f", wall)
		prev = n
	}
	assert.Zero(t, prev)
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Policy)
	}{
		{"negative margin", func(p *Policy) { p.SafetyMarginMM = -100 }},
		{"nan margin", func(p *Policy) { p.SafetyMarginMM = math.NaN() }},
		{"no ratios", func(p *Policy) { p.FallbackDepthRatios = []float64{} }},
		{"ratio of one", func(p *Policy) { p.FallbackDepthRatios = []float64{0.5, 1} }},
		{"zero ratio", func(p *Policy) { p.FallbackDepthRatios = []float64{0} }},
		{"zero minimum", func(p *Policy) { p.MinimumReflectors[FamilyEN] = 0 }},
	}
	assert.NoError(t, DefaultPolicy().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.edit(&p)
			err := p.Validate()
			assert.True(t, errors.Is(err, ErrInvalidPolicy), "%v", err)
		})
	}
}

func TestPolicyWithDefaults(t *testing.T) {
	in := Policy{SafetyMarginMM: 2, MinimumReflectors: map[Family]int{FamilyASTM: 4}}
	p := in.WithDefaults()

	assert.Equal(t, 2.0, p.SafetyMarginMM)
	assert.Equal(t, 4, p.MinimumReflectors[FamilyASTM])
	assert.Equal(t, 3, p.MinimumReflectors[FamilyEN])
	assert.Equal(t, 3, p.MinimumReflectors[FamilyTUV])
	assert.Equal(t, DefaultPolicy().FallbackDepthRatios, p.FallbackDepthRatios)
	assert.Len(t, in.MinimumReflectors, 1)
	assert.Nil(t, in.FallbackDepthRatios)

	// an explicit empty list stays empty and fails validation
	in.FallbackDepthRatios = []float64{}
	assert.Error(t, in.WithDefaults().Validate())
}
