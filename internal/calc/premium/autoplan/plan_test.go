package autoplan

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/ringblock"
)

func TestBuildPlate(t *testing.T) {
	plan, err := Build(Part{
		Reference:       "PL-1",
		Geometry:        blockspec.Plate,
		Dimensions:      blockspec.Dimensions{ThicknessMM: 30},
		Standard:        "AMS-STD-2154E",
		AcceptanceClass: "A",
	}, ringblock.DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, "PL-1", plan.Reference)
	assert.Equal(t, blockspec.FlatFBH, plan.Spec.BlockType)
	assert.Nil(t, plan.ShearWave)
	assert.Nil(t, plan.TubeReference)
	assert.Nil(t, plan.RingBlock)
	assert.True(t, plan.Compliant)
}

func TestBuildTube(t *testing.T) {
	plan, err := Build(Part{
		Geometry:   blockspec.Tube,
		Dimensions: blockspec.Dimensions{OuterDiameterMM: 26.5, WallThicknessMM: 5},
		Standard:   "ASTM-E428",
	}, ringblock.DefaultPolicy())
	require.NoError(t, err)
	require.NotNil(t, plan.ShearWave)
	assert.Equal(t, "SWM-026", plan.ShearWave.Block.ID)
	// wall far from every stock tube
	require.NotNil(t, plan.TubeReference)
	assert.True(t, plan.TubeReference.Custom)
	assert.Equal(t, 26.5, plan.TubeReference.ODMM)
	// no ID given: no ring segment
	assert.Nil(t, plan.RingBlock)
	assert.True(t, plan.Compliant)
}

func TestBuildRing(t *testing.T) {
	plan, err := Build(Part{
		Geometry:   blockspec.Ring,
		Dimensions: blockspec.Dimensions{OuterDiameterMM: 400, InnerDiameterMM: 240, LengthMM: 80},
		Standard:   "EN 10228-3",
	}, ringblock.DefaultPolicy())
	require.NoError(t, err)
	require.NotNil(t, plan.Recommendation)
	assert.Equal(t, ringblock.TemplateEN, plan.Recommendation.TemplateID)
	require.NotNil(t, plan.RingBlock)
	assert.Len(t, plan.RingBlock.Holes, 4)
	require.NotNil(t, plan.ShearWave)
	assert.Equal(t, "SWM-400", plan.ShearWave.Block.ID)
	assert.Nil(t, plan.TubeReference)
}

func TestBuildNoShearWaveCoverage(t *testing.T) {
	plan, err := Build(Part{
		Geometry:   blockspec.RoundBar,
		Dimensions: blockspec.Dimensions{OuterDiameterMM: 20},
		Standard:   "ASTM-A388",
	}, ringblock.DefaultPolicy())
	require.NoError(t, err)
	require.NotNil(t, plan.ShearWave)
	assert.Nil(t, plan.ShearWave.Block)
	assert.False(t, plan.Compliant)
}

func TestBuildError(t *testing.T) {
	_, err := Build(Part{Geometry: "torus", Standard: "TUV"}, ringblock.DefaultPolicy())
	assert.Error(t, err)
}

func TestHandlerPlan(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Plan(rec, httptest.NewRequest(http.MethodPost, "/autoplan",
		strings.NewReader(`{"reference":"R1","geometry":"plate","dimensions":{"thickness_mm":30},"standard":"TUV"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reference":"R1"`)

	rec = httptest.NewRecorder()
	h.Plan(rec, httptest.NewRequest(http.MethodPost, "/autoplan", strings.NewReader(`{"geometry":"plate"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
