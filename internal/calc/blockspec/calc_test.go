package blockspec

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScanMaster/internal/standards"
)

func TestCalculatePlateAMSClassA(t *testing.T) {
	spec, err := Calculate(Input{
		Geometry:        Plate,
		Dimensions:      Dimensions{ThicknessMM: 30},
		Standard:        "AMS-STD-2154E",
		AcceptanceClass: "A",
		Material:        "carbon_steel",
	})
	require.NoError(t, err)

	assert.Equal(t, FlatFBH, spec.BlockType)
	assert.Equal(t, standards.AMS2154E, spec.Standard)
	assert.Equal(t, 5, spec.FBH.Number)
	assert.Equal(t, 1.98, spec.FBH.DiameterMM)
	assert.Equal(t, "A", spec.FBH.Class)
	assert.Equal(t, 25.4, spec.FBH.BucketMinMM)
	assert.Equal(t, 50.8, spec.FBH.BucketMaxMM)
	assert.Equal(t, []float64{3.75, 7.5, 15, 22.5}, spec.FBH.DepthsMM)
	assert.Equal(t, 4, spec.FBH.Count)

	assert.Equal(t, 40.0, spec.Dimensions.HeightMM)
	assert.Equal(t, 100.0, spec.Dimensions.LengthMM)
	assert.Equal(t, 60.0, spec.Dimensions.WidthMM)
	assert.Zero(t, spec.Dimensions.ArcAngleDeg)
	assert.Equal(t, 3.2, spec.Dimensions.SurfaceFinishRaUM)

	assert.Empty(t, spec.Notches)
	assert.Empty(t, spec.Warnings)
	require.Len(t, spec.Notes, 3)
	assert.Contains(t, spec.Notes[2], "AMS-STD-2154E")
	assert.Equal(t, "carbon_steel", spec.Material.Key)
}

func TestCalculateThinTube(t *testing.T) {
	spec, err := Calculate(Input{
		Geometry:        Tube,
		Dimensions:      Dimensions{OuterDiameterMM: 60, InnerDiameterMM: 50},
		Standard:        "ams 2154e",
		AcceptanceClass: "A",
	})
	require.NoError(t, err)

	assert.Equal(t, CylinderNotched, spec.BlockType)
	assert.Equal(t, 5.0, spec.SectionThicknessMM)
	assert.Equal(t, 60.0, spec.Dimensions.OuterDiameterMM)
	assert.Equal(t, 50.0, spec.Dimensions.InnerDiameterMM)
	assert.Equal(t, 90.0, spec.Dimensions.ArcAngleDeg)
	assert.Equal(t, 0.1, spec.Dimensions.DiameterTolMM)
	assert.Equal(t, 25.0, spec.Dimensions.HeightMM)

	assert.Equal(t, 3, spec.FBH.Number)
	assert.Equal(t, 1.19, spec.FBH.DiameterMM)
	assert.Equal(t, []float64{1.25, 2.5, 3.75}, spec.FBH.DepthsMM)

	require.Len(t, spec.Notches, 4)
	want := []struct {
		loc NotchLocation
		o   NotchOrientation
	}{{NotchOD, NotchAxial}, {NotchOD, NotchCircumferential}, {NotchID, NotchAxial}, {NotchID, NotchCircumferential}}
	for i, n := range spec.Notches {
		assert.Equal(t, want[i].loc, n.Location)
		assert.Equal(t, want[i].o, n.Orientation)
		assert.Equal(t, 0.15, n.DepthMM)
		assert.Equal(t, 3.0, n.DepthPercent)
	}
	require.Len(t, spec.Warnings, 1)
	assert.Contains(t, spec.Warnings[0], "thin wall")
	// no material given: carbon steel without a warning
	assert.Equal(t, standards.DefaultMaterial, spec.Material.Key)
}

func TestCalculateNotchesClamp(t *testing.T) {
	tests := []struct {
		std   standards.Standard
		wall  float64
		depth float64
	}{
		{standards.AMS2154E, 2, 0.1},
		{standards.AMS2154E, 20, 0.6},
		{standards.AMS2154E, 40, 1.0},
		{standards.ASTMA388, 20, 0.6},
		{standards.ASTMA388, 500, 6.35},
		{standards.ASTME428, 24, 1.2},
	}
	for _, tt := range tests {
		notches, err := CalculateNotches(tt.std, tt.wall)
		require.NoError(t, err)
		require.Len(t, notches, 4)
		assert.Equal(t, tt.depth, notches[0].DepthMM, "%s wall %.1f", tt.std, tt.wall)
	}

	_, err := CalculateNotches(standards.AMS2154E, 0)
	assert.Error(t, err)
	_, err = CalculateNotches("NOPE", 5)
	assert.True(t, errors.Is(err, standards.ErrUnknownStandard))
}

func TestClassifyBlockType(t *testing.T) {
	tests := []struct {
		g    PartGeometry
		d    Dimensions
		want BlockType
	}{
		{Tube, Dimensions{WallThicknessMM: 24.9}, CylinderNotched},
		{Pipe, Dimensions{OuterDiameterMM: 200, InnerDiameterMM: 150}, CylinderFBH},
		{Ring, Dimensions{WallThicknessMM: 25}, CylinderFBH},
		{Tube, Dimensions{OuterDiameterMM: 60}, CylinderFBH},
		{RoundBar, Dimensions{OuterDiameterMM: 49.9}, CurvedFBH},
		{Shaft, Dimensions{OuterDiameterMM: 50}, FlatFBH},
		{Plate, Dimensions{ThicknessMM: 10}, FlatFBH},
		{Disk, Dimensions{ThicknessMM: 10}, FlatFBH},
		{Bar, Dimensions{ThicknessMM: 10}, FlatFBH},
		{Sphere, Dimensions{}, CustomBlock},
		{Cone, Dimensions{}, CustomBlock},
		{Pyramid, Dimensions{}, CustomBlock},
	}
	for _, tt := range tests {
		got, err := ClassifyBlockType(tt.g, tt.d)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %+v", tt.g, tt.d)
	}

	_, err := ClassifyBlockType("torus", Dimensions{})
	assert.True(t, errors.Is(err, ErrUnknownGeometry))
}

func TestDACDepthTiers(t *testing.T) {
	assert.Len(t, DACDepths(24.99), 3)
	assert.Len(t, DACDepths(25), 4)
	assert.Len(t, DACDepths(74.99), 4)
	assert.Len(t, DACDepths(75), 5)
	assert.Len(t, DACDepths(149.99), 5)
	assert.Len(t, DACDepths(150), 6)
	assert.Equal(t, []float64{10, 20, 50, 100, 150, 180}, DACDepths(200))
}

func TestCalculateRoundBar(t *testing.T) {
	spec, err := Calculate(Input{Geometry: RoundBar, Dimensions: Dimensions{OuterDiameterMM: 40}, Standard: "ASTM-A388"})
	require.NoError(t, err)
	assert.Equal(t, CurvedFBH, spec.BlockType)
	assert.Equal(t, 40.0, spec.SectionThicknessMM)
	assert.Equal(t, 90.0, spec.Dimensions.ArcAngleDeg)
	assert.Equal(t, "B", spec.FBH.Class)
	// no class asked for: default class without a warning
	assert.Empty(t, spec.Warnings)

	spec, err = Calculate(Input{Geometry: RoundBar, Dimensions: Dimensions{OuterDiameterMM: 40}, Standard: "ASTM-A388", AcceptanceClass: "AAA"})
	require.NoError(t, err)
	assert.Equal(t, "B", spec.FBH.Class)
	require.Len(t, spec.Warnings, 1)
	assert.Contains(t, spec.Warnings[0], `class "AAA"`)
}

func TestCalculateWarnings(t *testing.T) {
	t.Run("thick section", func(t *testing.T) {
		spec, err := Calculate(Input{Geometry: Plate, Dimensions: Dimensions{ThicknessMM: 200}, Standard: "AMS-STD-2154E", AcceptanceClass: "A"})
		require.NoError(t, err)
		assert.Equal(t, 8, spec.FBH.Number)
		require.Len(t, spec.Warnings, 1)
		assert.Contains(t, spec.Warnings[0], "thick section")
		assert.Equal(t, 250.0, spec.Dimensions.HeightMM)
		assert.Equal(t, 600.0, spec.Dimensions.LengthMM)
		assert.Equal(t, 400.0, spec.Dimensions.WidthMM)
	})
	t.Run("outside buckets", func(t *testing.T) {
		spec, err := Calculate(Input{Geometry: Plate, Dimensions: Dimensions{ThicknessMM: 300}, Standard: "AMS-STD-2154E", AcceptanceClass: "A"})
		require.NoError(t, err)
		assert.Equal(t, 152.4, spec.FBH.BucketMinMM)
		assert.Contains(t, strings.Join(spec.Warnings, "\n"), "outside the tabulated ranges")
	})
	t.Run("austenitic", func(t *testing.T) {
		spec, err := Calculate(Input{Geometry: Plate, Dimensions: Dimensions{ThicknessMM: 30}, Standard: "AMS-STD-2154E", AcceptanceClass: "A", Material: "Stainless 304"})
		require.NoError(t, err)
		assert.True(t, spec.Material.Austenitic)
		assert.Contains(t, strings.Join(spec.Warnings, "\n"), "austenitic")
	})
	t.Run("unknown material", func(t *testing.T) {
		spec, err := Calculate(Input{Geometry: Plate, Dimensions: Dimensions{ThicknessMM: 30}, Standard: "AMS-STD-2154E", AcceptanceClass: "A", Material: "unobtainium"})
		require.NoError(t, err)
		assert.Equal(t, standards.DefaultMaterial, spec.Material.Key)
		assert.Contains(t, strings.Join(spec.Warnings, "\n"), "unobtainium")
	})
	t.Run("custom shape", func(t *testing.T) {
		spec, err := Calculate(Input{Geometry: Sphere, Dimensions: Dimensions{ThicknessMM: 60}, Standard: "TUV", AcceptanceClass: "2"})
		require.NoError(t, err)
		assert.Equal(t, CustomBlock, spec.BlockType)
		assert.Contains(t, strings.Join(spec.Warnings, "\n"), "part contour")
	})
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"unknown standard", Input{Geometry: Plate, Dimensions: Dimensions{ThicknessMM: 10}, Standard: "ISO-0000"}},
		{"unknown geometry", Input{Geometry: "torus", Dimensions: Dimensions{ThicknessMM: 10}, Standard: "TUV"}},
		{"no thickness", Input{Geometry: Plate, Standard: "TUV"}},
		{"id over od", Input{Geometry: Tube, Dimensions: Dimensions{OuterDiameterMM: 50, InnerDiameterMM: 60}, Standard: "TUV"}},
		{"negative wall", Input{Geometry: Tube, Dimensions: Dimensions{WallThicknessMM: -1, ThicknessMM: 5}, Standard: "TUV"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestHandlerCalc(t *testing.T) {
	h := &Handler{}

	rec := httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/block-spec/calc",
		strings.NewReader(`{"geometry":"plate","dimensions":{"thickness_mm":30},"standard":"AMS-STD-2154E","acceptance_class":"A"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"block_type":"flat_fbh"`)

	rec = httptest.NewRecorder()
	h.Calc(rec, httptest.NewRequest(http.MethodPost, "/block-spec/calc", strings.NewReader(`{"geometry":"torus"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
