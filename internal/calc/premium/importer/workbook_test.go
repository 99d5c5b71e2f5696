package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/premium/autoplan"
	"ScanMaster/internal/calc/premium/batch"
	"ScanMaster/internal/calc/ringblock"
)

func partList(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f, err := NewTemplate()
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	_, err = f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func TestReadParts(t *testing.T) {
	buf := partList(t,
		[]interface{}{"PL-1", "Plate", "AMS-STD-2154E", "A", "carbon_steel", 30},
		[]interface{}{},
		[]interface{}{"T-1", "tube", "ASTM-E428", "", "", "", "", "", "26,5", "", "5"},
		[]interface{}{"bad", "", "TUV"},
		[]interface{}{"bad-num", "plate", "TUV", "", "", "abc"},
	)

	rows, errs, err := ReadParts(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, blockspec.Plate, rows[0].Part.Geometry)
	assert.Equal(t, 30.0, rows[0].Part.Dimensions.ThicknessMM)
	assert.Equal(t, 4, rows[1].Line)
	assert.Equal(t, 26.5, rows[1].Part.Dimensions.OuterDiameterMM)
	assert.Equal(t, 5.0, rows[1].Part.Dimensions.WallThicknessMM)

	require.Len(t, errs, 2)
	assert.Equal(t, 5, errs[0].Line)
	assert.Equal(t, 6, errs[1].Line)
	assert.Contains(t, errs[1].Error, "thickness_mm")
}

func TestReadPartsRejects(t *testing.T) {
	_, _, err := ReadParts(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)

	_, _, err = ReadParts(partList(t))
	assert.Error(t, err)
}

func TestWriteResults(t *testing.T) {
	rows := []Row{
		{Line: 2, Part: autoplan.Part{Reference: "PL-1", Geometry: blockspec.Plate, Dimensions: blockspec.Dimensions{ThicknessMM: 30}, Standard: "AMS-STD-2154E", AcceptanceClass: "A"}},
		{Line: 3, Part: autoplan.Part{Reference: "X", Geometry: "torus", Standard: "TUV"}},
	}
	res, err := batch.Run(context.Background(), []autoplan.Part{rows[0].Part, rows[1].Part}, ringblock.DefaultPolicy(), 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, rows, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.GetRows("Plans")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "line", got[0][0])
	assert.Equal(t, []string{"2", "PL-1", "flat_fbh", "AMS-STD-2154E", "5", "1.98"}, got[1][:6])
	assert.Equal(t, "3", got[2][0])
	assert.Contains(t, got[2][len(got[2])-1], "torus")
}

func upload(t *testing.T, h *Handler, url string, body *bytes.Buffer) *httptest.ResponseRecorder {
	t.Helper()
	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	fw, err := mw.CreateFormFile("file", "parts.xlsx")
	require.NoError(t, err)
	_, err = fw.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.Parts(rec, req)
	return rec
}

func TestHandlerParts(t *testing.T) {
	h := &Handler{}
	list := func() *bytes.Buffer {
		return partList(t,
			[]interface{}{"PL-1", "plate", "AMS-STD-2154E", "A", "", 30},
			[]interface{}{"R-1", "ring", "EN 10228-3", "", "", "", 80, "", 400, 240},
			[]interface{}{"bad", "", ""},
		)
	}

	rec := upload(t, h, "/import/parts", list())
	require.Equal(t, http.StatusOK, rec.Code)
	var out ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 2, out.Count)
	assert.Len(t, out.Skipped, 1)
	assert.Equal(t, 2, out.Batch.Succeeded)
	require.NotNil(t, out.Batch.Items[1].Plan.RingBlock)
	assert.Equal(t, ringblock.TemplateEN, out.Batch.Items[1].Plan.RingBlock.TemplateID)

	rec = upload(t, h, "/import/parts?format=xlsx", list())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxType, rec.Header().Get("Content-Type"))
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Plans")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestHandlerTemplate(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handler{}).Template(rec, httptest.NewRequest(http.MethodGet, "/import/template", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, Columns, rows[0])
}
