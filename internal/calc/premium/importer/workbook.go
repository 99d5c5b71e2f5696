// Package importer reads part lists from XLSX workbooks and writes batch
// plans back as XLSX.
package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/premium/autoplan"
	"ScanMaster/internal/calc/premium/batch"
)

// Columns of the part list, in sheet order. Only geometry and standard are
// required.
var Columns = []string{
	"reference", "geometry", "standard", "class", "material",
	"thickness_mm", "length_mm", "width_mm", "od_mm", "id_mm", "wall_mm",
}

const (
	colReference = iota
	colGeometry
	colStandard
	colClass
	colMaterial
	colThickness
	colLength
	colWidth
	colOD
	colID
	colWall
)

// Row is a parsed part with its 1-based sheet line.
type Row struct {
	Line int           `json:"line"`
	Part autoplan.Part `json:"part"`
}

type RowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// toFloat accepts a decimal comma; an empty cell is zero.
func toFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func parseRow(row []string) (autoplan.Part, error) {
	p := autoplan.Part{
		Reference:       cell(row, colReference),
		Geometry:        blockspec.PartGeometry(strings.ToLower(cell(row, colGeometry))),
		Standard:        cell(row, colStandard),
		AcceptanceClass: cell(row, colClass),
		Material:        cell(row, colMaterial),
	}
	if p.Geometry == "" || p.Standard == "" {
		return autoplan.Part{}, fmt.Errorf("geometry and standard required")
	}
	dims := []struct {
		col int
		dst *float64
	}{
		{colThickness, &p.Dimensions.ThicknessMM},
		{colLength, &p.Dimensions.LengthMM},
		{colWidth, &p.Dimensions.WidthMM},
		{colOD, &p.Dimensions.OuterDiameterMM},
		{colID, &p.Dimensions.InnerDiameterMM},
		{colWall, &p.Dimensions.WallThicknessMM},
	}
	for _, d := range dims {
		v, err := toFloat(cell(row, d.col))
		if err != nil {
			return autoplan.Part{}, fmt.Errorf("%s: %q is not a number", Columns[d.col], cell(row, d.col))
		}
		*d.dst = v
	}
	return p, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadParts parses the first sheet. The first row is a header and is
// skipped. Blank rows are ignored; malformed rows are reported, not fatal.
func ReadParts(r io.Reader) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	var (
		out  []Row
		errs []RowError
	)
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		p, err := parseRow(rows[i])
		if err != nil {
			errs = append(errs, RowError{Line: i + 1, Error: err.Error()})
			continue
		}
		out = append(out, Row{Line: i + 1, Part: p})
	}
	return out, errs, nil
}

// NewTemplate returns an empty part list with the header row.
func NewTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

var resultColumns = []interface{}{
	"line", "reference", "block_type", "standard", "fbh_number", "fbh_diameter_mm", "fbh_depths_mm",
	"block_l_w_h_mm", "shear_wave_master", "shear_wave_quality", "tube_reference", "ring_template",
	"compliant", "warnings", "error",
}

// WriteResults writes one result line per imported row. rows and res.Items
// must be index aligned, as batch.Run returns them.
func WriteResults(w io.Writer, rows []Row, res batch.Result) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Plans"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &resultColumns); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, it := range res.Items {
		line := 0
		if i < len(rows) {
			line = rows[i].Line
		}
		values := resultRow(line, it)
		cellName, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cellName, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "O", 16); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func resultRow(line int, it batch.Item) []interface{} {
	if it.Plan == nil {
		return []interface{}{line, "", "", "", "", "", "", "", "", "", "", "", false, "", it.Error}
	}
	p := it.Plan
	depths := make([]string, len(p.Spec.FBH.DepthsMM))
	for i, d := range p.Spec.FBH.DepthsMM {
		depths[i] = strconv.FormatFloat(d, 'f', -1, 64)
	}
	d := p.Spec.Dimensions
	var master, quality, tube, ring string
	if p.ShearWave != nil {
		quality = string(p.ShearWave.MatchQuality)
		if p.ShearWave.Block != nil {
			master = p.ShearWave.Block.ID
		}
	}
	if p.TubeReference != nil {
		tube = "custom"
		if p.TubeReference.Tube != nil {
			tube = p.TubeReference.Tube.ID
		}
	}
	if p.RingBlock != nil {
		ring = p.RingBlock.TemplateID
	}
	warnings := append([]string(nil), p.Spec.Warnings...)
	warnings = append(warnings, p.Warnings...)
	return []interface{}{
		line, p.Reference, string(p.Spec.BlockType), string(p.Spec.Standard),
		p.Spec.FBH.Number, p.Spec.FBH.DiameterMM, strings.Join(depths, "; "),
		fmt.Sprintf("%g x %g x %g", d.LengthMM, d.WidthMM, d.HeightMM),
		master, quality, tube, ring, p.Compliant, strings.Join(warnings, "; "), "",
	}
}
