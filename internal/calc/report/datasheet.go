// Package report renders calibration block datasheets as PDF.
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/geometry"
	"ScanMaster/internal/calc/ringblock"
)

type Input struct {
	Project   string                    `json:"project"`
	Author    string                    `json:"author"`
	Title     string                    `json:"title"`
	Notes     string                    `json:"notes"`
	RingBlock *ringblock.ResolveRequest `json:"ring_block,omitempty"`
	BlockSpec *blockspec.Input          `json:"block_spec,omitempty"`
}

// Datasheet is everything a PDF is rendered from.
type Datasheet struct {
	DocumentID string
	Issued     time.Time
	Input      Input
	Block      *ringblock.ResolvedBlock
	Spec       *blockspec.Specification
}

var ErrNothingToReport = errors.New("report needs a ring block or a block specification")

// Prepare resolves the requested blocks. p applies to ring blocks whose
// request carries no policy of its own.
func Prepare(in Input, p ringblock.Policy, now time.Time) (Datasheet, error) {
	if in.RingBlock == nil && in.BlockSpec == nil {
		return Datasheet{}, ErrNothingToReport
	}
	if in.Title == "" {
		in.Title = "Calibration Block Datasheet"
	}
	ds := Datasheet{DocumentID: "CB-" + strings.ToUpper(uuid.NewString()[:8]), Issued: now, Input: in}
	if in.RingBlock != nil {
		b, err := in.RingBlock.Resolve(p)
		if err != nil {
			return Datasheet{}, fmt.Errorf("ring block: %w", err)
		}
		ds.Block = &b
	}
	if in.BlockSpec != nil {
		s, err := blockspec.Calculate(*in.BlockSpec)
		if err != nil {
			return Datasheet{}, fmt.Errorf("block specification: %w", err)
		}
		ds.Spec = &s
	}
	return ds, nil
}

const (
	pageW     = 210.0
	margin    = 15.0
	lineH     = 6.0
	viewH     = 80.0
	minHoleMM = 0.8
)

// Render writes ds as an A4 PDF.
func Render(w io.Writer, ds Datasheet) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%s  page %d", ds.DocumentID, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, ds.Input.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	for _, l := range [][2]string{
		{"Document", ds.DocumentID},
		{"Project", ds.Input.Project},
		{"Author", ds.Input.Author},
		{"Date", ds.Issued.Format("2006-01-02")},
	} {
		pdf.Cell(0, lineH, fmt.Sprintf("%s: %s", l[0], l[1]))
		pdf.Ln(lineH)
	}
	pdf.Ln(4)

	if ds.Block != nil {
		ringSection(pdf, *ds.Block)
	}
	if ds.Spec != nil {
		specSection(pdf, *ds.Spec)
	}
	if ds.Input.Notes != "" {
		heading(pdf, "Notes")
		pdf.MultiCell(0, lineH, ds.Input.Notes, "", "L", false)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func heading(pdf *gofpdf.Fpdf, s string) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, s)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
}

func table(pdf *gofpdf.Fpdf, widths []float64, header []string, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range header {
		pdf.CellFormat(widths[i], lineH, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, c := range row {
			pdf.CellFormat(widths[i], lineH, c, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(2)
}

func mm(v float64) string { return fmt.Sprintf("%.2f", v) }

func ringSection(pdf *gofpdf.Fpdf, b ringblock.ResolvedBlock) {
	heading(pdf, fmt.Sprintf("Ring segment block %s", b.TemplateID))
	pdf.MultiCell(0, lineH, fmt.Sprintf("%s (%s, %s)", b.TemplateName, b.Family, b.StandardRef), "", "L", false)

	g, c := b.Geometry, b.Calculated
	table(pdf, []float64{30, 30, 30, 30, 30, 30},
		[]string{"OD", "ID", "Wall", "Axial", "Angle", "Arc"},
		[][]string{{mm(g.OuterDiameterMM), mm(g.InnerDiameterMM), mm(c.WallThicknessMM),
			mm(g.AxialWidthMM), fmt.Sprintf("%.1f deg", g.SegmentAngleDeg), mm(c.ArcLengthMM)}})

	rows := make([][]string, 0, len(b.Holes))
	for _, h := range b.Holes {
		depth := mm(h.DepthMM)
		if h.Adjusted {
			depth = fmt.Sprintf("%s (%s)", depth, mm(h.OriginalDepthMM))
		}
		rows = append(rows, []string{h.Label, string(h.Reflector), mm(h.DiameterMM), depth,
			fmt.Sprintf("%.2f", h.AngleDeg), mm(h.AxialPositionMM), mm(h.ArcPositionMM)})
	}
	table(pdf, []float64{18, 18, 22, 38, 24, 30, 30},
		[]string{"Hole", "Type", "Dia", "Depth (nominal)", "Angle", "Axial", "Arc pos"}, rows)

	planView(pdf, b)

	status := "compliant"
	if !b.Compliant {
		status = "NOT compliant"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, lineH, "Status: "+status)
	pdf.Ln(lineH)
	pdf.SetFont("Helvetica", "", 9)
	for _, w := range b.Warnings {
		pdf.MultiCell(0, 5, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message), "", "L", false)
	}
}

// planView draws the segment outline and hole positions scaled into the
// page width.
func planView(pdf *gofpdf.Fpdf, b ringblock.ResolvedBlock) {
	outerR, innerR := b.Calculated.OuterRadiusMM, b.Calculated.InnerRadiusMM
	angle := b.Geometry.SegmentAngleDeg
	if outerR <= 0 || angle <= 0 {
		return
	}
	if pdf.GetY()+viewH > 297-margin {
		pdf.AddPage()
	}
	x0, y0 := margin, pdf.GetY()
	viewW := pageW - 2*margin
	box := geometry.SegmentBoundingBox(geometry.Point2D{}, outerR, innerR, 0, angle)
	scale := geometry.OptimalScale(box, viewW, viewH, 5)
	toPage := func(p geometry.Point2D) gofpdf.PointType {
		return gofpdf.PointType{X: x0 + 5 + (p.X-box.Min.X)*scale, Y: y0 + 5 + (p.Y-box.Min.Y)*scale}
	}

	steps := int(angle) + 1
	outline := make([]gofpdf.PointType, 0, 2*steps+2)
	for i := 0; i <= steps; i++ {
		outline = append(outline, toPage(geometry.PolarToCartesian(geometry.Point2D{}, outerR, angle*float64(i)/float64(steps))))
	}
	for i := steps; i >= 0; i-- {
		outline = append(outline, toPage(geometry.PolarToCartesian(geometry.Point2D{}, innerR, angle*float64(i)/float64(steps))))
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.3)
	pdf.Polygon(outline, "D")

	pdf.SetDrawColor(200, 0, 0)
	pdf.SetFont("Helvetica", "", 7)
	for _, h := range b.Holes {
		p := toPage(h.TopView)
		r := h.DiameterMM / 2 * scale
		if r < minHoleMM {
			r = minHoleMM
		}
		pdf.Circle(p.X, p.Y, r, "D")
		pdf.Text(p.X+r+0.5, p.Y, h.Label)
	}
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetY(y0 + viewH + 2)
}

func specSection(pdf *gofpdf.Fpdf, s blockspec.Specification) {
	heading(pdf, fmt.Sprintf("Reference block %s to %s", s.BlockType, s.Standard))
	d := s.Dimensions
	pdf.MultiCell(0, lineH, fmt.Sprintf("Section thickness %s mm, material %s, surface Ra %.1f um",
		mm(s.SectionThicknessMM), s.Material.Name, d.SurfaceFinishRaUM), "", "L", false)

	header := []string{"Length", "Width", "Height"}
	row := []string{
		fmt.Sprintf("%s +/-%s", mm(d.LengthMM), mm(d.LengthTolMM)),
		fmt.Sprintf("%s +/-%s", mm(d.WidthMM), mm(d.WidthTolMM)),
		fmt.Sprintf("%s +/-%s", mm(d.HeightMM), mm(d.HeightTolMM)),
	}
	widths := []float64{60, 60, 60}
	if s.BlockType.Curved() {
		header = append(header, "OD", "ID", "Arc")
		row = append(row, mm(d.OuterDiameterMM), mm(d.InnerDiameterMM), fmt.Sprintf("%.0f deg", d.ArcAngleDeg))
		widths = []float64{36, 36, 36, 24, 24, 24}
	}
	table(pdf, widths, header, [][]string{row})

	f := s.FBH
	depths := make([]string, len(f.DepthsMM))
	for i, v := range f.DepthsMM {
		depths[i] = mm(v)
	}
	pdf.MultiCell(0, lineH, fmt.Sprintf("FBH #%d (%s mm +/-%s), class %s, %d holes at %s mm (+/-%s)",
		f.Number, mm(f.DiameterMM), mm(f.DiameterTolMM), f.Class, f.Count, strings.Join(depths, ", "), mm(f.DepthTolMM)),
		"", "L", false)

	if len(s.Notches) > 0 {
		rows := make([][]string, 0, len(s.Notches))
		for _, n := range s.Notches {
			rows = append(rows, []string{string(n.Location), string(n.Orientation), mm(n.DepthMM),
				fmt.Sprintf("%.1f%%", n.DepthPercent), mm(n.LengthMM), mm(n.WidthMM), fmt.Sprintf("%.0f", n.AngleDeg)})
		}
		table(pdf, []float64{20, 36, 24, 24, 26, 26, 24},
			[]string{"Surface", "Orientation", "Depth", "% wall", "Length", "Width", "Angle"}, rows)
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, w := range s.Warnings {
		pdf.MultiCell(0, 5, "Warning: "+w, "", "L", false)
	}
	for _, n := range s.Notes {
		pdf.MultiCell(0, 5, n, "", "L", false)
	}
}
