package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ScanMaster/internal/calc/blockspec"
	"ScanMaster/internal/calc/premium/autoplan"
	"ScanMaster/internal/calc/premium/batch"
	"ScanMaster/internal/calc/premium/importer"
	"ScanMaster/internal/calc/report"
	"ScanMaster/internal/calc/ringblock"
	"ScanMaster/internal/calc/shearwave"
)

func (a *app) templatesCmd() *cobra.Command {
	var family string
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List built-in ring-segment templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if family != "" {
				return printJSON(cmd.OutOrStdout(), ringblock.ListByFamily(ringblock.Family(family)))
			}
			out := make([]ringblock.Template, 0)
			for _, id := range ringblock.ListIDs() {
				t, err := ringblock.GetTemplate(id)
				if err != nil {
					return err
				}
				out = append(out, t)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&family, "family", "", "only templates of this family (EN, ASTM, TUV)")
	return cmd
}

func (a *app) resolveCmd() *cobra.Command {
	var (
		file     string
		template string
		od, id   float64
		axial    float64
		angle    float64
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a ring-segment template with optional geometry overrides",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req ringblock.ResolveRequest
			if file != "" {
				if err := readJSON(cmd, file, &req); err != nil {
					return err
				}
			} else {
				req.TemplateID = template
			}
			var o ringblock.GeometryOverride
			flags := cmd.Flags()
			set := func(name string, v float64, dst **float64) {
				if flags.Changed(name) {
					*dst = &v
				}
			}
			set("od", od, &o.OuterDiameterMM)
			set("id", id, &o.InnerDiameterMM)
			set("axial-width", axial, &o.AxialWidthMM)
			set("angle", angle, &o.SegmentAngleDeg)
			if o != (ringblock.GeometryOverride{}) {
				if req.Override == nil {
					req.Override = &ringblock.GeometryOverride{}
				}
				mergeFlags(req.Override, o)
			}

			block, err := req.Resolve(a.policy)
			if err != nil {
				return err
			}
			a.log.Debug("resolved", zap.String("template", block.TemplateID), zap.Bool("compliant", block.Compliant))
			return printJSON(cmd.OutOrStdout(), block)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON resolve request (- for stdin)")
	cmd.Flags().StringVarP(&template, "template", "t", ringblock.TemplateEN, "template id")
	cmd.Flags().Float64Var(&od, "od", 0, "outer diameter override, mm")
	cmd.Flags().Float64Var(&id, "id", 0, "inner diameter override, mm")
	cmd.Flags().Float64Var(&axial, "axial-width", 0, "axial width override, mm")
	cmd.Flags().Float64Var(&angle, "angle", 0, "segment angle override, degrees")
	return cmd
}

// mergeFlags copies the flag values that were set over dst.
func mergeFlags(dst *ringblock.GeometryOverride, flags ringblock.GeometryOverride) {
	if flags.OuterDiameterMM != nil {
		dst.OuterDiameterMM = flags.OuterDiameterMM
	}
	if flags.InnerDiameterMM != nil {
		dst.InnerDiameterMM = flags.InnerDiameterMM
	}
	if flags.AxialWidthMM != nil {
		dst.AxialWidthMM = flags.AxialWidthMM
	}
	if flags.SegmentAngleDeg != nil {
		dst.SegmentAngleDeg = flags.SegmentAngleDeg
	}
}

func (a *app) specCmd() *cobra.Command {
	var in blockspec.Input
	var geometry string
	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Size a reference block for a part",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Geometry = blockspec.PartGeometry(geometry)
			spec, err := blockspec.Calculate(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), spec)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&geometry, "geometry", "g", string(blockspec.Plate), "part geometry")
	f.StringVarP(&in.Standard, "standard", "s", "", "governing standard")
	f.StringVarP(&in.AcceptanceClass, "class", "c", "", "acceptance class")
	f.StringVarP(&in.Material, "material", "m", "", "material key")
	f.Float64Var(&in.Dimensions.ThicknessMM, "thickness", 0, "section thickness, mm")
	f.Float64Var(&in.Dimensions.LengthMM, "length", 0, "length, mm")
	f.Float64Var(&in.Dimensions.WidthMM, "width", 0, "width, mm")
	f.Float64Var(&in.Dimensions.OuterDiameterMM, "od", 0, "outer diameter, mm")
	f.Float64Var(&in.Dimensions.InnerDiameterMM, "id", 0, "inner diameter, mm")
	f.Float64Var(&in.Dimensions.WallThicknessMM, "wall", 0, "wall thickness, mm")
	cmd.MarkFlagRequired("standard")
	return cmd
}

func (a *app) selectCmd() *cobra.Command {
	var in shearwave.Input
	var geometry string
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Pick the shear-wave master block for a part",
		RunE: func(cmd *cobra.Command, args []string) error {
			in.PartGeometry = blockspec.PartGeometry(geometry)
			sel, err := shearwave.SelectMaster(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sel)
		},
	}
	cmd.Flags().Float64Var(&in.PartODMM, "od", 0, "part outer diameter, mm")
	cmd.Flags().Float64Var(&in.PartThicknessMM, "thickness", 0, "part wall or thickness, mm")
	cmd.Flags().StringVarP(&geometry, "geometry", "g", "", "part geometry")
	cmd.MarkFlagRequired("od")
	return cmd
}

func (a *app) tubeCmd() *cobra.Command {
	var in shearwave.TubeInput
	cmd := &cobra.Command{
		Use:   "tube",
		Short: "Pick the notched tube reference for a tube",
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := shearwave.SelectTubeReference(in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ref)
		},
	}
	cmd.Flags().Float64Var(&in.ODMM, "od", 0, "tube outer diameter, mm")
	cmd.Flags().Float64Var(&in.WallMM, "wall", 0, "tube wall, mm")
	cmd.Flags().StringVarP(&in.Standard, "standard", "s", "", "standard sizing the notches")
	cmd.MarkFlagRequired("od")
	cmd.MarkFlagRequired("wall")
	return cmd
}

func (a *app) planCmd() *cobra.Command {
	var (
		out     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "plan <parts.xlsx>",
		Short: "Plan every part of an XLSX part list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rows, skipped, err := importer.ReadParts(f)
			if err != nil {
				return err
			}
			for _, s := range skipped {
				a.log.Warn("row skipped", zap.Int("line", s.Line), zap.String("error", s.Error))
			}
			if len(rows) == 0 {
				return fmt.Errorf("%s: no valid rows", args[0])
			}
			parts := make([]autoplan.Part, len(rows))
			for i, r := range rows {
				parts[i] = r.Part
			}
			res, err := batch.Run(cmd.Context(), parts, a.policy, workers)
			if err != nil {
				return err
			}
			if out == "" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			w, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := importer.WriteResults(w, rows, res); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d planned, %d failed, %d skipped -> %s\n", res.Succeeded, res.Failed, len(skipped), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write plans to this XLSX instead of JSON on stdout")
	cmd.Flags().IntVarP(&workers, "workers", "w", batch.DefaultWorkers, "parts planned concurrently")
	return cmd
}

func (a *app) pdfCmd() *cobra.Command {
	var (
		file string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "Render a block datasheet from a JSON report request",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in report.Input
			if err := readJSON(cmd, file, &in); err != nil {
				return err
			}
			ds, err := report.Prepare(in, a.policy, time.Now())
			if err != nil {
				return err
			}
			w, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := report.Render(w, ds); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", ds.DocumentID, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON report request (- for stdin)")
	cmd.Flags().StringVarP(&out, "out", "o", "datasheet.pdf", "output PDF")
	return cmd
}
