package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"ScanMaster/internal/calc/ringblock"
	"ScanMaster/internal/config"
	"ScanMaster/internal/logging"
)

type app struct {
	log    *zap.Logger
	policy ringblock.Policy
}

func newRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop(), policy: ringblock.DefaultPolicy()}
	root := &cobra.Command{
		Use:           "blockcalc",
		Short:         "Ultrasonic calibration block calculator",
		Long:          "blockcalc resolves ring-segment blocks, sizes reference blocks and picks shear-wave masters and tube references.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viper.Reset()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			verbose, _ := cmd.Flags().GetBool("verbose")
			if l, err := logging.New(verbose || cfg.Verbose); err == nil {
				a.log = l
			}
			a.policy = cfg.Policy()
			return nil
		},
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		a.templatesCmd(),
		a.resolveCmd(),
		a.specCmd(),
		a.selectCmd(),
		a.tubeCmd(),
		a.planCmd(),
		a.pdfCmd(),
	)
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON decodes path ("-" is stdin) into v.
func readJSON(cmd *cobra.Command, path string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
