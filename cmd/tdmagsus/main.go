// Command tdmagsus processes temperature-dependent susceptibility runs
// recorded by AGICO kappabridges.
//
// Usage:
//
//	tdmagsus [--config FILE] [--furnace FILE] [--verbose] <command>
//
// Commands:
//
//	furnace FILE   smoothed empty-furnace baseline as CSV
//	correct FILE   furnace- and volume-corrected cycle as CSV
//	curie FILE     disordering temperature estimates of one cycle
//	set DIR        summary of all NNN[AB].CUR step files in DIR
//
// Examples:
//
//	tdmagsus --furnace TUBE.CUR correct 700A.CUR
//	tdmagsus curie --method inflection --min 450 --max 650 580.CUR
//	tdmagsus --config magsus.yaml set samples/S12
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	out       io.Writer
	cfg       Config
	cfgPath   string
	furnace   string
	outputDir string
	verbose   bool

	log       *zap.Logger
	newLogger func(verbose bool) (*zap.Logger, error)
}

func productionLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func newRootCmd(out io.Writer, newLogger func(bool) (*zap.Logger, error)) *cobra.Command {
	a := &app{out: out, newLogger: newLogger, log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "tdmagsus",
		Short: "Process temperature-dependent magnetic susceptibility data",
		Long: `tdmagsus reads kappabridge .CUR files, removes the empty-furnace
baseline, estimates Curie/Néel temperatures and summarises stepwise
heating experiments.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = log

			cfg, err := LoadConfig(a.cfgPath)
			if err != nil {
				return err
			}
			if a.furnace != "" {
				cfg.Furnace.Path = a.furnace
			}
			if a.outputDir != "" {
				cfg.Output.Dir = a.outputDir
			}
			a.cfg = cfg
			a.log.Debug("configuration loaded",
				zap.String("config", a.cfgPath),
				zap.String("furnace", cfg.Furnace.Path),
				zap.String("output", cfg.Output.Dir))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgPath, "config", "c", "", "YAML configuration file")
	pf.StringVarP(&a.furnace, "furnace", "f", "", "empty-furnace .CUR file (overrides config)")
	pf.StringVarP(&a.outputDir, "output", "o", "", "output directory (default stdout)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(a.furnaceCmd(), a.correctCmd(), a.curieCmd(), a.setCmd())
	return root
}

func main() {
	if err := newRootCmd(os.Stdout, productionLogger).Execute(); err != nil {
		os.Exit(1)
	}
}
