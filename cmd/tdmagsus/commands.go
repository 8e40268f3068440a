package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-magsus/internal/csvexport"
	"github.com/cwbudde/algo-magsus/internal/curfile"
	"github.com/cwbudde/algo-magsus/magsus/cycle"
	"github.com/cwbudde/algo-magsus/magsus/furnace"
	"github.com/cwbudde/algo-magsus/magsus/set"
)

// loadFurnace returns nil when no furnace run is configured.
func (a *app) loadFurnace() (*furnace.Furnace, error) {
	path := a.cfg.Furnace.Path
	if path == "" {
		a.log.Debug("no furnace configured, cycles stay uncorrected")
		return nil, nil
	}
	b, err := curfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := furnace.NewRun(b.Heating, b.Cooling, a.cfg.furnaceOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	lo, hi := f.Domain()
	a.log.Info("furnace loaded",
		zap.String("file", path),
		zap.Float64("min_temperature", lo),
		zap.Float64("max_temperature", hi),
		zap.Float64("lambda", f.Model().Lambda()))
	return f, nil
}

func (a *app) loadCycle(path string, f *furnace.Furnace) (*cycle.Cycle, error) {
	b, err := curfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := cycle.New(b.Heating, b.Cooling, a.cfg.cycleOptions(f)...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.log.Debug("cycle loaded",
		zap.String("file", path),
		zap.Float64("peak_temperature", c.PeakTemperature()),
		zap.Int("heating_samples", c.Heating().Len()),
		zap.Int("cooling_samples", c.Cooling().Len()))
	return c, nil
}

// output writes to stdout, or to name inside the output directory.
func (a *app) output(name string, write func(io.Writer) error) error {
	dir := a.cfg.Output.Dir
	if dir == "" {
		return write(a.out)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(fh); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := fh.Close(); err != nil {
		return err
	}
	a.log.Info("wrote output", zap.String("file", path))
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (a *app) furnaceCmd() *cobra.Command {
	var from, to, step float64
	cmd := &cobra.Command{
		Use:   "furnace FILE",
		Short: "Write the smoothed empty-furnace baseline as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.cfg.Furnace.Path = args[0]
			f, err := a.loadFurnace()
			if err != nil {
				return err
			}
			rows, err := f.SplineData(from, to, step)
			if err != nil {
				return err
			}
			return a.output(stem(args[0])+"-furnace.csv", func(w io.Writer) error {
				return csvexport.WriteSpline(w, rows)
			})
		},
	}
	cmd.Flags().Float64Var(&from, "from", 20, "first grid temperature")
	cmd.Flags().Float64Var(&to, "to", 700, "last grid temperature")
	cmd.Flags().Float64Var(&step, "step", 1, "grid spacing")
	return cmd
}

func (a *app) correctCmd() *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "correct FILE",
		Short: "Write a furnace- and volume-corrected cycle as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.loadFurnace()
			if err != nil {
				return err
			}
			c, err := a.loadCycle(args[0], f)
			if err != nil {
				return err
			}
			return a.output(stem(args[0])+".csv", func(w io.Writer) error {
				if table {
					return csvexport.WriteTable(w, c.ExportTable())
				}
				return csvexport.WriteCycle(w, c)
			})
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "write raw and corrected columns with a header")
	return cmd
}

// scanFlags binds the estimate flags that override the configuration.
type scanFlags struct {
	methods  []string
	min, max float64
}

func (s *scanFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&s.methods, "method", "m", nil, "estimation method (repeatable)")
	cmd.Flags().Float64Var(&s.min, "min", 0, "lowest temperature of the scan range")
	cmd.Flags().Float64Var(&s.max, "max", 0, "highest temperature of the scan range")
}

func (s *scanFlags) apply(cmd *cobra.Command, cfg *Config) ([]cycle.Method, cycle.ScanOption, error) {
	if cmd.Flags().Changed("method") {
		cfg.Estimate.Methods = s.methods
	}
	if cmd.Flags().Changed("min") {
		cfg.Estimate.Min = s.min
	}
	if cmd.Flags().Changed("max") {
		cfg.Estimate.Max = s.max
	}
	methods, err := cfg.methods()
	if err != nil {
		return nil, nil, err
	}
	return methods, cycle.ScanRange(cfg.Estimate.Min, cfg.Estimate.Max), nil
}

func (a *app) curieCmd() *cobra.Command {
	var sf scanFlags
	cmd := &cobra.Command{
		Use:   "curie FILE",
		Short: "Estimate the disordering temperature of one cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			methods, scan, err := sf.apply(cmd, &a.cfg)
			if err != nil {
				return err
			}
			f, err := a.loadFurnace()
			if err != nil {
				return err
			}
			c, err := a.loadCycle(args[0], f)
			if err != nil {
				return err
			}
			return a.printSummary(args[0], c.Summary(methods, scan))
		},
	}
	sf.bind(cmd)
	return cmd
}

func (a *app) printSummary(name string, s cycle.Summary) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\t%s\n", name)
	fmt.Fprintf(tw, "Peak temperature\t%.1f\n", s.PeakTemperature)
	fmt.Fprintf(tw, "Hopkinson peak\t%.1f\n", s.HopkinsonPeak)
	if s.AlterationErr != nil {
		fmt.Fprintf(tw, "Alteration index\t%v\n", s.AlterationErr)
	} else {
		fmt.Fprintf(tw, "Alteration index\t%.4f\n", s.Alteration)
	}
	fmt.Fprintf(tw, "\nMethod\tTemperature\tSamples\n")
	fmt.Fprintf(tw, "------\t-----------\t-------\n")
	for _, r := range s.Results {
		if r.Err != nil {
			a.log.Warn("estimate failed", zap.String("file", name), zap.Stringer("method", r.Method), zap.Error(r.Err))
			fmt.Fprintf(tw, "%s\t-\t%d\n", r.Method, r.Estimate.Samples)
			continue
		}
		a.log.Debug("estimate", zap.String("file", name), zap.Stringer("method", r.Method),
			zap.Float64("temperature", r.Estimate.Temperature))
		fmt.Fprintf(tw, "%s\t%.2f\t%d\n", r.Method, r.Estimate.Temperature, r.Estimate.Samples)
	}
	return tw.Flush()
}

func (a *app) setCmd() *cobra.Command {
	var (
		sf          scanFlags
		zeroAt      float64
		zeroSamples int
		order       int
	)
	cmd := &cobra.Command{
		Use:   "set DIR",
		Short: "Summarise every NNN[AB].CUR step file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			methods, scan, err := sf.apply(cmd, &a.cfg)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("order") {
				a.cfg.Output.Order = order
			}
			f, err := a.loadFurnace()
			if err != nil {
				return err
			}

			entries, err := curfile.ScanDir(args[0])
			if err != nil {
				return err
			}
			inputs := make([]set.Input, 0, len(entries))
			for _, e := range entries {
				b, err := curfile.ReadFile(e.Path)
				if err != nil {
					return err
				}
				inputs = append(inputs, set.Input{Heating: b.Heating, Cooling: b.Cooling, Label: filepath.Base(e.Path)})
			}
			s, err := set.Build(inputs, f, a.cfg.cycleOptions(f)...)
			if err != nil {
				return err
			}
			a.log.Info("set built", zap.String("dir", args[0]), zap.Int("cycles", s.Len()))

			if zeroAt > 0 {
				if err := s.ZeroAt(zeroAt, zeroSamples); err != nil {
					return err
				}
			}
			if a.cfg.Output.Order != s.Order() {
				s.Rescale(a.cfg.Output.Order)
			}

			sums := make([]cycle.Summary, 0, s.Len())
			for _, c := range s.OrderedCycles() {
				sum := c.Summary(methods, scan)
				for _, r := range sum.Results {
					if r.Err != nil {
						a.log.Warn("estimate failed",
							zap.Float64("peak_temperature", sum.PeakTemperature),
							zap.Stringer("method", r.Method),
							zap.Error(r.Err))
					}
				}
				sums = append(sums, sum)
			}
			return a.output("summary.csv", func(w io.Writer) error {
				return csvexport.WriteSummary(w, sums, methods)
			})
		},
	}
	sf.bind(cmd)
	cmd.Flags().Float64Var(&zeroAt, "zero-at", 0, "measured peak temperature (summary peak column, e.g. 699.8) of the cycle whose hottest samples are shifted to zero")
	cmd.Flags().IntVar(&zeroSamples, "zero-samples", 5, "number of final heating samples used by --zero-at")
	cmd.Flags().IntVar(&order, "order", 0, "decimal order of magnitude of the output values")
	return cmd
}
