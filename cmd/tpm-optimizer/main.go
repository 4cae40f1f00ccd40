// Command tpm-optimizer assigns programs to TPMs from CSV datasets.
//
// Usage:
//
//	tpm-optimizer --tpms-file roster.csv --programs-file portfolio.csv --method hybrid
//
// The TPM roster and program portfolio are header-driven CSV files; see the
// source package for the expected columns. Configuration beyond the flags
// (scoring weights, strategy budgets) is read from an optional YAML file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	tpmopt "github.com/motiteux/tpm-assignment-optimizer"
	"github.com/motiteux/tpm-assignment-optimizer/internal/logging"
	"github.com/motiteux/tpm-assignment-optimizer/report"
	"github.com/motiteux/tpm-assignment-optimizer/source"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cliOptions struct {
	tpmsFile     string
	programsFile string
	configFile   string
	method       string
	seed         uint64
	strict       bool
	verbose      bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "tpm-optimizer",
		Short: "Assign programs to technical program managers",
		Long: `tpm-optimizer matches a program portfolio against a TPM roster, honoring
capacity, seniority, conflict, and fixed-assignment constraints while
maximizing timezone fit, skill overlap, level fit, portfolio continuity,
and stated preferences.

Methods: exact (CP-SAT, provably optimal), annealing (simulated
annealing), hybrid (Pareto-guided refinement), two-phase (greedy with
rebalancing).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return run(ctx, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.tpmsFile, "tpms-file", "", "path to the TPM roster CSV (required)")
	flags.StringVar(&opts.programsFile, "programs-file", "", "path to the program portfolio CSV (required)")
	flags.StringVar(&opts.configFile, "config", "", "path to an optional YAML configuration file")
	flags.StringVar(&opts.method, "method", string(tpmopt.MethodTwoPhase),
		fmt.Sprintf("optimization method, one of %v", tpmopt.Methods()))
	flags.Uint64Var(&opts.seed, "seed", 0, "random seed for the randomized methods (0 derives one from the dataset)")
	flags.BoolVar(&opts.strict, "strict-fixed", false, "fail instead of warning when a fixed assignment violates a constraint")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	_ = cmd.MarkFlagRequired("tpms-file")
	_ = cmd.MarkFlagRequired("programs-file")

	return cmd
}

func run(ctx context.Context, opts *cliOptions) error {
	method, err := tpmopt.ParseMethod(opts.method)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(opts.configFile)
	if err != nil {
		return err
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}
	if opts.strict {
		cfg.StrictFixedAssignments = true
	}

	tpms, programs, err := source.Load(opts.tpmsFile, opts.programsFile)
	if err != nil {
		return fmt.Errorf("load datasets: %w", err)
	}

	opt, err := tpmopt.New(cfg, tpms, programs, method,
		tpmopt.WithLogger(newLogger(opts.verbose)),
	)
	if err != nil {
		return err
	}

	assignments, err := opt.Run(ctx)
	if err != nil {
		return err
	}

	return report.Build(opt.Engine(), assignments, string(method)).WriteText(os.Stdout)
}

// loadConfig reads the YAML configuration file, or returns the zero Config
// when no file is given. Defaults are applied by the optimizer itself.
func loadConfig(path string) (tpmopt.Config, error) {
	var cfg tpmopt.Config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// newLogger builds a stderr text logger so report output on stdout stays
// machine-consumable.
func newLogger(verbose bool) tpmopt.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return logging.NewSlog(slog.New(handler))
}
