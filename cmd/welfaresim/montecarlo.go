package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/montecarlo"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/sorter"

	"github.com/spf13/cobra"
)

var mcFlags struct {
	runs    int
	workers int
}

func init() {
	addSimulationFlags(monteCarloCmd.Flags())
	monteCarloCmd.Flags().IntVar(&mcFlags.runs, "runs", 0, "number of runs (overrides montecarlo.runs)")
	monteCarloCmd.Flags().IntVar(&mcFlags.workers, "workers", 0, "runs executed in parallel (overrides montecarlo.workers)")
}

var monteCarloCmd = &cobra.Command{
	Use:     "montecarlo",
	Aliases: []string{"mc"},
	Short:   "Repeat a simulation over consecutive seeds",
	Long: `Repeat the configured simulation with seeds seed, seed+1, ... and report
the mean and standard deviation of the approval rate overall and by race.

Runs are independent and execute on a bounded worker pool; the report does
not depend on the number of workers.

Examples:
  # Fifty runs on eight workers
  welfaresim montecarlo --runs 50 --workers 8

  # Compare the full model against the baseline
  welfaresim mc --runs 20 --mechanisms full_model
  welfaresim mc --runs 20 --mechanisms baseline`,
	Args: cobra.NoArgs,
	RunE: runMonteCarlo,
}

func runMonteCarlo(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("runs") {
		cfg.MonteCarlo.Runs = mcFlags.runs
	}
	if cmd.Flags().Changed("workers") {
		cfg.MonteCarlo.Workers = mcFlags.workers
	}

	a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	a.serve()

	batch, err := a.monteCarloConfig()
	if err != nil {
		return err
	}
	opts := []montecarlo.Option{
		montecarlo.WithResultsStore(a.results),
		montecarlo.WithMetrics(a.metrics),
		montecarlo.WithLogger(a.logger),
	}
	if a.auditor != nil {
		opts = append(opts, montecarlo.WithAuditPublisher(a.auditor))
	}
	report, err := montecarlo.NewRunner(opts...).Run(ctx, batch)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), report)
	}
	return printReport(cmd.OutOrStdout(), report)
}

func (a *app) monteCarloConfig() (montecarlo.Config, error) {
	cfg := a.cfg
	mechanisms, err := cfg.Mechanisms.Resolve()
	if err != nil {
		return montecarlo.Config{}, err
	}
	programs, err := cfg.Programs()
	if err != nil {
		return montecarlo.Config{}, err
	}
	strategy, err := sorter.ParseStrategy(cfg.Simulation.Sorter)
	if err != nil {
		return montecarlo.Config{}, err
	}
	return montecarlo.Config{
		Runs:           cfg.MonteCarlo.Runs,
		BaseSeed:       cfg.Simulation.Seed,
		Periods:        cfg.Simulation.Periods,
		PopulationSize: cfg.Simulation.PopulationSize,
		Workers:        cfg.MonteCarlo.Workers,
		Counties:       cfg.PopulationCounties(),
		Programs:       programs,
		Mechanisms:     mechanisms,
		Sensitivity:    cfg.Sensitivity,
		Strategy:       strategy,
		Scorer:         a.scorer,
	}, nil
}

func printReport(w io.Writer, r montecarlo.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "runs\t%d\n", len(r.Runs))
	fmt.Fprintf(tw, "elapsed\t%s\n", r.Elapsed)
	fmt.Fprintf(tw, "approval rate\t%.3f ± %.3f\n", r.ApprovalRate.Mean, r.ApprovalRate.StdDev)

	races := make([]models.Race, 0, len(r.ByRace))
	for race := range r.ByRace {
		races = append(races, race)
	}
	slices.Sort(races)
	if len(races) > 0 {
		fmt.Fprintln(tw, "\nrace\truns\tmean\tstd dev")
	}
	for _, race := range races {
		s := r.ByRace[race]
		fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\n", race, s.N, s.Mean, s.StdDev)
	}
	return tw.Flush()
}
