package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"

	"github.com/baldwij5/welfareSimulation-sub000/internal/platform/config"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/orchestrator"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/population"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/sorter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
)

// simFlags override configuration values on every simulating command.
var simFlags struct {
	seed       int64
	periods    int
	population int
	sorter     string
	preset     string
}

var (
	jsonOutput bool
	serveAfter bool
)

func addSimulationFlags(f *pflag.FlagSet) {
	f.Int64Var(&simFlags.seed, "seed", 0, "random seed (overrides simulation.seed)")
	f.IntVar(&simFlags.periods, "periods", 0, "number of monthly periods to simulate")
	f.IntVar(&simFlags.population, "population", 0, "number of households to generate")
	f.StringVar(&simFlags.sorter, "sorter", "", "application ordering: fcfs, simple_first, complex_first, random or need_based")
	f.StringVar(&simFlags.preset, "mechanisms", "", "mechanism preset, see 'welfaresim mechanisms'")
	f.BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func init() {
	addSimulationFlags(runCmd.Flags())
	runCmd.Flags().BoolVar(&serveAfter, "serve", false, "keep the HTTP server up after the run until interrupted")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation",
	Long: `Run one simulation with the configured population, staff and mechanisms.

Per-period statistics go to the configured results backend and lifecycle
events to the audit backend. When metrics.addr is set, Prometheus metrics
and stored results are served over HTTP while the run progresses.

Examples:
  # Twelve months with the default Massachusetts counties
  welfaresim run

  # Reproduce a run with need-based ordering and no mechanisms
  welfaresim run --seed 7 --sorter need_based --mechanisms baseline`,
	Args: cobra.NoArgs,
	RunE: runSimulation,
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	a.serve()

	o, err := a.newOrchestrator(cfg.Simulation.Seed)
	if err != nil {
		return err
	}
	summary, err := o.Run(ctx, cfg.Simulation.Periods)
	if err != nil {
		return fmt.Errorf("run %s: %w", o.RunID(), err)
	}

	if jsonOutput {
		err = writeJSON(cmd.OutOrStdout(), summary)
	} else {
		err = printSummary(cmd.OutOrStdout(), summary)
	}
	if err != nil {
		return err
	}

	if serveAfter && a.server != nil {
		a.logger.Info("run finished, serving results until interrupted", "run_id", summary.RunID)
		<-ctx.Done()
	}
	return nil
}

// loadConfig reads the configuration file and applies command flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Simulation.Seed = simFlags.seed
	}
	if flags.Changed("periods") {
		cfg.Simulation.Periods = simFlags.periods
	}
	if flags.Changed("population") {
		cfg.Simulation.PopulationSize = simFlags.population
	}
	if flags.Changed("sorter") {
		cfg.Simulation.Sorter = simFlags.sorter
	}
	if flags.Changed("mechanisms") {
		cfg.Mechanisms.Preset = simFlags.preset
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newOrchestrator builds a population, staff and ordering policy for seed.
func (a *app) newOrchestrator(seed int64) (*orchestrator.Orchestrator, error) {
	cfg := a.cfg
	mechanisms, err := cfg.Mechanisms.Resolve()
	if err != nil {
		return nil, err
	}
	programs, err := cfg.Programs()
	if err != nil {
		return nil, err
	}
	counties := cfg.PopulationCounties()

	gen, err := population.NewGenerator(counties,
		population.WithMechanisms(mechanisms),
		population.WithSensitivity(cfg.Sensitivity),
		population.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}
	seekers, err := gen.Generate(seed, cfg.Simulation.PopulationSize)
	if err != nil {
		return nil, err
	}

	staffCfg := population.DefaultStaffConfig(seed)
	staffCfg.Programs = programs
	staffCfg.Mechanisms = mechanisms
	staffCfg.Sensitivity = cfg.Sensitivity
	staffCfg.Scorer = a.scorer
	staffCfg.Logger = a.logger
	staff, err := population.BuildStaff(counties, staffCfg)
	if err != nil {
		return nil, err
	}

	strategy, err := sorter.ParseStrategy(cfg.Simulation.Sorter)
	if err != nil {
		return nil, err
	}
	policy, err := sorter.New(strategy,
		sorter.WithSeed(seed),
		sorter.WithIncomeLookup(orchestrator.IncomeLookup(seekers)),
	)
	if err != nil {
		return nil, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithSeed(seed),
		orchestrator.WithPrograms(programs...),
		orchestrator.WithMechanisms(mechanisms),
		orchestrator.WithSortingPolicy(policy),
		orchestrator.WithResultsStore(a.results),
		orchestrator.WithMetrics(a.metrics),
		orchestrator.WithTracer(otel.Tracer("welfaresim")),
		orchestrator.WithLogger(a.logger),
	}
	if a.auditor != nil {
		opts = append(opts, orchestrator.WithAuditPublisher(a.auditor))
	}
	if cfg.Simulation.StrictRouting {
		opts = append(opts, orchestrator.WithStrictRouting())
	}
	return orchestrator.New(seekers, staff, opts...)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, s models.RunSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "seed\t%d\n", s.Seed)
	fmt.Fprintf(tw, "mechanisms\t%s\n", s.Mechanisms)
	if s.Sorter != "" {
		fmt.Fprintf(tw, "sorter\t%s\n", s.Sorter)
	}
	fmt.Fprintf(tw, "periods\t%d\n", len(s.Periods))
	fmt.Fprintf(tw, "submitted\t%d\n", s.Totals.Submitted)
	fmt.Fprintf(tw, "approved\t%d\n", s.Totals.Approved)
	fmt.Fprintf(tw, "denied\t%d\n", s.Totals.Denied)
	fmt.Fprintf(tw, "escalated\t%d\n", s.Totals.Escalated)
	fmt.Fprintf(tw, "capacity exceeded\t%d\n", s.Totals.CapacityExceeded)
	fmt.Fprintf(tw, "routing anomalies\t%d\n", s.Totals.RoutingAnomalies)
	fmt.Fprintf(tw, "approval rate\t%.3f\n", s.ApprovalRate())

	races := make([]models.Race, 0, len(s.ByRace))
	for race := range s.ByRace {
		races = append(races, race)
	}
	slices.Sort(races)
	if len(races) > 0 {
		fmt.Fprintln(tw, "\nrace\tseekers\tapprovals\tdenials\tapproval rate")
	}
	for _, race := range races {
		g := s.ByRace[race]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.3f\n", race, g.Seekers, g.Approvals, g.Denials, g.ApprovalRate())
	}
	return tw.Flush()
}
