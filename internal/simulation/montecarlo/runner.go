// Package montecarlo repeats a simulation over consecutive seeds and
// summarizes how much the outcomes vary between runs.
package montecarlo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/credibility"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/metrics"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/orchestrator"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/population"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/sorter"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"

	"golang.org/x/sync/errgroup"
)

// Config describes one batch of independent runs. Run k uses seed BaseSeed+k.
type Config struct {
	Runs           int
	BaseSeed       int64
	Periods        int
	PopulationSize int
	Workers        int

	Counties    []population.County
	Programs    []models.Program
	Mechanisms  mechanism.Config
	Sensitivity mechanism.Sensitivity
	Strategy    sorter.Strategy
	Scorer      credibility.Scorer
}

// Validate checks the batch shape before any run starts.
func (c Config) Validate() error {
	switch {
	case c.Runs <= 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "runs must be positive")
	case c.Periods <= 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "periods must be positive")
	case c.PopulationSize <= 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "population size must be positive")
	case len(c.Counties) == 0:
		return dErrors.New(dErrors.CodeInvalidConfig, "at least one county is required")
	}
	if c.Strategy != "" && !c.Strategy.IsValid() {
		return dErrors.New(dErrors.CodeInvalidConfig, "unknown sorting strategy: "+string(c.Strategy))
	}
	return c.Sensitivity.Validate()
}

// Stat is the mean and population standard deviation of one measure across runs.
type Stat struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	N      int     `json:"n"`
}

// Report holds every run summary in seed order plus the spread across runs.
type Report struct {
	Runs         []models.RunSummary  `json:"runs"`
	ApprovalRate Stat                 `json:"approval_rate"`
	ByRace       map[models.Race]Stat `json:"approval_rate_by_race"`
	Elapsed      time.Duration        `json:"elapsed"`
}

// Runner executes batches on a bounded worker pool. Collaborators passed in
// options are shared by all runs and must be safe for concurrent use.
type Runner struct {
	results orchestrator.ResultsStore
	auditor orchestrator.AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Runner)

func WithResultsStore(store orchestrator.ResultsStore) Option {
	return func(r *Runner) {
		r.results = store
	}
}

func WithAuditPublisher(publisher orchestrator.AuditPublisher) Option {
	return func(r *Runner) {
		r.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cfg.Runs simulations, at most cfg.Workers at a time (one when
// unset). The first failed run cancels the others and its error is returned.
func (r *Runner) Run(ctx context.Context, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	start := time.Now()
	summaries := make([]models.RunSummary, cfg.Runs)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k := 0; k < cfg.Runs; k++ {
		seed := cfg.BaseSeed + int64(k)
		g.Go(func() error {
			summary, err := r.runOne(gctx, cfg, seed)
			if err != nil {
				return fmt.Errorf("run with seed %d: %w", seed, err)
			}
			summaries[k] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Summarize(summaries)
	report.Elapsed = time.Since(start)
	r.logger.InfoContext(ctx, "monte carlo batch completed",
		"runs", cfg.Runs,
		"workers", workers,
		"base_seed", cfg.BaseSeed,
		"approval_rate_mean", report.ApprovalRate.Mean,
		"approval_rate_std", report.ApprovalRate.StdDev,
		"elapsed", report.Elapsed,
	)
	return report, nil
}

// runOne builds a private population, staff and sorter for seed so runs
// share no mutable state.
func (r *Runner) runOne(ctx context.Context, cfg Config, seed int64) (models.RunSummary, error) {
	if err := ctx.Err(); err != nil {
		return models.RunSummary{}, err
	}

	gen, err := population.NewGenerator(cfg.Counties,
		population.WithMechanisms(cfg.Mechanisms),
		population.WithSensitivity(cfg.Sensitivity),
		population.WithLogger(r.logger),
	)
	if err != nil {
		return models.RunSummary{}, err
	}
	seekers, err := gen.Generate(seed, cfg.PopulationSize)
	if err != nil {
		return models.RunSummary{}, err
	}

	staffCfg := population.DefaultStaffConfig(seed)
	staffCfg.Mechanisms = cfg.Mechanisms
	staffCfg.Sensitivity = cfg.Sensitivity
	staffCfg.Scorer = cfg.Scorer
	staffCfg.Logger = r.logger
	if len(cfg.Programs) > 0 {
		staffCfg.Programs = cfg.Programs
	}
	staff, err := population.BuildStaff(cfg.Counties, staffCfg)
	if err != nil {
		return models.RunSummary{}, err
	}

	opts := []orchestrator.Option{
		orchestrator.WithSeed(seed),
		orchestrator.WithMechanisms(cfg.Mechanisms),
		orchestrator.WithMetrics(r.metrics),
		orchestrator.WithLogger(r.logger),
	}
	if len(cfg.Programs) > 0 {
		opts = append(opts, orchestrator.WithPrograms(cfg.Programs...))
	}
	if cfg.Strategy != "" {
		policy, err := sorter.New(cfg.Strategy,
			sorter.WithSeed(seed),
			sorter.WithIncomeLookup(orchestrator.IncomeLookup(seekers)),
		)
		if err != nil {
			return models.RunSummary{}, err
		}
		opts = append(opts, orchestrator.WithSortingPolicy(policy))
	}
	if r.results != nil {
		opts = append(opts, orchestrator.WithResultsStore(r.results))
	}
	if r.auditor != nil {
		opts = append(opts, orchestrator.WithAuditPublisher(r.auditor))
	}

	o, err := orchestrator.New(seekers, staff, opts...)
	if err != nil {
		return models.RunSummary{}, err
	}
	return o.Run(ctx, cfg.Periods)
}

// Summarize computes the spread of overall and per-race approval rates.
// Races with no decided applications in a run do not contribute to that
// run's sample.
func Summarize(runs []models.RunSummary) Report {
	overall := make([]float64, 0, len(runs))
	byRace := make(map[models.Race][]float64)
	for _, run := range runs {
		overall = append(overall, run.ApprovalRate())
		for race, g := range run.ByRace {
			if g.Approvals+g.Denials == 0 {
				continue
			}
			byRace[race] = append(byRace[race], g.ApprovalRate())
		}
	}

	report := Report{
		Runs:         runs,
		ApprovalRate: describe(overall),
		ByRace:       make(map[models.Race]Stat, len(byRace)),
	}
	for race, rates := range byRace {
		report.ByRace[race] = describe(rates)
	}
	return report
}

func describe(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return Stat{Mean: mean, StdDev: math.Sqrt(sq / float64(len(xs))), N: len(xs)}
}
