package population

import (
	"log/slog"
	"math"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/credibility"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/evaluator"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/reviewer"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Capacity sizing constants.
const (
	ResidentsPerStaff   = 50000.0
	MinStaff            = 0.5
	EvaluatorThroughput = 25.0 // complexity units per staff per period
	ReviewerThroughput  = 15.0
)

const (
	staffSeedOffset    = 900_000
	reviewerSeedOffset = 50_000
)

// StaffFor is the staff headcount serving population residents.
func StaffFor(population int) float64 {
	return math.Max(MinStaff, float64(population)/ResidentsPerStaff)
}

// EvaluatorCapacity is the monthly budget for a county; unknown population
// falls back to the evaluator default.
func EvaluatorCapacity(population int) float64 {
	if population <= 0 {
		return evaluator.DefaultMonthlyCapacity
	}
	return StaffFor(population) * EvaluatorThroughput
}

func ReviewerCapacity(population int) float64 {
	if population <= 0 {
		return reviewer.DefaultMonthlyCapacity
	}
	return StaffFor(population) * ReviewerThroughput
}

// Staff holds the evaluator and reviewer serving each county and program.
type Staff struct {
	Evaluators map[models.StaffKey]*evaluator.Evaluator
	Reviewers  map[models.StaffKey]*reviewer.Reviewer
}

// StaffConfig controls how BuildStaff creates agents.
type StaffConfig struct {
	Seed        int64
	Programs    []models.Program
	Mechanisms  mechanism.Config
	Sensitivity mechanism.Sensitivity
	Scorer      credibility.Scorer
	Logger      *slog.Logger

	// Accuracy is the reviewer fallback detection rate; zero selects the default.
	Accuracy float64

	// NoSpecialistEscalation stops SSI cases from always going to review.
	NoSpecialistEscalation bool
}

// DefaultStaffConfig serves every program at baseline settings.
func DefaultStaffConfig(seed int64) StaffConfig {
	return StaffConfig{
		Seed:        seed,
		Programs:    models.AllPrograms(),
		Mechanisms:  mechanism.Default(),
		Sensitivity: mechanism.BaselineSensitivity(),
		Accuracy:    reviewer.DefaultAccuracy,
		Logger:      slog.Default(),
	}
}

// BuildStaff creates one evaluator and one reviewer per county and program.
// Generators are seeded inside the run's id range so runs with neighbouring
// seeds never share a stream.
func BuildStaff(counties []County, cfg StaffConfig) (Staff, error) {
	if len(counties) == 0 {
		return Staff{}, dErrors.New(dErrors.CodeInvalidConfig, "at least one county is required")
	}
	programs := cfg.Programs
	if len(programs) == 0 {
		programs = models.AllPrograms()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	staff := Staff{
		Evaluators: make(map[models.StaffKey]*evaluator.Evaluator, len(counties)*len(programs)),
		Reviewers:  make(map[models.StaffKey]*reviewer.Reviewer, len(counties)*len(programs)),
	}
	var next int64
	for _, c := range counties {
		for _, program := range programs {
			key, err := models.NewStaffKey(c.Name, program)
			if err != nil {
				return Staff{}, dErrors.Wrap(err, dErrors.CodeInvalidConfig, "building staff")
			}
			if _, dup := staff.Evaluators[key]; dup {
				return Staff{}, dErrors.New(dErrors.CodeInvalidConfig, "duplicate staff key: "+key.String())
			}

			evalOpts := []evaluator.Option{
				evaluator.WithStrictness(cfg.Sensitivity.Strictness),
				evaluator.WithMonthlyCapacity(EvaluatorCapacity(c.Population)),
				evaluator.WithSource(random.New(cfg.Seed*IDStride + staffSeedOffset + next)),
				evaluator.WithLogger(logger),
			}
			if cfg.NoSpecialistEscalation {
				evalOpts = append(evalOpts, evaluator.WithSpecialistPrograms())
			}
			ev, err := evaluator.New(next, key, evalOpts...)
			if err != nil {
				return Staff{}, err
			}

			accuracy := cfg.Accuracy
			if accuracy == 0 {
				accuracy = reviewer.DefaultAccuracy
			}
			rv, err := reviewer.New(next, key,
				reviewer.WithMechanisms(cfg.Mechanisms),
				reviewer.WithAccuracy(accuracy),
				reviewer.WithMonthlyCapacity(ReviewerCapacity(c.Population)),
				reviewer.WithScorer(cfg.Scorer),
				reviewer.WithSource(random.New(cfg.Seed*IDStride + staffSeedOffset + reviewerSeedOffset + next)),
				reviewer.WithLogger(logger),
			)
			if err != nil {
				return Staff{}, err
			}

			staff.Evaluators[key] = ev
			staff.Reviewers[key] = rv
			next++
		}
	}
	return staff, nil
}
