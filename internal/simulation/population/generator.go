// Package population builds the agents a run needs: a seeded synthetic
// population of seekers and one evaluator/reviewer pair per county and
// program, sized from county population.
package population

import (
	"log/slog"
	"math"
	"strings"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/seeker"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// IDStride separates the id ranges of populations built from different seeds.
const IDStride = 1_000_000

// County is a served jurisdiction. Name must match the staff key county.
type County struct {
	Name       string `koanf:"name" json:"name"`
	Population int    `koanf:"population" json:"population"`
}

type weighted[T any] struct {
	value  T
	weight float64
}

var raceTable = []weighted[models.Race]{
	{models.RaceWhite, 0.60},
	{models.RaceBlack, 0.13},
	{models.RaceHispanic, 0.19},
	{models.RaceAsian, 0.08},
}

var educationTable = []weighted[models.Education]{
	{models.EducationLessThanHS, 0.10},
	{models.EducationHighSchool, 0.28},
	{models.EducationSomeCollege, 0.27},
	{models.EducationBachelors, 0.22},
	{models.EducationGraduate, 0.13},
}

var employmentTable = []weighted[models.Employment]{
	{models.EmploymentFullTime, 0.50},
	{models.EmploymentPartTime, 0.14},
	{models.EmploymentUnemployed, 0.06},
	{models.EmploymentNotInLaborForce, 0.30},
}

// Generator draws seekers from fixed marginal distributions.
type Generator struct {
	counties    []County
	mechanisms  mechanism.Config
	sensitivity mechanism.Sensitivity
	logger      *slog.Logger
}

type Option func(*Generator)

func WithMechanisms(cfg mechanism.Config) Option {
	return func(g *Generator) {
		g.mechanisms = cfg
	}
}

func WithSensitivity(s mechanism.Sensitivity) Option {
	return func(g *Generator) {
		g.sensitivity = s
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator validates the county list. Counties without a population
// still receive seekers, weighted as the smallest positive county.
func NewGenerator(counties []County, opts ...Option) (*Generator, error) {
	if len(counties) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidConfig, "at least one county is required")
	}
	seen := make(map[string]bool, len(counties))
	cleaned := make([]County, 0, len(counties))
	for _, c := range counties {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			return nil, dErrors.New(dErrors.CodeInvalidConfig, "county name cannot be empty")
		}
		if seen[c.Name] {
			return nil, dErrors.New(dErrors.CodeInvalidConfig, "duplicate county: "+c.Name)
		}
		seen[c.Name] = true
		cleaned = append(cleaned, c)
	}
	g := &Generator{
		counties:    cleaned,
		mechanisms:  mechanism.Default(),
		sensitivity: mechanism.BaselineSensitivity(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Counties() []County {
	return append([]County(nil), g.counties...)
}

// Generate builds size seekers from seed. The same seed always yields the
// same population; ids are seed×IDStride + i and each seeker's generator is
// seeded with its id.
func (g *Generator) Generate(seed int64, size int) ([]*seeker.Seeker, error) {
	if size < 0 || size >= IDStride {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "population size out of range")
	}
	rng := random.New(seed)
	weights := g.countyWeights()

	out := make([]*seeker.Seeker, 0, size)
	for i := 0; i < size; i++ {
		p := seeker.Profile{
			ID:     seed*IDStride + int64(i),
			Race:   draw(rng, raceTable),
			County: g.counties[pick(rng, weights)].Name,
			Income: clampIncome(random.LogNormal(rng, math.Log(40000), 0.6)),
		}
		p.HasChildren = random.Bernoulli(rng, 0.40)
		p.HasDisability = random.Bernoulli(rng, 0.15)
		p.Demographics = drawDemographics(rng, p.HasChildren)

		s, err := seeker.New(p,
			seeker.WithMechanisms(g.mechanisms),
			seeker.WithSensitivity(g.sensitivity),
			seeker.WithSource(random.New(p.ID)),
			seeker.WithLogger(g.logger),
		)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (g *Generator) countyWeights() []float64 {
	minPositive := math.Inf(1)
	for _, c := range g.counties {
		if c.Population > 0 {
			minPositive = math.Min(minPositive, float64(c.Population))
		}
	}
	if math.IsInf(minPositive, 1) {
		minPositive = 1
	}
	w := make([]float64, len(g.counties))
	for i, c := range g.counties {
		if c.Population > 0 {
			w[i] = float64(c.Population)
		} else {
			w[i] = minPositive
		}
	}
	return w
}

func clampIncome(v float64) float64 {
	return math.Max(10000, math.Min(80000, v))
}

func drawDemographics(rng *random.Rand, hasChildren bool) models.Demographics {
	d := models.Demographics{
		Age:        18 + rng.IntN(63),
		Sex:        "M",
		Married:    random.Bernoulli(rng, 0.48),
		Education:  draw(rng, educationTable),
		Employment: draw(rng, employmentTable),
	}
	if random.Bernoulli(rng, 0.5) {
		d.Sex = "F"
	}
	if hasChildren {
		d.NumChildren = 1 + rng.IntN(3)
	}
	return d
}

func draw[T any](rng *random.Rand, table []weighted[T]) T {
	w := make([]float64, len(table))
	for i, e := range table {
		w[i] = e.weight
	}
	return table[pick(rng, w)].value
}

// pick returns an index with probability proportional to its weight.
func pick(rng *random.Rand, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	u := rng.Float64() * total
	for i, w := range weights {
		if u < w {
			return i
		}
		u -= w
	}
	return len(weights) - 1
}
