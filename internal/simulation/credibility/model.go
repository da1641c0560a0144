// Package credibility maps county-aggregate socioeconomic features to a
// predicted-need probability and converts it into an investigation cost
// multiplier. Models see county aggregates only, never an individual's race.
package credibility

import (
	"math"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// County-aggregate feature names used by trained models.
const (
	FeaturePovertyRate       = "poverty_rate"
	FeatureMedianIncome      = "median_household_income"
	FeatureUnemploymentRate  = "unemployment_rate"
	FeatureBlackPct          = "black_pct"
	FeatureHispanicPct       = "hispanic_pct"
	FeatureSNAPParticipation = "snap_participation_rate"
)

// Features are county-aggregate values keyed by feature name.
type Features map[string]float64

// Predictor maps county features to a probability in [0,1].
type Predictor interface {
	Predict(f Features) float64
}

// Model is a standardized logistic regression.
type Model struct {
	State        string    `yaml:"state" json:"state"`
	Features     []string  `yaml:"features" json:"features"`
	Means        []float64 `yaml:"means" json:"means"`
	Scales       []float64 `yaml:"scales" json:"scales"`
	Coefficients []float64 `yaml:"coefficients" json:"coefficients"`
	Intercept    float64   `yaml:"intercept" json:"intercept"`
}

// NewModel validates that every feature has a mean, a non-zero scale and a
// coefficient.
func NewModel(m Model) (*Model, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m Model) Validate() error {
	n := len(m.Features)
	if n == 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "credibility model needs at least one feature")
	}
	if len(m.Means) != n || len(m.Scales) != n || len(m.Coefficients) != n {
		return dErrors.New(dErrors.CodeInvariantViolation, "credibility model vectors must match feature count")
	}
	for _, sc := range m.Scales {
		if sc == 0 || math.IsNaN(sc) {
			return dErrors.New(dErrors.CodeInvariantViolation, "credibility model scales must be non-zero")
		}
	}
	return nil
}

// Predict standardizes f and applies the logistic link. A feature missing
// from f is taken at its training mean.
func (m *Model) Predict(f Features) float64 {
	z := m.Intercept
	for i, name := range m.Features {
		v, ok := f[name]
		if !ok || math.IsNaN(v) {
			continue
		}
		z += m.Coefficients[i] * (v - m.Means[i]) / m.Scales[i]
	}
	return 1 / (1 + math.Exp(-z))
}

// Multiplier bounds.
const (
	MaxMultiplier = 1.3
	MinMultiplier = 0.7
	Neutral       = 1.0
)

// MultiplierFor converts a predicted need into a contact-cost multiplier.
// High predicted need makes contact cheaper.
func MultiplierFor(need float64) float64 {
	need = math.Max(0, math.Min(1, need))
	return MaxMultiplier - (MaxMultiplier-MinMultiplier)*need
}
