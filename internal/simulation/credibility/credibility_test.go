package credibility

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

func testModel() Model {
	return Model{
		State:        "MA",
		Features:     []string{FeaturePovertyRate, FeatureBlackPct},
		Means:        []float64{12, 8},
		Scales:       []float64{4, 6},
		Coefficients: []float64{1.5, 0.8},
	}
}

func TestNewModelValidation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		_, err := NewModel(testModel())
		require.NoError(t, err)
	})

	t.Run("mismatched vectors", func(t *testing.T) {
		m := testModel()
		m.Means = m.Means[:1]
		_, err := NewModel(m)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("zero scale", func(t *testing.T) {
		m := testModel()
		m.Scales = []float64{4, 0}
		_, err := NewModel(m)
		assert.Error(t, err)
	})

	t.Run("no features", func(t *testing.T) {
		_, err := NewModel(Model{State: "MA"})
		assert.Error(t, err)
	})
}

func TestPredict(t *testing.T) {
	m, err := NewModel(testModel())
	require.NoError(t, err)

	t.Run("features at the mean give one half", func(t *testing.T) {
		assert.InDelta(t, 0.5, m.Predict(Features{FeaturePovertyRate: 12, FeatureBlackPct: 8}), 1e-12)
	})

	t.Run("missing features are taken at the mean", func(t *testing.T) {
		assert.InDelta(t, 0.5, m.Predict(Features{}), 1e-12)
		assert.Equal(t,
			m.Predict(Features{FeaturePovertyRate: 20}),
			m.Predict(Features{FeaturePovertyRate: 20, FeatureBlackPct: 8}))
	})

	t.Run("higher poverty predicts higher need", func(t *testing.T) {
		assert.Greater(t,
			m.Predict(Features{FeaturePovertyRate: 25}),
			m.Predict(Features{FeaturePovertyRate: 5}))
	})

	t.Run("matches logistic link", func(t *testing.T) {
		z := 1.5*(20-12)/4.0 + 0.8*(22-8)/6.0
		want := 1 / (1 + math.Exp(-z))
		assert.InDelta(t, want, m.Predict(Features{FeaturePovertyRate: 20, FeatureBlackPct: 22}), 1e-12)
	})
}

func TestMultiplierFor(t *testing.T) {
	assert.InDelta(t, 1.3, MultiplierFor(0), 1e-12)
	assert.InDelta(t, 1.0, MultiplierFor(0.5), 1e-12)
	assert.InDelta(t, 0.7, MultiplierFor(1), 1e-12)
	assert.InDelta(t, 0.7, MultiplierFor(7), 1e-12)
	assert.InDelta(t, 1.3, MultiplierFor(-1), 1e-12)
}

func TestRegistryMultiplier(t *testing.T) {
	reg, err := LoadFile(filepath.Join("testdata", "models.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"MA"}, reg.States())

	t.Run("high poverty county gets cheaper contact", func(t *testing.T) {
		m := reg.Multiplier("Suffolk County, MA")
		assert.Less(t, m, 1.0)
		assert.GreaterOrEqual(t, m, MinMultiplier)
	})

	t.Run("low poverty county gets costlier contact", func(t *testing.T) {
		m := reg.Multiplier("Barnstable County, MA")
		assert.Greater(t, m, 1.0)
		assert.LessOrEqual(t, m, MaxMultiplier)
	})

	t.Run("state without a model is neutral", func(t *testing.T) {
		assert.Equal(t, Neutral, reg.Multiplier("Providence County, RI"))
	})

	t.Run("county without features is neutral", func(t *testing.T) {
		assert.Equal(t, Neutral, reg.Multiplier("Hampden County, MA"))
	})

	t.Run("nil registry is neutral", func(t *testing.T) {
		var none *Registry
		assert.Equal(t, Neutral, none.Multiplier("Suffolk County, MA"))
	})

	t.Run("neutral scorer", func(t *testing.T) {
		assert.Equal(t, Neutral, NeutralScorer{}.Multiplier("Suffolk County, MA"))
	})
}

func TestRegistryCopiesFeatures(t *testing.T) {
	reg := NewRegistry()
	f := Features{FeaturePovertyRate: 10}
	reg.SetCountyFeatures("  Essex County, MA ", f)
	f[FeaturePovertyRate] = 99

	got, ok := reg.CountyFeatures("Essex County, MA")
	require.True(t, ok)
	assert.Equal(t, 10.0, got[FeaturePovertyRate])
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("models: [oops"))
	assert.Error(t, err)

	_, err = Parse([]byte("models:\n  - state: MA\n    features: [poverty_rate]\n"))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, "MA", StateOf("Suffolk County, MA"))
	assert.Equal(t, "Alabama", StateOf("Jefferson County, Alabama"))
	assert.Equal(t, "", StateOf("Nowhere"))
}
