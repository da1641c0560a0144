package mechanism

import (
	"fmt"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Parameter names a calibration knob that sensitivity sweeps vary.
type Parameter string

const (
	ParamBaseline              Parameter = "baseline"
	ParamApprovalRate          Parameter = "approval_rate"
	ParamLearningRate          Parameter = "learning_rate"
	ParamStrictness            Parameter = "strictness"
	ParamApplicationThreshold  Parameter = "application_threshold"
	ParamBureaucracyPointsMult Parameter = "bureaucracy_points_mult"
)

// Range is the recommended sweep interval for a parameter.
type Range struct {
	Min float64
	Max float64
}

// RecommendedRanges are the intervals sensitivity sweeps should stay within.
var RecommendedRanges = map[Parameter]Range{
	ParamApprovalRate:          {Min: 0.60, Max: 0.80},
	ParamLearningRate:          {Min: 0.10, Max: 0.50},
	ParamStrictness:            {Min: 0.30, Max: 0.70},
	ParamApplicationThreshold:  {Min: 0.15, Max: 0.35},
	ParamBureaucracyPointsMult: {Min: 0.5, Max: 1.5},
}

// Sensitivity holds calibration values. When one parameter is varied the rest
// stay at baseline.
type Sensitivity struct {
	Parameter      Parameter `json:"parameter_name" koanf:"parameter"`
	ParameterValue float64   `json:"parameter_value" koanf:"parameter_value"`

	// ApprovalRate seeds every seeker's perceived approval probability.
	ApprovalRate float64 `json:"approval_rate" koanf:"approval_rate"`
	// LearningRate is the smoothing weight α of belief updates.
	LearningRate float64 `json:"learning_rate" koanf:"learning_rate"`
	// Strictness is the evaluator's suspicion threshold for verification.
	Strictness float64 `json:"strictness" koanf:"strictness"`
	// ApplicationThreshold is the belief below which a seeker stops applying.
	ApplicationThreshold float64 `json:"application_threshold" koanf:"application_threshold"`
	// BureaucracyPointsMult scales computed navigation points.
	BureaucracyPointsMult float64 `json:"bureaucracy_points_mult" koanf:"bureaucracy_points_mult"`
}

// BaselineSensitivity returns the calibrated default values.
func BaselineSensitivity() Sensitivity {
	return Sensitivity{
		Parameter:             ParamBaseline,
		ParameterValue:        1.0,
		ApprovalRate:          0.70,
		LearningRate:          0.30,
		Strictness:            0.50,
		ApplicationThreshold:  0.25,
		BureaucracyPointsMult: 1.0,
	}
}

// Vary returns baseline values with one parameter replaced.
func Vary(param Parameter, value float64) (Sensitivity, error) {
	s := BaselineSensitivity()
	s.Parameter = param
	s.ParameterValue = value
	switch param {
	case ParamApprovalRate:
		s.ApprovalRate = value
	case ParamLearningRate:
		s.LearningRate = value
	case ParamStrictness:
		s.Strictness = value
	case ParamApplicationThreshold:
		s.ApplicationThreshold = value
	case ParamBureaucracyPointsMult:
		s.BureaucracyPointsMult = value
	default:
		return Sensitivity{}, dErrors.New(dErrors.CodeInvalidInput, "unknown sensitivity parameter: "+string(param))
	}
	return s, s.Validate()
}

// Validate checks that probabilities lie in [0,1] and the multiplier is positive.
func (s Sensitivity) Validate() error {
	probs := []struct {
		name  Parameter
		value float64
	}{
		{ParamApprovalRate, s.ApprovalRate},
		{ParamLearningRate, s.LearningRate},
		{ParamStrictness, s.Strictness},
		{ParamApplicationThreshold, s.ApplicationThreshold},
	}
	for _, p := range probs {
		if p.value < 0 || p.value > 1 {
			return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must be in [0,1], got %g", p.name, p.value))
		}
	}
	if s.BureaucracyPointsMult <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must be positive, got %g", ParamBureaucracyPointsMult, s.BureaucracyPointsMult))
	}
	return nil
}

// InRecommendedRange reports whether the varied parameter sits inside its sweep interval.
func (s Sensitivity) InRecommendedRange() bool {
	r, ok := RecommendedRanges[s.Parameter]
	if !ok {
		return s.Parameter == ParamBaseline
	}
	return s.ParameterValue >= r.Min && s.ParameterValue <= r.Max
}

// AsMap flattens the values for reporting sinks.
func (s Sensitivity) AsMap() map[string]float64 {
	return map[string]float64{
		string(ParamApprovalRate):          s.ApprovalRate,
		string(ParamLearningRate):          s.LearningRate,
		string(ParamStrictness):            s.Strictness,
		string(ParamApplicationThreshold):  s.ApplicationThreshold,
		string(ParamBureaucracyPointsMult): s.BureaucracyPointsMult,
		"parameter_value":                  s.ParameterValue,
	}
}
