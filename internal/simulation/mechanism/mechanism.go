// Package mechanism holds the switches and calibration knobs threaded through
// every agent constructor. Components read them once when they are built.
package mechanism

import (
	"strings"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Name identifies one behavioral mechanism.
type Name string

const (
	BureaucracyPoints   Name = "bureaucracy_points"
	FraudHistory        Name = "fraud_history"
	Learning            Name = "learning"
	StateDiscrimination Name = "state_discrimination"
)

// Config enables or disables each mechanism independently. The zero value is
// the baseline; Default returns the full model.
type Config struct {
	BureaucracyPointsEnabled   bool `json:"bureaucracy_points_enabled" koanf:"bureaucracy_points"`
	FraudHistoryEnabled        bool `json:"fraud_history_enabled" koanf:"fraud_history"`
	LearningEnabled            bool `json:"learning_enabled" koanf:"learning"`
	StateDiscriminationEnabled bool `json:"state_discrimination_enabled" koanf:"state_discrimination"`
}

// Default is used wherever no configuration is supplied.
func Default() Config {
	return FullModel()
}

// FullModel enables all four mechanisms.
func FullModel() Config {
	return Config{
		BureaucracyPointsEnabled:   true,
		FraudHistoryEnabled:        true,
		LearningEnabled:            true,
		StateDiscriminationEnabled: true,
	}
}

// Baseline disables every mechanism.
func Baseline() Config {
	return Config{}
}

func OnlyBureaucracy() Config {
	return Config{BureaucracyPointsEnabled: true}
}

func OnlyFraudHistory() Config {
	return Config{FraudHistoryEnabled: true}
}

func OnlyLearning() Config {
	return Config{LearningEnabled: true}
}

func OnlyStateDiscrimination() Config {
	return Config{StateDiscriminationEnabled: true}
}

var presets = map[string]func() Config{
	"baseline":                  Baseline,
	"full_model":                FullModel,
	"only_bureaucracy":          OnlyBureaucracy,
	"only_fraud_history":        OnlyFraudHistory,
	"only_learning":             OnlyLearning,
	"only_state_discrimination": OnlyStateDiscrimination,
}

// PresetNames lists the accepted preset names in a stable order.
func PresetNames() []string {
	return []string{"baseline", "only_bureaucracy", "only_fraud_history", "only_learning", "only_state_discrimination", "full_model"}
}

// ParsePreset resolves a preset by name.
func ParsePreset(name string) (Config, error) {
	build, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Config{}, dErrors.New(dErrors.CodeInvalidInput, "unknown mechanism preset: "+name)
	}
	return build(), nil
}

// ActiveMechanisms lists enabled mechanisms in a fixed order.
func (c Config) ActiveMechanisms() []Name {
	active := make([]Name, 0, 4)
	if c.BureaucracyPointsEnabled {
		active = append(active, BureaucracyPoints)
	}
	if c.FraudHistoryEnabled {
		active = append(active, FraudHistory)
	}
	if c.LearningEnabled {
		active = append(active, Learning)
	}
	if c.StateDiscriminationEnabled {
		active = append(active, StateDiscrimination)
	}
	return active
}

func (c Config) CountActive() int {
	return len(c.ActiveMechanisms())
}

func (c Config) IsBaseline() bool {
	return c.CountActive() == 0
}

func (c Config) IsFullModel() bool {
	return c.CountActive() == 4
}

func (c Config) String() string {
	active := c.ActiveMechanisms()
	switch len(active) {
	case 0:
		return "baseline"
	case 4:
		return "full_model"
	}
	names := make([]string, len(active))
	for i, n := range active {
		names[i] = string(n)
	}
	return strings.Join(names, "+")
}
