package credibility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// artifact is the on-disk form of trained state models and county features.
type artifact struct {
	Models   []Model             `yaml:"models"`
	Counties map[string]Features `yaml:"counties"`
}

// LoadFile reads a YAML model artifact.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credibility models: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from YAML artifact bytes.
func Parse(data []byte) (*Registry, error) {
	var a artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing credibility models: %w", err)
	}
	reg := NewRegistry()
	for i := range a.Models {
		m, err := NewModel(a.Models[i])
		if err != nil {
			return nil, fmt.Errorf("model %d (%s): %w", i, a.Models[i].State, err)
		}
		reg.AddModel(m.State, m)
	}
	for county, f := range a.Counties {
		reg.SetCountyFeatures(county, f)
	}
	return reg, nil
}
