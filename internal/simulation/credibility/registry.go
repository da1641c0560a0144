package credibility

import (
	"strings"
	"sync"
)

// Scorer yields the contact-cost multiplier for an applicant's county.
type Scorer interface {
	Multiplier(county string) float64
}

// NeutralScorer always returns 1.0.
type NeutralScorer struct{}

func (NeutralScorer) Multiplier(string) float64 { return Neutral }

// Registry holds one model per state and the feature table for each county.
// Counties are named "<county>, <state>".
type Registry struct {
	mu       sync.RWMutex
	models   map[string]Predictor
	counties map[string]Features
}

func NewRegistry() *Registry {
	return &Registry{
		models:   make(map[string]Predictor),
		counties: make(map[string]Features),
	}
}

// AddModel registers p for state, replacing any previous model.
func (r *Registry) AddModel(state string, p Predictor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[strings.TrimSpace(state)] = p
}

func (r *Registry) SetCountyFeatures(county string, f Features) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make(Features, len(f))
	for k, v := range f {
		cp[k] = v
	}
	r.counties[strings.TrimSpace(county)] = cp
}

func (r *Registry) Model(state string) (Predictor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.models[state]
	return p, ok
}

func (r *Registry) CountyFeatures(county string) (Features, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.counties[county]
	return f, ok
}

// States lists the states with a registered model.
func (r *Registry) States() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.models))
	for s := range r.models {
		out = append(out, s)
	}
	return out
}

// PredictNeed returns the model's need probability for county. ok is false
// when the county has no features or its state has no model.
func (r *Registry) PredictNeed(county string) (need float64, ok bool) {
	f, ok := r.CountyFeatures(county)
	if !ok {
		return 0, false
	}
	p, ok := r.Model(StateOf(county))
	if !ok {
		return 0, false
	}
	return p.Predict(f), true
}

// Multiplier degrades to Neutral whenever a prediction is unavailable.
func (r *Registry) Multiplier(county string) float64 {
	if r == nil {
		return Neutral
	}
	need, ok := r.PredictNeed(county)
	if !ok {
		return Neutral
	}
	return MultiplierFor(need)
}

// StateOf returns the part of a county name after the last comma.
func StateOf(county string) string {
	i := strings.LastIndex(county, ",")
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(county[i+1:])
}
