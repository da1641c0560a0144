package seeker

import (
	"math"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/mechanism"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
)

// NavigationPolicy supplies the budget a seeker can spend withstanding an
// investigation.
type NavigationPolicy interface {
	// Points returns the budget; ok is false for an unlimited budget.
	Points() (points float64, ok bool)
}

// UnlimitedNavigation is used when the bureaucracy-points mechanism is off.
type UnlimitedNavigation struct{}

func (UnlimitedNavigation) Points() (float64, bool) {
	return math.Inf(1), false
}

// ComputedNavigation is a fixed budget derived from the seeker's situation.
type ComputedNavigation struct {
	points float64
}

func (c ComputedNavigation) Points() (float64, bool) {
	return c.points, true
}

const baseNavigationPoints = 10.0

// NavigationPoints scores how well someone copes with verification demands.
// jitter is the individual variation in [-2, 2). The result is floored at 0.
func NavigationPoints(d models.Demographics, hasDisability bool, jitter float64) float64 {
	points := baseNavigationPoints

	switch d.Education {
	case models.EducationBachelors, models.EducationGraduate:
		points += 5
	case models.EducationHighSchool, models.EducationSomeCollege:
		points += 2
	case models.EducationLessThanHS:
		points -= 3
	}

	if d.Employment.Employed() {
		points += 3
	} else {
		points -= 2
	}

	if d.AgeKnown() {
		switch {
		case d.Age >= 50:
			points += 2
		case d.Age >= 35:
			points++
		case d.Age < 25:
			points--
		}
	}

	if hasDisability {
		points -= 2
	}

	return math.Max(0, points+jitter)
}

func newNavigationPolicy(cfg mechanism.Config, p Profile, mult float64, src random.Source) NavigationPolicy {
	if !cfg.BureaucracyPointsEnabled {
		return UnlimitedNavigation{}
	}
	jitter := random.Uniform(src, -2, 2)
	return ComputedNavigation{points: NavigationPoints(p.Demographics, p.HasDisability, jitter) * mult}
}
