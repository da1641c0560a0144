package seeker

import (
	"math"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
)

var programComplexity = map[models.Program]float64{
	models.ProgramSNAP: 0.30,
	models.ProgramTANF: 0.50,
	models.ProgramSSI:  0.70,
}

const defaultProgramComplexity = 0.40

// ComplexityInput describes the documentation burden of one application.
type ComplexityInput struct {
	Program         models.Program
	HouseholdSize   int
	Children        int
	HasDisability   bool
	Recertification bool
	Age             int
}

// Complexity scores the verification burden of an application in [0,1].
func Complexity(in ComplexityInput) float64 {
	c, ok := programComplexity[in.Program]
	if !ok {
		c = defaultProgramComplexity
	}
	if in.HouseholdSize > 1 {
		c += math.Min(0.15, float64(in.HouseholdSize-1)*0.05)
	}
	if in.Children > 0 {
		c += math.Min(0.10, float64(in.Children)*0.03)
	}
	if in.HasDisability {
		c += 0.20
	}
	if !in.Recertification {
		c += 0.15
	}
	if in.Age >= 65 {
		c += 0.10
	}
	return math.Min(1.0, c)
}

// ComplexityFor scores an application program for this seeker.
func (s *Seeker) ComplexityFor(program models.Program, householdSize int, recertification bool) float64 {
	d := s.profile.Demographics
	return Complexity(ComplexityInput{
		Program:         program,
		HouseholdSize:   householdSize,
		Children:        d.NumChildren,
		HasDisability:   s.profile.HasDisability,
		Recertification: recertification,
		Age:             d.Age,
	})
}

var educationQuality = map[models.Education]float64{
	models.EducationGraduate:    0.25,
	models.EducationBachelors:   0.20,
	models.EducationSomeCollege: 0.10,
	models.EducationHighSchool:  0.05,
	models.EducationLessThanHS:  -0.10,
}

// documentationQuality scores how complete and consistent the paperwork is.
// The noise term is a hashed draw, so the agent generator is not advanced.
func (s *Seeker) documentationQuality(period int, isFraud, isError bool) float64 {
	d := s.profile.Demographics
	q := 0.50 + educationQuality[d.Education]

	if s.numApplications > 0 {
		q += math.Min(0.15, 0.05*float64(s.numApplications))
	}

	switch {
	case d.Employment.Employed():
		q += 0.08
	case d.Employment == models.EmploymentUnemployed:
		q -= 0.05
	}

	if d.AgeKnown() {
		switch {
		case d.Age >= 50:
			q += 0.05
		case d.Age < 25:
			q -= 0.05
		}
	}
	if s.profile.HasDisability {
		q -= 0.05
	}
	if d.NumChildren >= 3 {
		q -= 0.05
	}
	if isFraud {
		q -= 0.15
	}
	if isError {
		q -= 0.10
	}

	q += 0.12 * random.DrawNormal(s.profile.ID, period, random.SaltDocumentation)
	return clamp(q, 0, 1)
}
