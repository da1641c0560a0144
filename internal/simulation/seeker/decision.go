package seeker

import (
	"math"

	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/random"
	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Monthly income ceilings for the seeker's own eligibility check.
const (
	snapMonthlyCeiling = 2500.0
	tanfMonthlyCeiling = 1000.0
	ssiMonthlyCeiling  = 1913.0
)

// EligibleFor applies the program's hard income and household tests to true figures.
func (s *Seeker) EligibleFor(program models.Program) bool {
	monthly := s.MonthlyIncome()
	switch program {
	case models.ProgramSNAP:
		return monthly < snapMonthlyCeiling
	case models.ProgramTANF:
		return monthly < tanfMonthlyCeiling && s.profile.HasChildren
	case models.ProgramSSI:
		return monthly < ssiMonthlyCeiling && s.profile.HasDisability
	}
	return false
}

// ShouldApply runs the deterministic gates: ban, eligibility, enrollment and
// the belief threshold. When the recertification interval has elapsed the
// enrollment is cleared here and the call falls through.
func (s *Seeker) ShouldApply(program models.Program, period int) bool {
	if s.IsBanned(period) {
		return false
	}
	if !s.EligibleFor(program) {
		return false
	}
	if since, ok := s.enrolledSince[program]; ok {
		if period-since < program.RecertificationInterval() {
			return false
		}
		delete(s.enrolledSince, program)
		s.recertifying[program] = true
	}
	return s.beliefs[program] >= s.sensitivity.ApplicationThreshold
}

// Propensity is the probability of applying in period, in [0,1].
func (s *Seeker) Propensity(program models.Program, period int) float64 {
	c := s.calibration
	p := c.BeliefWeight * s.beliefs[program]
	p += c.DesperationWeight * math.Max(0, 1-s.MonthlyIncome()/c.DesperationIncome)
	if s.profile.HasChildren {
		p += c.DependentsBoost
	}
	if rate, ok := s.SuccessRate(program); ok {
		p += c.SuccessWeight * rate
	}
	p += random.DrawUniform(s.profile.ID, period, random.SaltPropensityNoise, -c.NoiseAmplitude, c.NoiseAmplitude)
	return clamp(p, 0, 1)
}

// WillCommitFraud is the salted fraud draw for period.
func (s *Seeker) WillCommitFraud(period int) bool {
	p := math.Min(s.calibration.FraudScale*s.traits.FraudPropensity, s.calibration.FraudCeiling)
	return random.Draw(s.profile.ID, period, random.SaltFraud) < p
}

// WillMakeError is the salted honest-mistake draw for period.
func (s *Seeker) WillMakeError(period int) bool {
	p := math.Min(s.calibration.ErrorScale*s.traits.ErrorPropensity, s.calibration.ErrorCeiling)
	return random.Draw(s.profile.ID, period, random.SaltError) < p
}

// reportIncome returns the income the seeker will claim.
func (s *Seeker) reportIncome(period int, isFraud, isError bool) float64 {
	income := s.profile.Income
	switch {
	case isFraud:
		return income * (1 - s.traits.LyingMagnitude/100)
	case isError:
		delta := s.traits.ErrorMagnitude / 100
		if random.Draw(s.profile.ID, period, random.SaltDirection) < 0.5 {
			return income * (1 - delta)
		}
		return income * (1 + delta)
	}
	return income
}

// CreateApplication decides whether to apply for program in period and, if
// so, builds the application. ok is false when the seeker does not apply.
// An unknown program is a wiring error and panics.
func (s *Seeker) CreateApplication(program models.Program, period int, applicationID int64) (app *models.Application, ok bool) {
	if !program.IsValid() {
		panic(dErrors.New(dErrors.CodeInvalidInput, "unknown program: "+string(program)))
	}
	if !s.ShouldApply(program, period) {
		return nil, false
	}
	if random.Draw(s.profile.ID, period, random.SaltApply) >= s.Propensity(program, period) {
		return nil, false
	}

	isFraud := s.WillCommitFraud(period)
	isError := !isFraud && s.WillMakeError(period)

	household := s.calibration.ReportedHouseholdSize
	app, err := models.NewApplication(models.ApplicationInput{
		ID:                    applicationID,
		SeekerID:              s.profile.ID,
		Program:               program,
		Period:                period,
		ReportedIncome:        s.reportIncome(period, isFraud, isError),
		ReportedHouseholdSize: household,
		ReportedHasDisability: s.profile.HasDisability,
		TrueIncome:            s.profile.Income,
		TrueHouseholdSize:     household,
		TrueHasDisability:     s.profile.HasDisability,
		IsFraud:               isFraud,
		IsError:               isError,
	})
	if err != nil {
		s.logger.Error("building application", "seeker_id", s.profile.ID, "program", program, "error", err)
		return nil, false
	}

	app.Complexity = s.ComplexityFor(program, household, s.recertifying[program])
	quality := s.documentationQuality(period, isFraud, isError)
	app.DocumentationQuality = &quality
	s.numApplications++
	return app, true
}
