package evaluator

import "github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"

// Per-person monthly ceilings applied to reported figures.
const (
	snapPerPersonCeiling = 1250.0
	tanfPerPersonCeiling = 500.0
	ssiMonthlyCeiling    = 1913.0
)

// ReportedEligible rechecks hard eligibility using only what the seeker reported.
func ReportedEligible(app *models.Application) bool {
	monthly := app.ReportedMonthlyIncome()
	household := float64(app.ReportedHouseholdSize)
	switch app.Program {
	case models.ProgramSNAP:
		return monthly < snapPerPersonCeiling*household
	case models.ProgramTANF:
		return monthly < tanfPerPersonCeiling*household
	case models.ProgramSSI:
		return app.ReportedHasDisability && monthly < ssiMonthlyCeiling
	}
	return false
}

// BaseSuspicion is the noise-free sum of red flags.
func BaseSuspicion(app *models.Application, investigationHistory bool) float64 {
	var score float64
	monthly := app.ReportedMonthlyIncome()
	switch {
	case monthly < 1000:
		score += 0.3
	case monthly < 2000:
		score += 0.1
	}
	if app.ReportedHouseholdSize >= 5 {
		score += 0.2
	}
	if app.Program == models.ProgramSSI {
		score += 0.3
	}
	if investigationHistory {
		score += 0.2
	}
	return score
}
