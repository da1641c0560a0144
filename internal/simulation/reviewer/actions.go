package reviewer

import (
	"github.com/baldwij5/welfareSimulation-sub000/internal/simulation/models"
	pstrings "github.com/baldwij5/welfareSimulation-sub000/pkg/platform/strings"
)

// ActionName identifies an investigation step.
type ActionName string

const (
	ActionBasicIncomeCheck      ActionName = "basic_income_check"
	ActionRequestPayStubs       ActionName = "request_pay_stubs"
	ActionBankStatements        ActionName = "bank_statements"
	ActionEmployerVerification  ActionName = "employer_verification"
	ActionInterview             ActionName = "interview"
	ActionMedicalVerification   ActionName = "medical_verification"
	ActionHouseholdVerification ActionName = "household_verification"
	ActionHomeVisit             ActionName = "home_visit"
)

// Action is one investigation step. Contact actions require the applicant
// to respond in person or with their own paperwork.
type Action struct {
	Name    ActionName
	Cost    float64
	Contact bool
}

var catalogue = map[ActionName]Action{
	ActionBasicIncomeCheck:      {Name: ActionBasicIncomeCheck, Cost: 2},
	ActionRequestPayStubs:       {Name: ActionRequestPayStubs, Cost: 3, Contact: true},
	ActionBankStatements:        {Name: ActionBankStatements, Cost: 4, Contact: true},
	ActionEmployerVerification:  {Name: ActionEmployerVerification, Cost: 3},
	ActionInterview:             {Name: ActionInterview, Cost: 4, Contact: true},
	ActionMedicalVerification:   {Name: ActionMedicalVerification, Cost: 6},
	ActionHouseholdVerification: {Name: ActionHouseholdVerification, Cost: 3, Contact: true},
	ActionHomeVisit:             {Name: ActionHomeVisit, Cost: 5, Contact: true},
}

// LookupAction returns the catalogue entry for name.
func LookupAction(name ActionName) (Action, bool) {
	a, ok := catalogue[name]
	return a, ok
}

// FraudCostMultiplier applies to every action when the report is a lie.
const FraudCostMultiplier = 2.0

// SelectActions picks the investigation steps for app, in order. Rising
// suspicion and complexity add steps; some programs add their own.
func SelectActions(app *models.Application) []Action {
	names := []ActionName{ActionBasicIncomeCheck}
	if app.SuspicionScore > 0.5 {
		names = append(names, ActionRequestPayStubs, ActionHouseholdVerification)
	}
	if app.SuspicionScore > 0.7 {
		names = append(names, ActionBankStatements, ActionInterview)
	}
	if app.SuspicionScore > 0.85 {
		names = append(names, ActionEmployerVerification)
	}
	if app.Program == models.ProgramSSI && app.ReportedHasDisability {
		names = append(names, ActionMedicalVerification)
	}
	if app.Program == models.ProgramTANF {
		names = append(names, ActionHouseholdVerification)
	}
	if app.Complexity > 0.8 {
		names = append(names, ActionHomeVisit)
	}

	names = pstrings.Dedupe(names)
	actions := make([]Action, 0, len(names))
	for _, n := range names {
		actions = append(actions, catalogue[n])
	}
	return actions
}
