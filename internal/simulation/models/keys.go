package models

import (
	"strings"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// StaffKey addresses the Evaluator/Reviewer pair serving one county and program.
// It is comparable and used directly as a map key.
type StaffKey struct {
	County  string
	Program Program
}

// NewStaffKey normalizes the county name so population and staffing tables
// built from differently padded strings still meet.
func NewStaffKey(county string, program Program) (StaffKey, error) {
	county = strings.TrimSpace(county)
	if county == "" {
		return StaffKey{}, dErrors.New(dErrors.CodeInvalidInput, "county cannot be empty")
	}
	if !program.IsValid() {
		return StaffKey{}, dErrors.New(dErrors.CodeInvalidInput, "unknown program: "+string(program))
	}
	return StaffKey{County: county, Program: program}, nil
}

// MustStaffKey is NewStaffKey for static tables and tests.
func MustStaffKey(county string, program Program) StaffKey {
	k, err := NewStaffKey(county, program)
	if err != nil {
		panic(err)
	}
	return k
}

func (k StaffKey) String() string {
	return k.County + "|" + string(k.Program)
}
