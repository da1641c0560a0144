package models

import (
	"strings"

	dErrors "github.com/baldwij5/welfareSimulation-sub000/pkg/domain-errors"
)

// Program identifies a benefit program.
type Program string

const (
	// ProgramSNAP is food assistance: income test only, short recertification cycle.
	ProgramSNAP Program = "SNAP"
	// ProgramTANF is cash assistance for households with children.
	ProgramTANF Program = "TANF"
	// ProgramSSI is disability income; every claim needs medical verification.
	ProgramSSI Program = "SSI"
)

// AllPrograms returns the programs in processing order.
func AllPrograms() []Program {
	return []Program{ProgramSNAP, ProgramTANF, ProgramSSI}
}

// IsValid checks if the program is one of the supported enum values.
func (p Program) IsValid() bool {
	switch p {
	case ProgramSNAP, ProgramTANF, ProgramSSI:
		return true
	}
	return false
}

// ParseProgram creates a Program from a case-insensitive tag.
func ParseProgram(s string) (Program, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "program cannot be empty")
	}
	p := Program(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown program: "+s)
	}
	return p, nil
}

func (p Program) String() string {
	return string(p)
}

// RecertificationInterval is the number of periods an approval stays valid.
func (p Program) RecertificationInterval() int {
	switch p {
	case ProgramSNAP:
		return 6
	case ProgramTANF:
		return 12
	case ProgramSSI:
		return 36
	}
	return 0
}
