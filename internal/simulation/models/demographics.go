package models

// Race is the self-reported race/ethnicity category of a seeker.
type Race string

const (
	RaceWhite    Race = "White"
	RaceBlack    Race = "Black"
	RaceHispanic Race = "Hispanic"
	RaceAsian    Race = "Asian"
)

// AllRaces returns the categories in generator order.
func AllRaces() []Race {
	return []Race{RaceWhite, RaceBlack, RaceHispanic, RaceAsian}
}

// IsValid checks if the race is one of the supported enum values.
func (r Race) IsValid() bool {
	switch r {
	case RaceWhite, RaceBlack, RaceHispanic, RaceAsian:
		return true
	}
	return false
}

// Education is the highest completed education tier.
type Education string

const (
	EducationUnknown     Education = ""
	EducationLessThanHS  Education = "less_than_hs"
	EducationHighSchool  Education = "high_school"
	EducationSomeCollege Education = "some_college"
	EducationBachelors   Education = "bachelors"
	EducationGraduate    Education = "graduate"
)

// IsValid accepts the known tiers and the unknown tier.
func (e Education) IsValid() bool {
	switch e {
	case EducationUnknown, EducationLessThanHS, EducationHighSchool, EducationSomeCollege, EducationBachelors, EducationGraduate:
		return true
	}
	return false
}

// Employment is the labor-force status of a seeker.
type Employment string

const (
	EmploymentUnknown         Employment = ""
	EmploymentFullTime        Employment = "employed_full_time"
	EmploymentPartTime        Employment = "employed_part_time"
	EmploymentUnemployed      Employment = "unemployed"
	EmploymentNotInLaborForce Employment = "not_in_labor_force"
)

// IsValid accepts the known statuses and the unknown status.
func (e Employment) IsValid() bool {
	switch e {
	case EmploymentUnknown, EmploymentFullTime, EmploymentPartTime, EmploymentUnemployed, EmploymentNotInLaborForce:
		return true
	}
	return false
}

// Employed reports full- or part-time work.
func (e Employment) Employed() bool {
	return e == EmploymentFullTime || e == EmploymentPartTime
}

// Demographics holds the auxiliary attributes used by derived calculations.
// Age 0 means unknown. Attributes with no first-class field go in Extra.
type Demographics struct {
	Age         int               `json:"age,omitempty"`
	Sex         string            `json:"sex,omitempty"`
	Education   Education         `json:"education,omitempty"`
	Employment  Employment        `json:"employment,omitempty"`
	Married     bool              `json:"married"`
	NumChildren int               `json:"num_children"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// AgeKnown reports whether Age carries a value.
func (d Demographics) AgeKnown() bool {
	return d.Age > 0
}
