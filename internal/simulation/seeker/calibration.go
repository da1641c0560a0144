package seeker

// Calibration holds the hand-tuned constants of the application decision.
// They describe one target population and are expected to be re-derived for
// another; the defaults reproduce the reference behavior.
type Calibration struct {
	// Propensity = BeliefWeight·belief + desperation + dependents + success + noise.
	BeliefWeight      float64
	DesperationWeight float64
	// DesperationIncome is the monthly income at which desperation reaches zero.
	DesperationIncome float64
	DependentsBoost   float64
	SuccessWeight     float64
	NoiseAmplitude    float64

	// Misreporting: P(fraud) = min(FraudScale·fraud_propensity, FraudCeiling),
	// P(error) = min(ErrorScale·error_propensity, ErrorCeiling).
	FraudScale   float64
	FraudCeiling float64
	ErrorScale   float64
	ErrorCeiling float64

	ReportedHouseholdSize int
}

// DefaultCalibration returns the reference constants.
func DefaultCalibration() Calibration {
	return Calibration{
		BeliefWeight:          0.60,
		DesperationWeight:     0.25,
		DesperationIncome:     2500,
		DependentsBoost:       0.10,
		SuccessWeight:         0.10,
		NoiseAmplitude:        0.15,
		FraudScale:            0.25,
		FraudCeiling:          0.50,
		ErrorScale:            0.075,
		ErrorCeiling:          0.15,
		ReportedHouseholdSize: 2,
	}
}
