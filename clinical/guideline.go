package clinical

import "fmt"

// RiskCategory is the guideline outcome for a sample.
type RiskCategory int

const (
	RiskLow RiskCategory = iota
	RiskModerate
	RiskHigh
)

// Guideline thresholds.
const (
	DiabeticHbA1c      = 6.5
	PreDiabeticHbA1c   = 5.7
	DiabeticGlucose    = 200
	PreDiabeticGlucose = 140
)

func (c RiskCategory) String() string {
	switch c {
	case RiskHigh:
		return "High"
	case RiskModerate:
		return "Moderate"
	default:
		return "Low"
	}
}

// Description is the text shown next to the model prediction.
func (c RiskCategory) Description() string {
	switch c {
	case RiskHigh:
		return "High risk: Diabetic"
	case RiskModerate:
		return "Moderate risk: Pre-Diabetic"
	default:
		return "Low risk: Likely Not Diabetic"
	}
}

// MarshalText encodes the category by name.
func (c RiskCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *RiskCategory) UnmarshalText(text []byte) error {
	switch string(text) {
	case "High":
		*c = RiskHigh
	case "Moderate":
		*c = RiskModerate
	case "Low":
		*c = RiskLow
	default:
		return fmt.Errorf("unknown risk category %q", text)
	}
	return nil
}

// Classify applies the published thresholds. The first matching rule wins
// and age is not consulted.
func Classify(s PatientSample) RiskCategory {
	switch {
	case s.HbA1cLevel >= DiabeticHbA1c || s.BloodGlucoseLevel >= DiabeticGlucose:
		return RiskHigh
	case (s.HbA1cLevel >= PreDiabeticHbA1c && s.HbA1cLevel < DiabeticHbA1c) ||
		(s.BloodGlucoseLevel >= PreDiabeticGlucose && s.BloodGlucoseLevel < DiabeticGlucose):
		return RiskModerate
	default:
		return RiskLow
	}
}
