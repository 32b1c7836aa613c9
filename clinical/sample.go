package clinical

import (
	"fmt"
	"math"
	"strings"
)

// Input domains accepted at the boundary.
const (
	MinHbA1c   = 0.0
	MaxHbA1c   = 20.0
	MinGlucose = 0
	MaxGlucose = 500
	MinAge     = 0
	MaxAge     = 120
)

// Feature column names, in the order the model consumes them.
const (
	FeatureHbA1c   = "HBA1C_LEVEL"
	FeatureGlucose = "BLOOD_GLUCOSE_LEVEL"
	FeatureAge     = "AGE"
)

// FeatureNames is the model feature order.
var FeatureNames = []string{FeatureHbA1c, FeatureGlucose, FeatureAge}

// PatientSample is one set of health metrics entered by a user.
type PatientSample struct {
	HbA1cLevel        float64 `json:"hba1c_level"`
	BloodGlucoseLevel int     `json:"blood_glucose_level"`
	Age               int     `json:"age"`
}

// FieldError describes a single out-of-domain field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed the domain check.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid sample: " + strings.Join(parts, "; ")
}

// Validate checks every field against its domain. The prediction engine
// assumes samples that passed this check.
func (s PatientSample) Validate() error {
	var fields []FieldError
	if math.IsNaN(s.HbA1cLevel) || s.HbA1cLevel < MinHbA1c || s.HbA1cLevel > MaxHbA1c {
		fields = append(fields, FieldError{
			Field:   "hba1c_level",
			Message: fmt.Sprintf("must be between %.1f and %.1f", MinHbA1c, MaxHbA1c),
		})
	}
	if s.BloodGlucoseLevel < MinGlucose || s.BloodGlucoseLevel > MaxGlucose {
		fields = append(fields, FieldError{
			Field:   "blood_glucose_level",
			Message: fmt.Sprintf("must be between %d and %d", MinGlucose, MaxGlucose),
		})
	}
	if s.Age < MinAge || s.Age > MaxAge {
		fields = append(fields, FieldError{
			Field:   "age",
			Message: fmt.Sprintf("must be between %d and %d", MinAge, MaxAge),
		})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Features returns the sample as a model feature vector ordered like FeatureNames.
func (s PatientSample) Features() []float64 {
	return []float64{s.HbA1cLevel, float64(s.BloodGlucoseLevel), float64(s.Age)}
}
