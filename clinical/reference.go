package clinical

// ReferenceRanges lists the official diagnosis ranges shown under the results.
const ReferenceRanges = `Official Medical Reference Ranges for Diabetes Diagnosis

- HbA1c < 5.7% -> Normal
- HbA1c 5.7% - 6.4% -> Pre-Diabetic
- HbA1c >= 6.5% -> Diabetic

- Fasting Blood Glucose < 100 mg/dL -> Normal
- Blood Glucose 100-125 mg/dL -> Pre-Diabetic
- Blood Glucose >= 126 mg/dL -> Diabetic
- Post-Meal Blood Glucose >= 200 mg/dL -> Diabetic
`

// GuidelineThresholds is the medical threshold per model feature, used when
// comparing against the thresholds the tree learned.
var GuidelineThresholds = map[string]string{
	FeatureHbA1c:   ">=6.5%",
	FeatureGlucose: ">=200 mg/dL",
	FeatureAge:     "Not officially used",
}
