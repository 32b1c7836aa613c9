package assessment

import (
	"fmt"
	"strings"

	"glucorisk/clinical"
	"glucorisk/ml"
)

var featureLabels = map[string]string{
	clinical.FeatureHbA1c:   "HbA1c Level",
	clinical.FeatureGlucose: "Blood Glucose Level",
	clinical.FeatureAge:     "Age",
}

var featureUnits = map[string]string{
	clinical.FeatureHbA1c:   "%",
	clinical.FeatureGlucose: " mg/dL",
	clinical.FeatureAge:     " years",
}

// ThresholdComparison tabulates the guideline threshold next to the first
// split the tree learned on each feature.
func ThresholdComparison(tree *ml.DecisionTree) string {
	var learned map[string]float64
	if tree != nil {
		learned = tree.FeatureThresholds()
	}

	var b strings.Builder
	b.WriteString("Model vs Medical Thresholds Comparison\n\n")
	b.WriteString("| Feature | Medical Threshold | Model Threshold |\n")
	b.WriteString("|:--------|:------------------|:----------------|\n")
	for _, name := range clinical.FeatureNames {
		model := "Not used"
		if threshold, ok := learned[name]; ok {
			if name == clinical.FeatureAge {
				model = fmt.Sprintf("Split at %.1f%s", threshold, featureUnits[name])
			} else {
				model = fmt.Sprintf(">%.2f%s", threshold, featureUnits[name])
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", featureLabels[name], clinical.GuidelineThresholds[name], model)
	}
	return b.String()
}
