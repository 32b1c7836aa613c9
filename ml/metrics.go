package ml

// Metrics summarizes a classifier on a held-out set, with class 1 as the
// positive class.
type Metrics struct {
	Samples   int     `json:"samples"`
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

func Evaluate(model Classifier, ds *Dataset) Metrics {
	m := Metrics{Samples: ds.Len()}
	if ds.Len() == 0 {
		return m
	}

	var correct int
	var truePositive int
	var predictedPositive int
	var actualPositive int

	for i, feature := range ds.Features {
		label, err := model.Predict(feature)
		if err != nil {
			continue
		}
		if label == ds.Labels[i] {
			correct++
		}
		if label == int(LabelDiabetic) {
			predictedPositive++
		}
		if ds.Labels[i] == int(LabelDiabetic) {
			actualPositive++
			if label == int(LabelDiabetic) {
				truePositive++
			}
		}
	}

	m.Accuracy = float64(correct) / float64(ds.Len())
	if predictedPositive > 0 {
		m.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		m.Recall = float64(truePositive) / float64(actualPositive)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
