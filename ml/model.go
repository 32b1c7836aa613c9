package ml

import "errors"

// Label is the binary class produced by the model.
type Label int

const (
	LabelNotDiabetic Label = 0
	LabelDiabetic    Label = 1
)

// ErrModelUnavailable is returned when a prediction is requested before a
// valid model has been loaded.
var ErrModelUnavailable = errors.New("model unavailable")

// Description is the text shown for the model prediction.
func (l Label) Description() string {
	if l == LabelDiabetic {
		return "High risk (Likely Diabetic)"
	}
	return "Low risk (Likely Not Diabetic)"
}

func (l Label) className() string {
	if l == LabelDiabetic {
		return "Diabetic"
	}
	return "Not Diabetic"
}

// Classifier maps a feature vector to a class label.
type Classifier interface {
	Predict(features []float64) (int, error)
}
