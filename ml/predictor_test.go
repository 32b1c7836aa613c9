package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucorisk/clinical"
)

func TestPredictorReferenceBoundaries(t *testing.T) {
	p := NewPredictor(ReferenceTree())

	tests := []struct {
		name   string
		sample clinical.PatientSample
		want   Label
	}{
		{"hba1c at split stays left", clinical.PatientSample{HbA1cLevel: 6.70}, LabelNotDiabetic},
		{"hba1c above split", clinical.PatientSample{HbA1cLevel: 6.71}, LabelDiabetic},
		{"glucose at split falls through", clinical.PatientSample{HbA1cLevel: 6.0, BloodGlucoseLevel: 210, Age: 30}, LabelNotDiabetic},
		{"glucose above split", clinical.PatientSample{HbA1cLevel: 6.0, BloodGlucoseLevel: 211, Age: 30}, LabelDiabetic},
		{"both high", clinical.PatientSample{HbA1cLevel: 7.0, BloodGlucoseLevel: 220, Age: 60}, LabelDiabetic},
		{"end to end sample", clinical.PatientSample{HbA1cLevel: 5.5, BloodGlucoseLevel: 120, Age: 40}, LabelNotDiabetic},
		{"older elevated hba1c", clinical.PatientSample{HbA1cLevel: 6.5, BloodGlucoseLevel: 150, Age: 70}, LabelNotDiabetic},
		{"older low hba1c", clinical.PatientSample{HbA1cLevel: 5.0, BloodGlucoseLevel: 100, Age: 70}, LabelNotDiabetic},
		{"young elevated hba1c", clinical.PatientSample{HbA1cLevel: 6.0, BloodGlucoseLevel: 100, Age: 20}, LabelNotDiabetic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Predict(tt.sample)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReferenceTreeGlucoseFraction(t *testing.T) {
	tree := ReferenceTree()

	label, err := tree.Predict([]float64{6.0, 210.00, 30})
	require.NoError(t, err)
	assert.Equal(t, 0, label)

	label, err = tree.Predict([]float64{6.0, 210.01, 30})
	require.NoError(t, err)
	assert.Equal(t, 1, label)
}

// Below the first two splits every leaf is 0, so the reference tree reduces
// to "hba1c > 6.70 or glucose > 210".
func TestReferenceTreeMatchesTopSplits(t *testing.T) {
	p := NewPredictor(ReferenceTree())
	for hba1c := 0; hba1c <= 200; hba1c += 5 {
		for glucose := clinical.MinGlucose; glucose <= clinical.MaxGlucose; glucose += 10 {
			for age := clinical.MinAge; age <= clinical.MaxAge; age += 15 {
				s := clinical.PatientSample{HbA1cLevel: float64(hba1c) / 10, BloodGlucoseLevel: glucose, Age: age}
				want := LabelNotDiabetic
				if s.HbA1cLevel > 6.70 || glucose > 210 {
					want = LabelDiabetic
				}
				got, err := p.Predict(s)
				require.NoError(t, err)
				require.Equal(t, want, got, "%+v", s)

				again, err := p.Predict(s)
				require.NoError(t, err)
				require.Equal(t, got, again)
			}
		}
	}
}

func TestPredictorUnavailable(t *testing.T) {
	p := NewPredictor(nil)
	assert.False(t, p.Ready())
	assert.Nil(t, p.Tree())

	_, err := p.Predict(clinical.PatientSample{HbA1cLevel: 5.5})
	assert.ErrorIs(t, err, ErrModelUnavailable)

	p.Swap(ReferenceTree())
	assert.True(t, p.Ready())
	label, err := p.Predict(clinical.PatientSample{HbA1cLevel: 7.5})
	require.NoError(t, err)
	assert.Equal(t, LabelDiabetic, label)
}

func TestLabelDescription(t *testing.T) {
	assert.Equal(t, "High risk (Likely Diabetic)", LabelDiabetic.Description())
	assert.Equal(t, "Low risk (Likely Not Diabetic)", LabelNotDiabetic.Description())
}
