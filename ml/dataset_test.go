package ml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	input := "\ufeffgender,age,hba1c_level,blood_glucose_level,diabetes\n" +
		"Female,80,6.6,140,0\n" +
		"Male,28,5.7,158,0\n" +
		"Male,67,7.0, 220,1.0\n"

	ds, err := LoadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	assert.Equal(t, []float64{6.6, 140, 80}, ds.Features[0])
	assert.Equal(t, []float64{7.0, 220, 67}, ds.Features[2])
	assert.Equal(t, []int{0, 0, 1}, ds.Labels)
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "empty"},
		{"missing feature", "HBA1C_LEVEL,AGE,DIABETES\n5.5,40,0\n", "BLOOD_GLUCOSE_LEVEL"},
		{"missing label", "HBA1C_LEVEL,BLOOD_GLUCOSE_LEVEL,AGE\n5.5,120,40\n", "DIABETES"},
		{"no rows", "HBA1C_LEVEL,BLOOD_GLUCOSE_LEVEL,AGE,DIABETES\n", "no data rows"},
		{"bad number", "HBA1C_LEVEL,BLOOD_GLUCOSE_LEVEL,AGE,DIABETES\nabc,120,40,0\n", "line 2"},
		{"bad label", "HBA1C_LEVEL,BLOOD_GLUCOSE_LEVEL,AGE,DIABETES\n5.5,120,40,2\n", "not 0 or 1"},
		{"nan value", "HBA1C_LEVEL,BLOOD_GLUCOSE_LEVEL,AGE,DIABETES\nNaN,120,40,0\n", "not finite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDatasetSplit(t *testing.T) {
	ds := syntheticDataset()

	train, test := ds.Split(0.2, 42)
	assert.Equal(t, ds.Len(), train.Len()+test.Len())
	assert.Equal(t, 123, test.Len())

	again, againTest := ds.Split(0.2, 42)
	assert.Equal(t, train.Labels, again.Labels)
	assert.Equal(t, test.Features, againTest.Features)

	_, defaulted := ds.Split(1.5, 42)
	assert.Equal(t, test.Len(), defaulted.Len())
}
