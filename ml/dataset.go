package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"glucorisk/clinical"
)

// LabelColumn is the CSV column holding the training target.
const LabelColumn = "DIABETES"

type Dataset struct {
	Features [][]float64
	Labels   []int
}

func (d *Dataset) Len() int {
	return len(d.Labels)
}

func LoadCSVFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return LoadCSV(file)
}

// LoadCSV reads the feature columns named by clinical.FeatureNames and the
// DIABETES label column. Header names are matched case-insensitively and a
// leading byte order mark is dropped.
func LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, err
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToUpper(strings.TrimSpace(name))] = i
	}

	featureCols := make([]int, len(clinical.FeatureNames))
	for i, name := range clinical.FeatureNames {
		col, ok := columns[name]
		if !ok {
			return nil, fmt.Errorf("csv missing column %s", name)
		}
		featureCols[i] = col
	}
	labelCol, ok := columns[LabelColumn]
	if !ok {
		return nil, fmt.Errorf("csv missing column %s", LabelColumn)
	}

	ds := &Dataset{}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, err
		}

		row := make([]float64, len(featureCols))
		for i, col := range featureCols {
			value, err := parseCell(record, col)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, clinical.FeatureNames[i], err)
			}
			row[i] = value
		}
		label, err := parseCell(record, labelCol)
		if err != nil {
			return nil, fmt.Errorf("line %d, column %s: %w", line, LabelColumn, err)
		}
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("line %d: label %v is not 0 or 1", line, label)
		}

		ds.Features = append(ds.Features, row)
		ds.Labels = append(ds.Labels, int(label))
	}
	if ds.Len() == 0 {
		return nil, errors.New("csv has no data rows")
	}
	return ds, nil
}

func parseCell(record []string, col int) (float64, error) {
	if col >= len(record) {
		return 0, errors.New("missing value")
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.New("value is not finite")
	}
	return value, nil
}

// Split shuffles the rows with the given seed and holds out testRatio of
// them for evaluation.
func (d *Dataset) Split(testRatio float64, seed int64) (train, test *Dataset) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(d.Len())

	nTest := int(math.Ceil(float64(d.Len()) * testRatio))
	split := d.Len() - nTest
	train, test = &Dataset{}, &Dataset{}
	for i, idx := range indices {
		if i < split {
			train.Features = append(train.Features, d.Features[idx])
			train.Labels = append(train.Labels, d.Labels[idx])
		} else {
			test.Features = append(test.Features, d.Features[idx])
			test.Labels = append(test.Labels, d.Labels[idx])
		}
	}
	return train, test
}
