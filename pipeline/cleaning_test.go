package pipeline

import (
	"testing"

	"glucorisk/ml"
)

func TestNewDataCleaner(t *testing.T) {
	cleaner := NewDataCleaner()
	if cleaner == nil {
		t.Fatal("NewDataCleaner returned nil")
	}

	if len(cleaner.rules) == 0 {
		t.Error("No default rules added")
	}
}

func TestDomainValidationRule(t *testing.T) {
	rule := NewDomainValidationRule()

	tests := []struct {
		name    string
		row     Row
		wantErr bool
	}{
		{name: "valid row", row: Row{Features: []float64{5.5, 120, 40}}, wantErr: false},
		{name: "upper bounds", row: Row{Features: []float64{20, 500, 120}}, wantErr: false},
		{name: "hba1c too high", row: Row{Features: []float64{20.5, 120, 40}}, wantErr: true},
		{name: "negative glucose", row: Row{Features: []float64{5.5, -1, 40}}, wantErr: true},
		{name: "age too high", row: Row{Features: []float64{5.5, 120, 121}}, wantErr: true},
		{name: "missing feature", row: Row{Features: []float64{5.5, 120}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Apply(tt.row)
			if (err != nil) != tt.wantErr {
				t.Errorf("DomainValidationRule.Apply() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDuplicateDetectionRule(t *testing.T) {
	rule := NewDuplicateDetectionRule()

	if err := rule.Apply(Row{Features: []float64{6.0, 140, 50}, Label: 0}); err != nil {
		t.Fatalf("first row rejected: %v", err)
	}
	if err := rule.Apply(Row{Features: []float64{6.0, 140, 50}, Label: 1}); err != nil {
		t.Errorf("row with a different label rejected: %v", err)
	}
	if err := rule.Apply(Row{Features: []float64{6.0, 140, 50}, Label: 0}); err == nil {
		t.Error("expected duplicate row to be rejected")
	}
}

func TestDataCleaner_Clean(t *testing.T) {
	cleaner := NewDataCleaner()
	cleaner.AddRule(NewDuplicateDetectionRule())

	ds := &ml.Dataset{
		Features: [][]float64{
			{5.5, 120, 40},
			{7.0, 220, 60},
			{25.0, 120, 40},
			{5.5, 120, 40},
			{6.2, 90, 33},
		},
		Labels: []int{0, 1, 1, 0, 0},
	}

	cleaned, issues := cleaner.Clean(ds)

	if cleaned.Len() != 3 {
		t.Fatalf("Expected 3 cleaned rows, got %d", cleaned.Len())
	}
	if cleaned.Features[2][0] != 6.2 {
		t.Errorf("Expected input order preserved, got %v", cleaned.Features)
	}
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d", len(issues))
	}
	if issues[0].Rule != "domain_validation" || issues[0].Row != 2 {
		t.Errorf("Unexpected first issue: %+v", issues[0])
	}
	if issues[1].Rule != "duplicate_detection" || issues[1].Row != 3 {
		t.Errorf("Unexpected second issue: %+v", issues[1])
	}

	stats := cleaner.GetStats()
	if stats.TotalProcessed != 5 || stats.Passed != 3 || stats.Rejected != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.Issues["duplicate_detection"] != 1 {
		t.Errorf("Expected 1 duplicate issue, got %d", stats.Issues["duplicate_detection"])
	}

	summary := SummarizeIssues(issues)
	if summary["domain_validation"] != 1 {
		t.Errorf("Expected 1 domain issue in summary, got %d", summary["domain_validation"])
	}
}
