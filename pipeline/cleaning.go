package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"glucorisk/clinical"
	"glucorisk/ml"
)

// Row 一条训练样本
type Row struct {
	Index    int
	Features []float64
	Label    int
}

// CleaningRule 清洗规则
type CleaningRule interface {
	Apply(Row) error
	Name() string
}

// QualityIssue 质量问题
type QualityIssue struct {
	Rule    string `json:"rule"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// CleaningStats 清洗统计
type CleaningStats struct {
	TotalProcessed int64            `json:"total_processed"`
	Passed         int64            `json:"passed"`
	Rejected       int64            `json:"rejected"`
	Issues         map[string]int64 `json:"issues"`
	LastClean      time.Time        `json:"last_clean"`
}

// DataCleaner 数据清洗器
type DataCleaner struct {
	rules []CleaningRule

	stats     CleaningStats
	statsLock sync.RWMutex
}

// NewDataCleaner 创建数据清洗器，默认只做取值范围检查
func NewDataCleaner() *DataCleaner {
	cleaner := &DataCleaner{
		stats: CleaningStats{Issues: make(map[string]int64)},
	}
	cleaner.AddRule(NewDomainValidationRule())
	return cleaner
}

// AddRule 添加清洗规则
func (dc *DataCleaner) AddRule(rule CleaningRule) {
	dc.rules = append(dc.rules, rule)
}

// Clean drops every row that fails a rule and returns the remaining rows as
// a new dataset. Input order is preserved.
func (dc *DataCleaner) Clean(ds *ml.Dataset) (*ml.Dataset, []QualityIssue) {
	dc.statsLock.Lock()
	defer dc.statsLock.Unlock()

	cleaned := &ml.Dataset{}
	var issues []QualityIssue
	for i := range ds.Labels {
		dc.stats.TotalProcessed++
		row := Row{Index: i, Features: ds.Features[i], Label: ds.Labels[i]}

		rejected := false
		for _, rule := range dc.rules {
			if err := rule.Apply(row); err != nil {
				issues = append(issues, QualityIssue{Rule: rule.Name(), Row: i, Message: err.Error()})
				dc.stats.Issues[rule.Name()]++
				rejected = true
				break
			}
		}
		if rejected {
			dc.stats.Rejected++
			continue
		}
		dc.stats.Passed++
		cleaned.Features = append(cleaned.Features, row.Features)
		cleaned.Labels = append(cleaned.Labels, row.Label)
	}
	dc.stats.LastClean = time.Now()
	return cleaned, issues
}

// GetStats 获取统计信息
func (dc *DataCleaner) GetStats() CleaningStats {
	dc.statsLock.RLock()
	defer dc.statsLock.RUnlock()

	stats := dc.stats
	stats.Issues = make(map[string]int64, len(dc.stats.Issues))
	for k, v := range dc.stats.Issues {
		stats.Issues[k] = v
	}
	return stats
}

// ============ 清洗规则实现 ============

// DomainValidationRule rejects rows whose features fall outside the input
// domains accepted for prediction.
type DomainValidationRule struct{}

func NewDomainValidationRule() *DomainValidationRule {
	return &DomainValidationRule{}
}

func (r *DomainValidationRule) Name() string {
	return "domain_validation"
}

func (r *DomainValidationRule) Apply(row Row) error {
	if len(row.Features) != len(clinical.FeatureNames) {
		return fmt.Errorf("expected %d features, got %d", len(clinical.FeatureNames), len(row.Features))
	}
	hba1c, glucose, age := row.Features[0], row.Features[1], row.Features[2]
	if hba1c < clinical.MinHbA1c || hba1c > clinical.MaxHbA1c {
		return fmt.Errorf("%s %.2f out of range [%.1f, %.1f]", clinical.FeatureHbA1c, hba1c, clinical.MinHbA1c, clinical.MaxHbA1c)
	}
	if glucose < clinical.MinGlucose || glucose > clinical.MaxGlucose {
		return fmt.Errorf("%s %.0f out of range [%d, %d]", clinical.FeatureGlucose, glucose, clinical.MinGlucose, clinical.MaxGlucose)
	}
	if age < clinical.MinAge || age > clinical.MaxAge {
		return fmt.Errorf("%s %.0f out of range [%d, %d]", clinical.FeatureAge, age, clinical.MinAge, clinical.MaxAge)
	}
	return nil
}

// DuplicateDetectionRule 重复检测规则，同一特征与标签组合只保留第一条
type DuplicateDetectionRule struct {
	seenMap map[string]struct{}
	mu      sync.Mutex
}

func NewDuplicateDetectionRule() *DuplicateDetectionRule {
	return &DuplicateDetectionRule{
		seenMap: make(map[string]struct{}),
	}
}

func (r *DuplicateDetectionRule) Name() string {
	return "duplicate_detection"
}

func (r *DuplicateDetectionRule) Apply(row Row) error {
	key := rowKey(row)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seenMap[key]; exists {
		return fmt.Errorf("duplicate row: %s", key)
	}
	r.seenMap[key] = struct{}{}
	return nil
}

func rowKey(row Row) string {
	parts := make([]string, 0, len(row.Features)+1)
	for _, v := range row.Features {
		parts = append(parts, fmt.Sprintf("%g", v))
	}
	parts = append(parts, fmt.Sprintf("%d", row.Label))
	return strings.Join(parts, "_")
}

// SummarizeIssues 按规则统计问题数量，用于日志输出
func SummarizeIssues(issues []QualityIssue) map[string]int {
	summary := make(map[string]int)
	for _, issue := range issues {
		summary[issue.Rule]++
	}
	return summary
}
