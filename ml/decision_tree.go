package ml

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	defaultMaxDepth = 5
	minSamplesSplit = 2
)

// DecisionTree is a binary classification tree stored as a flat node array.
// Node 0 is the root and every child index is greater than its parent's.
// A tree is not modified after Train or Load returns.
type DecisionTree struct {
	maxDepth     int
	featureNames []string
	nodes        []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

func NewDecisionTree(maxDepth int, featureNames []string) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &DecisionTree{
		maxDepth:     maxDepth,
		featureNames: append([]string(nil), featureNames...),
	}
}

// NewDecisionTreeFromNodes builds a tree from an already fitted node array.
func NewDecisionTreeFromNodes(featureNames []string, nodes []TreeNode) (*DecisionTree, error) {
	if err := validateNodes(nodes, len(featureNames)); err != nil {
		return nil, err
	}
	return &DecisionTree{
		maxDepth:     depthOf(nodes, 0),
		featureNames: append([]string(nil), featureNames...),
		nodes:        append([]TreeNode(nil), nodes...),
	}, nil
}

func (dt *DecisionTree) Train(features [][]float64, labels []int) error {
	if len(features) == 0 || len(labels) == 0 {
		return errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return errors.New("features and labels size mismatch")
	}
	width := len(features[0])
	for i, row := range features {
		if len(row) != width {
			return fmt.Errorf("row %d has %d features, expected %d", i, len(row), width)
		}
	}
	if len(dt.featureNames) != 0 && len(dt.featureNames) != width {
		return fmt.Errorf("tree has %d feature names but rows have %d features", len(dt.featureNames), width)
	}
	if dt.maxDepth <= 0 {
		dt.maxDepth = defaultMaxDepth
	}

	b := &treeBuilder{maxDepth: dt.maxDepth}
	b.build(features, labels, 0)
	dt.nodes = b.nodes
	return nil
}

// Predict walks from the root to a leaf: features[FeatureIdx] <= Threshold
// goes left, anything greater goes right.
func (dt *DecisionTree) Predict(features []float64) (int, error) {
	if dt == nil || len(dt.nodes) == 0 {
		return 0, ErrModelUnavailable
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
}

func (dt *DecisionTree) Nodes() []TreeNode {
	return append([]TreeNode(nil), dt.nodes...)
}

func (dt *DecisionTree) FeatureNames() []string {
	return append([]string(nil), dt.featureNames...)
}

// Depth is the number of splits on the longest root-to-leaf path.
func (dt *DecisionTree) Depth() int {
	if len(dt.nodes) == 0 {
		return 0
	}
	return depthOf(dt.nodes, 0)
}

// FeatureThresholds returns, per feature name, the threshold of the
// shallowest node splitting on that feature.
func (dt *DecisionTree) FeatureThresholds() map[string]float64 {
	out := make(map[string]float64)
	if len(dt.nodes) == 0 {
		return out
	}
	queue := []int{0}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		node := dt.nodes[idx]
		if node.IsLeaf {
			continue
		}
		name := dt.featureName(node.FeatureIdx)
		if _, seen := out[name]; !seen {
			out[name] = node.Threshold
		}
		queue = append(queue, node.LeftChild, node.RightChild)
	}
	return out
}

// Render draws the tree as an indented yes/no decision flow.
func (dt *DecisionTree) Render() string {
	var b strings.Builder
	b.WriteString("Start\n")
	if len(dt.nodes) == 0 {
		b.WriteString(" └── (no model loaded)\n")
		return b.String()
	}
	dt.renderNode(&b, 0, " ")
	return b.String()
}

func (dt *DecisionTree) renderNode(b *strings.Builder, idx int, prefix string) {
	node := dt.nodes[idx]
	if node.IsLeaf {
		fmt.Fprintf(b, "%s└── %s\n", prefix, leafText(node))
		return
	}
	fmt.Fprintf(b, "%s└── Is %s > %.2f?\n", prefix, dt.featureName(node.FeatureIdx), node.Threshold)

	// A Yes branch that ends in a prediction is listed first; otherwise No
	// comes first.
	inner := prefix + "    "
	if dt.nodes[node.RightChild].IsLeaf && !dt.nodes[node.LeftChild].IsLeaf {
		dt.renderBranch(b, node.RightChild, inner, "├── Yes", inner+"|   ")
		dt.renderBranch(b, node.LeftChild, inner, "└── No", inner+"    ")
		return
	}
	dt.renderBranch(b, node.LeftChild, inner, "├── No", inner+"|   ")
	dt.renderBranch(b, node.RightChild, inner, "└── Yes", inner+"    ")
}

func (dt *DecisionTree) renderBranch(b *strings.Builder, idx int, prefix, head, childPrefix string) {
	child := dt.nodes[idx]
	if child.IsLeaf {
		fmt.Fprintf(b, "%s%s → %s\n", prefix, head, leafText(child))
		return
	}
	fmt.Fprintf(b, "%s%s\n", prefix, head)
	dt.renderNode(b, idx, childPrefix)
}

func leafText(node TreeNode) string {
	return fmt.Sprintf("Predict: %s (class %d)", Label(node.ClassLabel).className(), node.ClassLabel)
}

func (dt *DecisionTree) featureName(idx int) string {
	if idx >= 0 && idx < len(dt.featureNames) {
		return dt.featureNames[idx]
	}
	return fmt.Sprintf("feature_%d", idx)
}

func depthOf(nodes []TreeNode, idx int) int {
	node := nodes[idx]
	if node.IsLeaf {
		return 0
	}
	left := depthOf(nodes, node.LeftChild)
	right := depthOf(nodes, node.RightChild)
	if left > right {
		return left + 1
	}
	return right + 1
}

func validateNodes(nodes []TreeNode, featureCount int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if node.ClassLabel != int(LabelNotDiabetic) && node.ClassLabel != int(LabelDiabetic) {
				return fmt.Errorf("node %d: leaf label %d is not 0 or 1", i, node.ClassLabel)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

type treeBuilder struct {
	maxDepth int
	nodes    []TreeNode
}

func (b *treeBuilder) build(features [][]float64, labels []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, TreeNode{})

	label := majorityLabel(labels)
	leaf := TreeNode{
		FeatureIdx: -1,
		LeftChild:  -1,
		RightChild: -1,
		ClassLabel: label,
		IsLeaf:     true,
	}
	if depth >= b.maxDepth || len(labels) < minSamplesSplit || isPure(labels) {
		b.nodes[idx] = leaf
		return idx
	}

	bestFeature, threshold, ok := findBestSplit(features, labels)
	if !ok {
		b.nodes[idx] = leaf
		return idx
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		b.nodes[idx] = leaf
		return idx
	}

	left := b.build(leftFeatures, leftLabels, depth+1)
	right := b.build(rightFeatures, rightLabels, depth+1)
	b.nodes[idx] = TreeNode{
		FeatureIdx: bestFeature,
		Threshold:  threshold,
		LeftChild:  left,
		RightChild: right,
		ClassLabel: label,
	}
	return idx
}

// findBestSplit scans the midpoints between consecutive distinct values of
// every feature and keeps the split with the lowest weighted Gini impurity.
// Ties keep the lowest feature index, then the lowest threshold.
func findBestSplit(features [][]float64, labels []int) (int, float64, bool) {
	parent := gini(countLabels(labels), len(labels))
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := parent

	order := make([]int, len(features))
	for featureIdx := 0; featureIdx < len(features[0]); featureIdx++ {
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return features[order[a]][featureIdx] < features[order[b]][featureIdx]
		})

		left := make(map[int]int)
		right := countLabels(labels)
		for pos := 0; pos < len(order)-1; pos++ {
			label := labels[order[pos]]
			left[label]++
			right[label]--

			current := features[order[pos]][featureIdx]
			next := features[order[pos+1]][featureIdx]
			if current == next {
				continue
			}
			nLeft := pos + 1
			nRight := len(order) - nLeft
			impurity := (float64(nLeft)*gini(left, nLeft) + float64(nRight)*gini(right, nRight)) / float64(len(order))
			if impurity < bestImpurity-1e-12 {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = midpoint(current, next)
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func midpoint(low, high float64) float64 {
	mid := low + (high-low)/2
	if mid >= high {
		return low
	}
	return mid
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	leftFeatures := make([][]float64, 0)
	leftLabels := make([]int, 0)
	rightFeatures := make([][]float64, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func countLabels(labels []int) map[int]int {
	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}
	return counts
}

func gini(counts map[int]int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(total)
		impurity -= prob * prob
	}
	return impurity
}

// majorityLabel breaks ties toward the smaller label.
func majorityLabel(labels []int) int {
	counts := countLabels(labels)
	bestLabel := 0
	bestCount := -1
	for label, count := range counts {
		if count > bestCount || (count == bestCount && label < bestLabel) {
			bestCount = count
			bestLabel = label
		}
	}
	return bestLabel
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
