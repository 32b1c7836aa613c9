package ml

import "glucorisk/clinical"

const (
	featHbA1c = iota
	featGlucose
	featAge
)

// referenceNodes is the depth-5 tree fitted on the cleaned diabetes dataset
// and shipped as models/diabetes_tree.json. Every path below the first two
// splits ends in class 0; the splits are kept as fitted.
var referenceNodes = []TreeNode{
	{FeatureIdx: featHbA1c, Threshold: 6.70, LeftChild: 1, RightChild: 14},
	{FeatureIdx: featGlucose, Threshold: 210.00, LeftChild: 2, RightChild: 13},
	{FeatureIdx: featAge, Threshold: 53.50, LeftChild: 3, RightChild: 8},
	{FeatureIdx: featHbA1c, Threshold: 5.35, LeftChild: 4, RightChild: 5},
	leafNode(0),
	{FeatureIdx: featAge, Threshold: 38.50, LeftChild: 6, RightChild: 7},
	leafNode(0),
	leafNode(0),
	{FeatureIdx: featHbA1c, Threshold: 5.35, LeftChild: 9, RightChild: 10},
	leafNode(0),
	{FeatureIdx: featGlucose, Threshold: 113.00, LeftChild: 11, RightChild: 12},
	leafNode(0),
	leafNode(0),
	leafNode(1),
	leafNode(1),
}

func leafNode(label int) TreeNode {
	return TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: label, IsLeaf: true}
}

// ReferenceTree returns a fresh copy of the shipped tree.
func ReferenceTree() *DecisionTree {
	tree, err := NewDecisionTreeFromNodes(clinical.FeatureNames, referenceNodes)
	if err != nil {
		panic(err)
	}
	return tree
}
