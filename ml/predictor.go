package ml

import (
	"sync/atomic"

	"glucorisk/clinical"
)

// Predictor evaluates patient samples against the tree it holds. The tree
// itself is immutable; Swap replaces the whole handle.
type Predictor struct {
	tree atomic.Pointer[DecisionTree]
}

func NewPredictor(tree *DecisionTree) *Predictor {
	p := &Predictor{}
	if tree != nil {
		p.tree.Store(tree)
	}
	return p
}

func (p *Predictor) Predict(sample clinical.PatientSample) (Label, error) {
	tree := p.tree.Load()
	if tree == nil {
		return 0, ErrModelUnavailable
	}
	label, err := tree.Predict(sample.Features())
	if err != nil {
		return 0, err
	}
	return Label(label), nil
}

// Tree returns the current tree, or nil when none is loaded.
func (p *Predictor) Tree() *DecisionTree {
	return p.tree.Load()
}

func (p *Predictor) Ready() bool {
	tree := p.tree.Load()
	return tree != nil && len(tree.nodes) > 0
}

func (p *Predictor) Swap(tree *DecisionTree) {
	p.tree.Store(tree)
}
