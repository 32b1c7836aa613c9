package ml

import (
	"errors"
	"fmt"
	"slices"

	"glucorisk/clinical"
)

var ErrUnsupportedModel = errors.New("unsupported model type")

// ErrFeatureMismatch is wrapped when an artifact's feature names differ from
// the order samples are fed to the model.
var ErrFeatureMismatch = errors.New("artifact feature names do not match model input")

func LoadModel(modelType, path string) (*DecisionTree, error) {
	switch modelType {
	case ModelTypeDecisionTree, "":
		model := &DecisionTree{}
		if err := model.Load(path); err != nil {
			return nil, err
		}
		if !slices.Equal(model.FeatureNames(), clinical.FeatureNames) {
			return nil, &ArtifactLoadError{
				Path: path,
				Err:  fmt.Errorf("%w: got %v, want %v", ErrFeatureMismatch, model.FeatureNames(), clinical.FeatureNames),
			}
		}
		return model, nil
	default:
		return nil, &ArtifactLoadError{Path: path, Err: ErrUnsupportedModel}
	}
}
