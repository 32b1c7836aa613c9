package ml

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucorisk/clinical"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, ReferenceTree().Save(path))

	loaded, err := LoadModel(ModelTypeDecisionTree, path)
	require.NoError(t, err)
	assert.Equal(t, ReferenceTree().Nodes(), loaded.Nodes())
	assert.Equal(t, clinical.FeatureNames, loaded.FeatureNames())
	assert.Equal(t, 5, loaded.Depth())
}

func TestSaveUntrained(t *testing.T) {
	err := NewDecisionTree(3, nil).Save(filepath.Join(t.TempDir(), "tree.json"))
	assert.Error(t, err)
}

func TestShippedArtifactMatchesReferenceTree(t *testing.T) {
	loaded, err := LoadModel(ModelTypeDecisionTree, filepath.Join("..", "models", "diabetes_tree.json"))
	require.NoError(t, err)
	assert.Equal(t, ReferenceTree().Nodes(), loaded.Nodes())
	assert.Equal(t, clinical.FeatureNames, loaded.FeatureNames())
}

func TestLoadArtifactErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadModel(ModelTypeDecisionTree, filepath.Join(dir, "missing.json"))
	var loadErr *ArtifactLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("{not json"), 0o600))
	_, err = LoadModel(ModelTypeDecisionTree, garbage)
	require.True(t, errors.As(err, &loadErr))

	cyclic := filepath.Join(dir, "cyclic.json")
	require.NoError(t, os.WriteFile(cyclic, []byte(`{
		"model_type": "decision_tree",
		"feature_names": ["HBA1C_LEVEL", "BLOOD_GLUCOSE_LEVEL", "AGE"],
		"nodes": [{"feature_idx": 0, "threshold": 1, "left_child": 0, "right_child": 1}, {"is_leaf": true}]
	}`), 0o600))
	_, err = LoadModel(ModelTypeDecisionTree, cyclic)
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, err.Error(), "child index")

	wrongType := filepath.Join(dir, "forest.json")
	require.NoError(t, os.WriteFile(wrongType, []byte(`{"model_type": "random_forest", "nodes": []}`), 0o600))
	_, err = LoadModel(ModelTypeDecisionTree, wrongType)
	require.True(t, errors.As(err, &loadErr))

	_, err = LoadModel("random_forest", garbage)
	assert.ErrorIs(t, err, ErrUnsupportedModel)

	reordered := filepath.Join(dir, "reordered.json")
	require.NoError(t, os.WriteFile(reordered, []byte(`{
		"model_type": "decision_tree",
		"feature_names": ["AGE", "HBA1C_LEVEL", "BLOOD_GLUCOSE_LEVEL"],
		"nodes": [
			{"feature_idx": 0, "threshold": 50, "left_child": 1, "right_child": 2},
			{"is_leaf": true, "class_label": 0},
			{"is_leaf": true, "class_label": 1}
		]
	}`), 0o600))
	_, err = LoadModel(ModelTypeDecisionTree, reordered)
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, ErrFeatureMismatch)

	wide := filepath.Join(dir, "wide.json")
	require.NoError(t, os.WriteFile(wide, []byte(`{
		"model_type": "decision_tree",
		"feature_names": ["HBA1C_LEVEL", "BLOOD_GLUCOSE_LEVEL", "AGE", "BMI"],
		"nodes": [
			{"feature_idx": 3, "threshold": 30, "left_child": 1, "right_child": 2},
			{"is_leaf": true, "class_label": 0},
			{"is_leaf": true, "class_label": 1}
		]
	}`), 0o600))
	_, err = LoadModel(ModelTypeDecisionTree, wide)
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, ErrFeatureMismatch)

	unnamed := filepath.Join(dir, "unnamed.json")
	require.NoError(t, os.WriteFile(unnamed, []byte(`{
		"model_type": "decision_tree",
		"nodes": [{"is_leaf": true, "class_label": 1}]
	}`), 0o600))
	_, err = LoadModel(ModelTypeDecisionTree, unnamed)
	require.True(t, errors.As(err, &loadErr))
	assert.ErrorIs(t, err, ErrFeatureMismatch)
}

func TestLoadFailureLeavesTreeUntouched(t *testing.T) {
	tree := ReferenceTree()
	err := tree.Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Len(t, tree.Nodes(), 15)
}
