package ml

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"glucorisk/clinical"
)

func TestArtifactWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	require.NoError(t, ReferenceTree().Save(path))

	initial, err := LoadModel(ModelTypeDecisionTree, path)
	require.NoError(t, err)
	predictor := NewPredictor(initial)

	w, err := WatchArtifact(ModelTypeDecisionTree, path, predictor, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	low := clinical.PatientSample{HbA1cLevel: 5.0, BloodGlucoseLevel: 90, Age: 30}
	label, err := predictor.Predict(low)
	require.NoError(t, err)
	require.Equal(t, LabelNotDiabetic, label)

	alwaysDiabetic, err := NewDecisionTreeFromNodes(clinical.FeatureNames, []TreeNode{leafNode(1)})
	require.NoError(t, err)
	require.NoError(t, alwaysDiabetic.Save(path))

	require.Eventually(t, func() bool {
		label, err := predictor.Predict(low)
		return err == nil && label == LabelDiabetic
	}, 5*time.Second, 20*time.Millisecond)

	// A broken write keeps the last good tree.
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	time.Sleep(200 * time.Millisecond)
	label, err = predictor.Predict(low)
	require.NoError(t, err)
	assert.Equal(t, LabelDiabetic, label)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
