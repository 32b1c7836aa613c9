package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const ModelTypeDecisionTree = "decision_tree"

// ArtifactLoadError reports a model artifact that is missing or malformed.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load model artifact %q: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

type treeArtifact struct {
	ModelType    string     `json:"model_type"`
	FeatureNames []string   `json:"feature_names"`
	MaxDepth     int        `json:"max_depth"`
	Nodes        []TreeNode `json:"nodes"`
}

// Save writes the tree next to path and renames it into place, so readers
// never observe a partially written artifact.
func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not trained")
	}
	payload, err := json.MarshalIndent(treeArtifact{
		ModelType:    ModelTypeDecisionTree,
		FeatureNames: dt.featureNames,
		MaxDepth:     dt.maxDepth,
		Nodes:        dt.nodes,
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load replaces the receiver's contents with the artifact at path. Any
// failure is returned as an *ArtifactLoadError and leaves the tree untouched.
func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return &ArtifactLoadError{Path: path, Err: err}
	}
	var art treeArtifact
	if err := json.Unmarshal(payload, &art); err != nil {
		return &ArtifactLoadError{Path: path, Err: err}
	}
	if art.ModelType != "" && art.ModelType != ModelTypeDecisionTree {
		return &ArtifactLoadError{Path: path, Err: fmt.Errorf("unexpected model type %q", art.ModelType)}
	}
	loaded, err := NewDecisionTreeFromNodes(art.FeatureNames, art.Nodes)
	if err != nil {
		return &ArtifactLoadError{Path: path, Err: err}
	}
	if art.MaxDepth > 0 {
		loaded.maxDepth = art.MaxDepth
	}
	*dt = *loaded
	return nil
}
