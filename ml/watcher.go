package ml

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ArtifactWatcher reloads the model artifact whenever the file is written
// or replaced and swaps the result into a Predictor. A reload that fails
// leaves the previous tree in place.
type ArtifactWatcher struct {
	path      string
	modelType string
	predictor *Predictor
	logger    *zap.Logger
	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

func WatchArtifact(modelType, path string, predictor *Predictor, logger *zap.Logger) (*ArtifactWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	// Watch the directory: atomic replacement swaps the file's inode.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &ArtifactWatcher{
		path:      abs,
		modelType: modelType,
		predictor: predictor,
		logger:    logger.Named("artifact-watcher"),
		watcher:   fw,
		done:      make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *ArtifactWatcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *ArtifactWatcher) reload() {
	tree, err := LoadModel(w.modelType, w.path)
	if err != nil {
		w.logger.Error("model reload failed, keeping previous model", zap.Error(err))
		return
	}
	w.predictor.Swap(tree)
	w.logger.Info("model reloaded",
		zap.String("path", w.path),
		zap.Int("nodes", len(tree.nodes)),
		zap.Int("depth", tree.Depth()),
	)
}

func (w *ArtifactWatcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}
