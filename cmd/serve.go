package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"glucorisk/assessment"
	"glucorisk/db"
	qhttp "glucorisk/http"
	"glucorisk/ml"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP prediction server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		// 1. Load model; a missing or broken artifact is fatal.
		tree, err := ml.LoadModel(cfg.ML.ModelType, cfg.ML.ModelPath)
		if err != nil {
			log.Error("failed to load model", zap.Error(err))
			return err
		}
		log.Info("model loaded",
			zap.String("path", cfg.ML.ModelPath),
			zap.Int("depth", tree.Depth()),
			zap.Int("nodes", len(tree.Nodes())),
		)
		predictor := ml.NewPredictor(tree)

		if cfg.ML.Watch {
			watcher, err := ml.WatchArtifact(cfg.ML.ModelType, cfg.ML.ModelPath, predictor, log)
			if err != nil {
				return err
			}
			defer watcher.Close()
		}

		// 2. Optional prediction history
		opts := assessment.Options{CacheSize: cfg.ML.CacheSize, Logger: log}
		deps := qhttp.Deps{Logger: log}
		if cfg.Database.Path != "" {
			store, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			log.Info("database initialized", zap.String("path", cfg.Database.Path))
			opts.Recorder = store
			deps.History = store
		}

		svc, err := assessment.NewService(predictor, opts)
		if err != nil {
			return err
		}
		deps.Service = svc

		// 3. Start HTTP server
		server := qhttp.NewServer(qhttp.ServerConfig{
			Port:           cfg.Http.Port,
			Timeout:        cfg.Http.Timeout,
			AllowedOrigins: cfg.Http.AllowedOrigins,
			MaxBodyBytes:   cfg.Http.MaxBodyBytes,
		}, deps)
		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		// 4. Handle graceful shutdown
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-quit:
		}

		log.Info("shutting down")
		if err := server.Stop(); err != nil {
			log.Warn("server forced to shutdown", zap.Error(err))
		}
		return nil
	},
}
