package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"glucorisk/clinical"
	"glucorisk/db"
	"glucorisk/ml"
	"glucorisk/pipeline"
)

type trainOptions struct {
	CSVPath   string
	ModelPath string
	MaxDepth  int
	TestRatio float64
	Seed      int64

	// Drop rows repeating an earlier feature and label combination.
	DropDuplicates bool
}

type trainingLogWriter interface {
	SaveTrainingLog(ctx context.Context, entry db.TrainingLog) error
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the decision tree from a CSV file and write the model artifact",
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

		opts := trainOptions{
			CSVPath:   cfg.Training.CSVPath,
			ModelPath: cfg.ML.ModelPath,
			MaxDepth:  cfg.ML.MaxTreeDepth,
			TestRatio: cfg.Training.TestRatio,
			Seed:      cfg.Training.Seed,
		}
		flags := cmd.Flags()
		if flags.Changed("csv") {
			opts.CSVPath, _ = flags.GetString("csv")
		}
		if flags.Changed("out") {
			opts.ModelPath, _ = flags.GetString("out")
		}
		if flags.Changed("max-depth") {
			opts.MaxDepth, _ = flags.GetInt("max-depth")
		}
		if flags.Changed("test-ratio") {
			opts.TestRatio, _ = flags.GetFloat64("test-ratio")
		}
		if flags.Changed("seed") {
			opts.Seed, _ = flags.GetInt64("seed")
		}
		opts.DropDuplicates, _ = flags.GetBool("dedupe")

		var store trainingLogWriter
		if cfg.Database.Path != "" {
			s, err := db.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer s.Close()
			store = s
		}

		_, err = runTraining(cmd.Context(), opts, cmd.OutOrStdout(), store, log)
		return err
	},
}

func init() {
	trainCmd.Flags().String("csv", "", "Training CSV with HBA1C_LEVEL, BLOOD_GLUCOSE_LEVEL, AGE and DIABETES columns")
	trainCmd.Flags().String("out", "", "Model artifact output path (defaults to ml.model_path)")
	trainCmd.Flags().Int("max-depth", 5, "Maximum tree depth")
	trainCmd.Flags().Float64("test-ratio", 0.2, "Fraction of rows held out for evaluation")
	trainCmd.Flags().Int64("seed", 42, "Shuffle seed for the train/test split")
	trainCmd.Flags().Bool("dedupe", false, "Drop duplicate rows before splitting")
}

func runTraining(ctx context.Context, opts trainOptions, out io.Writer, store trainingLogWriter, log *zap.Logger) (ml.Metrics, error) {
	if opts.CSVPath == "" {
		return ml.Metrics{}, fmt.Errorf("training csv path is required (--csv or training.csv_path)")
	}
	if opts.ModelPath == "" {
		return ml.Metrics{}, fmt.Errorf("model path is required")
	}

	raw, err := ml.LoadCSVFile(opts.CSVPath)
	if err != nil {
		return ml.Metrics{}, fmt.Errorf("failed to load training data: %w", err)
	}
	cleaner := pipeline.NewDataCleaner()
	if opts.DropDuplicates {
		cleaner.AddRule(pipeline.NewDuplicateDetectionRule())
	}
	ds, issues := cleaner.Clean(raw)
	stats := cleaner.GetStats()
	log.Info("training data cleaned",
		zap.Int64("processed", stats.TotalProcessed),
		zap.Int64("passed", stats.Passed),
		zap.Int64("rejected", stats.Rejected),
	)
	if len(issues) > 0 {
		log.Warn("training rows dropped", zap.Any("by_rule", pipeline.SummarizeIssues(issues)))
	}
	if ds.Len() == 0 {
		return ml.Metrics{}, fmt.Errorf("no training rows left after cleaning")
	}
	train, test := ds.Split(opts.TestRatio, opts.Seed)
	log.Info("training data loaded",
		zap.String("csv", opts.CSVPath),
		zap.Int("rows", ds.Len()),
		zap.Int("train", train.Len()),
		zap.Int("test", test.Len()),
	)

	model := ml.NewDecisionTree(opts.MaxDepth, clinical.FeatureNames)
	if err := model.Train(train.Features, train.Labels); err != nil {
		return ml.Metrics{}, fmt.Errorf("failed to train model: %w", err)
	}

	metrics := ml.Evaluate(model, test)
	log.Info("model evaluated",
		zap.Float64("accuracy", metrics.Accuracy),
		zap.Float64("precision", metrics.Precision),
		zap.Float64("recall", metrics.Recall),
		zap.Float64("f1", metrics.F1),
	)

	if err := os.MkdirAll(filepath.Dir(opts.ModelPath), 0o755); err != nil {
		return metrics, fmt.Errorf("failed to create model dir: %w", err)
	}
	if err := model.Save(opts.ModelPath); err != nil {
		return metrics, fmt.Errorf("failed to save model: %w", err)
	}

	if store != nil {
		err := store.SaveTrainingLog(ctx, db.TrainingLog{
			ModelName:  ml.ModelTypeDecisionTree,
			ModelPath:  opts.ModelPath,
			Accuracy:   metrics.Accuracy,
			Precision:  metrics.Precision,
			Recall:     metrics.Recall,
			F1:         metrics.F1,
			MaxDepth:   model.Depth(),
			TrainedAt:  time.Now().UTC(),
			DataPoints: ds.Len(),
		})
		if err != nil {
			log.Warn("failed to record training run", zap.Error(err))
		}
	}

	fmt.Fprintf(out, "accuracy=%.4f precision=%.4f recall=%.4f f1=%.4f (test rows: %d)\n",
		metrics.Accuracy, metrics.Precision, metrics.Recall, metrics.F1, metrics.Samples)
	fmt.Fprintf(out, "model saved to %s\n", opts.ModelPath)
	return metrics, nil
}
