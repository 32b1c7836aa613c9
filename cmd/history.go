package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"glucorisk/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent predictions and training runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Database.Path == "" {
			return errors.New("database.path is not configured")
		}
		store, err := db.Open(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		return printHistory(cmd.Context(), store, limit, cmd.OutOrStdout())
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Number of predictions to show")
}

func printHistory(ctx context.Context, store *db.Store, limit int, out io.Writer) error {
	records, err := store.RecentPredictions(ctx, limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tHBA1C\tGLUCOSE\tAGE\tMODEL\tGUIDELINE\tAGREE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%d\t%d\t%s\t%t\n",
			r.CreatedAt.Format(time.RFC3339), r.HbA1cLevel, r.BloodGlucoseLevel, r.Age,
			r.ModelLabel, r.GuidelineCategory, r.Agree)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	logs, err := store.LoadTrainingLog(ctx)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TRAINED\tMODEL\tDEPTH\tROWS\tACCURACY\tPRECISION\tRECALL")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.4f\t%.4f\t%.4f\n",
			l.TrainedAt.Format(time.RFC3339), l.ModelPath, l.MaxDepth, l.DataPoints,
			l.Accuracy, l.Precision, l.Recall)
	}
	return tw.Flush()
}
