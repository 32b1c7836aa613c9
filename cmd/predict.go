package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"glucorisk/assessment"
	"glucorisk/clinical"
	"glucorisk/ml"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Assess one sample from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		hba1c, _ := cmd.Flags().GetFloat64("hba1c")
		glucose, _ := cmd.Flags().GetInt("glucose")
		age, _ := cmd.Flags().GetInt("age")
		asJSON, _ := cmd.Flags().GetBool("json")

		sample := clinical.PatientSample{HbA1cLevel: hba1c, BloodGlucoseLevel: glucose, Age: age}
		if err := sample.Validate(); err != nil {
			return err
		}
		tree, err := ml.LoadModel(cfg.ML.ModelType, cfg.ML.ModelPath)
		if err != nil {
			return err
		}
		return runPredict(cmd.Context(), ml.NewPredictor(tree), sample, asJSON, cmd.OutOrStdout())
	},
}

func init() {
	predictCmd.Flags().Float64("hba1c", 0, "HbA1c level in percent (e.g. 5.5)")
	predictCmd.Flags().Int("glucose", 0, "Blood glucose level in mg/dL (e.g. 120)")
	predictCmd.Flags().Int("age", 0, "Age in years")
	predictCmd.Flags().Bool("json", false, "Print the result as JSON")
	predictCmd.MarkFlagRequired("hba1c")
	predictCmd.MarkFlagRequired("glucose")
	predictCmd.MarkFlagRequired("age")
}

func runPredict(ctx context.Context, predictor *ml.Predictor, sample clinical.PatientSample, asJSON bool, out io.Writer) error {
	svc, err := assessment.NewService(predictor, assessment.Options{})
	if err != nil {
		return err
	}
	result, err := svc.Assess(ctx, "", sample)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	_, err = fmt.Fprint(out, result.Text())
	return err
}
