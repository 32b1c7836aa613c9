package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"glucorisk/assessment"
	"glucorisk/clinical"
	"glucorisk/ml"
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Print the decision flow of the trained model and the reference tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tree, err := ml.LoadModel(cfg.ML.ModelType, cfg.ML.ModelPath)
		if err != nil {
			return err
		}
		withRef, _ := cmd.Flags().GetBool("reference")
		return printFlow(tree, withRef, cmd.OutOrStdout())
	},
}

func init() {
	flowCmd.Flags().Bool("reference", false, "Also print medical reference ranges and the threshold comparison")
}

func printFlow(tree *ml.DecisionTree, withReference bool, out io.Writer) error {
	if _, err := fmt.Fprintf(out, "Decision Flow Based on Trained Model\n\n%s", tree.Render()); err != nil {
		return err
	}
	if !withReference {
		return nil
	}
	_, err := fmt.Fprintf(out, "\n%s\n%s", clinical.ReferenceRanges, assessment.ThresholdComparison(tree))
	return err
}
