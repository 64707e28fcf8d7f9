package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict <text>",
		Short: "Categorize a transaction description",
		Long: `Categorize a free-text transaction description using the rule engine and
the trained classifiers.

Examples:
  calcbert predict "STARBCKS #103 MUMBAI"
  calcbert predict --json "UBER TRIP 8842"`,
		Args: cobra.ExactArgs(1),
		RunE: runPredict,
	}

	cmd.Flags().Bool("json", false, "Print the full prediction as JSON")

	return cmd
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	eng, store, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	prediction, err := eng.Predict(ctx, args[0], nil)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(prediction)
	}

	fmt.Println(titleStyle.Render("Prediction"))
	fmt.Printf("  %s %s\n", subtleStyle.Render("category:"), labelStyle.Render(prediction.Label))
	fmt.Printf("  %s %.3f\n", subtleStyle.Render("confidence:"), prediction.Confidence)
	fmt.Printf("  %s %s\n", subtleStyle.Render("model used:"), prediction.ModelUsed)

	if len(prediction.Rationale.RuleHits) > 0 {
		fmt.Printf("  %s %v\n", subtleStyle.Render("rule hits:"), prediction.Rationale.RuleHits)
	}
	for _, tok := range prediction.Rationale.TopTokens {
		fmt.Printf("    %s %.4f\n", tok.Token, tok.Score)
	}
	if prediction.Rationale.Notes != "" {
		fmt.Printf("  %s\n", subtleStyle.Render(prediction.Rationale.Notes))
	}

	return nil
}
