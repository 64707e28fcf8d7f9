package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/model"
)

func retrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Fold stored corrections into the primary model",
		Long: `Retrain the primary classifier with stored feedback.

Full mode rebuilds the pipeline from the base dataset plus all feedback.
Incremental mode applies feedback as online updates to the current model.
A failed retrain never replaces the model that is currently serving.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			modeFlag, _ := cmd.Flags().GetString("mode")
			targetFlag, _ := cmd.Flags().GetString("model")
			showStatus, _ := cmd.Flags().GetBool("status")

			eng, store, err := newEngine(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if showStatus {
				job := eng.LastRetrainJob()
				if job == nil {
					fmt.Println(subtleStyle.Render("No retrain has run yet."))
					return nil
				}
				printRetrainJob(job)
				return nil
			}

			result, err := eng.Retrain(ctx, model.RetrainMode(modeFlag), model.RetrainTarget(targetFlag))
			if err != nil {
				return fmt.Errorf("retrain failed: %w", err)
			}
			printRetrainResult(result)
			return nil
		},
	}

	cmd.Flags().String("mode", string(model.RetrainFull), "Retrain mode: full or incremental")
	cmd.Flags().String("model", string(model.TargetPrimary), "Model to retrain: primary or secondary")
	cmd.Flags().Bool("status", false, "Show the most recent retrain job instead of starting one")

	return cmd
}

func printRetrainResult(result model.RetrainResult) {
	switch result.Status {
	case model.RetrainComplete:
		fmt.Println(successStyle.Render("Retrain complete."))
	case model.RetrainSkipped:
		fmt.Println(warningStyle.Render("Retrain skipped."))
	case model.RetrainStarted:
		fmt.Println(titleStyle.Render("Retrain started in the background."))
	case model.RetrainError:
		fmt.Println(errorStyle.Render("Retrain failed."))
	}
	if result.Detail != "" {
		fmt.Printf("  %s\n", result.Detail)
	}
	if result.SamplesUsed > 0 {
		fmt.Printf("  Samples used: %d\n", result.SamplesUsed)
	}
}

func printRetrainJob(job *model.RetrainJob) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Retrain job #%d", job.ID)))
	fmt.Printf("  %s %s\n", labelStyle.Render("Mode:"), job.Mode)
	fmt.Printf("  %s %s\n", labelStyle.Render("Status:"), job.Status)
	fmt.Printf("  %s %s\n", labelStyle.Render("Started:"), job.StartedAt.Format("2006-01-02 15:04:05"))
	if job.FinishedAt != nil {
		fmt.Printf("  %s %s\n", labelStyle.Render("Finished:"), job.FinishedAt.Format("2006-01-02 15:04:05"))
	}
	if job.Result != nil && job.Result.Detail != "" {
		fmt.Printf("  %s %s\n", labelStyle.Render("Detail:"), job.Result.Detail)
	}
}
