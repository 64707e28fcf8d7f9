package main

import (
	"fmt"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/classifier"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/config"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/dataset"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/normalize"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a classifier from the base dataset",
		Long: `Train a classifier from scratch using the base labeled dataset.

The tfidf model is the primary classifier and is also the one retraining
updates. The bayes model is a secondary fallback trained only here.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			which, _ := cmd.Flags().GetString("model")
			if which != "tfidf" && which != "bayes" {
				return fmt.Errorf("unknown model %q, expected tfidf or bayes", which)
			}
			return runTrain(which)
		},
	}

	cmd.Flags().String("model", "tfidf", "Model to train: tfidf or bayes")

	return cmd
}

func runTrain(which string) error {
	datasetPath := config.ExpandPath(viper.GetString("data.base_dataset"))
	samples, err := dataset.Load(datasetPath)
	if err != nil {
		return fmt.Errorf("failed to load training dataset: %w", err)
	}

	normalizer, err := normalize.Load(config.ExpandPath(viper.GetString("data.alias_map")))
	if err != nil {
		return fmt.Errorf("failed to load alias map: %w", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("Training %s model on %d samples", which, len(samples))))

	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetDescription("Normalizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	texts := make([]string, len(samples))
	labels := make([]string, len(samples))
	for i, sample := range samples {
		texts[i] = normalizer.Normalize(sample.Text)
		labels[i] = sample.Label
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to advance progress bar", "error", err)
		}
	}

	switch which {
	case "tfidf":
		pipeline := classifier.NewPipeline()
		if err := pipeline.Fit(texts, labels); err != nil {
			return fmt.Errorf("failed to fit tfidf pipeline: %w", err)
		}
		dir := config.ExpandPath(viper.GetString("models.tfidf_dir"))
		if err := pipeline.Save(dir); err != nil {
			return fmt.Errorf("failed to save tfidf pipeline: %w", err)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Saved tfidf model to %s", dir)))
		fmt.Printf("  %s %v\n", labelStyle.Render("Classes:"), pipeline.Labels())
	case "bayes":
		bayes, err := classifier.TrainBayes(texts, labels)
		if err != nil {
			return fmt.Errorf("failed to train bayes model: %w", err)
		}
		dir := config.ExpandPath(viper.GetString("models.bayes_dir"))
		if err := bayes.Save(dir); err != nil {
			return fmt.Errorf("failed to save bayes model: %w", err)
		}
		fmt.Println(successStyle.Render(fmt.Sprintf("Saved bayes model to %s", dir)))
		fmt.Printf("  %s %v\n", labelStyle.Render("Classes:"), bayes.Labels())
	}

	return nil
}
