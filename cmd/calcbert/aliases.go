package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/config"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/dataset"
	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/normalize"
)

func aliasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Manage the merchant alias map",
	}

	cmd.AddCommand(aliasesGenerateCmd())
	cmd.AddCommand(aliasesShowCmd())

	return cmd
}

func aliasesGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Cluster merchant names from the base dataset into an alias map",
		Long: `Cluster similar merchant names from the base dataset and write an
alias map mapping each variant to a canonical form. The normalizer applies
this map before rule matching and classification.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = config.ExpandPath(viper.GetString("data.alias_map"))
			}

			samples, err := dataset.Load(config.ExpandPath(viper.GetString("data.base_dataset")))
			if err != nil {
				return fmt.Errorf("failed to load training dataset: %w", err)
			}

			rawTexts := make([]string, len(samples))
			for i, sample := range samples {
				rawTexts[i] = sample.Text
			}

			merchants := normalize.UniqueCleaned(rawTexts)
			fmt.Println(titleStyle.Render(fmt.Sprintf("Clustering %d unique merchants", len(merchants))))

			bar := progressbar.NewOptions(len(merchants),
				progressbar.OptionSetDescription("Clustering"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
			aliases := normalize.GenerateAliasMap(rawTexts, func() {
				if err := bar.Add(1); err != nil {
					slog.Warn("Failed to advance progress bar", "error", err)
				}
			})

			if err := writeAliasMap(output, aliases); err != nil {
				return fmt.Errorf("failed to write alias map: %w", err)
			}

			fmt.Println(successStyle.Render(fmt.Sprintf("Wrote %d aliases to %s", len(aliases), output)))
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output path for the alias map (defaults to data.alias_map)")

	return cmd
}

func aliasesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current alias map",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := config.ExpandPath(viper.GetString("data.alias_map"))
			aliases, err := normalize.LoadMap(path)
			if err != nil {
				return fmt.Errorf("failed to load alias map: %w", err)
			}
			if len(aliases) == 0 {
				fmt.Println(subtleStyle.Render("Alias map is empty."))
				return nil
			}
			for variant, canonical := range aliases {
				fmt.Printf("%s -> %s\n", variant, labelStyle.Render(canonical))
			}
			return nil
		},
	}
}

func writeAliasMap(path string, aliases map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(aliases, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "aliases-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
