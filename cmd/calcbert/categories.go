package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DHYEYPATL/CalcBERT-by-Finovators/internal/rules"
)

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the built-in rule categories",
		RunE: func(_ *cobra.Command, _ []string) error {
			engine := rules.NewEngine()
			fmt.Println(titleStyle.Render("Rule categories (checked in order)"))
			for i, name := range engine.Categories() {
				fmt.Printf("  %s %s\n", subtleStyle.Render(fmt.Sprintf("%d.", i+1)), name)
			}
			return nil
		},
	}
}
