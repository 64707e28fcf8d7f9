package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Manage user corrections",
	}

	cmd.AddCommand(feedbackAddCmd())
	cmd.AddCommand(feedbackListCmd())
	cmd.AddCommand(feedbackCountCmd())
	cmd.AddCommand(feedbackClearCmd())

	return cmd
}

func feedbackAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <text> <correct-label>",
		Short: "Record a correction for a transaction text",
		Long: `Record the correct category for a transaction description. Stored
corrections are folded into the model on the next retrain.

Example:
  calcbert feedback add "AMAZON.COM PURCHASE" "Online Shopping" --user alice`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user, _ := cmd.Flags().GetString("user")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			id, err := store.SaveFeedback(ctx, args[0], args[1], user)
			if err != nil {
				return fmt.Errorf("failed to save feedback: %w", err)
			}

			fmt.Println(successStyle.Render(fmt.Sprintf("Feedback saved with id %d", id)))
			return nil
		},
	}

	cmd.Flags().String("user", "", "Optional user identifier")

	return cmd
}

func feedbackListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored corrections, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListFeedback(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list feedback: %w", err)
			}

			if len(records) == 0 {
				fmt.Println(subtleStyle.Render("No feedback stored."))
				return nil
			}

			for _, rec := range records {
				fmt.Printf("%s %q -> %s\n",
					subtleStyle.Render(fmt.Sprintf("#%d", rec.ID)),
					rec.Text,
					labelStyle.Render(rec.CorrectLabel))
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Maximum number of records to show (0 = all)")

	return cmd
}

func feedbackCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Show the number of stored corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			count, err := store.CountFeedback(ctx)
			if err != nil {
				return fmt.Errorf("failed to count feedback: %w", err)
			}

			fmt.Printf("Total feedback samples: %d\n", count)
			return nil
		},
	}
}

func feedbackClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all stored corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			confirmed, _ := cmd.Flags().GetBool("yes")
			if !confirmed {
				return fmt.Errorf("refusing to clear feedback without --yes")
			}

			store, err := openStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.ClearFeedback(ctx); err != nil {
				return fmt.Errorf("failed to clear feedback: %w", err)
			}

			fmt.Println(warningStyle.Render("All feedback cleared."))
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "Confirm deletion of all feedback")

	return cmd
}
