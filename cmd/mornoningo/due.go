package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/typemnm/Mornoningo/internal/service"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

var dueDate string

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List reviews due today, highest priority first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var date clock.Date
		if dueDate != "" {
			parsed, err := clock.ParseDate(dueDate)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}
			date = parsed
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		resp, err := service.NewReviewService(a.study).Due(cmd.Context(), date)
		if err != nil {
			return err
		}
		if resp.Count == 0 {
			fmt.Printf("No reviews due on %s.\n", resp.Date)
			return nil
		}

		fmt.Printf("%d reviews due on %s:\n\n", resp.Count, resp.Date)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Due\tStage\tPriority\tDocument")
		fmt.Fprintln(w, "---\t-----\t--------\t--------")
		for _, r := range resp.Reviews {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.DueDate, r.Stage, r.Priority, r.DocumentTitle)
		}
		return w.Flush()
	},
}

func init() {
	dueCmd.Flags().StringVar(&dueDate, "date", "", "date to check (YYYY-MM-DD), defaults to today")
	rootCmd.AddCommand(dueCmd)
}
