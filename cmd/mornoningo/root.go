package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mornoningo",
	Short: "Study engine for lecture material, spaced reviews and quizzes",
	Long: `Mornoningo turns uploaded lecture material into multiple-choice quizzes
and keeps a spaced review schedule driven by quiz performance.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
