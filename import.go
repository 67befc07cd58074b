package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hugo-directus/pkg/services"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run one full import and print a report",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := services.NewSyncer(cfg, log).Run(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, report)
		for _, f := range report.Failures {
			fmt.Fprintf(out, "failed: %v\n", f)
		}
		for _, f := range report.FieldFailures {
			fmt.Fprintf(out, "field: %v\n", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
