package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidscribe/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cfg)
			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Check", "Status", "Detail"},
					buildCheckRows(results),
					[]columnAlignment{alignLeft, alignLeft, alignLeft},
				))
			}
			if preflight.Failed(results) {
				return errors.New("preflight checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}

func buildCheckRows(results []preflight.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		switch {
		case r.Passed:
		case r.Optional:
			status = "skipped"
		default:
			status = "FAILED"
		}
		rows = append(rows, []string{r.Name, status, r.Detail})
	}
	return rows
}
