package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/runstore"
)

const shortIDLength = 8

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect the run history",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsStatusCommand(ctx))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatuses(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runstore.Store) error {
				runs, err := store.List(cmd.Context(), limit, statuses...)
				if err != nil {
					return err
				}
				if jsonOutput {
					if runs == nil {
						runs = []*runstore.Run{}
					}
					return writeJSON(cmd, runs)
				}
				if len(runs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Video", "Status", "Started", "Elapsed", "Keyframes", "Gaps"},
					buildRunRows(runs, time.Now()),
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by run status (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run by id or unique id prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := strings.TrimSpace(args[0])
			if prefix == "" {
				return errors.New("run id is required")
			}
			return ctx.withStore(func(store *runstore.Store) error {
				run, err := store.Find(cmd.Context(), prefix)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", prefix)
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				printRun(cmd.OutOrStdout(), run, time.Now())
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func newRunsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show run counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				rows := buildStatusRows(stats)
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))
				return nil
			})
		},
	}
}

func parseStatuses(values []string) ([]runstore.Status, error) {
	statuses := make([]runstore.Status, 0, len(values))
	for _, value := range values {
		status, ok := runstore.ParseStatus(value)
		if !ok {
			return nil, fmt.Errorf("unknown run status %q", value)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func buildRunRows(runs []*runstore.Run, now time.Time) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			filepath.Base(run.VideoPath),
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Elapsed(now).Round(time.Second).String(),
			strconv.Itoa(run.Selected),
			strconv.Itoa(run.Gaps),
		})
	}
	return rows
}

func buildStatusRows(stats map[runstore.Status]int) [][]string {
	order := []runstore.Status{
		runstore.StatusRunning,
		runstore.StatusCompleted,
		runstore.StatusFailed,
		runstore.StatusRejected,
	}
	var rows [][]string
	for _, status := range order {
		if count := stats[status]; count > 0 {
			rows = append(rows, []string{string(status), strconv.Itoa(count)})
		}
	}
	return rows
}

func printRun(out io.Writer, run *runstore.Run, now time.Time) {
	fmt.Fprintf(out, "ID:          %s\n", run.ID)
	fmt.Fprintf(out, "Status:      %s\n", run.Status)
	fmt.Fprintf(out, "Video:       %s\n", run.VideoPath)
	if run.TranscriptPath != "" {
		fmt.Fprintf(out, "Transcript:  %s\n", run.TranscriptPath)
	}
	if run.Title != "" {
		fmt.Fprintf(out, "Title:       %s (%s)\n", run.Title, formatSeconds(run.Duration))
	}
	fmt.Fprintf(out, "Started:     %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(out, "Elapsed:     %s\n", run.Elapsed(now).Round(time.Second))
	fmt.Fprintf(out, "Finished:    %s\n", yesNo(run.Status.IsTerminal()))
	if run.Status == runstore.StatusCompleted {
		fmt.Fprintf(out, "Candidates:  %d\n", run.Candidates)
		fmt.Fprintf(out, "Keyframes:   %d\n", run.Selected)
		fmt.Fprintf(out, "Segments:    %d\n", run.Segments)
		fmt.Fprintf(out, "Gaps:        %d\n", run.Gaps)
		fmt.Fprintf(out, "Manifest:    %s\n", run.ManifestPath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:       %s\n", run.ErrorMessage)
	}
}

func shortID(id string) string {
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}
	return id
}
