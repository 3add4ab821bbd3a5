package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/frames"
	"vidscribe/internal/manifest"
	"vidscribe/internal/pipeline"
	"vidscribe/internal/runstore"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var transcriptPath string
	var metadataPath string
	var outputDir string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze <video>",
		Short: "Select keyframes and align them with the transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			req, err := buildAnalyzeRequest(args[0], transcriptPath, metadataPath, outputDir)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *runstore.Store) error {
				runner := pipeline.NewRunner(cfg, store, logger, ctx.runnerOptions...)
				report, err := runner.Run(cmd.Context(), req)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, report.Manifest)
				}
				printAnalyzeReport(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&transcriptPath, "transcript", "t", "", "Transcript file (.txt, .srt, or WhisperX .json)")
	cmd.Flags().StringVarP(&metadataPath, "metadata", "m", "", "Metadata sidecar (defaults to <video>.yaml/.info.json when present)")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory for keyframes and manifest")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the manifest as JSON")
	return cmd
}

func buildAnalyzeRequest(video, transcriptPath, metadataPath, outputDir string) (pipeline.Request, error) {
	var req pipeline.Request
	var err error
	if req.VideoPath, err = config.ExpandPath(strings.TrimSpace(video)); err != nil {
		return req, fmt.Errorf("resolve video path: %w", err)
	}
	for _, p := range []struct {
		value string
		dst   *string
		label string
	}{
		{transcriptPath, &req.TranscriptPath, "transcript"},
		{metadataPath, &req.MetadataPath, "metadata"},
		{outputDir, &req.OutputDir, "output"},
	} {
		if strings.TrimSpace(p.value) == "" {
			continue
		}
		if *p.dst, err = config.ExpandPath(strings.TrimSpace(p.value)); err != nil {
			return req, fmt.Errorf("resolve %s path: %w", p.label, err)
		}
	}
	return req, nil
}

func printAnalyzeReport(out io.Writer, report *pipeline.Report) {
	m := report.Manifest
	fmt.Fprintf(out, "Run:        %s\n", report.RunID)
	fmt.Fprintf(out, "Video:      %s (%s)\n", m.Video.Title, formatSeconds(m.Video.Duration))
	fmt.Fprintf(out, "Author:     %s\n", m.Video.Author)
	fmt.Fprintf(out, "Transcript: %d words\n", m.Transcript.Words)
	fmt.Fprintf(out, "Keyframes:  %d of %d candidates\n", m.Stats.Selected, m.Stats.Candidates)
	fmt.Fprintf(out, "Manifest:   %s\n", report.ManifestPath)

	if len(m.Segments) == 0 {
		fmt.Fprintln(out, "No keyframes selected")
		return
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderTable(
		[]string{"Time", "Type", "Quality", "Words", "Priority", "Image"},
		buildSegmentRows(m.Segments),
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))

	if len(m.Gaps.Recommendations) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Recommendations:")
		for _, rec := range m.Gaps.Recommendations {
			fmt.Fprintf(out, "  - %s\n", rec.Message)
		}
	}
	printInsights(out, m.Summary)
}

func buildSegmentRows(segments []frames.AlignedSegment) [][]string {
	rows := make([][]string, 0, len(segments))
	for _, seg := range segments {
		rows = append(rows, []string{
			formatSeconds(seg.Timestamp()),
			string(seg.SegmentType),
			string(seg.AlignmentQuality),
			strconv.Itoa(seg.Window.WordCount),
			strconv.FormatFloat(seg.Frame.Priority, 'f', 2, 64),
			seg.Frame.ImageName,
		})
	}
	return rows
}

func printInsights(out io.Writer, summary manifest.Summary) {
	tags := summary.SortedInsightTags()
	if len(tags) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Insights:")
	for _, tag := range tags {
		fmt.Fprintf(out, "  - %s\n", summary.Insights[tag])
	}
}

// formatSeconds renders seconds as [h:]mm:ss.
func formatSeconds(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
