package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"vidscribe/internal/align"
	"vidscribe/internal/classify"
	"vidscribe/internal/frames"
	"vidscribe/internal/gaps"
	"vidscribe/internal/logging"
	"vidscribe/internal/merge"
	"vidscribe/internal/scene"
	"vidscribe/internal/selector"
	"vidscribe/internal/services"
)

// Stage names stamped on the context while each step runs.
const (
	StageScene    = "scene"
	StageClassify = "classify"
	StageSelect   = "select"
	StageAlign    = "align"
	StageMerge    = "merge"
	StageGaps     = "gaps"
)

// Classifier scores scene candidates. *classify.Classifier implements it.
type Classifier interface {
	ClassifyAll(ctx context.Context, candidates []frames.SceneCandidate) ([]classify.Scored, error)
}

// Collaborators are the capabilities a single run consumes.
type Collaborators struct {
	Source     frames.Source
	Classifier Classifier
	Sink       selector.ImageSink
	// Encoder defaults to JPEG at selector.JPEGQuality.
	Encoder selector.Encoder
}

// Options holds the per-stage settings.
type Options struct {
	Scene    scene.Options
	Classify classify.Options
	Align    align.Options
}

// DefaultOptions returns the stock settings of every stage.
func DefaultOptions() Options {
	classifyOpts := classify.DefaultOptions()
	classifyOpts.Keep = selector.Eligible
	return Options{
		Scene:    scene.DefaultOptions(),
		Classify: classifyOpts,
		Align:    align.DefaultOptions(),
	}
}

// Result is everything Analyze produced. Candidate images have been released.
type Result struct {
	Scan     scene.Stats
	Scored   []classify.Scored
	Selected []frames.SelectedFrame
	Windows  []frames.TranscriptWindow
	Segments []frames.AlignedSegment
	Gaps     gaps.Report
}

// Analyze runs every stage over the collaborators. Only source and sink
// failures (and cancellation) end it early.
func Analyze(ctx context.Context, c Collaborators, transcript string, opts Options, logger *slog.Logger) (Result, error) {
	if c.Source == nil || c.Classifier == nil || c.Sink == nil {
		return Result{}, services.Wrap(services.ErrConfiguration, "pipeline", "analyze", "source, classifier, and sink are required", nil)
	}
	logger = logging.NewComponentLogger(logger, "pipeline")
	var result Result

	stageCtx := services.WithStage(ctx, StageScene)
	candidates, stats, err := scene.Detect(stageCtx, c.Source, opts.Scene, logger)
	result.Scan = stats
	if err != nil {
		return result, stageError(StageScene, err)
	}

	stageCtx = services.WithStage(ctx, StageClassify)
	scored, err := c.Classifier.ClassifyAll(stageCtx, candidates)
	if err != nil {
		return result, stageError(StageClassify, err)
	}
	result.Scored = scored

	stageCtx = services.WithStage(ctx, StageSelect)
	var selectorOpts []selector.Option
	if c.Encoder != nil {
		selectorOpts = append(selectorOpts, selector.WithEncoder(c.Encoder))
	}
	selected, err := selector.New(c.Sink, logger, selectorOpts...).Select(stageCtx, scored)
	if err != nil {
		return result, stageError(StageSelect, err)
	}
	result.Selected = selected

	result.Windows = align.Align(selected, transcript, opts.Align)
	segments, err := merge.Merge(selected, result.Windows)
	if err != nil {
		return result, stageError(StageMerge, err)
	}
	result.Segments = segments
	result.Gaps = gaps.Analyze(segments)

	logging.WithContext(services.WithStage(ctx, StageGaps), logger).Info("analysis complete",
		logging.String(logging.FieldEventType, "analysis_complete"),
		logging.Int("candidates", len(candidates)),
		logging.Int("selected", len(selected)),
		logging.Int("visual_not_explained", len(result.Gaps.VisualNotExplained)),
		logging.Int("explained_not_shown", len(result.Gaps.ExplainedNotShown)),
		logging.Int("high_value", len(result.Gaps.HighValue)),
	)
	return result, nil
}

// stageError tags unmarked errors as external tool failures; context errors
// pass through untouched.
func stageError(stage string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if services.Marker(err) != nil {
		return err
	}
	return services.Wrap(services.ErrExternalTool, stage, "run", "stage failed", err)
}
