package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidscribe/internal/align"
	"vidscribe/internal/classify"
	"vidscribe/internal/config"
	"vidscribe/internal/frames"
	"vidscribe/internal/framesource"
	"vidscribe/internal/framestore"
	"vidscribe/internal/logging"
	"vidscribe/internal/manifest"
	"vidscribe/internal/metadata"
	"vidscribe/internal/ocr"
	"vidscribe/internal/runstore"
	"vidscribe/internal/scene"
	"vidscribe/internal/selector"
	"vidscribe/internal/services"
	"vidscribe/internal/textutil"
	"vidscribe/internal/transcript"
)

// Request names the inputs of one run.
type Request struct {
	VideoPath      string
	TranscriptPath string
	// MetadataPath defaults to a sidecar discovered next to the video.
	MetadataPath string
	// OutputDir defaults to <paths.output_dir>/<video stem>-<run id prefix>.
	OutputDir string
}

// Report is the outcome of a successful run.
type Report struct {
	RunID        string
	OutputDir    string
	ManifestPath string
	Manifest     manifest.Manifest
	Result       Result
}

// ProbeFunc inspects a video.
type ProbeFunc func(ctx context.Context, path string) (framesource.Info, error)

// OpenFunc starts decoding a probed video. The returned closer stops it.
type OpenFunc func(ctx context.Context, path string, info framesource.Info) (frames.Source, func() error, error)

// Runner executes requests against a configuration.
type Runner struct {
	cfg        *config.Config
	store      *runstore.Store
	logger     *slog.Logger
	probe      ProbeFunc
	open       OpenFunc
	classifier Classifier
	newID      func() string
	now        func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithProbe replaces the ffprobe-backed probe.
func WithProbe(probe ProbeFunc) RunnerOption {
	return func(r *Runner) { r.probe = probe }
}

// WithSourceOpener replaces the ffmpeg-backed frame source.
func WithSourceOpener(open OpenFunc) RunnerOption {
	return func(r *Runner) { r.open = open }
}

// WithClassifier replaces the configured content classifier.
func WithClassifier(c Classifier) RunnerOption {
	return func(r *Runner) { r.classifier = c }
}

// WithIDGenerator replaces the uuid run id generator.
func WithIDGenerator(fn func() string) RunnerOption {
	return func(r *Runner) { r.newID = fn }
}

// NewRunner builds a Runner. store may be nil to skip run history.
func NewRunner(cfg *config.Config, store *runstore.Store, logger *slog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "runner"),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	r.probe = func(ctx context.Context, path string) (framesource.Info, error) {
		return framesource.Probe(ctx, cfg.Frames.FFprobeBinary, path)
	}
	r.open = func(ctx context.Context, path string, info framesource.Info) (frames.Source, func() error, error) {
		src, err := framesource.Open(ctx, path, info, framesource.Options{
			Binary:    cfg.Frames.FFmpegBinary,
			SampleFPS: cfg.Analysis.SampleFPS,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OptionsFromConfig maps the analysis section onto stage options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	baseline, err := scene.ParseBaseline(cfg.Analysis.Baseline)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, "pipeline", "options", "analysis.baseline", err)
	}
	duration, err := align.ParseDurationSource(cfg.Analysis.DurationSource)
	if err != nil {
		return Options{}, services.Wrap(services.ErrConfiguration, "pipeline", "options", "analysis.duration_source", err)
	}
	return Options{
		Scene: scene.Options{
			MinGapSeconds:        cfg.Analysis.MinGapSeconds,
			CorrelationThreshold: cfg.Analysis.SceneChangeThreshold,
			Baseline:             baseline,
		},
		Classify: classify.Options{
			CodeScoreThreshold:    cfg.Analysis.CodeScoreThreshold,
			DiagramScoreThreshold: cfg.Analysis.DiagramScoreThreshold,
			Workers:               cfg.Analysis.Workers,
			Keep:                  selector.Eligible,
		},
		Align: align.Options{
			WindowSeconds: cfg.Analysis.AlignmentWindowSeconds,
			Duration:      duration,
		},
	}, nil
}

// Run executes one analysis. A failed run is recorded in the run history
// with a status derived from the error.
func (r *Runner) Run(ctx context.Context, req Request) (report *Report, err error) {
	runID := r.newID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	req.VideoPath = strings.TrimSpace(req.VideoPath)
	if req.VideoPath == "" {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "request", "video path is required", nil)
	}
	outDir := req.OutputDir
	if strings.TrimSpace(outDir) == "" {
		outDir = filepath.Join(r.cfg.Paths.OutputDir, defaultRunDir(req.VideoPath, runID))
	}

	if r.store != nil {
		if _, beginErr := r.store.Begin(ctx, runstore.Run{
			ID:             runID,
			VideoPath:      req.VideoPath,
			TranscriptPath: req.TranscriptPath,
			OutputDir:      outDir,
			StartedAt:      r.now().UTC(),
		}); beginErr != nil {
			return nil, fmt.Errorf("record run: %w", beginErr)
		}
		defer func() {
			if err == nil {
				return
			}
			status := services.FailureStatus(err)
			if failErr := r.store.Fail(context.WithoutCancel(ctx), runID, status, err.Error()); failErr != nil {
				logging.WarnWithContext(logger, "failed to record run failure", "run_history_failed",
					logging.Error(failErr),
					logging.String(logging.FieldImpact, "run history shows this run as still running"),
				)
			}
		}()
	}

	logger.Info("analysis started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("video", req.VideoPath),
		logging.String("output_dir", outDir),
	)

	report, err = r.run(ctx, req, runID, outDir, logger)
	if err != nil {
		logging.ErrorWithContext(logger, "analysis failed", "run_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)
		return nil, err
	}

	if r.store != nil {
		outcome := runstore.Outcome{
			ManifestPath: report.ManifestPath,
			Title:        report.Manifest.Video.Title,
			Duration:     report.Manifest.Video.Duration,
			Candidates:   len(report.Result.Scored),
			Selected:     len(report.Result.Selected),
			Segments:     len(report.Result.Segments),
			Gaps:         gapCount(report.Result),
		}
		if completeErr := r.store.Complete(context.WithoutCancel(ctx), runID, outcome); completeErr != nil {
			logging.WarnWithContext(logger, "failed to record run completion", "run_history_failed",
				logging.Error(completeErr),
				logging.String(logging.FieldImpact, "manifest was written but run history is stale"),
			)
		}
	}
	logger.Info("analysis finished",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.String("manifest", report.ManifestPath),
		logging.Int("selected", len(report.Result.Selected)),
	)
	return report, nil
}

func (r *Runner) run(ctx context.Context, req Request, runID, outDir string, logger *slog.Logger) (*Report, error) {
	if _, err := os.Stat(req.VideoPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "pipeline", "request", "video not found", err)
		}
		return nil, fmt.Errorf("stat video: %w", err)
	}
	opts, err := OptionsFromConfig(r.cfg)
	if err != nil {
		return nil, err
	}

	info, err := r.probe(ctx, req.VideoPath)
	if err != nil {
		return nil, err
	}

	script, err := transcript.Load(req.TranscriptPath)
	if err != nil {
		return nil, err
	}

	metaPath := req.MetadataPath
	if strings.TrimSpace(metaPath) == "" {
		metaPath = metadata.Discover(req.VideoPath)
	}
	meta, issues := metadata.Load(metaPath, metadata.Defaults{
		VideoPath: req.VideoPath,
		Title:     info.Title,
		Author:    info.Author,
		Duration:  info.Duration,
	})
	for _, issue := range issues {
		logging.WarnWithContext(logger, "metadata field ignored", "metadata_default",
			logging.String("issue", issue),
			logging.String(logging.FieldImpact, "default value used"),
		)
	}
	opts.Align.VideoDuration = meta.Duration

	store, err := framestore.Open(filepath.Join(outDir, "frames"), logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	src, closeSource, err := r.open(ctx, req.VideoPath, info)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeSource != nil {
			_ = closeSource()
		}
	}()

	classifier := r.classifier
	if classifier == nil {
		recognizer := ocr.New(r.cfg.Analysis.EnableOCR, r.cfg.OCR.Binary, r.cfg.OCR.Language,
			r.cfg.OCR.MaxConcurrent, time.Duration(r.cfg.OCR.TimeoutSeconds)*time.Second)
		classifier = classify.New(opts.Classify, recognizer, logger)
	}

	result, err := Analyze(ctx, Collaborators{
		Source:     src,
		Classifier: classifier,
		Sink:       store,
		Encoder:    framestore.Encoder(r.cfg.Frames.Scale, r.cfg.Frames.JPEGQuality),
	}, script.Text, opts, logger)
	if err != nil {
		return nil, err
	}

	m := manifest.Manifest{
		SchemaVersion: manifest.SchemaVersion,
		RunID:         runID,
		GeneratedAt:   r.now().UTC(),
		Video: manifest.Video{
			Path:     req.VideoPath,
			FPS:      info.FPS,
			Width:    info.Width,
			Height:   info.Height,
			Metadata: meta,
		},
		Transcript: manifest.Transcript{
			Path:   script.Path,
			Format: string(script.Format),
			Words:  script.Words,
		},
		Settings: manifest.Settings{
			SceneChangeThreshold:   r.cfg.Analysis.SceneChangeThreshold,
			MinGapSeconds:          r.cfg.Analysis.MinGapSeconds,
			CodeScoreThreshold:     r.cfg.Analysis.CodeScoreThreshold,
			DiagramScoreThreshold:  r.cfg.Analysis.DiagramScoreThreshold,
			AlignmentWindowSeconds: r.cfg.Analysis.AlignmentWindowSeconds,
			EnableOCR:              r.cfg.Analysis.EnableOCR,
			SampleFPS:              r.cfg.Analysis.SampleFPS,
			Baseline:               string(opts.Scene.Baseline),
			DurationSource:         string(opts.Align.Duration),
		},
		Stats: manifest.Stats{
			FramesRead:     result.Scan.FramesRead,
			FramesExamined: result.Scan.FramesExamined,
			FramesSkipped:  result.Scan.FramesSkipped,
			Candidates:     len(result.Scored),
			Selected:       len(result.Selected),
			Segments:       len(result.Segments),
		},
		Frames:   result.Selected,
		Segments: result.Segments,
		Gaps:     result.Gaps,
		Summary:  manifest.Summarize(result.Segments),
	}
	manifestPath := filepath.Join(outDir, manifest.FileName)
	if err := manifest.Write(manifestPath, m); err != nil {
		return nil, err
	}
	return &Report{
		RunID:        runID,
		OutputDir:    outDir,
		ManifestPath: manifestPath,
		Manifest:     m,
		Result:       result,
	}, nil
}

func defaultRunDir(videoPath, runID string) string {
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	return textutil.Slug(metadata.Stem(videoPath)) + "-" + short
}

func gapCount(result Result) int {
	return len(result.Gaps.VisualNotExplained) + len(result.Gaps.ExplainedNotShown)
}

func hintFor(err error) string {
	switch services.Marker(err) {
	case services.ErrNotFound:
		return "check the video and transcript paths"
	case services.ErrExternalTool:
		return "check frames.ffmpeg_binary and frames.ffprobe_binary, and that the video decodes"
	case services.ErrConfiguration:
		return "run `vidscribe config validate`"
	case services.ErrValidation:
		return "check the input files"
	default:
		return "rerun with --log-level debug"
	}
}
