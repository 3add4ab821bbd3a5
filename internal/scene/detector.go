package scene

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"vidscribe/internal/frames"
	"vidscribe/internal/logging"
	"vidscribe/internal/vision"
)

// Baseline names how skipped frames affect the comparison histogram.
type Baseline string

const (
	// BaselineExamined keeps the last examined frame as the baseline while in a gap.
	BaselineExamined Baseline = "examined"
	// BaselineAlwaysUpdate replaces the baseline with every frame, skipped or not.
	BaselineAlwaysUpdate Baseline = "always_update"
)

// ParseBaseline maps a configuration value to a Baseline.
func ParseBaseline(value string) (Baseline, error) {
	switch Baseline(value) {
	case BaselineExamined, "":
		return BaselineExamined, nil
	case BaselineAlwaysUpdate:
		return BaselineAlwaysUpdate, nil
	default:
		return "", fmt.Errorf("unknown baseline strategy %q", value)
	}
}

// State is the detector's scan state.
type State int

const (
	StateScanning State = iota
	StateInGap
)

func (s State) String() string {
	if s == StateInGap {
		return "in_gap"
	}
	return "scanning"
}

const (
	DefaultMinGapSeconds        = 5.0
	DefaultCorrelationThreshold = 0.70
)

// ErrOutOfOrder reports a frame whose timestamp or index goes backwards.
var ErrOutOfOrder = errors.New("frames out of order")

// Options configures scene detection.
type Options struct {
	MinGapSeconds        float64
	CorrelationThreshold float64
	Baseline             Baseline
}

// DefaultOptions returns the stock detection settings.
func DefaultOptions() Options {
	return Options{
		MinGapSeconds:        DefaultMinGapSeconds,
		CorrelationThreshold: DefaultCorrelationThreshold,
		Baseline:             BaselineExamined,
	}
}

// Stats counts what a scan did with the frames it read.
type Stats struct {
	FramesRead     int `json:"frames_read"`
	FramesExamined int `json:"frames_examined"`
	FramesSkipped  int `json:"frames_skipped"`
	Candidates     int `json:"candidates"`
}

// Detector holds the scan state for one stream. It is not safe for concurrent use.
type Detector struct {
	opts         Options
	minGapFrames float64
	logger       *slog.Logger

	state         State
	baseline      vision.Histogram
	lastCandidate uint64
	hasCandidate  bool
	lastTimestamp float64
	lastIndex     uint64
	seen          bool
	stats         Stats
}

// NewDetector builds a detector for a stream with the given native frame rate.
func NewDetector(fps float64, opts Options, logger *slog.Logger) (*Detector, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("scene: fps must be positive, got %v", fps)
	}
	if opts.MinGapSeconds < 0 {
		return nil, fmt.Errorf("scene: min gap must be >= 0, got %v", opts.MinGapSeconds)
	}
	if opts.CorrelationThreshold < 0 || opts.CorrelationThreshold > 1 {
		return nil, fmt.Errorf("scene: correlation threshold must be within [0,1], got %v", opts.CorrelationThreshold)
	}
	if opts.Baseline == "" {
		opts.Baseline = BaselineExamined
	}
	if _, err := ParseBaseline(string(opts.Baseline)); err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	return &Detector{
		opts:         opts,
		minGapFrames: fps * opts.MinGapSeconds,
		logger:       logging.NewComponentLogger(logger, "scene"),
		state:        StateScanning,
	}, nil
}

// State returns the state the last observed frame left the detector in.
func (d *Detector) State() State {
	return d.state
}

// Stats returns the counters accumulated so far.
func (d *Detector) Stats() Stats {
	return d.stats
}

// MinGapFrames returns the gap window length in frames.
func (d *Detector) MinGapFrames() float64 {
	return d.minGapFrames
}

// Observe feeds one frame to the detector. It reports whether the frame is a
// scene candidate. The frame image must be set unless the frame falls inside a
// gap under BaselineExamined.
func (d *Detector) Observe(frame frames.Frame) (frames.SceneCandidate, bool, error) {
	if d.seen && (frame.Timestamp < d.lastTimestamp || frame.Index < d.lastIndex) {
		return frames.SceneCandidate{}, false, fmt.Errorf("%w: frame %d at %.3fs follows frame %d at %.3fs",
			ErrOutOfOrder, frame.Index, frame.Timestamp, d.lastIndex, d.lastTimestamp)
	}
	d.seen = true
	d.lastTimestamp = frame.Timestamp
	d.lastIndex = frame.Index
	d.stats.FramesRead++

	if d.hasCandidate && float64(frame.Index-d.lastCandidate) < d.minGapFrames {
		d.state = StateInGap
		d.stats.FramesSkipped++
		if d.opts.Baseline == BaselineAlwaysUpdate {
			hist, err := histogram(frame)
			if err != nil {
				return frames.SceneCandidate{}, false, err
			}
			d.baseline = hist
		}
		return frames.SceneCandidate{}, false, nil
	}

	d.state = StateScanning
	d.stats.FramesExamined++
	hist, err := histogram(frame)
	if err != nil {
		return frames.SceneCandidate{}, false, err
	}
	correlation := vision.Correlation(d.baseline, hist)
	d.baseline = hist
	if correlation >= d.opts.CorrelationThreshold {
		return frames.SceneCandidate{}, false, nil
	}

	d.lastCandidate = frame.Index
	d.hasCandidate = true
	d.stats.Candidates++
	candidate := frames.SceneCandidate{
		Frame:            frame,
		SceneChangeScore: frames.Clamp01(1 - correlation),
	}
	d.logger.Debug("scene candidate",
		logging.String(logging.FieldEventType, "scene_candidate"),
		logging.At(frame.Timestamp),
		logging.Uint64(logging.FieldFrameIndex, frame.Index),
		logging.Float64("correlation", correlation),
	)
	return candidate, true, nil
}

func histogram(frame frames.Frame) (vision.Histogram, error) {
	if frame.Image == nil {
		return vision.Histogram{}, fmt.Errorf("scene: frame %d at %.3fs has no image", frame.Index, frame.Timestamp)
	}
	return vision.HSVHistogram(frame.Image, vision.HueBins, vision.SaturationBins), nil
}

// Scan consumes src exactly once, calling emit for every scene candidate in
// stream order. Frames that are not candidates are released as soon as they
// have been examined. Source errors and emit errors end the scan.
func Scan(ctx context.Context, src frames.Source, opts Options, logger *slog.Logger, emit func(frames.SceneCandidate) error) (Stats, error) {
	detector, err := NewDetector(src.FPS(), opts, logger)
	if err != nil {
		return Stats{}, err
	}
	for {
		if err := ctx.Err(); err != nil {
			return detector.Stats(), err
		}
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return detector.Stats(), fmt.Errorf("scene: read frame after %d frames: %w", detector.stats.FramesRead, err)
		}
		candidate, ok, err := detector.Observe(frame)
		if err != nil {
			return detector.Stats(), err
		}
		if !ok {
			frame.Release()
			continue
		}
		if err := emit(candidate); err != nil {
			return detector.Stats(), err
		}
	}
	stats := detector.Stats()
	detector.logger.Info("scene scan complete",
		logging.String(logging.FieldEventType, "scene_scan_complete"),
		logging.Int("frames_read", stats.FramesRead),
		logging.Int("frames_examined", stats.FramesExamined),
		logging.Int("frames_skipped", stats.FramesSkipped),
		logging.Int("candidates", stats.Candidates),
	)
	return stats, nil
}

// Detect runs Scan and collects the candidates. On error no candidates are returned.
func Detect(ctx context.Context, src frames.Source, opts Options, logger *slog.Logger) ([]frames.SceneCandidate, Stats, error) {
	var candidates []frames.SceneCandidate
	stats, err := Scan(ctx, src, opts, logger, func(c frames.SceneCandidate) error {
		candidates = append(candidates, c)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return candidates, stats, nil
}
