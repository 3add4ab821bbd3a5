package classify

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"vidscribe/internal/frames"
	"vidscribe/internal/logging"
	"vidscribe/internal/ocr"
)

const (
	DefaultCodeScoreThreshold    = 0.5
	DefaultDiagramScoreThreshold = 0.5
	sceneWeight                  = 0.5
)

// Options configures a Classifier.
type Options struct {
	CodeScoreThreshold    float64
	DiagramScoreThreshold float64
	// Workers bounds ClassifyAll concurrency; <= 0 uses the CPU count.
	Workers int
	// Keep reports whether a scored candidate can still be promoted. ClassifyAll
	// releases the image of every candidate Keep rejects. nil keeps them all.
	Keep func(Scored) bool
}

// DefaultOptions returns the stock thresholds.
func DefaultOptions() Options {
	return Options{
		CodeScoreThreshold:    DefaultCodeScoreThreshold,
		DiagramScoreThreshold: DefaultDiagramScoreThreshold,
		Workers:               runtime.NumCPU(),
	}
}

// Classifier scores frames for code and diagram content.
type Classifier struct {
	opts    Options
	ocr     ocr.Recognizer
	code    scorer
	diagram scorer
	logger  *slog.Logger
}

// New builds a classifier. A nil recognizer means OCR is disabled.
func New(opts Options, recognizer ocr.Recognizer, logger *slog.Logger) *Classifier {
	if recognizer == nil {
		recognizer = ocr.Disabled{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Classifier{
		opts:    opts,
		ocr:     recognizer,
		code:    codePresence{},
		diagram: diagramPresence{},
		logger:  logging.NewComponentLogger(logger, "classify"),
	}
}

// Classify scores one frame. It never fails: scorer errors and OCR failures
// are recorded as reason tags.
func (c *Classifier) Classify(ctx context.Context, frame frames.Frame) frames.ClassificationResult {
	a := newAnalysis(frame.Image)
	var reasons []string

	if c.ocr.Enabled() && frame.Image != nil {
		text, err := c.ocr.Recognize(ctx, frame.Image)
		if err != nil {
			reasons = append(reasons, ReasonOCRUnavailable)
			logging.WarnWithContext(logging.WithContext(ctx, c.logger), "ocr unavailable for frame", "ocr_unavailable",
				logging.At(frame.Timestamp),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check ocr.binary and ocr.timeout_seconds"),
				logging.String(logging.FieldImpact, "frame scored with image heuristics only"),
			)
		} else {
			a.ocrOK = true
			a.ocrText = text
		}
	}

	code, codeErr := c.run(ctx, c.code, a)
	if codeErr != nil {
		reasons = append(reasons, c.code.Name()+reasonErrorSuffix)
		c.warnScorer(ctx, c.code.Name(), frame, codeErr)
	}
	diagram, diagramErr := c.run(ctx, c.diagram, a)
	if diagramErr != nil {
		reasons = append(reasons, c.diagram.Name()+reasonErrorSuffix)
		c.warnScorer(ctx, c.diagram.Name(), frame, diagramErr)
	}

	reasons = append(reasons, code.Reasons...)
	reasons = append(reasons, diagram.Reasons...)
	codeScore := frames.Clamp01(code.Value)
	diagramScore := frames.Clamp01(diagram.Value)
	return frames.ClassificationResult{
		CodeScore:    codeScore,
		DiagramScore: diagramScore,
		Reasons:      frames.NormalizeReasons(reasons...),
		HasCode:      codeScore >= c.opts.CodeScoreThreshold,
		HasDiagram:   diagramScore >= c.opts.DiagramScoreThreshold,
		OCRText:      a.ocrText,
	}
}

// run calls s, turning a panic into an error.
func (c *Classifier) run(ctx context.Context, s scorer, a *analysis) (score Score, err error) {
	defer func() {
		if r := recover(); r != nil {
			score = Score{}
			err = fmt.Errorf("%s panicked: %v", s.Name(), r)
		}
	}()
	score, err = s.Score(ctx, a)
	if err != nil {
		return Score{}, err
	}
	return score, nil
}

func (c *Classifier) warnScorer(ctx context.Context, name string, frame frames.Frame, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, c.logger), "scorer failed", "scorer_failed",
		logging.String("scorer", name),
		logging.At(frame.Timestamp),
		logging.Error(err),
		logging.String(logging.FieldImpact, "scorer contributed zero for this frame"),
	)
}

// Priority combines the classification with the scene change score.
func Priority(result frames.ClassificationResult, sceneScore float64) float64 {
	return frames.Clamp01(math.Max(math.Max(result.CodeScore, result.DiagramScore), sceneScore*sceneWeight))
}

// Scored is a scene candidate with its classification and priority.
type Scored struct {
	Candidate      frames.SceneCandidate
	Classification frames.ClassificationResult
	Priority       float64
}

// ClassifyAll classifies candidates on a bounded worker pool and returns the
// results in timestamp order. It takes over the candidate images: the input
// slice is released as each frame is scored, and only candidates passing
// Options.Keep retain pixels in the result. Cancellation is checked before
// each task; a cancelled run returns no results.
func (c *Classifier) ClassifyAll(ctx context.Context, candidates []frames.SceneCandidate) ([]Scored, error) {
	out := make([]Scored, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.Workers)
	for i := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			candidate := candidates[i]
			result := c.Classify(gctx, candidate.Frame)
			candidates[i].Release()
			out[i] = Scored{
				Candidate:      candidate,
				Classification: result,
				Priority:       Priority(result, candidate.SceneChangeScore),
			}
			if c.opts.Keep != nil && !c.opts.Keep(out[i]) {
				out[i].Candidate.Release()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Candidate.Timestamp < out[j].Candidate.Timestamp
	})
	return out, nil
}

// ActiveReasons drops error and availability tags, leaving the content signals.
func ActiveReasons(reasons []string) []string {
	out := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		if reason == ReasonOCRUnavailable || isErrorTag(reason) {
			continue
		}
		out = append(out, reason)
	}
	return out
}

func isErrorTag(reason string) bool {
	return strings.HasSuffix(reason, reasonErrorSuffix)
}
