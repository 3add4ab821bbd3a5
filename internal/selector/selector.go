package selector

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"math"

	"vidscribe/internal/classify"
	"vidscribe/internal/frames"
	"vidscribe/internal/logging"
	"vidscribe/internal/services"
)

const (
	// MinPriority is the priority at or above which a candidate is kept.
	MinPriority = 0.4
	// MinActiveReasons keeps lower priority candidates with enough content signals.
	MinActiveReasons = 2
	// JPEGQuality is the default encode quality.
	JPEGQuality = 85
	// ReasonSceneChange is prepended to every selected frame's reasons.
	ReasonSceneChange = "scene_change"
)

// ImageSink persists an encoded keyframe and returns where it landed.
type ImageSink interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// Encoder turns a frame image into the bytes handed to the sink.
type Encoder func(img image.Image) ([]byte, error)

// JPEG returns an Encoder at the given quality.
func JPEG(quality int) Encoder {
	return func(img image.Image) ([]byte, error) {
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// Selector filters scored candidates into SelectedFrames.
type Selector struct {
	sink   ImageSink
	encode Encoder
	logger *slog.Logger
}

// Option customizes a Selector.
type Option func(*Selector)

// WithEncoder replaces the default JPEG encoder.
func WithEncoder(encode Encoder) Option {
	return func(s *Selector) {
		if encode != nil {
			s.encode = encode
		}
	}
}

// New returns a selector writing to sink.
func New(sink ImageSink, logger *slog.Logger, opts ...Option) *Selector {
	s := &Selector{
		sink:   sink,
		encode: JPEG(JPEGQuality),
		logger: logging.NewComponentLogger(logger, "selector"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Eligible reports whether a scored candidate passes the selection predicate.
func Eligible(s classify.Scored) bool {
	if s.Priority >= MinPriority {
		return true
	}
	return len(classify.ActiveReasons(s.Classification.Reasons)) >= MinActiveReasons
}

// ImageName is the sink name for a frame at timestamp seconds.
func ImageName(timestamp float64) string {
	return fmt.Sprintf("frame_%06ds", int64(math.Floor(timestamp)))
}

// uniqueName returns ImageName(timestamp), suffixed with _1, _2, ... when an
// earlier frame in the same second already took the plain name.
func uniqueName(used map[string]int, timestamp float64) string {
	base := ImageName(timestamp)
	n := used[base]
	used[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}

// Select keeps the eligible candidates, persists each one through the sink,
// and releases every candidate image. scored must be in timestamp order.
// Frames sharing a whole second get distinct sink names.
func (s *Selector) Select(ctx context.Context, scored []classify.Scored) ([]frames.SelectedFrame, error) {
	logger := logging.WithContext(ctx, s.logger)
	selected := make([]frames.SelectedFrame, 0, len(scored))
	used := make(map[string]int)
	for i := range scored {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := scored[i]
		candidate := item.Candidate
		scored[i].Candidate.Release()
		if !Eligible(item) {
			continue
		}
		if n := len(selected); n > 0 && candidate.Timestamp <= selected[n-1].Timestamp {
			logger.Debug("dropping non-increasing candidate",
				logging.At(candidate.Timestamp),
				logging.Float64("previous", selected[n-1].Timestamp),
			)
			continue
		}
		frame, err := s.persist(ctx, uniqueName(used, candidate.Timestamp), item, candidate)
		if err != nil {
			return nil, err
		}
		logger.Debug("frame selected",
			logging.String("image", frame.ImageName),
			logging.At(frame.Timestamp),
			logging.Float64("priority", frame.Priority),
		)
		selected = append(selected, frame)
	}
	logger.Info("frame selection complete",
		logging.Int("candidates", len(scored)),
		logging.Int("selected", len(selected)),
	)
	return selected, nil
}

func (s *Selector) persist(ctx context.Context, name string, item classify.Scored, candidate frames.SceneCandidate) (frames.SelectedFrame, error) {
	if candidate.Image == nil {
		return frames.SelectedFrame{}, services.Wrap(services.ErrValidation, "selector", "encode", "selected frame has no pixels", fmt.Errorf("frame %s", name))
	}
	data, err := s.encode(candidate.Image)
	if err != nil {
		return frames.SelectedFrame{}, services.Wrap(services.ErrValidation, "selector", "encode", "encode "+name, err)
	}
	location, err := s.sink.Store(ctx, name, data)
	if err != nil {
		return frames.SelectedFrame{}, services.Wrap(services.ErrExternalTool, "selector", "store", "persist "+name, err)
	}
	candidate.Release()
	reasons := append([]string{ReasonSceneChange}, item.Classification.Reasons...)
	return frames.SelectedFrame{
		SceneCandidate: candidate,
		Classification: item.Classification,
		Priority:       item.Priority,
		Reasons:        frames.NormalizeReasons(reasons...),
		ImageName:      name,
		ImagePath:      location,
	}, nil
}
