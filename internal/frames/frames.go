package frames

import (
	"image"
	"math"
	"sort"
	"strings"
)

// Frame is one decoded video frame. Image is owned by whichever stage holds the
// frame and is released (set to nil) once it is no longer needed.
type Frame struct {
	Timestamp float64     `json:"timestamp"`
	Index     uint64      `json:"frame_index"`
	Image     *image.RGBA `json:"-"`
}

// Release drops the pixel buffer reference.
func (f *Frame) Release() {
	f.Image = nil
}

// SceneCandidate is a frame the scene detector flagged as a discontinuity.
type SceneCandidate struct {
	Frame
	SceneChangeScore float64 `json:"scene_change_score"`
}

// ClassificationResult is the outcome of the content heuristics for one frame.
type ClassificationResult struct {
	CodeScore    float64  `json:"code_score"`
	DiagramScore float64  `json:"diagram_score"`
	Reasons      []string `json:"reasons"`
	HasCode      bool     `json:"has_code"`
	HasDiagram   bool     `json:"has_diagram"`
	OCRText      string   `json:"ocr_text,omitempty"`
}

// HasReason reports whether tag is among the classification reasons.
func (c ClassificationResult) HasReason(tag string) bool {
	for _, reason := range c.Reasons {
		if reason == tag {
			return true
		}
	}
	return false
}

// SelectedFrame is a scored candidate that cleared the selection predicate and
// was handed to the image sink. It is never mutated after creation.
type SelectedFrame struct {
	SceneCandidate
	Classification ClassificationResult `json:"classification"`
	Priority       float64              `json:"priority"`
	Reasons        []string             `json:"reasons"`
	ImageName      string               `json:"image_name"`
	ImagePath      string               `json:"image_path,omitempty"`
}

// TranscriptWindow is the slice of narration projected around a frame.
type TranscriptWindow struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	WordCount int     `json:"word_count"`
}

// SegmentType labels a (frame, transcript window) pair.
type SegmentType string

const (
	SegmentCodeExplanation       SegmentType = "code_explanation"
	SegmentArchitectureOverview  SegmentType = "architecture_overview"
	SegmentCodeOnly              SegmentType = "code_only"
	SegmentDiagramOnly           SegmentType = "diagram_only"
	SegmentSpokenOnly            SegmentType = "spoken_only"
	SegmentCodeWithDiscussion    SegmentType = "code_with_discussion"
	SegmentDiagramWithDiscussion SegmentType = "diagram_with_discussion"
	SegmentGeneral               SegmentType = "general"
)

// AlignmentQuality buckets how well visuals and narration correspond.
type AlignmentQuality string

const (
	QualityExcellent AlignmentQuality = "excellent"
	QualityGood      AlignmentQuality = "good"
	QualityFair      AlignmentQuality = "fair"
	QualityPoor      AlignmentQuality = "poor"
)

// AlignedSegment pairs a selected frame with its narration window.
type AlignedSegment struct {
	Frame            SelectedFrame    `json:"frame"`
	Window           TranscriptWindow `json:"window"`
	SegmentType      SegmentType      `json:"segment_type"`
	Insights         []string         `json:"insights"`
	AlignmentScore   int              `json:"alignment_score"`
	AlignmentQuality AlignmentQuality `json:"alignment_quality"`
}

// Timestamp returns the frame timestamp of the segment.
func (s AlignedSegment) Timestamp() float64 {
	return s.Frame.Timestamp
}

// GapKind identifies the kind of narrative gap a record describes.
type GapKind string

const (
	GapVisualNotExplained GapKind = "visual_not_explained"
	GapExplainedNotShown  GapKind = "explained_not_shown"
	GapHighValue          GapKind = "high_value"
)

// GapRecord is one gap finding anchored at a segment timestamp.
type GapRecord struct {
	Kind      GapKind `json:"kind"`
	Timestamp float64 `json:"timestamp"`
	Rationale string  `json:"rationale"`
}

// Clamp01 limits value to the closed unit interval. NaN maps to 0.
func Clamp01(value float64) float64 {
	switch {
	case math.IsNaN(value), value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}

// NormalizeReasons trims, de-duplicates, and sorts reason tags.
func NormalizeReasons(reasons ...string) []string {
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		reason = strings.TrimSpace(reason)
		if reason == "" {
			continue
		}
		if _, ok := seen[reason]; ok {
			continue
		}
		seen[reason] = struct{}{}
		out = append(out, reason)
	}
	sort.Strings(out)
	return out
}
