// Package gaps reports where visuals and narration fail to support each other.
package gaps

import (
	"fmt"

	"vidscribe/internal/frames"
	"vidscribe/internal/textutil"
)

const (
	narrationGapRatio = 0.20
	visualGapRatio    = 0.15
	highValueMinimum  = 5
	highValuePriority = 0.7
)

// RecommendationKind names a follow-up suggested by Analyze.
type RecommendationKind string

const (
	RecommendAddNarration     RecommendationKind = "add_narration"
	RecommendAddVisuals       RecommendationKind = "add_visuals"
	RecommendReferenceQuality RecommendationKind = "reference_quality"
)

// Recommendation is one actionable suggestion.
type Recommendation struct {
	Kind    RecommendationKind `json:"kind"`
	Message string             `json:"message"`
	Count   int                `json:"count"`
}

// Report groups gap records by kind.
type Report struct {
	VisualNotExplained []frames.GapRecord `json:"visual_not_explained"`
	ExplainedNotShown  []frames.GapRecord `json:"explained_not_shown"`
	HighValue          []frames.GapRecord `json:"high_value"`
	Recommendations    []Recommendation   `json:"recommendations"`
}

// Has reports whether a recommendation of kind was emitted.
func (r Report) Has(kind RecommendationKind) bool {
	for _, rec := range r.Recommendations {
		if rec.Kind == kind {
			return true
		}
	}
	return false
}

// Analyze classifies segments into gap records and derives recommendations.
func Analyze(segments []frames.AlignedSegment) Report {
	report := Report{
		VisualNotExplained: []frames.GapRecord{},
		ExplainedNotShown:  []frames.GapRecord{},
		HighValue:          []frames.GapRecord{},
		Recommendations:    []Recommendation{},
	}
	for _, segment := range segments {
		ts := segment.Timestamp()
		switch segment.SegmentType {
		case frames.SegmentCodeOnly, frames.SegmentDiagramOnly:
			report.VisualNotExplained = append(report.VisualNotExplained, frames.GapRecord{
				Kind:      frames.GapVisualNotExplained,
				Timestamp: ts,
				Rationale: fmt.Sprintf("%s frame with %d narrated words", segment.SegmentType, segment.Window.WordCount),
			})
		case frames.SegmentSpokenOnly:
			if matched := mentionedTopics(segment.Window.Text); len(matched) > 0 {
				report.ExplainedNotShown = append(report.ExplainedNotShown, frames.GapRecord{
					Kind:      frames.GapExplainedNotShown,
					Timestamp: ts,
					Rationale: fmt.Sprintf("narration mentions %s with nothing on screen", joinTopics(matched)),
				})
			}
		}
		if segment.Frame.Priority >= highValuePriority && segment.AlignmentQuality == frames.QualityExcellent {
			report.HighValue = append(report.HighValue, frames.GapRecord{
				Kind:      frames.GapHighValue,
				Timestamp: ts,
				Rationale: fmt.Sprintf("priority %.2f with %s alignment", segment.Frame.Priority, segment.AlignmentQuality),
			})
		}
	}

	total := float64(len(segments))
	if n := len(report.VisualNotExplained); float64(n) > narrationGapRatio*total {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Kind:    RecommendAddNarration,
			Message: fmt.Sprintf("Add narration: %d of %d segments show content that is never explained", n, len(segments)),
			Count:   n,
		})
	}
	if n := len(report.ExplainedNotShown); float64(n) > visualGapRatio*total {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Kind:    RecommendAddVisuals,
			Message: fmt.Sprintf("Add visuals: %d of %d segments describe code or architecture that is not shown", n, len(segments)),
			Count:   n,
		})
	}
	if n := len(report.HighValue); n > highValueMinimum {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Kind:    RecommendReferenceQuality,
			Message: fmt.Sprintf("Reference-quality segments found: %d well-aligned, high-priority segments", n),
			Count:   n,
		})
	}
	return report
}

func mentionedTopics(text string) []string {
	var topics []string
	if textutil.CodeKeywords.Present(text) {
		topics = append(topics, "code")
	}
	if textutil.ArchitectureKeywords.Present(text) {
		topics = append(topics, "architecture")
	}
	return topics
}

func joinTopics(topics []string) string {
	if len(topics) == 2 {
		return topics[0] + " and " + topics[1]
	}
	return topics[0]
}
