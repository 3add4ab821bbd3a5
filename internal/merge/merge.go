package merge

import (
	"fmt"
	"strings"

	"vidscribe/internal/frames"
	"vidscribe/internal/services"
	"vidscribe/internal/textutil"
)

// FeaturesOf extracts the rule inputs from a frame and its window.
func FeaturesOf(frame frames.SelectedFrame, window frames.TranscriptWindow) Features {
	return Features{
		HasCode:              frame.Classification.HasCode,
		HasDiagram:           frame.Classification.HasDiagram,
		WordCount:            window.WordCount,
		CodeKeywords:         textutil.CodeKeywords.Present(window.Text),
		ArchitectureKeywords: textutil.ArchitectureKeywords.Present(window.Text),
		CodeScore:            frame.Classification.CodeScore,
		DiagramScore:         frame.Classification.DiagramScore,
		Priority:             frame.Priority,
	}
}

// Segment labels one frame and window pair.
func Segment(frame frames.SelectedFrame, window frames.TranscriptWindow) frames.AlignedSegment {
	f := FeaturesOf(frame, window)
	score := AlignmentScore(f)
	languageText := strings.TrimSpace(window.Text + " " + frame.Classification.OCRText)
	insights := Insights(f, languageText)
	if insights == nil {
		insights = []string{}
	}
	return frames.AlignedSegment{
		Frame:            frame,
		Window:           window,
		SegmentType:      SegmentType(f),
		Insights:         insights,
		AlignmentScore:   score,
		AlignmentQuality: Quality(score),
	}
}

// Merge pairs selected frames with windows by position.
func Merge(selected []frames.SelectedFrame, windows []frames.TranscriptWindow) ([]frames.AlignedSegment, error) {
	if len(selected) != len(windows) {
		return nil, services.Wrap(services.ErrValidation, "merge", "pair windows",
			"frame and window counts differ", fmt.Errorf("%d frames, %d windows", len(selected), len(windows)))
	}
	segments := make([]frames.AlignedSegment, len(selected))
	for i := range selected {
		segments[i] = Segment(selected[i], windows[i])
	}
	return segments, nil
}

// CountByType tallies segments per type.
func CountByType(segments []frames.AlignedSegment) map[frames.SegmentType]int {
	counts := make(map[frames.SegmentType]int)
	for _, segment := range segments {
		counts[segment.SegmentType]++
	}
	return counts
}
