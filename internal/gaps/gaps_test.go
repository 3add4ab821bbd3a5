package gaps_test

import (
	"testing"

	"vidscribe/internal/frames"
	"vidscribe/internal/gaps"
)

func segment(ts float64, typ frames.SegmentType, text string, priority float64, quality frames.AlignmentQuality) frames.AlignedSegment {
	var seg frames.AlignedSegment
	seg.Frame.Timestamp = ts
	seg.Frame.Priority = priority
	seg.Window.Text = text
	seg.SegmentType = typ
	seg.AlignmentQuality = quality
	return seg
}

func TestAnalyzeRecommendsNarrationAndReference(t *testing.T) {
	var segments []frames.AlignedSegment
	visual := []frames.SegmentType{frames.SegmentCodeOnly, frames.SegmentDiagramOnly, frames.SegmentCodeOnly}
	for i, typ := range visual {
		segments = append(segments, segment(float64(i*10), typ, "", 0.6, frames.QualityPoor))
	}
	for i := 3; i < 9; i++ {
		segments = append(segments, segment(float64(i*10), frames.SegmentCodeExplanation, "the function returns", 0.9, frames.QualityExcellent))
	}
	segments = append(segments, segment(90, frames.SegmentGeneral, "", 0.2, frames.QualityPoor))

	report := gaps.Analyze(segments)
	if len(report.VisualNotExplained) != 3 {
		t.Fatalf("visual_not_explained = %d, want 3", len(report.VisualNotExplained))
	}
	if len(report.HighValue) != 6 {
		t.Fatalf("high_value = %d, want 6", len(report.HighValue))
	}
	if !report.Has(gaps.RecommendAddNarration) {
		t.Fatal("expected add narration recommendation")
	}
	if !report.Has(gaps.RecommendReferenceQuality) {
		t.Fatal("expected reference-quality recommendation")
	}
	if report.Has(gaps.RecommendAddVisuals) {
		t.Fatal("unexpected add visuals recommendation")
	}
	if report.VisualNotExplained[1].Kind != frames.GapVisualNotExplained || report.VisualNotExplained[1].Timestamp != 10 {
		t.Fatalf("unexpected record %+v", report.VisualNotExplained[1])
	}
}

func TestAnalyzeThresholdsAreStrict(t *testing.T) {
	// 2 of 10 is exactly 20%, and 5 high-value segments is not more than 5.
	var segments []frames.AlignedSegment
	segments = append(segments,
		segment(0, frames.SegmentCodeOnly, "", 0.5, frames.QualityPoor),
		segment(1, frames.SegmentDiagramOnly, "", 0.5, frames.QualityPoor),
	)
	for i := 2; i < 7; i++ {
		segments = append(segments, segment(float64(i), frames.SegmentCodeExplanation, "", 0.7, frames.QualityExcellent))
	}
	for i := 7; i < 10; i++ {
		segments = append(segments, segment(float64(i), frames.SegmentGeneral, "", 0.1, frames.QualityFair))
	}
	report := gaps.Analyze(segments)
	if len(report.Recommendations) != 0 {
		t.Fatalf("expected no recommendations, got %+v", report.Recommendations)
	}
	if len(report.HighValue) != 5 {
		t.Fatalf("high_value = %d, want 5", len(report.HighValue))
	}
}

func TestAnalyzeExplainedNotShown(t *testing.T) {
	segments := []frames.AlignedSegment{
		segment(0, frames.SegmentSpokenOnly, "the database sits behind a load balancer", 0.5, frames.QualityPoor),
		segment(1, frames.SegmentSpokenOnly, "thanks everyone for joining today and see you next week", 0.5, frames.QualityPoor),
		segment(2, frames.SegmentSpokenOnly, "this function takes one parameter", 0.5, frames.QualityPoor),
		segment(3, frames.SegmentGeneral, "the database function", 0.5, frames.QualityPoor),
	}
	report := gaps.Analyze(segments)
	if len(report.ExplainedNotShown) != 2 {
		t.Fatalf("explained_not_shown = %d, want 2", len(report.ExplainedNotShown))
	}
	if report.ExplainedNotShown[0].Timestamp != 0 || report.ExplainedNotShown[1].Timestamp != 2 {
		t.Fatalf("unexpected records %+v", report.ExplainedNotShown)
	}
	if !report.Has(gaps.RecommendAddVisuals) {
		t.Fatal("expected add visuals recommendation")
	}
	if report.HighValue == nil || len(report.HighValue) != 0 {
		t.Fatalf("high value should be empty, got %#v", report.HighValue)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	report := gaps.Analyze(nil)
	if len(report.Recommendations) != 0 || len(report.VisualNotExplained) != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
