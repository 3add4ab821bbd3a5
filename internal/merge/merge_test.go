package merge_test

import (
	"errors"
	"reflect"
	"testing"

	"vidscribe/internal/frames"
	"vidscribe/internal/merge"
	"vidscribe/internal/services"
)

func TestSegmentTypeTable(t *testing.T) {
	tests := []struct {
		name string
		in   merge.Features
		want frames.SegmentType
	}{
		{"code explained", merge.Features{HasCode: true, WordCount: 25, CodeKeywords: true}, frames.SegmentCodeExplanation},
		{"code wins over architecture", merge.Features{HasCode: true, HasDiagram: true, WordCount: 25, CodeKeywords: true, ArchitectureKeywords: true}, frames.SegmentCodeExplanation},
		{"architecture overview", merge.Features{HasDiagram: true, WordCount: 25, ArchitectureKeywords: true}, frames.SegmentArchitectureOverview},
		{"architecture on code frame", merge.Features{HasCode: true, HasDiagram: true, WordCount: 25, ArchitectureKeywords: true}, frames.SegmentArchitectureOverview},
		{"code only", merge.Features{HasCode: true, WordCount: 5}, frames.SegmentCodeOnly},
		{"code only ignores keywords", merge.Features{HasCode: true, CodeKeywords: true}, frames.SegmentCodeOnly},
		{"code only before diagram only", merge.Features{HasCode: true, HasDiagram: true, WordCount: 3}, frames.SegmentCodeOnly},
		{"diagram only", merge.Features{HasDiagram: true, WordCount: 5}, frames.SegmentDiagramOnly},
		{"spoken only", merge.Features{WordCount: 21}, frames.SegmentSpokenOnly},
		{"spoken only with code talk", merge.Features{WordCount: 40, CodeKeywords: true}, frames.SegmentSpokenOnly},
		{"code with discussion", merge.Features{HasCode: true, WordCount: 21}, frames.SegmentCodeWithDiscussion},
		{"code with architecture talk", merge.Features{HasCode: true, WordCount: 30, ArchitectureKeywords: true}, frames.SegmentCodeWithDiscussion},
		{"diagram with discussion", merge.Features{HasDiagram: true, WordCount: 21}, frames.SegmentDiagramWithDiscussion},
		{"diagram with code talk", merge.Features{HasDiagram: true, WordCount: 25, CodeKeywords: true}, frames.SegmentDiagramWithDiscussion},
		{"general short narration", merge.Features{WordCount: 10}, frames.SegmentGeneral},
		{"general mid-length code", merge.Features{HasCode: true, WordCount: 20, CodeKeywords: true}, frames.SegmentGeneral},
		{"general empty", merge.Features{}, frames.SegmentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := merge.SegmentType(tt.in); got != tt.want {
				t.Fatalf("SegmentType = %q, want %q", got, tt.want)
			}
			if again := merge.SegmentType(tt.in); again != tt.want {
				t.Fatalf("SegmentType not stable: %q", again)
			}
		})
	}
}

func TestQualityBuckets(t *testing.T) {
	tests := []struct {
		score int
		want  frames.AlignmentQuality
	}{
		{9, frames.QualityExcellent},
		{6, frames.QualityExcellent},
		{5, frames.QualityGood},
		{4, frames.QualityGood},
		{3, frames.QualityFair},
		{2, frames.QualityFair},
		{1, frames.QualityPoor},
		{0, frames.QualityPoor},
		{-3, frames.QualityPoor},
	}
	for _, tt := range tests {
		if got := merge.Quality(tt.score); got != tt.want {
			t.Errorf("Quality(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestAlignmentScore(t *testing.T) {
	tests := []struct {
		name string
		in   merge.Features
		want int
	}{
		{"explained code", merge.Features{HasCode: true, CodeKeywords: true, WordCount: 35, Priority: 0.8}, 6},
		{"explained diagram", merge.Features{HasDiagram: true, ArchitectureKeywords: true, WordCount: 25, Priority: 0.5}, 4},
		{"silent code", merge.Features{HasCode: true, WordCount: 5, Priority: 0.9}, -1},
		{"long talk no visual", merge.Features{WordCount: 60}, 1},
		{"everything", merge.Features{HasCode: true, HasDiagram: true, CodeKeywords: true, ArchitectureKeywords: true, WordCount: 40, Priority: 0.6}, 9},
		{"nothing", merge.Features{}, 0},
	}
	for _, tt := range tests {
		if got := merge.AlignmentScore(tt.in); got != tt.want {
			t.Errorf("%s: AlignmentScore = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestInsights(t *testing.T) {
	tests := []struct {
		name string
		in   merge.Features
		text string
		want []string
	}{
		{
			name: "silent code frame",
			in:   merge.Features{HasCode: true, CodeKeywords: true, WordCount: 3, CodeScore: 0.8, Priority: 0.75},
			text: "def load select from users",
			want: []string{"code_explained", "language:python", "language:sql", "visual_without_narration", "high_priority"},
		},
		{
			name: "talk without visuals",
			in:   merge.Features{CodeKeywords: true, ArchitectureKeywords: true, WordCount: 40, CodeScore: 0.1, DiagramScore: 0.1},
			text: "def select",
			want: []string{"code_mentioned_not_shown", "architecture_mentioned_not_shown"},
		},
		{
			name: "explained diagram",
			in:   merge.Features{HasDiagram: true, ArchitectureKeywords: true, WordCount: 30, DiagramScore: 0.7, Priority: 0.7},
			want: []string{"diagram_explained", "high_priority"},
		},
		{
			name: "nothing",
			in:   merge.Features{WordCount: 15, CodeScore: 0.5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := merge.Insights(tt.in, tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Insights = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	if got := merge.Describe("language:javascript"); got != "JavaScript code likely on screen" {
		t.Fatalf("Describe language = %q", got)
	}
	if got := merge.Describe(merge.InsightHighPriority); got == merge.InsightHighPriority {
		t.Fatal("expected a description for high_priority")
	}
	if got := merge.Describe("unknown_tag"); got != "unknown_tag" {
		t.Fatalf("Describe unknown = %q", got)
	}
}

func TestMergeBuildsSegments(t *testing.T) {
	selected := []frames.SelectedFrame{
		{
			SceneCandidate: frames.SceneCandidate{Frame: frames.Frame{Timestamp: 40}},
			Classification: frames.ClassificationResult{CodeScore: 0.8, DiagramScore: 0.1, HasCode: true, OCRText: "import pandas"},
			Priority:       0.8,
		},
		{
			SceneCandidate: frames.SceneCandidate{Frame: frames.Frame{Timestamp: 70}},
			Priority:       0.5,
		},
	}
	windows := []frames.TranscriptWindow{
		{Text: "here we implement the function and return the result to the caller so every step of the loop is easy to follow", WordCount: 22},
		{Text: "thanks for watching", WordCount: 3},
	}
	segments, err := merge.Merge(selected, windows)
	if err != nil {
		t.Fatalf("Merge returned error: %v", err)
	}
	first := segments[0]
	if first.SegmentType != frames.SegmentCodeExplanation {
		t.Fatalf("segment type = %q", first.SegmentType)
	}
	if first.AlignmentScore != 4 || first.AlignmentQuality != frames.QualityGood {
		t.Fatalf("score = %d (%s), want 4 good", first.AlignmentScore, first.AlignmentQuality)
	}
	wantInsights := []string{"code_explained", "language:python", "high_priority"}
	if !reflect.DeepEqual(first.Insights, wantInsights) {
		t.Fatalf("insights = %v, want %v", first.Insights, wantInsights)
	}
	second := segments[1]
	if second.SegmentType != frames.SegmentGeneral || second.AlignmentQuality != frames.QualityPoor {
		t.Fatalf("second segment = %+v", second)
	}
	if second.Insights == nil || len(second.Insights) != 0 {
		t.Fatalf("expected empty insights, got %#v", second.Insights)
	}
	counts := merge.CountByType(segments)
	if counts[frames.SegmentCodeExplanation] != 1 || counts[frames.SegmentGeneral] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestMergeLengthMismatch(t *testing.T) {
	_, err := merge.Merge(make([]frames.SelectedFrame, 2), make([]frames.TranscriptWindow, 1))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMergeEmpty(t *testing.T) {
	segments, err := merge.Merge(nil, nil)
	if err != nil || len(segments) != 0 {
		t.Fatalf("expected empty result, got %v %v", segments, err)
	}
}
