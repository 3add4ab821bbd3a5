package merge

import "vidscribe/internal/frames"

// Features are the inputs every rule table reads.
type Features struct {
	HasCode              bool
	HasDiagram           bool
	WordCount            int
	CodeKeywords         bool
	ArchitectureKeywords bool
	CodeScore            float64
	DiagramScore         float64
	Priority             float64
}

func (f Features) visual() bool {
	return f.HasCode || f.HasDiagram
}

type segmentRule struct {
	segment frames.SegmentType
	match   func(Features) bool
}

var segmentRules = []segmentRule{
	{frames.SegmentCodeExplanation, func(f Features) bool {
		return f.HasCode && f.WordCount > 20 && f.CodeKeywords
	}},
	{frames.SegmentArchitectureOverview, func(f Features) bool {
		return f.HasDiagram && f.WordCount > 20 && f.ArchitectureKeywords
	}},
	{frames.SegmentCodeOnly, func(f Features) bool {
		return f.HasCode && f.WordCount <= 5
	}},
	{frames.SegmentDiagramOnly, func(f Features) bool {
		return f.HasDiagram && f.WordCount <= 5
	}},
	{frames.SegmentSpokenOnly, func(f Features) bool {
		return f.WordCount > 20 && !f.visual()
	}},
	{frames.SegmentCodeWithDiscussion, func(f Features) bool {
		return f.HasCode && f.WordCount > 20
	}},
	{frames.SegmentDiagramWithDiscussion, func(f Features) bool {
		return f.HasDiagram && f.WordCount > 20
	}},
}

// SegmentType returns the first matching segment type, or general.
func SegmentType(f Features) frames.SegmentType {
	for _, rule := range segmentRules {
		if rule.match(f) {
			return rule.segment
		}
	}
	return frames.SegmentGeneral
}

type scoreRule struct {
	points int
	match  func(Features) bool
}

var scoreRules = []scoreRule{
	{3, func(f Features) bool { return f.HasCode && f.CodeKeywords }},
	{3, func(f Features) bool { return f.HasDiagram && f.ArchitectureKeywords }},
	{2, func(f Features) bool { return f.WordCount > 30 }},
	{1, func(f Features) bool { return f.Priority >= 0.5 }},
	{-2, func(f Features) bool { return f.HasCode && f.WordCount < 10 }},
	{-1, func(f Features) bool { return f.WordCount > 50 && !f.visual() }},
}

// AlignmentScore sums every matching adjustment.
func AlignmentScore(f Features) int {
	score := 0
	for _, rule := range scoreRules {
		if rule.match(f) {
			score += rule.points
		}
	}
	return score
}

var qualityBuckets = []struct {
	min     int
	quality frames.AlignmentQuality
}{
	{6, frames.QualityExcellent},
	{4, frames.QualityGood},
	{2, frames.QualityFair},
}

// Quality buckets an alignment score.
func Quality(score int) frames.AlignmentQuality {
	for _, bucket := range qualityBuckets {
		if score >= bucket.min {
			return bucket.quality
		}
	}
	return frames.QualityPoor
}
