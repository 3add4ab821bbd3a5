// Package scene finds scene changes in an ordered frame stream.
//
// The detector compares each examined frame's hue/saturation histogram with a
// baseline histogram and emits a SceneCandidate when the correlation drops
// below the configured threshold. After a candidate, frames inside the
// min-gap window are skipped. Scanning is strictly sequential: every decision
// depends on the baseline and the index of the last candidate.
//
// The detector is a two-state machine:
//
//	Scanning --(frame within min gap of last candidate)--> InGap
//	InGap    --(first frame at or past the min gap)-------> Scanning
//
// A frame observed in Scanning is examined and always becomes the new
// baseline. A frame observed in InGap is skipped; under BaselineExamined it
// leaves the baseline untouched, so the frame that ends a gap is compared with
// the last frame examined before the gap began. BaselineAlwaysUpdate instead
// makes every skipped frame the baseline.
package scene
