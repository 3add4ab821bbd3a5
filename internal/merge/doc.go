// Package merge pairs selected keyframes with their narration windows and
// labels each pair.
//
// Segment types, alignment score adjustments, and quality buckets are each an
// ordered table evaluated top to bottom. Segment type and quality bucket take
// the first matching row; score adjustments apply every matching row.
package merge
