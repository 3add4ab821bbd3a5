// Package frames defines the records that flow through the keyframe pipeline.
//
// A Frame enters from a Source, becomes a SceneCandidate when the scene
// detector sees a discontinuity, is scored into a ClassificationResult, and is
// promoted to a SelectedFrame when it clears the selection predicate. Selected
// frames are paired with TranscriptWindows to form AlignedSegments, and gap
// analysis summarizes those segments into GapRecords.
//
// Every type here is plain data with JSON tags so external report generators
// can consume run artifacts without importing pipeline internals.
package frames
