// Package pipeline runs one analysis end to end.
//
// Analyze is the core: scene detection, classification, selection,
// alignment, merging, and gap analysis over injected collaborators. Runner
// wraps it with everything a CLI invocation needs: a run id, ffprobe and
// ffmpeg, the transcript and metadata loaders, the keyframe directory, the
// manifest, and the run history. All state lives in the per-run values built
// here; nothing is global.
package pipeline
