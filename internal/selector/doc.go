// Package selector decides which classified scene candidates become keyframes
// and hands their pixels to an ImageSink.
//
// Selection preserves chronological order and drops any candidate whose
// timestamp does not strictly follow the previous selection. A sink failure
// aborts the run because an unpersisted keyframe cannot be referenced by the
// aligned segments that follow.
package selector
