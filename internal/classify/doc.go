// Package classify scores scene candidates for code and diagram content.
//
// Two heuristic scorers look at the same lazily computed image measurements
// (grayscale statistics, a Canny edge map, edge contours, a Hough line count)
// and, when OCR is enabled, at the recognized text. Each rule adds a fixed
// weight and a reason tag; totals are capped at 1.0. A scorer that fails or
// panics contributes zero and tags "<scorer>_error"; an OCR failure or timeout
// tags "ocr_unavailable" and leaves the frame with heuristics only.
// Classification itself never fails.
package classify
