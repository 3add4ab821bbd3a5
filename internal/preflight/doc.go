// Package preflight provides readiness checks for the external binaries and
// filesystem paths vidscribe depends on.
//
// The CLI "vidscribe check" command runs RunAll and renders the results.
// Checks are gated by configuration: tesseract is only required when OCR is
// enabled.
package preflight
