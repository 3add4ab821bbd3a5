// Package config loads, normalizes, and validates vidscribe configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDSCRIBE_OUTPUT_DIR and TESSERACT_BINARY. The Config type centralizes every
// knob the analysis pipeline and CLI need: detection thresholds, OCR limits,
// frame output, and the run history database.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical strategy names, and clear validation errors.
package config
