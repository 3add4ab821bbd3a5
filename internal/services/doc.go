// Package services defines the helpers shared by pipeline stages and the
// adapters around external tools.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and stage names for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent run statuses (failed vs rejected).
//
// Use these helpers when wiring new stage logic so error reporting and
// observability stay uniform across the pipeline.
package services
