// Package main hosts the vidscribe CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration and logging once, then hands
// work to the internal pipeline: analyze a video against its transcript,
// browse the run history, and scaffold or validate configuration.
package main
