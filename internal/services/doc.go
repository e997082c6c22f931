// Package services defines shared utilities consumed by the reconstruction
// pipeline and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp content IDs, page references, stage names, and
//     run identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent page outcomes (failed vs review).
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
