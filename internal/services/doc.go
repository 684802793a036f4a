// Package services defines shared utilities consumed by the resolution and
// ingestion components.
//
// Key responsibilities:
//   - Context helpers that stamp batch IDs, submission indexes, entity kinds,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent submission outcomes (failed vs needs_review).
package services
