// Package api defines wire-format types and converters shared by the CLI JSON
// output and the HTTP ingestion endpoint. It translates ingestion results and
// stored images into transport-friendly DTOs so consumers never couple to
// internal types.
//
// # Key Types
//
// BatchResponse: one ingestion run with per-submission outcomes, totals, and
// write counters.
//
// Submission: outcome of one submission, including field errors for
// validation failures and ranked candidates for review holds.
//
// Image: one image association with its asset fields and duplicate lineage.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Entity kinds and outcomes are exposed as the
// lowercase strings stored in the registry. Timestamps use RFC3339 with
// milliseconds.
package api
