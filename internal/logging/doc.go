// Package logging assembles structured slog loggers and formatting helpers used
// across gtreg.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so ingestion code can tag log
// lines with batch IDs, submission indexes, and entity kinds. Resolution
// decisions are logged through DecisionAttrs so every match, merge, and review
// hold has the same shape.
package logging
