// Package submission validates raw ingestion documents and converts them into
// typed submissions.
//
// Validate checks a single submission object: required fields, string length
// bounds, numeric ranges, case-sensitive enum membership, ISO calendar dates,
// and the mutually exclusive identification modes of an individual guitar. It
// never touches storage. A document either yields a fully typed Submission or
// a ValidationErrors list naming every failure; nothing is partially
// normalized.
package submission
