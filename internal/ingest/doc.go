// Package ingest drives batches of submissions into the registry.
//
// Submissions run one at a time in caller order. Each is validated, planned
// into dependency order, and executed inside a single store transaction:
// entities resolve against the store and the batch overlay, matched entities
// receive the submission's non-null attributes, misses are inserted, and
// specifications and photos attach to their owners. The transaction commits
// only when every step succeeds; the overlay then publishes the submission's
// entities to later submissions of the batch.
//
// A submission whose resolution lands in the review band is rolled back and
// reported with its ranked candidates. A write rejected by a unique index is
// re-resolved a bounded number of times before the submission fails.
// Cancellation is honoured between submissions; submissions never started are
// reported as failed with reason "cancelled".
package ingest
