// Package registry defines the entities persisted by the guitar registry:
// manufacturers, product lines, models, individual guitars, specifications,
// and images, plus the enums and attribute sets shared between the submission
// validator, the resolver, and the store.
//
// Attribute structs use pointer fields so that "absent" is distinguishable
// from a zero value. Merge overlays only the fields a later submission
// actually supplied; identity fields and attestation columns are never part
// of an attribute set and therefore never overwritten by ingestion.
package registry
