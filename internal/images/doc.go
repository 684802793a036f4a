// Package images associates finished image assets with registry entities.
//
// One physical asset (identified by its storage key) may be shown on several
// entities. The first row for an asset is the original; every further row is
// a duplicate that copies the asset fields and points at the original, so the
// duplicates form a flat list rather than a chain. Each entity has at most one
// primary image; promoting a new primary demotes the old one in the same
// transaction, and the unique index on primaries settles concurrent writers.
package images
