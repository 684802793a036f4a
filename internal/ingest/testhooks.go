package ingest

import (
	"gtreg/internal/resolve"
	"gtreg/internal/store"
)

// SetResolutionSourceForTests overrides what the resolver reads on each
// attempt. The attempt number starts at zero.
func SetResolutionSourceForTests(fn func(tx *store.Tx, attempt int) resolve.Source) func() {
	previous := resolutionSource
	resolutionSource = fn
	return func() {
		resolutionSource = previous
	}
}
