// Package preflight provides readiness checks for the filesystem paths and
// database the registry depends on.
//
// These checks run in two contexts:
//   - "gtreg doctor" runs RunAll and renders every result.
//   - "gtreg serve" runs RunAll before binding and refuses to start when a
//     check fails.
package preflight
