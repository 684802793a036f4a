// Package resolve decides whether a proposed manufacturer, product line,
// model, or individual guitar is already known.
//
// Resolution runs in two stages. The exact stage compares natural keys
// (case-folded names, integer years) against the batch overlay and the
// committed store; a hit is authoritative. The fuzzy stage scores the proposed
// name against every candidate sharing the scoping key and classifies the best
// score into auto-merge, manual review, or create. Equal scores are ordered by
// most recent resolution, then by id.
//
// References (a model's manufacturer name, a guitar's model_reference) are
// looked up by exact key only and are never created implicitly.
package resolve
