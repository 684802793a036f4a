// Package textutil provides the name normalization and similarity scoring used
// to detect near-duplicate manufacturer, product line, and model names.
//
// Normalize folds case, strips combining marks, and collapses whitespace so
// "  Höfner " and "hofner" compare equal. Similarity is a normalized edit
// distance in [0, 1]: symmetric, reflexive, and a single-character edit moves
// the score by at most 1/max(len(a), len(b)).
package textutil
