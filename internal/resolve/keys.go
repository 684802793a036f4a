package resolve

import (
	"gtreg/internal/submission"
	"gtreg/internal/textutil"
)

// NameKey is a case-folded, whitespace-collapsed name used for exact matching.
type NameKey string

// NewNameKey folds a raw name into its identity key.
func NewNameKey(name string) NameKey {
	return NameKey(textutil.FoldKey(name))
}

// YearKey compares years as integers only. A year that arrived as a string
// literal is invalid and equals nothing, including another literal.
type YearKey struct {
	value int
	valid bool
}

// IntYearKey builds a comparable year.
func IntYearKey(year int) YearKey { return YearKey{value: year, valid: true} }

// YearKeyFrom converts a submitted year, keeping its representation.
func YearKeyFrom(y submission.Year) YearKey {
	if v, ok := y.Int(); ok {
		return IntYearKey(v)
	}
	return YearKey{}
}

// Int returns the integer year if the key is valid.
func (y YearKey) Int() (int, bool) { return y.value, y.valid }

// Equal reports integer equality; invalid keys never match.
func (y YearKey) Equal(other YearKey) bool {
	return y.valid && other.valid && y.value == other.value
}

// ManufacturerKey identifies a manufacturer by folded name.
type ManufacturerKey struct {
	Name NameKey
}

// ProductLineKey identifies a product line within a manufacturer.
type ProductLineKey struct {
	ManufacturerID string
	Name           NameKey
}

// ModelKey is the composite natural key of a model.
type ModelKey struct {
	ManufacturerID string
	Name           NameKey
	Year           YearKey
}

// Match compares two model keys field by field: manufacturer id exactly, name
// case-folded, year as integers.
func (k ModelKey) Match(other ModelKey) bool {
	return k.ManufacturerID == other.ManufacturerID && k.Name == other.Name && k.Year.Equal(other.Year)
}

// SerialKey is a case-folded serial number.
type SerialKey string

func NewSerialKey(serial string) SerialKey {
	return SerialKey(textutil.FoldKey(serial))
}
