package submission

import (
	"strconv"

	"gtreg/internal/registry"
)

// Submission is one validated ingestion unit. At least one block is set.
type Submission struct {
	Manufacturer *Manufacturer
	Model        *Model
	Guitar       *Guitar
}

type Manufacturer struct {
	Name string
	registry.ManufacturerAttrs
}

type Model struct {
	ManufacturerName string
	ProductLineName  *string
	Name             string
	Year             int
	registry.ModelAttrs
	Specifications []registry.SpecAttrs
	Photos         []Photo
}

// Guitar carries exactly one of Reference or Fallback.
type Guitar struct {
	Reference    *ModelReference
	Fallback     *registry.GuitarFallback
	SerialNumber *string
	// GuitarAttrs.Description may stand in for the model name in fallback mode.
	registry.GuitarAttrs
	Specifications *registry.SpecAttrs
	Photos         []Photo
}

// ModelReference names an existing or same-batch model by its natural key.
type ModelReference struct {
	ManufacturerName string
	ModelName        string
	Year             Year
}

// Year keeps the JSON representation a year arrived in. A string year never
// equals an integer model year.
type Year struct {
	value   int
	literal string
	isInt   bool
}

// IntYear builds an integer year.
func IntYear(v int) Year { return Year{value: v, isInt: true} }

// LiteralYear builds a year that arrived as a JSON string.
func LiteralYear(s string) Year { return Year{literal: s} }

// Int returns the integer year and whether the year was an integer.
func (y Year) Int() (int, bool) { return y.value, y.isInt }

func (y Year) String() string {
	if y.isInt {
		return strconv.Itoa(y.value)
	}
	return strconv.Quote(y.literal)
}

// Photo references a finished asset produced by the image pipeline.
type Photo struct {
	registry.ImageAsset
	ImageType string
	Caption   *string
	IsPrimary bool
}
