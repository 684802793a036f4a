package registry

import (
	"fmt"
	"time"
)

// EntityRef addresses one stored entity.
type EntityRef struct {
	Kind EntityKind `json:"entity_type"`
	ID   string     `json:"entity_id"`
}

func (r EntityRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}

// Provenance captures bookkeeping columns common to every resolvable entity.
type Provenance struct {
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	LastResolvedAt time.Time
}

// Attestation mirrors the columns maintained by the attestation subsystem.
type Attestation struct {
	Status *AttestationStatus
	UID    *string
}

// ManufacturerAttrs are the mutable descriptive fields of a manufacturer.
type ManufacturerAttrs struct {
	DisplayName *string
	Country     *string
	FoundedYear *int
	Website     *string
	Status      *ManufacturerStatus
	Notes       *string
	LogoSource  *string
}

type Manufacturer struct {
	ID   string
	Name string
	ManufacturerAttrs
	Provenance
}

type ProductLine struct {
	ID             string
	ManufacturerID string
	Name           string
	Provenance
}

// ModelAttrs are the mutable descriptive fields of a model. Dates are ISO
// calendar dates (YYYY-MM-DD).
type ModelAttrs struct {
	ProductionType              *ProductionType
	ProductionStartDate         *string
	ProductionEndDate           *string
	EstimatedProductionQuantity *int
	MSRPOriginal                *float64
	Currency                    *string
	Description                 *string
}

type Model struct {
	ID             string
	ManufacturerID string
	ProductLineID  *string
	Name           string
	Year           int
	ModelAttrs
	Attestation
	Provenance
}

// GuitarFallback identifies an instrument whose model is not in the registry.
type GuitarFallback struct {
	ManufacturerName *string
	ModelName        *string
	YearEstimate     *string
}

// GuitarAttrs are the mutable descriptive fields of an individual guitar.
type GuitarAttrs struct {
	Description           *string
	Nickname              *string
	ProductionDate        *string
	ProductionNumber      *int
	SignificanceLevel     *SignificanceLevel
	SignificanceNotes     *string
	CurrentEstimatedValue *float64
	LastValuationDate     *string
	ConditionRating       *ConditionRating
	Modifications         *string
	ProvenanceNotes       *string
}

type Guitar struct {
	ID           string
	ModelID      *string
	SerialNumber *string
	Fallback     GuitarFallback
	GuitarAttrs
	Attestation
	Provenance
}

// SpecAttrs describe the physical construction of a model or an instrument.
type SpecAttrs struct {
	BodyWood               *string
	NeckWood               *string
	FingerboardWood        *string
	ScaleLengthInches      *float64
	NumFrets               *int
	NutWidthInches         *float64
	NeckProfile            *string
	BridgeType             *string
	PickupConfiguration    *string
	ElectronicsDescription *string
	HardwareFinish         *string
	BodyFinish             *string
	WeightLbs              *float64
	CaseIncluded           *bool
	CaseType               *string
}

// Specification belongs to exactly one model or individual guitar.
type Specification struct {
	ID    string
	Owner EntityRef
	SpecAttrs
	CreatedAt time.Time
}

// ImageAsset holds the storage and metadata fields of a finished image. Every
// row referencing the same physical asset carries identical asset fields.
type ImageAsset struct {
	StorageProvider  string
	StorageKey       string
	OriginalURL      *string
	ThumbnailURL     *string
	SmallURL         *string
	MediumURL        *string
	LargeURL         *string
	XLargeURL        *string
	OriginalFilename *string
	MimeType         *string
	FileSizeBytes    *int64
	Width            *int
	Height           *int
	AspectRatio      *float64
	DominantColor    *string
}

// Image associates an asset with one entity.
type Image struct {
	ID              string
	Owner           EntityRef
	ImageType       string
	IsPrimary       bool
	DisplayOrder    int
	Caption         *string
	Asset           ImageAsset
	IsDuplicate     bool
	OriginalImageID *string
	DuplicateReason *string
	CreatedAt       time.Time
}
